package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		username  string
		chartsDir string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's totals, category breakdown and monthly series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := a.openLedger(ctx, false)
			if err != nil {
				return err
			}
			defer l.Close()

			user, err := l.owner(ctx, username)
			if err != nil {
				return err
			}
			sum, err := l.tx.Summary(ctx, user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderReport(user.Username, sum))

			if chartsDir == "" {
				return nil
			}
			charts, err := l.tx.Charts(ctx, user.ID)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(chartsDir, 0o755); err != nil {
				return err
			}
			for name, img := range map[string][]byte{"categories.png": charts.Categories, "monthly.png": charts.Monthly} {
				if img == nil {
					continue
				}
				path := filepath.Join(chartsDir, name)
				if err := os.WriteFile(path, img, 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("wrote "+path))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username to report on")
	cmd.Flags().StringVar(&chartsDir, "charts", "", "also write the chart PNGs to this directory")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
