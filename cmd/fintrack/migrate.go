package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `migrate brings the sqlite or postgres schema to the latest version.
serve and import also migrate on start, so this is only needed to prepare
a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}
			if bc.Type == backend.MemoryBackend {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("memory backend has no schema to migrate"))
				return nil
			}
			version, err := backend.Migrate(bc)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", bc.Type, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s schema at version %d", bc.Type, version)))
			return nil
		},
	}
}
