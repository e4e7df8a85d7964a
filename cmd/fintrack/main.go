// Command fintrack runs the personal finance tracker: the web app, the
// export worker and a few maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// app carries what every command needs once configuration is loaded.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *log.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal income and expense tracker",
		Long: `fintrack records dated income and expense transactions per user and
reports the balance, spending per category and month-by-month totals.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./fintrack.yaml when present)")

	root.AddCommand(
		newServeCmd(a),
		newWorkerCmd(a),
		newMigrateCmd(a),
		newReportCmd(a),
		newImportCmd(a),
	)
	return root
}

func main() {
	a := &app{}
	ctx, stop := cli.GracefulShutdown(context.Background(), log.New(log.DefaultConfig()))
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}
