package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/importer"
	"fintrack/internal/log"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		username string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import transactions from CSV, OFX or QFX files",
		Long: `import records the transactions of one or more statement files for a user.

CSV files need a header with date, category, amount and kind columns, e.g.

  date,category,amount,kind
  2025-01-05,Food,12.50,expense

OFX and QFX debits are imported as expenses and credits as income. Rows that
cannot be parsed are listed and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			l, err := a.openLedger(ctx, !dryRun)
			if err != nil {
				return err
			}
			defer l.Close()

			user, err := l.owner(ctx, username)
			if err != nil {
				return err
			}

			parser := importer.NewParser(a.logger)
			total := 0
			for _, name := range files {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				res, err := parser.Parse(ctx, name, f)
				f.Close()
				if err != nil {
					return err
				}

				if len(res.Skipped) > 0 {
					errs := make([]error, len(res.Skipped))
					for i, se := range res.Skipped {
						errs[i] = se
					}
					fmt.Fprintf(out, "%s: skipped %d row(s)\n%s", name, len(res.Skipped), cli.SkippedSummary(errs, 10))
				}

				if dryRun {
					for _, nt := range res.Transactions {
						fmt.Fprintf(out, "%s  %-20s %s\n", nt.Date, nt.Category, cli.FormatMoney(nt.Amount, nt.Kind))
					}
					continue
				}

				bar := cli.NewProgressBar(out, len(res.Transactions), "Importing "+name)
				n, err := importer.Import(ctx, l.tx, user.ID, res.Transactions, func() { _ = bar.Add(1) })
				total += n
				if err != nil {
					return fmt.Errorf("%s: imported %d before failing: %w", name, n, err)
				}
			}

			if dryRun {
				fmt.Fprintln(out, cli.FormatWarning("dry run, nothing was saved"))
				return nil
			}
			a.logger.InfoContext(ctx, "Import finished",
				log.FieldOperation, log.OpImport, log.FieldOwner, user.ID, log.FieldCount, total)
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("imported %d transaction(s) for %s", total, user.Username)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username that owns the imported transactions")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "parse and list the transactions without saving")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
