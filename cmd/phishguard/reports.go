package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/stoik/phishguard/internal/adapters/cli"
)

func newReportsCmd(a *app) *cobra.Command {
	var limit int
	var jsonOutput, noColor bool

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List recently stored analysis reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("report storage is not configured; set database.url or PHISHGUARD_DATABASE_URL")
			}
			defer store.Close()

			reports, err := store.RecentReports(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return cli.WriteJSON(cmd.OutOrStdout(), reports)
			}
			return cli.NewPrinter(cmd.OutOrStdout(), noColor).PrintSummaries(reports)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print reports as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
