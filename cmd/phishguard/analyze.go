package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/stoik/phishguard/internal/adapters/cli"
	"github.com/stoik/phishguard/internal/domain"
)

// exitTargetUnreachable is returned when the target page could not be fetched
const exitTargetUnreachable = 2

func newAnalyzeCmd(a *app) *cobra.Command {
	var jsonOutput, noColor bool

	cmd := &cobra.Command{
		Use:   "analyze <target-url>",
		Short: "Analyze one page for typosquatted links and cloned content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			service, err := a.newService(store)
			if err != nil {
				return err
			}

			report, err := service.Analyze(ctx, args[0])
			var fetchErr *domain.FetchError
			if err != nil && !(report != nil && errors.As(err, &fetchErr)) {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if werr := cli.WriteJSON(out, report); werr != nil {
					return werr
				}
			} else if perr := cli.NewPrinter(out, noColor).PrintReport(report); perr != nil {
				return perr
			}

			if report.Status == domain.StatusTargetUnreachable {
				return &exitError{code: exitTargetUnreachable, err: err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("legit", nil, "legitimate domain or URL to compare against (repeatable, replaces the configured list)")
	flags.Duration("timeout", 0, "per-request fetch timeout")
	flags.String("reducer", "", "domain base reducer: heuristic or publicsuffix")
	flags.BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = a.v.BindPFlag("legitimate_domains", flags.Lookup("legit"))
	_ = a.v.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("analysis.domain_reducer", flags.Lookup("reducer"))

	return cmd
}
