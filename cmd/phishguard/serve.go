package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stoik/phishguard/internal/adapters/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

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

			return httpapi.New(service, store, a.logger).ListenAndServe(ctx, a.cfg.Server.ListenAddr)
		},
	}

	cmd.Flags().String("listen", "", "listen address (default :8080)")
	_ = a.v.BindPFlag("server.listen_addr", cmd.Flags().Lookup("listen"))
	return cmd
}
