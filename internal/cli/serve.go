package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-todos/api"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the todos HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				validator, err := a.tokenValidator()
				if err != nil {
					return err
				}

				if addr == "" {
					addr = a.cfg.HTTP.Addr
				}

				srv := api.NewServer(a.store, validator,
					api.WithLogger(a.logger),
					api.WithDebug(a.cfg.Debug),
				)
				fiberApp := srv.App()

				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				go func() {
					<-ctx.Done()
					_ = fiberApp.Shutdown()
				}()

				a.logger.Info("serving todos api", "addr", addr, "backend", a.cfg.Backend, "provider", a.cfg.Provider)
				return fiberApp.Listen(addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.addr)")
	return cmd
}
