package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"streamfinder/internal/logging"
	"streamfinder/internal/metrics"
	"streamfinder/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withApp(func(a *app) error {
				address := a.cfg.Web.Bind
				if trimmed := strings.TrimSpace(bind); trimmed != "" {
					address = trimmed
				}
				var m *metrics.Metrics
				if a.cfg.Web.MetricsEnabled {
					m = a.metrics
				}
				srv, err := web.New(web.Options{
					Bind:      address,
					Discovery: a.discovery,
					Metrics:   m,
					Logger:    a.logger,
				})
				if err != nil {
					return err
				}
				if err := srv.Start(signalCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())

				<-signalCtx.Done()
				srv.Stop()
				a.logger.Info("web server stopped", logging.String("address", srv.Addr()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides web.bind)")
	return cmd
}
