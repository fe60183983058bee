package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/tenantflow/internal/server"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Background sweep for onboarding attempts that consumed their
			// invitation and then stalled.
			go app.reconciler.RunEvery(ctx, app.cfg.ReconcileInterval)

			srv := &http.Server{
				Addr:    app.cfg.HTTPAddr,
				Handler: server.New(app.orchestrator, app.inviter, app.invitations, app.log).Handler(),
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			app.log.Info().Str("addr", app.cfg.HTTPAddr).Msg("listening")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
