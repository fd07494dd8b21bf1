package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/safeguardian/autopilot/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger surface",
		Long: `Run the HTTP trigger surface used by the dashboard: authentication,
automation runs and conversation browsing, plus /healthz and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}

			srv := server.New(app.cfg.ListenAddr, app.cfg.DefaultAgent, app.client, app.runner, app.log)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errChan <- err
				}
			}()

			select {
			case err := <-errChan:
				return err
			case <-sigChan:
			case <-cmd.Context().Done():
			}

			app.log.Info("shutdown signal received, gracefully stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
