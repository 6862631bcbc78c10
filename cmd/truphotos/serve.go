package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/truphotos-go/internal/api"
	"github.com/vrsandeep/truphotos-go/internal/config"
	"github.com/vrsandeep/truphotos-go/internal/core"
	"github.com/vrsandeep/truphotos-go/internal/jobs"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local API daemon for UI frontends",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return fmt.Errorf("application setup: %w", err)
			}
			defer app.Close()

			app.Sessions.Restore(cmd.Context())

			server := api.NewServer(app)
			scheduler := jobs.StartRefresh(app.Sessions, server, app.Config.Catalog.RefreshInterval, app.Log)
			defer scheduler.Stop()

			// Live reload: edits to config.yml take effect on the next engine
			// rebuild without restarting the daemon.
			config.Watch(func(cfg *config.Config) {
				app.Log.Info().Int("page_size", cfg.Catalog.PageSize).Msg("Configuration reloaded")
				server.UpdateConfig(cfg)
			})

			httpServer := &http.Server{
				Addr:    fmt.Sprintf("127.0.0.1:%d", app.Config.Port),
				Handler: server.Router(),
			}

			go func() {
				app.Log.Info().Str("addr", httpServer.Addr).Msg("Starting local API server")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					app.Log.Fatal().Err(err).Msg("Could not start server")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			app.Log.Info().Msg("Shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}
}
