package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/api"
)

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rating API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			app, err := newApp(logger)
			if err != nil {
				return err
			}

			router := api.NewRouter(api.RouterConfig{
				Logger:          logger,
				GameStore:       app.Storage,
				Engine:          app.Engine,
				RecalcService:   app.RecalcService,
				RankingsService: app.RankingsService,
			})

			serverCfg := api.DefaultServerConfig()
			serverCfg.Port = port
			server := api.NewServer(router, serverCfg, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return server.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port")

	return cmd
}
