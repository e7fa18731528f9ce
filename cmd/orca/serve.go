package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/parthasarathygopu/orca/internal/handler"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/service"
	"github.com/parthasarathygopu/orca/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `orca serve [--config=config.toml]`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			logger := log.GetLogger()

			hub := websocket.NewHub()
			go hub.Run()

			supervisor, err := a.supervisor(ctx, hub)
			if err != nil {
				return err
			}

			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := handler.NewRouter(handler.Services{
				Suites:       service.NewSuiteService(a.store),
				Cases:        service.NewCaseService(a.store),
				ActionGroups: service.NewActionGroupService(a.store),
				History:      service.NewHistoryService(a.store),
				Runs:         service.NewRunService(a.store, supervisor),
			}, hub, a.registry)

			srv := &http.Server{Addr: a.cfg.Server.GetAddr(), Handler: router}
			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", srv.Addr).Info("Starting orca")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
