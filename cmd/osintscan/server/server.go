package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"osintscan/api/routes"
	"osintscan/cmd/osintscan/app"
	"osintscan/internal/config"
	"osintscan/internal/services"
	"osintscan/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

type ServerOpts struct {
	Port int
	Host string
}

func NewServerCommand(global *app.Options) *cobra.Command {
	serverConfig := &ServerOpts{}

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the osintscan API server",
		Long:  `Start the HTTP API that accepts scan requests and serves their results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			a, err := app.New(global, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("port") {
				a.Config.Server.Port = serverConfig.Port
			}
			if cmd.Flags().Changed("host") {
				a.Config.Server.Host = serverConfig.Host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, a)
		},
	}

	serverCmd.Flags().IntVarP(&serverConfig.Port, "port", "p", 8000, "Port to run the server on")
	serverCmd.Flags().StringVarP(&serverConfig.Host, "host", "i", "0.0.0.0", "IP address to bind the server to")

	return serverCmd
}

func run(ctx context.Context, a *app.App) error {
	store, closeStore, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer closeStore()

	factory := a.NewFactory()
	scanService := a.NewScanService(store, factory)

	if a.Config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.InitRouter(routes.Dependencies{
		ScanService:   scanService,
		ConfigService: services.NewConfigService(factory, a.Logger),
		Metrics:       a.Metrics,
		Logger:        a.Logger,
		CORSOrigins:   a.Config.Server.CORSOrigins,
		Version:       app.Version,
	})

	if a.Viper.ConfigFileUsed() != "" {
		config.Watch(a.Viper, func(cfg *config.Config) {
			a.Logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
			a.Logger.WithFields(logger.Fields{"level": cfg.Log.Level}).Info("Configuration reloaded")
		}, func(err error) {
			a.Logger.WithError(err).Warn("Ignoring invalid configuration change")
		})
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.WithFields(logger.Fields{"addr": srv.Addr, "version": app.Version}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.WithError(err).Error("Graceful shutdown failed")
	}

	done := make(chan struct{})
	go func() {
		scanService.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Logger.Info("Background scans finished")
	case <-shutdownCtx.Done():
		a.Logger.Warn("Exiting with scans still running")
	}
	return nil
}
