// Package app holds the bootstrap shared by the osintscan subcommands.
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"osintscan/internal/config"
	"osintscan/internal/dao"
	"osintscan/internal/database"
	"osintscan/internal/metrics"
	"osintscan/internal/notification"
	"osintscan/internal/services"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/engine"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

// Version is set at build time with -ldflags "-X osintscan/cmd/osintscan/app.Version=...".
var Version = "dev"

// Options are the persistent root flags.
type Options struct {
	ConfigPath string
	Verbose    bool
}

type App struct {
	Config  *config.Config
	Viper   *viper.Viper
	Logger  *logger.Logger
	Metrics *metrics.PrometheusMetrics

	discordClient *notification.NotificationClient
}

// New loads configuration and builds the logger and notifier. logOut, when
// set, replaces stdout as the console output of the logger.
func New(opts *Options, logOut io.Writer) (*App, error) {
	cfg, v, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Verbose {
		cfg.Log.Level = logrus.DebugLevel.String()
	}

	appLogger := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    logOut,
	})
	if used := v.ConfigFileUsed(); used != "" {
		appLogger.WithFields(logger.Fields{"file": used}).Info("Loaded config file")
	}

	a := &App{
		Config:  cfg,
		Viper:   v,
		Logger:  appLogger,
		Metrics: metrics.NewPrometheusMetrics(),
	}

	client, err := notification.NewNotificationClient(cfg.Notify.DiscordToken, cfg.Notify.DiscordChannelID)
	switch {
	case errors.Is(err, apperrors.ErrNotificationNotConfigured):
		appLogger.Debug("Discord notifications disabled")
	case err != nil:
		appLogger.WithError(err).Warn("Failed to initialize Discord client")
	default:
		a.discordClient = client
		appLogger.Info("Discord notifications enabled")
	}

	return a, nil
}

// Notifier returns the configured notifier or nil.
func (a *App) Notifier() notification.Notifier {
	if a.discordClient == nil {
		return nil
	}
	return a.discordClient
}

func (a *App) NewFactory() *tools.Factory {
	return tools.NewFactory(a.Config.ToolFactoryConfig(), nil, nil, a.Logger)
}

// NewScanService assembles the orchestrator on top of store.
func (a *App) NewScanService(store dao.ScanDAO, factory services.ToolFactory) *services.ScanService {
	return services.NewScanService(store, factory,
		services.WithLogger(a.Logger),
		services.WithQueue(engine.NewQueue(a.Config.Scan.MaxConcurrent, a.Logger)),
		services.WithMetrics(a.Metrics),
		services.WithNotifier(a.Notifier()),
		services.WithLogDir(a.Config.Scan.LogDir),
	)
}

// OpenStore opens the configured scan store.
func (a *App) OpenStore() (dao.ScanDAO, func() error, error) {
	return database.OpenStore(a.Config.Database, a.Logger)
}

func (a *App) Close() error {
	var errs []error
	if a.discordClient != nil {
		errs = append(errs, a.discordClient.Close())
	}
	errs = append(errs, a.Logger.Close())
	return errors.Join(errs...)
}
