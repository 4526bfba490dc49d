// Package app wires the launchbox components together with fx.
package app

import (
	"context"

	"github.com/fxnlabs/launchbox/internal/build"
	"github.com/fxnlabs/launchbox/internal/codegen"
	"github.com/fxnlabs/launchbox/internal/config"
	"github.com/fxnlabs/launchbox/internal/logger"
	"github.com/fxnlabs/launchbox/internal/manifest"
	"github.com/fxnlabs/launchbox/internal/metrics"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module provides everything a command needs from a supplied *config.Config.
var Module = fx.Module("launchbox",
	fx.Provide(
		NewLogger,
		prometheus.NewRegistry,
		func(reg *prometheus.Registry) *metrics.Metrics {
			return metrics.NewMetrics(reg)
		},
		NewLoader,
		func(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *build.Resolver {
			return build.NewResolver(log, m, cfg.Build.Workers)
		},
		codegen.NewGenerator,
	),
	fx.Invoke(registerHooks),
)

// Components are the wired pieces a command uses.
type Components struct {
	fx.In

	Config    *config.Config
	Log       *zap.Logger
	Registry  *prometheus.Registry
	Loader    *manifest.Loader
	Resolver  *build.Resolver
	Generator *codegen.Generator
}

// NewLogger builds the root logger from the logger config.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithEncoding(cfg.Logger.Verbosity, cfg.Logger.Encoding)
}

// NewLoader returns a manifest loader honoring build.strict.
func NewLoader(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *manifest.Loader {
	var opts []launch.Option
	if cfg.Build.Strict {
		opts = append(opts, launch.Strict())
	}
	return manifest.NewLoader(log, m, opts...)
}

func registerHooks(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, reg *prometheus.Registry) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
				log.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}

// New returns an fx application for cfg that fills c once started. fx's own
// event log goes to the application logger at debug level.
func New(cfg *config.Config, c *Components) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
		fx.Invoke(func(in Components) { *c = in }),
	)
}
