package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/matchdir/common/cache"
	"github.com/lyzr/matchdir/common/config"
	"github.com/lyzr/matchdir/common/db"
	"github.com/lyzr/matchdir/common/logger"
	rediscommon "github.com/lyzr/matchdir/common/redis"
	"github.com/lyzr/matchdir/common/telemetry"
)

// Setup initializes all service components.
// Backends are only connected when the configured store needs them.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := components.Config

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", cfg.Service.Environment,
		"store", cfg.Store.Backend,
	)

	// 3. Initialize database (postgres backend only)
	if cfg.Store.Backend == config.BackendPostgres {
		components.Logger.Info("connecting to database")
		components.DB, err = db.New(ctx, cfg, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		components.addCleanup(func() error {
			components.DB.Close()
			return nil
		})

		if options.dbInitHook != nil {
			components.Logger.Info("running database init hook")
			if err := options.dbInitHook(components.DB); err != nil {
				components.Shutdown(ctx)
				return nil, fmt.Errorf("database init hook failed: %w", err)
			}
		}
	}

	// 4. Initialize Redis (redis backend only)
	if cfg.Store.Backend == config.BackendRedis {
		components.Logger.Info("connecting to redis", "addr", cfg.RedisAddr())
		components.Redis, err = rediscommon.Dial(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, components.Logger)
		if err != nil {
			components.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing redis connection")
			return components.Redis.Close()
		})
	}

	// 5. Initialize cache; the memory backend is already in-process
	if !options.skipCache && cfg.Cache.Enabled && cfg.Store.Backend != config.BackendMemory {
		components.Logger.Info("initializing cache", "ttl", cfg.Cache.DefaultTTL)
		components.Cache = cache.NewMemoryCache(components.Logger)

		components.addCleanup(func() error {
			return components.Cache.Close()
		})
	}

	// 6. Initialize telemetry
	if !options.skipTelemetry {
		components.Telemetry = telemetry.New(telemetry.Options{
			EnablePprof:   cfg.Telemetry.EnablePprof,
			PprofPort:     cfg.Telemetry.PprofPort,
			EnableMetrics: cfg.Telemetry.EnableMetrics,
			MetricsPort:   cfg.Telemetry.MetricsPort,
		}, components.Logger)

		if err := components.Telemetry.Start(ctx); err != nil {
			// Don't fail startup if telemetry fails
			components.Logger.Warn("failed to start telemetry", "error", err)
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing telemetry")
			return components.Telemetry.Close()
		})
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
		"cache", components.Cache != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}
