package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lyzr/matchdir/cmd/matchdir/container"
	mdmiddleware "github.com/lyzr/matchdir/cmd/matchdir/middleware"
	"github.com/lyzr/matchdir/cmd/matchdir/routes"
	"github.com/lyzr/matchdir/common/bootstrap"
	"github.com/lyzr/matchdir/common/db"
	"github.com/lyzr/matchdir/common/server"
)

const serviceName = "matchdir"

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, store backend, cache, telemetry)
	components, err := bootstrap.Setup(ctx, serviceName,
		bootstrap.WithDBInitHook(func(d *db.DB) error {
			return db.Migrate(ctx, d)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap %s: %v\n", serviceName, err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		components.Logger.Error("Failed to initialize service container", "error", err)
		components.Shutdown(ctx)
		os.Exit(1)
	}

	e := newEcho(serviceContainer)

	srv := server.New(serviceName, components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		components.Shutdown(ctx)
		os.Exit(1)
	}
}

// newEcho builds the fully wired HTTP surface
func newEcho(c *container.Container) *echo.Echo {
	e := setupEcho()
	setupMiddleware(e, c.Components)
	setupHealthCheck(e, c.Components)
	registerRoutes(e, c)
	return e
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Pre(middleware.RemoveTrailingSlash())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(mdmiddleware.RequestLogger(components.Logger))

	// outside Recover so panicking requests are still counted
	if components.Telemetry != nil {
		metrics := mdmiddleware.NewHTTPMetrics(components.Telemetry.Registry)
		e.Use(metrics.Middleware())
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := components.Health(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": serviceName,
				"error":   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterMatchRoutes(e, serviceContainer)
}
