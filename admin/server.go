package admin

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const MetricsPath = "/metrics"

// New builds the admin app. The liveness probe reports on the launcher, not
// on the child.
func New(logger *zap.Logger, registry *prometheus.Registry, policy OriginPolicy) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(policy.middleware())
	app.Use(healthcheck.New())

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	})))

	return app
}

// Serve listens on address until ctx is done.
func Serve(ctx context.Context, logger *zap.Logger, app *fiber.App, address string) error {
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			logger.Error("failed to shut down admin server", zap.Error(err))
		}
	}()

	logger.Info("admin server started", zap.String("address", address))
	return app.Listen(address)
}
