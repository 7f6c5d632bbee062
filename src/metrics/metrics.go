package metrics

import (
	"fmt"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_import_records_total",
		Help: "Number of application records parsed from the input file",
	})

	publishSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_import_publish_success_total",
		Help: "Number of applications registered successfully",
	})

	publishFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_import_publish_failure_total",
		Help: "Number of application registrations that failed",
	})
)

func RecordsImported(n int) {
	recordsTotal.Add(float64(n))
}

func PublishSucceeded() {
	publishSuccessTotal.Inc()
}

func PublishFailed() {
	publishFailureTotal.Inc()
}

// Serve exposes /health and /metrics while the batch runs. Blocking; run it
// in a goroutine. Useful for watching long imports from the outside.
func Serve(port uint) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		zap.L().Warn("metrics server stopped", zap.Any("error", err))
	}
}
