package middleware

import (
	"sync"

	"blogicum/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// Metrics returns the process-wide HTTP metrics collector. It shares the
// default Prometheus registry with the domain counters in observability, so
// /metrics serves both, and it is created once.
func Metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWithDefaultRegistry(observability.ServiceName)
	})
	return prom
}

// MountMetrics registers the /metrics endpoint and the request collector on app.
func MountMetrics(app *fiber.App) {
	p := Metrics()
	p.RegisterAt(app, "/metrics")
	app.Use(p.Middleware)
}
