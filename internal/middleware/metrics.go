package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DocumentWrites counts create/update/delete operations per collection.
var DocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wtero_document_writes_total",
	Help: "Total number of document write operations by collection and operation",
}, []string{"collection", "operation"})

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// RegisterMetrics attaches the Prometheus middleware and the /metrics endpoint.
func RegisterMetrics(app *fiber.App, prom *fiberprometheus.FiberPrometheus) {
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
