package handlers

import (
	"fmt"
	"net/http"

	"media-pipeline/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promLogger routes promhttp errors to the application log.
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	logging.Error("metrics: %s", fmt.Sprint(v...))
}

// MetricsHandler returns the Prometheus metrics handler.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:          promLogger{},
		EnableOpenMetrics: true,
	})
}
