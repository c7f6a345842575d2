package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the sweep counters in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RegisterHandlers mounts the /metrics endpoint on mux.
func RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", Handler())
}
