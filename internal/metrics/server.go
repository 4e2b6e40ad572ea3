package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddress is used when the metrics server is enabled without an address.
const DefaultAddress = "127.0.0.1:9090"

// NewHTTPServer creates an HTTP server that exposes prometheus metrics at /metrics.
func NewHTTPServer(address string) *http.Server {
	if address == "" {
		address = DefaultAddress
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:    address,
		Handler: mux,
	}
}
