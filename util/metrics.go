package util

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsOptions struct {
	Addr string `long:"metrics-addr" value-name:"HOST:PORT" description:"Serve prometheus metrics at /metrics"`
}

// Serve prometheus metrics in the background, if configured.
//
// Returns the bound listener address, or nil if disabled.
func (options MetricsOptions) Serve(log *slog.Logger) (net.Addr, error) {
	if options.Addr == "" {
		return nil, nil
	}

	listener, err := net.Listen("tcp", options.Addr)
	if err != nil {
		return nil, fmt.Errorf("Listen metrics %v: %w", options.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info("prometheus metrics server listening", "address", listener.Addr().String())

	go func() {
		if err := http.Serve(listener, mux); err != nil {
			log.Error("prometheus metrics server failed", "error", err)
		}
	}()

	return listener.Addr(), nil
}
