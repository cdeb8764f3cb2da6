package api

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerOption customizes StartServer
type ServerOption func(*serverOptions)

type serverOptions struct {
	logger   *slog.Logger
	registry *prometheus.Registry
}

// WithLogger sets the logger of the server
func WithLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = l
	}
}

// WithRegistry registers the metrics with reg instead of a private registry
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(o *serverOptions) {
		o.registry = reg
	}
}
