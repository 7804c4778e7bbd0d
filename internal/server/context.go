package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/gh-notifications-cleanup/internal/instrumentation"
	"github.com/teemow/gh-notifications-cleanup/internal/logging"
	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	service  *notifications.Service
	logger   logging.Logger
	metrics  *instrumentation.Metrics
	yolo     bool
	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger handed to tool handlers.
func WithLogger(logger logging.Logger) Option {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithMetrics sets the metrics recorder used by instrumented tool handlers.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithYolo enables tools that mark notifications as done.
func WithYolo(yolo bool) Option {
	return func(sc *ServerContext) {
		sc.yolo = yolo
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, service *notifications.Service, opts ...Option) (*ServerContext, error) {
	if service == nil {
		return nil, errors.New("notifications service is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: service,
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Notifications returns the notifications service.
func (sc *ServerContext) Notifications() *notifications.Service {
	return sc.service
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Yolo reports whether destructive tools are enabled.
func (sc *ServerContext) Yolo() bool {
	return sc.yolo
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
