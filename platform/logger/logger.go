// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRequestIDContext stores a request ID on the context for later
// extraction by WithContext.
func WithRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// GatewaySearch logs a completed provider gateway search.
func (l *Logger) GatewaySearch(provider, query string, offers int, latencyMs float64) {
	l.Info("gateway_search",
		slog.String("provider", provider),
		slog.String("query", query),
		slog.Int("offers", offers),
		slog.Float64("latency_ms", latencyMs),
	)
}

// GatewayError logs a failed provider gateway search. Failures degrade to
// zero offers for that item, so this is the only place they surface.
func (l *Logger) GatewayError(provider, query string, err error) {
	l.Warn("gateway_error",
		slog.String("provider", provider),
		slog.String("query", query),
		slog.String("error", err.Error()),
	)
}

// SuggestionRun logs a completed BOM suggestion run.
func (l *Logger) SuggestionRun(items, matched, unmatched, suggestions int, latencyMs float64) {
	l.Info("suggestion_run",
		slog.Int("items", items),
		slog.Int("matched", matched),
		slog.Int("unmatched", unmatched),
		slog.Int("suggestions", suggestions),
		slog.Float64("latency_ms", latencyMs),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
