// Package slogobs adapts log/slog to the observability.Observer interface.
// Trace maps to a custom level below slog.LevelDebug; everything else maps
// to its slog counterpart.
package slogobs

import (
	"context"
	"log/slog"

	"github.com/ottaviano/genflow/observability"
)

// LevelTrace sits below slog.LevelDebug, matching the Observer's Trace level.
const LevelTrace = slog.LevelDebug - 4

// Observer implements observability.Observer on top of a *slog.Logger.
type Observer struct {
	logger *slog.Logger
}

// New wraps logger as an Observer. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

// Trace logs at LevelTrace.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, LevelTrace, msg, toArgs(attrs)...)
}

// Debug logs at slog.LevelDebug.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelDebug, msg, toArgs(attrs)...)
}

// Info logs at slog.LevelInfo.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelInfo, msg, toArgs(attrs)...)
}

// Warn logs at slog.LevelWarn.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelWarn, msg, toArgs(attrs)...)
}

// Error logs at slog.LevelError.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelError, msg, toArgs(attrs)...)
}

// toArgs flattens attributes into slog key-value arguments.
func toArgs(attrs []observability.Attribute) []any {
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value)
	}
	return args
}
