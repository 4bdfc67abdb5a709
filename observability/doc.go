// Package observability defines the lightweight tracing and structured
// logging surface used by the provider adapters. Callers attach an
// [Observer] and optionally a [Span] to the request context; adapters
// retrieve them with [ObserverFromContext] and [SpanFromContext] and emit
// events with the semantic attribute names declared in this package. When
// nothing is attached, every call is a no-op.
//
// The slogobs subpackage provides a log/slog-backed Observer.
package observability
