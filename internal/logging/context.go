package logging

import (
	"context"
	"log/slog"

	"streamfinder/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldOperation names the discovery operation being served (search, streaming_link).
	FieldOperation = "operation"
	// FieldShell identifies which front end issued the request (web or cli).
	FieldShell = "shell"
	// FieldEventType categorizes a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCacheKey is the cache key involved in a lookup or write.
	FieldCacheKey = "cache_key"
	// FieldMovieID is the catalog identifier of a movie.
	FieldMovieID = "movie_id"
	// FieldService is the display name of a streaming service.
	FieldService = "service"
)

// contextFields extracts the request correlation fields carried by ctx.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if shell, ok := services.ShellFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldShell, shell))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
