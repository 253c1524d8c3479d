package tracing

import (
	"context"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"
)

// TraceHeader is read from incoming requests and echoed on responses.
const TraceHeader = "X-Trace-Id"

var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// FromRequest returns a context carrying the caller's trace id when it is
// well formed, or a fresh one otherwise.
func FromRequest(ctx context.Context, r *http.Request) context.Context {
	if id := r.Header.Get(TraceHeader); validTraceID.MatchString(id) {
		return WithTraceID(ctx, id)
	}
	return NewRequestContext(ctx)
}

// PropagateToLogger adds tracing context to a zerolog logger
func PropagateToLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)
	lc := logger.With()
	if tc.TraceID != "" {
		lc = lc.Str("trace_id", tc.TraceID)
	}
	if tc.ClientKey != "" {
		lc = lc.Str("client", tc.ClientKey)
	}
	if tc.Subject != "" {
		lc = lc.Str("subject", tc.Subject)
	}
	return lc.Logger()
}

// LoggerFromContext returns base with the request's tracing fields attached.
func LoggerFromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	return PropagateToLogger(ctx, base)
}
