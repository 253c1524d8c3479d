package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// ClientKeyKey carries the caller address used for throttling and audit.
	ClientKeyKey ContextKey = "client_key"
	// SubjectKey carries the authenticated token subject.
	SubjectKey ContextKey = "subject"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID   string
	ClientKey string
	Subject   string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithClientKey adds the caller address to the context
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ClientKeyKey, key)
}

// WithSubject adds the authenticated subject to the context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}

func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

func GetClientKey(ctx context.Context) string {
	v, _ := ctx.Value(ClientKeyKey).(string)
	return v
}

func GetSubject(ctx context.Context) string {
	v, _ := ctx.Value(SubjectKey).(string)
	return v
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:   GetTraceID(ctx),
		ClientKey: GetClientKey(ctx),
		Subject:   GetSubject(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.ClientKey != "" {
		ctx = WithClientKey(ctx, tc.ClientKey)
	}
	if tc.Subject != "" {
		ctx = WithSubject(ctx, tc.Subject)
	}
	return ctx
}

// NewRequestContext creates a new context for a request with a new trace ID
func NewRequestContext(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}
