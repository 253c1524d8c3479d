package tracing

import (
	"context"
	"testing"
)

func TestNewTraceID(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty trace IDs")
	}
	if a == b {
		t.Error("expected unique trace IDs")
	}
}

func TestWithAndGet(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithClientKey(ctx, "10.0.0.1")
	ctx = WithSubject(ctx, "admin")

	if got := GetTraceID(ctx); got != "trace-1" {
		t.Errorf("GetTraceID = %q", got)
	}
	if got := GetClientKey(ctx); got != "10.0.0.1" {
		t.Errorf("GetClientKey = %q", got)
	}
	if got := GetSubject(ctx); got != "admin" {
		t.Errorf("GetSubject = %q", got)
	}
}

func TestGetEmpty(t *testing.T) {
	ctx := context.Background()
	if GetTraceID(ctx) != "" || GetClientKey(ctx) != "" || GetSubject(ctx) != "" {
		t.Error("expected empty values on a bare context")
	}
}

func TestNewContextPartial(t *testing.T) {
	ctx := NewContext(context.Background(), &TraceContext{TraceID: "t"})
	tc := FromContext(ctx)
	if tc.TraceID != "t" {
		t.Errorf("TraceID = %q", tc.TraceID)
	}
	if tc.ClientKey != "" || tc.Subject != "" {
		t.Error("unset fields should stay empty")
	}
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background())
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace ID")
	}
}
