package observability

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harun/nanoboard/internal/tracing"
	"github.com/rs/zerolog"
)

// Audit event types
const (
	TypeAuth     = "auth"
	TypeSecurity = "security"
	TypeStore    = "store"
	TypeConfig   = "config"
)

// AuditEvent represents a structured event for the audit log
type AuditEvent struct {
	Type      string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Actor     string                 `json:"actor,omitempty"` // client key or token subject
	Action    string                 `json:"action"`          // e.g. "login", "fs.rename"
	Status    string                 `json:"status"`          // "success", "failure", "denied", "blocked"
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// AuditLogger appends audit events as JSON lines.
type AuditLogger struct {
	logger zerolog.Logger
	mu     sync.Mutex
	file   *os.File
}

var (
	auditMu   sync.RWMutex
	auditInst *AuditLogger
)

// NewAuditLogger writes to w. A nil w discards events.
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		w = io.Discard
	}
	return &AuditLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// OpenAuditLogger appends to the file at path, creating parent directories.
func OpenAuditLogger(path string) (*AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	a := NewAuditLogger(file)
	a.file = file
	return a, nil
}

// GetAuditLogger returns the global audit logger, stderr until InitAuditLogger runs.
func GetAuditLogger() *AuditLogger {
	auditMu.RLock()
	a := auditInst
	auditMu.RUnlock()
	if a != nil {
		return a
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditInst == nil {
		auditInst = NewAuditLogger(os.Stderr)
	}
	return auditInst
}

// InitAuditLogger installs a file-backed global audit logger.
func InitAuditLogger(path string) error {
	a, err := OpenAuditLogger(path)
	if err != nil {
		return err
	}
	SetAuditLogger(a)
	return nil
}

// SetAuditLogger replaces the global audit logger.
func SetAuditLogger(a *AuditLogger) {
	auditMu.Lock()
	auditInst = a
	auditMu.Unlock()
}

// Record writes one event. Actor and trace id fall back to the request context.
func (a *AuditLogger) Record(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	tc := tracing.FromContext(ctx)
	if event.TraceID == "" {
		event.TraceID = tc.TraceID
	}
	if event.Actor == "" {
		event.Actor = tc.ClientKey
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.logger.Log().
		Str("type", event.Type).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("status", event.Status).
		Time("at", event.Timestamp)
	if event.TraceID != "" {
		entry = entry.Str("trace_id", event.TraceID)
	}
	if event.Metadata != nil {
		entry = entry.Interface("metadata", event.Metadata)
	}
	entry.Msg("")
}

// Close closes the audit logger's file handle
func (a *AuditLogger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

// RecordAuthAudit records a login outcome.
func RecordAuthAudit(ctx context.Context, status string, metadata map[string]interface{}) {
	GetAuditLogger().Record(ctx, AuditEvent{
		Type:     TypeAuth,
		Action:   "login",
		Status:   status,
		Metadata: metadata,
	})
}

// RecordSecurityAudit records a sandbox rejection.
func RecordSecurityAudit(ctx context.Context, action string, metadata map[string]interface{}) {
	GetAuditLogger().Record(ctx, AuditEvent{
		Type:     TypeSecurity,
		Action:   action,
		Status:   "denied",
		Metadata: metadata,
	})
}

// RecordChangeAudit records a successful write to the managed directory.
func RecordChangeAudit(ctx context.Context, eventType, action string, metadata map[string]interface{}) {
	GetAuditLogger().Record(ctx, AuditEvent{
		Type:     eventType,
		Actor:    tracing.GetSubject(ctx),
		Action:   action,
		Status:   "success",
		Metadata: metadata,
	})
}
