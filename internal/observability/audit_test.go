package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/nanoboard/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLoggerRecord(t *testing.T) {
	t.Run("should fill actor and trace id from the context", func(t *testing.T) {
		var buf bytes.Buffer
		a := NewAuditLogger(&buf)

		ctx := tracing.WithTraceID(context.Background(), "trace-1")
		ctx = tracing.WithClientKey(ctx, "203.0.113.9")
		a.Record(ctx, AuditEvent{Type: TypeAuth, Action: "login", Status: "failure"})

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "auth", got["type"])
		assert.Equal(t, "203.0.113.9", got["actor"])
		assert.Equal(t, "trace-1", got["trace_id"])
		assert.Equal(t, "failure", got["status"])
	})

	t.Run("should include metadata", func(t *testing.T) {
		var buf bytes.Buffer
		a := NewAuditLogger(&buf)
		a.Record(context.Background(), AuditEvent{
			Type:     TypeSecurity,
			Action:   "fs.tree",
			Status:   "denied",
			Metadata: map[string]interface{}{"path": "../etc"},
		})
		assert.Contains(t, buf.String(), `"path":"../etc"`)
	})
}

func TestOpenAuditLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "audit.log")
	a, err := OpenAuditLogger(path)
	require.NoError(t, err)

	a.Record(context.Background(), AuditEvent{Type: TypeStore, Action: "cron.add", Status: "success"})
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"cron.add"`)
}

func TestGlobalAuditLogger(t *testing.T) {
	prev := GetAuditLogger()
	t.Cleanup(func() { SetAuditLogger(prev) })

	var buf bytes.Buffer
	SetAuditLogger(NewAuditLogger(&buf))

	ctx := tracing.WithSubject(context.Background(), "admin")
	RecordAuthAudit(ctx, "success", nil)
	RecordSecurityAudit(ctx, "skill.content", map[string]interface{}{"id": "../x"})
	RecordChangeAudit(ctx, TypeConfig, "config.save", nil)

	out := buf.String()
	assert.Contains(t, out, `"action":"login"`)
	assert.Contains(t, out, `"status":"denied"`)
	assert.Contains(t, out, `"actor":"admin"`)
}
