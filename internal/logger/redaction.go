package logger

import (
	"io"
	"regexp"
)

const redacted = "[REDACTED]"

// Redactor scrubs credentials from log lines.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the patterns the gateway needs:
// bearer headers, raw JWTs, and key/value pairs for passwords and secrets.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`Bearer\s+[A-Za-z0-9._~+/=-]+`),
			// header.payload.signature
			regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
			regexp.MustCompile(`(?i)"?password"?["\s:=]+[^\s",}]+`),
			regexp.MustCompile(`(?i)"?(jwt_secret|secret)"?["\s:=]+[^\s",}]+`),
			regexp.MustCompile(`(?i)([?&]token=)[^&\s"]+`),
		},
	}
}

// AddPattern adds a custom redaction pattern
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// Redact replaces every match with a fixed marker.
func (r *Redactor) Redact(s string) string {
	out := s
	for _, p := range r.patterns {
		out = p.ReplaceAllString(out, redacted)
	}
	return out
}

// Wrap returns a writer that redacts before forwarding to w.
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{writer: w, redactor: r}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

// Write reports len(p) on success so zerolog does not treat a shortened
// redacted line as a short write.
func (w *redactingWriter) Write(p []byte) (int, error) {
	if _, err := w.writer.Write([]byte(w.redactor.Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
