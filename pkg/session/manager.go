package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harun/nanoboard/pkg/resource"
	"github.com/rs/zerolog"
)

// Summary is one chat session in a listing.
type Summary struct {
	resource.Entry
	Title string `json:"title"`
}

// Manager lists and reads chat sessions.
type Manager struct {
	resolver *resource.Resolver
	logger   zerolog.Logger
}

// NewManager creates a session manager over resolver.
func NewManager(resolver *resource.Resolver, logger zerolog.Logger) *Manager {
	return &Manager{resolver: resolver, logger: logger}
}

// List returns every session, newest first.
func (m *Manager) List() ([]Summary, error) {
	entries, err := m.resolver.List()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		out = append(out, Summary{Entry: e, Title: "Session " + e.Name})
	}
	return out, nil
}

// Get returns the session as messages. A missing session is
// resource.ErrNotFound; unreadable content comes back as a literal block.
func (m *Manager) Get(id string) ([]resource.Message, error) {
	path, err := m.resolver.Find(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	msgs := resource.ParseMessages(path, data)
	m.logger.Debug().
		Str("session", id).
		Str("file", filepath.Base(path)).
		Int("messages", len(msgs)).
		Msg("Loaded chat session")
	return msgs, nil
}
