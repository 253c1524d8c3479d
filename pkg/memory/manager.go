package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/harun/nanoboard/internal/fsutil"
	"github.com/harun/nanoboard/pkg/resource"
	"github.com/rs/zerolog"
)

// Manager reads and writes memories.
type Manager struct {
	resolver *resource.Resolver
	logger   zerolog.Logger
}

// NewManager creates a memory manager over resolver.
func NewManager(resolver *resource.Resolver, logger zerolog.Logger) *Manager {
	return &Manager{resolver: resolver, logger: logger}
}

// List returns every memory, newest first.
func (m *Manager) List() ([]resource.Entry, error) {
	return m.resolver.List()
}

// Get returns the memory content, or "" when it does not exist.
func (m *Manager) Get(id string) (string, error) {
	path, err := m.resolver.Find(id)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read memory %s: %w", id, err)
	}
	return string(data), nil
}

// Save overwrites an existing memory in place. A new memory is created as
// id itself when it already carries a known extension, otherwise as id.md.
func (m *Manager) Save(id, content string) error {
	path, err := m.resolver.Find(id)
	if errors.Is(err, resource.ErrNotFound) {
		name := id
		if !m.resolver.HasKnownExtension(id) {
			name = id + ".md"
		}
		path, err = m.resolver.Root().Leaf(name)
	}
	if err != nil {
		return err
	}

	if err := fsutil.AtomicWrite(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write memory %s: %w", id, err)
	}
	m.logger.Debug().Str("memory", id).Int("bytes", len(content)).Msg("Saved memory")
	return nil
}

// Delete removes a directory-shaped memory with everything in it, or the
// single file backing id. Missing memories are ignored.
func (m *Manager) Delete(id string) error {
	base, err := m.resolver.Root().Leaf(id)
	if err != nil {
		return err
	}
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		if err := os.RemoveAll(base); err != nil {
			return fmt.Errorf("delete memory %s: %w", id, err)
		}
		m.logger.Debug().Str("memory", id).Msg("Deleted memory directory")
		return nil
	}

	path, err := m.resolver.Find(id)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete memory %s: %w", id, err)
	}
	m.logger.Debug().Str("memory", id).Msg("Deleted memory")
	return nil
}
