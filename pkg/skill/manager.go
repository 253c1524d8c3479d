package skill

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/harun/nanoboard/internal/fsutil"
	"github.com/harun/nanoboard/pkg/resource"
	"github.com/harun/nanoboard/pkg/store"
	"github.com/rs/zerolog"
)

// Manager combines skill definitions on disk with the registry.
type Manager struct {
	resolver *resource.Resolver
	registry *store.Store
	logger   zerolog.Logger
}

// NewManager creates a skill manager. registry must be the store for
// skills.json inside the resolver's root.
func NewManager(resolver *resource.Resolver, registry *store.Store, logger zerolog.Logger) *Manager {
	return &Manager{resolver: resolver, registry: registry, logger: logger}
}

// List merges registry entries with definitions found on disk. Registry
// values win; skills only found on disk are enabled unless their frontmatter
// says otherwise. A malformed registry is logged and treated as empty.
func (m *Manager) List() ([]Skill, error) {
	entries, err := m.registry.List()
	if err != nil {
		if !errors.Is(err, store.ErrMalformed) {
			return nil, err
		}
		m.logger.Warn().Err(err).Msg("Ignoring malformed skill registry")
		entries = nil
	}

	files, err := m.resolver.List()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Skill)
	var order []string
	for _, f := range files {
		if f.ID == RegistryFile {
			continue
		}
		s := m.fromDisk(f)
		byID[s.ID] = &s
		order = append(order, s.ID)
	}

	for _, e := range entries {
		id := e.ID()
		if id == "" {
			continue
		}
		s, ok := byID[id]
		if !ok {
			s = &Skill{ID: id, Name: id, Description: DefaultDescription, Enabled: true}
			byID[id] = s
			order = append(order, id)
		}
		s.Registered = true
		if v := e.Get("name"); v.String() != "" {
			s.Name = v.String()
		}
		if v := e.Get("description"); v.String() != "" {
			s.Description = v.String()
		}
		if v := e.Get("enabled"); v.Exists() {
			s.Enabled = v.Bool()
		}
	}

	out := make([]Skill, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Manager) fromDisk(f resource.Entry) Skill {
	s := Skill{
		ID:          f.Name,
		Name:        f.Name,
		Description: DefaultDescription,
		Enabled:     true,
		HasContent:  true,
		Modified:    f.Modified,
	}

	content, err := m.read(f.Name)
	if err != nil {
		return s
	}
	fm, _ := resource.ParseFrontmatter(content)
	if fm.Name != "" {
		s.Name = fm.Name
	}
	if fm.Description != "" {
		s.Description = fm.Description
	}
	if fm.Enabled != nil {
		s.Enabled = *fm.Enabled
	}
	return s
}

// Content returns the definition of id.
func (m *Manager) Content(id string) (string, error) {
	return m.read(id)
}

func (m *Manager) read(id string) (string, error) {
	if id == RegistryFile {
		return "", fmt.Errorf("%w: %s", resource.ErrNotFound, id)
	}
	path, err := m.resolver.Find(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read skill %s: %w", id, err)
	}
	return string(data), nil
}

// Toggle sets the enabled flag of id. A skill that exists on disk but not in
// the registry gets an entry; an unknown skill is store.ErrNotFound.
func (m *Manager) Toggle(id string, enabled bool) error {
	if _, err := m.registry.SetField(id, "enabled", enabled); err == nil || !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := m.resolver.Find(id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return err
	}

	entry, err := m.registryEntry(id, id, DefaultDescription, enabled)
	if err != nil {
		return err
	}
	_, err = m.registry.Upsert(entry, true)
	return err
}

// Delete removes the registry entry and the definition, file or directory.
// Either one may already be gone.
func (m *Manager) Delete(id string) error {
	base, err := m.resolver.Root().Leaf(id)
	if err != nil {
		return err
	}
	if id == RegistryFile {
		return fmt.Errorf("%w: %s", resource.ErrNotFound, id)
	}

	if err := m.registry.Remove(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if info, err := os.Stat(base); err == nil && info.IsDir() {
		if err := os.RemoveAll(base); err != nil {
			return fmt.Errorf("delete skill %s: %w", id, err)
		}
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
		return fmt.Errorf("delete skill %s: %w", id, err)
	}
	m.logger.Debug().Str("skill", id).Msg("Deleted skill")
	return nil
}

// Save writes the definition for name and registers it. An existing
// definition is overwritten in place; a new one is created as <id>.md.
// It returns the derived id.
func (m *Manager) Save(name, content string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	id := IDFromName(name)
	if id == RegistryFile {
		return "", fmt.Errorf("%w: reserved name %q", store.ErrInvalidEntry, name)
	}

	path, err := m.resolver.Find(id)
	if errors.Is(err, resource.ErrNotFound) {
		path, err = m.resolver.Root().Leaf(id + ".md")
	}
	if err != nil {
		return "", err
	}

	if err := fsutil.AtomicWrite(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write skill %s: %w", id, err)
	}

	description := DefaultDescription
	if fm, _ := resource.ParseFrontmatter(content); fm.Description != "" {
		description = fm.Description
	}
	entry, err := m.registryEntry(id, name, description, true)
	if err != nil {
		return "", err
	}
	if _, err := m.registry.Upsert(entry, false); err != nil {
		return "", err
	}

	m.logger.Debug().Str("skill", id).Msg("Saved skill")
	return id, nil
}

func (m *Manager) registryEntry(id, name, description string, enabled bool) (store.Entry, error) {
	e := store.Entry(`{}`)
	var err error
	for _, kv := range []struct {
		key   string
		value interface{}
	}{
		{"id", id},
		{"name", name},
		{"description", description},
		{"enabled", enabled},
	} {
		if e, err = e.With(kv.key, kv.value); err != nil {
			return nil, err
		}
	}
	return e, nil
}
