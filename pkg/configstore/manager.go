// Package configstore edits the managed agent's JSON configuration document
// and keeps a bounded history of previous versions next to it.
package configstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harun/nanoboard/internal/fsutil"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// HistoryDir is created next to the config file.
const HistoryDir = ".history"

const snapshotLayout = "20060102-150405.000"

// Options configures a Manager.
type Options struct {
	// Root is the directory holding the document and its history.
	Root         *sandbox.Root
	File         string // e.g. "config.json"
	HistoryLimit int    // 0 disables history
	Logger       zerolog.Logger
}

// Snapshot is one saved previous version.
type Snapshot struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// ValidationResult reports schema problems of a document.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Manager loads, saves and validates the config document.
type Manager struct {
	root    *sandbox.Root
	path    string
	history *sandbox.Root
	limit   int
	schema  *gojsonschema.Schema
	logger  zerolog.Logger
	now     func() time.Time
	mu      sync.Mutex
}

// NewManager creates a manager and compiles the document schema.
func NewManager(opts Options) (*Manager, error) {
	if opts.Root == nil || opts.File == "" {
		return nil, fmt.Errorf("config root and file are required")
	}
	path, err := opts.Root.Leaf(opts.File)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	historyDir, err := opts.Root.Leaf(HistoryDir)
	if err != nil {
		return nil, fmt.Errorf("config history: %w", err)
	}
	history, err := sandbox.NewRoot(historyDir)
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(DocumentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	return &Manager{
		root:    opts.Root,
		path:    path,
		history: history,
		limit:   opts.HistoryLimit,
		schema:  schema,
		logger:  opts.Logger,
		now:     time.Now,
	}, nil
}

// Path returns the document location.
func (m *Manager) Path() string {
	return m.path
}

// Load returns the stored document, or {} when there is none.
func (m *Manager) Load() (json.RawMessage, error) {
	if err := m.root.Contains(m.path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return json.RawMessage(`{}`), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	return json.RawMessage(data), nil
}

// Save replaces the document with doc, indented, after snapshotting the
// current version.
func (m *Manager) Save(doc []byte) error {
	if !isObject(doc) {
		return ErrInvalidDocument
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.root.Contains(m.path); err != nil {
		return err
	}
	if err := m.snapshotLocked(); err != nil {
		return err
	}
	if err := fsutil.AtomicWrite(m.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	m.logger.Info().Str("path", m.path).Msg("Saved config")
	return nil
}

// Validate checks doc against the document schema.
func (m *Manager) Validate(doc []byte) ValidationResult {
	if !isObject(doc) {
		return ValidationResult{Valid: false, Errors: []string{"Invalid config format"}}
	}

	result, err := m.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}
	if result.Valid() {
		return ValidationResult{Valid: true}
	}

	out := ValidationResult{Valid: false}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, e.String())
	}
	return out
}

// History lists snapshots, newest first.
func (m *Manager) History() ([]Snapshot, error) {
	if err := m.root.Contains(m.history.Dir()); err != nil {
		return nil, err
	}
	items, err := os.ReadDir(m.history.Dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("read config history: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(items))
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".json") {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Filename:  item.Name(),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		si, ci := snapshotOrder(snapshots[i].Filename)
		sj, cj := snapshotOrder(snapshots[j].Filename)
		if si != sj {
			return si > sj
		}
		return ci > cj
	})
	return snapshots, nil
}

// snapshotOrder splits a snapshot name into its stamped prefix and the
// collision counter added when several saves share one millisecond.
// "config-20260310-083000.000-2.json" yields ("config-20260310-083000.000", 2).
func snapshotOrder(name string) (string, int) {
	stem := strings.TrimSuffix(name, ".json")
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return stem, 0
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n <= 0 {
		return stem, 0
	}
	return stem[:i], n
}

// Restore makes a snapshot the current document. The version it replaces is
// snapshotted like any other save.
func (m *Manager) Restore(name string) error {
	path, err := m.snapshotPath(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := m.Save(data); err != nil {
		return err
	}
	m.logger.Info().Str("snapshot", name).Msg("Restored config")
	return nil
}

// DeleteVersion removes one snapshot.
func (m *Manager) DeleteVersion(name string) error {
	path, err := m.snapshotPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (m *Manager) snapshotPath(name string) (string, error) {
	if !sandbox.IsSafeLeafName(name) {
		return "", fmt.Errorf("%w: unsafe snapshot name %q", sandbox.ErrAccessDenied, name)
	}
	path, err := m.history.Leaf(name)
	if err != nil {
		return "", err
	}
	if err := m.root.Contains(path); err != nil {
		return "", err
	}
	return path, nil
}

// snapshotLocked copies the current document into the history directory and
// prunes the oldest entries beyond the limit.
func (m *Manager) snapshotLocked() error {
	if m.limit <= 0 {
		return nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(m.path), filepath.Ext(m.path))
	stamp := m.now().UTC().Format(snapshotLayout)
	name := fmt.Sprintf("%s-%s.json", base, stamp)
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(m.history.Dir(), name)); errors.Is(err, fs.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s-%s-%d.json", base, stamp, i)
	}

	target, err := m.snapshotPath(name)
	if err != nil {
		return err
	}
	if err := fsutil.AtomicWrite(target, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	snapshots, err := m.History()
	if err != nil {
		return err
	}
	for _, s := range snapshots[min(len(snapshots), m.limit):] {
		path, err := m.snapshotPath(s.Filename)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn().Err(err).Str("snapshot", s.Filename).Msg("Failed to prune config snapshot")
		}
	}
	return nil
}

func isObject(doc []byte) bool {
	return gjson.ValidBytes(doc) && gjson.ParseBytes(doc).IsObject()
}
