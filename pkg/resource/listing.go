package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Entry describes one resource found by List.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Modified int64  `json:"modified"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"isDirectory"`
}

// List returns every directory and every file with a recognized extension
// directly under the root, newest first. A missing root yields no entries.
func (r *Resolver) List() ([]Entry, error) {
	dir := r.root.Dir()
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", filepath.Base(dir), err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		// follow links so a linked directory lists as a directory
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() && !r.HasKnownExtension(item.Name()) {
			continue
		}

		name := item.Name()
		if !info.IsDir() {
			name = r.TrimExtension(name)
		}
		entries = append(entries, Entry{
			ID:       item.Name(),
			Name:     name,
			Path:     path,
			Modified: info.ModTime().Unix(),
			Size:     info.Size(),
			IsDir:    info.IsDir(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Modified != entries[j].Modified {
			return entries[i].Modified > entries[j].Modified
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
