package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/harun/nanoboard/internal/fsutil"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/rs/zerolog"
)

// Browser exposes generic file operations below one root. Every path is
// vetted by the root before any I/O happens.
type Browser struct {
	root   *sandbox.Root
	logger zerolog.Logger
}

// NewBrowser creates a browser scoped to root.
func NewBrowser(root *sandbox.Root, logger zerolog.Logger) *Browser {
	return &Browser{root: root, logger: logger}
}

// Root returns the sandbox root.
func (b *Browser) Root() *sandbox.Root {
	return b.root
}

// Tree lists the direct children of relPath, directories first then by name.
// A path that does not exist yields an empty list.
func (b *Browser) Tree(relPath string) ([]TreeEntry, error) {
	dir, err := b.root.Resolve(relPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []TreeEntry{}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", relPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, relPath)
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", relPath, err)
	}

	entries := make([]TreeEntry, 0, len(items))
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		info, err := item.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		isDir := item.IsDir()
		if item.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}

		typ := EntryFile
		if isDir {
			typ = EntryDirectory
		}
		entries = append(entries, TreeEntry{
			Name:         item.Name(),
			Type:         typ,
			IsDirectory:  isDir,
			Path:         path,
			RelativePath: b.root.Rel(path),
			Size:         info.Size(),
			Modified:     info.ModTime().Unix(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDirectory != entries[j].IsDirectory {
			return entries[i].IsDirectory
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ReadContent returns the file at relPath. A missing file surfaces as an
// error wrapping fs.ErrNotExist.
func (b *Browser) ReadContent(relPath string) (string, error) {
	target, err := b.file(relPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, relPath)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", relPath, err)
	}
	return string(data), nil
}

// Save writes content to relPath, creating parent directories.
func (b *Browser) Save(relPath, content string) error {
	target, err := b.file(relPath)
	if err != nil {
		return err
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, relPath)
	}

	if err := fsutil.AtomicWrite(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", relPath, err)
	}
	b.logger.Debug().Str("path", b.root.Rel(target)).Int("bytes", len(content)).Msg("Saved file")
	return nil
}

// Delete removes a file or a whole directory. Deleting something that is
// already gone succeeds. The root itself cannot be deleted.
func (b *Browser) Delete(relPath string) error {
	target, err := b.file(relPath)
	if err != nil {
		return err
	}

	info, err := os.Lstat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", relPath, err)
	}

	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", relPath, err)
	}
	b.logger.Debug().Str("path", b.root.Rel(target)).Msg("Deleted path")
	return nil
}

// Rename gives relPath a new leaf name in the same directory and returns the
// new root-relative path. The destination is vetted on its own, separately
// from the source.
func (b *Browser) Rename(relPath, newName string) (string, error) {
	if !sandbox.IsSafeLeafName(newName) {
		return "", fmt.Errorf("%w: unsafe name %q", sandbox.ErrAccessDenied, newName)
	}
	source, err := b.file(relPath)
	if err != nil {
		return "", err
	}

	parentRel := filepath.Dir(b.root.Rel(source))
	dest, err := b.root.Resolve(filepath.Join(parentRel, newName))
	if err != nil {
		return "", err
	}
	if dest == b.root.Dir() || filepath.Dir(dest) != filepath.Dir(source) {
		return "", fmt.Errorf("%w: rename must stay in the same directory", sandbox.ErrAccessDenied)
	}

	if _, err := os.Lstat(source); err != nil {
		return "", fmt.Errorf("stat %s: %w", relPath, err)
	}
	if dest == source {
		return b.root.Rel(dest), nil
	}
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, newName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", newName, err)
	}

	if err := os.Rename(source, dest); err != nil {
		return "", fmt.Errorf("rename %s: %w", relPath, err)
	}
	b.logger.Debug().
		Str("from", b.root.Rel(source)).
		Str("to", b.root.Rel(dest)).
		Msg("Renamed path")
	return b.root.Rel(dest), nil
}

// file resolves relPath and refuses the root itself.
func (b *Browser) file(relPath string) (string, error) {
	target, err := b.root.Resolve(relPath)
	if err != nil {
		return "", err
	}
	if target == b.root.Dir() {
		if relPath == "" {
			return "", ErrPathRequired
		}
		return "", fmt.Errorf("%w: the root itself", sandbox.ErrAccessDenied)
	}
	return target, nil
}
