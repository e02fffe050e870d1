package dir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
)

// Archive implements ports.Archive over an unpacked document directory.
type Archive struct {
	BasePath string
}

// New creates an Archive rooted at basePath.
func New(basePath string) *Archive {
	return &Archive{BasePath: basePath}
}

func (a *Archive) resolve(name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("entry name %q escapes archive root: %w", name, domain.ErrEntryNotFound)
	}
	return filepath.Join(a.BasePath, local), nil
}

// ReadEntry reads the file backing an entry.
func (a *Archive) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	path, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	return data, nil
}

// HasEntry reports whether a regular file backs the entry.
func (a *Archive) HasEntry(ctx context.Context, name string) (bool, error) {
	path, err := a.resolve(name)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat entry %s: %w", name, err)
	}
	return info.Mode().IsRegular(), nil
}

// ListEntries walks the directory and returns slash-separated entry names.
func (a *Archive) ListEntries(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(a.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(a.BasePath, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive directory: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// WriteEntries materializes entries below basePath, creating directories as needed.
func WriteEntries(basePath string, entries map[string][]byte) error {
	for name, data := range entries {
		local := filepath.FromSlash(name)
		if !filepath.IsLocal(local) {
			return fmt.Errorf("entry name %q escapes archive root", name)
		}
		path := filepath.Join(basePath, local)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}
	return nil
}
