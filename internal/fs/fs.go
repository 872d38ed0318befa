// Package fs provides filesystem adapters that implement check service interfaces.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eykd/lessonlint/internal/slug"
)

// OSReader implements check.DirectoryReader using os.ReadDir.
type OSReader struct {
	Root string
}

// ReadDirImpl lists the regular files of a directory below the project root.
func (r *OSReader) ReadDirImpl(_ context.Context, dir string) ([]string, error) {
	full := filepath.Join(r.Root, filepath.FromSlash(dir))
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", full, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ReadDir delegates to ReadDirImpl.
func (r *OSReader) ReadDir(ctx context.Context, dir string) ([]string, error) {
	return r.ReadDirImpl(ctx, dir)
}

// OSContentReader implements check.ContentReader using os.ReadFile.
type OSContentReader struct {
	Root string
}

// ReadFileImpl reads the full content of a file under the project root.
func (cr *OSContentReader) ReadFileImpl(_ context.Context, filename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(cr.Root, filepath.FromSlash(filename)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFile delegates to ReadFileImpl.
func (cr *OSContentReader) ReadFile(ctx context.Context, filename string) (string, error) {
	return cr.ReadFileImpl(ctx, filename)
}

// SlugAdapter implements index.Slugifier and check.Normalizer using the
// slug package.
type SlugAdapter struct{}

// Slug converts an identifier to a kebab-case suggestion.
func (SlugAdapter) Slug(s string) string { return slug.Slug(s) }

// Normalize returns s in Unicode NFC form.
func (SlugAdapter) Normalize(s string) string { return slug.Normalize(s) }

// ErrNoProject is returned when no project marker is found in any parent
// directory.
var ErrNoProject = errors.New("no index.json or .lessonlint.yaml found")

// FindProjectRootImpl walks up from start looking for a directory that
// contains one of the marker files.
func FindProjectRootImpl(start string, markers ...string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		for _, m := range markers {
			info, err := os.Stat(filepath.Join(dir, m))
			if err == nil && !info.IsDir() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}
