// Package pattern compiles glob expressions used to exclude content paths
// from scanning.
package pattern

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Set is a compiled list of glob patterns. The zero value matches nothing.
type Set struct {
	globs []glob.Glob
	raw   []string
}

// Compile builds a Set from slash-separated glob patterns. A "*" does not
// cross a "/" while "**" does.
func Compile(patterns []string) (Set, error) {
	var s Set
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return Set{}, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		s.globs = append(s.globs, g)
		s.raw = append(s.raw, p)
	}
	return s, nil
}

// Match reports whether path matches any pattern in the set.
func (s Set) Match(path string) bool {
	path = filepath.ToSlash(path)
	for _, g := range s.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (s Set) Len() int { return len(s.globs) }

// String lists the source patterns.
func (s Set) String() string { return strings.Join(s.raw, ", ") }
