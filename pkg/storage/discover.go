package storage

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher selects entity files by glob pattern. Patterns are matched against
// slash-separated paths relative to the search root; '*' also crosses
// directory boundaries.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles include and exclude patterns.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		m.include = append(m.include, g)
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		m.exclude = append(m.exclude, g)
	}

	return m, nil
}

// Match reports whether path is selected. Exclude patterns take precedence;
// with no include patterns every path not excluded is selected.
func (m *Matcher) Match(path string) bool {
	path = filepath.ToSlash(filepath.Clean(path))

	for _, pattern := range m.exclude {
		if pattern.Match(path) {
			return false
		}
	}

	if len(m.include) == 0 {
		return true
	}

	for _, pattern := range m.include {
		if pattern.Match(path) {
			return true
		}
	}

	return false
}

// FindFiles walks root and returns the regular files m selects, in lexical
// order. Hidden directories below root are skipped.
func FindFiles(root string, m *Matcher) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if m.Match(rel) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return found, nil
}
