// Package storagetest provides an in-memory storage.Provider for tests.
package storagetest

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/storage"
)

// MemFS keeps files in memory and records every mutating operation.
type MemFS struct {
	mu    sync.Mutex
	files map[string][]byte
	ops   []string
	clock func() time.Time

	Indent int
}

// NewMemFS returns an empty file system whose clock advances by one
// microsecond per call, so consecutive backups get distinct names.
func NewMemFS() *MemFS {
	t := time.Date(2023, 4, 18, 9, 54, 41, 0, time.Local)
	return &MemFS{
		files: make(map[string][]byte),
		clock: func() time.Time {
			t = t.Add(time.Microsecond)
			return t
		},
		Indent: 4,
	}
}

// SetClock replaces the clock.
func (m *MemFS) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = now
}

// Put stores raw content at path without recording an operation.
func (m *MemFS) Put(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(content)
}

// Content returns the raw content at path.
func (m *MemFS) Content(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return string(b), ok
}

// Paths returns every stored path, sorted.
func (m *MemFS) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Ops returns the recorded operations, e.g. "copy a.gnmd a_bak_....gnmd" or
// "write a.gnmd".
func (m *MemFS) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ops)
}

func (m *MemFS) ReadJSON(path string) (any, error) {
	m.mu.Lock()
	b, ok := m.files[path]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
	}
	v, err := storage.DecodeJSON(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (m *MemFS) WriteJSON(path string, v any) error {
	data, err := storage.EncodeJSON(v, m.Indent)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	m.ops = append(m.ops, "write "+path)
	return nil
}

func (m *MemFS) CopyFile(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[src]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrFileNotFound, src)
	}
	if _, exists := m.files[dst]; exists {
		return fmt.Errorf("copy %s: destination %s exists", src, dst)
	}
	m.files[dst] = slices.Clone(b)
	m.ops = append(m.ops, "copy "+src+" "+dst)
	return nil
}

func (m *MemFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *MemFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
	}
	delete(m.files, path)
	m.ops = append(m.ops, "remove "+path)
	return nil
}

func (m *MemFS) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock()
}

var _ storage.Provider = (*MemFS)(nil)
