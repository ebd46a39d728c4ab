package storage

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/curate"
	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/logging"
)

// DefaultSuffix is the extension Create gives new entity files.
const DefaultSuffix = ".gnmd"

// File is one entity file and the entities loaded from it.
type File struct {
	path     string
	fs       Provider
	logger   *logging.Logger
	repairer *curate.Repairer
	suffix   string
	lazy     bool

	ents []*entity.Entity
}

// Option configures a File.
type Option func(*File)

// WithProvider sets the raw I/O provider. The default is NewDisk(4).
func WithProvider(p Provider) Option {
	return func(f *File) {
		f.fs = p
	}
}

// WithLogger sets the logger change lines and diagnostics are written to.
func WithLogger(l *logging.Logger) Option {
	return func(f *File) {
		f.logger = l
	}
}

// WithRepairer sets the repairer used by Repair and the Fix methods.
func WithRepairer(r *curate.Repairer) Option {
	return func(f *File) {
		f.repairer = r
	}
}

// WithSuffix sets the extension Create enforces.
func WithSuffix(suffix string) Option {
	return func(f *File) {
		f.suffix = suffix
	}
}

// Lazy defers loading to an explicit Load call.
func Lazy() Option {
	return func(f *File) {
		f.lazy = true
	}
}

func newFile(path string, opts ...Option) *File {
	f := &File{
		path:   path,
		suffix: DefaultSuffix,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.fs == nil {
		f.fs = NewDisk(4)
	}
	if f.logger == nil {
		f.logger = logging.Nop()
	}
	if f.repairer == nil {
		f.repairer = curate.New()
	}
	return f
}

// Open returns the File for path. A missing file is not an error: the File
// starts empty and is created by the first Save. An existing file is loaded
// unless Lazy is given.
func Open(path string, opts ...Option) (*File, error) {
	f := newFile(path, opts...)
	if f.lazy || !f.fs.Exists(path) {
		return f, nil
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Create writes ents to a new file and returns it. The configured suffix is
// enforced on path, and an existing file is never overwritten.
func Create(path string, ents []*entity.Entity, opts ...Option) (*File, error) {
	f := newFile(path, opts...)
	if ext := filepath.Ext(path); ext != f.suffix {
		f.path = strings.TrimSuffix(path, ext) + f.suffix
	}
	if f.fs.Exists(f.path) {
		return nil, fmt.Errorf("%w: %s", entity.ErrFileExists, f.path)
	}
	if ents == nil {
		ents = []*entity.Entity{}
	}
	if err := f.fs.WriteJSON(f.path, ents); err != nil {
		return nil, err
	}
	f.ents = slices.Clone(ents)
	f.logger.Debugf("created %s with %d entities", f.path, len(ents))
	return f, nil
}

// Load reads the file, checks it and replaces the in-memory entities.
func (f *File) Load() error {
	doc, err := f.fs.ReadJSON(f.path)
	if err != nil {
		return err
	}

	report := conformance.Check(f.path, doc)
	if !report.Valid() {
		for _, line := range report.Lines() {
			f.logger.Errorf("%s", line)
		}
		return fmt.Errorf("storage: %s is not a valid entity file: %w", f.path, report.Err())
	}

	arr := doc.([]any)
	ents := make([]*entity.Entity, 0, len(arr))
	for i, v := range arr {
		e, err := entity.FromMap(v)
		if err != nil {
			return fmt.Errorf("storage: %s: record %d: %w", f.path, i, err)
		}
		ents = append(ents, e)
	}
	f.ents = ents
	f.logger.Debugf("loaded %d entities from %s", len(ents), f.path)
	return nil
}

// Save writes the in-memory entities, backing up any previous contents.
func (f *File) Save() error {
	ents := f.ents
	if ents == nil {
		ents = []*entity.Entity{}
	}
	return f.write(ents)
}

// Update replaces the entities of an existing file and saves them.
func (f *File) Update(ents []*entity.Entity) error {
	if !f.fs.Exists(f.path) {
		return fmt.Errorf("%w: %s", entity.ErrFileNotFound, f.path)
	}
	f.ents = slices.Clone(ents)
	return f.Save()
}

// write backs up the current file, if there is one, then replaces it with v.
func (f *File) write(v any) error {
	if f.fs.Exists(f.path) {
		bak, err := Backup(f.fs, f.path)
		if err != nil {
			return err
		}
		f.logger.Debugf("backed up %s to %s", f.path, bak)
	}
	if err := f.fs.WriteJSON(f.path, v); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	return nil
}

// Delete removes the file. In-memory entities are kept.
func (f *File) Delete() error {
	return f.fs.Remove(f.path)
}

func (f *File) Exists() bool {
	return f.fs.Exists(f.path)
}

func (f *File) Path() string {
	return f.path
}

func (f *File) String() string {
	return f.path
}

// Entities returns the loaded entities.
func (f *File) Entities() []*entity.Entity {
	return slices.Clone(f.ents)
}

func (f *File) Len() int {
	return len(f.ents)
}

func (f *File) indexOf(guid string) int {
	return slices.IndexFunc(f.ents, func(e *entity.Entity) bool {
		return strings.EqualFold(e.GUID, guid)
	})
}

// Get returns the entity with the given GUID.
func (f *File) Get(guid string) (*entity.Entity, error) {
	i := f.indexOf(guid)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, guid)
	}
	return f.ents[i], nil
}

// Add appends e. The change is kept in memory until Save.
func (f *File) Add(e *entity.Entity) error {
	if e == nil {
		return fmt.Errorf("storage: cannot add nil entity")
	}
	if f.indexOf(e.GUID) >= 0 {
		return fmt.Errorf("%w: %s", entity.ErrDuplicateGUID, e.GUID)
	}
	f.ents = append(f.ents, e)
	return nil
}

// Replace swaps in e for the entity with the same GUID.
func (f *File) Replace(e *entity.Entity) error {
	if e == nil {
		return fmt.Errorf("storage: cannot replace with nil entity")
	}
	i := f.indexOf(e.GUID)
	if i < 0 {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, e.GUID)
	}
	f.ents[i] = e
	return nil
}

// Remove drops the entity with the given GUID.
func (f *File) Remove(guid string) error {
	i := f.indexOf(guid)
	if i < 0 {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, guid)
	}
	f.ents = slices.Delete(f.ents, i, i+1)
	return nil
}
