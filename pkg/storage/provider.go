package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genemede/gnmd/pkg/entity"
)

// Provider is the raw I/O a File needs. Disk is the production
// implementation; storagetest.MemFS is an in-memory double.
type Provider interface {
	// ReadJSON decodes the file at path. A missing file yields an error
	// wrapping entity.ErrFileNotFound; invalid JSON one wrapping
	// entity.ErrMalformedJSON.
	ReadJSON(path string) (any, error)

	// WriteJSON encodes v and replaces the file at path.
	WriteJSON(path string, v any) error

	CopyFile(src, dst string) error
	Exists(path string) bool
	Remove(path string) error

	// Now is the clock used for backup names.
	Now() time.Time
}

// DecodeJSON decodes a single JSON document. Numbers are kept as
// json.Number so they are written back unchanged.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", entity.ErrMalformedJSON)
	}
	return v, nil
}

// EncodeJSON encodes v with the given indent width and a trailing newline.
func EncodeJSON(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// Disk is a Provider backed by the local file system.
type Disk struct {
	Indent int
}

// NewDisk returns a disk provider writing JSON with the given indent width.
func NewDisk(indent int) *Disk {
	return &Disk{Indent: indent}
}

func (d *Disk) ReadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (d *Disk) WriteJSON(path string, v any) error {
	data, err := EncodeJSON(v, d.Indent)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Create temp file for atomic write
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (d *Disk) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", entity.ErrFileNotFound, src)
		}
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (d *Disk) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (d *Disk) Now() time.Time {
	return time.Now()
}
