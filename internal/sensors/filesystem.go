// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// FileSystem is the subset of filesystem operations sensor discovery and
// reads need. Use OSFileSystem in production and MemoryFileSystem in tests.
type FileSystem interface {
	// Glob returns the names matching pattern in provider order.
	Glob(pattern string) ([]string, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem implements FileSystem on the host filesystem.
type OSFileSystem struct{}

// Glob delegates to filepath.Glob.
func (OSFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// ReadFile delegates to os.ReadFile.
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// MemoryFileSystem is an in-memory FileSystem. Glob yields matches in
// insertion order, which lets tests model arbitrary enumeration orders.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	order []string
	files map[string][]byte
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: make(map[string][]byte)}
}

// WriteFile stores data under name, replacing any previous contents.
func (m *MemoryFileSystem) WriteFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = path.Clean(name)
	if _, ok := m.files[name]; !ok {
		m.order = append(m.order, name)
	}
	m.files[name] = append([]byte(nil), data...)
}

// Remove deletes name if present.
func (m *MemoryFileSystem) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = path.Clean(name)
	if _, ok := m.files[name]; !ok {
		return
	}
	delete(m.files, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Glob matches pattern against stored file names.
func (m *MemoryFileSystem) Glob(pattern string) ([]string, error) {
	// Reject malformed patterns even when nothing is stored, as filepath.Glob does.
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, name := range m.order {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// ReadFile returns a copy of the stored contents.
func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path.Clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}
