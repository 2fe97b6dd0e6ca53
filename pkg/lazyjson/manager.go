// Package lazyjson keeps a JSON document on disk behind a lazily loaded,
// mutex-guarded value. Writes go through a temp file and a rename.
package lazyjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotLoaded is returned by Save when nothing has been read or created yet.
var ErrNotLoaded = errors.New("lazyjson: document not loaded")

// Mutable
type manager[T any] struct {
	path   string
	data   *T
	loaded bool
	dirty  bool
	mu     sync.RWMutex
	opts   options[T]
}

// Manager is a handle on one JSON document.
type Manager[T any] = *manager[T]

// New creates a Manager for the document at path. Nothing is read until first use.
func New[T any](path string, opts ...Option[T]) Manager[T] {
	m := &manager[T]{
		path: path,
		opts: options[T]{
			indent:          "  ",
			fileMode:        0644,
			createIfMissing: true,
		},
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	return m
}

// Path returns the file backing the document.
func (m *manager[T]) Path() string { return m.path }

// Get returns the current document, loading it on first call.
// Callers must not mutate the returned value; use Modify.
func (m *manager[T]) Get() (*T, error) {
	m.mu.RLock()
	if m.loaded {
		defer m.mu.RUnlock()
		return m.data, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return m.data, nil
	}
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	return m.data, nil
}

// Modify runs fn on the document under the write lock and marks it dirty.
// If fn fails the document is left as fn left it but is not marked dirty.
func (m *manager[T]) Modify(fn func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		if err := m.loadLocked(); err != nil {
			return err
		}
	}
	if err := fn(m.data); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

// Update is Modify followed by Save.
func (m *manager[T]) Update(fn func(*T) error) error {
	if err := m.Modify(fn); err != nil {
		return err
	}
	return m.Save()
}

// Save writes the document if it changed since the last load or save.
func (m *manager[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}
	if !m.loaded {
		return ErrNotLoaded
	}
	return m.saveLocked()
}

// Reload discards in-memory changes and reads the file again.
func (m *manager[T]) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = false
	m.dirty = false
	m.data = nil
	return m.loadLocked()
}

// IsDirty reports whether there are unsaved changes.
func (m *manager[T]) IsDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// IsLoaded reports whether the document has been read or created.
func (m *manager[T]) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Must hold write lock.
func (m *manager[T]) loadLocked() error {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", m.path, err)
		}
		if !m.opts.createIfMissing {
			return fmt.Errorf("document missing: %w", err)
		}
		if m.opts.defaultValue != nil {
			m.data = m.opts.defaultValue()
		} else {
			m.data = new(T)
		}
		m.loaded = true
		m.dirty = true
		return nil
	}

	v := new(T)
	if m.opts.defaultValue != nil {
		v = m.opts.defaultValue()
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.path, err)
	}
	m.data = v
	m.loaded = true
	m.dirty = false
	return nil
}

// Must hold write lock.
func (m *manager[T]) saveLocked() error {
	var raw []byte
	var err error
	if m.opts.indent != "" {
		raw, err = json.MarshalIndent(m.data, "", m.opts.indent)
	} else {
		raw, err = json.Marshal(m.data)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, m.opts.fileMode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	m.dirty = false
	return nil
}
