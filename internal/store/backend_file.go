// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/go-secure-store/internal/logger"
)

// InMemoryPath selects a file backend that never touches the disk.
const InMemoryPath = ":memory:"

// fileBackend keeps all preferences in memory and persists them as one JSON
// document. Every edit rewrites the file through a temporary file and an
// atomic rename.
type fileBackend struct {
	path     string
	inMemory bool

	// mu serializes edits and the lazy load
	mu      sync.RWMutex
	items   map[string]string
	loaded  bool
	version uint64
	closed  bool

	classifier ErrorClassificator
	notifier   *notifier
	logger     *logger.Logger
}

type filePersistedState struct {
	Version uint64            `json:"version"`
	Items   map[string]string `json:"items"`
}

// NewFileBackend opens the JSON file backend at path. The file is created on
// the first edit. Use [InMemoryPath] (or an empty path) for a volatile store.
//
// The file is read lazily: a missing file is an empty store, an unreadable
// or corrupted file is reported as an [*IOError] on the change stream, and
// the next successful edit replaces a corrupted file.
func NewFileBackend(path string, log *logger.Logger) Backend {
	if path == "" {
		path = InMemoryPath
	}

	return &fileBackend{
		path:       path,
		inMemory:   path == InMemoryPath,
		items:      make(map[string]string),
		classifier: NewGenericErrorClassifier(),
		notifier:   newNotifier(),
		logger:     log,
	}
}

// load reads the file into memory. Callers hold mu for writing.
func (f *fileBackend) load() error {
	if f.loaded {
		return nil
	}
	if f.inMemory {
		f.loaded = true
		return nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.loaded = true
			return nil
		}
		return classifyErr(f.classifier, "read preferences file", err)
	}

	var st filePersistedState
	if err = json.Unmarshal(data, &st); err != nil {
		return &IOError{Op: "decode preferences file", Err: fmt.Errorf("%w: %v", ErrCorrupted, err)}
	}
	if st.Items == nil {
		st.Items = make(map[string]string)
	}

	f.items = st.Items
	f.version = st.Version
	f.loaded = true
	return nil
}

// persist writes the given state. Callers hold mu for writing.
func (f *fileBackend) persist(items map[string]string, version uint64) error {
	if f.inMemory {
		return nil
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return classifyErr(f.classifier, "create preferences dir", err)
		}
	}

	payload, err := json.Marshal(filePersistedState{Version: version, Items: items})
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return classifyErr(f.classifier, "create temp preferences file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		return classifyErr(f.classifier, "write preferences file", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return classifyErr(f.classifier, "sync preferences file", err)
	}
	if err = tmp.Close(); err != nil {
		return classifyErr(f.classifier, "close preferences file", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return classifyErr(f.classifier, "chmod preferences file", err)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		return classifyErr(f.classifier, "replace preferences file", err)
	}

	return nil
}

// Get implements [Backend].
func (f *fileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", false, ErrClosed
	}
	if err := f.load(); err != nil {
		return "", false, err
	}

	v, ok := f.items[key]
	return v, ok, nil
}

// Edit implements [Backend].
func (f *fileBackend) Edit(ctx context.Context, fn func(m *Mutation) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := f.load(); err != nil {
		if !errors.Is(err, ErrCorrupted) {
			return err
		}
		f.logger.Warn().Err(err).
			Str("func", "fileBackend.Edit").
			Str("path", f.path).
			Msg("preferences file is corrupted, replacing it with the edited state")
		f.items = make(map[string]string)
		f.loaded = true
	}

	m := &Mutation{}
	if err := fn(m); err != nil {
		return err
	}
	if m.Empty() {
		return nil
	}

	next := maps.Clone(f.items)
	if next == nil {
		next = make(map[string]string)
	}
	m.Apply(next)
	version := f.version + 1

	if err := f.persist(next, version); err != nil {
		f.logger.Err(err).
			Str("func", "fileBackend.Edit").
			Str("path", f.path).
			Msg("failed to persist preferences")
		return err
	}

	f.items = next
	f.version = version
	f.notifier.publish(Event{Snapshot: NewSnapshot(next, version)}, version)

	return nil
}

// Changes implements [Backend].
func (f *fileBackend) Changes(ctx context.Context) <-chan Event {
	sub, ch := f.notifier.subscribe(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ch
	}
	if err := f.load(); err != nil {
		f.logger.Warn().Err(err).
			Str("func", "fileBackend.Changes").
			Str("path", f.path).
			Msg("failed to load preferences for a new subscriber")
		sub.offer(Event{Err: err}, f.version)
		return ch
	}
	sub.offer(Event{Snapshot: NewSnapshot(f.items, f.version)}, f.version)

	return ch
}

// Close implements [Backend].
func (f *fileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	f.notifier.close()
	return nil
}
