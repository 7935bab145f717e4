// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-store/internal/logger"
)

func newTestFileBackend(t *testing.T, path string) Backend {
	t.Helper()
	b := NewFileBackend(path, logger.Nop())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func setValue(key, value string) func(m *Mutation) error {
	return func(m *Mutation) error {
		m.Set(key, value)
		return nil
	}
}

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := newTestFileBackend(t, filepath.Join(t.TempDir(), "prefs.json"))

	ev := recvEvent(t, b.Changes(context.Background()))
	require.NoError(t, ev.Err)
	assert.Zero(t, ev.Snapshot.Len())
	assert.Zero(t, ev.Snapshot.Version())

	_, ok, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackend_EditPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	ctx := context.Background()

	b := newTestFileBackend(t, path)
	require.NoError(t, b.Edit(ctx, setValue("theme", "dark")))
	require.NoError(t, b.Edit(ctx, setValue("lang", "en")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var st filePersistedState
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, uint64(2), st.Version)
	assert.Equal(t, map[string]string{"theme": "dark", "lang": "en"}, st.Items)

	// a second instance sees the same state
	reopened := newTestFileBackend(t, path)
	v, ok, err := reopened.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	ev := recvEvent(t, reopened.Changes(ctx))
	assert.Equal(t, uint64(2), ev.Snapshot.Version())
}

func TestFileBackend_ChangesEmitsEveryEdit(t *testing.T) {
	ctx := context.Background()
	b := newTestFileBackend(t, InMemoryPath)

	ch := b.Changes(ctx)
	assert.Zero(t, recvEvent(t, ch).Snapshot.Len())

	require.NoError(t, b.Edit(ctx, setValue("a", "1")))
	ev := recvEvent(t, ch)
	assert.Equal(t, uint64(1), ev.Snapshot.Version())

	require.NoError(t, b.Edit(ctx, setValue("b", "2")))
	ev = recvEvent(t, ch)
	assert.Equal(t, uint64(2), ev.Snapshot.Version())
	assert.Equal(t, []string{"a", "b"}, ev.Snapshot.Keys())

	require.NoError(t, b.Edit(ctx, func(m *Mutation) error {
		m.Clear()
		return nil
	}))
	ev = recvEvent(t, ch)
	assert.Zero(t, ev.Snapshot.Len())
}

func TestFileBackend_EditCallbackErrorAborts(t *testing.T) {
	ctx := context.Background()
	b := newTestFileBackend(t, InMemoryPath)
	ch := b.Changes(ctx)
	recvEvent(t, ch)

	err := b.Edit(ctx, func(m *Mutation) error {
		m.Set("a", "1")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, ok, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	requireNoEvent(t, ch)
}

func TestFileBackend_EmptyEditIsNoop(t *testing.T) {
	ctx := context.Background()
	b := newTestFileBackend(t, InMemoryPath)
	ch := b.Changes(ctx)
	recvEvent(t, ch)

	require.NoError(t, b.Edit(ctx, func(*Mutation) error { return nil }))
	requireNoEvent(t, ch)
}

func TestFileBackend_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	ctx := context.Background()

	b := newTestFileBackend(t, path)
	ch := b.Changes(ctx)

	ev := recvEvent(t, ch)
	require.Error(t, ev.Err)
	assert.True(t, IsStorageIO(ev.Err))
	assert.ErrorIs(t, ev.Err, ErrCorrupted)

	_, _, err := b.Get(ctx, "k")
	assert.True(t, IsStorageIO(err))

	// the next edit replaces the corrupted file
	require.NoError(t, b.Edit(ctx, setValue("k", "v")))
	ev = recvEvent(t, ch)
	require.NoError(t, ev.Err)
	v, ok := ev.Snapshot.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileBackend_UnreadableFile(t *testing.T) {
	// a directory in place of the file cannot be read
	path := t.TempDir()
	b := newTestFileBackend(t, path)

	ev := recvEvent(t, b.Changes(context.Background()))
	require.Error(t, ev.Err)
	assert.True(t, IsStorageIO(ev.Err))
	assert.False(t, errors.Is(ev.Err, ErrCorrupted))

	err := b.Edit(context.Background(), setValue("k", "v"))
	assert.True(t, IsStorageIO(err))
}

func TestFileBackend_CanceledEdit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestFileBackend(t, InMemoryPath)
	err := b.Edit(ctx, setValue("k", "v"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileBackend_Close(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(InMemoryPath, logger.Nop())
	ch := b.Changes(ctx)
	recvEvent(t, ch)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	requireClosed(t, ch)

	assert.ErrorIs(t, b.Edit(ctx, setValue("k", "v")), ErrClosed)
	_, _, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	requireClosed(t, b.Changes(ctx))
}

func TestFileBackend_IndependentSubscribers(t *testing.T) {
	ctx := context.Background()
	b := newTestFileBackend(t, InMemoryPath)

	first := b.Changes(ctx)
	second := b.Changes(ctx)
	recvEvent(t, first)
	recvEvent(t, second)

	require.NoError(t, b.Edit(ctx, setValue("k", "v")))
	assert.Equal(t, uint64(1), recvEvent(t, first).Snapshot.Version())
	assert.Equal(t, uint64(1), recvEvent(t, second).Snapshot.Version())
}
