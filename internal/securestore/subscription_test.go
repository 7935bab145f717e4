// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-store/internal/codec"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/store"
)

type fixedIDs string

func (f fixedIDs) Generate() string { return string(f) }

func TestReadValue_ReemitsOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, StoreValue(ctx, s, "a", "1", codec.JSON[string]()))

	sub := ReadValue(ctx, s, "a", codec.JSON[string]())
	defer sub.Close()
	assert.Equal(t, Some("1"), next(t, sub))

	// an edit of another key re-evaluates "a"
	require.NoError(t, StoreValue(ctx, s, "b", "2", codec.JSON[string]()))
	assert.Equal(t, Some("1"), next(t, sub))

	require.NoError(t, StoreValue(ctx, s, "a", "3", codec.JSON[string]()))
	assert.Equal(t, Some("3"), next(t, sub))
}

func TestReadValue_IndependentSubscribers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first := ReadValue(ctx, s, "k", codec.JSON[string]())
	defer first.Close()
	second := ReadValue(ctx, s, "k", codec.JSON[string]())
	defer second.Close()

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, None[string](), next(t, first))
	assert.Equal(t, None[string](), next(t, second))

	require.NoError(t, StoreValue(ctx, s, "k", "v", codec.JSON[string]()))
	assert.Equal(t, Some("v"), next(t, first))

	// closing one subscription leaves the other running
	first.Close()
	awaitEnd(t, first)
	assert.NoError(t, first.Err())

	assert.Equal(t, Some("v"), next(t, second))
	require.NoError(t, StoreValue(ctx, s, "k", "w", codec.JSON[string]()))
	assert.Equal(t, Some("w"), next(t, second))
}

func TestReadValue_DifferentTypesSameStore(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, StoreValue(ctx, s, "n", 5, codec.JSON[int]()))
	require.NoError(t, StoreValue(ctx, s, "cfg", prefsConfig{A: 2}, codec.JSON[prefsConfig]()))

	n := ReadValue(ctx, s, "n", codec.JSON[int]())
	defer n.Close()
	cfg := ReadValue(ctx, s, "cfg", codec.JSON[prefsConfig]())
	defer cfg.Close()

	assert.Equal(t, Some(5), next(t, n))
	assert.Equal(t, Some(prefsConfig{A: 2}), next(t, cfg))
}

func TestReadValue_ContextCancelEndsStream(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub := ReadValue(ctx, s, "k", codec.JSON[string]())
	next(t, sub)
	cancel()

	awaitEnd(t, sub)
	assert.NoError(t, sub.Err())
}

func TestReadValue_BackendCloseEndsStream(t *testing.T) {
	backend := store.NewFileBackend(store.InMemoryPath, logger.Nop())
	s := New(backend, newTestCipher(t), logger.Nop())

	sub := ReadValue(context.Background(), s, "k", codec.JSON[string]())
	defer sub.Close()
	next(t, sub)

	require.NoError(t, backend.Close())
	awaitEnd(t, sub)
	assert.ErrorIs(t, sub.Err(), store.ErrClosed)
}

func TestReadValue_SlowConsumerGetsLatest(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	sub := ReadValue(ctx, s, "k", codec.JSON[int]())
	defer sub.Close()

	for i := 1; i <= 20; i++ {
		require.NoError(t, StoreValue(ctx, s, "k", i, codec.JSON[int]()))
	}

	await(t, sub, Some(20))
}

func TestReadValue_SubscriptionID(t *testing.T) {
	s, _ := newTestStore(t, WithIDGenerator(fixedIDs("sub-1")))

	sub := ReadValue(context.Background(), s, "k", codec.JSON[string]())
	defer sub.Close()
	assert.Equal(t, "sub-1", sub.ID())
}
