// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-store/internal/crypto"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/store"
)

const waitTimeout = 2 * time.Second

type prefsConfig struct {
	A int    `json:"a"`
	B string `json:"b"`
}

func newTestCipher(t *testing.T) crypto.Cipher {
	t.Helper()
	master := make([]byte, crypto.MasterKeySize)
	_, err := rand.Read(master)
	require.NoError(t, err)

	keys, err := crypto.NewKeyChain(master)
	require.NoError(t, err)
	t.Cleanup(keys.Destroy)

	c, err := crypto.NewAEADCipher(keys, crypto.AlgorithmAESGCM)
	require.NoError(t, err)
	return c
}

func newTestBackend(t *testing.T) store.Backend {
	t.Helper()
	b := store.NewFileBackend(store.InMemoryPath, logger.Nop())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newTestStore(t *testing.T, opts ...Option) (*Store, store.Backend) {
	t.Helper()
	b := newTestBackend(t)
	return New(b, newTestCipher(t), logger.Nop(), opts...), b
}

// next returns the next emission of sub.
func next[T any](t *testing.T, sub *Subscription[T]) Optional[T] {
	t.Helper()
	select {
	case v, ok := <-sub.Values():
		require.True(t, ok, "subscription ended: %v", sub.Err())
		return v
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a value")
	}
	return Optional[T]{}
}

// await reads emissions until one equals want.
func await[T any](t *testing.T, sub *Subscription[T], want Optional[T]) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case v, ok := <-sub.Values():
			require.True(t, ok, "subscription ended: %v", sub.Err())
			if assert.ObjectsAreEqual(want, v) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

// awaitEnd waits until the value stream of sub is closed.
func awaitEnd[T any](t *testing.T, sub *Subscription[T]) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case _, ok := <-sub.Values():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription did not end")
		}
	}
}
