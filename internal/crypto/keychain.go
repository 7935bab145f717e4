// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// MasterKeySize is the length of the master key in bytes (256 bits).
	MasterKeySize = 32
	// SaltSize is the length of salts produced by [GenerateSalt].
	SaltSize = 16

	aliasKeyInfoPrefix = "securestore/alias/"
)

// Argon2id parameters recommended by OWASP (2024).
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024 // 64 MiB
	argonThreads uint8  = 4
)

// KeyChain owns the master key and derives one key per alias from it.
//
// The master key lives in a memguard locked buffer for the lifetime of the
// key chain. Derived alias keys are computed on demand and wiped by the
// caller after use.
type KeyChain struct {
	mu     sync.RWMutex
	master *memguard.LockedBuffer
}

// NewKeyChain takes ownership of master. The slice is copied into locked
// memory and then wiped.
func NewKeyChain(master []byte) (*KeyChain, error) {
	if len(master) != MasterKeySize {
		memguard.WipeBytes(master)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKey, MasterKeySize, len(master))
	}

	buf := memguard.NewBufferFromBytes(master)
	memguard.WipeBytes(master)

	return &KeyChain{master: buf}, nil
}

// DeriveMasterKey stretches a passphrase into a master key using Argon2id.
// The same passphrase and salt always yield the same key.
func DeriveMasterKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: passphrase is empty", ErrInvalidKey)
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidKey, SaltSize)
	}
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, MasterKeySize), nil
}

// GenerateSalt reads [SaltSize] random bytes from the OS CSPRNG.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// AliasKey derives the key for alias with HKDF-SHA256 over the master key.
// The returned slice is owned by the caller, who should wipe it after use.
func (k *KeyChain) AliasKey(alias string, size int) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.master == nil || !k.master.IsAlive() {
		return nil, ErrKeyChainClosed
	}

	r := hkdf.New(sha256.New, k.master.Bytes(), nil, []byte(aliasKeyInfoPrefix+alias))
	key := make([]byte, size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key for alias %q: %w", alias, err)
	}
	return key, nil
}

// Destroy wipes the master key. Further derivations fail with
// [ErrKeyChainClosed]. Safe to call more than once.
func (k *KeyChain) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.master != nil {
		k.master.Destroy()
		k.master = nil
	}
}
