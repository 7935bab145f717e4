// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"
)

// Supported algorithm names.
const (
	AlgorithmAESGCM            = "aes-256-gcm"
	AlgorithmXChaCha20Poly1305 = "xchacha20-poly1305"
)

type aeadFactory func(key []byte) (cipher.AEAD, error)

// aeadCipher is the [Cipher] implementation shared by both algorithms.
type aeadCipher struct {
	keys      *KeyChain
	algorithm string
	newAEAD   aeadFactory
	keySize   int
}

// NewAEADCipher returns a [Cipher] that seals with the given algorithm and
// derives one key per alias from keys. An empty algorithm selects
// AES-256-GCM.
//
// The IV text is the standard base64 encoding of the random nonce. The alias
// is bound as additional authenticated data, so a record sealed under one
// alias cannot be opened under another.
func NewAEADCipher(keys *KeyChain, algorithm string) (Cipher, error) {
	c := &aeadCipher{keys: keys, algorithm: algorithm}

	switch algorithm {
	case "", AlgorithmAESGCM:
		c.algorithm = AlgorithmAESGCM
		c.newAEAD = newAESGCM
		c.keySize = 32
	case AlgorithmXChaCha20Poly1305:
		c.newAEAD = chacha20poly1305.NewX
		c.keySize = chacha20poly1305.KeySize
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	return c, nil
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

func (c *aeadCipher) aead(alias string) (cipher.AEAD, error) {
	key, err := c.keys.AliasKey(alias, c.keySize)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	return c.newAEAD(key)
}

// Encrypt implements [Cipher].
func (c *aeadCipher) Encrypt(alias, plaintext string) ([]byte, string, error) {
	aead, err := c.aead(alias)
	if err != nil {
		return nil, "", fmt.Errorf("encrypt (%s): %w", c.algorithm, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), []byte(alias))
	return ciphertext, base64.StdEncoding.EncodeToString(nonce), nil
}

// Decrypt implements [Cipher].
func (c *aeadCipher) Decrypt(alias string, ciphertext []byte, ivText string) (string, error) {
	aead, err := c.aead(alias)
	if err != nil {
		return "", fmt.Errorf("decrypt (%s): %w", c.algorithm, err)
	}

	nonce, err := base64.StdEncoding.DecodeString(ivText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIV, err)
	}
	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIV, len(nonce), aead.NonceSize())
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(alias))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}
