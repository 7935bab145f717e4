// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"errors"
	"fmt"
)

// ErrCrypto is the umbrella error for every failure reported by this
// package. The more specific errors below wrap it.
var ErrCrypto = errors.New("crypto error")

var (
	// ErrDecryption is returned when authentication of the ciphertext fails:
	// wrong key, wrong alias or tampered data.
	ErrDecryption = fmt.Errorf("%w: decryption failed", ErrCrypto)

	// ErrInvalidIV is returned when the IV text cannot be decoded or has the
	// wrong length for the configured algorithm.
	ErrInvalidIV = fmt.Errorf("%w: invalid initialization vector", ErrCrypto)

	// ErrUnknownAlgorithm is returned by [NewAEADCipher] for an unsupported
	// algorithm name.
	ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", ErrCrypto)

	// ErrInvalidKey is returned when key material has the wrong size or
	// cannot be parsed.
	ErrInvalidKey = fmt.Errorf("%w: invalid key material", ErrCrypto)

	// ErrKeyChainClosed is returned after [KeyChain.Destroy].
	ErrKeyChainClosed = fmt.Errorf("%w: key chain destroyed", ErrCrypto)
)
