// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/cipher_mock.go -package=mock

// Cipher encrypts and decrypts text under a named key alias.
//
// Resolving an alias to actual key material is entirely the implementation's
// business; callers only ever pass the alias around.
//
// Every Encrypt call draws a fresh initialization vector, so encrypting the
// same plaintext twice yields different outputs.
type Cipher interface {
	// Encrypt seals plaintext with the key behind alias. It returns the
	// ciphertext and the text form of the initialization vector used.
	Encrypt(alias, plaintext string) (ciphertext []byte, ivText string, err error)

	// Decrypt opens ciphertext sealed by Encrypt under the same alias and
	// ivText. It fails with an error matching [ErrCrypto] on a wrong key,
	// tampered input or a malformed initialization vector.
	Decrypt(alias string, ciphertext []byte, ivText string) (string, error)
}
