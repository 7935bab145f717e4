// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EncryptedPayload is the transient result of one encryption: the
// initialization vector in its text form and the raw ciphertext.
//
// It exists only for the duration of a single write or read. It is never
// persisted as two fields; the codec package packs it into one record string.
type EncryptedPayload struct {
	// IVText is the cipher's text rendering of the initialization vector.
	IVText string
	// Ciphertext is the sealed plaintext, authentication tag included.
	Ciphertext []byte
}

// IsZero reports whether the payload carries neither an IV nor ciphertext.
func (p EncryptedPayload) IsZero() bool {
	return p.IVText == "" && len(p.Ciphertext) == 0
}
