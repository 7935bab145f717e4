// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"strconv"
	"strings"

	"github.com/MKhiriev/go-secure-store/models"
)

const (
	// IVSeparator splits the IV text from the ciphertext bytes.
	IVSeparator = "]"
	// ByteSeparator splits individual ciphertext bytes.
	ByteSeparator = "|"
)

// EncodeRecord packs ivText and ciphertext into a single record string.
// Each ciphertext byte is written as a signed decimal number.
func EncodeRecord(ivText string, ciphertext []byte) string {
	var b strings.Builder
	// worst case "-128|" per byte
	b.Grow(len(ivText) + len(IVSeparator) + len(ciphertext)*5)

	b.WriteString(ivText)
	b.WriteString(IVSeparator)
	for i, c := range ciphertext {
		if i > 0 {
			b.WriteString(ByteSeparator)
		}
		b.WriteString(strconv.FormatInt(int64(int8(c)), 10))
	}

	return b.String()
}

// DecodeRecord is the inverse of [EncodeRecord]. It fails with a
// [*FormatError] when the text does not contain exactly one IV separator or
// when any byte token is non-numeric or outside [-128, 127].
func DecodeRecord(text string) (ivText string, ciphertext []byte, err error) {
	segments := strings.Split(text, IVSeparator)
	if len(segments) != 2 {
		return "", nil, &FormatError{
			Reason: "expected exactly one IV separator, got " + strconv.Itoa(len(segments)-1),
		}
	}

	tokens := strings.Split(segments[1], ByteSeparator)
	ciphertext = make([]byte, len(tokens))
	for i, token := range tokens {
		v, parseErr := strconv.ParseInt(token, 10, 8)
		if parseErr != nil {
			return "", nil, &FormatError{Reason: "invalid signed byte", Token: token, Err: parseErr}
		}
		ciphertext[i] = byte(int8(v))
	}

	return segments[0], ciphertext, nil
}

// PackRecord is [EncodeRecord] for an [models.EncryptedPayload].
func PackRecord(p models.EncryptedPayload) string {
	return EncodeRecord(p.IVText, p.Ciphertext)
}

// UnpackRecord is [DecodeRecord] returning an [models.EncryptedPayload].
func UnpackRecord(text string) (models.EncryptedPayload, error) {
	iv, ct, err := DecodeRecord(text)
	if err != nil {
		return models.EncryptedPayload{}, err
	}
	return models.EncryptedPayload{IVText: iv, Ciphertext: ct}, nil
}
