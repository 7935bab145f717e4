// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every [FormatError]. It marks a persisted record
	// that does not follow the IV/ciphertext layout.
	ErrFormat = errors.New("malformed packed record")

	// ErrSerialization is matched by every [SerializationError].
	ErrSerialization = errors.New("value serialization failed")
)

// FormatError describes why a packed record could not be decoded.
type FormatError struct {
	// Reason is a short human readable description.
	Reason string
	// Token is the offending byte token, if any.
	Token string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *FormatError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s: token %q", ErrFormat, e.Reason, e.Token)
	}
	return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
}

// Is makes errors.Is(err, ErrFormat) succeed for any *FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SerializationError wraps a failure of the underlying interchange format.
type SerializationError struct {
	// Op is "serialize" or "deserialize".
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSerialization, e.Op, e.Err)
}

// Is makes errors.Is(err, ErrSerialization) succeed for any *SerializationError.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
