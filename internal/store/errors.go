// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageIO is matched by every [*IOError]: the storage medium could
	// not be read or written. Readers may recover from it.
	ErrStorageIO = errors.New("storage i/o failure")

	// ErrCorrupted marks persisted data that exists but cannot be parsed.
	// It is reported wrapped in an [*IOError].
	ErrCorrupted = errors.New("storage data corrupted")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("storage backend closed")

	// ErrUnknownDriver is returned by [NewBackend] for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// IOError wraps a storage failure classified as I/O.
type IOError struct {
	// Op names the operation that failed, e.g. "load snapshot".
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageIO, e.Op, e.Err)
}

// Is makes errors.Is(err, ErrStorageIO) succeed for any *IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrStorageIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsStorageIO reports whether err is a classified storage I/O failure.
func IsStorageIO(err error) bool {
	return errors.Is(err, ErrStorageIO)
}
