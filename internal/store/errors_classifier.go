// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"
)

// ErrorClassification is the result of [ErrorClassificator.Classify].
type ErrorClassification int

const (
	// Unrecoverable is the default classification: a logic, schema or
	// programming error that readers must not paper over.
	Unrecoverable ErrorClassification = iota

	// StorageIO marks a failure of the storage medium or the connection to
	// it. Readers may substitute an empty view and wait for the next edit.
	StorageIO
)

func (c ErrorClassification) String() string {
	switch c {
	case StorageIO:
		return "storage-io"
	default:
		return "unrecoverable"
	}
}

// ErrorClassificator decides whether a storage error is an I/O failure.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// GenericErrorClassifier recognises I/O failures that any backend may
// surface: file system errors, OS errors, broken driver connections and
// network errors.
type GenericErrorClassifier struct{}

// NewGenericErrorClassifier constructs a [GenericErrorClassifier].
func NewGenericErrorClassifier() *GenericErrorClassifier {
	return &GenericErrorClassifier{}
}

// Classify implements [ErrorClassificator].
func (GenericErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return Unrecoverable
	}

	// an already classified error keeps its class
	if errors.Is(err, ErrStorageIO) {
		return StorageIO
	}

	// cancellation is the caller's decision, never a storage failure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Unrecoverable
	}

	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return StorageIO
	}

	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
		errno      syscall.Errno
		netErr     net.Error
	)
	switch {
	case errors.As(err, &pathErr),
		errors.As(err, &linkErr),
		errors.As(err, &syscallErr),
		errors.As(err, &errno),
		errors.As(err, &netErr):
		return StorageIO
	}

	return Unrecoverable
}

// classifyErr wraps err in an [*IOError] when c classifies it as I/O, and
// adds op as context otherwise.
func classifyErr(c ErrorClassificator, op string, err error) error {
	if err == nil {
		return nil
	}
	if c.Classify(err) == StorageIO {
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return err
		}
		return &IOError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
