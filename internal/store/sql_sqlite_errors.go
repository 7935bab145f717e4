// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteErrorClassifier implements [ErrorClassificator] for SQLite. It looks
// at the primary result code reported by the mattn/go-sqlite3 driver and
// falls back to [GenericErrorClassifier] for everything else.
type SQLiteErrorClassifier struct {
	generic GenericErrorClassifier
}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier].
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator].
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return Unrecoverable
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return ClassifySQLiteCode(sqliteErr.Code)
	}

	return c.generic.Classify(err)
}

// ClassifySQLiteCode maps a primary SQLite result code to a classification.
// See https://www.sqlite.org/rescode.html.
//
// StorageIO codes: IOERR, CANTOPEN, BUSY, LOCKED, FULL, CORRUPT, NOTADB,
// PROTOCOL, READONLY. Everything else (CONSTRAINT, SCHEMA, MISUSE, ERROR ...)
// is [Unrecoverable].
func ClassifySQLiteCode(code sqlite3.ErrNo) ErrorClassification {
	switch code {
	case sqlite3.ErrIoErr,
		sqlite3.ErrCantOpen,
		sqlite3.ErrBusy,
		sqlite3.ErrLocked,
		sqlite3.ErrFull,
		sqlite3.ErrCorrupt,
		sqlite3.ErrNotADB,
		sqlite3.ErrProtocol,
		sqlite3.ErrReadonly:
		return StorageIO
	}
	return Unrecoverable
}
