// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/migrations"
)

// Dialect identifies the SQL flavour spoken by a [DB].
type Dialect string

const (
	// DialectSQLite is SQLite through mattn/go-sqlite3.
	DialectSQLite Dialect = "sqlite3"
	// DialectPostgres is PostgreSQL through pgx.
	DialectPostgres Dialect = "postgres"
)

// placeholder returns the squirrel placeholder format for the dialect.
func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// DB is an open SQL connection pool together with the dialect specific
// pieces the SQL backend needs.
type DB struct {
	*sql.DB
	dialect            Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewDB wraps an existing pool. It is used by the connect functions and by
// tests that bring their own *sql.DB.
func NewDB(conn *sql.DB, dialect Dialect, log *logger.Logger) *DB {
	db := &DB{DB: conn, dialect: dialect, logger: log}
	switch dialect {
	case DialectPostgres:
		db.errorClassificator = NewPostgresErrorClassifier()
	default:
		db.errorClassificator = NewSQLiteErrorClassifier()
	}
	return db
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	if err := migrations.Migrate(db.DB, string(db.dialect)); err != nil {
		return fmt.Errorf("migrate %s schema: %w", db.dialect, err)
	}
	return nil
}
