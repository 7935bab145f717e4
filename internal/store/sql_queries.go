// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	preferencesTable = "secure_preferences"
	columnKey        = "pref_key"
	columnValue      = "pref_value"

	// both SQLite (3.24+) and PostgreSQL understand this upsert form
	upsertSuffix = "ON CONFLICT (" + columnKey + ") DO UPDATE SET " + columnValue + " = excluded." + columnValue
)

// buildUpsertQuery builds the statement that stores value under key,
// replacing any previous value.
func buildUpsertQuery(ph sq.PlaceholderFormat, key, value string) (string, []any, error) {
	return sq.Insert(preferencesTable).
		Columns(columnKey, columnValue).
		Values(key, value).
		Suffix(upsertSuffix).
		PlaceholderFormat(ph).
		ToSql()
}

// buildClearQuery builds the statement that removes every preference.
func buildClearQuery(ph sq.PlaceholderFormat) (string, []any, error) {
	return sq.Delete(preferencesTable).
		PlaceholderFormat(ph).
		ToSql()
}

// buildSelectAllQuery builds the query that reads the full snapshot.
func buildSelectAllQuery(ph sq.PlaceholderFormat) (string, []any, error) {
	return sq.Select(columnKey, columnValue).
		From(preferencesTable).
		OrderBy(columnKey).
		PlaceholderFormat(ph).
		ToSql()
}

// buildSelectOneQuery builds the query that reads the value under key.
func buildSelectOneQuery(ph sq.PlaceholderFormat, key string) (string, []any, error) {
	return sq.Select(columnValue).
		From(preferencesTable).
		Where(sq.Eq{columnKey: key}).
		PlaceholderFormat(ph).
		ToSql()
}
