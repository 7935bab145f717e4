// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-secure-store/internal/logger"
)

// sqlBackend stores preferences in the secure_preferences table. Each edit
// runs in one transaction; the snapshot published to subscribers is read
// back after commit.
type sqlBackend struct {
	db *DB

	mu      sync.Mutex
	version uint64
	closed  bool

	notifier *notifier
	logger   *logger.Logger
}

// NewSQLBackend builds a [Backend] on top of an open, migrated [DB].
// Closing the backend closes db.
func NewSQLBackend(db *DB, log *logger.Logger) Backend {
	return &sqlBackend{
		db:       db,
		notifier: newNotifier(),
		logger:   log,
	}
}

// Get implements [Backend].
func (s *sqlBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, ErrClosed
	}

	query, args, err := buildSelectOneQuery(s.db.dialect.placeholder(), key)
	if err != nil {
		return "", false, fmt.Errorf("build select query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Err(err).Str("func", "sqlBackend.Get").Str("key", key).Msg("error reading preference")
		return "", false, classifyErr(s.db.errorClassificator, "select preference", err)
	}

	return value, true, nil
}

// Edit implements [Backend].
func (s *sqlBackend) Edit(ctx context.Context, fn func(m *Mutation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	m := &Mutation{}
	if err := fn(m); err != nil {
		return err
	}
	if m.Empty() {
		return nil
	}

	if err := s.commit(ctx, m); err != nil {
		s.logger.Err(err).Str("func", "sqlBackend.Edit").Msg("error committing preferences edit")
		return err
	}
	s.version++

	snap, err := s.loadSnapshot(ctx, s.version)
	if err != nil {
		// the edit is durable; subscribers learn about the failed reload
		s.logger.Warn().Err(err).Str("func", "sqlBackend.Edit").Msg("error reloading preferences after commit")
		s.notifier.publish(Event{Err: err}, s.version)
		return nil
	}
	s.notifier.publish(Event{Snapshot: snap}, s.version)

	return nil
}

func (s *sqlBackend) commit(ctx context.Context, m *Mutation) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyErr(s.db.errorClassificator, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Err(rbErr).Str("func", "sqlBackend.commit").Msg("error rolling back transaction")
			}
		}
	}()

	ph := s.db.dialect.placeholder()
	for _, o := range m.ops {
		var (
			query string
			args  []any
		)
		switch o.kind {
		case opClear:
			query, args, err = buildClearQuery(ph)
		default:
			query, args, err = buildUpsertQuery(ph, o.key, o.value)
		}
		if err != nil {
			return fmt.Errorf("build edit query: %w", err)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return classifyErr(s.db.errorClassificator, "apply preferences edit", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return classifyErr(s.db.errorClassificator, "commit preferences edit", err)
	}
	return nil
}

func (s *sqlBackend) loadSnapshot(ctx context.Context, version uint64) (Snapshot, error) {
	query, args, err := buildSelectAllQuery(s.db.dialect.placeholder())
	if err != nil {
		return Snapshot{}, fmt.Errorf("build select query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Snapshot{}, classifyErr(s.db.errorClassificator, "select preferences", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return Snapshot{}, classifyErr(s.db.errorClassificator, "scan preference", err)
		}
		values[key] = value
	}
	if err = rows.Err(); err != nil {
		return Snapshot{}, classifyErr(s.db.errorClassificator, "iterate preferences", err)
	}

	return Snapshot{values: values, version: version}, nil
}

// Changes implements [Backend].
func (s *sqlBackend) Changes(ctx context.Context) <-chan Event {
	sub, ch := s.notifier.subscribe(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ch
	}

	snap, err := s.loadSnapshot(ctx, s.version)
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "sqlBackend.Changes").Msg("failed to load preferences for a new subscriber")
		sub.offer(Event{Err: err}, s.version)
		return ch
	}
	sub.offer(Event{Snapshot: snap}, s.version)

	return ch
}

// Close implements [Backend].
func (s *sqlBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.notifier.close()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *sqlBackend) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
