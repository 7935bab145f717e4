// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/backend_mock.go -package=mock

// Backend is a transactional key-value text store.
//
// Edits are serialized: at most one edit commits at a time per Backend
// instance. After every committed edit the backend publishes a fresh
// [Snapshot] to all change streams.
type Backend interface {
	// Get returns the text stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Edit runs fn against a [Mutation] and applies the recorded operations
	// atomically. If fn returns an error nothing is applied and the error is
	// returned. Edit blocks until the edit commits or fails.
	Edit(ctx context.Context, fn func(m *Mutation) error) error

	// Changes subscribes to the change stream. The first event carries the
	// latest snapshot; after that one event follows every committed edit.
	// Delivery is conflating: a slow reader always gets the most recent
	// event but may miss intermediate ones. The channel is closed when ctx
	// is done or the backend is closed.
	Changes(ctx context.Context) <-chan Event

	// Close releases the backend's resources and closes all change streams.
	Close() error
}

// Event is one emission of a change stream: either a snapshot or an error.
type Event struct {
	Snapshot Snapshot
	Err      error
}
