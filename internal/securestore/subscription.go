// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-secure-store/internal/codec"
	"github.com/MKhiriev/go-secure-store/internal/store"
)

// Subscription is a live view of one key.
//
// Values yields the current value first and then one Optional after every
// committed edit of the backend, including edits of other keys. A slow
// consumer skips intermediate states but always receives the latest one.
// A subscription has a single consumer; open another one to read the same
// key elsewhere.
type Subscription[T any] struct {
	id     string
	values chan Optional[T]
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// ReadValue subscribes to key. Records that cannot be decoded, decrypted or
// deserialized with c show up as absent values and are logged as warnings.
// The subscription ends when ctx is done, Close is called, the backend is
// closed or the backend reports an error that is not a storage I/O failure.
func ReadValue[T any](ctx context.Context, s *Store, key string, c codec.ValueCodec[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	sub := &Subscription[T]{
		id:     s.ids.Generate(),
		values: make(chan Optional[T]),
		cancel: cancel,
	}

	events := s.backend.Changes(ctx)
	go sub.run(ctx, s, key, c, events)

	return sub
}

// ID identifies the subscription in logs.
func (sub *Subscription[T]) ID() string {
	return sub.id
}

// Values returns the value stream. It is closed when the subscription ends.
func (sub *Subscription[T]) Values() <-chan Optional[T] {
	return sub.values
}

// Err returns the error that ended the subscription. It is nil while the
// subscription runs and after a cancellation or Close.
func (sub *Subscription[T]) Err() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.err
}

// Close ends the subscription. Values is closed shortly after.
func (sub *Subscription[T]) Close() {
	sub.cancel()
}

func (sub *Subscription[T]) fail(err error) {
	sub.mu.Lock()
	sub.err = err
	sub.mu.Unlock()
}

func (sub *Subscription[T]) run(ctx context.Context, s *Store, key string, c codec.ValueCodec[T], events <-chan store.Event) {
	defer close(sub.values)
	defer sub.cancel()

	log := s.logger.With().Str("subscription", sub.id).Str("key", key).Logger()

	for {
		var (
			ev store.Event
			ok bool
		)
		select {
		case <-ctx.Done():
			return
		case ev, ok = <-events:
		}

		if !ok {
			if ctx.Err() == nil {
				log.Debug().Msg("change stream closed by the backend")
				sub.fail(store.ErrClosed)
			}
			return
		}

		snap, err := containStorageErrors(ev, &log)
		if err != nil {
			log.Error().Err(err).Msg("change stream failed, ending subscription")
			sub.fail(err)
			return
		}

		value := evaluate(s, key, snap, c, &log)

		select {
		case sub.values <- value:
		case <-ctx.Done():
			return
		}
	}
}
