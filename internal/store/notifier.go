// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sync"
)

// notifier fans events out to change-stream subscribers.
//
// Every subscriber has a single pending slot. Publishing overwrites the slot
// and wakes the subscriber's goroutine, so a slow reader never blocks an edit
// and always ends up with the latest event.
type notifier struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	mu      sync.Mutex
	pending *versionedEvent
	// last version offered; events at or below it are dropped
	seen    uint64
	hasSeen bool
	wake    chan struct{}
	out     chan Event
	done    chan struct{}
}

type versionedEvent struct {
	event   Event
	version uint64
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[*subscriber]struct{})}
}

// subscribe registers a subscriber and starts its delivery goroutine. The
// caller seeds it with the current state through offer. The returned
// channel is closed once ctx is done or the notifier is closed.
func (n *notifier) subscribe(ctx context.Context) (*subscriber, <-chan Event) {
	s := &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		done: make(chan struct{}),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(s.out)
		return s, s.out
	}
	n.subs[s] = struct{}{}
	n.mu.Unlock()

	go s.run(ctx, n)
	return s, s.out
}

// publish offers ev to every subscriber.
func (n *notifier) publish(ev Event, version uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for s := range n.subs {
		s.offer(ev, version)
	}
}

// close stops every subscriber. Subsequent subscriptions get a closed channel.
func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for s := range n.subs {
		close(s.done)
		delete(n.subs, s)
	}
}

func (n *notifier) remove(s *subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[s]; ok {
		delete(n.subs, s)
		close(s.done)
	}
}

// offer stores ev in the pending slot unless the subscriber has already been
// offered this version or a newer one. Errors carry the version they were
// observed at, so a stale error never overrides a later snapshot.
func (s *subscriber) offer(ev Event, version uint64) {
	s.mu.Lock()
	if s.hasSeen && version <= s.seen {
		s.mu.Unlock()
		return
	}
	s.seen, s.hasSeen = version, true
	s.pending = &versionedEvent{event: ev, version: version}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) take() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Event{}, false
	}
	ev := s.pending.event
	s.pending = nil
	return ev, true
}

func (s *subscriber) run(ctx context.Context, n *notifier) {
	defer close(s.out)
	defer n.remove(s)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.wake:
		}

		ev, ok := s.take()
		if !ok {
			continue
		}

		select {
		case s.out <- ev:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
