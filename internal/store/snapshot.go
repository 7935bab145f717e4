// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"maps"
	"slices"
)

// Snapshot is an immutable view of every key in the store at one point in
// time. The zero value is an empty snapshot.
type Snapshot struct {
	values  map[string]string
	version uint64
}

// NewSnapshot copies values into a new snapshot tagged with version.
func NewSnapshot(values map[string]string, version uint64) Snapshot {
	return Snapshot{values: maps.Clone(values), version: version}
}

// EmptySnapshot returns a snapshot in which every key is absent.
func EmptySnapshot() Snapshot {
	return Snapshot{}
}

// Get returns the text stored under key.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of keys.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Keys returns the keys in lexical order.
func (s Snapshot) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Version is the backend's edit counter at the time the snapshot was taken.
// It grows by one with every committed edit.
func (s Snapshot) Version() uint64 {
	return s.version
}

type opKind int

const (
	opSet opKind = iota
	opClear
)

type op struct {
	kind  opKind
	key   string
	value string
}

// Mutation records the operations of one edit. Operations are applied in
// the order they were recorded.
type Mutation struct {
	ops []op
}

// Set stores value under key, replacing any previous value.
func (m *Mutation) Set(key, value string) {
	m.ops = append(m.ops, op{kind: opSet, key: key, value: value})
}

// Clear removes every key, including keys set earlier in the same edit.
func (m *Mutation) Clear() {
	m.ops = append(m.ops, op{kind: opClear})
}

// Empty reports whether no operation was recorded.
func (m *Mutation) Empty() bool {
	return len(m.ops) == 0
}

// Apply replays the recorded operations on values.
func (m *Mutation) Apply(values map[string]string) {
	for _, o := range m.ops {
		switch o.kind {
		case opSet:
			values[o.key] = o.value
		case opClear:
			clear(values)
		}
	}
}
