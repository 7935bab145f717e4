// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-store/internal/codec"
	"github.com/MKhiriev/go-secure-store/internal/crypto"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/store"
	"github.com/MKhiriev/go-secure-store/internal/utils"
	"github.com/MKhiriev/go-secure-store/models"
)

// DefaultKeyAlias is the alias used when [WithKeyAlias] is not given.
const DefaultKeyAlias = "data-store"

// IDGenerator produces subscription identifiers.
type IDGenerator interface {
	Generate() string
}

// Store encrypts values on their way into a [store.Backend] and decrypts
// them on their way out. It holds no locks of its own; edits are serialized
// by the backend.
type Store struct {
	backend store.Backend
	cipher  crypto.Cipher
	alias   string
	ids     IDGenerator
	logger  *logger.Logger
}

// Option configures a [Store].
type Option func(s *Store)

// WithKeyAlias sets the alias every value is encrypted under.
func WithKeyAlias(alias string) Option {
	return func(s *Store) {
		if alias != "" {
			s.alias = alias
		}
	}
}

// WithIDGenerator replaces the UUIDv7 subscription id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// New builds a Store over backend and cipher. The Store does not own either
// collaborator: closing them is the caller's job.
func New(backend store.Backend, cipher crypto.Cipher, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		cipher:  cipher,
		alias:   DefaultKeyAlias,
		ids:     utils.NewUUIDGenerator(),
		logger:  log.GetChildLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alias returns the key alias values are encrypted under.
func (s *Store) Alias() string {
	return s.alias
}

// StoreValue serializes value with c, encrypts it and sets the packed record
// under key in one backend edit, replacing any previous record. It blocks
// until the edit commits. Serialization, encryption and storage failures are
// returned; nothing is written in that case.
func StoreValue[T any](ctx context.Context, s *Store, key string, value T, c codec.ValueCodec[T]) error {
	text, err := c.Serialize(value)
	if err != nil {
		if !errors.Is(err, codec.ErrSerialization) {
			err = &codec.SerializationError{Op: "serialize", Err: err}
		}
		s.logger.Err(err).Str("func", "StoreValue").Str("key", key).Msg("error serializing value")
		return fmt.Errorf("store value %q: %w", key, err)
	}

	err = s.backend.Edit(ctx, func(m *store.Mutation) error {
		ciphertext, ivText, err := s.cipher.Encrypt(s.alias, text)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
		m.Set(key, codec.PackRecord(models.EncryptedPayload{IVText: ivText, Ciphertext: ciphertext}))
		return nil
	})
	if err != nil {
		s.logger.Err(err).Str("func", "StoreValue").Str("key", key).Msg("error storing value")
		return fmt.Errorf("store value %q: %w", key, err)
	}

	return nil
}

// Clear removes every key in one backend edit. There is no way back.
func (s *Store) Clear(ctx context.Context) error {
	err := s.backend.Edit(ctx, func(m *store.Mutation) error {
		m.Clear()
		return nil
	})
	if err != nil {
		s.logger.Err(err).Str("func", "Store.Clear").Msg("error clearing store")
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}
