// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-secure-store/internal/codec"
	"github.com/MKhiriev/go-secure-store/internal/store"
)

// Read pipeline stages, used in log entries.
const (
	stageDecode      = "decode"
	stageDecrypt     = "decrypt"
	stageDeserialize = "deserialize"
)

var errMissing = errors.New("no record stored under key")

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

// containStorageErrors turns one change stream event into the snapshot the
// read pipeline evaluates. A storage I/O failure becomes an empty snapshot;
// any other error is returned and ends the stream.
func containStorageErrors(ev store.Event, log *zerolog.Logger) (store.Snapshot, error) {
	if ev.Err == nil {
		return ev.Snapshot, nil
	}

	if store.IsStorageIO(ev.Err) {
		log.Warn().Err(ev.Err).Msg("storage i/o failure, reading an empty store until the next edit")
		return store.EmptySnapshot(), nil
	}

	return store.Snapshot{}, ev.Err
}

// evaluate runs decode, decrypt and deserialize for key against snap. Any
// failure yields an absent value.
func evaluate[T any](s *Store, key string, snap store.Snapshot, c codec.ValueCodec[T], log *zerolog.Logger) Optional[T] {
	value, err := decodeValue(s, key, snap, c)
	if err == nil {
		return Some(value)
	}

	if errors.Is(err, errMissing) {
		log.Debug().Msg("no value stored")
		return None[T]()
	}

	var se *stageError
	stage := ""
	if errors.As(err, &se) {
		stage = se.stage
	}
	log.Warn().Err(err).Str("stage", stage).Msg("unreadable value, emitting absent")
	return None[T]()
}

func decodeValue[T any](s *Store, key string, snap store.Snapshot, c codec.ValueCodec[T]) (value T, err error) {
	text, _ := snap.Get(key)
	if text == "" {
		return value, errMissing
	}

	payload, err := codec.UnpackRecord(text)
	if err != nil {
		return value, &stageError{stage: stageDecode, err: err}
	}

	plaintext, err := guard(stageDecrypt, func() (string, error) {
		return s.cipher.Decrypt(s.alias, payload.Ciphertext, payload.IVText)
	})
	if err != nil {
		return value, err
	}

	return guard(stageDeserialize, func() (T, error) {
		return deserialize(c, plaintext)
	})
}

func deserialize[T any](c codec.ValueCodec[T], text string) (T, error) {
	if dc, ok := c.(codec.DiagnosticCodec[T]); ok {
		return dc.DeserializeErr(text)
	}

	v, ok := c.Deserialize(text)
	if !ok {
		return v, &codec.SerializationError{Op: "deserialize", Err: errors.New("text does not match the requested type")}
	}
	return v, nil
}

// guard runs fn and reports a panic as an error of the given stage.
func guard[R any](stage string, fn func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &stageError{stage: stage, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, err = fn()
	if err != nil {
		return result, &stageError{stage: stage, err: err}
	}
	return result, nil
}
