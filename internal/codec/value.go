// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"encoding/json"
	"errors"
	"strings"
)

// ValueCodec converts a typed value to the plaintext string that is
// encrypted, and back.
//
// Deserialize must never panic; it reports malformed, truncated or
// structurally incompatible input by returning false.
type ValueCodec[T any] interface {
	Serialize(value T) (string, error)
	Deserialize(text string) (T, bool)
}

// DiagnosticCodec is implemented by codecs that can also explain a failed
// Deserialize. The secure store uses it to log the reason of a failure.
type DiagnosticCodec[T any] interface {
	ValueCodec[T]
	DeserializeErr(text string) (T, error)
}

var errNullValue = errors.New("value is null")

type jsonCodec[T any] struct{}

// JSON returns a [ValueCodec] backed by encoding/json. A JSON null is not
// a value: it fails to deserialize for every T, nil pointers included.
func JSON[T any]() DiagnosticCodec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Serialize(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", &SerializationError{Op: "serialize", Err: err}
	}
	return string(b), nil
}

func (c jsonCodec[T]) Deserialize(text string) (T, bool) {
	v, err := c.DeserializeErr(text)
	return v, err == nil
}

func (jsonCodec[T]) DeserializeErr(text string) (T, error) {
	var v T
	if strings.TrimSpace(text) == "null" {
		return v, &SerializationError{Op: "deserialize", Err: errNullValue}
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		var zero T
		return zero, &SerializationError{Op: "deserialize", Err: err}
	}
	return v, nil
}
