// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package securestore stores typed values encrypted under string keys.
//
// A write serializes the value with a [codec.ValueCodec], encrypts the text
// with a [crypto.Cipher] under the store's key alias, packs the
// initialization vector and ciphertext into one text record and sets it in
// a [store.Backend] inside one atomic edit.
//
// A read is a live [Subscription]. It re-evaluates the key after every
// committed edit of the backend, including edits of other keys, and yields
// an absent [Optional] whenever the record cannot be decoded, decrypted or
// deserialized. Storage I/O failures on the change stream are replaced by an
// empty view; any other stream error ends the subscription.
package securestore
