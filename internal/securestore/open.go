// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-secure-store/internal/config"
	"github.com/MKhiriev/go-secure-store/internal/crypto"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/store"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// Open builds the backend, key chain and cipher described by cfg and returns
// a Store over them. The returned Closer closes the backend and wipes the
// master key.
func Open(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Store, io.Closer, error) {
	keys, err := openKeyChain(cfg.App)
	if err != nil {
		log.Err(err).Str("func", "Open").Msg("error loading master key")
		return nil, nil, err
	}

	cipher, err := crypto.NewAEADCipher(keys, cfg.App.Cipher)
	if err != nil {
		keys.Destroy()
		log.Err(err).Str("func", "Open").Msg("error creating cipher")
		return nil, nil, err
	}

	backend, err := store.NewBackend(ctx, cfg.Storage, log)
	if err != nil {
		keys.Destroy()
		log.Err(err).Str("func", "Open").Msg("error opening storage backend")
		return nil, nil, fmt.Errorf("open storage backend: %w", err)
	}

	s := New(backend, cipher, log, WithKeyAlias(cfg.App.KeyAlias))
	log.Info().
		Str("func", "Open").
		Str("driver", cfg.Storage.Driver).
		Str("cipher", cfg.App.Cipher).
		Str("alias", s.Alias()).
		Msg("secure store opened")

	closer := closerFunc(func() error {
		err := backend.Close()
		keys.Destroy()
		return err
	})
	return s, closer, nil
}

func openKeyChain(app config.App) (*crypto.KeyChain, error) {
	var (
		master []byte
		err    error
	)

	switch {
	case app.Passphrase != "":
		salt, saltErr := app.Salt()
		if saltErr != nil {
			return nil, saltErr
		}
		master, err = crypto.DeriveMasterKey(app.Passphrase, salt)
	case app.KeyFile != "":
		master, err = crypto.LoadOrCreateKeyFile(app.KeyFile)
	default:
		err = errors.New("no master key source configured")
	}
	if err != nil {
		return nil, fmt.Errorf("load master key: %w", err)
	}

	return crypto.NewKeyChain(master)
}
