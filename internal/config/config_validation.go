// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// minSaltSize mirrors the Argon2id salt length required by the key chain.
const minSaltSize = 16

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup. It runs after defaults are applied.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.Driver {
	case DriverFile:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
			return fmt.Errorf("%w: driver %q needs a DSN", ErrInvalidStorageConfigs, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.Driver)
	}

	if cfg.Storage.DB.MaxOpenConns < 0 || cfg.Storage.DB.ConnectTimeout < 0 {
		return fmt.Errorf("%w: negative pool size or timeout", ErrInvalidStorageConfigs)
	}

	if strings.TrimSpace(cfg.App.KeyAlias) == "" {
		return fmt.Errorf("%w: key alias is blank", ErrInvalidAppConfigs)
	}

	if cfg.App.Passphrase != "" {
		salt, err := cfg.App.Salt()
		if err != nil || len(salt) < minSaltSize {
			return fmt.Errorf("%w: passphrase needs a hex salt of at least %d bytes", ErrInvalidAppConfigs, minSaltSize)
		}
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogConfigs, err)
	}

	return nil
}
