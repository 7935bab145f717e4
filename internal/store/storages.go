// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secure-store/internal/config"
	"github.com/MKhiriev/go-secure-store/internal/logger"
)

// NewBackend builds the backend selected by cfg.Driver. SQL backends are
// connected and migrated before they are returned.
func NewBackend(ctx context.Context, cfg config.Storage, log *logger.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", config.DriverFile:
		return NewFileBackend(cfg.File.Path, log), nil

	case config.DriverSQLite, config.DriverPostgres:
		if cfg.DB.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.DB.ConnectTimeout)
			defer cancel()
		}

		connect := NewConnectSQLite
		if cfg.Driver == config.DriverPostgres {
			connect = NewConnectPostgres
		}

		db, err := connect(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err = db.Migrate(); err != nil {
			db.Close()
			log.Err(err).Str("func", "NewBackend").Msg("error migrating database")
			return nil, err
		}
		return NewSQLBackend(db, log), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
