// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// ParseFlags parses all configuration flags from args (without the program
// name). Positional arguments after the flags are returned in
// [StructuredConfig.Args].
//
// Flags:
//
//	-c/-config json file path with configs
//	-alias key alias values are encrypted under
//	-cipher aead algorithm (aes-256-gcm, xchacha20-poly1305)
//	-key-file master key file path
//	-salt hex encoded passphrase salt
//	-driver storage driver (file, sqlite, postgres)
//	-d database DSN
//	-connect-timeout database connect timeout (e.g., "10s")
//	-f preferences file path
//	-log-level log level (debug, info, warn, error)
//	-log-file rotating log file path
func ParseFlags(args []string) (*StructuredConfig, error) {
	var jsonConfigPath string
	var keyAlias, cipherName, keyFile, keySalt string
	var driver, databaseDSN, filePath string
	var connectTimeout time.Duration
	var logLevel, logFile string

	fs := flag.NewFlagSet("securestore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&keyAlias, "alias", "", "Key alias")
	fs.StringVar(&cipherName, "cipher", "", "AEAD algorithm")
	fs.StringVar(&keyFile, "key-file", "", "Master key file path")
	fs.StringVar(&keySalt, "salt", "", "Hex encoded passphrase salt")
	fs.StringVar(&driver, "driver", "", "Storage driver (file, sqlite, postgres)")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.DurationVar(&connectTimeout, "connect-timeout", 0, "Database connect timeout (e.g., 10s)")
	fs.StringVar(&filePath, "f", "", "Preferences file path")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&logFile, "log-file", "", "Rotating log file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			KeyAlias: keyAlias,
			Cipher:   cipherName,
			KeyFile:  keyFile,
			KeySalt:  keySalt,
		},
		Storage: Storage{
			Driver: driver,
			DB: DB{
				DSN:            databaseDSN,
				ConnectTimeout: connectTimeout,
			},
			File: File{
				Path: filePath,
			},
		},
		Log: Log{
			Level: logLevel,
			File:  logFile,
		},
		JSONFilePath: jsonConfigPath,
		Args:         fs.Args(),
	}, nil
}
