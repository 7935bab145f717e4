// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/awnumar/memguard"
)

// LoadOrCreateKeyFile reads a hex encoded master key from path. When the
// file does not exist a new random key is generated and written with 0600
// permissions. When several processes create the file at once they all end
// up with the key that was linked first.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return readKeyFile(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key file dir: %w", err)
		}
	}

	encoded := []byte(hex.EncodeToString(key))
	defer memguard.WipeBytes(encoded)

	err := publishKeyFile(path, encoded)
	if errors.Is(err, os.ErrExist) {
		// another process created the key first
		memguard.WipeBytes(key)
		return readKeyFile(path)
	}
	if err != nil {
		memguard.WipeBytes(key)
		return nil, err
	}

	return key, nil
}

// publishKeyFile writes encoded to a temporary file and links it to path.
// The link fails with os.ErrExist when path already exists, so a key file
// is never overwritten and never observed half written.
func publishKeyFile(path string, encoded []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".master-key-*")
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err = tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("create key file: %w", err)
	}
	if _, err = tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	if err = os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("create key file: %w", err)
	}
	return nil
}

func readKeyFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	defer memguard.WipeBytes(raw)
	return parseKeyFile(raw)
}

func parseKeyFile(raw []byte) ([]byte, error) {
	text := strings.TrimSpace(string(raw))
	key, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: key file is not hex encoded", ErrInvalidKey)
	}
	if len(key) != MasterKeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("%w: key file holds %d bytes, want %d", ErrInvalidKey, len(key), MasterKeySize)
	}
	return key, nil
}
