// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-store/internal/config"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/securestore"
)

func openTestStore(t *testing.T) *securestore.Store {
	t.Helper()
	return openTestStoreWithLogger(t, logger.Nop())
}

func openTestStoreWithLogger(t *testing.T, log *logger.Logger) *securestore.Store {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.StructuredConfig{
		App: config.App{
			KeyAlias: config.DefaultKeyAlias,
			Cipher:   config.DefaultCipher,
			KeyFile:  filepath.Join(dir, "master.key"),
		},
		Storage: config.Storage{
			Driver: config.DriverFile,
			File:   config.File{Path: filepath.Join(dir, "prefs.json")},
		},
	}

	s, closer, err := securestore.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	return s
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, run(ctx, s, []string{"set", "token", "abc123"}, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, s, []string{"get", "token"}, &out))
	assert.Equal(t, "abc123\n", out.String())

	require.NoError(t, run(ctx, s, []string{"clear"}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, s, []string{"get", "token"}, &bytes.Buffer{}))
}

func TestRun_Usage(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"drop"}},
		{name: "set without value", args: []string{"set", "k"}},
		{name: "get without key", args: []string{"get"}},
		{name: "get with unknown flag", args: []string{"get", "-x", "k"}},
		{name: "watch with two keys", args: []string{"watch", "a", "b"}},
		{name: "clear with args", args: []string{"clear", "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), s, tt.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestRun_WatchStopsOnCancel(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, run(context.Background(), s, []string{"set", "k", "v"}, &bytes.Buffer{}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, s, []string{"watch", "k"}, &out))
	assert.Equal(t, "v\n", out.String())
}

func TestRedactValues(t *testing.T) {
	assert.Equal(t, []string{"token", "***"}, redactValues("set", []string{"token", "secret"}))
	assert.Equal(t, []string{"token"}, redactValues("get", []string{"token"}))
	assert.Equal(t, []string{"token"}, redactValues("set", []string{"token"}))
}

func TestPrintSalt(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSalt(&out))
	assert.Regexp(t, `^[0-9a-f]{32,}\n$`, out.String())
}

func TestRun_LogsStayOffStdout(t *testing.T) {
	var logs bytes.Buffer
	log := newLogger(config.Log{Level: "debug"}, &logs)
	ctx := log.WithContext(context.Background())
	s := openTestStoreWithLogger(t, log)

	require.NoError(t, run(ctx, s, []string{"set", "token", "abc123"}, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, s, []string{"get", "token"}, &out))

	assert.Equal(t, "abc123\n", out.String())
	assert.Contains(t, logs.String(), "secure store opened")
	assert.Contains(t, logs.String(), `"command":"get"`)
	assert.NotContains(t, logs.String(), "abc123")
}
