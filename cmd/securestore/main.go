// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"

	"github.com/MKhiriev/go-secure-store/internal/codec"
	"github.com/MKhiriev/go-secure-store/internal/config"
	"github.com/MKhiriev/go-secure-store/internal/crypto"
	"github.com/MKhiriev/go-secure-store/internal/logger"
	"github.com/MKhiriev/go-secure-store/internal/securestore"
	"github.com/MKhiriev/go-secure-store/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const usage = `usage: securestore [flags] <command> [args]

commands:
  set <key> <value>   encrypt and store a string value
  get [-copy] <key>   print the current value of key
  watch <key>         print key every time the store changes
  clear               remove every stored value
  salt                print a fresh hex salt for APP_KEY_SALT
`

var errUsage = errors.New("invalid command line")

func main() {
	fmt.Fprint(os.Stderr, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		bootLog := logger.NewWriterLogger("securestore", os.Stderr)
		bootLog.Fatal().Err(err).Msg("error getting configs")
	}

	log := newLogger(cfg.Log, os.Stderr)

	if len(cfg.Args) > 0 && cfg.Args[0] == "salt" {
		if err = printSalt(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("generate salt")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	s, closer, err := securestore.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open secure store")
	}

	err = run(ctx, s, cfg.Args, os.Stdout)
	if closeErr := closer.Close(); closeErr != nil {
		log.Err(closeErr).Msg("close secure store")
	}

	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func printSalt(out io.Writer) error {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hex.EncodeToString(salt))
	return err
}

// newLogger writes to the configured log file, or to w when there is none.
// Stdout is reserved for command output.
func newLogger(cfg config.Log, w io.Writer) *logger.Logger {
	var log *logger.Logger
	if cfg.File != "" {
		log = logger.NewFileLogger("securestore", logger.FileOptions{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	} else {
		log = logger.NewWriterLogger("securestore", w)
	}
	return log.WithLevel(cfg.Level)
}

func run(ctx context.Context, s *securestore.Store, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	values := codec.JSON[string]()
	cmd, rest := args[0], args[1:]
	logger.FromContext(ctx).Debug().Str("command", cmd).Strs("args", redactValues(cmd, rest)).Msg("running command")

	switch cmd {
	case "set":
		if len(rest) != 2 {
			return errUsage
		}
		return securestore.StoreValue(ctx, s, rest[0], rest[1], values)

	case "get":
		fs := flag.NewFlagSet("get", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		toClipboard := fs.Bool("copy", false, "copy the value to the clipboard instead of printing it")
		if err := fs.Parse(rest); err != nil || fs.NArg() != 1 {
			return errUsage
		}
		return get(ctx, s, fs.Arg(0), *toClipboard, out)

	case "watch":
		if len(rest) != 1 {
			return errUsage
		}
		return watch(ctx, s, rest[0], out)

	case "clear":
		if len(rest) != 0 {
			return errUsage
		}
		return s.Clear(ctx)

	default:
		return errUsage
	}
}

// redactValues hides the value argument of set from logs.
func redactValues(cmd string, args []string) []string {
	if cmd != "set" || len(args) < 2 {
		return args
	}
	redacted := append([]string{args[0]}, "***")
	return append(redacted, args[2:]...)
}

func get(ctx context.Context, s *securestore.Store, key string, toClipboard bool, out io.Writer) error {
	sub := securestore.ReadValue(ctx, s, key, codec.JSON[string]())
	defer sub.Close()

	v, ok := <-sub.Values()
	if !ok {
		if err := sub.Err(); err != nil {
			return err
		}
		return ctx.Err()
	}

	value, present := v.Get()
	if !present {
		return fmt.Errorf("no readable value stored under %q", key)
	}
	if toClipboard {
		return clipboard.WriteAll(value)
	}
	_, err := fmt.Fprintln(out, value)
	return err
}

func watch(ctx context.Context, s *securestore.Store, key string, out io.Writer) error {
	sub := securestore.ReadValue(ctx, s, key, codec.JSON[string]())
	defer sub.Close()

	for v := range sub.Values() {
		if _, err := fmt.Fprintln(out, v.OrElse("<absent>")); err != nil {
			return err
		}
	}
	return sub.Err()
}
