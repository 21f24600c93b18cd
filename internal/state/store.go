// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package state records which category pages have been generated. The build
// consults it to decide whether a page can be skipped.
package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/jukebox/internal/config"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown state backend")

// Page is the registry entry of a generated page.
type Page struct {
	Name        string    `json:"name"`
	BuildID     string    `json:"build_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store is the page registry.
type Store interface {
	// Exists reports whether page name has been generated.
	Exists(ctx context.Context, name string) (bool, error)
	// Mark records pages as generated, replacing earlier entries.
	Mark(ctx context.Context, pages ...Page) error
	// Forget drops pages from the registry. Unknown names are ignored.
	Forget(ctx context.Context, names ...string) error
	Close() error
}

// Open creates the store selected by cfg. Relative paths are resolved against
// outputDir; an empty path defaults to a backend specific file in outputDir.
func Open(ctx context.Context, cfg config.StateConfig, outputDir string) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = config.BackendFS
	}

	switch backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFS:
		return NewFSStore(resolvePath(cfg.Path, outputDir, ".pages"))
	case config.BackendSQLite:
		return OpenSQLiteStore(ctx, resolvePath(cfg.Path, outputDir, "pages.sqlite"))
	case config.BackendBadger:
		return OpenBadgerStore(resolvePath(cfg.Path, outputDir, "pages.badger"))
	case config.BackendRedis:
		return OpenRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

func resolvePath(path, outputDir, fallback string) string {
	if path == "" {
		return filepath.Join(outputDir, fallback)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(outputDir, path)
}
