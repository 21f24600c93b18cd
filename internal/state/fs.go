// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const markerExt = ".page"

// FSStore keeps one marker file per page in a directory. Markers are replaced
// atomically so a crashed build never leaves a half-written entry.
type FSStore struct {
	dir string
}

// NewFSStore creates dir if needed and returns a store rooted there.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("state: create %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(name string) string {
	return filepath.Join(s.dir, name+markerExt)
}

func (s *FSStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("state: stat %s: %w", name, err)
}

func (s *FSStore) Mark(ctx context.Context, pages ...Page) error {
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("state: encode %s: %w", p.Name, err)
		}
		if err := renameio.WriteFile(s.path(p.Name), buf, 0o640); err != nil {
			return fmt.Errorf("state: write %s: %w", p.Name, err)
		}
	}
	return nil
}

func (s *FSStore) Forget(ctx context.Context, names ...string) error {
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(s.path(n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("state: remove %s: %w", n, err)
		}
	}
	return nil
}

func (s *FSStore) Close() error { return nil }
