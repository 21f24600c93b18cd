// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileChecker checks that a file exists and is not empty.
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for file existence
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string {
	return c.name
}

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CheckResult{Status: StatusUnhealthy, Error: "file not found", Message: c.path}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory"}
	}
	if info.Size() == 0 {
		return CheckResult{Status: StatusDegraded, Message: "file is empty"}
	}
	return CheckResult{Status: StatusHealthy, Message: "file exists and readable"}
}

// BuildChecker reports on the last catalog build.
type BuildChecker struct {
	lastBuild func() (time.Time, error)
	maxAge    time.Duration
}

// NewBuildChecker creates a checker over lastBuild, which returns the time of
// the last successful build and the error of the last attempt. A successful
// build older than maxAge is reported as degraded; 0 disables the age check.
func NewBuildChecker(lastBuild func() (time.Time, error), maxAge time.Duration) *BuildChecker {
	return &BuildChecker{lastBuild: lastBuild, maxAge: maxAge}
}

func (c *BuildChecker) Name() string {
	return "last_build"
}

func (c *BuildChecker) Check(context.Context) CheckResult {
	last, err := c.lastBuild()
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "last build failed"}
	}
	if last.IsZero() {
		return CheckResult{Status: StatusUnhealthy, Message: "no successful build yet"}
	}
	if c.maxAge > 0 && time.Since(last) > c.maxAge {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("last successful build over %s ago", c.maxAge)}
	}
	return CheckResult{Status: StatusHealthy, Message: "last build successful"}
}

// Prober answers whether a page exists; the page store implements it.
type Prober interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// StoreChecker probes the page store.
type StoreChecker struct {
	store Prober
}

// NewStoreChecker creates a checker for the page store.
func NewStoreChecker(store Prober) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string {
	return "page_store"
}

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := c.store.Exists(ctx, ".health"); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "page store reachable"}
}

// CheckOutputDir makes sure path exists as a writable directory, creating it
// when missing.
func CheckOutputDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create output directory %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", path)
	}
	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(probe)
	return nil
}
