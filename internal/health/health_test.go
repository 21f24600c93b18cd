// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_WithCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	// Non-verbose: no checks included
	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusDegraded, resp.Checks["degraded"].Status)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		ready    bool
		status   Status
	}{
		{"no checkers", nil, true, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded is still ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy wins over degraded", []Status{StatusUnhealthy, StatusDegraded}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1.0.0")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.ready, resp.Ready)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestManager_ServeHealth(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "test", status: StatusUnhealthy})

	req := httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil)
	w := httptest.NewRecorder()
	m.ServeHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "liveness stays 200")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Len(t, resp.Checks, 1)
}

func TestManager_ServeReady(t *testing.T) {
	for _, tt := range []struct {
		status Status
		code   int
	}{
		{StatusHealthy, http.StatusOK},
		{StatusDegraded, http.StatusOK},
		{StatusUnhealthy, http.StatusServiceUnavailable},
	} {
		t.Run(string(tt.status), func(t *testing.T) {
			m := NewManager("v1.0.0")
			m.RegisterChecker(&mockChecker{name: "test", status: tt.status})

			w := httptest.NewRecorder()
			m.ServeReady(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.code, w.Code)
			var resp ReadinessResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.code == http.StatusOK, resp.Ready)
		})
	}
}

func TestManager_ServeEncodingError(t *testing.T) {
	m := NewManager("v1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	// Should not panic even if encoding fails
	m.ServeHealth(&brokenWriter{header: make(http.Header)}, req)
	m.ServeReady(&brokenWriter{header: make(http.Header)}, req)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	tests := []struct {
		name   string
		path   string
		status Status
		err    string
	}{
		{"file exists", write("records.yaml", "- title: Alien\n"), StatusHealthy, ""},
		{"empty file", write("empty.yaml", ""), StatusDegraded, ""},
		{"file not found", filepath.Join(dir, "missing.yaml"), StatusUnhealthy, "file not found"},
		{"is directory", dir, StatusUnhealthy, "expected file, got directory"},
		{"not configured", "", StatusHealthy, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewFileChecker("records", tt.path)
			assert.Equal(t, "records", checker.Name())
			result := checker.Check(context.Background())
			assert.Equal(t, tt.status, result.Status)
			if tt.err != "" {
				assert.Contains(t, result.Error, tt.err)
			}
		})
	}
}

func TestBuildChecker(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		last   time.Time
		err    error
		status Status
		msg    string
	}{
		{"no build yet", time.Time{}, nil, StatusUnhealthy, "no successful build yet"},
		{"last build failed", now, errors.New("source unreadable"), StatusUnhealthy, "last build failed"},
		{"recent success", now.Add(-time.Minute), nil, StatusHealthy, "last build successful"},
		{"old success", now.Add(-48 * time.Hour), nil, StatusDegraded, "over 24h0m0s ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewBuildChecker(func() (time.Time, error) { return tt.last, tt.err }, 24*time.Hour)
			assert.Equal(t, "last_build", checker.Name())
			result := checker.Check(context.Background())
			assert.Equal(t, tt.status, result.Status)
			assert.Contains(t, result.Message, tt.msg)
		})
	}
}

type probe struct{ err error }

func (p probe) Exists(context.Context, string) (bool, error) { return false, p.err }

func TestStoreChecker(t *testing.T) {
	assert.Equal(t, StatusHealthy, NewStoreChecker(probe{}).Check(context.Background()).Status)

	result := NewStoreChecker(probe{err: errors.New("connection refused")}).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "connection refused", result.Error)
}

func TestCheckOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "jukebox", "out")
	require.NoError(t, CheckOutputDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Error(t, CheckOutputDir(file))
}

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

// brokenWriter is a ResponseWriter that always fails to write
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func (w *brokenWriter) WriteHeader(int) {}
