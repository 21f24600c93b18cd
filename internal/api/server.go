// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the outcome of the last build over HTTP and lets
// operators ask for a rebuild.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ManuGH/jukebox/internal/build"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/health"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/plan"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog exposes the last successful build.
type Catalog interface {
	Last() *build.Result
}

// Rebuilder runs a build on request. trigger names who asked.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*build.Result, error)
}

// retryAfter is implemented by errors that ask the caller to come back later.
type retryAfter interface {
	RetryAfter() time.Duration
}

// Server is the HTTP read API.
type Server struct {
	cfg       config.ServerConfig
	catalog   Catalog
	rebuilder Rebuilder
	health    *health.Manager
	service   string
}

// New creates a server. rebuilder may be nil, in which case rebuild requests
// are refused.
func New(cfg config.ServerConfig, catalog Catalog, rebuilder Rebuilder, hm *health.Manager) *Server {
	return &Server{cfg: cfg, catalog: catalog, rebuilder: rebuilder, health: hm, service: "jukebox"}
}

// Handler returns the routed handler with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(observe)
	r.Use(tracing(s.service))

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(s.cfg.RateLimit, s.cfg.RateWindow))
		}
		r.Get("/build", s.handleBuild)
		r.Get("/dimensions", s.handleDimensions)
		r.Get("/dimensions/{dimension}", s.handleDimension)
		r.Get("/dimensions/{dimension}/{key}", s.handleCategory)
		r.Get("/records/{key}", s.handleRecord)
		r.Get("/records/{key}/memberships", s.handleMemberships)
		r.Get("/sets/{key}", s.handleSet)
		r.Post("/rebuild", s.handleRebuild)
	})
	return r
}

type pageCounts struct {
	Skipped     int `json:"skipped"`
	Regenerated int `json:"regenerated"`
}

type buildResponse struct {
	BuildID         string     `json:"build_id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      time.Time  `json:"finished_at"`
	DurationMS      int64      `json:"duration_ms"`
	Records         int        `json:"records"`
	Masters         int        `json:"masters"`
	Pages           pageCounts `json:"pages"`
	DefaultCategory string     `json:"default_category,omitempty"`
}

func summary(res *build.Result) buildResponse {
	skipped, regenerated := res.PageCounts()
	out := buildResponse{
		BuildID:    res.BuildID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		DurationMS: res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
		Records:    len(res.Records),
		Masters:    len(res.Masters),
		Pages:      pageCounts{Skipped: skipped, Regenerated: regenerated},
	}
	if name, ok := res.DefaultCategory(); ok {
		out.DefaultCategory = name
	}
	return out
}

type categorySummary struct {
	Key          string `json:"key"`
	OriginalName string `json:"original_name,omitempty"`
	Records      int    `json:"records"`
	Pages        int    `json:"pages"`
	Skip         bool   `json:"skip"`
}

type dimensionSummary struct {
	Name       string            `json:"name"`
	Categories []categorySummary `json:"categories"`
}

func dimensionOf(d build.Dimension) dimensionSummary {
	out := dimensionSummary{Name: d.Name, Categories: make([]categorySummary, 0, len(d.Categories))}
	for _, c := range d.Categories {
		cs := categorySummary{Key: c.Key, Records: len(c.Records), Pages: len(c.Pages), Skip: c.Skip}
		if c.OriginalName != c.Key {
			cs.OriginalName = c.OriginalName
		}
		out.Categories = append(out.Categories, cs)
	}
	return out
}

// last writes 503 and returns nil while no build has completed.
func (s *Server) last(w http.ResponseWriter, r *http.Request) *build.Result {
	res := s.catalog.Last()
	if res == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no build available yet")
	}
	return res
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if res := s.last(w, r); res != nil {
		writeJSON(w, http.StatusOK, summary(res))
	}
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	out := make([]dimensionSummary, 0, len(res.Dimensions))
	for _, d := range res.Dimensions {
		out = append(out, dimensionOf(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDimension(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	d, ok := res.Dimension(param(r, "dimension"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown dimension")
		return
	}
	writeJSON(w, http.StatusOK, dimensionOf(d))
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	c, ok := res.Category(param(r, "dimension"), param(r, "key"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown category")
		return
	}
	writeJSON(w, http.StatusOK, plan.CategoryOf(c))
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	rec, ok := res.Record(param(r, "key"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown record")
		return
	}
	writeJSON(w, http.StatusOK, plan.RecordOf(rec))
}

func (s *Server) handleMemberships(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	key := param(r, "key")
	if _, ok := res.Record(key); !ok {
		writeError(w, r, http.StatusNotFound, "unknown record")
		return
	}
	writeJSON(w, http.StatusOK, res.Memberships(key))
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	res := s.last(w, r)
	if res == nil {
		return
	}
	key := param(r, "key")
	m, ok := res.Masters[key]
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown set")
		return
	}
	writeJSON(w, http.StatusOK, plan.MasterOf(key, m))
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.rebuilder == nil {
		writeError(w, r, http.StatusNotImplemented, "rebuild not available")
		return
	}
	// The build outlives a client that hangs up.
	res, err := s.rebuilder.Rebuild(context.WithoutCancel(r.Context()), "api")
	var retry retryAfter
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, summary(res))
	case errors.Is(err, build.ErrBuildRunning):
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &retry):
		w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retry.RetryAfter().Round(time.Second).Seconds()))))
		writeError(w, r, http.StatusTooManyRequests, err.Error())
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldEvent, "api.rebuild_failed").Msg("rebuild request failed")
		writeError(w, r, http.StatusInternalServerError, "rebuild failed")
	}
}

// param returns the decoded path parameter. chi matches on the escaped path
// when the request carried escapes such as %2F.
func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
