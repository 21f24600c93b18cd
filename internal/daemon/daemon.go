// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon keeps the catalog built while serving it: one build at
// startup, a rebuild whenever the record source or configuration changes, and
// rebuilds on request.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/jukebox/internal/build"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/metrics"
	"github.com/ManuGH/jukebox/internal/plan"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/state"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Rebuild triggers.
const (
	TriggerStartup = "startup"
	TriggerWatch   = "watch"
	TriggerAPI     = "api"
)

const shutdownTimeout = 10 * time.Second

// Loader reads the current record set.
type Loader func(ctx context.Context) ([]*record.Record, error)

// Reloader reads the configuration again after its file changed.
type Reloader func() (*config.Config, error)

// Deps contains what a Daemon needs.
type Deps struct {
	Config *config.Config
	// ConfigPath is watched for changes when set.
	ConfigPath string
	Engine     *build.Engine
	// Store receives the pages each build regenerates. Optional.
	Store state.Store
	Load  Loader
	// Reload is called when ConfigPath changes. Optional.
	Reload Reloader
	// DirtyLibraries are passed to every build.
	DirtyLibraries []string
}

// Daemon owns the build loop of serve mode.
type Daemon struct {
	configPath string
	store      state.Store
	load       Loader
	reload     Reloader
	libraries  []string
	limiter    *rate.Limiter
	logger     zerolog.Logger

	// mu serializes rebuilds including their plan write.
	mu       sync.Mutex
	cfg      *config.Config
	engine   *build.Engine
	previous *plan.Plan

	last atomic.Pointer[build.Result]

	statusMu    sync.RWMutex
	lastSuccess time.Time
	lastErr     error
}

// New creates a daemon.
func New(deps Deps) (*Daemon, error) {
	if deps.Engine == nil {
		return nil, ErrMissingEngine
	}
	if deps.Load == nil {
		return nil, ErrMissingLoader
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("invalid dependencies: %w", config.ErrInvalidConfig)
	}
	return &Daemon{
		configPath: deps.ConfigPath,
		store:      deps.Store,
		load:       deps.Load,
		reload:     deps.Reload,
		libraries:  deps.DirtyLibraries,
		limiter:    newLimiter(deps.Config.Watch.MinInterval),
		logger:     log.WithComponent("daemon"),
		cfg:        deps.Config,
		engine:     deps.Engine,
	}, nil
}

func newLimiter(minInterval time.Duration) *rate.Limiter {
	return rate.NewLimiter(limitFor(minInterval), 1)
}

func limitFor(minInterval time.Duration) rate.Limit {
	if minInterval <= 0 {
		return rate.Inf
	}
	return rate.Every(minInterval)
}

// Last returns the result of the last successful rebuild, or nil.
func (d *Daemon) Last() *build.Result {
	return d.last.Load()
}

// Status reports when the last successful rebuild finished and the error of
// the last rebuild, if it failed.
func (d *Daemon) Status() (time.Time, error) {
	d.statusMu.RLock()
	defer d.statusMu.RUnlock()
	return d.lastSuccess, d.lastErr
}

func (d *Daemon) setStatus(res *build.Result, err error) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.lastErr = err
	if res != nil {
		d.lastSuccess = res.FinishedAt
	}
}

// Rebuild loads the records, builds them, writes the plan and marks the
// regenerated pages. Startup rebuilds are never throttled.
func (d *Daemon) Rebuild(ctx context.Context, trigger string) (*build.Result, error) {
	metrics.RecordRebuildTrigger(trigger)
	if trigger != TriggerStartup {
		if r := d.limiter.Reserve(); r.Delay() > 0 {
			wait := r.Delay()
			r.Cancel()
			return nil, &ThrottledError{Wait: wait}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.rebuild(ctx)
	d.setStatus(res, err)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str(log.FieldEvent, "daemon.rebuild_failed").
			Str("trigger", trigger).
			Msg("rebuild failed")
		return nil, err
	}
	skipped, regenerated := res.PageCounts()
	d.logger.Info().
		Str(log.FieldEvent, "daemon.rebuilt").
		Str(log.FieldBuildID, res.BuildID).
		Str("trigger", trigger).
		Int("pages_regenerated", regenerated).
		Int("pages_skipped", skipped).
		Msg("catalog rebuilt")
	return res, nil
}

func (d *Daemon) rebuild(ctx context.Context) (*build.Result, error) {
	records, err := d.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	d.restore(records)
	res, err := d.engine.Build(ctx, records, build.Options{DirtyLibraries: d.libraries})
	if err != nil {
		return nil, err
	}
	p := plan.FromResult(res)
	if d.cfg.Build.PlanPath != "" {
		if err := plan.Write(ctx, d.cfg.Build.PlanPath, p); err != nil {
			return nil, err
		}
	}
	if err := d.record(ctx, res, p); err != nil {
		return nil, err
	}
	d.previous = p
	d.last.Store(res)
	return res, nil
}

// restore carries navigation links over from the previous plan, so that a
// record whose neighbours did not change is not dirtied by the build. The
// first rebuild reads the plan left on disk by an earlier run.
func (d *Daemon) restore(records []*record.Record) {
	if d.previous == nil && d.cfg.Build.PlanPath != "" {
		p, err := plan.Read(d.cfg.Build.PlanPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				d.logger.Warn().
					Err(err).
					Str(log.FieldEvent, "daemon.plan_unreadable").
					Msg("previous plan unreadable, every record starts without navigation")
			}
			return
		}
		d.previous = p
	}
	if d.previous == nil {
		return
	}
	nav := make(map[string]plan.Record, len(d.previous.Records))
	for _, r := range d.previous.Records {
		nav[r.Key] = r
	}
	for _, r := range records {
		if prev, ok := nav[r.Key()]; ok {
			r.SetNavigation(prev.First, prev.Previous, prev.Next, prev.Last)
		}
	}
}

// record marks the regenerated pages and forgets pages the previous build had
// that this one no longer produces.
func (d *Daemon) record(ctx context.Context, res *build.Result, p *plan.Plan) error {
	if d.store == nil {
		return nil
	}
	names := p.Regenerated()
	pages := make([]state.Page, 0, len(names))
	for _, name := range names {
		pages = append(pages, state.Page{Name: name, BuildID: res.BuildID, GeneratedAt: res.FinishedAt})
	}
	if err := d.store.Mark(ctx, pages...); err != nil {
		return fmt.Errorf("mark pages: %w", err)
	}

	prev := d.last.Load()
	if prev == nil {
		return nil
	}
	current := make(map[string]struct{})
	for _, name := range pageNames(res) {
		current[name] = struct{}{}
	}
	var gone []string
	for _, name := range pageNames(prev) {
		if _, ok := current[name]; !ok {
			gone = append(gone, name)
		}
	}
	if len(gone) == 0 {
		return nil
	}
	if err := d.store.Forget(ctx, gone...); err != nil {
		return fmt.Errorf("forget pages: %w", err)
	}
	d.logger.Debug().
		Str(log.FieldEvent, "daemon.pages_forgotten").
		Int("pages", len(gone)).
		Msg("pages no longer produced")
	return nil
}

func pageNames(res *build.Result) []string {
	var out []string
	for _, dim := range res.Dimensions {
		for _, c := range dim.Categories {
			for _, p := range c.Pages {
				out = append(out, p.Name)
			}
		}
	}
	return out
}

// applyConfig swaps in a reloaded configuration. The page store stays; a new
// engine picks up the catalog settings.
func (d *Daemon) applyConfig(cfg *config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	d.engine = build.NewEngine(cfg, d.store)
	d.limiter.SetLimit(limitFor(cfg.Watch.MinInterval))
	d.logger.Info().
		Str(log.FieldEvent, "daemon.config_reloaded").
		Msg("configuration reloaded")
}

// Run builds once, then serves handler on the configured address until ctx
// is cancelled.
func (d *Daemon) Run(ctx context.Context, handler http.Handler) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", d.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.Server.Listen, err)
	}
	return d.Serve(ctx, ln, handler)
}

// Serve is Run on an existing listener. It takes ownership of ln.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.logger.Info().
			Str(log.FieldEvent, "api.server_started").
			Str("addr", ln.Addr().String()).
			Msg("API server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// A failed startup build is reported by health checks, not fatal.
		_, _ = d.Rebuild(ctx, TriggerStartup)
		return nil
	})
	if d.cfg.Watch.Enabled {
		g.Go(func() error { return d.watch(ctx) })
	}

	err := g.Wait()
	d.logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("daemon stopped")
	return err
}
