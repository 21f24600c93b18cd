// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command jukebox builds the category index of a media catalog.
//
//	jukebox build -config jukebox.yaml     one build, writes the plan and exits
//	jukebox serve -config jukebox.yaml     builds, serves the read API and rebuilds on change
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/jukebox/internal/api"
	"github.com/ManuGH/jukebox/internal/build"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/daemon"
	"github.com/ManuGH/jukebox/internal/health"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/source"
	"github.com/ManuGH/jukebox/internal/state"
	"github.com/ManuGH/jukebox/internal/telemetry"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// maxBuildAge is how old the last successful build may get before serve mode
// reports itself degraded.
const maxBuildAge = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: jukebox <build|serve|version> [flags]")
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 2
	}
	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:], stdout)
	case "serve":
		return runServe(ctx, args[1:], stdout)
	case "version", "-version", "--version":
		_, _ = fmt.Fprintf(stdout, "%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return 0
	default:
		usage(stdout)
		return 2
	}
}

type options struct {
	configPath     string
	records        string
	dirtyLibraries string
}

func parseFlags(name string, args []string, stdout io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&opts.records, "records", "", "record source file, overrides the configuration")
	if name == "build" {
		fs.StringVar(&opts.dirtyLibraries, "dirty-libraries", "", "comma separated libraries whose content changed")
	}
	err := fs.Parse(args)
	return opts, err
}

// app holds what both subcommands share.
type app struct {
	cfg       *config.Config
	loader    *config.Loader
	telemetry *telemetry.Provider
	store     state.Store
}

func (r *app) close(ctx context.Context) {
	logger := log.WithComponent("jukebox")
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "state.close_failed").Msg("failed to close page store")
		}
	}
	if r.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "telemetry.shutdown_failed").Msg("failed to flush traces")
		}
	}
}

// setup loads the configuration and brings up logging, tracing and the page store.
func setup(ctx context.Context, opts options) (*app, error) {
	log.Configure(log.Config{Level: "info", Service: "jukebox", Version: version})

	loader := config.NewLoader(strings.TrimSpace(opts.configPath), version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.records != "" {
		cfg.Source.Records = opts.records
	}
	log.Reconfigure(log.Config{Level: cfg.Log.Level, Service: "jukebox", Version: version})

	rt := &app{cfg: cfg, loader: loader}
	rt.telemetry, err = telemetry.NewProvider(ctx, telemetry.FromConfig(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("start telemetry: %w", err)
	}
	if err := health.CheckOutputDir(cfg.Build.OutputDir); err != nil {
		rt.close(ctx)
		return nil, err
	}
	rt.store, err = state.Open(ctx, cfg.State, cfg.Build.OutputDir)
	if err != nil {
		rt.close(ctx)
		return nil, fmt.Errorf("open page store: %w", err)
	}
	return rt, nil
}

func (r *app) loadRecords(ctx context.Context) ([]*record.Record, error) {
	if r.cfg.Source.Records == "" {
		return nil, errors.New("no record source configured")
	}
	return source.Load(ctx, r.cfg.Source.Records)
}

func runBuild(ctx context.Context, args []string, stdout io.Writer) int {
	opts, err := parseFlags("build", args, stdout)
	if err != nil {
		return 2
	}
	rt, err := setup(ctx, opts)
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "jukebox: %v\n", err)
		return 1
	}
	defer rt.close(ctx)

	var libraries []string
	for _, lib := range strings.Split(opts.dirtyLibraries, ",") {
		if lib = strings.TrimSpace(lib); lib != "" {
			libraries = append(libraries, lib)
		}
	}
	d, err := daemon.New(daemon.Deps{
		Config:         rt.cfg,
		Engine:         build.NewEngine(rt.cfg, rt.store),
		Store:          rt.store,
		Load:           rt.loadRecords,
		DirtyLibraries: libraries,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "jukebox: %v\n", err)
		return 1
	}
	res, err := d.Rebuild(ctx, daemon.TriggerStartup)
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "jukebox: build failed: %v\n", err)
		return 1
	}
	skipped, regenerated := res.PageCounts()
	_, _ = fmt.Fprintf(stdout, "build %s: %d records, %d pages regenerated, %d skipped, plan %s\n",
		res.BuildID, len(res.Records), regenerated, skipped, rt.cfg.Build.PlanPath)
	return 0
}

func runServe(ctx context.Context, args []string, stdout io.Writer) int {
	opts, err := parseFlags("serve", args, stdout)
	if err != nil {
		return 2
	}
	rt, err := setup(ctx, opts)
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "jukebox: %v\n", err)
		return 1
	}
	defer rt.close(ctx)
	logger := log.WithComponent("jukebox")

	d, err := daemon.New(daemon.Deps{
		Config:     rt.cfg,
		ConfigPath: opts.configPath,
		Engine:     build.NewEngine(rt.cfg, rt.store),
		Store:      rt.store,
		Load:       rt.loadRecords,
		Reload: func() (*config.Config, error) {
			cfg, err := rt.loader.Load()
			if err != nil {
				return nil, err
			}
			if opts.records != "" {
				cfg.Source.Records = opts.records
			}
			return cfg, nil
		},
	})
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "jukebox: %v\n", err)
		return 1
	}

	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewFileChecker("records", rt.cfg.Source.Records))
	hm.RegisterChecker(health.NewBuildChecker(d.Status, maxBuildAge))
	hm.RegisterChecker(health.NewStoreChecker(rt.store))

	logger.Info().
		Str(log.FieldEvent, "jukebox.serve").
		Str(log.FieldVersion, version).
		Str("listen", rt.cfg.Server.Listen).
		Str("state_backend", rt.cfg.State.Backend).
		Bool("watch", rt.cfg.Watch.Enabled).
		Msg("starting jukebox")

	srv := api.New(rt.cfg.Server, d, d, hm)
	if err := d.Run(ctx, srv.Handler()); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "jukebox.serve_failed").Msg("serve failed")
		return 1
	}
	return 0
}
