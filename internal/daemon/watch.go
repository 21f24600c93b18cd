// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ManuGH/jukebox/internal/log"
	"github.com/fsnotify/fsnotify"
)

// watch rebuilds after the record source or the configuration file changed.
// Parent directories are watched so that editors replacing the file are seen.
// Events are debounced; a throttled rebuild is retried when allowed.
func (d *Daemon) watch(ctx context.Context) error {
	d.mu.Lock()
	records, debounce := d.cfg.Source.Records, d.cfg.Watch.Debounce
	d.mu.Unlock()

	targets := make(map[string]bool)
	var configFile string
	for _, path := range []string{records, d.configPath} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve watched path: %w", err)
		}
		targets[abs] = true
		if path == d.configPath {
			configFile = abs
		}
	}
	if len(targets) == 0 {
		d.logger.Info().
			Str(log.FieldEvent, "daemon.watch_disabled").
			Msg("nothing to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := make(map[string]bool)
	for path := range targets {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	d.logger.Info().
		Str(log.FieldEvent, "daemon.watch_started").
		Int("files", len(targets)).
		Msg("watching for changes")

	var (
		timer         *time.Timer
		fire          <-chan time.Time
		configChanged bool
	)
	schedule := func(after time.Duration) {
		if timer == nil {
			timer = time.NewTimer(after)
		} else {
			timer.Reset(after)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if name == configFile {
				configChanged = true
			}
			d.logger.Debug().
				Str(log.FieldEvent, "daemon.file_changed").
				Str(log.FieldPath, name).
				Str("op", event.Op.String()).
				Msg("watched file changed")
			schedule(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Error().
				Err(err).
				Str(log.FieldEvent, "daemon.watch_error").
				Msg("file watcher error")

		case <-fire:
			fire = nil
			if configChanged && d.reload != nil {
				cfg, err := d.reload()
				if err != nil {
					d.logger.Error().
						Err(err).
						Str(log.FieldEvent, "daemon.config_reload_failed").
						Msg("configuration reload failed, keeping previous configuration")
				} else {
					d.applyConfig(cfg)
				}
			}
			configChanged = false

			_, err := d.Rebuild(ctx, TriggerWatch)
			var throttled *ThrottledError
			if errors.As(err, &throttled) {
				schedule(throttled.Wait)
			}
		}
	}
}
