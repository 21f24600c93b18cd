// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// genreFile lists aliases per master genre:
//
//	Action: [Adventure, "Action & Adventure"]
type genreFile map[string][]string

// certificationFile maps raw certifications and may fix ordering and default.
type certificationFile struct {
	Map      map[string]string `yaml:"map"`
	Default  string            `yaml:"default"`
	Ordering []string          `yaml:"ordering"`
}

// loadMappings reads the mapping files referenced by cfg. Each failure is
// returned as a *ConfigurationError and leaves the mapping it concerns empty.
func loadMappings(cfg *Config, baseDir string) []error {
	var errs []error

	if cfg.Genres.File != "" {
		var gf genreFile
		path := resolve(baseDir, cfg.Genres.File)
		if err := readStrict(path, &gf); err != nil {
			errs = append(errs, &ConfigurationError{Mapping: "genre", Path: path, Err: err})
			cfg.Genres.Map = nil
		} else {
			cfg.Genres.Map = mergeGenres(cfg.Genres.Map, gf)
		}
	}

	if cfg.Certification.File != "" {
		var cf certificationFile
		path := resolve(baseDir, cfg.Certification.File)
		if err := readStrict(path, &cf); err != nil {
			errs = append(errs, &ConfigurationError{Mapping: "certification", Path: path, Err: err})
			cfg.Certification.Map = nil
		} else {
			if cfg.Certification.Map == nil {
				cfg.Certification.Map = make(map[string]string, len(cf.Map))
			}
			for k, v := range cf.Map {
				cfg.Certification.Map[strings.ToLower(k)] = v
			}
			if cf.Default != "" {
				cfg.Certification.Default = cf.Default
			}
			if len(cf.Ordering) > 0 {
				cfg.Certification.Ordering = cf.Ordering
			}
		}
	}

	if cfg.Categories.File != "" {
		var rename map[string]string
		path := resolve(baseDir, cfg.Categories.File)
		if err := readStrict(path, &rename); err != nil {
			errs = append(errs, &ConfigurationError{Mapping: "category", Path: path, Err: err})
			cfg.Categories.Rename = nil
		} else {
			if cfg.Categories.Rename == nil {
				cfg.Categories.Rename = make(map[string]string, len(rename))
			}
			for k, v := range rename {
				cfg.Categories.Rename[k] = v
			}
		}
	}

	cfg.Genres.Map = lowerKeys(cfg.Genres.Map)
	cfg.Certification.Map = lowerKeys(cfg.Certification.Map)
	return errs
}

func mergeGenres(dst map[string]string, gf genreFile) map[string]string {
	if dst == nil {
		dst = make(map[string]string)
	}
	for master, aliases := range gf {
		dst[strings.ToLower(master)] = master
		for _, alias := range aliases {
			dst[strings.ToLower(alias)] = master
		}
	}
	return dst
}

func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

func readStrict(path string, out any) error {
	// #nosec G304 -- mapping file paths come from the operator's config
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}
