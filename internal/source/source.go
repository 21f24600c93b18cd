// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package source reads the records a scanner produced. The file is a YAML or
// JSON list of record fields, chosen by extension.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported record source format")

// Load reads path and builds the records. Entries without a base name are
// rejected. Later entries sharing a key with an earlier one are dropped.
func Load(ctx context.Context, path string) ([]*record.Record, error) {
	path = filepath.Clean(path)
	// #nosec G304 -- record source path is provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record source: %w", err)
	}

	var fields []record.Fields
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		fields, err = decodeYAML(data)
	case ".json":
		fields, err = decodeJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode record source %s: %w", path, err)
	}
	return Records(ctx, fields)
}

// Records validates fields and turns them into records.
func Records(ctx context.Context, fields []record.Fields) ([]*record.Record, error) {
	logger := log.WithComponentFromContext(ctx, "source")

	out := make([]*record.Record, 0, len(fields))
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.BaseName) == "" {
			return nil, fmt.Errorf("record %d (%q): base name is required", i, f.Title)
		}
		switch record.MovieType(strings.ToUpper(string(f.MovieType))) {
		case "":
		case record.TypeMovie, record.TypeTVShow:
			f.MovieType = record.MovieType(strings.ToUpper(string(f.MovieType)))
		default:
			return nil, fmt.Errorf("record %d (%q): unknown movie type %q", i, f.BaseName, f.MovieType)
		}

		r := record.New(f)
		if first, dup := seen[r.Key()]; dup {
			logger.Warn().
				Str(log.FieldEvent, "source.duplicate_record").
				Str(log.FieldRecordKey, r.Key()).
				Int("first", first).
				Int("duplicate", i).
				Msg("record key already seen, dropping duplicate")
			continue
		}
		seen[r.Key()] = i
		out = append(out, r)
	}

	logger.Debug().
		Str(log.FieldEvent, "source.loaded").
		Int("records", len(out)).
		Msg("record source loaded")
	return out, nil
}

func decodeYAML(data []byte) ([]record.Fields, error) {
	var fields []record.Fields
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return fields, nil
}

func decodeJSON(data []byte) ([]record.Fields, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var fields []record.Fields
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
