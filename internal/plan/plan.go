// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package plan writes the outcome of a build as a JSON document for the page
// writer: every category page with its records and skip flag, plus the
// navigation and memberships of every record.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ManuGH/jukebox/internal/build"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/google/renameio/v2"
)

// Version is bumped on incompatible changes of the document.
const Version = 1

type Plan struct {
	Version         int         `json:"version"`
	BuildID         string      `json:"build_id"`
	GeneratedAt     time.Time   `json:"generated_at"`
	DefaultCategory string      `json:"default_category,omitempty"`
	Dimensions      []Dimension `json:"dimensions"`
	Records         []Record    `json:"records"`
	Masters         []Master    `json:"masters,omitempty"`
}

type Dimension struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

type Category struct {
	Key          string `json:"key"`
	OriginalName string `json:"original_name,omitempty"`
	PageSize     int    `json:"page_size"`
	Skip         bool   `json:"skip"`
	Reason       string `json:"reason,omitempty"`
	Pages        []Page `json:"pages"`
}

type Page struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Skip    bool     `json:"skip"`
	Records []string `json:"records"`
}

// Record carries what a record page needs besides the record itself.
type Record struct {
	Key         string              `json:"key"`
	BaseName    string              `json:"base_name"`
	Extra       bool                `json:"extra,omitempty"`
	First       string              `json:"first,omitempty"`
	Previous    string              `json:"previous,omitempty"`
	Next        string              `json:"next,omitempty"`
	Last        string              `json:"last,omitempty"`
	Memberships map[string][]string `json:"memberships,omitempty"`
	Dirty       []record.DirtyFlag  `json:"dirty,omitempty"`
}

type Master struct {
	Set      string `json:"set"`
	BaseName string `json:"base_name"`
	Size     int    `json:"size"`
	TV       bool   `json:"tv,omitempty"`
	Poster   string `json:"poster,omitempty"`
	File     string `json:"file,omitempty"`
}

// FromResult converts a build result.
func FromResult(res *build.Result) *Plan {
	p := &Plan{
		Version:     Version,
		BuildID:     res.BuildID,
		GeneratedAt: res.FinishedAt,
	}
	if name, ok := res.DefaultCategory(); ok {
		p.DefaultCategory = name
	}
	for _, d := range res.Dimensions {
		dim := Dimension{Name: d.Name, Categories: make([]Category, 0, len(d.Categories))}
		for _, c := range d.Categories {
			dim.Categories = append(dim.Categories, CategoryOf(c))
		}
		p.Dimensions = append(p.Dimensions, dim)
	}

	p.Records = make([]Record, 0, len(res.Records))
	for _, r := range res.Records {
		p.Records = append(p.Records, RecordOf(r))
	}

	keys := make([]string, 0, len(res.Masters))
	for key := range res.Masters {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		p.Masters = append(p.Masters, MasterOf(key, res.Masters[key]))
	}
	return p
}

// MasterOf converts the master of set.
func MasterOf(set string, m *record.Record) Master {
	master := Master{
		Set:      set,
		BaseName: m.BaseName(),
		Size:     m.SetSize(),
		TV:       m.IsTVShow(),
		Poster:   m.Poster(),
	}
	if f, ok := m.FirstFile(); ok {
		master.File = f.Filename
	}
	return master
}

// CategoryOf converts one built category.
func CategoryOf(c build.Category) Category {
	cat := Category{
		Key:      c.Key,
		PageSize: c.PageSize,
		Skip:     c.Skip,
		Reason:   string(c.Reason),
		Pages:    make([]Page, 0, len(c.Pages)),
	}
	if c.OriginalName != c.Key {
		cat.OriginalName = c.OriginalName
	}
	for _, pg := range c.Pages {
		cat.Pages = append(cat.Pages, Page{
			Number:  pg.Number,
			Name:    pg.Name,
			Skip:    pg.Skip,
			Records: baseNames(pg.Records),
		})
	}
	return cat
}

// RecordOf converts one record after a build.
func RecordOf(r *record.Record) Record {
	return Record{
		Key:         r.Key(),
		BaseName:    r.BaseName(),
		Extra:       r.IsExtra(),
		First:       r.First(),
		Previous:    r.Previous(),
		Next:        r.Next(),
		Last:        r.Last(),
		Memberships: r.Indexes(),
		Dirty:       r.DirtyFlags().Flags(),
	}
}

func baseNames(list []*record.Record) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.BaseName())
	}
	return out
}

// Regenerated lists the names of the pages that are not skipped.
func (p *Plan) Regenerated() []string {
	var out []string
	for _, d := range p.Dimensions {
		for _, c := range d.Categories {
			for _, pg := range c.Pages {
				if !pg.Skip {
					out = append(out, pg.Name)
				}
			}
		}
	}
	return out
}

// Write stores p at path atomically: readers see the old or the new plan,
// never a partial one.
func Write(ctx context.Context, path string, p *Plan) error {
	logger := log.WithComponentFromContext(ctx, "plan")

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending plan file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending plan file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace plan file: %w", err)
	}

	logger.Info().
		Str(log.FieldEvent, "plan.written").
		Str(log.FieldPath, path).
		Str(log.FieldBuildID, p.BuildID).
		Int("regenerate", len(p.Regenerated())).
		Msg("build plan written")
	return nil
}

// Read loads a plan written by Write.
func Read(path string) (*Plan, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer func() { _ = f.Close() }()

	var p Plan
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", path, err)
	}
	if p.Version != Version {
		return nil, fmt.Errorf("plan %s: unsupported version %d", path, p.Version)
	}
	return &p, nil
}
