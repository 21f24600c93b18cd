// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/jukebox/internal/build"
	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func result(t *testing.T) *build.Result {
	t.Helper()
	cfg := config.Default()
	cfg.Categories.MinCount = 1
	cfg.Build.Workers = 2

	member := func(title string, order int) *record.Record {
		return record.New(record.Fields{
			Title: title, BaseName: title, Year: "1986", Genres: []string{"Horror"},
			Sets: []record.SetMembership{{Name: "Alien Collection", Order: intp(order)}},
		})
	}
	records := []*record.Record{
		member("Alien", 1),
		member("Aliens", 2),
		record.New(record.Fields{Title: "Brazil", BaseName: "Brazil", Year: "1985", Genres: []string{"Comedy"}}),
	}
	res, err := build.NewEngine(&cfg, nil).Build(context.Background(), records, build.Options{
		Now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return res
}

func TestFromResult(t *testing.T) {
	res := result(t)
	p := FromResult(res)

	assert.Equal(t, Version, p.Version)
	assert.Equal(t, res.BuildID, p.BuildID)
	assert.Len(t, p.Records, 3)
	require.Len(t, p.Masters, 1)
	assert.Equal(t, "Alien Collection", p.Masters[0].Set)
	assert.Equal(t, 2, p.Masters[0].Size)

	var set *Dimension
	for i := range p.Dimensions {
		if p.Dimensions[i].Name == category.Set {
			set = &p.Dimensions[i]
		}
	}
	require.NotNil(t, set)
	require.Len(t, set.Categories, 1)
	require.Len(t, set.Categories[0].Pages, 1)
	assert.Equal(t, []string{"Alien", "Aliens"}, set.Categories[0].Pages[0].Records)

	_, regenerated := res.PageCounts()
	assert.Len(t, p.Regenerated(), regenerated)

	for _, r := range p.Records {
		if r.Key == res.Records[0].Key() {
			assert.Equal(t, res.Records[0].Indexes(), r.Memberships)
			assert.Empty(t, r.Previous)
		}
	}
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "plan.json")
	p := FromResult(result(t))

	require.NoError(t, Write(context.Background(), path, p))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, p.BuildID, got.BuildID)
	assert.Equal(t, p.Regenerated(), got.Regenerated())
	assert.Len(t, got.Masters, len(p.Masters))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no pending files left behind")

	// A second write replaces the first.
	p.BuildID = "second"
	require.NoError(t, Write(context.Background(), path, p))
	got, err = Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", got.BuildID)
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o600))
	_, err := Read(path)
	assert.ErrorContains(t, err, "unsupported version")

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
