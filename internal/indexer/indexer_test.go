// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func testEnv(mutate func(*config.Config)) Env {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return Env{Config: &cfg, Now: now, Logger: zerolog.Nop()}
}

func intp(v int) *int { return &v }

func TestYearKey(t *testing.T) {
	tests := []struct {
		year string
		want string
	}{
		{"2026", category.ThisYear},
		{"2025", category.LastYear},
		{"2024", "2020-2024"},
		{"2021", "2020-2024"},
		{"2019", "2010-2019"},
		{"1994", "1990-1999"},
		{"1900", "1900-1909"},
		{"", record.Unknown},
		{"UNKNOWN", record.Unknown},
		{"19x4", record.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			assert.Equal(t, tt.want, YearKey(tt.year, now))
		})
	}
}

func TestYearKeyDecadeBoundary(t *testing.T) {
	// In 2031 the newest closed range is the 2020s, ending at 2029.
	at := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-2029", YearKey("2029", at))
	assert.Equal(t, category.LastYear, YearKey("2030", at))
}

func TestTitleKey(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "M", TitleKey("matrix (1999) ", &cfg))
	assert.Equal(t, category.Symbols, TitleKey("2001 a space odyssey", &cfg))
	assert.Equal(t, category.Symbols, TitleKey("", &cfg))
	assert.Equal(t, "E", TitleKey("été meurtrier", &cfg))

	cfg.Indexing.CharMap = map[string]string{"Ø": "O"}
	assert.Equal(t, "O", TitleKey("ørnen", &cfg))

	cfg.Indexing.CharGroupEnglish = true
	assert.Equal(t, category.Latin, TitleKey("zodiac", &cfg))
	assert.Equal(t, category.Latin, TitleKey("été", &cfg))
	assert.Equal(t, "Ж", TitleKey("жмурки", &cfg))
}

func TestTitleIndexSkipsExtrasAndMasters(t *testing.T) {
	env := testEnv(func(c *config.Config) { c.Explode.RemoveTitle = true })
	movie := record.New(record.Fields{Title: "The Matrix", Year: "1999"})
	extra := record.New(record.Fields{Title: "Making of", Extra: true})
	master := record.New(record.Fields{Title: "Matrix Collection"})
	master.MarkSetMaster("Matrix Collection", 3)

	idx, err := Title(context.Background(), env, []*record.Record{movie, extra, master})
	require.NoError(t, err)
	assert.Equal(t, []string{"M"}, idx.Keys())
	assert.Len(t, idx.Get("M"), 1)
	assert.Equal(t, []string{"M"}, movie.IndexKeys(category.Title))
	assert.Empty(t, extra.Indexes())
}

func TestGenresMaxAndFilter(t *testing.T) {
	env := testEnv(func(c *config.Config) {
		c.Genres.Max = 2
		c.Genres.Filter = true
		c.Genres.Map = map[string]string{"adventure": "Action"}
	})
	r := record.New(record.Fields{Title: "X", Genres: []string{"Adventure", "Drama", "Comedy"}})

	idx, err := Genres(context.Background(), env, []*record.Record{r})
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama"}, idx.Keys())
}

func TestCertificationMappingAndOrder(t *testing.T) {
	env := testEnv(func(c *config.Config) {
		c.Certification.Filter = true
		c.Certification.Map = map[string]string{"pg-13": "Teen"}
		c.Certification.Default = "Other"
		c.Certification.Ordering = []string{"Teen", "Other"}
	})
	a := record.New(record.Fields{Title: "A", Certification: "PG-13"})
	b := record.New(record.Fields{Title: "B", Certification: "X"})

	idx, err := Certification(context.Background(), env, []*record.Record{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{"Teen", "Other"}, idx.Keys())

	cfg := config.Default()
	assert.Equal(t, "X", CertificationKey("X", &cfg), "no filtering keeps the raw value")
	cfg.Certification.Filter = true
	assert.Equal(t, "X", CertificationKey("X", &cfg), "no default keeps the raw value")
}

func TestRatingKey(t *testing.T) {
	key, ok := RatingKey(73)
	assert.True(t, ok)
	assert.Equal(t, "7.0-7.9", key)
	key, _ = RatingKey(100)
	assert.Equal(t, "10.0-10.9", key)
	_, ok = RatingKey(0)
	assert.False(t, ok)
	_, ok = RatingKey(record.NoRating)
	assert.False(t, ok)
}

func TestOtherProperties(t *testing.T) {
	env := testEnv(func(c *config.Config) {
		c.Indexing.SplitHD = true
		c.Categories.Rename = map[string]string{category.All: "Everything", category.ThreeD: ""}
	})
	fresh := now.Add(-24 * time.Hour)

	hd := record.New(record.Fields{
		Title: "HD", Resolution: "1920x1080", VideoSource: "3D BluRay", Top250: 5,
		Ratings: map[string]int{"imdb": 80}, Files: []record.MovieFile{{Filename: "a", LastModified: fresh}},
		Sets: []record.SetMembership{{Name: "Saga"}},
	})
	tv := record.New(record.Fields{
		Title: "Show", Season: intp(1), Resolution: "1280x720", WatchedFile: true,
		Files: []record.MovieFile{{Filename: "b", LastModified: fresh}},
	})
	extra := record.New(record.Fields{Title: "Trailer", Extra: true})

	idx, err := Other(context.Background(), env, []*record.Record{hd, tv, extra})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		category.HD1080, category.Top250, category.Rating, category.Unwatched,
		category.NewMovie, "Everything", category.Movies, category.Sets,
	}, hd.IndexKeys(category.Other))

	assert.ElementsMatch(t, []string{
		category.HD720, category.Watched, "Everything", category.TVShows,
	}, tv.IndexKeys(category.Other), "watched TV is hidden from New-TV")

	assert.Equal(t, []string{category.Extras}, extra.IndexKeys(category.Other))
	assert.False(t, idx.Has(category.ThreeD), "disabled category")
	assert.False(t, idx.Has(category.All), "renamed category uses its display name")
}

func TestOtherNewWithoutHiding(t *testing.T) {
	env := testEnv(func(c *config.Config) { c.New.HideWatched = false })
	tv := record.New(record.Fields{
		Title: "Show", MovieType: record.TypeTVShow, WatchedNFO: true,
		Files: []record.MovieFile{{Filename: "b", LastModified: now.Add(-6 * 24 * time.Hour)}},
	})
	old := record.New(record.Fields{
		Title: "Old", Files: []record.MovieFile{{Filename: "c", LastModified: now.Add(-8 * 24 * time.Hour)}},
	})
	idx, err := Other(context.Background(), env, []*record.Record{tv, old})
	require.NoError(t, err)
	assert.Len(t, idx.Get(category.NewTV), 1)
	assert.False(t, idx.Has(category.NewMovie))
}

func TestOtherWatchScannerDisabled(t *testing.T) {
	env := testEnv(func(c *config.Config) { c.Watched.ScannerEnabled = false })
	r := record.New(record.Fields{Title: "X", WatchedFile: true,
		Files: []record.MovieFile{{Filename: "a", LastModified: now}}})
	idx, err := Other(context.Background(), env, []*record.Record{r})
	require.NoError(t, err)
	assert.False(t, idx.Has(category.Watched))
	assert.False(t, idx.Has(category.Unwatched))
	assert.True(t, idx.Has(category.NewMovie), "watched state is ignored without the scanner")
}

func TestPeopleModes(t *testing.T) {
	r := record.New(record.Fields{
		Title: "X",
		Cast:  []string{"Plain Actor"},
		People: []record.Filmography{
			{Name: "Scanned Actor", Department: record.DepartmentActors, Filename: "scanned_actor"},
			{Name: "Fileless Actor", Department: record.DepartmentActors},
			{Name: "A Director", Department: record.DepartmentDirecting, Filename: "dir"},
		},
	})

	idx, err := Cast(context.Background(), testEnv(nil), []*record.Record{r})
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain Actor"}, idx.Keys())

	exclusive := testEnv(func(c *config.Config) { c.People.Scan, c.People.Exclusive = true, true })
	idx, err = Cast(context.Background(), exclusive, []*record.Record{r})
	require.NoError(t, err)
	assert.Equal(t, []string{"Scanned Actor"}, idx.Keys())

	idx, err = Director(context.Background(), exclusive, []*record.Record{r})
	require.NoError(t, err)
	assert.Equal(t, []string{"A Director"}, idx.Keys())

	idx, err = Person(context.Background(), testEnv(func(c *config.Config) { c.People.Complete = false }), []*record.Record{r})
	require.NoError(t, err)
	assert.Len(t, idx.Keys(), 3)
}

func TestSetIndex(t *testing.T) {
	env := testEnv(func(c *config.Config) {
		c.Sets.SingleSeriesPage = true
		c.Categories.MaxCount = 1
	})
	a := record.New(record.Fields{Title: "Alien", Sets: []record.SetMembership{{Name: "Alien", Order: intp(1)}}})
	b := record.New(record.Fields{Title: "Aliens", Sets: []record.SetMembership{{Name: "Alien", Order: intp(2)}, {Name: "Cameron"}}})
	s1 := record.New(record.Fields{Title: "Lost", OriginalTitle: "Lost", Season: intp(1)})

	idx, err := Set(context.Background(), env, []*record.Record{a, b, s1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "Cameron", "Lost"}, idx.Keys(), "set index ignores the key cap")
}

func TestAwardMatching(t *testing.T) {
	oscar := record.AwardEvent{Name: "Oscar", Awards: []record.Award{
		{Name: "Academy Awards", Wons: []string{"Best Picture"}, Nominations: []string{"Best Director"}},
	}}
	nominatedOnly := record.AwardEvent{Name: "Globe", Awards: []record.Award{
		{Name: "Golden Globe", Nominations: []string{"Best Score"}},
	}}
	bare := record.AwardEvent{Name: "Saturn"}

	tests := []struct {
		name   string
		filter config.AwardsConfig
		event  record.AwardEvent
		want   bool
	}{
		{"no filters, won", config.AwardsConfig{}, oscar, true},
		{"no filters, nominated", config.AwardsConfig{}, nominatedOnly, true},
		{"won only drops nominations", config.AwardsConfig{WonOnly: true}, nominatedOnly, false},
		{"event allow-list hit", config.AwardsConfig{Events: []string{"Oscar"}}, oscar, true},
		{"event allow-list miss", config.AwardsConfig{Events: []string{"Cannes"}}, oscar, false},
		{"name allow-list hit", config.AwardsConfig{Names: []string{"Academy Awards"}}, oscar, true},
		{"name allow-list miss", config.AwardsConfig{Names: []string{"Palme"}}, oscar, false},
		{"won list hit", config.AwardsConfig{Won: []string{"Best Picture"}}, oscar, true},
		{"won list miss", config.AwardsConfig{Won: []string{"Best Actor"}}, oscar, false},
		{"nominated list hit", config.AwardsConfig{Nominated: []string{"Best Director"}}, oscar, true},
		{"nominated list miss", config.AwardsConfig{Nominated: []string{"Best Actor"}}, nominatedOnly, false},
		{"nominated miss, won hit", config.AwardsConfig{Nominated: []string{"x"}, Won: []string{"Best Picture"}}, oscar, true},
		{"no filters, event without awards", config.AwardsConfig{}, bare, true},
		{"event allow-list, event without awards", config.AwardsConfig{Events: []string{"Saturn"}}, bare, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AwardEventMatches(tt.event, tt.filter))
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Title(ctx, testEnv(nil), []*record.Record{record.New(record.Fields{Title: "X"})})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPanicSkipsRecord(t *testing.T) {
	env := testEnv(nil)
	calls := 0
	err := each(context.Background(), env, "Test", []*record.Record{
		record.New(record.Fields{Title: "A"}),
		record.New(record.Fields{Title: "B"}),
	}, func(r *record.Record) {
		calls++
		if r.Title() == "A" {
			panic("bad data")
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLookup(t *testing.T) {
	for _, dim := range category.Dimensions {
		_, ok := Lookup(dim)
		assert.True(t, ok, dim)
	}
	_, ok := Lookup("Nope")
	assert.False(t, ok)
}
