// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestKey(t *testing.T) {
	movie := New(Fields{Title: "Alien", Year: "1979"})
	assert.Equal(t, "alien (1979)", movie.Key())

	tv := New(Fields{Title: "Lost", Year: "2004", Season: intp(2), MovieType: TypeTVShow})
	assert.Equal(t, "lost (2004) season 002", tv.Key())
	assert.True(t, tv.IsTVShow())

	blank := New(Fields{})
	assert.Equal(t, "unknown (unknown)", blank.Key())
}

func TestIsTVShowFromSeason(t *testing.T) {
	r := New(Fields{Title: "X", Season: intp(0)})
	assert.True(t, r.IsTVShow())
	assert.False(t, New(Fields{Title: "X"}).IsTVShow())
}

func TestSetterReportsChange(t *testing.T) {
	r := New(Fields{Title: "Alien", Year: "1979", Certification: "R"})

	assert.False(t, r.SetTitle("ALIEN"), "case-insensitive compare")
	assert.False(t, r.IsDirty(DirtyInfo), "setters never raise flags themselves")
	assert.True(t, r.SetTitle("Aliens"))
	assert.Equal(t, "Aliens", r.Title())
	assert.Equal(t, "Aliens", r.TitleSort(), "title sort follows title")

	assert.True(t, r.SetCertification(""))
	assert.Equal(t, Unknown, r.Certification())
	assert.False(t, r.SetCertification("   "))
}

func TestTrackRaisesFlagOnlyOnChange(t *testing.T) {
	r := New(Fields{Title: "Alien", Year: "1979"})

	assert.False(t, Set(r, DirtyInfo, r.SetYear, "1979"))
	assert.False(t, r.IsDirty(DirtyInfo))

	assert.True(t, Set(r, DirtyInfo, r.SetYear, "1986"))
	assert.True(t, r.IsDirty(DirtyInfo))

	assert.True(t, Set(r, DirtyWatched, r.SetWatchedFile, true))
	assert.True(t, r.IsDirty(DirtyWatched))
	assert.True(t, r.Watched())
}

func TestRatingResolution(t *testing.T) {
	r := New(Fields{Title: "X", Ratings: map[string]int{"a": 80, "b": 60}})

	assert.Equal(t, 70, r.Rating(RatingPolicy{Sources: []string{AverageSource}}))
	assert.Equal(t, 60, r.Rating(RatingPolicy{Sources: []string{AverageSource}, Ignore: []string{"a"}}))
	assert.Equal(t, 0, r.Rating(RatingPolicy{Sources: []string{AverageSource}, Ignore: []string{"a", "b"}}))
	assert.Equal(t, 80, r.Rating(RatingPolicy{Sources: []string{"a", AverageSource}}))
	assert.Equal(t, 60, r.Rating(RatingPolicy{Sources: []string{"zz", "b"}}))
	assert.Equal(t, NoRating, r.Rating(RatingPolicy{Sources: []string{"zz"}}))

	assert.Equal(t, NoRating, New(Fields{Title: "Y"}).Rating(RatingPolicy{}))
}

func TestRatingIgnorePrefix(t *testing.T) {
	r := New(Fields{Title: "X", Ratings: map[string]int{"imdb": 90, "imdb_top": 10, "tmdb": 50}})
	assert.Equal(t, 50, r.Rating(RatingPolicy{Ignore: []string{"imdb"}}))
}

func TestStrippedTitleSort(t *testing.T) {
	r := New(Fields{Title: "The Matrix", Year: "1999"})
	assert.Equal(t, "matrix (1999) ", r.StrippedTitleSort([]string{"The", "A"}))
	assert.Equal(t, "the matrix (1999) ", r.StrippedTitleSort(nil))

	tv := New(Fields{Title: "Lost", Year: "2004", Season: intp(3)})
	assert.Equal(t, "lost 03 (2004) ", tv.StrippedTitleSort(nil))
	tv.SetSeason(12)
	assert.Equal(t, "lost 12 (2004) ", tv.StrippedTitleSort(nil))

	quoted := New(Fields{Title: "X", TitleSort: `"Sorted"`, Year: "2000"})
	assert.Equal(t, "Sorted", quoted.TitleSort())
}

func TestStrippedTitleSortCache(t *testing.T) {
	r := New(Fields{Title: "The Thing", Year: "1982"})
	prefixes := []string{"The"}
	assert.Equal(t, "thing (1982) ", r.StrippedTitleSort(prefixes))
	assert.Equal(t, "the thing (1982) ", r.StrippedTitleSort(nil), "other prefixes recompute")

	r.SetTitle("Thing From Another World")
	assert.Equal(t, "thing from another world (1982) ", r.StrippedTitleSort(prefixes))
	r.SetYear("1951")
	assert.Equal(t, "thing from another world (1951) ", r.StrippedTitleSort(prefixes))
	r.SetTitleSort("Another World")
	assert.Equal(t, "another world (1951) ", r.StrippedTitleSort(prefixes))
	r.MarkSetMaster("Things", 2)
	assert.Equal(t, "another world (1951) ", r.StrippedTitleSort(prefixes), "sort title is kept")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "another world (1951) ", r.StrippedTitleSort(prefixes))
		}()
	}
	wg.Wait()
}

func TestResolutionClassification(t *testing.T) {
	r := New(Fields{Title: "X", Resolution: "1920x1080", VideoSource: "BluRay 3D"})
	assert.Equal(t, 1920, r.Width())
	assert.True(t, r.IsHD(1280))
	assert.True(t, r.IsHD1080(1920))
	assert.True(t, r.Is3D())

	sd := New(Fields{Title: "Y", Resolution: "720x576"})
	assert.False(t, sd.IsHD(1280))
	sd.MarkHD(true)
	assert.True(t, sd.IsHD(1280))

	assert.Equal(t, 0, New(Fields{Title: "Z", Resolution: "garbage"}).Width())
}

func TestLastModifiedConcurrent(t *testing.T) {
	newest := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r := New(Fields{
		Title: "X",
		Files: []MovieFile{
			{Filename: "a.mkv", LastModified: newest.Add(-time.Hour)},
			{Filename: "b.mkv", LastModified: newest},
		},
		FileDate: newest.Add(-48 * time.Hour),
	})

	var wg sync.WaitGroup
	results := make([]time.Time, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.LastModified()
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.True(t, newest.Equal(got))
	}

	r.SetFileDate(newest.Add(time.Hour))
	assert.True(t, newest.Equal(r.LastModified()), "cached within a run")
	r.ResetLastModified()
	assert.True(t, newest.Add(time.Hour).Equal(r.LastModified()))
}

func TestMembership(t *testing.T) {
	r := New(Fields{Title: "X"})
	var wg sync.WaitGroup
	for _, dim := range []string{"Genres", "Title", "Year"} {
		wg.Add(1)
		go func(dim string) {
			defer wg.Done()
			r.AddIndex(dim, "B")
			r.AddIndex(dim, "A")
			r.AddIndex(dim, "A")
		}(dim)
	}
	wg.Wait()

	assert.Equal(t, []string{"A", "B"}, r.IndexKeys("Genres"))
	assert.Len(t, r.Indexes(), 3)
	r.ResetIndexes()
	assert.Empty(t, r.Indexes())
}

func TestSetMembership(t *testing.T) {
	r := New(Fields{Title: "X"})
	assert.True(t, r.AddSet("Alien", intp(2)))
	assert.False(t, r.AddSet("Alien", intp(2)))
	assert.True(t, r.AddSet("Alien", intp(1)))
	assert.True(t, r.AddSet("Horror", nil))

	order, ok := r.SetOrder("Alien")
	require.True(t, ok)
	assert.Equal(t, 1, order)
	_, ok = r.SetOrder("Horror")
	assert.False(t, ok)
	assert.Equal(t, []string{"Alien", "Horror"}, r.SetKeys())

	trimmed := New(Fields{Title: "Y", Sets: []SetMembership{
		{Name: " Alien "}, {Name: "  "}, {Name: "Alien", Order: intp(3)},
	}})
	assert.Equal(t, []string{"Alien"}, trimmed.SetKeys())
	order, ok = trimmed.SetOrder("Alien")
	require.True(t, ok)
	assert.Equal(t, 3, order)
}

func TestMasterKey(t *testing.T) {
	m := New(Fields{Title: "ALIEN", OriginalTitle: "Alien (Director's Cut)", Year: "1979"})
	m.MarkSetMaster(" Alien ", 4)
	assert.True(t, m.IsSetMaster())
	assert.Equal(t, 4, m.SetSize())
	assert.Equal(t, "Alien", m.MasterSet())
	assert.Equal(t, "Alien", m.Title())
	assert.Equal(t, "Alien", m.OriginalTitle())
	assert.Equal(t, MasterKeyPrefix+"alien", m.Key())
}

func TestDirtyFlagText(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","dirty":["info","Watched"]}`), &f))
	r := New(f)
	assert.True(t, r.IsDirty(DirtyInfo))
	assert.True(t, r.IsDirty(DirtyWatched))
	assert.False(t, r.IsDirty(DirtyRecheck))
	assert.Equal(t, "[INFO,WATCHED]", r.DirtyFlags().String())

	_, err := ParseDirtyFlag("nope")
	assert.Error(t, err)

	r.ClearDirty()
	assert.False(t, r.IsDirtyAny())
}

func TestCloneIsIndependent(t *testing.T) {
	r := New(Fields{Title: "X", Genres: []string{"Drama"}, Ratings: map[string]int{"a": 1}})
	r.SetNavigation("a", "b", "c", "d")
	r.AddIndex("Title", "X")

	c := r.Clone()
	c.SetGenres([]string{"Comedy"})
	c.SetRating("a", 2)

	assert.Equal(t, []string{"Drama"}, r.Genres())
	assert.Equal(t, 1, r.Ratings()["a"])
	assert.Empty(t, c.Next())
	assert.Empty(t, c.Indexes())
}
