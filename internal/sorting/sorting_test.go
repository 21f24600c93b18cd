// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sorting

import (
	"bytes"
	"testing"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(mutate func(*config.Config)) *Table {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return newTable(&cfg, zerolog.Nop())
}

func boolp(v bool) *bool { return &v }
func intp(v int) *int    { return &v }

func titles(list []*record.Record) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Title()
	}
	return out
}

func movie(title, year string, rating int) *record.Record {
	f := record.Fields{Title: title, Year: year}
	if rating >= 0 {
		f.Ratings = map[string]int{"imdb": rating}
	}
	return record.New(f)
}

func TestNaturalOrder(t *testing.T) {
	table := testTable(nil)
	list := []*record.Record{
		movie("The Thing", "1982", -1),
		movie("alien", "1979", -1),
		movie("Thing", "2011", -1),
		movie("An Affair", "1957", -1),
		movie("Zorro", "1998", -1),
	}
	table.Sort(list, table.Comparator(category.Genres, "Horror"))
	assert.Equal(t, []string{"An Affair", "alien", "The Thing", "Thing", "Zorro"}, titles(list))
}

func TestNaturalOrderSeasons(t *testing.T) {
	table := testTable(nil)
	s10 := record.New(record.Fields{Title: "Lost", Year: "2004", Season: intp(10)})
	s2 := record.New(record.Fields{Title: "Lost", Year: "2004", Season: intp(2)})
	s1 := record.New(record.Fields{Title: "Lost", Year: "2004", Season: intp(1)})
	list := []*record.Record{s10, s2, s1}
	table.Sort(list, nil)
	assert.Equal(t, []*record.Record{s1, s2, s10}, list)
}

func TestDefaultRules(t *testing.T) {
	table := testTable(nil)
	low, high, none := movie("B", "2000", 40), movie("C", "2000", 90), movie("A", "2000", -1)

	list := []*record.Record{low, none, high}
	table.Sort(list, table.Comparator(category.Ratings, "9.0-9.9"))
	assert.Equal(t, []*record.Record{high, low, none}, list)

	list = []*record.Record{low, none, high}
	table.Sort(list, table.Comparator(category.Other, category.Rating))
	assert.Equal(t, []*record.Record{high, low, none}, list)

	list = []*record.Record{high, none, low}
	table.Sort(list, table.Comparator(category.Year, "2000-2009"))
	assert.Equal(t, []string{"A", "B", "C"}, titles(list))
}

func TestTop250Order(t *testing.T) {
	table := testTable(nil)
	first := record.New(record.Fields{Title: "Z", Top250: 1})
	tenth := record.New(record.Fields{Title: "A", Top250: 10})
	unranked := record.New(record.Fields{Title: "B"})
	list := []*record.Record{unranked, tenth, first}
	table.Sort(list, table.Comparator(category.Other, category.Top250))
	assert.Equal(t, []*record.Record{first, tenth, unranked}, list)

	assert.Equal(t, 1, compareRank(-1, 5, false), "unranked sorts last descending too")
}

func TestNewOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := record.New(record.Fields{Title: "A", FileDate: base})
	newer := record.New(record.Fields{Title: "B", FileDate: base.Add(time.Hour)})

	for _, name := range []string{category.New, category.NewMovie, category.NewTV} {
		table := testTable(nil)
		list := []*record.Record{older, newer}
		table.Sort(list, table.Comparator(category.Other, name))
		assert.Equal(t, []*record.Record{newer, older}, list, name)
	}
}

func TestRenamedOtherCategory(t *testing.T) {
	table := testTable(func(c *config.Config) {
		c.Categories.Rename = map[string]string{category.Top250: "Best Of"}
	})
	first := record.New(record.Fields{Title: "Z", Top250: 1})
	second := record.New(record.Fields{Title: "A", Top250: 2})
	list := []*record.Record{second, first}
	table.Sort(list, table.Comparator(category.Other, "Best Of"))
	assert.Equal(t, []*record.Record{first, second}, list)
}

func TestConfiguredRules(t *testing.T) {
	table := testTable(func(c *config.Config) {
		c.Sort = map[string]config.SortRule{
			category.Genres: {By: "Year"},
			category.Title:  {By: "title", Ascending: boolp(false)},
			category.New:    {By: "title"},
		}
	})
	rule, ok := table.Rule(category.Genres)
	require.True(t, ok)
	assert.Equal(t, Rule{By: ByYear, Ascending: true}, rule)

	a, b, c := movie("A", "2001", -1), movie("B", "1999", -1), movie("C", "2010", -1)
	list := []*record.Record{a, b, c}
	table.Sort(list, table.Comparator(category.Genres, "Drama"))
	assert.Equal(t, []*record.Record{b, a, c}, list)

	list = []*record.Record{a, b, c}
	table.Sort(list, table.Comparator(category.Title, "A"))
	assert.Equal(t, []*record.Record{c, b, a}, list)

	list = []*record.Record{c, a, b}
	table.Sort(list, table.Comparator(category.Other, category.New))
	assert.Equal(t, []*record.Record{a, b, c}, list, "explicit rules override the New default")
}

func TestInvalidRuleFallsBack(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Sort = map[string]config.SortRule{category.Ratings: {By: "popularity"}}
	table := newTable(&cfg, zerolog.New(&buf))

	rule, ok := table.Rule(category.Ratings)
	require.True(t, ok)
	assert.Equal(t, Rule{By: ByRating}, rule)
	assert.Contains(t, buf.String(), "sort.invalid_rule")
	assert.Contains(t, buf.String(), "popularity")
}

func TestSetOrder(t *testing.T) {
	table := testTable(nil)
	third := record.New(record.Fields{Title: "A", Sets: []record.SetMembership{{Name: "S", Order: intp(3)}}})
	first := record.New(record.Fields{Title: "C", Sets: []record.SetMembership{{Name: "S", Order: intp(1)}}})
	loose := record.New(record.Fields{Title: "B", Sets: []record.SetMembership{{Name: "S"}}})
	other := record.New(record.Fields{Title: "0", Sets: []record.SetMembership{{Name: "S"}}})

	list := []*record.Record{loose, third, other, first}
	table.Sort(list, table.Comparator(category.Set, "S"))
	assert.Equal(t, []*record.Record{first, third, other, loose}, list)
}

func TestSortIsDeterministic(t *testing.T) {
	table := testTable(nil)
	a := record.New(record.Fields{Title: "Same", Year: "2000", Library: "one"})
	b := record.New(record.Fields{Title: "Same", Year: "2001"})
	c := movie("Other", "2000", -1)

	first := []*record.Record{a, b, c}
	second := []*record.Record{c, b, a}
	table.Sort(first, nil)
	table.Sort(second, nil)
	assert.Equal(t, first, second)
}
