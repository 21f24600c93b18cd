// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func testConfig(mutate func(*config.Config)) *config.Config {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return &cfg
}

func member(title, set string, order *int) *record.Record {
	f := record.Fields{Title: title, Year: "1990", BaseName: title}
	if set != "" {
		f.Sets = []record.SetMembership{{Name: set, Order: order}}
	}
	return record.New(f)
}

func tvMember(title, set string, season int) *record.Record {
	return record.New(record.Fields{
		Title:    title,
		Year:     "2004",
		BaseName: fmt.Sprintf("%s.S%02d", title, season),
		Season:   intp(season),
		Sets:     []record.SetMembership{{Name: set}},
	})
}

func setIndex(members map[string][]*record.Record) *index.Index {
	idx := index.New()
	for key, list := range members {
		for _, r := range list {
			idx.AddRecord(key, r)
		}
	}
	return idx
}

func titles(list []*record.Record) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Title())
	}
	return out
}

func TestPrimaryMember(t *testing.T) {
	a := member("Alien 3", "Alien", nil)
	b := member("Aliens", "Alien", intp(2))
	c := member("Alien", "Alien", intp(1))
	d := member("Alien Resurrection", "Alien", intp(1))

	assert.Same(t, c, primary("Alien", []*record.Record{a, b, c, d}))
	assert.Same(t, a, primary("Alien", []*record.Record{a, member("x", "Other", intp(1))}))
}

func TestBuildMasters(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	first := record.New(record.Fields{
		Title:       "Alien",
		Year:        "1979",
		BaseName:    "Alien.1979",
		Resolution:  "1920x800",
		Top250:      50,
		WatchedFile: true,
		Ratings:     map[string]int{"imdb": 80},
		Files:       []record.MovieFile{{Filename: "alien.mkv", LastModified: day}},
		Sets:        []record.SetMembership{{Name: "Alien", Order: intp(1)}},
		Dirty:       []record.DirtyFlag{record.DirtyPoster},
	})
	second := record.New(record.Fields{
		Title:    "Aliens",
		Year:     "1986",
		BaseName: "Aliens.1986",
		Top250:   30,
		Ratings:  map[string]int{"imdb": 60},
		Files:    []record.MovieFile{{Filename: "aliens.mkv", LastModified: day.Add(48 * time.Hour)}},
		Sets:     []record.SetMembership{{Name: "Alien", Order: intp(2)}},
		Dirty:    []record.DirtyFlag{record.DirtyInfo},
	})
	idx := setIndex(map[string][]*record.Record{"Alien": {second, first}})

	tests := []struct {
		policy string
		want   int
	}{
		{config.SetRatingFirst, 80},
		{config.SetRatingMax, 80},
		{config.SetRatingAverage, 70},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			c := New(testConfig(func(c *config.Config) { c.Sets.Rating = tt.policy }))
			masters, err := c.BuildMasters(context.Background(), idx)
			require.NoError(t, err)
			require.Len(t, masters, 1)

			m := masters["Alien"]
			require.NotNil(t, m)
			assert.True(t, m.IsSetMaster())
			assert.Equal(t, 2, m.SetSize())
			assert.Equal(t, "Alien", m.Title())
			assert.Equal(t, "Alien", m.TitleSort())
			assert.Equal(t, "1979", m.Year(), "scalars come from the lowest set order")
			assert.Equal(t, "Set_Alien_1", m.BaseName())
			assert.False(t, m.Watched(), "one unwatched member makes the master unwatched")
			assert.True(t, m.IsHD(1280))
			assert.False(t, m.IsTVShow())
			assert.Equal(t, 30, m.Top250())
			assert.Len(t, m.Files(), 2)
			assert.Equal(t, day.Add(48*time.Hour), m.LastModified())
			assert.True(t, m.IsDirty(record.DirtyInfo))
			assert.True(t, m.IsDirty(record.DirtyPoster))
			assert.Equal(t, tt.want, m.Rating(record.RatingPolicy{}))

			assert.False(t, first.IsSetMaster(), "members are left untouched")
			assert.Equal(t, "Alien.1979", first.BaseName())
		})
	}
}

func TestBuildMastersClearsCloneDirt(t *testing.T) {
	p := record.New(record.Fields{
		Title: "Heat",
		Sets:  []record.SetMembership{{Name: "Mann"}},
		Dirty: []record.DirtyFlag{record.DirtyFanart},
	})
	q := member("Thief", "Mann", nil)
	p.SetDirty(record.DirtyFanart, false)

	masters, err := New(testConfig(nil)).BuildMasters(context.Background(), setIndex(map[string][]*record.Record{"Mann": {p, q}}))
	require.NoError(t, err)
	assert.True(t, masters["Mann"].DirtyFlags().Empty())
}

func TestBuildMastersTV(t *testing.T) {
	movie := func(title string) *record.Record { return member(title, "Firefly", nil) }
	show := func(season int) *record.Record { return tvMember("Firefly", "Firefly", season) }

	tests := []struct {
		name    string
		rule    string
		members []*record.Record
		want    bool
	}{
		{"majority, one of three", config.SetTVMajority, []*record.Record{show(1), movie("Serenity"), movie("Firefly Movie")}, false},
		{"majority, two of three", config.SetTVMajority, []*record.Record{movie("Serenity"), show(1), show(2)}, true},
		{"majority, tie", config.SetTVMajority, []*record.Record{show(1), movie("Serenity")}, false},
		{"any, one of three", config.SetTVAny, []*record.Record{movie("Serenity"), show(1), movie("Firefly Movie")}, true},
		{"any, none", config.SetTVAny, []*record.Record{movie("Serenity"), movie("Firefly Movie")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig(func(c *config.Config) { c.Sets.TVRule = tt.rule }))
			masters, err := c.BuildMasters(context.Background(), setIndex(map[string][]*record.Record{
				"Firefly": tt.members,
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, masters["Firefly"].IsTVShow())
		})
	}
}

func TestBuildMastersTakeSetKeyAsTitle(t *testing.T) {
	loud := record.New(record.Fields{
		Title:         "ALIEN",
		OriginalTitle: "ALIEN",
		Year:          "1979",
		Sets:          []record.SetMembership{{Name: " Alien ", Order: intp(1)}},
	})
	quiet := member("Aliens", "Alien", intp(2))
	require.Equal(t, []string{"Alien"}, loud.SetKeys())

	masters, err := New(testConfig(nil)).BuildMasters(context.Background(), setIndex(map[string][]*record.Record{
		"Alien": {loud, quiet},
	}))
	require.NoError(t, err)
	m := masters["Alien"]
	assert.Equal(t, "Alien", m.Title())
	assert.Equal(t, "Alien", m.OriginalTitle())
	assert.Equal(t, "Alien", m.MasterSet())
	assert.Equal(t, "set:alien", m.Key())
	assert.NotEqual(t, loud.Key(), m.Key())
}

func TestExplodeTitleCaseDiffersFromSetKey(t *testing.T) {
	c := New(testConfig(func(c *config.Config) {
		c.Explode.Categories = []string{category.Genres}
		c.Explode.Remove = true
	}))
	a := record.New(record.Fields{Title: "ALIEN", Year: "1979", BaseName: "ALIEN",
		Sets: []record.SetMembership{{Name: "Alien", Order: intp(1)}}})
	b := member("Aliens", "Alien", intp(2))
	sets := setIndex(map[string][]*record.Record{"Alien": {a, b}})
	uncompressed := setIndex(map[string][]*record.Record{"Horror": {a, b}})
	masters, err := c.BuildMasters(context.Background(), sets)
	require.NoError(t, err)

	list := c.Compress([]*record.Record{a, b}, sets, masters, category.Genres, "Horror")
	require.Equal(t, []*record.Record{masters["Alien"]}, list)
	assert.Equal(t, []*record.Record{a, b}, c.Explode(list, sets, uncompressed, category.Genres, "Horror"))
}

func TestCompressRecordsMasterMembership(t *testing.T) {
	c := New(testConfig(func(c *config.Config) {
		c.Explode.Categories = []string{category.Genres}
		c.Explode.Remove = true
	}))
	a, b := member("Alien", "Alien", intp(1)), member("Aliens", "Alien", intp(2))
	sets := setIndex(map[string][]*record.Record{"Alien": {a, b}})
	uncompressed := setIndex(map[string][]*record.Record{"Horror": {a, b}, "Action": {a, b}})
	masters, err := c.BuildMasters(context.Background(), sets)
	require.NoError(t, err)
	m := masters["Alien"]

	c.Compress([]*record.Record{a, b}, sets, masters, category.Country, "USA")
	horror := c.Compress([]*record.Record{a, b}, sets, masters, category.Genres, "Horror")
	assert.Equal(t, []string{"USA"}, m.IndexKeys(category.Country))
	assert.Equal(t, []string{"Horror"}, m.IndexKeys(category.Genres))

	c.Explode(horror, sets, uncompressed, category.Genres, "Horror")
	assert.Empty(t, m.IndexKeys(category.Genres), "a removed master leaves the category")
	assert.Equal(t, []string{"USA"}, m.IndexKeys(category.Country))
}

func TestBuildMastersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig(nil)).BuildMasters(ctx, setIndex(map[string][]*record.Record{
		"Alien": {member("Alien", "Alien", nil)},
	}))
	require.ErrorIs(t, err, context.Canceled)
}

// fixture is one category list holding two set members and an unrelated record.
type fixture struct {
	a, b, other  *record.Record
	master       *record.Record
	sets         *index.Index
	uncompressed *index.Index
	masters      Masters
}

func newFixture(t *testing.T, c *Consolidator, tv bool) fixture {
	t.Helper()
	f := fixture{other: member("Zulu", "", nil)}
	if tv {
		f.a, f.b = tvMember("Lost", "Lost", 1), tvMember("Lost", "Lost", 2)
	} else {
		f.a, f.b = member("Alien", "Lost", intp(1)), member("Aliens", "Lost", intp(2))
	}
	f.sets = setIndex(map[string][]*record.Record{"Lost": {f.a, f.b}})
	f.uncompressed = index.New()
	for _, r := range []*record.Record{f.a, f.b, f.other} {
		f.uncompressed.AddRecord("Action", r)
	}
	var err error
	f.masters, err = c.BuildMasters(context.Background(), f.sets)
	require.NoError(t, err)
	f.master = f.masters["Lost"]
	return f
}

// run compresses the Action genre list and then explodes it as the build does
// after sorting.
func (f fixture) run(c *Consolidator) []*record.Record {
	list := c.Compress([]*record.Record{f.a, f.b, f.other}, f.sets, f.masters, category.Genres, "Action")
	return c.Explode(list, f.sets, f.uncompressed, category.Genres, "Action")
}

func TestExplodeMatrix(t *testing.T) {
	type want struct {
		movie []string
		tv    []string
	}
	const (
		a      = "a"
		b      = "b"
		other  = "other"
		master = "master"
	)
	tests := []struct {
		beforeSort, remove, keepTV bool
		want                       want
	}{
		{false, false, false, want{[]string{other, a, b, master}, []string{other, a, b, master}}},
		{false, false, true, want{[]string{other, a, b, master}, []string{other, master}}},
		{false, true, false, want{[]string{other, a, b}, []string{other, a, b}}},
		{false, true, true, want{[]string{other, a, b}, []string{other, master}}},
		{true, false, false, want{[]string{a, b, other, master}, []string{a, b, other, master}}},
		{true, false, true, want{[]string{a, b, other, master}, []string{other, master}}},
		{true, true, false, want{[]string{a, b, other}, []string{a, b, other}}},
		{true, true, true, want{[]string{a, b, other}, []string{other, master}}},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("beforeSort=%t/remove=%t/keepTV=%t", tt.beforeSort, tt.remove, tt.keepTV)
		t.Run(name, func(t *testing.T) {
			c := New(testConfig(func(c *config.Config) {
				c.Explode.Categories = []string{category.Genres}
				c.Explode.BeforeSort = tt.beforeSort
				c.Explode.Remove = tt.remove
				c.Explode.KeepTV = tt.keepTV
			}))
			for _, tv := range []bool{false, true} {
				f := newFixture(t, c, tv)
				names := map[*record.Record]string{f.a: a, f.b: b, f.other: other, f.master: master}
				var got []string
				for _, r := range f.run(c) {
					got = append(got, names[r])
				}
				expected := tt.want.movie
				if tv {
					expected = tt.want.tv
				}
				assert.Equal(t, expected, got, "tv=%t", tv)
			}
		})
	}
}

func TestCompressWithoutExplode(t *testing.T) {
	for _, before := range []bool{false, true} {
		c := New(testConfig(func(c *config.Config) {
			c.Explode.Categories = []string{category.Genres}
			c.Explode.BeforeSort = before
			c.Explode.Remove = true
		}))
		f := newFixture(t, c, false)
		got := c.Compress([]*record.Record{f.a, f.b, f.other}, f.sets, f.masters, category.Year, "1990-1999")
		assert.Equal(t, []*record.Record{f.other, f.master}, got, "categories not configured to explode always compress")
	}
}

func TestCompressMembershipInvariant(t *testing.T) {
	c := New(testConfig(nil))
	a, b, c3 := member("Alien", "Alien", intp(1)), member("Aliens", "Alien", intp(2)), member("Alien 3", "Alien", intp(3))
	solo := member("Heat", "Mann", nil)
	loose := member("Ronin", "", nil)
	sets := setIndex(map[string][]*record.Record{"Alien": {a, b, c3}, "Mann": {solo}})
	masters, err := c.BuildMasters(context.Background(), sets)
	require.NoError(t, err)

	lists := map[string][]*record.Record{
		"full":    {a, loose, b, c3, solo},
		"partial": {a, b, loose},
		"single":  {c3, loose},
	}
	for name, list := range lists {
		got := c.Compress(list, sets, masters, category.Genres, name)
		var count int
		for _, r := range got {
			if r.IsSetMaster() {
				count++
				assert.Equal(t, 3, r.SetSize())
			}
			assert.NotSame(t, a, r, name)
			if name != "single" {
				assert.NotSame(t, c3, r, name)
			}
		}
		if name == "single" {
			assert.Zero(t, count, "a group below the minimum stays uncompressed")
			assert.Equal(t, list, got)
			continue
		}
		assert.Equal(t, 1, count, name)
		if name == "full" {
			assert.Contains(t, got, solo, "a set below the minimum is left alone")
		}
	}
}

func TestCompressRequireAll(t *testing.T) {
	a, b, c3 := member("Alien", "Alien", intp(1)), member("Aliens", "Alien", intp(2)), member("Alien 3", "Alien", intp(3))
	sets := setIndex(map[string][]*record.Record{"Alien": {a, b, c3}})

	c := New(testConfig(func(c *config.Config) { c.Sets.RequireAll = true }))
	masters, err := c.BuildMasters(context.Background(), sets)
	require.NoError(t, err)

	partial := []*record.Record{a, b}
	assert.Equal(t, partial, c.Compress(partial, sets, masters, category.Genres, "Action"))
	full := []*record.Record{a, b, c3}
	assert.Equal(t, []*record.Record{masters["Alien"]}, c.Compress(full, sets, masters, category.Genres, "Action"))
}

func TestCompressRecordInTwoSets(t *testing.T) {
	x := record.New(record.Fields{
		Title: "Crossover",
		Sets:  []record.SetMembership{{Name: "A"}, {Name: "B"}},
	})
	y, z := member("Y", "A", nil), member("Z", "B", nil)
	sets := setIndex(map[string][]*record.Record{"A": {x, y}, "B": {x, z}})
	c := New(testConfig(nil))
	masters, err := c.BuildMasters(context.Background(), sets)
	require.NoError(t, err)

	got := c.Compress([]*record.Record{x, y, z}, sets, masters, category.Genres, "Action")
	assert.ElementsMatch(t, []*record.Record{masters["A"], masters["B"]}, got)
}

func TestExplodeKeepsPosition(t *testing.T) {
	c := New(testConfig(func(c *config.Config) {
		c.Explode.Categories = []string{category.Genres}
		c.Explode.Remove = true
	}))
	f := newFixture(t, c, false)
	p := member("Alpha", "", nil)
	f.uncompressed.AddRecord("Action", p)

	got := c.Explode([]*record.Record{p, f.master, f.other}, f.sets, f.uncompressed, category.Genres, "Action")
	assert.Equal(t, []string{"Alpha", "Alien", "Aliens", "Zulu"}, titles(got))
}

func TestExplodeOnlyMatchingMembers(t *testing.T) {
	c := New(testConfig(func(c *config.Config) {
		c.Explode.Categories = []string{category.Genres}
		c.Explode.Remove = true
	}))
	f := newFixture(t, c, false)
	drama := index.New()
	drama.AddRecord("Drama", f.b)

	got := c.Explode([]*record.Record{f.master}, f.sets, drama, category.Genres, "Drama")
	assert.Equal(t, []*record.Record{f.b}, got)
}

func TestExplodeOtherSubCategory(t *testing.T) {
	cfg := testConfig(func(c *config.Config) {
		c.Explode.Categories = []string{category.HD}
		c.Explode.Remove = true
	})
	c := New(cfg)
	f := newFixture(t, c, false)
	other := index.New()
	other.AddRecord(category.HD, f.a)

	got := c.Explode([]*record.Record{f.master}, f.sets, other, category.Other, category.HD)
	assert.Equal(t, []*record.Record{f.a}, got)
	assert.Equal(t, []*record.Record{f.master}, c.Explode([]*record.Record{f.master}, f.sets, other, category.Other, category.All))
}

func TestMatchingRecords(t *testing.T) {
	a, b := member("A", "S", nil), member("B", "S", nil)
	idx := index.New()
	idx.AddRecord("k", b)
	assert.Equal(t, []*record.Record{b}, MatchingRecords(idx, []*record.Record{a, b}, "k"))
	assert.Empty(t, MatchingRecords(idx, []*record.Record{a, b}, "missing"))
	assert.Empty(t, MatchingRecords(nil, []*record.Record{a}, "k"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Set_Star Wars_1", BaseName("Star Wars"))
	assert.Equal(t, "Set_AC$2FDC_1", BaseName("AC/DC"))
}
