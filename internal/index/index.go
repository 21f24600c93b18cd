// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package index provides the category index: category keys mapped to record
// lists, with an optional cap on the number of keys.
package index

import (
	"iter"
	"slices"
	"strings"

	"github.com/ManuGH/jukebox/internal/record"
)

// Reader is the read side of an Index.
type Reader interface {
	Get(key string) []*record.Record
	Keys() []string
	Len() int
	All() iter.Seq2[string, []*record.Record]
}

var _ Reader = (*Index)(nil)

// Index maps category keys to record lists. A key's list never holds the same
// record twice. Once MaxKeys distinct keys exist, records for new keys are
// dropped while existing keys keep growing.
type Index struct {
	entries *OrderedMap[string, []*record.Record]
	members map[string]map[*record.Record]struct{}
	compare func(a, b string) int
	maxKeys int
}

// Option configures an Index.
type Option func(*Index)

// WithMaxKeys caps the number of distinct keys. 0 or less is unlimited.
func WithMaxKeys(n int) Option {
	return func(i *Index) {
		i.maxKeys = n
	}
}

// WithKeyOrder orders keys by compare instead of lexically.
func WithKeyOrder(compare func(a, b string) int) Option {
	return func(i *Index) {
		i.compare = compare
	}
}

// New returns an empty Index.
func New(opts ...Option) *Index {
	i := &Index{
		compare: strings.Compare,
		members: make(map[string]map[*record.Record]struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.entries = NewOrderedMapFunc[string, []*record.Record](i.compare)
	return i
}

// AddRecord lists r under key. Empty keys, nil records, duplicates and new keys
// beyond the cap are ignored. It reports whether r was added.
func (i *Index) AddRecord(key string, r *record.Record) bool {
	if key == "" || r == nil {
		return false
	}
	list, ok := i.entries.Get(key)
	if !ok && i.full() {
		return false
	}
	seen := i.members[key]
	if seen == nil {
		seen = make(map[*record.Record]struct{})
		i.members[key] = seen
	}
	if _, dup := seen[r]; dup {
		return false
	}
	seen[r] = struct{}{}
	i.entries.Set(key, append(list, r))
	return true
}

func (i *Index) full() bool {
	return i.maxKeys > 0 && i.entries.Len() >= i.maxKeys
}

// Get returns a copy of the list under key.
func (i *Index) Get(key string) []*record.Record {
	list, _ := i.entries.Get(key)
	return slices.Clone(list)
}

// Has reports whether key is present.
func (i *Index) Has(key string) bool {
	return i.entries.Has(key)
}

// Keys returns the keys in index order.
func (i *Index) Keys() []string {
	return i.entries.Keys()
}

// Len returns the number of keys.
func (i *Index) Len() int {
	return i.entries.Len()
}

// MaxKeys returns the key cap, 0 when unlimited.
func (i *Index) MaxKeys() int {
	if i.maxKeys < 0 {
		return 0
	}
	return i.maxKeys
}

// All iterates over keys and their lists in index order. The lists must not be modified.
func (i *Index) All() iter.Seq2[string, []*record.Record] {
	return i.entries.All()
}

// Put replaces the list under key with a de-duplicated copy of list. A new key
// is subject to the cap; an empty list removes the key.
func (i *Index) Put(key string, list []*record.Record) bool {
	if key == "" {
		return false
	}
	if len(list) == 0 {
		i.Remove(key)
		return true
	}
	if !i.entries.Has(key) && i.full() {
		return false
	}
	out := make([]*record.Record, 0, len(list))
	seen := make(map[*record.Record]struct{}, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	i.members[key] = seen
	i.entries.Set(key, out)
	return true
}

// Remove deletes key.
func (i *Index) Remove(key string) {
	i.entries.Delete(key)
	delete(i.members, key)
}

// Contains reports whether r is listed under key.
func (i *Index) Contains(key string, r *record.Record) bool {
	_, ok := i.members[key][r]
	return ok
}

// Clone returns an Index with the same options and copies of every list.
func (i *Index) Clone() *Index {
	c := New(WithMaxKeys(i.maxKeys), WithKeyOrder(i.compare))
	for k, list := range i.entries.All() {
		c.Put(k, list)
	}
	return c
}

// Size returns the total number of listed records across keys.
func (i *Index) Size() int {
	n := 0
	for _, list := range i.entries.All() {
		n += len(list)
	}
	return n
}
