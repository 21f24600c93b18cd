// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package index

import (
	"cmp"
	"iter"
	"slices"
)

// OrderedMap is a map whose keys are kept sorted by a comparison function.
// It is not safe for concurrent use.
type OrderedMap[K comparable, V any] struct {
	compare func(a, b K) int
	keys    []K
	values  map[K]V
}

// NewOrderedMap returns a map ordered by the natural order of K.
func NewOrderedMap[K cmp.Ordered, V any]() *OrderedMap[K, V] {
	return NewOrderedMapFunc[K, V](cmp.Compare[K])
}

// NewOrderedMapFunc returns a map ordered by compare.
func NewOrderedMapFunc[K comparable, V any](compare func(a, b K) int) *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		compare: compare,
		values:  make(map[K]V),
	}
}

// Get returns the value stored under key.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores v under key, inserting key in order when it is new.
func (m *OrderedMap[K, V]) Set(key K, v V) {
	if _, ok := m.values[key]; !ok {
		i, _ := slices.BinarySearchFunc(m.keys, key, m.compare)
		m.keys = slices.Insert(m.keys, i, key)
	}
	m.values[key] = v
}

// Delete removes key.
func (m *OrderedMap[K, V]) Delete(key K) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in order.
func (m *OrderedMap[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// All iterates over the entries in key order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}
