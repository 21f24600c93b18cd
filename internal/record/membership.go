// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import "slices"

// AddIndex notes that the record is listed under key in dimension. Safe for
// concurrent use by indexers running in parallel.
func (r *Record) AddIndex(dimension, key string) {
	r.idxMu.Lock()
	defer r.idxMu.Unlock()
	if r.indexes == nil {
		r.indexes = make(map[string]map[string]struct{})
	}
	keys, ok := r.indexes[dimension]
	if !ok {
		keys = make(map[string]struct{})
		r.indexes[dimension] = keys
	}
	keys[key] = struct{}{}
}

// RemoveIndex drops key of dimension from the record's memberships.
func (r *Record) RemoveIndex(dimension, key string) {
	r.idxMu.Lock()
	defer r.idxMu.Unlock()
	keys, ok := r.indexes[dimension]
	if !ok {
		return
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(r.indexes, dimension)
	}
}

// IndexKeys returns the sorted keys of dimension the record is listed under.
func (r *Record) IndexKeys(dimension string) []string {
	r.idxMu.Lock()
	defer r.idxMu.Unlock()
	keys := make([]string, 0, len(r.indexes[dimension]))
	for k := range r.indexes[dimension] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Indexes returns a snapshot of every dimension and key the record is listed under.
func (r *Record) Indexes() map[string][]string {
	r.idxMu.Lock()
	defer r.idxMu.Unlock()
	out := make(map[string][]string, len(r.indexes))
	for dim, keys := range r.indexes {
		list := make([]string, 0, len(keys))
		for k := range keys {
			list = append(list, k)
		}
		slices.Sort(list)
		out[dim] = list
	}
	return out
}

// ResetIndexes forgets all memberships. A build calls it before indexing.
func (r *Record) ResetIndexes() {
	r.idxMu.Lock()
	defer r.idxMu.Unlock()
	r.indexes = nil
}
