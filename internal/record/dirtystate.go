// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

// SetDirty raises or clears one flag.
func (r *Record) SetDirty(flag DirtyFlag, dirty bool) {
	if dirty {
		r.dirty = r.dirty.With(flag)
	} else {
		r.dirty = r.dirty.Without(flag)
	}
}

// IsDirty reports whether flag is raised.
func (r *Record) IsDirty(flag DirtyFlag) bool {
	return r.dirty.Has(flag)
}

// IsDirtyAny reports whether any of flags is raised, or any flag at all when none are given.
func (r *Record) IsDirtyAny(flags ...DirtyFlag) bool {
	if len(flags) == 0 {
		return !r.dirty.Empty()
	}
	for _, f := range flags {
		if r.dirty.Has(f) {
			return true
		}
	}
	return false
}

// DirtyFlags returns the raised flags.
func (r *Record) DirtyFlags() DirtySet {
	return r.dirty
}

// MergeDirty raises every flag in s.
func (r *Record) MergeDirty(s DirtySet) {
	r.dirty = r.dirty.Union(s)
}

// ClearDirty lowers every flag.
func (r *Record) ClearDirty() {
	r.dirty = 0
}
