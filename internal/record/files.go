// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import "time"

// LastModified is the newest modification time over the record's files and its
// file date. It is computed once and cached; concurrent callers block on the
// first computation. Set masters report their aggregated file date.
func (r *Record) LastModified() time.Time {
	r.lmMu.Lock()
	defer r.lmMu.Unlock()
	if r.lmDone {
		return r.lastModified
	}
	var latest time.Time
	if r.d.setMaster {
		latest = r.d.fileDate
	} else {
		for _, f := range r.d.files {
			if f.LastModified.After(latest) {
				latest = f.LastModified
			}
		}
		if r.d.fileDate.After(latest) {
			latest = r.d.fileDate
		}
	}
	r.lastModified = latest
	r.lmDone = true
	return latest
}

// FirstFile returns the first constituent file, if any.
func (r *Record) FirstFile() (MovieFile, bool) {
	if len(r.d.files) == 0 {
		return MovieFile{}, false
	}
	return r.d.files[0], true
}

// ResetLastModified drops the cached last-modified time.
func (r *Record) ResetLastModified() {
	r.lmMu.Lock()
	defer r.lmMu.Unlock()
	r.lmDone = false
	r.lastModified = time.Time{}
}
