package reconciler

import (
	"github.com/osmhh/treesync/pkg/records"
)

// Incremental returns the records of current that are new or whose tags
// changed since previous. A changed record is only known to have changed
// some time after the previous publication, so its copy carries the
// previous publication time. Unchanged records are dropped; pass current to
// WithCurrentSnapshot so they are not treated as deleted.
func Incremental(current, previous []*records.Authoritative) []*records.Authoritative {
	before := make(map[records.StableID]*records.Authoritative, len(previous))
	for _, p := range previous {
		before[p.ID] = p
	}

	var out []*records.Authoritative
	for _, a := range current {
		old, existed := before[a.ID]
		switch {
		case !existed:
			out = append(out, a)
		case !old.Tags.Equal(a.Tags):
			changed := *a
			changed.Published = old.Published
			out = append(out, &changed)
		}
	}
	return out
}
