// Package records defines the entities reconciled by treesync: authoritative
// records from the cadastre snapshot and target records from OpenStreetMap.
package records

import (
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/verify"
)

// StableID is a source-issued identifier in the form "<id tag>=<value>",
// e.g. "ref:bukea=12345". The tag is part of the id so that numbering
// schemes of different operators never collide.
type StableID string

// NewStableID joins an id tag and its value.
func NewStableID(key, value string) StableID {
	return StableID(key + "=" + value)
}

// StableIDOf derives the stable id from the first of idTags present with a
// non-empty value.
func StableIDOf(tags Tags, idTags []string) (StableID, bool) {
	for _, key := range idTags {
		if v := strings.TrimSpace(tags[key]); v != "" {
			return NewStableID(key, v), true
		}
	}
	return "", false
}

// Tag splits the id into its tag key and value.
func (id StableID) Tag() (key, value string) {
	key, value, _ = strings.Cut(string(id), "=")
	return key, value
}

// String implements fmt.Stringer.
func (id StableID) String() string {
	return string(id)
}

// Authoritative is a record of the cadastre snapshot. It is immutable for
// the duration of a run.
type Authoritative struct {
	ID        StableID  `json:"id" yaml:"id"`
	Position  geo.Point `json:"position" yaml:"position"`
	Tags      Tags      `json:"tags" yaml:"tags"`
	Published utc.Time  `json:"published" yaml:"published"`
}

// LastVerified returns the check date of the record, falling back to its
// publication time.
func (a *Authoritative) LastVerified(loc *time.Location) time.Time {
	return verify.LastVerified(a.Tags, a.Published.Time, loc)
}

// Target is a record of the target store. Only Tags may be changed by
// reconciliation; ID, Version and Position belong to the store.
type Target struct {
	ID        int64     `json:"id" yaml:"id"`
	Version   int       `json:"version" yaml:"version"`
	Timestamp utc.Time  `json:"timestamp" yaml:"timestamp"`
	Position  geo.Point `json:"position" yaml:"position"`
	Tags      Tags      `json:"tags" yaml:"tags"`
}

// LastVerified returns the check date of the record, falling back to its
// last edit time.
func (t *Target) LastVerified(loc *time.Location) time.Time {
	return verify.LastVerified(t.Tags, t.Timestamp.Time, loc)
}
