package records

import (
	"strconv"

	"github.com/osmhh/treesync/pkg/errors"
)

// Store is an arena of target records keyed by id. It keeps input order and
// tracks which authoritative record claimed a target during a run, so that
// at most one record merges into any target.
type Store struct {
	order   []*Target
	byID    map[int64]*Target
	claimed map[int64]StableID
}

// NewStore indexes targets. The store holds the given pointers; tag updates
// made through it are visible to the caller, and targets with nil Tags are
// given an empty map so updates can be applied in place. Duplicate ids are
// rejected.
func NewStore(targets []*Target) (*Store, error) {
	s := &Store{
		order:   make([]*Target, 0, len(targets)),
		byID:    make(map[int64]*Target, len(targets)),
		claimed: make(map[int64]StableID),
	}
	for i, t := range targets {
		if t == nil {
			return nil, &errors.ValidationError{
				Field:   "targets",
				Value:   i,
				Message: "nil target record",
			}
		}
		if _, ok := s.byID[t.ID]; ok {
			return nil, &errors.AlreadyExistsError{
				Resource: "target",
				ID:       strconv.FormatInt(t.ID, 10),
			}
		}
		if t.Tags == nil {
			t.Tags = Tags{}
		}
		s.byID[t.ID] = t
		s.order = append(s.order, t)
	}
	return s, nil
}

// Len returns the number of targets.
func (s *Store) Len() int {
	return len(s.order)
}

// Get returns the target with the given id.
func (s *Store) Get(id int64) (*Target, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// All returns the targets in input order.
func (s *Store) All() []*Target {
	return s.order
}

// Claim marks target id as merged by owner. It returns false if the target
// was already claimed by another record.
func (s *Store) Claim(id int64, owner StableID) bool {
	if prev, ok := s.claimed[id]; ok {
		return prev == owner
	}
	s.claimed[id] = owner
	return true
}

// ClaimedBy returns the record that claimed target id, if any.
func (s *Store) ClaimedBy(id int64) (StableID, bool) {
	owner, ok := s.claimed[id]
	return owner, ok
}
