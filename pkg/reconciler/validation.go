package reconciler

import (
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
)

// validateIDs checks that every record carries a unique stable id and
// returns the set of ids.
func validateIDs(authoritative []*records.Authoritative) (map[records.StableID]bool, error) {
	ids := make(map[records.StableID]bool, len(authoritative))
	for i, a := range authoritative {
		if a == nil {
			return nil, &errors.ValidationError{
				Field:   "authoritative",
				Value:   i,
				Message: "nil record",
			}
		}
		if key, value := a.ID.Tag(); key == "" || value == "" {
			return nil, &errors.MissingIDError{Index: i, Position: a.Position.String(), ID: a.ID.String()}
		}
		if ids[a.ID] {
			return nil, &errors.DuplicateIDError{ID: a.ID.String()}
		}
		ids[a.ID] = true
	}
	return ids, nil
}

// validateSubset checks that every reconciled record is part of the current
// snapshot, so that nothing is both updated and deleted.
func validateSubset(authoritative []*records.Authoritative, current map[records.StableID]bool) error {
	for _, a := range authoritative {
		if !current[a.ID] {
			return &errors.ValidationError{
				Field:   "current",
				Value:   a.ID.String(),
				Message: "reconciled record is missing from the current snapshot",
			}
		}
	}
	return nil
}
