package reconciler

import (
	"github.com/osmhh/treesync/pkg/records"
)

// decideLinked handles a record whose target already carries its stable id.
// Tags the target has on top of the record's are kept; only the record's
// own tags are compared.
func (rn *run) decideLinked(a *records.Authoritative, t *records.Target) {
	if t.Tags.ContainsAll(a.Tags) {
		rn.result.Unchanged++
		return
	}

	conflicts := a.Tags.ConflictsWith(t.Tags, rn.nonConflicting)
	loc := rn.cfg.location()
	trustAuthoritative := t.LastVerified(loc).Before(a.LastVerified(loc))

	if trustAuthoritative || len(conflicts) == 0 {
		rn.merge(a, t, "linked")
		return
	}

	// target edits since the last publication take precedence
	rn.review(a, Review{Record: a, Reason: ReasonConflict, Conflicts: conflicts, Nearby: []int64{t.ID}})
}

// decideUnlinked handles a record without a linked target by looking at
// the unlinked targets around it.
func (rn *run) decideUnlinked(a *records.Authoritative, candidates []candidate) {
	switch len(candidates) {
	case 0:
		rn.logger.Debug().Str("stable_id", a.ID.String()).Msg("create")
		rn.result.AddCreate(a)
		return
	case 1:
	default:
		rn.review(a, Review{Record: a, Reason: ReasonAmbiguous, Nearby: candidateIDs(candidates)})
		return
	}

	c := candidates[0]
	nearby := []int64{c.target.ID}

	if _, claimed := rn.store.ClaimedBy(c.target.ID); claimed {
		rn.review(a, Review{Record: a, Reason: ReasonClaimed, Nearby: nearby})
		return
	}
	if c.distance > rn.cfg.MergeDistance {
		rn.review(a, Review{Record: a, Reason: ReasonTooFar, Nearby: nearby})
		return
	}
	loc := rn.cfg.location()
	if !a.LastVerified(loc).After(c.target.LastVerified(loc)) {
		rn.review(a, Review{Record: a, Reason: ReasonNotNewer, Nearby: nearby})
		return
	}
	if conflicts := a.Tags.ConflictsWith(c.target.Tags, nil); len(conflicts) > 0 {
		rn.review(a, Review{Record: a, Reason: ReasonConflict, Conflicts: conflicts, Nearby: nearby})
		return
	}

	rn.merge(a, c.target, "unlinked")
}

// merge overlays the record's tags onto the target and claims it. Position,
// id and version of the target stay as they are.
func (rn *run) merge(a *records.Authoritative, t *records.Target, path string) {
	rn.store.Claim(t.ID, a.ID)
	t.Tags.Overlay(a.Tags)
	rn.logger.Debug().
		Str("stable_id", a.ID.String()).
		Int64("target", t.ID).
		Str("path", path).
		Msg("update")
	rn.result.AddUpdate(t)
}
