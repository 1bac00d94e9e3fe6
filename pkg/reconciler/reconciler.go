// Package reconciler matches authoritative cadastre records against target
// store records and decides, per record, whether to create, update, review
// or delete.
//
// Linked targets carry the record's stable id and are compared tag by tag.
// Unlinked targets are matched by proximity through a spatial raster. Target
// positions, ids and versions are never modified; an update only overlays
// tags.
package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/raster"
	"github.com/osmhh/treesync/pkg/records"
)

// Reconciler runs reconciliations with a fixed configuration.
// It holds no per-run state and may be reused.
type Reconciler struct {
	cfg            Config
	workers        int
	current        []*records.Authoritative
	nonConflicting map[string]bool
}

// New creates a Reconciler. The configuration is validated up front.
func New(cfg Config, opts ...Option) (*Reconciler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	nonConflicting := make(map[string]bool, len(cfg.NonConflictingFields))
	for _, k := range cfg.NonConflictingFields {
		nonConflicting[k] = true
	}

	return &Reconciler{
		cfg:            cfg,
		workers:        options.workers,
		current:        options.current,
		nonConflicting: nonConflicting,
	}, nil
}

// Config returns the configuration of the reconciler.
func (r *Reconciler) Config() Config {
	return r.cfg
}

// run holds the state of a single reconciliation.
type run struct {
	*Reconciler
	logger  *zerolog.Logger
	result  *Result
	store   *records.Store
	links   map[records.StableID]*records.Target
	linkOf  map[int64]records.StableID
	dupes   map[records.StableID][]int64
	index   *raster.Index[*records.Target]
	current map[records.StableID]bool
}

// Reconcile decides what to do with every authoritative record. Tags of
// targets chosen for update are modified in place; everything else about
// the inputs is left untouched. It fails without making any decision if a
// record lacks a stable id or an id is used twice.
func (r *Reconciler) Reconcile(ctx context.Context, authoritative []*records.Authoritative, targets []*records.Target) (*Result, error) {
	// Step 1: Validate inputs
	rn, err := r.initialize(ctx, authoritative, targets)
	if err != nil {
		return nil, err
	}

	// Step 2: Split targets into linked and unlinked
	unlinked := rn.partition()

	// Step 3: Index unlinked targets
	if err := rn.buildIndex(unlinked); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: Search spatial candidates for records without a link
	pending := rn.pending(authoritative)
	candidates, err := rn.searchCandidates(ctx, pending)
	if err != nil {
		return nil, err
	}

	// Step 5: Decide in input order
	rn.decide(authoritative, candidates)

	// Step 6: Delete links to records gone from the snapshot
	rn.deletions()

	rn.result.Finalize()
	rn.logger.Info().
		Int("created", len(rn.result.Create)).
		Int("updated", len(rn.result.Update)).
		Int("reviewed", len(rn.result.Review)).
		Int("deleted", len(rn.result.Delete)).
		Int("unchanged", rn.result.Unchanged).
		Dur("duration", rn.result.Metadata.Duration).
		Msg("Reconciliation complete")

	return rn.result, nil
}

// initialize validates ids and sets up the run.
func (r *Reconciler) initialize(ctx context.Context, authoritative []*records.Authoritative, targets []*records.Target) (*run, error) {
	logger := logging.FromContext(ctx)

	if _, err := validateIDs(authoritative); err != nil {
		return nil, err
	}

	current := authoritative
	if r.current != nil {
		current = r.current
	}
	currentIDs, err := validateIDs(current)
	if err != nil {
		return nil, err
	}
	if err := validateSubset(authoritative, currentIDs); err != nil {
		return nil, err
	}

	store, err := records.NewStore(targets)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Metadata.Stats.Authoritative = len(authoritative)
	result.Metadata.Stats.Targets = store.Len()

	logger.Debug().
		Int("authoritative", len(authoritative)).
		Int("current", len(current)).
		Int("targets", store.Len()).
		Float64("safe_distance", r.cfg.SafeDistance).
		Float64("merge_distance", r.cfg.MergeDistance).
		Msg("Starting reconciliation")

	return &run{
		Reconciler: r,
		logger:     logger,
		result:     result,
		store:      store,
		links:      make(map[records.StableID]*records.Target),
		linkOf:     make(map[int64]records.StableID),
		dupes:      make(map[records.StableID][]int64),
		current:    currentIDs,
	}, nil
}

// partition links targets by stable id and returns the unlinked ones in
// input order. When several targets carry the same id the first one is the
// link and the others are reported.
func (rn *run) partition() []*records.Target {
	var unlinked []*records.Target
	for _, t := range rn.store.All() {
		id, ok := records.StableIDOf(t.Tags, rn.cfg.IDTags)
		if !ok {
			unlinked = append(unlinked, t)
			continue
		}
		if first, exists := rn.links[id]; exists {
			if len(rn.dupes[id]) == 0 {
				rn.dupes[id] = []int64{first.ID}
			}
			rn.dupes[id] = append(rn.dupes[id], t.ID)
			rn.result.Warn("stable id %s is carried by targets %v", id, rn.dupes[id])
			continue
		}
		rn.links[id] = t
		rn.linkOf[t.ID] = id
	}

	rn.result.Metadata.Stats.Linked = len(rn.links)
	rn.result.Metadata.Stats.Unlinked = len(unlinked)
	return unlinked
}

func (rn *run) buildIndex(unlinked []*records.Target) error {
	idx, err := raster.New[*records.Target](rn.cfg.Region, rn.cfg.CellSize)
	if err != nil {
		return err
	}
	for _, t := range unlinked {
		idx.Insert(t.Position, t)
	}
	rn.index = idx
	return nil
}

// pending returns the records that need a spatial search.
func (rn *run) pending(authoritative []*records.Authoritative) []*records.Authoritative {
	var out []*records.Authoritative
	for _, a := range authoritative {
		if _, linked := rn.links[a.ID]; !linked {
			out = append(out, a)
		}
	}
	return out
}

func (rn *run) decide(authoritative []*records.Authoritative, candidates map[records.StableID][]candidate) {
	for _, a := range authoritative {
		if ids, dup := rn.dupes[a.ID]; dup {
			rn.review(a, Review{Record: a, Reason: ReasonDuplicateLink, Nearby: ids})
			continue
		}
		if t, linked := rn.links[a.ID]; linked {
			rn.decideLinked(a, t)
			continue
		}
		rn.decideUnlinked(a, candidates[a.ID])
	}
}

// deletions marks linked targets whose record left the current snapshot.
// Ids carried by several targets are never deleted.
func (rn *run) deletions() {
	for _, t := range rn.store.All() {
		id, linked := rn.linkOf[t.ID]
		if !linked || rn.current[id] {
			continue
		}
		if _, dup := rn.dupes[id]; dup {
			rn.result.Warn("not deleting targets %v: stable id %s is ambiguous", rn.dupes[id], id)
			continue
		}
		rn.logger.Debug().Int64("target", t.ID).Str("stable_id", id.String()).Msg("delete")
		rn.result.AddDelete(t)
	}
}

func (rn *run) review(a *records.Authoritative, rv Review) {
	rn.logger.Debug().
		Str("stable_id", a.ID.String()).
		Str("reason", string(rv.Reason)).
		Strs("conflicts", rv.Conflicts).
		Msg("review")
	rn.result.AddReview(rv)
}
