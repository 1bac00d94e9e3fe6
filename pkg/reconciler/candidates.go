package reconciler

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/records"
)

// chunkSize is the number of records one worker searches at a time.
const chunkSize = 256

// candidate is an unlinked target near an authoritative record.
type candidate struct {
	target   *records.Target
	distance float64
}

// searchCandidates finds, for every pending record, the unlinked targets
// closer than the safe distance. The index is read-only at this point, so
// the search may run on several workers; results do not depend on their
// number.
func (rn *run) searchCandidates(ctx context.Context, pending []*records.Authoritative) (map[records.StableID][]candidate, error) {
	found := make([][]candidate, len(pending))

	if rn.workers <= 1 || len(pending) <= chunkSize {
		for i, a := range pending {
			found[i] = rn.nearby(a)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(rn.workers)
		for start := 0; start < len(pending); start += chunkSize {
			end := min(start+chunkSize, len(pending))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := start; i < end; i++ {
					found[i] = rn.nearby(pending[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make(map[records.StableID][]candidate, len(pending))
	for i, a := range pending {
		out[a.ID] = found[i]
	}
	return out, nil
}

// nearby returns the unlinked targets strictly within the safe distance of
// a, closest first, ties broken by target id.
func (rn *run) nearby(a *records.Authoritative) []candidate {
	box := geo.EnclosingBoundingBox(a.Position, rn.cfg.SafeDistance)

	var out []candidate
	for _, e := range rn.index.Query(box) {
		d := geo.Distance(a.Position, e.Point)
		if d < rn.cfg.SafeDistance {
			out = append(out, candidate{target: e.Value, distance: d})
		}
	}
	slices.SortFunc(out, func(x, y candidate) int {
		return cmp.Or(cmp.Compare(x.distance, y.distance), cmp.Compare(x.target.ID, y.target.ID))
	})
	return out
}

func candidateIDs(cs []candidate) []int64 {
	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.target.ID
	}
	return ids
}
