package reconciler_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

var (
	now      = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	lastWeek = now.AddDate(0, 0, -7)
	lastYear = now.AddDate(-1, 0, 0)
)

func testConfig() reconciler.Config {
	cfg := reconciler.DefaultConfig()
	cfg.SafeDistance = 10
	cfg.MergeDistance = 2
	cfg.Location = time.UTC
	return cfg
}

func record(id string, p geo.Point, published time.Time, tags records.Tags) *records.Authoritative {
	t := tags.Clone()
	t["ref:bukea"] = id
	return &records.Authoritative{
		ID:        records.NewStableID("ref:bukea", id),
		Position:  p,
		Tags:      t,
		Published: utc.New(published),
	}
}

func target(id int64, p geo.Point, edited time.Time, tags records.Tags) *records.Target {
	return &records.Target{
		ID:        id,
		Version:   3,
		Timestamp: utc.New(edited),
		Position:  p,
		Tags:      tags.Clone(),
	}
}

func reconcile(t *testing.T, cfg reconciler.Config, as []*records.Authoritative, ts []*records.Target, opts ...reconciler.Option) *reconciler.Result {
	t.Helper()
	r, err := reconciler.New(cfg, opts...)
	require.NoError(t, err)
	result, err := r.Reconcile(context.Background(), as, ts)
	require.NoError(t, err)
	return result
}

type snapshot struct {
	ID       int64
	Version  int
	Position geo.Point
}

func snapshotTargets(ts []*records.Target) []snapshot {
	out := make([]snapshot, len(ts))
	for i, t := range ts {
		out[i] = snapshot{ID: t.ID, Version: t.Version, Position: t.Position}
	}
	return out
}

// randomInputs builds a dense neighbourhood of records and targets so that
// every decision path is taken.
func randomInputs(seed int64, n int) ([]*records.Authoritative, []*records.Target) {
	r := rand.New(rand.NewSource(seed))
	center := geo.MustPoint(53.55, 9.99)
	genera := []string{"Tilia", "Acer", "Quercus"}

	var as []*records.Authoritative
	var ts []*records.Target
	for i := 0; i < n; i++ {
		p := geo.Translate(center, r.Float64()*800, r.Float64()*360)
		tags := records.Tags{"natural": "tree", "genus": genera[r.Intn(len(genera))]}
		published := now
		if r.Intn(4) == 0 {
			published = lastYear
		}
		as = append(as, record(fmt.Sprint(i), p, published, tags))

		switch r.Intn(5) {
		case 0: // linked
			tt := records.Tags{"natural": "tree", "ref:bukea": fmt.Sprint(i), "genus": genera[r.Intn(len(genera))]}
			ts = append(ts, target(int64(1000+i), geo.Translate(p, r.Float64()*5, r.Float64()*360), lastWeek, tt))
		case 1, 2: // unlinked neighbour
			tt := records.Tags{"natural": "tree"}
			if r.Intn(2) == 0 {
				tt["genus"] = genera[r.Intn(len(genera))]
			}
			ts = append(ts, target(int64(1000+i), geo.Translate(p, r.Float64()*8, r.Float64()*360), lastYear, tt))
		}
	}
	// links to records that no longer exist
	for i := 0; i < n/10; i++ {
		tt := records.Tags{"natural": "tree", "ref:bukea": fmt.Sprint(n + i)}
		ts = append(ts, target(int64(900000+i), geo.Translate(center, r.Float64()*800, r.Float64()*360), lastYear, tt))
	}
	return as, ts
}
