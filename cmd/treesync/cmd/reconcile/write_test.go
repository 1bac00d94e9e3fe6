package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

func TestWriteOutputs(t *testing.T) {
	tree := &records.Authoritative{
		ID:       "ref:bukea=1",
		Position: geo.MustPoint(53.55, 9.99),
		Tags:     records.Tags{"natural": "tree", "ref:bukea": "1"},
	}

	tests := []struct {
		name   string
		result func() *reconciler.Result
		want   []string
	}{
		{
			name:   "nothing to write",
			result: reconciler.NewResult,
			want:   nil,
		},
		{
			name: "changes only",
			result: func() *reconciler.Result {
				r := reconciler.NewResult()
				r.AddCreate(tree)
				return r
			},
			want: []string{"change"},
		},
		{
			name: "reviews only",
			result: func() *reconciler.Result {
				r := reconciler.NewResult()
				r.AddReview(reconciler.Review{Record: tree, Reason: reconciler.ReasonConflict, Conflicts: []string{"genus"}})
				return r
			},
			want: []string{"geojson", "review"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			flags := &Flags{OutDir: dir, GeoJSON: true}
			paths := outputPaths("baeume.gml", flags)

			files, err := writeOutputs(context.Background(), paths, tt.result(), flags)
			require.NoError(t, err)

			var kinds []string
			for kind, path := range files {
				kinds = append(kinds, kind)
				assert.FileExists(t, path)
			}
			assert.ElementsMatch(t, tt.want, kinds)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, len(tt.want))
			if len(tt.want) == 0 {
				assert.NoFileExists(t, filepath.Join(dir, "baeume.gml-aenderungen.osc"))
			}
		})
	}
}
