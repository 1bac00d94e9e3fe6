package inspect_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/cmd/treesync/cmd/inspect"
	"github.com/osmhh/treesync/internal/appcontext"
	"github.com/osmhh/treesync/pkg/records"
)

func execute(t *testing.T, format string, flags *inspect.Flags) string {
	t.Helper()
	app := &appcontext.Mock{OutputFormatFunc: func() string { return format }}

	var buf bytes.Buffer
	require.NoError(t, inspect.Execute(context.Background(), app, flags, "testdata/strassenbaumkataster.gml", &buf))
	return buf.String()
}

func TestExecuteJSON(t *testing.T) {
	out := execute(t, "json", &inspect.Flags{})
	var recs []records.Authoritative
	require.NoError(t, json.Unmarshal([]byte(out), &recs))

	require.Len(t, recs, 3)
	assert.Equal(t, records.StableID("ref:bukea=100001"), recs[0].ID)
	assert.Equal(t, "Tilia", recs[0].Tags["genus"])
	assert.Equal(t, "Greenspire", recs[0].Tags["taxon:cultivar"])
	assert.InDelta(t, 53.5508629, recs[0].Position.Latitude, 1e-6)
	assert.Empty(t, recs[2].ID)

	// the file's modification time, in UTC
	assert.False(t, recs[0].Published.IsZero())
	assert.Contains(t, out, `"published": "`+recs[0].Published.RFC3339()+`"`)
}

func TestExecuteTable(t *testing.T) {
	out := execute(t, "table", &inspect.Flags{Limit: 1})

	assert.Contains(t, out, "ref:bukea=100001")
	assert.NotContains(t, out, "ref:bukea=100002")
}

func TestFilter(t *testing.T) {
	recs := []*records.Authoritative{{ID: "ref:bukea=1"}, {ID: ""}, {ID: "ref:bukea=3"}, {ID: ""}}

	tests := []struct {
		name  string
		flags *inspect.Flags
		want  int
	}{
		{"all", &inspect.Flags{}, 4},
		{"limit", &inspect.Flags{Limit: 2}, 2},
		{"limit above length", &inspect.Flags{Limit: 10}, 4},
		{"missing id", &inspect.Flags{MissingID: true}, 2},
		{"missing id with limit", &inspect.Flags{MissingID: true, Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, inspect.Filter(recs, tt.flags), tt.want)
		})
	}
}
