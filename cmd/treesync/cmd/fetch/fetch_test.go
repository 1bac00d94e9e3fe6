package fetch_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/cmd/treesync/cmd/fetch"
	"github.com/osmhh/treesync/internal/overpass"
	"github.com/osmhh/treesync/pkg/errors"
)

const response = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="Overpass API">
  <node id="1" lat="53.55" lon="9.98" version="1" timestamp="2020-01-01T00:00:00Z">
    <tag k="natural" v="tree"/>
  </node>
  <node id="2" lat="53.56" lon="9.99" version="2" timestamp="2021-01-01T00:00:00Z">
    <tag k="natural" v="tree"/>
  </node>
</osm>
`

func TestExecute(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query = r.PostForm.Get("data")
		_, _ = w.Write([]byte(response))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "trees.osm")
	flags := &fetch.Flags{Out: out, Relation: 62782}

	var buf bytes.Buffer
	require.NoError(t, fetch.Execute(context.Background(), overpass.New(srv.URL), flags, &buf))

	assert.Equal(t, overpass.TreesQuery(62782), query)
	assert.Equal(t, "2 trees written to "+out+"\n", buf.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, response, string(data))

	err = fetch.Execute(context.Background(), overpass.New(srv.URL), flags, &buf)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestExecuteKeepsFileOnBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<osm version="0.6"><remark>runtime error: Query run out of memory</remark></osm>`))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "trees.osm")
	require.NoError(t, os.WriteFile(out, []byte(response), 0o644))

	flags := &fetch.Flags{Out: out, Relation: 62782, Force: true}
	err := fetch.Execute(context.Background(), overpass.New(srv.URL), flags, &bytes.Buffer{})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, response, string(data))
}
