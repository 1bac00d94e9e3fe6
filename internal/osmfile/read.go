// Package osmfile reads target records from OSM XML and writes the results
// of a reconciliation as osmChange, OSM XML and GeoJSON files.
package osmfile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agentstation/utc"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/records"
)

// Decode reads all nodes from OSM XML as target records in document order.
// Ways and relations are skipped.
func Decode(ctx context.Context, r io.Reader) ([]*records.Target, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	var out []*records.Target
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		t, err := Target(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.WrapParse("osm", "", err)
	}
	return out, nil
}

// ReadFile reads target records from an OSM XML file.
func ReadFile(ctx context.Context, path string) ([]*records.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	ts, err := Decode(ctx, f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return ts, nil
}

// Target converts an OSM node into a target record.
func Target(n *osm.Node) (*records.Target, error) {
	p, err := geo.NewPoint(n.Lat, n.Lon)
	if err != nil {
		return nil, &errors.ParseError{
			Format:  "osm",
			Message: fmt.Sprintf("node %d: %v", n.ID, err),
			Err:     err,
		}
	}
	return &records.Target{
		ID:        int64(n.ID),
		Version:   n.Version,
		Timestamp: utc.New(n.Timestamp),
		Position:  p,
		Tags:      records.Tags(n.Tags.Map()),
	}, nil
}
