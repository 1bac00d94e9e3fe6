package osmfile

import (
	"encoding/xml"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/paulmach/osm"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

const osmVersion = "0.6"

// Paths are the output files of a run.
type Paths struct {
	Change  string
	Review  string
	GeoJSON string
}

// OutputPaths derives the output file names from the cadastre file name,
// e.g. "baeume.gml" -> "baeume.gml-aenderungen.osc". An empty dir keeps the
// input's directory.
func OutputPaths(input, dir string) Paths {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Join(dir, filepath.Base(input))
	return Paths{
		Change:  base + constants.ChangeFileSuffix,
		Review:  base + constants.ReviewFileSuffix,
		GeoJSON: base + constants.GeoJSONFileSuffix,
	}
}

// Create opens path for writing. Existing files are only replaced if
// force is set.
func Create(path string, force bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, constants.FilePermissions)
	if err != nil {
		if os.IsExist(err) {
			return nil, &errors.AlreadyExistsError{Resource: "output file", ID: path}
		}
		return nil, errors.WrapIO("create", path, err)
	}
	return f, nil
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, force bool, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(path), err)
	}
	f, err := Create(path, force)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

// Change builds the osmChange document of a result. New nodes are numbered
// -1, -2, ... in creation order.
func Change(result *reconciler.Result) *osm.Change {
	change := &osm.Change{
		Version:   osmVersion,
		Generator: constants.Generator,
		Create:    &osm.OSM{},
		Modify:    &osm.OSM{},
		Delete:    &osm.OSM{},
	}
	for i, a := range result.Create {
		change.Create.Nodes = append(change.Create.Nodes, newNode(i, a))
	}
	for _, t := range result.Update {
		change.Modify.Nodes = append(change.Modify.Nodes, existingNode(t))
	}
	for _, t := range result.Delete {
		change.Delete.Nodes = append(change.Delete.Nodes, existingNode(t))
	}
	return change
}

// Review builds an OSM document of the records sent to review, so they can
// be opened next to the existing data in an editor.
func Review(reviews []reconciler.Review) *osm.OSM {
	doc := &osm.OSM{Version: osmVersion, Generator: constants.Generator}
	for i, rv := range reviews {
		doc.Nodes = append(doc.Nodes, newNode(i, rv.Record))
	}
	return doc
}

// WriteChange writes the osmChange document of result to w.
func WriteChange(w io.Writer, result *reconciler.Result) error {
	return encode(w, Change(result))
}

// WriteReview writes the review records as OSM XML to w.
func WriteReview(w io.Writer, reviews []reconciler.Review) error {
	return encode(w, Review(reviews))
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func newNode(i int, a *records.Authoritative) *osm.Node {
	return node(-int64(i+1), 1, a.Published, a.Position, a.Tags)
}

func existingNode(t *records.Target) *osm.Node {
	return node(t.ID, t.Version, t.Timestamp, t.Position, t.Tags)
}

func node(id int64, version int, ts utc.Time, p geo.Point, tags records.Tags) *osm.Node {
	n := &osm.Node{
		ID:        osm.NodeID(id),
		Lat:       round7(p.Latitude),
		Lon:       round7(p.Longitude),
		Visible:   true,
		Version:   version,
		Timestamp: ts.UTC(),
		Tags:      make(osm.Tags, 0, len(tags)),
	}
	for _, k := range tags.Keys() {
		n.Tags = append(n.Tags, osm.Tag{Key: k, Value: tags[k]})
	}
	return n
}

// round7 rounds to the precision OSM stores coordinates in.
func round7(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}

// Available returns an AlreadyExistsError for the first of paths that
// already exists, so a run can fail before writing any of its outputs.
func Available(paths ...string) error {
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			return &errors.AlreadyExistsError{Resource: "output file", ID: p}
		}
		if !os.IsNotExist(err) {
			return errors.WrapIO("stat", p, err)
		}
	}
	return nil
}
