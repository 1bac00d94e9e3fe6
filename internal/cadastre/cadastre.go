// Package cadastre reads the Hamburg street tree cadastre ("Straßenbaumkataster")
// as published by the city's WFS in GML and turns its features into
// authoritative records with OSM tags and WGS84 positions.
package cadastre

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/im7mortal/UTM"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/records"
	"github.com/osmhh/treesync/pkg/tagrules"
)

// UTM zone of EPSG:25832 (ETRS89 / UTM zone 32N). ETRS89 and WGS84 differ
// by well under a meter, which is below the matching thresholds.
const (
	utmZone = 32
	srsCode = "25832"
)

// Feature is a raw cadastre feature before tag mapping.
type Feature struct {
	Index    int
	Fields   map[string]string
	Easting  float64
	Northing float64
	HasPos   bool
	Line     int
}

type options struct {
	published time.Time
	rules     tagrules.Pipeline
	idTags    []string
}

// Option configures loading.
type Option func(*options)

// WithPublished sets the publication time of the snapshot, used as the
// verification date of records without check date.
func WithPublished(t time.Time) Option {
	return func(o *options) { o.published = t }
}

// WithRules sets the tag rules applied to every record.
func WithRules(p tagrules.Pipeline) Option {
	return func(o *options) { o.rules = p }
}

// WithIDTags sets the tags the stable id is derived from.
func WithIDTags(tags []string) Option {
	return func(o *options) { o.idTags = tags }
}

// Load reads a cadastre file. Unless WithPublished is given, the file's
// modification time is the publication time.
func Load(ctx context.Context, path string, opts ...Option) ([]*records.Authoritative, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	opts = append([]Option{WithPublished(info.ModTime())}, opts...)

	recs, err := Decode(ctx, f, opts...)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	logging.FromContext(ctx).Debug().Str("file", path).Int("records", len(recs)).Msg("Loaded cadastre")
	return recs, nil
}

// Decode reads cadastre GML from r.
func Decode(ctx context.Context, r io.Reader, opts ...Option) ([]*records.Authoritative, error) {
	o := &options{idTags: []string{constants.TagRefBUKEA, constants.TagRefHPA}}
	for _, opt := range opts {
		opt(o)
	}

	features, err := DecodeFeatures(ctx, r)
	if err != nil {
		return nil, err
	}

	out := make([]*records.Authoritative, 0, len(features))
	for _, f := range features {
		a, err := f.record(o)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (f Feature) record(o *options) (*records.Authoritative, error) {
	if !f.HasPos {
		return nil, &errors.ParseError{Format: "gml", Line: f.Line, Message: "feature " + strconv.Itoa(f.Index) + " has no position"}
	}
	p, err := Position(f.Easting, f.Northing)
	if err != nil {
		return nil, &errors.ParseError{Format: "gml", Line: f.Line, Message: err.Error(), Err: err}
	}
	tags, err := Tags(f.Fields)
	if err != nil {
		return nil, &errors.ParseError{Format: "gml", Line: f.Line, Message: err.Error(), Err: err}
	}
	if o.rules != nil {
		tags = o.rules.Apply(tags)
	}
	// a record without id is passed on; the reconciler refuses to run on it
	id, _ := records.StableIDOf(tags, o.idTags)
	return &records.Authoritative{
		ID:        id,
		Position:  p,
		Tags:      tags,
		Published: utc.New(o.published),
	}, nil
}

// Position converts EPSG:25832 coordinates to a WGS84 point.
func Position(easting, northing float64) (geo.Point, error) {
	lat, lon, err := UTM.ToLatLon(easting, northing, utmZone, "", true)
	if err != nil {
		return geo.Point{}, errors.WrapValidation("position", err)
	}
	return geo.NewPoint(lat, lon)
}

// DecodeFeatures streams the featureMember elements of a GML document.
// Attribute elements are keyed by their local name.
func DecodeFeatures(ctx context.Context, r io.Reader) ([]Feature, error) {
	dec := xml.NewDecoder(r)

	var (
		features []Feature
		current  *Feature
		text     strings.Builder
	)
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := dec.InputPos()
			return nil, &errors.ParseError{Format: "gml", Line: line, Column: col, Message: err.Error(), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			text.Reset()
			switch {
			case isFeatureMember(name):
				line, _ := dec.InputPos()
				current = &Feature{Index: len(features), Fields: map[string]string{}, Line: line}
			case name == "Point" && current != nil:
				if srs := attr(t, "srsName"); srs != "" && !strings.HasSuffix(srs, srsCode) {
					line, col := dec.InputPos()
					return nil, &errors.ParseError{Format: "gml", Line: line, Column: col, Message: "unsupported srsName " + srs + ", want EPSG:" + srsCode}
				}
			}
		case xml.CharData:
			if current != nil {
				text.Write(t)
			}
		case xml.EndElement:
			name := t.Name.Local
			if current == nil {
				continue
			}
			value := strings.TrimSpace(text.String())
			text.Reset()
			switch {
			case isFeatureMember(name):
				features = append(features, *current)
				current = nil
			case name == "pos" || name == "coordinates":
				e, n, err := parsePos(value)
				if err != nil {
					line, col := dec.InputPos()
					return nil, &errors.ParseError{Format: "gml", Line: line, Column: col, Message: err.Error(), Err: err}
				}
				current.Easting, current.Northing, current.HasPos = e, n, true
			case value != "":
				current.Fields[name] = value
			}
		}
	}
	return features, nil
}

func isFeatureMember(name string) bool {
	return name == "featureMember" || name == "member"
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// parsePos reads "x y" (gml:pos) or "x,y" (gml:coordinates).
func parsePos(s string) (float64, float64, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(parts) < 2 {
		return 0, 0, &errors.ValidationError{Field: "pos", Value: s, Message: "expected two coordinates"}
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, errors.WrapValidation("pos", err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, errors.WrapValidation("pos", err)
	}
	return x, y, nil
}
