package osmfile

import (
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/osmhh/treesync/pkg/reconciler"
)

// ReviewFeatures converts review records into GeoJSON point features
// carrying the reason, conflicting keys and nearby targets.
func ReviewFeatures(reviews []reconciler.Review) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rv := range reviews {
		f := geojson.NewFeature(rv.Record.Position.ToOrb())
		f.Properties["stable_id"] = rv.Record.ID.String()
		f.Properties["reason"] = string(rv.Reason)
		if len(rv.Conflicts) > 0 {
			f.Properties["conflicts"] = rv.Conflicts
		}
		if len(rv.Nearby) > 0 {
			f.Properties["nearby"] = rv.Nearby
		}
		f.Properties["tags"] = map[string]string(rv.Record.Tags)
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the review records as a GeoJSON feature collection.
func WriteGeoJSON(w io.Writer, reviews []reconciler.Review) error {
	data, err := ReviewFeatures(reviews).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
