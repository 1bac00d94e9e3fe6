package reconcile

import (
	"context"
	"io"

	"github.com/osmhh/treesync/internal/osmfile"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/reconciler"
)

func outputPaths(input string, flags *Flags) osmfile.Paths {
	return osmfile.OutputPaths(input, flags.OutDir)
}

// checkOutputs fails before any work is done if an output would be overwritten.
func checkOutputs(paths osmfile.Paths, geojson bool) error {
	files := []string{paths.Change, paths.Review}
	if geojson {
		files = append(files, paths.GeoJSON)
	}
	return osmfile.Available(files...)
}

// writeOutputs writes the change file if there is anything to apply and the
// review files if anything was left for review. It returns the written paths
// by kind.
func writeOutputs(ctx context.Context, paths osmfile.Paths, result *reconciler.Result, flags *Flags) (map[string]string, error) {
	logger := logging.FromContext(ctx)
	files := map[string]string{}

	if result.HasChanges() {
		err := osmfile.WriteFile(paths.Change, flags.Force, func(w io.Writer) error {
			return osmfile.WriteChange(w, result)
		})
		if err != nil {
			return nil, err
		}
		files["change"] = paths.Change
	}

	if len(result.Review) > 0 {
		err := osmfile.WriteFile(paths.Review, flags.Force, func(w io.Writer) error {
			return osmfile.WriteReview(w, result.Review)
		})
		if err != nil {
			return nil, err
		}
		files["review"] = paths.Review

		if flags.GeoJSON {
			err = osmfile.WriteFile(paths.GeoJSON, flags.Force, func(w io.Writer) error {
				return osmfile.WriteGeoJSON(w, result.Review)
			})
			if err != nil {
				return nil, err
			}
			files["geojson"] = paths.GeoJSON
		}
	}

	if len(files) == 0 {
		logger.Info().Msg("Nothing to write")
		return files, nil
	}
	logger.Info().
		Str("change", files["change"]).
		Str("review", files["review"]).
		Msg("Output written")
	return files, nil
}
