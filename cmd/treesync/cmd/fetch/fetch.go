// Package fetch provides the fetch command, which downloads the trees
// currently mapped in OpenStreetMap into a local OSM XML file.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/osmhh/treesync/internal/appcontext"
	"github.com/osmhh/treesync/internal/osmfile"
	"github.com/osmhh/treesync/internal/overpass"
	"github.com/osmhh/treesync/pkg/logging"
)

// DefaultOutput is the file written when --out is not given.
const DefaultOutput = "osm-baeume.osm"

// Flags holds the fetch command flags.
type Flags struct {
	Out      string
	Relation int64
	Force    bool
}

// NewCommand creates the fetch command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "core",
		Short:   "Download mapped trees from Overpass",
		Args:    cobra.NoArgs,
		Long: `Fetch downloads all natural=tree nodes inside the configured area
relation from the Overpass API and stores the response as an OSM XML file.
The file can be passed to "treesync reconcile --osm-file" to run several
reconciliations against the same snapshot.`,
		Example: `  treesync fetch                              # Hamburg, into osm-baeume.osm
  treesync fetch --out trees.osm --force      # Replace an earlier download
  treesync fetch --relation 62504             # Another area relation`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Relation == 0 {
				flags.Relation = app.Settings().AreaRelation
			}
			return Execute(cmd.Context(), app.Overpass(), flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", DefaultOutput, "output file")
	cmd.Flags().Int64Var(&flags.Relation, "relation", 0, "OSM relation id of the area (default: area_relation setting)")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing output file")

	return cmd
}

// Execute queries Overpass and writes the response to flags.Out.
func Execute(ctx context.Context, client *overpass.Client, flags *Flags, w io.Writer) error {
	logger := logging.FromContext(ctx)

	body, err := client.Fetch(ctx, overpass.TreesQuery(flags.Relation))
	if err != nil {
		return err
	}

	// Parse before writing so a malformed response never replaces a good file.
	trees, err := osmfile.Decode(ctx, bytes.NewReader(body))
	if err != nil {
		return err
	}

	err = osmfile.WriteFile(flags.Out, flags.Force, func(out io.Writer) error {
		_, err := out.Write(body)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info().Str("path", flags.Out).Int("trees", len(trees)).Msg("Mapped trees downloaded")
	_, err = fmt.Fprintf(w, "%d trees written to %s\n", len(trees), flags.Out)
	return err
}
