// Package reconcile provides the reconcile command, which compares a
// cadastre snapshot with the trees mapped in OpenStreetMap and writes the
// resulting change and review files.
package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/osmhh/treesync/internal/appcontext"
)

// Flags holds the reconcile command flags.
type Flags struct {
	OSMFile   string
	OutDir    string
	Published string
	DryRun    bool
	GeoJSON   bool
	Force     bool
}

// NewCommand creates the reconcile command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "reconcile <cadastre.gml> [<previous-cadastre.gml>]",
		GroupID: "core",
		Short:   "Reconcile a cadastre snapshot with OpenStreetMap",
		Args:    cobra.RangeArgs(1, 2),
		Long: `Reconcile matches every tree of a cadastre snapshot against the trees
currently mapped in OpenStreetMap and decides, per tree, whether to create
a node, update the tags of an existing node, delete a node whose tree left
the cadastre, or defer the decision to a human.

The command writes next to the cadastre file (or into --out-dir):
• <name>-aenderungen.osc  osmChange file with creations, updates and deletions
• <name>-review.osm       trees that need a manual decision
• <name>-review.geojson   the same trees as GeoJSON (with --geojson)

With a previous snapshot as second argument, only trees that are new or
whose tags changed since then are reconciled; deletions are still computed
against the full current snapshot.`,
		Example: `  treesync reconcile baeume.gml                          # Fetch OSM data from Overpass
  treesync reconcile baeume.gml --osm-file trees.osm     # Use a local OSM extract
  treesync reconcile baeume-2024.gml baeume-2023.gml     # Incremental run
  treesync reconcile baeume.gml --dry-run -o json        # Print the decisions only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, flags, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.OSMFile, "osm-file", "", "read mapped trees from a local OSM XML file instead of Overpass")
	cmd.Flags().StringVar(&flags.OutDir, "out-dir", "", "directory for output files (default: next to the cadastre file)")
	cmd.Flags().StringVar(&flags.Published, "published", "", "publication date of the cadastre, YYYY-MM-DD (default: file modification time)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "reconcile and print the summary without writing files")
	cmd.Flags().BoolVar(&flags.GeoJSON, "geojson", false, "also write the review set as GeoJSON")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite existing output files")

	return cmd
}
