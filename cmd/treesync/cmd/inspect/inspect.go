// Package inspect provides the inspect command, which parses a cadastre file
// and prints the records as they would enter a reconciliation.
package inspect

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/osmhh/treesync/internal/appcontext"
	"github.com/osmhh/treesync/internal/cadastre"
	"github.com/osmhh/treesync/internal/cmd/output"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/records"
)

// Flags holds the inspect command flags.
type Flags struct {
	Limit     int
	MissingID bool
}

// NewCommand creates the inspect command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "inspect <cadastre.gml>",
		Short: "Print the records of a cadastre file",
		Args:  cobra.ExactArgs(1),
		Long: `Inspect parses a cadastre file, reprojects the positions, maps the
fields to OSM tags and applies the configured tag rules, then prints the
resulting records. Use it to check a new export before reconciling.`,
		Example: `  treesync inspect baeume.gml --limit 20
  treesync inspect baeume.gml --missing-id      # Records the reconciler would reject
  treesync inspect baeume.gml -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, flags, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "print at most this many records (0 for all)")
	cmd.Flags().BoolVar(&flags.MissingID, "missing-id", false, "only print records without stable id")

	return cmd
}

// Execute loads path and prints its records to w.
func Execute(ctx context.Context, app appcontext.Interface, flags *Flags, path string, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	ctx = logging.WithLogger(ctx, app.Logger())

	settings := app.Settings()
	pipeline, err := settings.Pipeline()
	if err != nil {
		return err
	}

	recs, err := cadastre.Load(ctx, path,
		cadastre.WithRules(pipeline),
		cadastre.WithIDTags(settings.IDTags),
	)
	if err != nil {
		return err
	}

	recs = Filter(recs, flags)
	return output.FormatRecords(w, format, recs)
}

// Filter applies the --missing-id and --limit flags.
func Filter(recs []*records.Authoritative, flags *Flags) []*records.Authoritative {
	if flags.MissingID {
		var missing []*records.Authoritative
		for _, r := range recs {
			if r.ID == "" {
				missing = append(missing, r)
			}
		}
		recs = missing
	}
	if flags.Limit > 0 && len(recs) > flags.Limit {
		recs = recs[:flags.Limit]
	}
	return recs
}
