package reconcile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osmhh/treesync/internal/cadastre"
	"github.com/osmhh/treesync/internal/osmfile"
	"github.com/osmhh/treesync/internal/overpass"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/records"
	"github.com/osmhh/treesync/pkg/tagrules"
)

// Input names the sources of a run.
type Input struct {
	Cadastre string
	Previous string

	// OSMFile replaces the Overpass query for Relation when set.
	OSMFile  string
	Relation int64

	// Published overrides the modification time of the cadastre files.
	Published time.Time
	Pipeline  tagrules.Pipeline
	IDTags    []string
}

// Loaded holds the parsed inputs of a run.
type Loaded struct {
	Current  []*records.Authoritative
	Previous []*records.Authoritative
	Targets  []*records.Target
}

// Load reads the cadastre snapshots and the mapped trees concurrently.
func Load(ctx context.Context, client *overpass.Client, in *Input) (*Loaded, error) {
	logger := logging.FromContext(ctx)
	out := &Loaded{}

	opts := []cadastre.Option{cadastre.WithRules(in.Pipeline), cadastre.WithIDTags(in.IDTags)}
	if !in.Published.IsZero() {
		opts = append(opts, cadastre.WithPublished(in.Published))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := cadastre.Load(ctx, in.Cadastre, opts...)
		if err != nil {
			return err
		}
		out.Current = recs
		logger.Info().Str("path", in.Cadastre).Int("records", len(recs)).Msg("Cadastre loaded")
		return nil
	})
	if in.Previous != "" {
		g.Go(func() error {
			// The previous snapshot keeps its own modification time.
			prevOpts := []cadastre.Option{cadastre.WithRules(in.Pipeline), cadastre.WithIDTags(in.IDTags)}
			recs, err := cadastre.Load(ctx, in.Previous, prevOpts...)
			if err != nil {
				return err
			}
			out.Previous = recs
			logger.Info().Str("path", in.Previous).Int("records", len(recs)).Msg("Previous cadastre loaded")
			return nil
		})
	}
	g.Go(func() error {
		var (
			targets []*records.Target
			err     error
			source  string
		)
		if in.OSMFile != "" {
			source = in.OSMFile
			targets, err = osmfile.ReadFile(ctx, in.OSMFile)
		} else {
			source = overpass.Service
			targets, err = client.Trees(ctx, in.Relation)
		}
		if err != nil {
			return err
		}
		out.Targets = targets
		logger.Info().Str("source", source).Int("records", len(targets)).Msg("Mapped trees loaded")
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
