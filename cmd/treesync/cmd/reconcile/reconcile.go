package reconcile

import (
	"context"
	"io"
	"time"

	"github.com/agentstation/utc"

	"github.com/osmhh/treesync/internal/appcontext"
	"github.com/osmhh/treesync/internal/cmd/output"
	"github.com/osmhh/treesync/internal/metrics"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/verify"
)

// Execute runs a reconciliation for the cadastre file in args[0], with an
// optional previous snapshot in args[1], and prints the outcome to w.
func Execute(ctx context.Context, app appcontext.Interface, flags *Flags, args []string, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	ctx = logging.WithLogger(ctx, app.Logger())
	ctx = logging.WithRun(ctx, utc.Now().Format("20060102T150405Z"))
	logger := logging.FromContext(ctx)

	// Step 1: Resolve configuration
	settings := app.Settings()
	cfg, err := settings.Reconciler()
	if err != nil {
		return err
	}
	pipeline, err := settings.Pipeline()
	if err != nil {
		return err
	}
	var published time.Time
	if flags.Published != "" {
		var ok bool
		if published, ok = verify.ParseDate(flags.Published, cfg.Location); !ok {
			return errors.NewValidationError("published", flags.Published, "expected YYYY-MM-DD")
		}
	}

	in := &Input{
		Cadastre:  args[0],
		OSMFile:   flags.OSMFile,
		Published: published,
		Pipeline:  pipeline,
		IDTags:    cfg.IDTags,
		Relation:  settings.AreaRelation,
	}
	if len(args) > 1 {
		in.Previous = args[1]
	}

	paths := outputPaths(in.Cadastre, flags)
	if !flags.DryRun && !flags.Force {
		if err := checkOutputs(paths, flags.GeoJSON); err != nil {
			return err
		}
	}

	// Step 2: Load cadastre snapshots and mapped trees
	loaded, err := Load(ctx, app.Overpass(), in)
	if err != nil {
		return err
	}

	// Step 3: Reconcile
	opts := []reconciler.Option{reconciler.WithWorkers(settings.Workers)}
	authoritative := loaded.Current
	if loaded.Previous != nil {
		authoritative = reconciler.Incremental(loaded.Current, loaded.Previous)
		opts = append(opts, reconciler.WithCurrentSnapshot(loaded.Current))
		logger.Info().
			Int("current", len(loaded.Current)).
			Int("previous", len(loaded.Previous)).
			Int("changed", len(authoritative)).
			Msg("Incremental run")
	}

	r, err := reconciler.New(cfg, opts...)
	if err != nil {
		return err
	}
	result, err := r.Reconcile(ctx, authoritative, loaded.Targets)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		logger.Warn().Msg(warning)
	}

	// Step 4: Write outputs
	report := output.NewReport(result)
	report.DryRun = flags.DryRun
	if !flags.DryRun {
		files, err := writeOutputs(ctx, paths, result, flags)
		if err != nil {
			return err
		}
		report.Files = files
	}

	// Step 5: Export metrics
	if settings.MetricsFile != "" {
		m := metrics.New()
		m.Observe(result)
		if err := m.WriteFile(settings.MetricsFile); err != nil {
			return err
		}
		logger.Debug().Str("path", settings.MetricsFile).Msg("Metrics written")
	}

	return output.FormatResult(w, format, result, report)
}
