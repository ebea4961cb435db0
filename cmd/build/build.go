package build

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/builder"
	"github.com/bigearthnet-go/bencommon/internal/conf"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/datastore"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/geo/gdal"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// OutputCSV writes records to output.csv.path instead of a database.
const OutputCSV = "csv"

type options struct {
	sensor      string
	output      string
	csvPath     string
	workers     int
	recommended bool
	skipInvalid bool
	noProgress  bool
	metricsFile string
}

// Command creates a new cobra.Command running the metadata builder.
func Command(env *cmdutil.Env) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "build [ben-directory]",
		Short: "Build a metadata table from an extracted archive",
		Long: "Parse the metadata file of every patch, reproject the footprints, assign the nearest " +
			"BigEarthNet country and the season and store the records in a database or CSV file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, env, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.sensor, "sensor", "s2", "Sensor: s1 or s2")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output: sqlite, mysql or csv (default: output.type)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Also write the records to this CSV file")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", -1, "Number of parallel parsers (default: builder.workers)")
	cmd.Flags().BoolVar(&opts.recommended, "recommended", false, "Drop snowy, cloudy and no 19-class target patches")
	cmd.Flags().BoolVar(&opts.skipInvalid, "skip-invalid", false, "Skip unreadable metadata files instead of failing")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Hide the progress bar")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")

	return cmd
}

// builderOptions merges the flags into the configured builder settings.
func builderOptions(s *conf.Settings, root string, opts *options) (builder.Options, error) {
	sensor, err := dataset.ParseSensor(opts.sensor)
	if err != nil {
		return builder.Options{}, err
	}
	bo := builder.DefaultOptions(root)
	bo.Sensor = sensor
	bo.Workers = s.Builder.Workers
	if opts.workers >= 0 {
		bo.Workers = opts.workers
	}
	bo.TargetCRS = s.Builder.TargetCRS
	bo.LocalCRS = s.Builder.LocalCRS
	bo.Progress = s.Builder.Progress && !opts.noProgress
	bo.RemoveBad = s.Builder.RemoveBadEntries || opts.recommended
	bo.SkipInvalid = opts.skipInvalid
	return bo, nil
}

func run(ctx context.Context, cmd *cobra.Command, env *cmdutil.Env, root string, opts *options) error {
	s := env.Settings
	bo, err := builderOptions(s, root, opts)
	if err != nil {
		return err
	}

	cat, err := env.Catalog()
	if err != nil {
		return err
	}
	m, err := env.Metrics()
	if err != nil {
		return err
	}

	// borders are downloaded on first use
	f, err := env.Fetcher()
	if err != nil {
		return err
	}
	bordersPath, err := f.Fetch(ctx, s.Fetch.CountriesURL, false)
	if err != nil {
		return err
	}

	projector := gdal.NewProjector()
	defer projector.Close()

	builderOpts := []builder.Option{builder.WithMetrics(m.Builder)}

	output := s.Output.Type
	if opts.output != "" {
		output = opts.output
	}
	csvPath := opts.csvPath
	switch output {
	case OutputCSV:
		if csvPath == "" {
			csvPath = s.Output.CSV.Path
		}
	case datastore.TypeSQLite, datastore.TypeMySQL:
		cfg := datastore.ConfigFromSettings(s)
		cfg.Type = output
		store, err := datastore.Open(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Global().Module("build").Warn("closing datastore failed", logger.Error(err))
			}
		}()
		builderOpts = append(builderOpts, builder.WithStore(store))
	default:
		return errors.Newf("unknown output %q, use sqlite, mysql or csv", output).
			Component("builder").
			Category(errors.CategoryValidation).
			Build()
	}
	if csvPath != "" {
		builderOpts = append(builderOpts, builder.WithCSV(csvPath))
	}

	b := builder.New(cat, projector, gdal.NaturalEarth{Path: bordersPath}, builderOpts...)
	res, err := b.Run(ctx, bo)
	if opts.metricsFile != "" {
		if werr := m.WriteTextfile(opts.metricsFile); werr != nil {
			logger.Global().Module("build").Warn("writing metrics failed", logger.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	cmdutil.Println(cmd.OutOrStdout(), cmdutil.KeyValues("build "+res.Run.ID, [][]string{
		{"root", res.Run.Root},
		{"sensor", res.Run.Sensor},
		{"discovered", fmt.Sprint(res.Run.Discovered)},
		{"skipped", fmt.Sprint(len(res.Skipped))},
		{"removed", fmt.Sprint(res.Removed)},
		{"saved", fmt.Sprint(res.Run.Saved)},
		{"output", output},
		{"elapsed", res.Run.FinishedAt.Sub(res.Run.StartedAt).Round(time.Millisecond).String()},
	}))
	return nil
}
