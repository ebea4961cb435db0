// Package builder turns an extracted BigEarthNet archive into a table of
// patch records: it parses every metadata file, reprojects the footprints,
// assigns each patch to the nearest BigEarthNet country, adds the catalog
// metadata and persists the result.
package builder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/datastore"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/geo"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
)

// maxDefaultWorkers caps the default parallelism; more workers rarely help
// since parsing is bound by file system latency.
const maxDefaultWorkers = 8

// Catalog is the subset of the patch catalog the builder enriches records
// with.
type Catalog interface {
	Counterpart(name string) (string, error)
	IsSnowy(name string) (bool, error)
	IsCloudyOrShadowy(name string) (bool, error)
	OriginalSplitOf(name string) (dataset.Split, error)
}

// Options configure one run.
type Options struct {
	// Root is the directory holding the extracted patch directories.
	Root   string
	Sensor dataset.Sensor
	// Workers is the number of parallel metadata parsers, 0 selects
	// DefaultWorkers.
	Workers int
	// TargetCRS is the CRS the footprints are stored in.
	TargetCRS string
	// LocalCRS is the projected CRS centroids and distances are computed in.
	LocalCRS string
	Progress bool
	// RemoveBad drops patches without 19-class labels and patches covered by
	// snow, clouds or cloud shadows.
	RemoveBad bool
	// SkipInvalid logs and skips unreadable metadata files instead of
	// failing the run.
	SkipInvalid bool
}

// DefaultOptions returns the options of a plain S2 run over root.
func DefaultOptions(root string) Options {
	return Options{
		Root:      root,
		Sensor:    dataset.S2,
		TargetCRS: geo.WGS84,
		LocalCRS:  geo.LAEAEurope,
	}
}

// Result is the outcome of a run.
type Result struct {
	Run     datastore.BuildRun
	Records []datastore.PatchRecord
	// Removed counts patches dropped by RemoveBad.
	Removed int
	// Skipped lists metadata files that could not be read when SkipInvalid
	// is set.
	Skipped []string
}

// Builder runs the pipeline. A Builder can be reused for several runs but
// runs must not overlap.
type Builder struct {
	catalog   Catalog
	projector geo.Projector
	borders   geo.BorderSource
	store     datastore.Interface
	csvPath   string
	metrics   *metrics.BuilderMetrics
	newID     func() string
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithStore persists records in a database.
func WithStore(s datastore.Interface) Option {
	return func(b *Builder) { b.store = s }
}

// WithCSV writes records to a CSV file.
func WithCSV(path string) Option {
	return func(b *Builder) { b.csvPath = path }
}

// WithMetrics records stage timings and counters.
func WithMetrics(m *metrics.BuilderMetrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// New creates a builder.
func New(cat Catalog, projector geo.Projector, borders geo.BorderSource, opts ...Option) *Builder {
	b := &Builder{
		catalog:   cat,
		projector: projector,
		borders:   borders,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func getLogger() logger.Logger {
	return logger.Global().Module("builder")
}

// DefaultWorkers returns min(8, logical CPUs).
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxDefaultWorkers)
}

func (o *Options) validate() error {
	if o.Root == "" {
		return validationError("root directory must be set", "root", o.Root)
	}
	if o.Sensor == "" {
		o.Sensor = dataset.S2
	}
	if !o.Sensor.Valid() {
		return validationError("invalid sensor", "sensor", string(o.Sensor))
	}
	if o.Workers < 0 {
		return validationError("workers must not be negative", "workers", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	if o.TargetCRS == "" {
		o.TargetCRS = geo.WGS84
	}
	if o.LocalCRS == "" {
		o.LocalCRS = geo.LAEAEurope
	}
	return nil
}

// Run executes every stage over opts.Root.
func (b *Builder) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	res := &Result{Run: datastore.BuildRun{
		ID:         b.newID(),
		Root:       opts.Root,
		Sensor:     string(opts.Sensor),
		TargetCRS:  opts.TargetCRS,
		LocalCRS:   opts.LocalCRS,
		RemovedBad: opts.RemoveBad,
		StartedAt:  b.now(),
	}}
	log := getLogger().With(logger.String("run_id", res.Run.ID))
	log.Info("build started",
		logger.String("root", opts.Root),
		logger.String("sensor", string(opts.Sensor)),
		logger.Int("workers", opts.Workers))

	var paths []metadataPath
	if err := b.stage(metrics.StageDiscover, func() (err error) {
		paths, err = discover(opts.Root, opts.Sensor)
		return err
	}); err != nil {
		return nil, err
	}
	res.Run.Discovered = len(paths)
	log.Info("patches discovered", logger.Int("count", len(paths)))

	var patches []parsedPatch
	if err := b.stage(metrics.StageParse, func() (err error) {
		patches, res.Skipped, err = b.parseAll(ctx, paths, opts)
		return err
	}); err != nil {
		return nil, err
	}
	if len(patches) == 0 {
		return nil, errors.Newf("no patch metadata found in %s, check the directory", opts.Root).
			Component("builder").
			Category(errors.CategoryValidation).
			Context("root", opts.Root).
			Context("sensor", string(opts.Sensor)).
			Build()
	}

	var records []datastore.PatchRecord
	if err := b.stage(metrics.StageProject, func() (err error) {
		records, err = b.project(ctx, patches, opts)
		return err
	}); err != nil {
		return nil, err
	}

	if err := b.stage(metrics.StageCountry, func() error {
		return b.assignCountries(ctx, patches, records, opts)
	}); err != nil {
		return nil, err
	}

	if err := b.stage(metrics.StageEnrich, func() error {
		return b.enrich(patches, records)
	}); err != nil {
		return nil, err
	}

	if opts.RemoveBad {
		before := len(records)
		records = removeBad(records)
		res.Removed = before - len(records)
		log.Info("removed discouraged patches", logger.Int("removed", res.Removed))
	}

	for i := range records {
		records[i].RunID = res.Run.ID
		b.metrics.RecordCountry(records[i].Country)
	}
	res.Records = records
	res.Run.Saved = len(records)
	res.Run.FinishedAt = b.now()

	if err := b.stage(metrics.StagePersist, func() error {
		return b.persist(ctx, res)
	}); err != nil {
		return nil, err
	}

	b.metrics.MarkRunCompleted(res.Run.FinishedAt)
	log.Info("build finished",
		logger.Int("records", len(records)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration("elapsed", res.Run.FinishedAt.Sub(res.Run.StartedAt)))
	return res, nil
}

func (b *Builder) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	b.metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		getLogger().Error("stage failed", logger.String("stage", name), logger.Error(err))
	}
	return err
}

func (b *Builder) persist(ctx context.Context, res *Result) error {
	if b.store != nil {
		if err := b.store.SaveRun(ctx, &res.Run); err != nil {
			return err
		}
		if err := b.store.SaveRecords(ctx, res.Records); err != nil {
			return err
		}
		b.metrics.AddRecordsSaved(b.store.Backend(), len(res.Records))
	}
	if b.csvPath != "" {
		if err := datastore.ExportCSVFile(b.csvPath, res.Records); err != nil {
			return err
		}
		b.metrics.AddRecordsSaved("csv", len(res.Records))
	}
	return nil
}

func validationError(message, field string, value any) error {
	return errors.Newf("%s: %v", message, value).
		Component("builder").
		Category(errors.CategoryValidation).
		Context("field", field).
		Build()
}
