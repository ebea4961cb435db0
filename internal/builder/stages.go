package builder

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/schollz/progressbar/v3"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/datastore"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/geo"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/metadata"
	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
	"github.com/bigearthnet-go/bencommon/internal/patch"
	"github.com/bigearthnet-go/bencommon/internal/taxonomy"
)

// AcquisitionLayout is the layout acquisition dates are stored with.
const AcquisitionLayout = metadata.AcquisitionLayout

type metadataPath struct {
	name string
	path string
}

type parsedPatch struct {
	name       string
	acquired   time.Time
	labels     []string
	projection string
	footprint  orb.Polygon
}

// discover lists the patch metadata files below root. S2 entries are
// matched with the relaxed name pattern so that renamed copies are still
// picked up; S1 entries must match the full grammar. An entry is either a
// patch directory or a metadata file placed directly in root.
func discover(root string, sensor dataset.Sensor) ([]metadataPath, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.New(err).
			Component("builder").
			Category(errors.CategoryFileIO).
			Context("root", root).
			Build()
	}

	var out []metadataPath
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			trimmed, ok := strings.CutSuffix(name, patch.MetadataSuffix)
			if !ok || !matches(trimmed, sensor) {
				continue
			}
			out = append(out, metadataPath{name: trimmed, path: filepath.Join(root, name)})
			continue
		}
		if matches(name, sensor) {
			out = append(out, metadataPath{name: name, path: filepath.Join(root, name, patch.MetadataFile(name))})
		}
	}
	slices.SortFunc(out, func(a, b metadataPath) int { return strings.Compare(a.name, b.name) })
	return out, nil
}

func matches(name string, sensor dataset.Sensor) bool {
	if sensor == dataset.S1 {
		return patch.IsS1(name)
	}
	loc := patch.RoughRegexp.FindStringIndex(name)
	return loc != nil && loc[0] == 0
}

// parseAll reads the metadata files on a worker pool. Results are sorted by
// name so the output does not depend on scheduling.
func (b *Builder) parseAll(ctx context.Context, paths []metadataPath, opts Options) ([]parsedPatch, []string, error) {
	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(paths)), "parsing metadata")
	}

	var (
		mu       sync.Mutex
		patches  = make([]parsedPatch, 0, len(paths))
		skipped  []string
		firstErr error
	)
	wp := workerpool.New(opts.Workers)
	for _, mp := range paths {
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			p, err := parse(mp, opts.Sensor)
			if bar != nil {
				_ = bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				b.metrics.RecordPatch(metrics.StageParse, metrics.StatusError)
				if opts.SkipInvalid {
					getLogger().Warn("skipping unreadable metadata",
						logger.String("path", mp.path),
						logger.Error(err))
					skipped = append(skipped, mp.path)
				} else if firstErr == nil {
					firstErr = err
				}
				return
			}
			b.metrics.RecordPatch(metrics.StageParse, metrics.StatusSuccess)
			patches = append(patches, p)
		})
	}
	wp.StopWait()
	if bar != nil {
		_ = bar.Finish()
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.New(err).
			Component("builder").
			Category(errors.CategoryCancellation).
			Build()
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	slices.SortFunc(patches, func(a, b parsedPatch) int { return strings.Compare(a.name, b.name) })
	slices.Sort(skipped)
	return patches, skipped, nil
}

func parse(mp metadataPath, sensor dataset.Sensor) (parsedPatch, error) {
	var (
		date, projection string
		coords           metadata.Coordinates
		labels           []string
	)
	if sensor == dataset.S1 {
		m, err := metadata.ReadS1(mp.path)
		if err != nil {
			return parsedPatch{}, err
		}
		date, projection, coords, labels = m.AcquisitionTime, m.Projection, m.Coordinates, m.Labels
	} else {
		m, err := metadata.ReadS2(mp.path)
		if err != nil {
			return parsedPatch{}, err
		}
		date, projection, coords, labels = m.AcquisitionDate, m.Projection, m.Coordinates, m.Labels
	}

	acquired, err := metadata.ParseDatetime(date)
	if err != nil {
		return parsedPatch{}, errors.New(err).
			Component("builder").
			Category(errors.CategoryFileParsing).
			FileContext(mp.path).
			Build()
	}
	return parsedPatch{
		name:       mp.name,
		acquired:   acquired,
		labels:     labels,
		projection: projection,
		footprint:  geo.Box(orb.Point{coords.ULX, coords.ULY}, orb.Point{coords.LRX, coords.LRY}),
	}, nil
}

// project stores every footprint in the target CRS.
func (b *Builder) project(ctx context.Context, patches []parsedPatch, opts Options) ([]datastore.PatchRecord, error) {
	records := make([]datastore.PatchRecord, len(patches))
	for i, p := range patches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := geo.ProjectGeometry(b.projector, p.projection, opts.TargetCRS, p.footprint)
		if err != nil {
			b.metrics.RecordPatch(metrics.StageProject, metrics.StatusError)
			return nil, patchError(err, p.name)
		}
		b.metrics.RecordPatch(metrics.StageProject, metrics.StatusSuccess)
		records[i] = datastore.PatchRecord{
			Name:            p.name,
			Sensor:          string(opts.Sensor),
			AcquisitionDate: p.acquired.Format(AcquisitionLayout),
			Labels:          datastore.JoinLabels(p.labels),
			SourceCRS:       p.projection,
			Footprint:       wkt.MarshalString(g),
			CRS:             opts.TargetCRS,
		}
	}
	return records, nil
}

// assignCountries computes the centroid of each footprint in the local CRS
// and assigns the patch to the BigEarthNet country containing it, or to the
// closest one. Centroids make the assignment of patches crossing a border
// deterministic; at 1200m x 1200m the centroid decides like the larger
// overlap would.
func (b *Builder) assignCountries(ctx context.Context, patches []parsedPatch, records []datastore.PatchRecord, opts Options) error {
	borders, err := b.borders.Borders(ctx)
	if err != nil {
		return err
	}
	local, err := geo.ProjectBorders(b.projector, b.borders.CRS(), opts.LocalCRS, borders)
	if err != nil {
		return err
	}

	for i, p := range patches {
		if err := ctx.Err(); err != nil {
			return err
		}
		g, err := geo.ProjectGeometry(b.projector, p.projection, opts.LocalCRS, p.footprint)
		if err != nil {
			return patchError(err, p.name)
		}
		c := geo.Centroid(g)
		country, dist, err := geo.NearestCountry(c, local)
		if err != nil {
			b.metrics.RecordPatch(metrics.StageCountry, metrics.StatusError)
			return patchError(err, p.name)
		}
		b.metrics.RecordPatch(metrics.StageCountry, metrics.StatusSuccess)
		records[i].CentroidX, records[i].CentroidY = c.X(), c.Y()
		records[i].Country = string(country)
		records[i].CountryDistance = dist
	}
	return nil
}

// enrich adds season, label conversion and catalog metadata.
func (b *Builder) enrich(patches []parsedPatch, records []datastore.PatchRecord) error {
	for i, p := range patches {
		r := &records[i]

		season, err := dataset.SeasonFromMonth(int(p.acquired.Month()))
		if err != nil {
			return patchError(err, p.name)
		}
		r.Season = string(season)

		newLabels, ok, err := taxonomy.OldToNew(p.labels)
		if err != nil {
			b.metrics.RecordPatch(metrics.StageEnrich, metrics.StatusError)
			return patchError(err, p.name)
		}
		r.NewLabels = datastore.JoinLabels(newLabels)
		r.HasNewLabels = ok

		if r.Snow, err = b.catalog.IsSnowy(p.name); err != nil {
			return patchError(err, p.name)
		}
		if r.CloudOrShadow, err = b.catalog.IsCloudyOrShadowy(p.name); err != nil {
			return patchError(err, p.name)
		}
		split, err := b.catalog.OriginalSplitOf(p.name)
		if err != nil {
			return patchError(err, p.name)
		}
		r.OriginalSplit = string(split)

		counterpart, err := b.catalog.Counterpart(p.name)
		switch {
		case err == nil:
			r.Counterpart = counterpart
		case errors.IsNotFound(err) || errors.IsValidation(err):
			// not part of the published archive
		default:
			return patchError(err, p.name)
		}
		b.metrics.RecordPatch(metrics.StageEnrich, metrics.StatusSuccess)
	}
	return nil
}

// removeBad drops patches without 19-class labels and patches covered by
// seasonal snow, clouds or cloud shadows.
func removeBad(records []datastore.PatchRecord) []datastore.PatchRecord {
	return slices.DeleteFunc(records, func(r datastore.PatchRecord) bool {
		return !r.HasNewLabels || r.Snow || r.CloudOrShadow
	})
}

// patchError attaches the patch name, keeping the category of err.
func patchError(err error, name string) error {
	category := errors.CategoryProcessing
	var ee *errors.EnhancedError
	if errors.As(err, &ee) && ee.Category != "" {
		category = ee.Category
	}
	return errors.New(err).
		Component("builder").
		Category(category).
		Context("patch", name).
		Build()
}
