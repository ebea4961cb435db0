// Package archive inspects an extracted BigEarthNet archive on disk.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/gammazero/workerpool"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/patch"
)

func getLogger() logger.Logger {
	return logger.Global().Module("archive")
}

// PatchDirectories returns the sorted names of the entries of dir that
// strictly match the patch name grammar of sensor.
func PatchDirectories(dir string, sensor dataset.Sensor) ([]string, error) {
	if !sensor.Valid() {
		return nil, errors.Newf("invalid sensor %q", string(sensor)).
			Component("archive").
			Category(errors.CategoryValidation).
			Build()
	}
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if s, ok := patch.SensorOf(e.Name()); ok && s == sensor {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// FilesComplete reports whether the patch directory dir/name holds every
// band and metadata file of sensor and none of them is empty.
func FilesComplete(dir, name string, sensor dataset.Sensor) bool {
	for _, suffix := range patch.FileSuffixes(sensor) {
		info, err := os.Stat(filepath.Join(dir, name, name+suffix))
		if err != nil || info.Size() == 0 {
			return false
		}
	}
	return true
}

// Report is the outcome of ValidateRoot.
type Report struct {
	Root       string
	Sensor     dataset.Sensor
	Expected   int
	Missing    []string
	Incomplete []string
}

// Complete reports whether nothing is missing.
func (r *Report) Complete() bool {
	return len(r.Missing) == 0 && len(r.Incomplete) == 0
}

// Invalid returns the sorted union of missing and incomplete patches.
func (r *Report) Invalid() []string {
	out := slices.Concat(r.Missing, r.Incomplete)
	slices.Sort(out)
	return out
}

// ValidateOption configures ValidateRoot.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	workers  int
	progress func()
}

// WithWorkers bounds the number of concurrent completeness checks.
func WithWorkers(n int) ValidateOption {
	return func(c *validateConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithProgress is called once per checked directory, from worker goroutines.
func WithProgress(fn func()) ValidateOption {
	return func(c *validateConfig) { c.progress = fn }
}

// ValidateRoot checks that every expected patch of sensor has a directory
// under dir and that each directory holds all files of the patch, none of
// them empty. File contents are not verified and unrelated entries are
// ignored.
func ValidateRoot(ctx context.Context, dir string, sensor dataset.Sensor, expected map[string]struct{}, opts ...ValidateOption) (*Report, error) {
	cfg := validateConfig{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Name()] = struct{}{}
	}

	report := &Report{Root: dir, Sensor: sensor, Expected: len(expected)}
	var found []string
	for name := range expected {
		if _, ok := present[name]; ok {
			found = append(found, name)
		} else {
			report.Missing = append(report.Missing, name)
		}
	}

	var mu sync.Mutex
	wp := workerpool.New(cfg.workers)
	for _, name := range found {
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			complete := FilesComplete(dir, name, sensor)
			if cfg.progress != nil {
				cfg.progress()
			}
			if complete {
				return
			}
			mu.Lock()
			report.Incomplete = append(report.Incomplete, name)
			mu.Unlock()
		})
	}
	wp.StopWait()

	if err := ctx.Err(); err != nil {
		return nil, errors.New(err).
			Component("archive").
			Category(errors.CategoryCancellation).
			Context("root", dir).
			Build()
	}

	slices.Sort(report.Missing)
	slices.Sort(report.Incomplete)

	log := getLogger()
	if report.Complete() {
		log.Info("archive looks complete",
			logger.String("root", dir),
			logger.String("sensor", string(sensor)),
			logger.Int("patches", report.Expected))
	} else {
		log.Warn("archive is incomplete",
			logger.String("root", dir),
			logger.String("sensor", string(sensor)),
			logger.Int("missing", len(report.Missing)),
			logger.Int("incomplete", len(report.Incomplete)))
	}
	return report, nil
}

func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}
	return entries, nil
}
