package resource

import (
	"compress/bzip2"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
)

// Loader decompresses and parses resources from a file system and memoizes
// the result per (resource, columns) combination. Safe for concurrent use;
// concurrent first loads of the same table are collapsed into one.
type Loader struct {
	fsys     fs.FS
	cache    *cache.Cache
	group    singleflight.Group
	recorder metrics.Recorder
	log      logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithMetrics records load operations, durations and errors.
func WithMetrics(r metrics.Recorder) Option {
	return func(l *Loader) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLogger replaces the module logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a loader reading resources from fsys.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys:     fsys,
		cache:    cache.New(cache.NoExpiration, 0),
		recorder: metrics.NopRecorder{},
		log:      logger.Global().Module("resource"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDirLoader creates a loader reading resources from dir.
func NewDirLoader(dir string, opts ...Option) *Loader {
	return NewLoader(os.DirFS(dir), opts...)
}

// rowSetter is implemented by recorders that track table sizes.
type rowSetter interface {
	SetRows(resource string, rows int)
}

// Dict maps the key column to the value column of a header-bearing resource.
func (l *Loader) Dict(res Resource, key, value string) (map[string]string, error) {
	v, err := l.memoize(metrics.OpLoadDict, fmt.Sprintf("dict:%s:%s:%s", res, key, value), func() (any, int, error) {
		out := make(map[string]string)
		err := l.readHeaderCSV(res, []string{key, value}, func(row []string) {
			out[row[0]] = row[1]
		})
		return out, len(out), err
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// Column returns the distinct values of one column of a header-bearing
// resource.
func (l *Loader) Column(res Resource, key string) (map[string]struct{}, error) {
	v, err := l.memoize(metrics.OpLoadColumn, fmt.Sprintf("column:%s:%s", res, key), func() (any, int, error) {
		out := make(map[string]struct{})
		err := l.readHeaderCSV(res, []string{key}, func(row []string) {
			out[row[0]] = struct{}{}
		})
		return out, len(out), err
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

// Set returns the values of a headerless single column resource.
func (l *Loader) Set(res Resource) (map[string]struct{}, error) {
	v, err := l.memoize(metrics.OpLoadSet, fmt.Sprintf("set:%s", res), func() (any, int, error) {
		out := make(map[string]struct{})
		err := l.readCSV(res, func(r *csv.Reader) error {
			r.FieldsPerRecord = -1
			for {
				row, err := r.Read()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				out[row[0]] = struct{}{}
			}
		})
		return out, len(out), err
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

// Results are shared between callers and must not be modified.
func (l *Loader) memoize(op, key string, load func() (any, int, error)) (any, error) {
	if cached, found := l.cache.Get(key); found {
		l.recorder.RecordOperation(op, metrics.StatusCached)
		return cached, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if cached, found := l.cache.Get(key); found {
			return cached, nil
		}

		start := time.Now()
		v, rows, err := load()
		l.recorder.RecordDuration(op, time.Since(start).Seconds())
		if err != nil {
			l.recorder.RecordOperation(op, metrics.StatusError)
			l.recorder.RecordError(op, string(categoryOf(err)))
			return nil, err
		}

		l.recorder.RecordOperation(op, metrics.StatusSuccess)
		if rs, ok := l.recorder.(rowSetter); ok {
			rs.SetRows(key, rows)
		}
		l.log.Debug("resource loaded",
			logger.String("key", key),
			logger.Int("rows", rows),
			logger.Duration("elapsed", time.Since(start)))

		l.cache.Set(key, v, cache.NoExpiration)
		return v, nil
	})
	return v, err
}

// readHeaderCSV resolves the requested columns against the header row and
// calls fn with the selected fields of every data row.
func (l *Loader) readHeaderCSV(res Resource, columns []string, fn func(row []string)) error {
	return l.readCSV(res, func(r *csv.Reader) error {
		header, err := r.Read()
		if err == io.EOF {
			return missingColumn(res, columns[0], nil)
		}
		if err != nil {
			return err
		}

		idx := make([]int, len(columns))
		for i, c := range columns {
			idx[i] = slices.Index(header, c)
			if idx[i] < 0 {
				return missingColumn(res, c, header)
			}
		}

		selected := make([]string, len(columns))
		for {
			row, err := r.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			for i, j := range idx {
				selected[i] = row[j]
			}
			fn(selected)
		}
	})
}

// readCSV opens and decompresses res, or reads its uncompressed form when
// only that is present. Any failure is a resource error: the tables are
// shipped with the tool, so a broken one is a packaging defect.
func (l *Loader) readCSV(res Resource, parse func(r *csv.Reader) error) error {
	f, compressed, err := l.open(res)
	if err != nil {
		return err
	}
	defer f.Close()

	var src io.Reader = f
	if compressed {
		src = bzip2.NewReader(f)
	}
	r := csv.NewReader(src)
	r.ReuseRecord = true
	if err := parse(r); err != nil {
		if errors.IsResource(err) {
			return err
		}
		return errors.New(fmt.Errorf("corrupt resource %s: %w", res, err)).
			Component("resource").
			Category(errors.CategoryResource).
			Context("resource", string(res)).
			Build()
	}
	return nil
}

func (l *Loader) open(res Resource) (fs.File, bool, error) {
	f, err := l.fsys.Open(string(res))
	if err == nil {
		return f, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		plain, perr := l.fsys.Open(res.Plain())
		if perr == nil {
			l.log.Debug("reading uncompressed resource", logger.String("file", res.Plain()))
			return plain, false, nil
		}
		if errors.Is(perr, fs.ErrNotExist) {
			return nil, false, errors.Newf("resource %s is not available, run `bencommon fetch` or set resources.dir", res).
				Component("resource").
				Category(errors.CategoryResource).
				Context("resource", string(res)).
				Build()
		}
		err = perr
	}
	return nil, false, errors.New(err).
		Component("resource").
		Category(errors.CategoryResource).
		Context("resource", string(res)).
		Build()
}

func missingColumn(res Resource, column string, header []string) error {
	return errors.Newf("column %q is unknown, resource %s provides %v", column, res, header).
		Component("resource").
		Category(errors.CategoryResource).
		Context("resource", string(res)).
		Context("column", column).
		Build()
}

func categoryOf(err error) errors.ErrorCategory {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return errors.CategoryGeneric
}
