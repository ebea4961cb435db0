// Package catalog resolves BigEarthNet patch names: the Sentinel-1 to
// Sentinel-2 correspondence and the per-patch country, season, original
// split and exclusion flags.
//
// Every sensor-agnostic lookup first maps an S1 name to its S2 counterpart
// and then consults the S2-indexed table, so both names of a physical patch
// always resolve to the same attributes.
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/patch"
	"github.com/bigearthnet-go/bencommon/internal/resource"
)

// TableSource provides the raw lookup tables. *resource.Loader implements it.
type TableSource interface {
	Dict(res resource.Resource, key, value string) (map[string]string, error)
	Set(res resource.Resource) (map[string]struct{}, error)
}

// Tables holds fully materialized lookup tables. Every attribute table is
// keyed by S2 name.
type Tables struct {
	S1ToS2          map[string]string
	Countries       map[string]dataset.Country
	Seasons         map[string]dataset.Season
	Snowy           map[string]struct{}
	CloudyOrShadowy map[string]struct{}
	No19ClassTarget map[string]struct{}
	Splits          map[string]dataset.Split
}

type correspondence struct {
	s1ToS2 map[string]string
	s2ToS1 map[string]string
}

// lazy loads a table on first use. The outcome, including an error, is kept
// for the lifetime of the value.
type lazy[T any] struct {
	once sync.Once
	load func() (T, error)
	val  T
	err  error
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.load()
	})
	return l.val, l.err
}

func ready[T any](v T) func() (T, error) {
	return func() (T, error) { return v, nil }
}

// Catalog answers patch lookups. Tables are loaded lazily, each at most once.
// Safe for concurrent use.
type Catalog struct {
	corr    lazy[correspondence]
	country lazy[map[string]dataset.Country]
	season  lazy[map[string]dataset.Season]
	snowy   lazy[map[string]struct{}]
	cloudy  lazy[map[string]struct{}]
	no19    lazy[map[string]struct{}]
	splits  lazy[map[string]dataset.Split]

	// unsplit counts OriginalSplitOf misses; only the first one is a warning.
	unsplit atomic.Int64
	log     logger.Logger
}

func getLogger() logger.Logger {
	return logger.Global().Module("catalog")
}

func (c *Catalog) logger() logger.Logger {
	if c.log != nil {
		return c.log
	}
	return getLogger()
}

// UnsplitLookups returns how many OriginalSplitOf calls found no split.
func (c *Catalog) UnsplitLookups() int64 {
	return c.unsplit.Load()
}

// New creates a catalog backed by src.
func New(src TableSource) *Catalog {
	c := &Catalog{}
	c.corr.load = func() (correspondence, error) {
		m, err := src.Dict(resource.NameCountrySeason, resource.ColumnS1Name, resource.ColumnS2Name)
		if err != nil {
			return correspondence{}, err
		}
		return newCorrespondence(m)
	}
	c.country.load = func() (map[string]dataset.Country, error) {
		m, err := src.Dict(resource.NameCountrySeason, resource.ColumnS2Name, resource.ColumnCountry)
		if err != nil {
			return nil, err
		}
		return convert(m, resource.ColumnCountry, dataset.ParseCountry)
	}
	c.season.load = func() (map[string]dataset.Season, error) {
		m, err := src.Dict(resource.NameCountrySeason, resource.ColumnS2Name, resource.ColumnSeason)
		if err != nil {
			return nil, err
		}
		return convert(m, resource.ColumnSeason, dataset.ParseSeason)
	}
	c.snowy.load = func() (map[string]struct{}, error) { return src.Set(resource.SeasonalSnow) }
	c.cloudy.load = func() (map[string]struct{}, error) { return src.Set(resource.CloudAndShadow) }
	c.no19.load = func() (map[string]struct{}, error) { return src.Set(resource.No19ClassTargets) }
	c.splits.load = func() (map[string]dataset.Split, error) {
		out := make(map[string]dataset.Split)
		// a patch listed in several splits keeps the first one
		for _, s := range []struct {
			res   resource.Resource
			split dataset.Split
		}{
			{resource.TrainSplit, dataset.Train},
			{resource.ValidationSplit, dataset.Validation},
			{resource.TestSplit, dataset.Test},
		} {
			names, err := src.Set(s.res)
			if err != nil {
				return nil, err
			}
			for name := range names {
				if _, seen := out[name]; !seen {
					out[name] = s.split
				}
			}
		}
		return out, nil
	}
	return c
}

// NewFromTables creates a catalog over already materialized tables. It fails
// when S1ToS2 is not one-to-one.
func NewFromTables(t Tables) (*Catalog, error) {
	corr, err := newCorrespondence(t.S1ToS2)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.corr.load = ready(corr)
	c.country.load = ready(orEmpty(t.Countries))
	c.season.load = ready(orEmpty(t.Seasons))
	c.snowy.load = ready(orEmpty(t.Snowy))
	c.cloudy.load = ready(orEmpty(t.CloudyOrShadowy))
	c.no19.load = ready(orEmpty(t.No19ClassTarget))
	c.splits.load = ready(orEmpty(t.Splits))
	return c, nil
}

// Preload loads every table and returns the first error.
func (c *Catalog) Preload() error {
	if _, err := c.corr.get(); err != nil {
		return err
	}
	if _, err := c.country.get(); err != nil {
		return err
	}
	if _, err := c.season.get(); err != nil {
		return err
	}
	for _, l := range []*lazy[map[string]struct{}]{&c.snowy, &c.cloudy, &c.no19} {
		if _, err := l.get(); err != nil {
			return err
		}
	}
	_, err := c.splits.get()
	return err
}

func newCorrespondence(s1ToS2 map[string]string) (correspondence, error) {
	s2ToS1 := make(map[string]string, len(s1ToS2))
	for s1, s2 := range s1ToS2 {
		if prev, dup := s2ToS1[s2]; dup {
			return correspondence{}, errors.Newf("S2 patch %s is paired with both %s and %s", s2, prev, s1).
				Component("catalog").
				Category(errors.CategoryResource).
				Context("resource", resource.NameCountrySeason.String()).
				Build()
		}
		s2ToS1[s2] = s1
	}
	return correspondence{s1ToS2: s1ToS2, s2ToS1: s2ToS1}, nil
}

func convert[T any](m map[string]string, column string, parse func(string) (T, error)) (map[string]T, error) {
	out := make(map[string]T, len(m))
	for k, v := range m {
		t, err := parse(v)
		if err != nil {
			return nil, errors.New(err).
				Component("catalog").
				Category(errors.CategoryResource).
				Context("resource", resource.NameCountrySeason.String()).
				Context("column", column).
				Context("patch", k).
				Build()
		}
		out[k] = t
	}
	return out, nil
}

func orEmpty[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return M{}
	}
	return m
}

// IsS1Patch reports whether name is a Sentinel-1 patch name.
func IsS1Patch(name string) bool { return patch.IsS1(name) }

// IsS2Patch reports whether name is a Sentinel-2 patch name.
func IsS2Patch(name string) bool { return patch.IsS2(name) }
