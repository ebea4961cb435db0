package sets

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

func getLogger() logger.Logger {
	return logger.Global().Module("sets")
}

// NaturalSort sorts names in place so that embedded numbers compare by value
// ("_9_2" before "_10_2").
func NaturalSort(names []string) {
	collate.New(language.Und, collate.Numeric).SortStrings(names)
}

// WriteCSVSets builds the set described by opts and writes it as headerless,
// naturally sorted, one patch per row CSV. With separateSplits it writes
// <prefix>_train.csv, <prefix>_validation.csv and <prefix>_test.csv and fails
// when a split is empty or two splits overlap; otherwise it writes
// <prefix>.csv. It returns the written paths.
func WriteCSVSets(cat Catalog, prefix string, opts Options, separateSplits bool) ([]string, error) {
	patches, err := BuildSet(cat, opts)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(prefix, filepath.Ext(prefix))

	if !separateSplits {
		path := base + ".csv"
		if err := writeCSV(path, slices.Collect(maps.Keys(patches))); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	names := slices.Collect(maps.Keys(patches))
	bySplit := make(map[dataset.Split][]string, 3)
	for _, split := range dataset.AllSplits() {
		kept, err := FilterBySplit(cat, opts.Sensor, names, split)
		if err != nil {
			return nil, err
		}
		if len(kept) == 0 {
			return nil, errors.Newf("the %s split of the selected patches is empty", split).
				Component("sets").
				Category(errors.CategoryValidation).
				Context("split", string(split)).
				Build()
		}
		bySplit[split] = kept
	}
	if err := checkDisjoint(bySplit); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(bySplit))
	for _, split := range dataset.AllSplits() {
		path := fmt.Sprintf("%s_%s.csv", base, split)
		if err := writeCSV(path, bySplit[split]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func checkDisjoint(bySplit map[dataset.Split][]string) error {
	owner := make(map[string]dataset.Split)
	for _, split := range dataset.AllSplits() {
		for _, name := range bySplit[split] {
			if other, dup := owner[name]; dup {
				return errors.Newf("patch %s is part of the %s and the %s split", name, other, split).
					Component("sets").
					Category(errors.CategoryResource).
					Context("patch", name).
					Build()
			}
			owner[name] = split
		}
	}
	return nil
}

func writeCSV(path string, names []string) error {
	NaturalSort(names)

	f, err := os.Create(path)
	if err != nil {
		return fileError(err, path)
	}
	w := csv.NewWriter(f)
	for _, name := range names {
		if err := w.Write([]string{name}); err != nil {
			f.Close()
			return fileError(err, path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fileError(err, path)
	}
	if err := f.Close(); err != nil {
		return fileError(err, path)
	}
	getLogger().Info("wrote patch set", logger.String("path", path), logger.Int("patches", len(names)))
	return nil
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component("sets").
		Category(errors.CategoryFileIO).
		FileContext(path).
		Build()
}
