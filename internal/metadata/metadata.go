// Package metadata reads the per-patch _labels_metadata.json files of the
// BigEarthNet-S1 and BigEarthNet-S2 archives.
//
// The readers verify that every expected key is present, since keys have been
// lost from archive copies before, and keep only the expected keys so that
// locally added entries never leak into downstream processing.
package metadata

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/antonholmquist/jason"
	"github.com/paulmach/orb"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// S1Keys are the top-level keys of a BigEarthNet-S1 v1.0 metadata file.
var S1Keys = []string{
	"acquisition_time",
	"coordinates",
	"corresponding_s2_patch",
	"labels",
	"projection",
	"scene_source",
}

// S2Keys are the top-level keys of a BigEarthNet-S2 v1.0 metadata file. Note
// acquisition_date where S1 has acquisition_time.
var S2Keys = []string{
	"acquisition_date",
	"coordinates",
	"labels",
	"projection",
	"tile_source",
}

// Coordinates are the patch corners in the projection of the patch.
type Coordinates struct {
	ULX float64 `json:"ulx"`
	ULY float64 `json:"uly"`
	LRX float64 `json:"lrx"`
	LRY float64 `json:"lry"`
}

// Bound returns the footprint of the patch as an axis aligned box.
func (c Coordinates) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.ULX, c.LRY},
		Max: orb.Point{c.LRX, c.ULY},
	}
}

// S1 is the content of a BigEarthNet-S1 metadata file.
type S1 struct {
	AcquisitionTime      string      `json:"acquisition_time"`
	Coordinates          Coordinates `json:"coordinates"`
	CorrespondingS2Patch string      `json:"corresponding_s2_patch"`
	Labels               []string    `json:"labels"`
	Projection           string      `json:"projection"`
	SceneSource          string      `json:"scene_source"`
}

// S2 is the content of a BigEarthNet-S2 metadata file.
type S2 struct {
	AcquisitionDate string      `json:"acquisition_date"`
	Coordinates     Coordinates `json:"coordinates"`
	Labels          []string    `json:"labels"`
	Projection      string      `json:"projection"`
	TileSource      string      `json:"tile_source"`
}

// ReadS1 reads an S1 metadata file.
func ReadS1(path string) (*S1, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeS1(f, path)
}

// ReadS2 reads an S2 metadata file.
func ReadS2(path string) (*S2, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeS2(f, path)
}

// DecodeS1 decodes S1 metadata. Version 1.0 of the S1 archive names the lower
// right y coordinate "lly"; it is read as LRY and overrides an "lry" entry.
func DecodeS1(r io.Reader) (*S1, error) {
	return decodeS1(r, "")
}

func decodeS1(r io.Reader, path string) (*S1, error) {
	obj, err := decode(r, path, S1Keys)
	if err != nil {
		return nil, err
	}
	p := parser{obj: obj, path: path}
	m := &S1{
		AcquisitionTime:      p.str("acquisition_time"),
		CorrespondingS2Patch: p.str("corresponding_s2_patch"),
		Labels:               p.strs("labels"),
		Projection:           p.str("projection"),
		SceneSource:          p.str("scene_source"),
		Coordinates:          p.coordinates(true),
	}
	if p.err != nil {
		return nil, p.err
	}
	return m, nil
}

// DecodeS2 decodes S2 metadata.
func DecodeS2(r io.Reader) (*S2, error) {
	return decodeS2(r, "")
}

func decodeS2(r io.Reader, path string) (*S2, error) {
	obj, err := decode(r, path, S2Keys)
	if err != nil {
		return nil, err
	}
	p := parser{obj: obj, path: path}
	m := &S2{
		AcquisitionDate: p.str("acquisition_date"),
		Labels:          p.strs("labels"),
		Projection:      p.str("projection"),
		TileSource:      p.str("tile_source"),
		Coordinates:     p.coordinates(false),
	}
	if p.err != nil {
		return nil, p.err
	}
	return m, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("metadata").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return f, nil
}

func decode(r io.Reader, path string, expected []string) (*jason.Object, error) {
	obj, err := jason.NewObjectFromReader(r)
	if err != nil {
		return nil, parseError(fmt.Errorf("invalid metadata JSON: %w", err), path)
	}

	present := obj.Map()
	var missing []string
	for _, key := range expected {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errors.Newf("metadata is missing entries %v", missing).
			Component("metadata").
			Category(errors.CategoryFileParsing).
			Context("missing_keys", missing).
			FileContext(path).
			Build()
	}
	return obj, nil
}

// parser extracts typed values and keeps the first error.
type parser struct {
	obj  *jason.Object
	path string
	err  error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = parseError(fmt.Errorf("metadata entry %q: %w", key, err), p.path)
	}
}

func (p *parser) str(key string) string {
	s, err := p.obj.GetString(key)
	if err != nil {
		p.fail(key, err)
	}
	return s
}

func (p *parser) strs(key string) []string {
	s, err := p.obj.GetStringArray(key)
	if err != nil {
		p.fail(key, err)
	}
	return s
}

func (p *parser) num(keys ...string) float64 {
	f, err := p.obj.GetFloat64(keys...)
	if err != nil {
		p.fail(keys[len(keys)-1], err)
	}
	return f
}

func (p *parser) coordinates(lrFromLLY bool) Coordinates {
	c := Coordinates{
		ULX: p.num("coordinates", "ulx"),
		ULY: p.num("coordinates", "uly"),
		LRX: p.num("coordinates", "lrx"),
	}
	lry := "lry"
	if lrFromLLY {
		// lly replaces lry whenever it is present
		if _, err := p.obj.GetValue("coordinates", "lly"); err == nil {
			lry = "lly"
		}
	}
	c.LRY = p.num("coordinates", lry)
	return c
}

func parseError(err error, path string) error {
	return errors.New(err).
		Component("metadata").
		Category(errors.CategoryFileParsing).
		FileContext(path).
		Build()
}
