// Package gdal implements the geo interfaces on top of GDAL/OGR: coordinate
// transformations through OSR and country borders read from the zipped
// Natural Earth admin-0 shapefile.
package gdal

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/geo"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

func getLogger() logger.Logger {
	return logger.Global().Module("geo").Module("gdal")
}

// Projector transforms points with OSR. Transformations are created on
// first use per (src, dst) pair and reused. Safe for concurrent use;
// transformations are serialised since OGR transforms are not re-entrant.
type Projector struct {
	mu         sync.Mutex
	refs       map[string]*godal.SpatialRef
	transforms map[[2]string]*godal.Transform
}

// NewProjector creates an empty projector. Call Close to release the GDAL
// handles.
func NewProjector() *Projector {
	register()
	return &Projector{
		refs:       make(map[string]*godal.SpatialRef),
		transforms: make(map[[2]string]*godal.Transform),
	}
}

// Project implements geo.Projector. src and dst are either authority codes
// such as "EPSG:3035" or WKT definitions.
func (p *Projector) Project(src, dst string, pts []orb.Point) error {
	if len(pts) == 0 || src == dst {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tr, err := p.transform(src, dst)
	if err != nil {
		return err
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt[0], pt[1]
	}
	ok := make([]bool, len(pts))
	if err := tr.TransformEx(xs, ys, nil, ok); err != nil {
		return projectionError(err, src, dst)
	}
	for i := range pts {
		if !ok[i] {
			return projectionError(fmt.Errorf("point %d (%v) could not be transformed", i, pts[i]), src, dst)
		}
		pts[i] = orb.Point{xs[i], ys[i]}
	}
	return nil
}

func (p *Projector) transform(src, dst string) (*godal.Transform, error) {
	key := [2]string{src, dst}
	if tr, ok := p.transforms[key]; ok {
		return tr, nil
	}
	srcSR, err := p.spatialRef(src)
	if err != nil {
		return nil, err
	}
	dstSR, err := p.spatialRef(dst)
	if err != nil {
		return nil, err
	}
	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return nil, projectionError(err, src, dst)
	}
	p.transforms[key] = tr
	return tr, nil
}

func (p *Projector) spatialRef(def string) (*godal.SpatialRef, error) {
	if sr, ok := p.refs[def]; ok {
		return sr, nil
	}
	sr, err := NewSpatialRef(def)
	if err != nil {
		return nil, err
	}
	p.refs[def] = sr
	return sr, nil
}

// Close releases all cached transformations and spatial references.
func (p *Projector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, tr := range p.transforms {
		tr.Close()
		delete(p.transforms, k)
	}
	for k, sr := range p.refs {
		sr.Close()
		delete(p.refs, k)
	}
}

// NewSpatialRef parses an "EPSG:<code>" authority string or a WKT
// definition.
func NewSpatialRef(def string) (*godal.SpatialRef, error) {
	register()
	trimmed := strings.TrimSpace(def)
	if code, ok := strings.CutPrefix(strings.ToUpper(trimmed), "EPSG:"); ok {
		n, err := strconv.Atoi(code)
		if err != nil {
			return nil, crsError(fmt.Errorf("invalid EPSG code %q", code), def)
		}
		sr, err := godal.NewSpatialRefFromEPSG(n)
		if err != nil {
			return nil, crsError(err, def)
		}
		return sr, nil
	}
	sr, err := godal.NewSpatialRefFromWKT(trimmed)
	if err != nil {
		return nil, crsError(err, def)
	}
	return sr, nil
}

// NaturalEarth reads country borders from the Natural Earth admin-0
// countries shapefile, zipped as published or extracted.
type NaturalEarth struct {
	Path string
}

// CRS implements geo.BorderSource.
func (NaturalEarth) CRS() string { return geo.WGS84 }

// Borders implements geo.BorderSource. Only features whose ISO_A2 field
// names a BigEarthNet country are kept, in layer order.
func (n NaturalEarth) Borders(ctx context.Context) ([]geo.Border, error) {
	register()
	name := vsiPath(n.Path)
	ds, err := godal.Open(name, godal.VectorOnly())
	if err != nil {
		return nil, errors.New(err).
			Component("geo").
			Category(errors.CategoryFileIO).
			FileContext(n.Path).
			Build()
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, errors.Newf("%s contains no vector layer", n.Path).
			Component("geo").
			Category(errors.CategoryFileParsing).
			FileContext(n.Path).
			Build()
	}

	var borders []geo.Border
	scanned := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feat := layers[0].NextFeature()
		if feat == nil {
			break
		}
		scanned++
		b, ok, err := border(feat)
		feat.Close()
		if err != nil {
			return nil, errors.New(err).
				Component("geo").
				Category(errors.CategoryGeometry).
				FileContext(n.Path).
				Build()
		}
		if ok {
			borders = append(borders, b)
		}
	}

	getLogger().Info("country borders loaded",
		logger.String("path", n.Path),
		logger.Int("features", scanned),
		logger.Int("kept", len(borders)))
	return borders, nil
}

func border(feat *godal.Feature) (geo.Border, bool, error) {
	field, ok := feat.Fields()[geo.ISOA2Property]
	if !ok {
		return geo.Border{}, false, nil
	}
	country, ok := dataset.CountryFromISOA2(field.String())
	if !ok {
		return geo.Border{}, false, nil
	}

	g := feat.Geometry()
	defer g.Close()
	js, err := g.GeoJSON()
	if err != nil {
		return geo.Border{}, false, err
	}
	parsed, err := geojson.UnmarshalGeometry([]byte(js))
	if err != nil {
		return geo.Border{}, false, err
	}
	return geo.Border{Country: country, Geometry: parsed.Coordinates}, true, nil
}

// vsiPath routes zip archives through GDAL's virtual file system. The
// shapefile inside the archive shares the archive's base name.
func vsiPath(path string) string {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return path
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return "/vsizip/" + filepath.ToSlash(path) + "/" + base + ".shp"
}

func crsError(err error, def string) error {
	return errors.New(err).
		Component("geo").
		Category(errors.CategoryValidation).
		Context("crs", abbreviate(def)).
		Build()
}

func projectionError(err error, src, dst string) error {
	return errors.New(err).
		Component("geo").
		Category(errors.CategoryGeometry).
		Context("src_crs", abbreviate(src)).
		Context("dst_crs", abbreviate(dst)).
		Build()
}

// abbreviate keeps WKT definitions readable in error context.
func abbreviate(def string) string {
	const maxLen = 64
	if len(def) <= maxLen {
		return def
	}
	return def[:maxLen] + "..."
}

var (
	_ geo.Projector    = (*Projector)(nil)
	_ geo.BorderSource = NaturalEarth{}
)
