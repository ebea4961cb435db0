// Package geo holds the planar geometry used by the metadata builder:
// patch footprints, centroids and the assignment of a patch to the nearest
// BigEarthNet country.
//
// Coordinate reference systems are identified by strings, either an
// authority code such as "EPSG:3035" or a WKT definition as found in the
// patch metadata files. Reprojection itself is delegated to a Projector.
package geo

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

const (
	// WGS84 is the CRS the builder stores footprints in by default.
	WGS84 = "EPSG:4326"
	// LAEAEurope is the equal area CRS used to compute centroids and
	// distances between patches and country borders.
	LAEAEurope = "EPSG:3035"
)

// Projector transforms points between coordinate reference systems.
// Implementations transform pts in place.
type Projector interface {
	Project(src, dst string, pts []orb.Point) error
}

// BorderSource provides the borders of the BigEarthNet countries in the
// CRS reported by CRS.
type BorderSource interface {
	Borders(ctx context.Context) ([]Border, error)
	CRS() string
}

// Border is the outline of one country.
type Border struct {
	Country  dataset.Country
	Geometry orb.Geometry
}

// Box returns the footprint polygon spanned by an upper-left and a
// lower-right corner. The ring is closed and wound counter-clockwise.
func Box(ul, lr orb.Point) orb.Polygon {
	b := orb.Bound{Min: ul, Max: ul}.Extend(lr)
	return b.ToPolygon()
}

// Centroid returns the area weighted centroid of g.
func Centroid(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return c
}

// NearestCountry returns the country whose border contains p or, when no
// border does, the one closest to p. Distances are planar, so p and the
// borders must share a projected CRS. Ties are won by the border listed
// first.
func NearestCountry(p orb.Point, borders []Border) (dataset.Country, float64, error) {
	if len(borders) == 0 {
		return "", 0, errors.Newf("no country borders to match against").
			Component("geo").
			Category(errors.CategoryGeometry).
			Build()
	}

	best := -1
	bestDist := math.Inf(1)
	for i, b := range borders {
		if contains(b.Geometry, p) {
			return b.Country, 0, nil
		}
		if d := planar.DistanceFrom(b.Geometry, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", 0, errors.Newf("point %v has no finite distance to any border", p).
			Component("geo").
			Category(errors.CategoryGeometry).
			Build()
	}
	return borders[best].Country, bestDist, nil
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Bound:
		return g.Contains(p)
	case orb.Collection:
		for _, sub := range g {
			if contains(sub, p) {
				return true
			}
		}
	}
	return false
}

// ProjectGeometry returns a copy of g transformed from src to dst.
func ProjectGeometry(pr Projector, src, dst string, g orb.Geometry) (orb.Geometry, error) {
	if src == dst {
		return orb.Clone(g), nil
	}
	out := orb.Clone(g)
	if err := eachPointSlice(out, func(pts []orb.Point) error {
		return pr.Project(src, dst, pts)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// eachPointSlice calls fn with every point slice of g. The slices alias g,
// so fn may modify them in place.
func eachPointSlice(g orb.Geometry, fn func([]orb.Point) error) error {
	switch g := g.(type) {
	case orb.Point:
		return errors.Newf("a single point cannot be transformed in place").
			Component("geo").
			Category(errors.CategoryGeometry).
			Build()
	case orb.MultiPoint:
		return fn(g)
	case orb.LineString:
		return fn(g)
	case orb.Ring:
		return fn(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if err := fn(ls); err != nil {
				return err
			}
		}
	case orb.Polygon:
		for _, r := range g {
			if err := fn(r); err != nil {
				return err
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, r := range poly {
				if err := fn(r); err != nil {
					return err
				}
			}
		}
	case orb.Collection:
		for _, sub := range g {
			if err := eachPointSlice(sub, fn); err != nil {
				return err
			}
		}
	default:
		return errors.Newf("unsupported geometry type %T", g).
			Component("geo").
			Category(errors.CategoryGeometry).
			Build()
	}
	return nil
}

// ProjectPoint transforms a single point.
func ProjectPoint(pr Projector, src, dst string, p orb.Point) (orb.Point, error) {
	if src == dst {
		return p, nil
	}
	pts := []orb.Point{p}
	if err := pr.Project(src, dst, pts); err != nil {
		return orb.Point{}, err
	}
	return pts[0], nil
}

// ProjectBorders transforms every border into dst.
func ProjectBorders(pr Projector, src, dst string, borders []Border) ([]Border, error) {
	out := make([]Border, len(borders))
	for i, b := range borders {
		g, err := ProjectGeometry(pr, src, dst, b.Geometry)
		if err != nil {
			return nil, err
		}
		out[i] = Border{Country: b.Country, Geometry: g}
	}
	return out, nil
}
