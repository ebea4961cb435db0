package geo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

func square(minX, minY, size float64) orb.Polygon {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{minX + size, minY + size}}.ToPolygon()
}

// shiftProjector moves every point by a fixed offset.
type shiftProjector struct {
	dx, dy float64
	calls  int
}

func (s *shiftProjector) Project(_, _ string, pts []orb.Point) error {
	s.calls++
	for i := range pts {
		pts[i][0] += s.dx
		pts[i][1] += s.dy
	}
	return nil
}

func TestBoxNormalisesCorners(t *testing.T) {
	t.Parallel()

	// upper-left has the larger northing in projected coordinates
	poly := Box(orb.Point{400000, 5500000}, orb.Point{401200, 5498800})
	require.Len(t, poly, 1)
	ring := poly[0]
	require.Len(t, ring, 5)
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.Bound{Min: orb.Point{400000, 5498800}, Max: orb.Point{401200, 5500000}}, poly.Bound())
	assert.InDelta(t, 1200.0*1200.0, ringArea(ring), 1e-6)
}

func TestCentroid(t *testing.T) {
	t.Parallel()

	c := Centroid(Box(orb.Point{0, 10}, orb.Point{10, 0}))
	assert.InDelta(t, 5.0, c.X(), 1e-9)
	assert.InDelta(t, 5.0, c.Y(), 1e-9)
}

func TestNearestCountry(t *testing.T) {
	t.Parallel()

	borders := []Border{
		{Country: dataset.Austria, Geometry: square(0, 0, 10)},
		{Country: dataset.Belgium, Geometry: orb.MultiPolygon{square(20, 0, 10)}},
	}

	tests := []struct {
		name     string
		point    orb.Point
		want     dataset.Country
		wantDist float64
	}{
		{"inside first", orb.Point{5, 5}, dataset.Austria, 0},
		{"inside multipolygon", orb.Point{25, 5}, dataset.Belgium, 0},
		{"closer to second", orb.Point{17, 5}, dataset.Belgium, 3},
		{"tie goes to first", orb.Point{15, 5}, dataset.Austria, 5},
		{"below both", orb.Point{1, -2}, dataset.Austria, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, dist, err := NearestCountry(tt.point, borders)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, tt.wantDist, dist, 1e-9)
		})
	}
}

func TestNearestCountryWithoutBorders(t *testing.T) {
	t.Parallel()

	_, _, err := NearestCountry(orb.Point{0, 0}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryGeometry))
}

func TestProjectGeometryLeavesInputUntouched(t *testing.T) {
	t.Parallel()

	pr := &shiftProjector{dx: 100, dy: -100}
	in := orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)}
	out, err := ProjectGeometry(pr, "EPSG:32633", LAEAEurope, in)
	require.NoError(t, err)

	assert.Equal(t, 2, pr.calls)
	assert.Equal(t, orb.Point{0, 0}, in[0][0][0])
	assert.Equal(t, orb.Point{100, -100}, out.(orb.MultiPolygon)[0][0][0])
	assert.Equal(t, orb.Point{105, -95}, out.(orb.MultiPolygon)[1][0][0])
}

func TestProjectGeometrySameCRSIsCopy(t *testing.T) {
	t.Parallel()

	pr := &shiftProjector{dx: 1}
	in := square(0, 0, 1)
	out, err := ProjectGeometry(pr, WGS84, WGS84, in)
	require.NoError(t, err)
	assert.Zero(t, pr.calls)
	assert.Equal(t, in, out)

	out.(orb.Polygon)[0][0] = orb.Point{9, 9}
	assert.Equal(t, orb.Point{0, 0}, in[0][0])
}

func TestProjectPointAndBorders(t *testing.T) {
	t.Parallel()

	pr := &shiftProjector{dx: 1, dy: 2}
	p, err := ProjectPoint(pr, WGS84, LAEAEurope, orb.Point{1, 1})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{2, 3}, p)

	borders, err := ProjectBorders(pr, WGS84, LAEAEurope, []Border{{Country: dataset.Ireland, Geometry: square(0, 0, 1)}})
	require.NoError(t, err)
	require.Len(t, borders, 1)
	assert.Equal(t, dataset.Ireland, borders[0].Country)
	assert.Equal(t, orb.Point{1, 2}, borders[0].Geometry.(orb.Polygon)[0][0])

	_, err = ProjectGeometry(pr, WGS84, LAEAEurope, orb.Point{0, 0})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryGeometry))
}

const bordersJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ISO_A2": "FR", "NAME": "France"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"ISO_A2": "PT", "NAME": "Portugal"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[-9,37],[-7,37],[-7,42],[-9,42],[-9,37]]]]}},
    {"type": "Feature", "properties": {"ISO_A2": "CH", "NAME": "Switzerland"},
     "geometry": {"type": "Polygon", "coordinates": [[[6,46],[10,46],[10,48],[6,48],[6,46]]]}}
  ]
}`

func TestDecodeBordersKeepsBigEarthNetCountries(t *testing.T) {
	t.Parallel()

	borders, err := DecodeBorders(strings.NewReader(bordersJSON))
	require.NoError(t, err)
	require.Len(t, borders, 2)
	assert.Equal(t, dataset.Portugal, borders[0].Country)
	assert.Equal(t, dataset.Switzerland, borders[1].Country)
	assert.IsType(t, orb.MultiPolygon{}, borders[0].Geometry)

	got, _, err := NearestCountry(orb.Point{8, 47}, borders)
	require.NoError(t, err)
	assert.Equal(t, dataset.Switzerland, got)
}

func TestDecodeBordersRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeBorders(strings.NewReader(`{"type": "FeatureCollection", "features": [`))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestEncodedBordersDecodeAgain(t *testing.T) {
	t.Parallel()

	in := []Border{{Country: dataset.Kosovo, Geometry: square(20, 42, 1)}}
	var buf bytes.Buffer
	require.NoError(t, EncodeBorders(&buf, in))
	assert.Contains(t, buf.String(), `"ISO_A2":"XK"`)

	out, err := DecodeBorders(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, dataset.Kosovo, out[0].Country)
}

func TestGeoJSONBorders(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "borders.geojson")
	require.NoError(t, os.WriteFile(path, []byte(bordersJSON), 0o600))

	src := GeoJSONBorders{Path: path}
	assert.Equal(t, WGS84, src.CRS())
	borders, err := src.Borders(t.Context())
	require.NoError(t, err)
	assert.Len(t, borders, 2)

	_, err = GeoJSONBorders{Path: filepath.Join(t.TempDir(), "missing.geojson")}.Borders(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = src.Borders(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func ringArea(r orb.Ring) float64 {
	var a float64
	for i := 0; i < len(r)-1; i++ {
		a += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}
