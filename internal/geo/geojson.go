package geo

import (
	"context"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// ISOA2Property is the feature property holding the ISO 3166-1 alpha-2
// country code in Natural Earth data.
const ISOA2Property = "ISO_A2"

// DecodeBorders reads a GeoJSON feature collection and keeps the features
// whose ISO_A2 property names a BigEarthNet country, in input order.
func DecodeBorders(r io.Reader) ([]Border, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(err).
			Component("geo").
			Category(errors.CategoryFileIO).
			Build()
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.New(err).
			Component("geo").
			Category(errors.CategoryFileParsing).
			Build()
	}

	var borders []Border
	for _, f := range fc.Features {
		country, ok := dataset.CountryFromISOA2(f.Properties.MustString(ISOA2Property, ""))
		if !ok || f.Geometry == nil {
			continue
		}
		borders = append(borders, Border{Country: country, Geometry: f.Geometry})
	}
	getLogger().Debug("borders decoded",
		logger.Int("features", len(fc.Features)),
		logger.Int("kept", len(borders)))
	return borders, nil
}

// GeoJSONBorders is a BorderSource backed by a GeoJSON file in WGS84.
type GeoJSONBorders struct {
	Path string
}

// Borders implements BorderSource.
func (g GeoJSONBorders) Borders(ctx context.Context) ([]Border, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(g.Path)
	if err != nil {
		return nil, errors.New(err).
			Component("geo").
			Category(errors.CategoryFileIO).
			FileContext(g.Path).
			Build()
	}
	defer f.Close()
	return DecodeBorders(f)
}

// CRS implements BorderSource.
func (GeoJSONBorders) CRS() string { return WGS84 }

// EncodeBorders writes borders as a GeoJSON feature collection carrying
// the ISO_A2 code and the country name.
func EncodeBorders(w io.Writer, borders []Border) error {
	fc := geojson.NewFeatureCollection()
	for _, b := range borders {
		f := geojson.NewFeature(b.Geometry)
		f.Properties[ISOA2Property] = b.Country.ISOA2()
		f.Properties["NAME"] = string(b.Country)
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.New(err).
			Component("geo").
			Category(errors.CategoryGeometry).
			Build()
	}
	if _, err := w.Write(data); err != nil {
		return errors.New(err).
			Component("geo").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}

func getLogger() logger.Logger {
	return logger.Global().Module("geo")
}
