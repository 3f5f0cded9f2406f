// Package projection implements spherical Web Mercator (EPSG:3857)
// forward and inverse transforms over go-geom geometries.
package projection

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// SRIDs used throughout the pipeline.
const (
	SRIDGeographic  = 4326
	SRIDWebMercator = 3857
)

// earthRadius is the WGS84 semi-major axis used by spherical Web Mercator.
const earthRadius = 6378137.0

// Forward converts a lon/lat pair (degrees) to Web Mercator meters.
func Forward(lon, lat float64) (x, y float64) {
	x = lon * math.Pi / 180.0 * earthRadius
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) * earthRadius
	return x, y
}

// Inverse converts Web Mercator meters back to a lon/lat pair (degrees).
func Inverse(x, y float64) (lon, lat float64) {
	lon = x / earthRadius * 180.0 / math.Pi
	lat = 2.0*math.Atan(math.Exp(y/earthRadius))*180.0/math.Pi - 90.0
	return lon, lat
}

// ToWebMercator reprojects a geographic (EPSG:4326) geometry to EPSG:3857.
func ToWebMercator(g geom.T) (geom.T, error) {
	return transform(g, SRIDWebMercator, func(x, y float64) (float64, float64) {
		return Forward(x, y)
	})
}

// ToGeographic reprojects an EPSG:3857 geometry back to EPSG:4326.
func ToGeographic(g geom.T) (geom.T, error) {
	return transform(g, SRIDGeographic, func(x, y float64) (float64, float64) {
		return Inverse(x, y)
	})
}

// transform rebuilds g with every coordinate pair mapped through fn.
// The stride of the source layout is preserved; only X and Y change.
func transform(g geom.T, srid int, fn func(x, y float64) (float64, float64)) (geom.T, error) {
	if g == nil {
		return nil, nil
	}

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(t.Layout(), mapFlat(t.Layout(), t.FlatCoords(), fn)).SetSRID(srid), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(t.Layout(), mapFlat(t.Layout(), t.FlatCoords(), fn)).SetSRID(srid), nil
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(t.Layout(), mapFlat(t.Layout(), t.FlatCoords(), fn), t.Ends()).SetSRID(srid), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(t.Layout(), mapFlat(t.Layout(), t.FlatCoords(), fn), t.Ends()).SetSRID(srid), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(t.Layout(), mapFlat(t.Layout(), t.FlatCoords(), fn), t.Endss()).SetSRID(srid), nil
	case *geom.GeometryCollection:
		gc := geom.NewGeometryCollection()
		for _, sub := range t.Geoms() {
			mapped, err := transform(sub, srid, fn)
			if err != nil {
				return nil, err
			}
			if err := gc.Push(mapped); err != nil {
				return nil, eris.Wrap(err, "projection: rebuild collection")
			}
		}
		gc.SetSRID(srid)
		return gc, nil
	default:
		return nil, eris.Errorf("projection: unsupported geometry type %T", g)
	}
}

// mapFlat applies fn to each coordinate pair of a flat coordinate slice.
func mapFlat(layout geom.Layout, flat []float64, fn func(x, y float64) (float64, float64)) []float64 {
	stride := layout.Stride()
	out := make([]float64, len(flat))
	copy(out, flat)
	for i := 0; i+1 < len(out); i += stride {
		out[i], out[i+1] = fn(out[i], out[i+1])
	}
	return out
}
