package geodata

import (
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// shapeToGeom converts a go-shp geometry to a go-geom geometry in EPSG:4326.
// Returns nil for unsupported or empty shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	if shape == nil {
		return nil
	}

	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)

	case *shp.PolyLine:
		return polyLineToMultiLineString(s)

	case *shp.Polygon:
		return polygonToMultiPolygon(s)

	default:
		return nil
	}
}

// polyLineToMultiLineString converts a shapefile PolyLine to a geom.MultiLineString.
func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY).SetSRID(4326)

	for i := int32(0); i < pl.NumParts; i++ {
		start := pl.Parts[i]
		var end int32
		if i+1 < pl.NumParts {
			end = pl.Parts[i+1]
		} else {
			end = int32(len(pl.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, pl.Points[j].X, pl.Points[j].Y)
		}

		ls := geom.NewLineStringFlat(geom.XY, flat)
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("geodata: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile winding rules group the rings: clockwise rings open a new outer
// polygon, counter-clockwise rings are holes in the preceding outer ring.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var polys []*geom.Polygon
	var current *geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 {
			// A closed ring needs at least a triangle plus the closing point.
			zap.L().Debug("geodata: skipping degenerate ring", zap.Int32("part", i))
			continue
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if xy.IsRingCounterClockwise(geom.XY, flat) && current != nil {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("geodata: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			current = nil
			continue
		}
		polys = append(polys, current)
	}

	if len(polys) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for _, poly := range polys {
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon part", zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
