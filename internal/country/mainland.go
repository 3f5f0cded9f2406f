package country

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/projection"
)

// ExtractMainland returns the largest landmass of the selection, chosen by
// planar area in Web Mercator. Area ranking happens in EPSG:3857 on purpose:
// it matches the projection the rendering pipeline draws in, even though
// Mercator inflates area away from the equator. Ties go to the
// first-encountered part, so the result is stable for a given dataset order.
func ExtractMainland(selection []Feature) (Mainland, error) {
	var parts []*geom.Polygon
	for _, f := range selection {
		if f.Geometry == nil {
			continue
		}
		projected, err := projection.ToWebMercator(f.Geometry)
		if err != nil {
			return Mainland{}, eris.Wrap(err, "country: project selection")
		}
		parts = append(parts, flattenPolygons(projected)...)
	}

	// Nothing polygonal anywhere: degrade to "use everything available"
	// rather than failing the request.
	if len(parts) == 0 {
		zap.L().Warn("country: no polygon parts in selection, using full selection as mainland")
		all := geom.NewGeometryCollection()
		for _, f := range selection {
			if f.Geometry == nil {
				continue
			}
			if err := all.Push(f.Geometry); err != nil {
				return Mainland{}, eris.Wrap(err, "country: collect fallback geometry")
			}
		}
		all.SetSRID(projection.SRIDGeographic)
		return Mainland{Region: all, Mask: all}, nil
	}

	largest := parts[0]
	largestArea := largest.Area()
	for _, p := range parts[1:] {
		if a := p.Area(); a > largestArea {
			largest = p
			largestArea = a
		}
	}

	region, err := projection.ToGeographic(largest)
	if err != nil {
		return Mainland{}, eris.Wrap(err, "country: unproject mainland")
	}

	return Mainland{Region: region, Mask: region}, nil
}

// flattenPolygons decomposes a geometry into its single-polygon parts.
func flattenPolygons(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{t}
	case *geom.MultiPolygon:
		parts := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			parts = append(parts, t.Polygon(i))
		}
		return parts
	case *geom.GeometryCollection:
		var parts []*geom.Polygon
		for _, sub := range t.Geoms() {
			parts = append(parts, flattenPolygons(sub)...)
		}
		return parts
	default:
		return nil
	}
}
