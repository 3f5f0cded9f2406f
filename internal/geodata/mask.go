package geodata

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/lineintersector"
)

// Mask restricts dataset reads to features intersecting a region geometry.
// Candidate features pass a bounding-box prefilter, then a containment test
// when the mask carries polygon parts: any vertex inside a part, or any
// segment crossing a part's boundary, accepts the feature. A mask without
// polygon parts (the degenerate-selection fallback) accepts on bounding box
// alone, and a mask over a region with no coordinates accepts everything.
type Mask struct {
	bounds *geom.Bounds
	polys  []*geom.Polygon
}

// NewMask builds a mask from a region geometry.
func NewMask(region geom.T) *Mask {
	m := &Mask{}
	// Emptiness is decided on the geometry: the bounds of a bare collection
	// carry no layout and cannot be indexed.
	if region == nil || !hasCoords(region) {
		return m
	}
	m.bounds = region.Bounds()
	m.polys = collectPolygons(region)
	return m
}

// hasCoords reports whether a geometry carries any coordinate.
func hasCoords(g geom.T) bool {
	switch t := g.(type) {
	case nil:
		return false
	case *geom.GeometryCollection:
		for _, sub := range t.Geoms() {
			if hasCoords(sub) {
				return true
			}
		}
		return false
	default:
		return len(t.FlatCoords()) > 0
	}
}

// OverlapsBounds reports whether the given bounds overlap the mask's bounds.
func (m *Mask) OverlapsBounds(minX, minY, maxX, maxY float64) bool {
	if m.bounds == nil {
		// No region at all: accept everything available.
		return true
	}
	return minX <= m.bounds.Max(0) && maxX >= m.bounds.Min(0) &&
		minY <= m.bounds.Max(1) && maxY >= m.bounds.Min(1)
}

// ContainsLine reports whether a line geometry belongs to the masked read.
func (m *Mask) ContainsLine(g geom.T) bool {
	if g == nil {
		return false
	}
	b := g.Bounds()
	if !m.OverlapsBounds(b.Min(0), b.Min(1), b.Max(0), b.Max(1)) {
		return false
	}
	if len(m.polys) == 0 {
		return true
	}

	flat := g.FlatCoords()
	stride := g.Layout().Stride()
	for i := 0; i+1 < len(flat); i += stride {
		p := geom.Coord{flat[i], flat[i+1]}
		for _, poly := range m.polys {
			if polygonContains(poly, p) {
				return true
			}
		}
	}

	// A river can cross the region with every vertex outside it; test its
	// segments against the polygon boundaries before rejecting.
	for i := 0; i+stride+1 < len(flat); i += stride {
		p := geom.Coord{flat[i], flat[i+1]}
		q := geom.Coord{flat[i+stride], flat[i+stride+1]}
		for _, poly := range m.polys {
			if segmentCrossesBoundary(poly, p, q) {
				return true
			}
		}
	}
	return false
}

// segmentCrossesBoundary tests one segment against every ring edge of a polygon.
func segmentCrossesBoundary(poly *geom.Polygon, a, b geom.Coord) bool {
	for r := 0; r < poly.NumLinearRings(); r++ {
		flat := poly.LinearRing(r).FlatCoords()
		stride := poly.Layout().Stride()
		for i := 0; i+stride+1 < len(flat); i += stride {
			c := geom.Coord{flat[i], flat[i+1]}
			d := geom.Coord{flat[i+stride], flat[i+stride+1]}
			res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{}, a, b, c, d)
			if res.HasIntersection() {
				return true
			}
		}
	}
	return false
}

// polygonContains tests a point against the polygon's outer ring and holes.
func polygonContains(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// collectPolygons gathers the single-polygon parts of a geometry.
func collectPolygons(g geom.T) []*geom.Polygon {
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
			parts = append(parts, collectPolygons(sub)...)
		}
		return parts
	default:
		return nil
	}
}
