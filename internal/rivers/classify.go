// Package rivers classifies river features into size classes for styling.
package rivers

import "github.com/twpayne/go-geom"

// Size classes, ordered smallest to largest.
const (
	ClassSmall  = "small"
	ClassMedium = "medium"
	ClassLarge  = "large"
)

// Normalized-metric thresholds between the classes.
const (
	smallThreshold  = 0.33
	mediumThreshold = 0.66
)

// River is one river segment read from the hydrography dataset.
type River struct {
	// Geometry is a linestring; assumed already reprojected to the planar
	// CRS the caller renders in. Classification does not reproject.
	Geometry geom.T
	// UpstreamSqKm is the upstream drainage area (UPLAND_SKM), zero when the
	// individual value is missing.
	UpstreamSqKm float64
	// SizeClass is populated by Classify.
	SizeClass string
}

// Classify annotates every river with a size class. The per-feature metric
// is the upstream drainage area when the dataset schema carries that column
// (missing values already coerced to zero), otherwise the planar geometry
// length. Metrics are normalized by the maximum and bucketed into thirds;
// when the maximum is not positive the raw values are bucketed directly, so
// a degenerate dataset lands entirely in the small class instead of failing.
// The pass preserves feature count and order.
func Classify(features []River, upstreamColumn bool) []River {
	metrics := make([]float64, len(features))
	var maxMetric float64
	for i, r := range features {
		if upstreamColumn {
			metrics[i] = r.UpstreamSqKm
		} else {
			metrics[i] = planarLength(r.Geometry)
		}
		if metrics[i] > maxMetric {
			maxMetric = metrics[i]
		}
	}

	out := make([]River, len(features))
	copy(out, features)
	for i := range out {
		rel := metrics[i]
		if maxMetric > 0 {
			rel = metrics[i] / maxMetric
		}
		out[i].SizeClass = bucket(rel)
	}
	return out
}

// bucket maps a normalized metric to its size class. Values at or below the
// small threshold (including zero and anything negative) are small.
func bucket(rel float64) string {
	switch {
	case rel <= smallThreshold:
		return ClassSmall
	case rel <= mediumThreshold:
		return ClassMedium
	default:
		return ClassLarge
	}
}

// planarLength sums the planar length of a line geometry's parts.
func planarLength(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.LineString:
		return t.Length()
	case *geom.MultiLineString:
		return t.Length()
	case *geom.GeometryCollection:
		var sum float64
		for _, sub := range t.Geoms() {
			sum += planarLength(sub)
		}
		return sum
	default:
		return 0
	}
}
