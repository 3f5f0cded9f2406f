package basemap

import "math"

// originShift is half the Web Mercator world extent in meters.
const originShift = 2.0 * math.Pi * 6378137.0 / 2.0

// ZoomFor picks a tile zoom level from the rendered map width in meters.
// Wide extents get coarse tiles so continental maps stay at a handful of
// tile fetches.
func ZoomFor(widthMeters float64) int {
	switch {
	case widthMeters <= 0:
		return 6
	case widthMeters > 5_000_000:
		return 4
	case widthMeters > 2_000_000:
		return 5
	case widthMeters > 1_000_000:
		return 6
	case widthMeters > 500_000:
		return 7
	case widthMeters > 100_000:
		return 8
	default:
		return 10
	}
}

// TileAt returns the tile indices containing a Web Mercator coordinate at
// the given zoom.
func TileAt(x, y float64, zoom int) (tx, ty int) {
	scale := float64(int(1) << zoom)
	tx = int(math.Floor((x + originShift) / (2.0 * originShift) * scale))
	ty = int(math.Floor((originShift - y) / (2.0 * originShift) * scale))
	max := int(scale) - 1
	tx = clampInt(tx, 0, max)
	ty = clampInt(ty, 0, max)
	return tx, ty
}

// PixelAt returns the global pixel position of a Web Mercator coordinate at
// the given zoom (256px tiles).
func PixelAt(x, y float64, zoom int) (px, py float64) {
	scale := float64(int(1) << zoom)
	px = (x + originShift) / (2.0 * originShift) * TileSize * scale
	py = (originShift - y) / (2.0 * originShift) * TileSize * scale
	return px, py
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
