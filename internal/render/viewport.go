package render

import "github.com/twpayne/go-geom"

// boundsBufferFrac pads the map extent around the country bounds.
const boundsBufferFrac = 0.03

// degenerateBufferMeters replaces the proportional buffer when the extent
// collapses to a point or line.
const degenerateBufferMeters = 10_000.0

// viewport maps Web Mercator coordinates onto image pixels, preserving
// aspect ratio and flipping the Y axis.
type viewport struct {
	minX, minY, maxX, maxY float64
	width, height          int
	scale                  float64
	offsetX, offsetY       float64
}

// newViewport builds a viewport for the buffered bounds of a geometry. A nil
// bounds (no coordinates anywhere in the region) collapses to the degenerate
// extent around the origin.
func newViewport(b *geom.Bounds, width, height int) viewport {
	var minX, minY, maxX, maxY float64
	if b != nil {
		minX, minY = b.Min(0), b.Min(1)
		maxX, maxY = b.Max(0), b.Max(1)
	}

	xBuffer := (maxX - minX) * boundsBufferFrac
	if maxX-minX <= 0 {
		xBuffer = degenerateBufferMeters
	}
	yBuffer := (maxY - minY) * boundsBufferFrac
	if maxY-minY <= 0 {
		yBuffer = degenerateBufferMeters
	}
	minX, maxX = minX-xBuffer, maxX+xBuffer
	minY, maxY = minY-yBuffer, maxY+yBuffer

	v := viewport{minX: minX, minY: minY, maxX: maxX, maxY: maxY, width: width, height: height}

	sx := float64(width) / (maxX - minX)
	sy := float64(height) / (maxY - minY)
	v.scale = sx
	if sy < sx {
		v.scale = sy
	}
	// Center the extent in the image.
	v.offsetX = (float64(width) - (maxX-minX)*v.scale) / 2
	v.offsetY = (float64(height) - (maxY-minY)*v.scale) / 2
	return v
}

// toPixel converts a Web Mercator coordinate to image pixel coordinates.
func (v viewport) toPixel(x, y float64) (px, py float64) {
	px = (x-v.minX)*v.scale + v.offsetX
	py = (v.maxY-y)*v.scale + v.offsetY
	return px, py
}

// toMercator converts image pixel coordinates back to Web Mercator.
func (v viewport) toMercator(px, py float64) (x, y float64) {
	x = (px-v.offsetX)/v.scale + v.minX
	y = v.maxY - (py-v.offsetY)/v.scale
	return x, y
}

// widthMeters returns the buffered extent width.
func (v viewport) widthMeters() float64 {
	return v.maxX - v.minX
}

// metersPerPixel returns the map resolution.
func (v viewport) metersPerPixel() float64 {
	return 1 / v.scale
}
