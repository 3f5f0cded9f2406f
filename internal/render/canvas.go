package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/twpayne/go-geom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// blendPixel alpha-composites c over the canvas pixel at (x, y).
func blendPixel(img *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if x < 0 || y < 0 || x >= img.Rect.Dx() || y >= img.Rect.Dy() {
		return
	}
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	dst := img.RGBAAt(x, y)
	blend := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-alpha) + float64(s)*alpha)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: blend(dst.R, c.R),
		G: blend(dst.G, c.G),
		B: blend(dst.B, c.B),
		A: 0xff,
	})
}

// stampDisc paints a filled disc, used to give strokes their width.
func stampDisc(img *image.RGBA, cx, cy, radius float64, c color.RGBA, alpha float64) {
	if radius < 0.5 {
		radius = 0.5
	}
	r := int(math.Ceil(radius))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float64(dx*dx+dy*dy) <= radius*radius {
				blendPixel(img, int(cx)+dx, int(cy)+dy, c, alpha)
			}
		}
	}
}

// strokeSegment draws a thick segment by stamping discs along its length.
func strokeSegment(img *image.RGBA, x0, y0, x1, y1, width float64, c color.RGBA, alpha float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	step := width / 3
	if step < 0.5 {
		step = 0.5
	}
	n := int(length/step) + 1
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		stampDisc(img, x0+dx*t, y0+dy*t, width/2, c, alpha)
	}
}

// strokePath draws a polyline given in image coordinates.
func strokePath(img *image.RGBA, pts [][2]float64, width float64, c color.RGBA, alpha float64) {
	for i := 1; i < len(pts); i++ {
		strokeSegment(img, pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1], width, c, alpha)
	}
}

// fillPolygon scanline-fills a polygon (even-odd across all rings) projected
// through the viewport.
func fillPolygon(img *image.RGBA, poly *geom.Polygon, v viewport, c color.RGBA, alpha float64) {
	type edge struct{ x0, y0, x1, y1 float64 }
	var edges []edge

	for r := 0; r < poly.NumLinearRings(); r++ {
		flat := poly.LinearRing(r).FlatCoords()
		stride := poly.Layout().Stride()
		var prevX, prevY float64
		first := true
		var firstX, firstY float64
		for i := 0; i+1 < len(flat); i += stride {
			px, py := v.toPixel(flat[i], flat[i+1])
			if first {
				firstX, firstY = px, py
				first = false
			} else {
				edges = append(edges, edge{prevX, prevY, px, py})
			}
			prevX, prevY = px, py
		}
		if !first {
			edges = append(edges, edge{prevX, prevY, firstX, firstY})
		}
	}

	for y := 0; y < img.Rect.Dy(); y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for _, e := range edges {
			y0, y1 := e.y0, e.y1
			x0, x1 := e.x0, e.x1
			if y0 == y1 {
				continue
			}
			if (fy >= y0 && fy < y1) || (fy >= y1 && fy < y0) {
				t := (fy - y0) / (y1 - y0)
				xs = append(xs, x0+t*(x1-x0))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x < int(math.Floor(xs[i+1]))+1; x++ {
				blendPixel(img, x, y, c, alpha)
			}
		}
	}
}

// strokeRing outlines every ring of a polygon.
func strokeRing(img *image.RGBA, poly *geom.Polygon, v viewport, width float64, c color.RGBA, alpha float64) {
	for r := 0; r < poly.NumLinearRings(); r++ {
		flat := poly.LinearRing(r).FlatCoords()
		stride := poly.Layout().Stride()
		pts := make([][2]float64, 0, len(flat)/stride+1)
		for i := 0; i+1 < len(flat); i += stride {
			px, py := v.toPixel(flat[i], flat[i+1])
			pts = append(pts, [2]float64{px, py})
		}
		if len(pts) > 1 {
			pts = append(pts, pts[0])
			strokePath(img, pts, width, c, alpha)
		}
	}
}

// drawLabel renders text at (x, y) using the fixed 7x13 face.
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// labelWidth measures rendered text width in pixels.
func labelWidth(text string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(text).Ceil()
}
