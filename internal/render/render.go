// Package render composes the country map: basemap tiles, mainland fill,
// class-styled rivers, scale bar, north arrow, and legend, exported as PNG
// and SVG artifacts.
package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/basemap"
	"github.com/cartolab/rivermap/internal/rivers"
)

// mapSize is the output raster size in pixels (square).
const mapSize = 1600

// Map colors.
var (
	colorLand     = color.RGBA{R: 0xf3, G: 0xef, B: 0xe0, A: 0xff}
	colorLandEdge = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	colorRiver    = color.RGBA{R: 0x1f, G: 0x78, B: 0xb4, A: 0xff}
)

// classStyle is the stroke style for one river size class.
type classStyle struct {
	width float64
	alpha float64
}

var classStyles = map[string]classStyle{
	rivers.ClassSmall:  {width: 2.0, alpha: 0.8},
	rivers.ClassMedium: {width: 4.0, alpha: 0.9},
	rivers.ClassLarge:  {width: 8.0, alpha: 0.95},
}

// classOrder draws small rivers first so larger ones stay on top.
var classOrder = []string{rivers.ClassSmall, rivers.ClassMedium, rivers.ClassLarge}

// Artifacts holds the rendered output paths.
type Artifacts struct {
	PNG string
	SVG string
}

// Renderer renders classified rivers over a mainland polygon.
type Renderer struct {
	tiles  *basemap.Source
	outDir string
}

// New creates a renderer writing artifacts to outDir. A nil tile source
// disables the basemap layer.
func New(tiles *basemap.Source, outDir string) *Renderer {
	return &Renderer{tiles: tiles, outDir: outDir}
}

// Render draws the map and writes both artifacts. Geometries must already be
// in Web Mercator. A basemap failure downgrades to a plain background; it
// never fails the render.
func (r *Renderer) Render(ctx context.Context, mainland geom.T, classified []rivers.River, displayName string) (Artifacts, error) {
	if mainland == nil {
		return Artifacts{}, eris.New("render: nil mainland geometry")
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return Artifacts{}, eris.Wrap(err, "render: create output dir")
	}

	// The empty-selection fallback can hand over a bare collection; its
	// bounds carry no layout, so emptiness is decided on the geometry.
	var b *geom.Bounds
	if hasCoords(mainland) {
		b = mainland.Bounds()
	} else {
		zap.L().Warn("render: mainland has no coordinates, using fallback extent",
			zap.String("country", displayName))
	}
	v := newViewport(b, mapSize, mapSize)
	img := image.NewRGBA(image.Rect(0, 0, mapSize, mapSize))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	if r.tiles != nil {
		if err := drawBasemap(ctx, img, v, r.tiles); err != nil {
			zap.L().Warn("render: basemap failed, continuing without it", zap.Error(err))
		}
	}

	polys := polygonParts(mainland)
	for _, p := range polys {
		fillPolygon(img, p, v, colorLand, 0.75)
		strokeRing(img, p, v, 1.5, colorLandEdge, 1)
	}

	for _, class := range classOrder {
		style := classStyles[class]
		for _, riv := range classified {
			if riv.SizeClass != class {
				continue
			}
			for _, pts := range linePaths(riv.Geometry, v) {
				strokePath(img, pts, style.width, colorRiver, style.alpha)
			}
		}
	}

	drawTitle(img, displayName)
	drawScaleBar(img, v)
	drawNorthArrow(img)
	drawLegend(img, colorRiver)

	stem := ArtifactStem(displayName)
	pngPath := filepath.Join(r.outDir, stem+".png")
	svgPath := filepath.Join(r.outDir, stem+".svg")

	if err := writePNG(pngPath, img); err != nil {
		return Artifacts{}, err
	}
	if err := writeSVG(svgPath, v, polys, classified, displayName); err != nil {
		return Artifacts{}, err
	}

	zap.L().Info("map rendered",
		zap.String("country", displayName),
		zap.String("png", pngPath),
		zap.String("svg", svgPath),
	)
	return Artifacts{PNG: pngPath, SVG: svgPath}, nil
}

// writePNG encodes the canvas to disk.
func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "render: create png")
	}
	defer f.Close() //nolint:errcheck

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		return eris.Wrap(err, "render: encode png")
	}
	return nil
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

// polygonParts flattens a geometry into its polygon parts.
func polygonParts(g geom.T) []*geom.Polygon {
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
			parts = append(parts, polygonParts(sub)...)
		}
		return parts
	default:
		return nil
	}
}

// linePaths projects a line geometry into pixel-space polylines.
func linePaths(g geom.T, v viewport) [][][2]float64 {
	switch t := g.(type) {
	case *geom.LineString:
		return [][][2]float64{projectFlat(t.FlatCoords(), t.Layout().Stride(), v)}
	case *geom.MultiLineString:
		paths := make([][][2]float64, 0, t.NumLineStrings())
		for i := 0; i < t.NumLineStrings(); i++ {
			ls := t.LineString(i)
			paths = append(paths, projectFlat(ls.FlatCoords(), ls.Layout().Stride(), v))
		}
		return paths
	case *geom.GeometryCollection:
		var paths [][][2]float64
		for _, sub := range t.Geoms() {
			paths = append(paths, linePaths(sub, v)...)
		}
		return paths
	default:
		return nil
	}
}

// projectFlat maps flat coordinates through the viewport.
func projectFlat(flat []float64, stride int, v viewport) [][2]float64 {
	pts := make([][2]float64, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		px, py := v.toPixel(flat[i], flat[i+1])
		pts = append(pts, [2]float64{px, py})
	}
	return pts
}
