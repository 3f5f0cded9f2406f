package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cartolab/rivermap/internal/rivers"
)

// scaleBarMeters is the default scale bar length (100 km).
const scaleBarMeters = 100_000.0

var (
	colorBlack = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// drawTitle centers "Rivers of <name>" along the top edge.
func drawTitle(img *image.RGBA, displayName string) {
	text := "Rivers of " + displayName
	x := (img.Rect.Dx() - labelWidth(text)) / 2
	drawLabel(img, x, 28, text, colorBlack)
}

// drawScaleBar paints a labeled scale bar in the lower right corner.
func drawScaleBar(img *image.RGBA, v viewport) {
	lengthPx := scaleBarMeters * v.scale
	if lengthPx > float64(img.Rect.Dx())/2 {
		lengthPx = float64(img.Rect.Dx()) / 2
	}

	margin := 40.0
	x1 := float64(img.Rect.Dx()) - margin
	x0 := x1 - lengthPx
	y := float64(img.Rect.Dy()) - margin

	strokeSegment(img, x0, y, x1, y, 4, colorBlack, 1)

	label := fmt.Sprintf("%d km", int(scaleBarMeters/1000))
	drawLabel(img, int(x0+(lengthPx-float64(labelWidth(label)))/2), int(y)-10, label, colorBlack)
}

// drawNorthArrow paints an upward arrow with an N label near the lower right.
func drawNorthArrow(img *image.RGBA) {
	x := float64(img.Rect.Dx()) * 0.95
	yBottom := float64(img.Rect.Dy()) * 0.85
	yTop := yBottom - float64(img.Rect.Dy())*0.06

	strokeSegment(img, x, yBottom, x, yTop, 3, colorBlack, 1)
	// Arrowhead.
	strokeSegment(img, x, yTop, x-6, yTop+12, 3, colorBlack, 1)
	strokeSegment(img, x, yTop, x+6, yTop+12, 3, colorBlack, 1)

	drawLabel(img, int(x)-3, int(yTop)-8, "N", colorBlack)
}

// drawLegend paints the river size legend in the upper right corner.
func drawLegend(img *image.RGBA, riverColor color.RGBA) {
	entries := []struct {
		label string
		width float64
	}{
		{"Small river", classStyles[rivers.ClassSmall].width},
		{"Medium river", classStyles[rivers.ClassMedium].width},
		{"Large river", classStyles[rivers.ClassLarge].width},
	}

	boxW, rowH := 150, 22
	boxH := rowH*len(entries) + 12
	x0 := img.Rect.Dx() - boxW - 20
	y0 := 50

	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			blendPixel(img, x, y, colorWhite, 0.85)
		}
	}

	for i, e := range entries {
		cy := float64(y0 + 12 + i*rowH + rowH/2 - 6)
		strokeSegment(img, float64(x0+10), cy, float64(x0+40), cy, e.width, riverColor, 1)
		drawLabel(img, x0+48, int(cy)+4, e.label, colorBlack)
	}
}
