package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/cartolab/rivermap/internal/rivers"
)

// writeSVG emits the vector/print artifact. The SVG carries the mainland
// outline, rivers, and map furniture; the raster basemap stays PNG-only.
func writeSVG(path string, v viewport, polys []*geom.Polygon, classified []rivers.River, displayName string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		v.width, v.height, v.width, v.height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	for _, p := range polys {
		sb.WriteString(polygonPath(p, v))
	}

	for _, class := range classOrder {
		style := classStyles[class]
		fmt.Fprintf(&sb, `<g fill="none" stroke="#1f78b4" stroke-width="%.1f" stroke-opacity="%.2f" stroke-linecap="round">`+"\n",
			style.width, style.alpha)
		for _, riv := range classified {
			if riv.SizeClass != class {
				continue
			}
			for _, pts := range linePaths(riv.Geometry, v) {
				sb.WriteString(polyline(pts))
			}
		}
		sb.WriteString("</g>\n")
	}

	// Title.
	fmt.Fprintf(&sb, `<text x="%d" y="36" text-anchor="middle" font-family="sans-serif" font-size="28" font-weight="bold">Rivers of %s</text>`+"\n",
		v.width/2, escapeXML(displayName))

	svgScaleBar(&sb, v)
	svgNorthArrow(&sb, v)
	svgLegend(&sb, v)

	sb.WriteString("</svg>\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return eris.Wrap(err, "render: write svg")
	}
	return nil
}

// polygonPath converts a polygon's rings to one even-odd SVG path.
func polygonPath(p *geom.Polygon, v viewport) string {
	var sb strings.Builder
	sb.WriteString(`<path fill="#f3efe0" fill-opacity="0.9" fill-rule="evenodd" stroke="#444444" stroke-width="1.5" d="`)
	for r := 0; r < p.NumLinearRings(); r++ {
		flat := p.LinearRing(r).FlatCoords()
		stride := p.Layout().Stride()
		for i := 0; i+1 < len(flat); i += stride {
			px, py := v.toPixel(flat[i], flat[i+1])
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f %.1f", px, py)
			} else {
				fmt.Fprintf(&sb, "L%.1f %.1f", px, py)
			}
		}
		sb.WriteString("Z")
	}
	sb.WriteString("\"/>\n")
	return sb.String()
}

// polyline converts projected points to an SVG polyline element.
func polyline(pts [][2]float64) string {
	var sb strings.Builder
	sb.WriteString(`<polyline points="`)
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", p[0], p[1])
	}
	sb.WriteString("\"/>\n")
	return sb.String()
}

func svgScaleBar(sb *strings.Builder, v viewport) {
	lengthPx := scaleBarMeters * v.scale
	if lengthPx > float64(v.width)/2 {
		lengthPx = float64(v.width) / 2
	}
	margin := 40.0
	x1 := float64(v.width) - margin
	x0 := x1 - lengthPx
	y := float64(v.height) - margin

	fmt.Fprintf(sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="4"/>`+"\n", x0, y, x1, y)
	fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14">%d km</text>`+"\n",
		x0+lengthPx/2, y-10, int(scaleBarMeters/1000))
}

func svgNorthArrow(sb *strings.Builder, v viewport) {
	x := float64(v.width) * 0.95
	yBottom := float64(v.height) * 0.85
	yTop := yBottom - float64(v.height)*0.06

	fmt.Fprintf(sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="3"/>`+"\n", x, yBottom, x, yTop)
	fmt.Fprintf(sb, `<path d="M%.1f %.1fL%.1f %.1fL%.1f %.1fZ" fill="black"/>`+"\n",
		x, yTop-4, x-6, yTop+10, x+6, yTop+10)
	fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="16" font-weight="bold">N</text>`+"\n",
		x, yTop-10)
}

func svgLegend(sb *strings.Builder, v viewport) {
	entries := []struct {
		label string
		width float64
	}{
		{"Small river", classStyles[rivers.ClassSmall].width},
		{"Medium river", classStyles[rivers.ClassMedium].width},
		{"Large river", classStyles[rivers.ClassLarge].width},
	}

	boxW, rowH := 160.0, 24.0
	boxH := rowH*float64(len(entries)) + 12
	x0 := float64(v.width) - boxW - 20
	y0 := 50.0

	fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="white" fill-opacity="0.85"/>`+"\n", x0, y0, boxW, boxH)
	for i, e := range entries {
		cy := y0 + 12 + float64(i)*rowH + rowH/2 - 6
		fmt.Fprintf(sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#1f78b4" stroke-width="%.1f" stroke-linecap="round"/>`+"\n",
			x0+10, cy, x0+40, cy, e.width)
		fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="13">%s</text>`+"\n",
			x0+48, cy+4, escapeXML(e.label))
	}
}

// escapeXML escapes the characters XML treats specially in text content.
func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
