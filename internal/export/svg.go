package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/rdsim/internal/viz"
	"gonum.org/v1/gonum/mat"
)

// FieldToSVG draws one square per cell of field after the display contrast
// transform. Horizontal runs of the same color are merged into one rect.
func FieldToSVG(field mat.Matrix, d *viz.Display, p viz.Palette, scale float64) string {
	h, w := field.Dims()
	if h == 0 || w == 0 {
		return ""
	}

	var lv mat.Dense
	viz.Contrast(&lv, field, d.Contrast)

	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
`, width, height, width, height))

	for i := 0; i < h; i++ {
		for j := 0; j < w; {
			idx := p.Index(lv.At(i, j))
			run := 1
			for j+run < w && p.Index(lv.At(i, j+run)) == idx {
				run++
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(j)*scale, float64(i)*scale, float64(run)*scale, scale, hex(p.Colors[idx])))
			j += run
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// SeriesToSVG plots a time series as a polyline scaled to fill the canvas.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
