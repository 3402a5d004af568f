package viz

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"
)

// Renderer turns a concentration field into pixels or terminal cells after
// the display contrast transform.
type Renderer struct {
	Display *Display
	Palette Palette
	buf     mat.Dense
}

func NewRenderer(d *Display, p Palette) *Renderer {
	return &Renderer{Display: d, Palette: p}
}

func (r *Renderer) levels(field mat.Matrix) *mat.Dense {
	rows, cols := field.Dims()
	if br, bc := r.buf.Dims(); br != rows || bc != cols {
		r.buf = mat.Dense{}
	}
	Contrast(&r.buf, field, r.Display.Contrast)
	return &r.buf
}

// Image renders field at one pixel per cell, scaled up by scale.
func (r *Renderer) Image(field mat.Matrix, scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}
	lv := r.levels(field)
	h, w := lv.Dims()
	img := image.NewPaletted(image.Rect(0, 0, w*scale, h*scale), r.Palette.Colors)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			idx := r.Palette.Index(lv.At(i, j))
			for dy := 0; dy < scale; dy++ {
				row := img.Pix[(i*scale+dy)*img.Stride:]
				for dx := 0; dx < scale; dx++ {
					row[j*scale+dx] = idx
				}
			}
		}
	}
	return img
}

// Terminal renders field into rows lines of cols half-block cells. Each
// cell shows two vertically stacked samples.
func (r *Renderer) Terminal(field mat.Matrix, cols, rows int) string {
	if cols < 1 || rows < 1 {
		return ""
	}
	lv := r.levels(field)
	h, w := lv.Dims()
	if h == 0 || w == 0 {
		return ""
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		top := (2 * y) * h / (2 * rows)
		bot := (2*y + 1) * h / (2 * rows)
		for x := 0; x < cols; x++ {
			j := x * w / cols
			st := lipgloss.NewStyle().
				Foreground(lipgloss.Color(r.Palette.Hex(lv.At(top, j)))).
				Background(lipgloss.Color(r.Palette.Hex(lv.At(bot, j))))
			b.WriteString(st.Render("▀"))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
