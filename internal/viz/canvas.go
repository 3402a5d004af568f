package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots. A canvas of Width x
// Height cells has 2*Width x 4*Height dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: max(0, w), Height: max(0, h)}
	c.cells = make([][]rune, c.Height)
	for i := range c.cells {
		c.cells[i] = make([]rune, c.Width)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBlank
		}
	}
}

// DrawLine joins two dots with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PhasePlot draws the path through (xs[i], ys[i]) on a w x h braille canvas
// with 10% padding around the data range. The last point is marked in the
// secondary color of theme.
func PhasePlot(xs, ys []float64, w, h int, theme Theme) string {
	n := min(len(xs), len(ys))
	if n == 0 || w <= 0 || h <= 0 {
		return ""
	}
	minX, maxX := bounds(xs[:n])
	minY, maxY := bounds(ys[:n])

	c := NewCanvas(w, h)
	dotsX, dotsY := float64(2*w-1), float64(4*h-1)
	toDot := func(x, y float64) (int, int) {
		px := int(math.Round((x - minX) / (maxX - minX) * dotsX))
		py := int(math.Round((maxY - y) / (maxY - minY) * dotsY))
		return px, py
	}

	px, py := toDot(xs[0], ys[0])
	c.Set(px, py)
	for i := 1; i < n; i++ {
		qx, qy := toDot(xs[i], ys[i])
		c.DrawLine(px, py, qx, qy)
		px, py = qx, qy
	}

	plot := strings.TrimSuffix(c.String(), "\n")
	lines := strings.Split(plot, "\n")
	row, col := py/4, px/2
	if row >= 0 && row < len(lines) {
		cells := []rune(lines[row])
		if col >= 0 && col < len(cells) {
			mark := lipgloss.NewStyle().Foreground(theme.Secondary).Render(string(cells[col]))
			lines[row] = string(cells[:col]) + mark + string(cells[col+1:])
		}
	}
	return strings.Join(lines, "\n")
}

// bounds returns the padded range of xs. A flat series gets a unit span.
func bounds(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
