package viz

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultContrast = 2.5
	DefaultDrawSkip = 1
)

// Display holds presentation settings shared by every renderer. It never
// influences the simulation.
type Display struct {
	Contrast float64
	DrawSkip int
}

func DefaultDisplay() *Display {
	return &Display{Contrast: DefaultContrast, DrawSkip: DefaultDrawSkip}
}

// ShouldDraw reports whether the frame after step should be shown.
func (d *Display) ShouldDraw(step int) bool {
	if d.DrawSkip <= 1 {
		return true
	}
	return step%d.DrawSkip == 0
}

// Contrast writes tanh(factor*x) for every x of src into dst, sizing an
// empty dst. dst and src may be the same matrix.
func Contrast(dst *mat.Dense, src mat.Matrix, factor float64) {
	dst.Apply(func(_, _ int, x float64) float64 { return math.Tanh(factor * x) }, src)
}

// Level clips x into the fixed [0, 1] color range.
func Level(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
