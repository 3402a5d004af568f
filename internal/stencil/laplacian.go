// Package stencil implements the discrete 5-point Laplacian used by the
// reaction-diffusion engine.
package stencil

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/san-kum/rdsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Boundary selects how the stencil treats grid edges. Periodic is the only
// supported kind.
type Boundary int

const (
	Periodic Boundary = iota
)

func (b Boundary) String() string {
	switch b {
	case Periodic:
		return "periodic"
	default:
		return fmt.Sprintf("boundary(%d)", int(b))
	}
}

// minRowsPerWorker keeps small grids on a single goroutine.
const minRowsPerWorker = 32

// Operator computes (up + down + left + right - 4*center) / Spacing^2.
type Operator struct {
	Boundary Boundary
	Spacing  float64 // grid spacing dx; zero means 1
	Workers  int     // 1 runs serially; zero or negative uses every CPU
}

// Default is the periodic, unit-spacing, single-threaded operator.
var Default = Operator{Boundary: Periodic, Spacing: 1}

func (op Operator) check() (float64, error) {
	if op.Boundary != Periodic {
		return 0, fmt.Errorf("%w: %s", dynamo.ErrUnsupportedBoundary, op.Boundary)
	}
	dx := op.Spacing
	if dx == 0 {
		dx = 1
	}
	if dx < 0 || math.IsNaN(dx) || math.IsInf(dx, 0) {
		return 0, fmt.Errorf("%w: spacing = %v", dynamo.ErrParameterBounds, op.Spacing)
	}
	return dx, nil
}

// Apply writes the Laplacian of src into dst. An empty dst is sized to match
// src; otherwise its shape must equal src's. When dst shares memory with src,
// including a sliced view of it, the stencil reads from a copy.
func (op Operator) Apply(dst *mat.Dense, src mat.Matrix) error {
	dx, err := op.check()
	if err != nil {
		return err
	}
	if src == nil {
		return dynamo.ErrInvalidShape
	}
	if d, ok := src.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return dynamo.ErrInvalidShape
	}
	h, w := src.Dims()
	if h <= 0 || w <= 0 {
		return dynamo.ErrInvalidShape
	}
	if dst.IsEmpty() {
		dst.ReuseAs(h, w)
	} else if r, c := dst.Dims(); r != h || c != w {
		return fmt.Errorf("%w: dst is %dx%d, src is %dx%d", dynamo.ErrInvalidShape, r, c, h, w)
	}

	in, ok := src.(*mat.Dense)
	if !ok || overlaps(in.RawMatrix().Data, dst.RawMatrix().Data) {
		in = mat.DenseCopyOf(src)
	}
	a := in.RawMatrix()
	out := dst.RawMatrix()
	scale := 1 / (dx * dx)

	dynamo.ParallelFor(h, minRowsPerWorker, op.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			up := a.Data[((i-1+h)%h)*a.Stride:]
			row := a.Data[i*a.Stride:]
			down := a.Data[((i+1)%h)*a.Stride:]
			dstRow := out.Data[i*out.Stride:]
			for j := 0; j < w; j++ {
				left := j - 1
				if left < 0 {
					left = w - 1
				}
				right := j + 1
				if right == w {
					right = 0
				}
				dstRow[j] = (up[j] + down[j] + row[left] + row[right] - 4*row[j]) * scale
			}
		}
	})
	return nil
}

// overlaps reports whether a and b share any element of a backing array.
func overlaps(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const size = unsafe.Sizeof(float64(0))
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return a0 < b0+uintptr(len(b))*size && b0 < a0+uintptr(len(a))*size
}

// Laplacian returns the periodic unit-spacing Laplacian of a as a new field.
func Laplacian(a mat.Matrix) (*mat.Dense, error) {
	var dst mat.Dense
	if err := Default.Apply(&dst, a); err != nil {
		return nil, err
	}
	return &dst, nil
}

// FromRows builds a field from nested slices. Empty or ragged input is
// rejected with ErrInvalidShape.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, dynamo.ErrInvalidShape
	}
	w := len(rows[0])
	data := make([]float64, 0, len(rows)*w)
	for i, r := range rows {
		if len(r) != w {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", dynamo.ErrInvalidShape, i, len(r), w)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), w, data), nil
}
