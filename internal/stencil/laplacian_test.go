package stencil

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/rdsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

func randomField(r *rand.Rand, h, w int) *mat.Dense {
	data := make([]float64, h*w)
	for i := range data {
		data[i] = r.Float64()*2 - 1
	}
	return mat.NewDense(h, w, data)
}

func TestLaplacianKnownValues(t *testing.T) {
	a, err := FromRows([][]float64{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
	})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	got, err := Laplacian(a)
	if err != nil {
		t.Fatalf("Laplacian: %v", err)
	}

	// center: 1 + 7 + 3 + 5 - 16 = 0
	// corner (0,0): up=6 down=3 left=2 right=1 -> 12 - 0 = 12
	// (2,2): up=5 down=2 left=7 right=6 -> 20 - 32 = -12
	tests := []struct {
		i, j int
		want float64
	}{
		{1, 1, 0},
		{0, 0, 12},
		{2, 2, -12},
		{0, 1, 7 + 4 + 0 + 2 - 4},
	}
	for _, tt := range tests {
		if v := got.At(tt.i, tt.j); math.Abs(v-tt.want) > tol {
			t.Errorf("L(%d,%d) = %v, want %v", tt.i, tt.j, v, tt.want)
		}
	}
}

func TestLaplacianConservation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, shape := range [][2]int{{2, 2}, {3, 5}, {16, 16}, {33, 7}, {64, 128}} {
		t.Run(fmt.Sprintf("%dx%d", shape[0], shape[1]), func(t *testing.T) {
			a := randomField(r, shape[0], shape[1])
			l, err := Laplacian(a)
			if err != nil {
				t.Fatalf("Laplacian: %v", err)
			}
			if sum := floats.Sum(l.RawMatrix().Data); math.Abs(sum) > 1e-9 {
				t.Errorf("sum of Laplacian = %v, want 0", sum)
			}
		})
	}
}

func TestLaplacianLinearity(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	a := randomField(r, 12, 9)
	b := randomField(r, 12, 9)

	var sum mat.Dense
	sum.Add(a, b)
	lSum, _ := Laplacian(&sum)
	la, _ := Laplacian(a)
	lb, _ := Laplacian(b)

	var want mat.Dense
	want.Add(la, lb)
	if !mat.EqualApprox(lSum, &want, tol) {
		t.Error("L(a+b) != L(a) + L(b)")
	}

	const c = -3.7
	var scaled mat.Dense
	scaled.Scale(c, a)
	lScaled, _ := Laplacian(&scaled)
	want.Scale(c, la)
	if !mat.EqualApprox(lScaled, &want, tol) {
		t.Error("L(c*a) != c*L(a)")
	}
}

func TestLaplacianConstantField(t *testing.T) {
	for _, shape := range [][2]int{{1, 1}, {1, 6}, {6, 1}, {5, 5}, {10, 3}} {
		a := mat.NewDense(shape[0], shape[1], nil)
		a.Apply(func(_, _ int, _ float64) float64 { return 0.37 }, a)
		l, err := Laplacian(a)
		if err != nil {
			t.Fatalf("%v: Laplacian: %v", shape, err)
		}
		for _, v := range l.RawMatrix().Data {
			if math.Abs(v) > tol {
				t.Fatalf("%v: expected zero field, got %v", shape, v)
			}
		}
	}
}

func TestLaplacianDegenerateShapes(t *testing.T) {
	// A single row wraps vertically onto itself, so only the horizontal
	// neighbours contribute.
	row, _ := FromRows([][]float64{{1, 2, 4}})
	l, err := Laplacian(row)
	if err != nil {
		t.Fatalf("Laplacian: %v", err)
	}
	want := []float64{4 + 2 - 2, 1 + 4 - 4, 2 + 1 - 8}
	for j, w := range want {
		if v := l.At(0, j); math.Abs(v-w) > tol {
			t.Errorf("L(0,%d) = %v, want %v", j, v, w)
		}
	}

	col := mat.NewDense(3, 1, []float64{1, 2, 4})
	l, err = Laplacian(col)
	if err != nil {
		t.Fatalf("Laplacian: %v", err)
	}
	for i, w := range want {
		if v := l.At(i, 0); math.Abs(v-w) > tol {
			t.Errorf("L(%d,0) = %v, want %v", i, v, w)
		}
	}
}

func TestLaplacianSpacing(t *testing.T) {
	a, _ := FromRows([][]float64{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}})
	op := Operator{Boundary: Periodic, Spacing: 2}
	var dst mat.Dense
	if err := op.Apply(&dst, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v := dst.At(0, 0); math.Abs(v-3) > tol {
		t.Errorf("L(0,0) with dx=2 = %v, want 3", v)
	}
}

func TestLaplacianParallelMatchesSerial(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	a := randomField(r, 200, 150)

	serial, _ := Laplacian(a)
	// Zero and negative worker counts use every CPU.
	for _, workers := range []int{8, 0, -1} {
		var parallel mat.Dense
		op := Operator{Boundary: Periodic, Spacing: 1, Workers: workers}
		if err := op.Apply(&parallel, a); err != nil {
			t.Fatalf("workers=%d: Apply: %v", workers, err)
		}
		if !mat.Equal(serial, &parallel) {
			t.Errorf("workers=%d: parallel Laplacian differs from serial", workers)
		}
	}
}

func TestLaplacianAliasing(t *testing.T) {
	a, _ := FromRows([][]float64{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}})
	want, _ := Laplacian(a)
	if err := Default.Apply(a, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !mat.EqualApprox(a, want, tol) {
		t.Error("in-place Apply differs from out-of-place result")
	}
}

func TestLaplacianSlicedDst(t *testing.T) {
	a, _ := FromRows([][]float64{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}})
	dst := a.Slice(0, 3, 0, 3).(*mat.Dense)
	if err := Default.Apply(dst, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want, _ := FromRows([][]float64{{12, 9, 6}, {3, 0, -3}, {-6, -9, -12}})
	if !mat.EqualApprox(dst, want, tol) {
		t.Errorf("sliced dst got %v, want %v", mat.Formatted(dst), mat.Formatted(want))
	}
}

func TestLaplacianPartialOverlap(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	big := randomField(r, 4, 4)
	src := big.Slice(1, 3, 1, 3).(*mat.Dense)
	want, _ := Laplacian(mat.DenseCopyOf(src))

	dst := big.Slice(0, 2, 0, 2).(*mat.Dense)
	if err := Default.Apply(dst, src); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !mat.EqualApprox(dst, want, tol) {
		t.Error("overlapping views produced a different Laplacian")
	}
}

func TestOverlaps(t *testing.T) {
	data := make([]float64, 10)
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"same", data, data, true},
		{"disjoint halves", data[:5], data[5:], false},
		{"shared element", data[:6], data[5:], true},
		{"separate arrays", data, make([]float64, 10), false},
		{"empty", data[:0], data, false},
	}
	for _, tt := range tests {
		if got := overlaps(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLaplacianErrors(t *testing.T) {
	good := mat.NewDense(2, 2, nil)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"empty field", func() error {
			_, err := Laplacian(&mat.Dense{})
			return err
		}, dynamo.ErrInvalidShape},
		{"nil field", func() error {
			var src *mat.Dense
			_, err := Laplacian(src)
			return err
		}, dynamo.ErrInvalidShape},
		{"dst shape mismatch", func() error {
			return Default.Apply(mat.NewDense(3, 2, nil), good)
		}, dynamo.ErrInvalidShape},
		{"unsupported boundary", func() error {
			var dst mat.Dense
			return Operator{Boundary: Boundary(1)}.Apply(&dst, good)
		}, dynamo.ErrUnsupportedBoundary},
		{"negative spacing", func() error {
			var dst mat.Dense
			return Operator{Spacing: -1}.Apply(&dst, good)
		}, dynamo.ErrParameterBounds},
		{"ragged rows", func() error {
			_, err := FromRows([][]float64{{1, 2}, {3}})
			return err
		}, dynamo.ErrInvalidShape},
		{"no rows", func() error {
			_, err := FromRows(nil)
			return err
		}, dynamo.ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBoundaryString(t *testing.T) {
	if Periodic.String() != "periodic" {
		t.Errorf("unexpected name %q", Periodic.String())
	}
}
