package analysis

import (
	"context"
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rdsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Model is an engine that can be retuned and restarted.
type Model interface {
	dynamo.Configurable
	dynamo.Stepper
	Reset(strength float64) error
	V() mat.Matrix
}

// ScanPoint is the steady-state response at one parameter value.
type ScanPoint struct {
	Param float64
	Summary
}

// ScanParameter resets m for each of n evenly spaced values of name in
// [lo, hi], runs steps updates and summarizes v. The parameter is restored
// to its original value before returning.
func ScanParameter(ctx context.Context, m Model, name string, lo, hi float64, n, steps int, strength float64) (points []ScanPoint, err error) {
	orig, ok := m.GetParams()[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	defer func() {
		if rerr := m.SetParam(name, orig); rerr != nil && err == nil {
			err = fmt.Errorf("restore %s: %w", name, rerr)
		}
	}()

	if n < 2 {
		n = 2
	}
	step := (hi - lo) / float64(n-1)

	points = make([]ScanPoint, 0, n)
	for i := 0; i < n; i++ {
		p := lo + float64(i)*step
		if err := m.SetParam(name, p); err != nil {
			return points, err
		}
		if err := m.Reset(strength); err != nil {
			return points, err
		}
		for s := 0; s < steps; s++ {
			if err := ctx.Err(); err != nil {
				return points, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
			}
			if err := m.Update(); err != nil {
				return points, err
			}
		}
		sum, err := Summarize(m.V())
		if err != nil {
			return points, err
		}
		points = append(points, ScanPoint{Param: p, Summary: sum})
	}
	return points, nil
}

// ScanPlot draws coverage against the scanned parameter.
func ScanPlot(points []ScanPoint, name string, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	cov := make([]float64, len(points))
	for i, p := range points {
		cov[i] = 100 * p.Coverage
	}
	return asciigraph.Plot(cov,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("coverage %% vs %s [%.4f .. %.4f]", name, points[0].Param, points[len(points)-1].Param)),
	)
}
