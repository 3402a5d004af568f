package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/physics"
	"gonum.org/v1/gonum/mat"
)

// Divergence is the outcome of following two nearby states.
type Divergence struct {
	// Exponent estimates the largest Lyapunov exponent per unit time.
	// A positive value means nearby patterns separate.
	Exponent float64
	// Growth holds ln(separation/eps) for each update before renormalizing.
	Growth []float64
}

// LyapunovExponent follows g and a twin whose v field starts eps away in
// the Frobenius norm, spread evenly over every cell. After each update the
// separation is measured over u and v together and the twin is pulled back
// to distance eps along the same direction. g is advanced by steps updates.
func LyapunovExponent(ctx context.Context, g *physics.GrayScott, steps int, eps float64) (*Divergence, error) {
	if !(eps > 0) || math.IsInf(eps, 0) {
		return nil, fmt.Errorf("%w: perturbation %v", dynamo.ErrParameterBounds, eps)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps %d", dynamo.ErrParameterBounds, steps)
	}

	twin, err := physics.NewGrayScott(g.Height(), g.Width(),
		physics.WithSeed(0),
		physics.WithClamp(g.Clamp()),
		physics.WithWorkers(g.Workers()),
	)
	if err != nil {
		return nil, err
	}
	twin.SetParams(g.Params())

	var u, v, tu, tv mat.Dense
	g.CopyU(&u)
	g.CopyV(&v)
	offset := eps / math.Sqrt(float64(g.Height()*g.Width()))
	tv.Apply(func(_, _ int, x float64) float64 { return x + offset }, &v)
	if err := twin.SetState(&u, &tv); err != nil {
		return nil, err
	}

	t0 := g.Time()
	sumLog := 0.0
	growth := make([]float64, 0, steps)
	for s := 0; s < steps; s++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
		}
		if err := g.Update(); err != nil {
			return nil, err
		}
		if err := twin.Update(); err != nil {
			return nil, err
		}

		g.CopyU(&u)
		g.CopyV(&v)
		twin.CopyU(&tu)
		twin.CopyV(&tv)
		tu.Sub(&tu, &u)
		tv.Sub(&tv, &v)
		sep := math.Hypot(mat.Norm(&tu, 2), mat.Norm(&tv, 2))
		switch {
		case math.IsNaN(sep) || math.IsInf(sep, 0):
			return nil, &dynamo.SimulationError{Step: g.Steps(), Time: g.Time(), Wrapped: dynamo.ErrUnstable}
		case sep == 0:
			return nil, fmt.Errorf("perturbation vanished at step %d", g.Steps())
		}
		l := math.Log(sep / eps)
		growth = append(growth, l)
		sumLog += l

		scale := eps / sep
		tu.Scale(scale, &tu)
		tu.Add(&tu, &u)
		tv.Scale(scale, &tv)
		tv.Add(&tv, &v)
		if err := twin.SetState(&tu, &tv); err != nil {
			return nil, err
		}
	}

	elapsed := g.Time() - t0
	return &Divergence{Exponent: sumLog / elapsed, Growth: growth}, nil
}
