package physics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/stencil"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultDu             = 0.16
	DefaultDv             = 0.08
	DefaultF              = 0.060
	DefaultK              = 0.062
	DefaultRandomStrength = 0.2

	// StabilityFactor scales 1/max(Du, Dv) into the explicit Euler timestep.
	StabilityFactor = 0.2

	seedU = 0.5
	seedV = 0.25

	minRowsPerWorker = 32
)

// Params are the Gray-Scott coefficients.
type Params struct {
	Du float64 `json:"du" yaml:"du"`
	Dv float64 `json:"dv" yaml:"dv"`
	F  float64 `json:"f" yaml:"f"`
	K  float64 `json:"k" yaml:"k"`
}

func DefaultParams() Params {
	return Params{Du: DefaultDu, Dv: DefaultDv, F: DefaultF, K: DefaultK}
}

// Timestep returns 0.2 / max(Du, Dv), or ErrDegenerateTimestep when that
// maximum is not positive.
func (p Params) Timestep() (float64, error) {
	m := math.Max(p.Du, p.Dv)
	if !(m > 0) {
		return 0, dynamo.ErrDegenerateTimestep
	}
	return StabilityFactor / m, nil
}

// GrayScott integrates U + 2V -> 3V on a periodic grid.
type GrayScott struct {
	h, w   int
	u, v   *mat.Dense
	lu, lv *mat.Dense
	params Params
	dt     float64
	t      float64
	cnt    int
	clamp  bool
	lap    stencil.Operator
	rng    *rand.Rand
}

type Option func(*GrayScott)

// WithSeed makes Reset reproducible.
func WithSeed(seed int64) Option {
	return func(g *GrayScott) { g.rng = rand.New(rand.NewPCG(uint64(seed), 0)) }
}

// WithClamp clips u and v to [0, 1] after every update.
func WithClamp(on bool) Option {
	return func(g *GrayScott) { g.clamp = on }
}

// WithWorkers spreads the stencil and reaction update over n goroutines.
// Zero uses every CPU.
func WithWorkers(n int) Option {
	return func(g *GrayScott) { g.lap.Workers = n }
}

// NewGrayScott allocates a height x width simulation with default
// parameters and a freshly reset field.
func NewGrayScott(height, width int, opts ...Option) (*GrayScott, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", dynamo.ErrInvalidDimensions, height, width)
	}

	g := &GrayScott{
		h:      height,
		w:      width,
		u:      mat.NewDense(height, width, nil),
		v:      mat.NewDense(height, width, nil),
		lu:     mat.NewDense(height, width, nil),
		lv:     mat.NewDense(height, width, nil),
		params: DefaultParams(),
		dt:     1,
		lap:    stencil.Operator{Boundary: stencil.Periodic, Spacing: 1, Workers: 1},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if err := g.Reset(DefaultRandomStrength); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset reseeds u = (1-s) + s*U and v = s*U' with U, U' uniform in [0, 1),
// then stamps u = 0.5, v = 0.25 onto a centered disk of radius height/10.
// Parameters are kept. The existing buffers are reused.
func (g *GrayScott) Reset(strength float64) error {
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return fmt.Errorf("%w: random strength %v not in [0, 1]", dynamo.ErrParameterBounds, strength)
	}

	u := g.u.RawMatrix()
	v := g.v.RawMatrix()
	for i := 0; i < g.h; i++ {
		for j := 0; j < g.w; j++ {
			u.Data[i*u.Stride+j] = (1 - strength) + strength*g.rng.Float64()
		}
	}
	for i := 0; i < g.h; i++ {
		for j := 0; j < g.w; j++ {
			v.Data[i*v.Stride+j] = strength * g.rng.Float64()
		}
	}

	r := g.h / 10
	ci, cj := g.h/2, g.w/2
	for i := 0; i < g.h; i++ {
		di := i - ci
		for j := 0; j < g.w; j++ {
			dj := j - cj
			if di*di+dj*dj <= r*r {
				u.Data[i*u.Stride+j] = seedU
				v.Data[i*v.Stride+j] = seedV
			}
		}
	}

	g.cnt = 0
	g.t = 0
	return nil
}

// Update advances u and v by one explicit Euler step of size
// 0.2 / max(Du, Dv). If that maximum is not positive the step is rejected
// and the state is left untouched.
func (g *GrayScott) Update() error {
	dt, err := g.params.Timestep()
	if err != nil {
		return &dynamo.SimulationError{Step: g.cnt, Time: g.t, Wrapped: err}
	}
	g.dt = dt

	if err := g.lap.Apply(g.lu, g.u); err != nil {
		return err
	}
	if err := g.lap.Apply(g.lv, g.v); err != nil {
		return err
	}

	p := g.params
	u, v := g.u.RawMatrix(), g.v.RawMatrix()
	lu, lv := g.lu.RawMatrix(), g.lv.RawMatrix()
	dynamo.ParallelFor(g.h, minRowsPerWorker, g.lap.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			ur := u.Data[i*u.Stride : i*u.Stride+g.w]
			vr := v.Data[i*v.Stride : i*v.Stride+g.w]
			lur := lu.Data[i*lu.Stride : i*lu.Stride+g.w]
			lvr := lv.Data[i*lv.Stride : i*lv.Stride+g.w]
			for j := range ur {
				uu, vv := ur[j], vr[j]
				uvv := uu * vv * vv
				du := p.Du*lur[j] - uvv + p.F*(1-uu)
				dv := p.Dv*lvr[j] + uvv - (p.F+p.K)*vv
				uu += du * dt
				vv += dv * dt
				if g.clamp {
					uu = clamp01(uu)
					vv = clamp01(vv)
				}
				ur[j], vr[j] = uu, vv
			}
		}
	})

	g.cnt++
	g.t += dt
	return nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func (g *GrayScott) SetDu(v float64) { g.params.Du = v }
func (g *GrayScott) SetDv(v float64) { g.params.Dv = v }
func (g *GrayScott) SetF(v float64)  { g.params.F = v }
func (g *GrayScott) SetK(v float64)  { g.params.K = v }

// SetParams replaces all four coefficients at once.
func (g *GrayScott) SetParams(p Params) { g.params = p }

func (g *GrayScott) Du() float64      { return g.params.Du }
func (g *GrayScott) Dv() float64      { return g.params.Dv }
func (g *GrayScott) F() float64       { return g.params.F }
func (g *GrayScott) K() float64       { return g.params.K }
func (g *GrayScott) Params() Params   { return g.params }
func (g *GrayScott) Dt() float64      { return g.dt }
func (g *GrayScott) Steps() int       { return g.cnt }
func (g *GrayScott) Time() float64    { return g.t }
func (g *GrayScott) Height() int      { return g.h }
func (g *GrayScott) Width() int       { return g.w }
func (g *GrayScott) Clamp() bool      { return g.clamp }
func (g *GrayScott) SetClamp(on bool) { g.clamp = on }
func (g *GrayScott) Workers() int     { return g.lap.Workers }

// U returns a read-only view of the u field.
func (g *GrayScott) U() mat.Matrix { return readOnly{g.u} }

// V returns a read-only view of the v field.
func (g *GrayScott) V() mat.Matrix { return readOnly{g.v} }

// CopyU copies u into dst, resizing an empty dst.
func (g *GrayScott) CopyU(dst *mat.Dense) { copyField(dst, g.u) }

// CopyV copies v into dst, resizing an empty dst.
func (g *GrayScott) CopyV(dst *mat.Dense) { copyField(dst, g.v) }

// SetState overwrites u and v with copies of the given fields. Both must
// match the grid shape. The update counter and time are kept.
func (g *GrayScott) SetState(u, v mat.Matrix) error {
	for _, m := range []mat.Matrix{u, v} {
		if d, ok := m.(*mat.Dense); m == nil || ok && d == nil {
			return dynamo.ErrInvalidShape
		}
		if r, c := m.Dims(); r != g.h || c != g.w {
			return fmt.Errorf("%w: state is %dx%d, grid is %dx%d", dynamo.ErrInvalidShape, r, c, g.h, g.w)
		}
	}
	g.u.Copy(u)
	g.v.Copy(v)
	return nil
}

func copyField(dst, src *mat.Dense) {
	if dst.IsEmpty() {
		dst.ReuseAs(src.Dims())
	}
	dst.Copy(src)
}

// Valid reports whether every cell of u and v is finite.
func (g *GrayScott) Valid() bool {
	return dynamo.IsFinite(g.u.RawMatrix().Data) && dynamo.IsFinite(g.v.RawMatrix().Data)
}

// Stats summarizes the current fields.
type Stats struct {
	UMin, UMax float64
	VMin, VMax float64
	VMean      float64
}

func (g *GrayScott) Stats() Stats {
	u, v := g.u.RawMatrix().Data, g.v.RawMatrix().Data
	return Stats{
		UMin:  floats.Min(u),
		UMax:  floats.Max(u),
		VMin:  floats.Min(v),
		VMax:  floats.Max(v),
		VMean: floats.Sum(v) / float64(len(v)),
	}
}

// GetParams exposes the coefficients under the names used by the UI.
func (g *GrayScott) GetParams() map[string]float64 {
	return map[string]float64{"Du": g.params.Du, "Dv": g.params.Dv, "F": g.params.F, "k": g.params.K}
}

func (g *GrayScott) SetParam(name string, v float64) error {
	if err := dynamo.CheckFinite(name, v); err != nil {
		return err
	}
	switch name {
	case "Du":
		g.SetDu(v)
	case "Dv":
		g.SetDv(v)
	case "F":
		g.SetF(v)
	case "k", "K":
		g.SetK(v)
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}

// readOnly hides the mutating methods of the wrapped field.
type readOnly struct{ m *mat.Dense }

func (r readOnly) Dims() (int, int)    { return r.m.Dims() }
func (r readOnly) At(i, j int) float64 { return r.m.At(i, j) }
func (r readOnly) T() mat.Matrix       { return mat.Transpose{Matrix: r} }
