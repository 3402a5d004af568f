package automation

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/san-kum/rdsim/internal/analysis"
	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/experiment"
	"github.com/san-kum/rdsim/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Sweep runs an independent engine for every (F, k) point of a grid.
type Sweep struct {
	Base       *config.Config
	FMin, FMax float64
	KMin, KMax float64
	NF, NK     int
	Steps      int
	// Parallel caps the number of engines running at once. Zero uses
	// every CPU.
	Parallel int
}

type SweepResult struct {
	F, K      float64
	Pattern   analysis.Summary
	Stability float64
	// Failed holds the reason an engine stopped early, if it did.
	Failed string
}

func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// RunSweep returns results in row-major (k, F) order. Points that blow up
// or hit a degenerate timestep are reported in SweepResult.Failed; only
// cancellation and configuration errors abort the sweep.
func RunSweep(ctx context.Context, sw *Sweep) ([]SweepResult, error) {
	if sw.Base == nil {
		sw.Base = config.DefaultConfig()
	}
	if err := sw.Base.Validate(); err != nil {
		return nil, err
	}
	fs := linspace(sw.FMin, sw.FMax, sw.NF)
	ks := linspace(sw.KMin, sw.KMax, sw.NK)
	results := make([]SweepResult, len(fs)*len(ks))

	limit := sw.Parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for ki, k := range ks {
		for fi, f := range fs {
			idx := ki*len(fs) + fi
			g.Go(func() error {
				res, err := runPoint(gctx, sw.Base, f, k, sw.Steps)
				if err != nil {
					return err
				}
				results[idx] = res
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runPoint(ctx context.Context, base *config.Config, f, k float64, steps int) (SweepResult, error) {
	cfg := *base
	cfg.Params.F = f
	cfg.Params.K = k
	cfg.Workers = 1

	exp, err := experiment.New(&cfg)
	if err != nil {
		return SweepResult{}, err
	}
	stab := metrics.NewStability(0.1)
	exp.AddMetric(stab)

	res := SweepResult{F: f, K: k}
	if _, err := exp.Run(ctx, steps); err != nil {
		if errors.Is(err, dynamo.ErrContextCanceled) {
			return res, err
		}
		res.Failed = err.Error()
	}
	res.Stability = stab.Value()

	if res.Failed == "" {
		pattern, err := analysis.Summarize(exp.Engine().V())
		if err != nil {
			return res, err
		}
		res.Pattern = pattern
	}
	return res, nil
}

// EnsembleStats summarizes the pattern wavelength across seeds.
type EnsembleStats struct {
	Seeds          int
	MeanWavelength float64
	StdWavelength  float64
	MeanCoverage   float64
}

// RunEnsemble repeats one configuration with seeds 1..n and reports how
// much the settled pattern depends on the initial noise.
func RunEnsemble(ctx context.Context, base *config.Config, n, steps, parallel int) (EnsembleStats, error) {
	if n < 1 {
		return EnsembleStats{}, fmt.Errorf("%w: ensemble size %d", dynamo.ErrParameterBounds, n)
	}
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	lambdas := make([]float64, n)
	coverage := make([]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			cfg := *base
			cfg.Seed = int64(i + 1)
			cfg.Workers = 1
			exp, err := experiment.New(&cfg)
			if err != nil {
				return err
			}
			if _, err := exp.Run(gctx, steps); err != nil {
				return err
			}
			sum, err := analysis.Summarize(exp.Engine().V())
			if err != nil {
				return err
			}
			lambdas[i], coverage[i] = sum.Wavelength, sum.Coverage
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EnsembleStats{}, err
	}

	mean, std := stat.MeanStdDev(lambdas, nil)
	if n == 1 {
		std = 0
	}
	return EnsembleStats{
		Seeds:          n,
		MeanWavelength: mean,
		StdWavelength:  std,
		MeanCoverage:   stat.Mean(coverage, nil),
	}, nil
}
