package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/metrics"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Height, cfg.Width = 24, 24
	cfg.Seed = 5
	return cfg
}

func TestNewEngineFromConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.F = 0.03
	cfg.Clamp = true

	g, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if g.Height() != 24 || g.Width() != 24 {
		t.Errorf("dims = %dx%d", g.Height(), g.Width())
	}
	if g.F() != 0.03 || !g.Clamp() {
		t.Errorf("config not applied: F=%v clamp=%v", g.F(), g.Clamp())
	}
}

func TestNewEngineSeedReproducible(t *testing.T) {
	a, _ := NewEngine(smallConfig())
	b, _ := NewEngine(smallConfig())
	if a.V().At(0, 0) != b.V().At(0, 0) || a.U().At(3, 7) != b.U().At(3, 7) {
		t.Error("same seed produced different fields")
	}
}

func TestNewEngineInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Height = 0
	if _, err := NewEngine(cfg); !errors.Is(err, dynamo.ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestRun(t *testing.T) {
	exp, err := New(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := metrics.NewRecorder(10)
	exp.AddMetric(rec)
	exp.AddMetric(metrics.NewStability(0.1))

	var calls int
	exp.AddObserver(dynamo.ObserverFunc(func(step int, _ float64) {
		calls++
		if step != calls {
			t.Errorf("observer saw step %d on call %d", step, calls)
		}
	}))

	res, err := exp.Run(context.Background(), 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StepsTaken != 50 || calls != 50 {
		t.Errorf("steps=%d observer calls=%d", res.StepsTaken, calls)
	}
	if res.Metrics["samples"] != 5 {
		t.Errorf("expected 5 samples, got %v", res.Metrics["samples"])
	}
	if res.Metrics["stability"] != 1 {
		t.Errorf("expected stable run, got %v", res.Metrics["stability"])
	}
	if res.Time != 50*1.25 {
		t.Errorf("time = %v", res.Time)
	}
}

func TestRunCanceled(t *testing.T) {
	exp, _ := New(smallConfig())
	ctx, cancel := context.WithCancel(context.Background())
	exp.AddObserver(dynamo.ObserverFunc(func(step int, _ float64) {
		if step == 3 {
			cancel()
		}
	}))

	res, err := exp.Run(ctx, 100)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if res.StepsTaken != 3 {
		t.Errorf("expected 3 steps before cancel, got %d", res.StepsTaken)
	}
}

func TestRunDegenerate(t *testing.T) {
	exp, _ := New(smallConfig())
	exp.Engine().SetDu(0)
	exp.Engine().SetDv(0)

	res, err := exp.Run(context.Background(), 10)
	if !errors.Is(err, dynamo.ErrDegenerateTimestep) {
		t.Fatalf("expected ErrDegenerateTimestep, got %v", err)
	}
	if res.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", res.StepsTaken)
	}
}

func TestRunUnstable(t *testing.T) {
	cfg := smallConfig()
	// dt = 200 makes the reaction term explode within a few steps.
	cfg.Params.Du = 0.001
	cfg.Params.Dv = 0.001
	cfg.Params.F = 0.3
	cfg.Params.K = 0.3
	exp, _ := New(cfg)

	res, err := exp.Run(context.Background(), 1000)
	if !errors.Is(err, dynamo.ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step != res.StepsTaken {
		t.Errorf("unexpected error %v for %d steps", err, res.StepsTaken)
	}
}

func TestRunNegativeSteps(t *testing.T) {
	exp, _ := New(smallConfig())
	if _, err := exp.Run(context.Background(), -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
