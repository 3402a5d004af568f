package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/physics"
)

// NewEngine builds a Gray-Scott engine from cfg.
func NewEngine(cfg *config.Config) (*physics.GrayScott, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []physics.Option{
		physics.WithClamp(cfg.Clamp),
		physics.WithWorkers(cfg.Workers),
	}
	if cfg.Seed != 0 {
		opts = append(opts, physics.WithSeed(cfg.Seed))
	}
	g, err := physics.NewGrayScott(cfg.Height, cfg.Width, opts...)
	if err != nil {
		return nil, err
	}
	g.SetParams(cfg.Params)
	if cfg.RandomStrength != physics.DefaultRandomStrength {
		if err := g.Reset(cfg.RandomStrength); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type Result struct {
	StepsTaken int
	Time       float64
	Dt         float64
	Final      physics.Stats
	Metrics    map[string]float64
}

type Experiment struct {
	engine    *physics.GrayScott
	metrics   []metrics.Metric
	observers []dynamo.Observer

	// ValidateState stops the run with ErrUnstable once a non-finite value
	// appears in u or v.
	ValidateState bool
}

func New(cfg *config.Config) (*Experiment, error) {
	g, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Experiment{engine: g, ValidateState: true}, nil
}

// FromEngine wraps an existing engine.
func FromEngine(g *physics.GrayScott) *Experiment {
	return &Experiment{engine: g, ValidateState: true}
}

func (e *Experiment) Engine() *physics.GrayScott { return e.engine }

func (e *Experiment) AddMetric(m metrics.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// Run calls Update steps times. Metrics and observers see the engine after
// every successful step. The partial result is returned alongside any error.
func (e *Experiment) Run(ctx context.Context, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps %d", dynamo.ErrParameterBounds, steps)
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	g := e.engine
	result := &Result{Metrics: make(map[string]float64)}
	var runErr error

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}
		if runErr != nil {
			break
		}

		if err := g.Update(); err != nil {
			runErr = err
			break
		}
		result.StepsTaken++

		if e.ValidateState && !g.Valid() {
			runErr = &dynamo.SimulationError{Step: g.Steps(), Time: g.Time(), Wrapped: dynamo.ErrUnstable}
			break
		}

		for _, m := range e.metrics {
			m.Observe(g)
		}
		for _, obs := range e.observers {
			obs.OnStep(g.Steps(), g.Time())
		}
	}

	result.Time = g.Time()
	result.Dt = g.Dt()
	result.Final = g.Stats()
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}
