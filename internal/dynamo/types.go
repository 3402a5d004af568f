package dynamo

import (
	"fmt"
	"math"
)

// Configurable is implemented by models whose parameters can be tuned while
// the simulation is running.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Stepper advances a model by one internally chosen timestep.
type Stepper interface {
	Update() error
	Steps() int
	Dt() float64
	Time() float64
}

// Observer is notified after every successful step.
type Observer interface {
	OnStep(step int, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(step int, t float64)

func (f ObserverFunc) OnStep(step int, t float64) { f(step, t) }

// CheckFinite returns ErrParameterBounds when v is NaN or infinite.
func CheckFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrParameterBounds, name, v)
	}
	return nil
}

// IsFinite reports whether every value in data is finite.
func IsFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
