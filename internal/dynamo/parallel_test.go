package dynamo

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestParallelForCoversRange(t *testing.T) {
	tests := []struct {
		n, minChunk, workers int
	}{
		{0, 1, 4},
		{1, 1, 4},
		{7, 1, 3},
		{100, 8, 4},
		{100, 200, 4},
		{257, 16, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/workers=%d", tt.n, tt.workers), func(t *testing.T) {
			var mu sync.Mutex
			seen := make([]int, tt.n)
			ParallelFor(tt.n, tt.minChunk, tt.workers, func(start, end int) {
				mu.Lock()
				defer mu.Unlock()
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("index %d visited %d times", i, c)
				}
			}
		})
	}
}

func TestCheckFinite(t *testing.T) {
	if err := CheckFinite("F", 0.06); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := CheckFinite("F", v); !errors.Is(err, ErrParameterBounds) {
			t.Errorf("CheckFinite(%v) = %v, want ErrParameterBounds", v, err)
		}
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Wrapped: ErrDegenerateTimestep}
	if !errors.Is(err, ErrDegenerateTimestep) {
		t.Error("expected SimulationError to unwrap to ErrDegenerateTimestep")
	}
	if err.Error() != ErrDegenerateTimestep.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
}
