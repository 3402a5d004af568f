package viz

import "math"

// Slider is a bounded control that moves in fixed increments.
type Slider struct {
	Key            string
	Min, Max, Step float64
}

// Sliders lists the live controls in display order.
var Sliders = []Slider{
	{Key: "F", Min: 0.001, Max: 0.3, Step: 0.001},
	{Key: "k", Min: 0.001, Max: 0.3, Step: 0.001},
	{Key: "Du", Min: 0, Max: 0.3, Step: 0.001},
	{Key: "Dv", Min: 0, Max: 0.3, Step: 0.001},
	{Key: "draw_skip", Min: 1, Max: 100, Step: 1},
	{Key: "contrast", Min: 0.1, Max: 10, Step: 0.1},
}

// Move shifts v by n steps, snaps it to the step grid and clamps it.
func (s Slider) Move(v float64, n int) float64 {
	v = s.Min + math.Round((v-s.Min)/s.Step+float64(n))*s.Step
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Fraction is the position of v along the slider.
func (s Slider) Fraction(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return math.Max(0, math.Min(1, (v-s.Min)/(s.Max-s.Min)))
}
