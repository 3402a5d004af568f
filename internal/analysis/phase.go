package analysis

import "gonum.org/v1/gonum/mat"

// PhasePoint is the spatial mean of u and v after one update.
type PhasePoint struct {
	Step int
	U, V float64
}

// PhasePortrait records the trajectory of (mean u, mean v). Every selects
// which updates are kept; values below 1 keep all of them.
type PhasePortrait struct {
	Every  int
	Points []PhasePoint
}

func NewPhasePortrait(every int) *PhasePortrait {
	return &PhasePortrait{Every: max(1, every)}
}

// Record appends the means of u and v when step is a multiple of Every.
func (p *PhasePortrait) Record(step int, u, v mat.Matrix) {
	if p.Every > 1 && step%p.Every != 0 {
		return
	}
	p.Points = append(p.Points, PhasePoint{Step: step, U: mean(u), V: mean(v)})
}

// Coords splits the trajectory into parallel slices for plotting.
func (p *PhasePortrait) Coords() (us, vs []float64) {
	us = make([]float64, len(p.Points))
	vs = make([]float64, len(p.Points))
	for i, pt := range p.Points {
		us[i], vs[i] = pt.U, pt.V
	}
	return us, vs
}

func mean(m mat.Matrix) float64 {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return 0
	}
	return mat.Sum(m) / float64(r*c)
}
