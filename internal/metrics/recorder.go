package metrics

// Recorder keeps a Sample every n steps.
type Recorder struct {
	every   int
	samples []Sample
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) Name() string { return "samples" }

func (r *Recorder) Observe(f Field) {
	if f.Steps()%r.every != 0 {
		return
	}
	r.samples = append(r.samples, Snapshot(f))
}

func (r *Recorder) Value() float64 { return float64(len(r.samples)) }

func (r *Recorder) Reset() { r.samples = r.samples[:0] }

func (r *Recorder) Samples() []Sample { return r.samples }

func (r *Recorder) Last() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}

// Series extracts one column of the recorded samples.
func (r *Recorder) Series(pick func(Sample) float64) []float64 {
	out := make([]float64, len(r.samples))
	for i, s := range r.samples {
		out[i] = pick(s)
	}
	return out
}
