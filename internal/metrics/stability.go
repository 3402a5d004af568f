package metrics

// Stability is the fraction of observed steps whose fields were finite and
// stayed within margin of [0, 1].
type Stability struct {
	name       string
	margin     float64
	violations int
	samples    int
}

func NewStability(margin float64) *Stability {
	return &Stability{
		name:   "stability",
		margin: margin,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f Field) {
	s.samples++
	if !f.Valid() {
		s.violations++
		return
	}
	st := f.Stats()
	lo, hi := -s.margin, 1+s.margin
	if st.UMin < lo || st.VMin < lo || st.UMax > hi || st.VMax > hi {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Coverage averages the mean of v over observed steps.
type Coverage struct {
	sum     float64
	samples int
}

func NewCoverage() *Coverage { return &Coverage{} }

func (c *Coverage) Name() string { return "v_mean" }

func (c *Coverage) Observe(f Field) {
	c.sum += f.Stats().VMean
	c.samples++
}

func (c *Coverage) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Coverage) Reset() {
	c.sum = 0
	c.samples = 0
}
