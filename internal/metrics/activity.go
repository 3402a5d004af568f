package metrics

import "math"

// Activity averages |d(mean v)/dt| between consecutive observed updates. It
// falls toward zero as a pattern settles.
type Activity struct {
	name    string
	prev    float64
	seen    bool
	sum     float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{
		name: "activity",
	}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Observe(f Field) {
	v := f.Stats().VMean
	if a.seen && f.Dt() > 0 {
		a.sum += math.Abs(v-a.prev) / f.Dt()
		a.samples++
	}
	a.prev = v
	a.seen = true
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Activity) Reset() {
	a.prev = 0
	a.seen = false
	a.sum = 0
	a.samples = 0
}
