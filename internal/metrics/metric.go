package metrics

import "github.com/san-kum/rdsim/internal/physics"

// Field is the read side of an engine that metrics observe.
type Field interface {
	Steps() int
	Time() float64
	Dt() float64
	Stats() physics.Stats
	Valid() bool
}

// Metric accumulates a single scalar over a run.
type Metric interface {
	Name() string
	Observe(f Field)
	Value() float64
	Reset()
}

// Sample is one row of the per-run statistics series.
type Sample struct {
	Step  int     `json:"step"`
	Time  float64 `json:"time"`
	Dt    float64 `json:"dt"`
	UMin  float64 `json:"umin"`
	UMax  float64 `json:"umax"`
	VMin  float64 `json:"vmin"`
	VMax  float64 `json:"vmax"`
	VMean float64 `json:"vmean"`
}

func Snapshot(f Field) Sample {
	st := f.Stats()
	return Sample{
		Step:  f.Steps(),
		Time:  f.Time(),
		Dt:    f.Dt(),
		UMin:  st.UMin,
		UMax:  st.UMax,
		VMin:  st.VMin,
		VMax:  st.VMax,
		VMean: st.VMean,
	}
}
