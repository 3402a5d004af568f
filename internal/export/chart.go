package export

import (
	"fmt"
	"io"

	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// StatsChart renders the min, max and mean of v against simulated time as
// a PNG.
func StatsChart(w io.Writer, title string, samples []metrics.Sample, width, height int) error {
	if len(samples) < 2 {
		return fmt.Errorf("need at least 2 samples, have %d", len(samples))
	}

	xs := make([]float64, len(samples))
	vmin := make([]float64, len(samples))
	vmax := make([]float64, len(samples))
	vmean := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Time
		vmin[i] = s.VMin
		vmax[i] = s.VMax
		vmean[i] = s.VMean
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "v",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "v max",
				XValues: xs,
				YValues: vmax,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "v mean",
				XValues: xs,
				YValues: vmean,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 3.0},
			},
			chart.ContinuousSeries{
				Name:    "v min",
				XValues: xs,
				YValues: vmin,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
