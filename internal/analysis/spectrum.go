package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/rdsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Spectrum returns the power of the mean-removed field averaged over rings
// of equal spatial frequency. Bin r holds frequencies of r cycles across
// the shorter grid side, for r in [0, min(H, W)/2].
func Spectrum(field mat.Matrix) ([]float64, error) {
	h, w := field.Dims()
	if h == 0 || w == 0 {
		return nil, dynamo.ErrInvalidShape
	}

	mean := 0.0
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			mean += field.At(i, j)
		}
	}
	mean /= float64(h * w)

	rows := make([][]float64, h)
	for i := range rows {
		rows[i] = make([]float64, w)
		for j := range rows[i] {
			rows[i][j] = field.At(i, j) - mean
		}
	}
	coef := fft.FFT2Real(rows)

	side := min(h, w)
	nbins := side/2 + 1
	power := make([]float64, nbins)
	counts := make([]int, nbins)
	for ky := 0; ky < h; ky++ {
		fy := float64(wrapIndex(ky, h)) / float64(h)
		for kx := 0; kx < w; kx++ {
			fx := float64(wrapIndex(kx, w)) / float64(w)
			r := int(math.Round(math.Hypot(fy, fx) * float64(side)))
			if r >= nbins {
				continue
			}
			a := cmplx.Abs(coef[ky][kx])
			power[r] += a * a
			counts[r]++
		}
	}
	for r := range power {
		if counts[r] > 0 {
			power[r] /= float64(counts[r])
		}
	}
	return power, nil
}

func wrapIndex(k, n int) int {
	if k > n/2 {
		return k - n
	}
	return k
}

// DominantWavelength returns the pattern wavelength in cells, taken from
// the strongest non-constant bin of Spectrum. A featureless field yields 0.
func DominantWavelength(field mat.Matrix) (float64, error) {
	power, err := Spectrum(field)
	if err != nil {
		return 0, err
	}
	best, peak := 0, 0.0
	for r := 1; r < len(power); r++ {
		if power[r] > peak {
			best, peak = r, power[r]
		}
	}
	if best == 0 || peak < 1e-12 {
		return 0, nil
	}
	h, w := field.Dims()
	return float64(min(h, w)) / float64(best), nil
}

// Coverage is the fraction of cells where field exceeds threshold.
func Coverage(field mat.Matrix, threshold float64) float64 {
	h, w := field.Dims()
	if h == 0 || w == 0 {
		return 0
	}
	n := 0
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			if field.At(i, j) > threshold {
				n++
			}
		}
	}
	return float64(n) / float64(h*w)
}

// Summary describes a settled pattern.
type Summary struct {
	Wavelength float64 `json:"wavelength"`
	Coverage   float64 `json:"coverage"`
}

func (s Summary) String() string {
	if s.Wavelength == 0 {
		return fmt.Sprintf("no pattern (coverage %.1f%%)", 100*s.Coverage)
	}
	return fmt.Sprintf("wavelength %.2f cells, coverage %.1f%%", s.Wavelength, 100*s.Coverage)
}

// CoverageThreshold separates pattern from background in v.
const CoverageThreshold = 0.2

func Summarize(v mat.Matrix) (Summary, error) {
	lambda, err := DominantWavelength(v)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Wavelength: lambda, Coverage: Coverage(v, CoverageThreshold)}, nil
}
