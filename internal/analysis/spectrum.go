package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of the mean-removed series. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// uniformPrefix returns how many leading samples share the spacing of the
// first two. A run's final sample may fall off the sampling grid.
func uniformPrefix(times []float64) (int, float64) {
	if len(times) < 2 {
		return len(times), 0
	}
	dt := times[1] - times[0]
	n := 2
	for n < len(times) && math.Abs(times[n]-times[n-1]-dt) <= 1e-9*math.Abs(dt) {
		n++
	}
	return n, dt
}

// DominantPeriod is the period of the strongest non-constant frequency of
// a uniformly sampled series, e.g. the pulsation of a cloud's radius.
// ok is false when there are fewer than four uniform samples or the
// series is flat.
func DominantPeriod(times, series []float64) (period float64, ok bool) {
	n, dt := uniformPrefix(times[:min(len(times), len(series))])
	if n < 4 || !(dt > 0) {
		return 0, false
	}
	ps := PowerSpectrum(series[:n])
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, false
	}
	return float64(n) * dt / float64(best), true
}
