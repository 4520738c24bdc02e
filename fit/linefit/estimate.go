package linefit

import (
	"math"

	"github.com/cwbudde/algo-linefit/fit/line"
)

// LineEstimate is a quick, non-iterative measurement of a single line.
type LineEstimate struct {
	Peak            float64 // height above background, negative for absorption
	Centre          float64 // intensity-weighted centre of the half-maximum core
	FWHM            float64 // full width at half maximum, interpolated
	EquivalentWidth float64 // ∫(1 - y/background)dx, zero without a background
	Asymmetry       float64 // (right half width - left half width) / FWHM
	Absorption      bool
}

// Estimate measures the dominant line in (x, y). x must be sorted
// ascending. background may be nil, meaning zero; otherwise it has one
// value per sample.
//
// The peak is the extremum of the background-subtracted data, the width
// is found by interpolating the half-maximum crossings either side of it
// and the centre is the centroid of the samples above half maximum.
func Estimate(x, y, background []float64) LineEstimate {
	n := min(len(x), len(y))
	if n == 0 {
		return LineEstimate{}
	}

	d := make([]float64, n)
	sum := 0.0

	for i := range n {
		d[i] = y[i]
		if background != nil && i < len(background) {
			d[i] -= background[i]
		}

		sum += d[i]
	}

	est := LineEstimate{Absorption: sum < 0}
	if est.Absorption {
		for i := range d {
			d[i] = -d[i]
		}
	}

	peakIdx := 0
	for i, v := range d {
		if v > d[peakIdx] {
			peakIdx = i
		}
	}

	peak := d[peakIdx]
	est.Peak = peak
	est.Centre = x[peakIdx]

	if est.Absorption {
		est.Peak = -peak
	}

	if background != nil && len(background) >= n {
		est.EquivalentWidth = equivalentWidth(x[:n], y[:n], background)
	}

	if !(peak > 0) {
		return est
	}

	half := peak / 2

	lower := x[0]
	for i := peakIdx; i >= 1; i-- {
		if d[i-1] <= half && d[i] > half {
			lower = crossing(x[i-1], x[i], d[i-1], d[i], half)
			break
		}
	}

	upper := x[n-1]
	for i := peakIdx; i < n-1; i++ {
		if d[i+1] <= half && d[i] > half {
			upper = crossing(x[i], x[i+1], d[i], d[i+1], half)
			break
		}
	}

	est.FWHM = upper - lower

	wsum, xsum := 0.0, 0.0
	for i, v := range d {
		if v > half {
			wsum += v
			xsum += v * x[i]
		}
	}

	if wsum > 0 {
		est.Centre = xsum / wsum
	}

	if est.FWHM > 0 {
		est.Asymmetry = ((upper - est.Centre) - (est.Centre - lower)) / est.FWHM
	}

	return est
}

// crossing linearly interpolates the x where the data crosses level
// between (x0, v0) and (x1, v1).
func crossing(x0, x1, v0, v1, level float64) float64 {
	dv := v1 - v0
	if dv == 0 {
		return (x0 + x1) / 2
	}

	return x0 + (level-v0)/dv*(x1-x0)
}

func equivalentWidth(x, y, bg []float64) float64 {
	ew := 0.0

	for i := 1; i < len(x); i++ {
		if bg[i-1] == 0 || bg[i] == 0 {
			continue
		}

		a := 1 - y[i-1]/bg[i-1]
		b := 1 - y[i]/bg[i]
		ew += 0.5 * (a + b) * (x[i] - x[i-1])
	}

	return ew
}

// voigtSplit is the fraction of an estimated FWHM given to the Gaussian
// and Lorentzian parts of a Voigt guess, 1:3, normalised so that the
// resulting profile has the estimated FWHM.
var voigtSplit = 1 / (0.5346*0.75 + math.Sqrt(0.2166*0.75*0.75+0.25*0.25))

// Guess returns an initial profile of the given kind matching est: same
// peak, centre and FWHM. A Voigt guess puts a quarter of the width in its
// Gaussian part.
func Guess(kind line.Kind, est LineEstimate) (line.Profile, error) {
	fwhm := est.FWHM
	if !(fwhm > 0) {
		fwhm = 1
	}

	switch kind {
	case line.KindGaussian:
		return line.NewProfile(kind, est.Peak, est.Centre, fwhm/(2*math.Sqrt(2*math.Ln2)))
	case line.KindLorentzian:
		return line.NewProfile(kind, est.Peak, est.Centre, fwhm/(2*math.Sqrt2))
	default:
		fg := 0.25 * fwhm * voigtSplit
		fl := 0.75 * fwhm * voigtSplit

		return line.NewProfile(kind, est.Peak, est.Centre, fg/(2*math.Sqrt(2*math.Ln2)), fl)
	}
}
