package line

import "math"

// sqrt2Pi is √(2π).
var sqrt2Pi = math.Sqrt(2 * math.Pi)

// gaussFWHM converts a Gaussian σ to its full width at half maximum.
var gaussFWHM = 2 * math.Sqrt(2*math.Ln2)

// Gaussian is the profile s·exp(-½((x-c)/σ)²).
type Gaussian struct {
	p [3]Param
}

// NewGaussian returns a Gaussian with peak scale at centre and standard
// deviation width.
func NewGaussian(scale, centre, width float64) *Gaussian {
	g := &Gaussian{}
	g.p[IndexScale].Value = scale
	g.p[IndexCentre].Value = centre
	g.p[IndexWidth].Value = width

	return g
}

func (*Gaussian) profile() {}

// Kind returns KindGaussian.
func (*Gaussian) Kind() Kind { return KindGaussian }

// NumParams returns 3.
func (*Gaussian) NumParams() int { return 3 }

// Params returns scale, centre and width.
func (g *Gaussian) Params() []*Param { return paramPtrs(g.p[:]) }

// Scale returns the peak height.
func (g *Gaussian) Scale() float64 { return g.p[IndexScale].Value }

// Centre returns the line position.
func (g *Gaussian) Centre() float64 { return g.p[IndexCentre].Value }

// Width returns the standard deviation σ.
func (g *Gaussian) Width() float64 { return g.p[IndexWidth].Value }

// Flux returns the integrated area s·σ·√(2π).
func (g *Gaussian) Flux() float64 {
	return g.Scale() * g.Width() * sqrt2Pi
}

// FWHM returns 2√(2ln2)·σ.
func (g *Gaussian) FWHM() float64 {
	return gaussFWHM * g.Width()
}

// Eval returns the profile at x for the current parameters.
func (g *Gaussian) Eval(x float64) float64 {
	p := [3]float64{g.p[0].Value, g.p[1].Value, g.p[2].Value}
	return g.EvalDeriv(x, p[:], nil)
}

// EvalDeriv returns the profile at x for params and writes the partial
// derivatives with respect to scale, centre and width into deriv.
func (*Gaussian) EvalDeriv(x float64, params, deriv []float64) float64 {
	s, c, w := params[IndexScale], params[IndexCentre], params[IndexWidth]

	d := x - c
	e := math.Exp(-0.5 * d * d / (w * w))
	v := s * e

	if deriv != nil {
		deriv[IndexScale] = e
		deriv[IndexCentre] = v * d / (w * w)
		deriv[IndexWidth] = v * d * d / (w * w * w)
	}

	return v
}

// ValidParams requires a positive width.
func (*Gaussian) ValidParams(params []float64) bool {
	return finite(params[IndexScale], params[IndexCentre]) && positiveFinite(params[IndexWidth])
}
