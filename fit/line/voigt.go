package line

import "math"

// Voigt is the convolution of a Gaussian of standard deviation gw with a
// Lorentzian of full width lw, scaled so that its peak equals s.
//
// The shape is Re w(z)/Re w(iY) with z = X + iY,
//
//	X = (x-c)/(√2·gw),  Y = lw/(2√2·gw),
//
// and w the Faddeeva function. The peak normalisation depends on the
// widths and is recomputed from the parameter vector on every evaluation.
type Voigt struct {
	p [4]Param
}

// NewVoigt returns a Voigt profile with peak scale at centre, Gaussian
// standard deviation gaussWidth and Lorentzian FWHM lorentzWidth.
func NewVoigt(scale, centre, gaussWidth, lorentzWidth float64) *Voigt {
	v := &Voigt{}
	v.p[IndexScale].Value = scale
	v.p[IndexCentre].Value = centre
	v.p[IndexWidth].Value = gaussWidth
	v.p[IndexLorentzWidth].Value = lorentzWidth

	return v
}

func (*Voigt) profile() {}

// Kind returns KindVoigt.
func (*Voigt) Kind() Kind { return KindVoigt }

// NumParams returns 4.
func (*Voigt) NumParams() int { return 4 }

// Params returns scale, centre, Gaussian width and Lorentzian width.
func (v *Voigt) Params() []*Param { return paramPtrs(v.p[:]) }

// Scale returns the peak height.
func (v *Voigt) Scale() float64 { return v.p[IndexScale].Value }

// Centre returns the line position.
func (v *Voigt) Centre() float64 { return v.p[IndexCentre].Value }

// GaussWidth returns the standard deviation of the Gaussian component.
func (v *Voigt) GaussWidth() float64 { return v.p[IndexWidth].Value }

// LorentzWidth returns the full width of the Lorentzian component.
func (v *Voigt) LorentzWidth() float64 { return v.p[IndexLorentzWidth].Value }

// Flux returns the integrated area s·√(2π)·gw/K(0, Y).
func (v *Voigt) Flux() float64 {
	gw := v.GaussWidth()
	_, y := voigtXY(0, v.Centre(), gw, v.LorentzWidth())
	k0, _, _ := faddeeva(0, y)

	return v.Scale() * sqrt2Pi * gw / k0
}

// FWHM returns the Olivero-Longbothum approximation
// 0.5346·fL + √(0.2166·fL² + fG²), accurate to about 0.02%.
func (v *Voigt) FWHM() float64 {
	fl := v.LorentzWidth()
	fg := gaussFWHM * v.GaussWidth()

	return 0.5346*fl + math.Sqrt(0.2166*fl*fl+fg*fg)
}

// Eval returns the profile at x for the current parameters.
func (v *Voigt) Eval(x float64) float64 {
	p := [4]float64{v.p[0].Value, v.p[1].Value, v.p[2].Value, v.p[3].Value}
	return v.EvalDeriv(x, p[:], nil)
}

// EvalDeriv returns the profile at x for params and writes the partial
// derivatives with respect to scale, centre and both widths into deriv.
func (*Voigt) EvalDeriv(x float64, params, deriv []float64) float64 {
	s, c := params[IndexScale], params[IndexCentre]
	gw, lw := params[IndexWidth], params[IndexLorentzWidth]

	X, Y := voigtXY(x, c, gw, lw)
	k, kx, ky := faddeeva(X, Y)
	k0, _, k0y := faddeeva(0, Y)

	val := s * k / k0

	if deriv != nil {
		dXdc := -1 / (math.Sqrt2 * gw)
		dXdg := -X / gw
		dYdg := -Y / gw
		dYdl := 1 / (2 * math.Sqrt2 * gw)

		// ∂(K/K0)/∂Y
		dY := ky/k0 - k*k0y/(k0*k0)

		deriv[IndexScale] = k / k0
		deriv[IndexCentre] = s * kx / k0 * dXdc
		deriv[IndexWidth] = s * (kx/k0*dXdg + dY*dYdg)
		deriv[IndexLorentzWidth] = s * dY * dYdl
	}

	return val
}

// ValidParams requires both widths to be positive.
func (*Voigt) ValidParams(params []float64) bool {
	return finite(params[IndexScale], params[IndexCentre]) &&
		positiveFinite(params[IndexWidth]) && positiveFinite(params[IndexLorentzWidth])
}

func voigtXY(x, c, gw, lw float64) (X, Y float64) {
	return (x - c) / (math.Sqrt2 * gw), lw / (2 * math.Sqrt2 * gw)
}
