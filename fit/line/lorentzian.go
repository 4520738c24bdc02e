package line

import "math"

// Lorentzian is the profile s/(1 + ½((x-c)/w)²). Its half width at half
// maximum is √2·w.
type Lorentzian struct {
	p [3]Param
}

// NewLorentzian returns a Lorentzian with peak scale at centre.
func NewLorentzian(scale, centre, width float64) *Lorentzian {
	l := &Lorentzian{}
	l.p[IndexScale].Value = scale
	l.p[IndexCentre].Value = centre
	l.p[IndexWidth].Value = width

	return l
}

func (*Lorentzian) profile() {}

// Kind returns KindLorentzian.
func (*Lorentzian) Kind() Kind { return KindLorentzian }

// NumParams returns 3.
func (*Lorentzian) NumParams() int { return 3 }

// Params returns scale, centre and width.
func (l *Lorentzian) Params() []*Param { return paramPtrs(l.p[:]) }

// Scale returns the peak height.
func (l *Lorentzian) Scale() float64 { return l.p[IndexScale].Value }

// Centre returns the line position.
func (l *Lorentzian) Centre() float64 { return l.p[IndexCentre].Value }

// Width returns w, the half width at half maximum divided by √2.
func (l *Lorentzian) Width() float64 { return l.p[IndexWidth].Value }

// Flux returns the integrated area π/2·s·w·2√2.
func (l *Lorentzian) Flux() float64 {
	return math.Pi * math.Sqrt2 * l.Scale() * l.Width()
}

// FWHM returns 2√2·w.
func (l *Lorentzian) FWHM() float64 {
	return 2 * math.Sqrt2 * l.Width()
}

// Eval returns the profile at x for the current parameters.
func (l *Lorentzian) Eval(x float64) float64 {
	p := [3]float64{l.p[0].Value, l.p[1].Value, l.p[2].Value}
	return l.EvalDeriv(x, p[:], nil)
}

// EvalDeriv returns the profile at x for params and writes the partial
// derivatives with respect to scale, centre and width into deriv.
func (*Lorentzian) EvalDeriv(x float64, params, deriv []float64) float64 {
	s, c, w := params[IndexScale], params[IndexCentre], params[IndexWidth]

	u := (x - c) / w
	q := 1 + 0.5*u*u
	v := s / q

	if deriv != nil {
		t := s / (w * q * q)
		deriv[IndexScale] = 1 / q
		deriv[IndexCentre] = t * u
		deriv[IndexWidth] = t * u * u
	}

	return v
}

// ValidParams requires a positive width.
func (*Lorentzian) ValidParams(params []float64) bool {
	return finite(params[IndexScale], params[IndexCentre]) && positiveFinite(params[IndexWidth])
}
