package line

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by profile constructors and parsers.
var (
	ErrUnknownKind = errors.New("line: unknown profile kind")
	ErrParamCount  = errors.New("line: wrong number of parameters")
)

// Parameter indices within a profile's parameter vector.
const (
	IndexScale        = 0
	IndexCentre       = 1
	IndexWidth        = 2 // Gaussian σ, Lorentzian width, Voigt Gaussian width
	IndexLorentzWidth = 3 // Voigt only
)

// Param is one model parameter: its value, the standard error from the
// last fit and whether the fit must hold it constant.
type Param struct {
	Value float64
	Error float64
	Fixed bool
}

// Model is an analytic function of one variable with a fixed-size
// parameter vector.
type Model interface {
	// NumParams returns the length of the parameter vector.
	NumParams() int
	// Eval returns the value at x for the model's own parameters.
	Eval(x float64) float64
	// EvalDeriv returns the value at x for the parameter vector params and
	// writes ∂value/∂params[j] into deriv[j]. deriv may be nil.
	EvalDeriv(x float64, params, deriv []float64) float64
	// Params returns the model's parameters in vector order. The pointers
	// refer to the model's own storage.
	Params() []*Param
	// ValidParams reports whether params lies in the model's domain.
	ValidParams(params []float64) bool

	Scale() float64
	Centre() float64
	Flux() float64
}

// Profile is a single line shape: one of *Gaussian, *Lorentzian or *Voigt.
type Profile interface {
	Model
	Kind() Kind
	FWHM() float64

	profile()
}

// Kind identifies a profile shape.
type Kind int

const (
	KindGaussian Kind = iota
	KindLorentzian
	KindVoigt
)

// String returns the configuration name: gauss, lorentz or voigt.
func (k Kind) String() string {
	switch k {
	case KindGaussian:
		return "gauss"
	case KindLorentzian:
		return "lorentz"
	case KindVoigt:
		return "voigt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NumParams returns the parameter count of profiles of kind k, or 0 for an
// unknown kind.
func (k Kind) NumParams() int {
	switch k {
	case KindGaussian, KindLorentzian:
		return 3
	case KindVoigt:
		return 4
	default:
		return 0
	}
}

// ParseKind parses a profile name. Accepted names are gauss, gaussian,
// lorentz, lorentzian and voigt, in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gauss", "gaussian":
		return KindGaussian, nil
	case "lorentz", "lorentzian":
		return KindLorentzian, nil
	case "voigt":
		return KindVoigt, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewProfile builds a profile of the given kind from its parameter values
// in vector order (scale, centre, width[, Lorentzian width]).
func NewProfile(kind Kind, values ...float64) (Profile, error) {
	n := kind.NumParams()
	if n == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	if len(values) != n {
		return nil, fmt.Errorf("%w: %v takes %d values, got %d", ErrParamCount, kind, n, len(values))
	}

	switch kind {
	case KindGaussian:
		return NewGaussian(values[0], values[1], values[2]), nil
	case KindLorentzian:
		return NewLorentzian(values[0], values[1], values[2]), nil
	default:
		return NewVoigt(values[0], values[1], values[2], values[3]), nil
	}
}

// Values returns the current parameter values of m in vector order.
func Values(m Model) []float64 {
	params := m.Params()
	out := make([]float64, len(params))

	for i, p := range params {
		out[i] = p.Value
	}

	return out
}

// EvalSlice evaluates m at every x and stores the result in dst, which is
// grown if it is shorter than x. Composites are accumulated child by
// child.
func EvalSlice(dst []float64, m Model, x []float64) []float64 {
	if cap(dst) < len(x) {
		dst = make([]float64, len(x))
	}

	dst = dst[:len(x)]

	c, ok := m.(*Composite)
	if !ok {
		for i, xi := range x {
			dst[i] = m.Eval(xi)
		}

		return dst
	}

	for i := range dst {
		dst[i] = 0
	}

	if len(c.models) == 0 {
		return dst
	}

	tmp := make([]float64, len(x))
	for _, child := range c.models {
		tmp = EvalSlice(tmp, child, x)
		vecmath.AddBlockInPlace(dst, tmp)
	}

	return dst
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func paramPtrs(p []Param) []*Param {
	out := make([]*Param, len(p))
	for i := range p {
		out[i] = &p[i]
	}

	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
