package linefit

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-linefit/fit/line"
	"github.com/cwbudde/algo-linefit/fit/lm"
)

// ErrInvalidInput is returned for inconsistent sample arrays or initial
// parameters outside the model's domain.
var ErrInvalidInput = errors.New("linefit: invalid input")

// Result summarises one fit. Values and Errors are in parameter-vector
// order; fixed parameters report a zero error.
type Result struct {
	ChiSquare        float64
	Converged        bool
	Iterations       int
	DegreesOfFreedom int
	Values           []float64
	Errors           []float64
}

// Fitter fits a model to data. The model is updated in place by Fit.
type Fitter struct {
	model line.Model
	cfg   config

	chiSq     float64
	converged bool
}

// New returns a Fitter for model. The model's current parameter values
// are the initial guesses and Param.Fixed selects the fixed parameters.
func New(model line.Model, opts ...Option) *Fitter {
	return &Fitter{
		model: model,
		cfg:   applyOptions(opts),
	}
}

// Model returns the fitted model.
func (f *Fitter) Model() line.Model { return f.model }

// ChiSquare returns the chi-square of the last fit.
func (f *Fitter) ChiSquare() float64 { return f.chiSq }

// Converged reports whether the last fit met its convergence test.
func (f *Fitter) Converged() bool { return f.converged }

// Fit fits the model to (x, y) with per-sample uncertainties sigma, which
// may be nil for unit weights. On success the model's parameters hold the
// fitted values and their standard errors.
//
// A degenerate problem, such as two identical floating lines, returns an
// error matching lm.ErrSingularMatrix and leaves the model unchanged.
func (f *Fitter) Fit(x, y, sigma []float64) (Result, error) {
	if err := f.validate(x, y, sigma); err != nil {
		return Result{}, err
	}

	params := f.model.Params()

	opt, err := lm.New(f.model, len(x), len(params), f.cfg.lm...)
	if err != nil {
		return Result{}, fmt.Errorf("linefit: %w", err)
	}

	if err := opt.SetSamples(x, y, sigma); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	for i, p := range params {
		if err := opt.SetParam(i, p.Value, p.Fixed); err != nil {
			return Result{}, fmt.Errorf("linefit: %w", err)
		}
	}

	chi2, err := opt.Fit()
	if err != nil {
		return Result{}, fmt.Errorf("linefit: %w", err)
	}

	rescale := f.cfg.rescale == rescaleAlways || (f.cfg.rescale == rescaleAuto && sigma == nil)

	res := Result{
		ChiSquare:        chi2,
		Converged:        opt.Converged(),
		Iterations:       opt.Iterations(),
		DegreesOfFreedom: opt.DegreesOfFreedom(),
		Values:           make([]float64, len(params)),
		Errors:           make([]float64, len(params)),
	}

	for i, p := range params {
		if !p.Fixed {
			p.Value = opt.Param(i)
		}

		p.Error = opt.ParamError(i, rescale)
		res.Values[i] = p.Value
		res.Errors[i] = p.Error
	}

	f.chiSq = chi2
	f.converged = res.Converged

	return res, nil
}

func (f *Fitter) validate(x, y, sigma []float64) error {
	if f.model == nil || f.model.NumParams() == 0 {
		return fmt.Errorf("%w: model has no parameters", ErrInvalidInput)
	}

	if len(x) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidInput)
	}

	if len(y) != len(x) {
		return fmt.Errorf("%w: %d x values but %d y values", ErrInvalidInput, len(x), len(y))
	}

	if sigma != nil && len(sigma) != len(x) {
		return fmt.Errorf("%w: %d x values but %d sigma values", ErrInvalidInput, len(x), len(sigma))
	}

	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("%w: sample %d is not finite (x = %v, y = %v)", ErrInvalidInput, i, x[i], y[i])
		}
	}

	for i, s := range sigma {
		if s < 0 || math.IsInf(s, 0) {
			return fmt.Errorf("%w: sigma[%d] = %v", ErrInvalidInput, i, s)
		}
	}

	if !f.model.ValidParams(line.Values(f.model)) {
		return fmt.Errorf("%w: initial parameters outside the model domain (widths must be positive)", ErrInvalidInput)
	}

	return nil
}

// Residuals returns y - model(x) for the model's current parameters.
func (f *Fitter) Residuals(x, y []float64) []float64 {
	n := min(len(x), len(y))
	r := line.EvalSlice(nil, f.model, x[:n])

	vecmath.ScaleBlockInPlace(r, -1)
	vecmath.AddBlockInPlace(r, y[:n])

	return r
}

// RMS returns the root-mean-square residual of the model against (x, y).
func (f *Fitter) RMS(x, y []float64) float64 {
	r := f.Residuals(x, y)
	if len(r) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(r, r) / float64(len(r)))
}
