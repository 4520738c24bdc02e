package lm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by the optimizer.
var (
	ErrSingularMatrix = errors.New("lm: singular normal-equations matrix")
	ErrInvalidInput   = errors.New("lm: invalid input")
)

const (
	initialLambda = 0.001

	// maxStepHalvings bounds how often a step that leaves the model's
	// parameter domain is halved before it counts as rejected.
	maxStepHalvings = 30
)

// Evaluator is the model capability the optimizer fits. EvalDeriv returns
// the model value at x for the full parameter vector params and writes the
// partial derivative with respect to every parameter into deriv
// (len(deriv) == len(params)). It must not retain either slice.
type Evaluator interface {
	EvalDeriv(x float64, params, deriv []float64) float64
}

// Validator is implemented by evaluators that restrict their parameter
// domain. A step that leaves the domain is halved until the trial point is
// valid again; if that fails the step counts as rejected.
type Validator interface {
	ValidParams(params []float64) bool
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(x float64, params, deriv []float64) float64

// EvalDeriv calls f(x, params, deriv).
func (f EvaluatorFunc) EvalDeriv(x float64, params, deriv []float64) float64 {
	return f(x, params, deriv)
}

// Optimizer fits the parameters of an Evaluator to a sample set using the
// Levenberg-Marquardt method.
type Optimizer struct {
	fn  Evaluator
	cfg Config

	n, m int

	x, y, sigma []float64
	model       []float64

	params   []float64
	trial    []float64
	floating []bool
	nfit     int

	lambda    float64
	chiSq     float64
	bestChiSq float64

	// Normal equations at the current best point (nfit×nfit block of an
	// m×m arena) and the trial system / covariance work area.
	alpha []float64
	beta  []float64
	work  []float64
	rhs   []float64
	dyda  []float64
	covar []float64

	solver solver

	iterations int
	converged  bool
}

// New creates an optimizer for nSamples samples and nParams parameters.
// All parameters start at zero and floating; all sigmas start at 1.
func New(fn Evaluator, nSamples, nParams int, opts ...Option) (*Optimizer, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidInput)
	}

	o := &Optimizer{
		fn:  fn,
		cfg: ApplyOptions(opts...),
	}

	if err := o.Reset(nSamples, nParams); err != nil {
		return nil, err
	}

	return o, nil
}

// Reset re-allocates the optimizer for a new sample and parameter count.
// Samples, parameters and any previous fit state are discarded.
func (o *Optimizer) Reset(nSamples, nParams int) error {
	if nSamples < 1 {
		return fmt.Errorf("%w: sample count must be >= 1, got %d", ErrInvalidInput, nSamples)
	}

	if nParams < 1 {
		return fmt.Errorf("%w: parameter count must be >= 1, got %d", ErrInvalidInput, nParams)
	}

	o.n, o.m = nSamples, nParams

	o.x = make([]float64, nSamples)
	o.y = make([]float64, nSamples)
	o.sigma = make([]float64, nSamples)
	o.model = make([]float64, nSamples)

	for i := range o.sigma {
		o.sigma[i] = 1
	}

	o.params = make([]float64, nParams)
	o.trial = make([]float64, nParams)
	o.floating = make([]bool, nParams)

	for i := range o.floating {
		o.floating[i] = true
	}

	o.alpha = make([]float64, nParams*nParams)
	o.beta = make([]float64, nParams)
	o.work = make([]float64, nParams*nParams)
	o.rhs = make([]float64, nParams)
	o.dyda = make([]float64, nParams)
	o.covar = make([]float64, nParams*nParams)
	o.solver = newSolver(nParams)

	o.lambda = -1
	o.chiSq = 0
	o.bestChiSq = 0
	o.iterations = 0
	o.converged = false

	return nil
}

// NumSamples returns the number of samples.
func (o *Optimizer) NumSamples() int { return o.n }

// NumParams returns the total number of parameters.
func (o *Optimizer) NumParams() int { return o.m }

// SetSample stores sample i. A sigma of zero or NaN means the uncertainty
// is unknown and is replaced by 1. x and y must be finite.
func (o *Optimizer) SetSample(i int, x, y, sigma float64) error {
	if i < 0 || i >= o.n {
		return fmt.Errorf("%w: sample index %d out of range [0,%d)", ErrInvalidInput, i, o.n)
	}

	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: sample %d: x = %v, y = %v is not finite", ErrInvalidInput, i, x, y)
	}

	s, err := normalizeSigma(sigma)
	if err != nil {
		return fmt.Errorf("sample %d: %w", i, err)
	}

	o.x[i], o.y[i], o.sigma[i] = x, y, s

	return nil
}

// SetSamples stores all samples at once. sigma may be nil for unit weights.
func (o *Optimizer) SetSamples(x, y, sigma []float64) error {
	if len(x) != o.n || len(y) != o.n {
		return fmt.Errorf("%w: got %d x and %d y values, want %d", ErrInvalidInput, len(x), len(y), o.n)
	}

	if sigma != nil && len(sigma) != o.n {
		return fmt.Errorf("%w: got %d sigma values, want %d", ErrInvalidInput, len(sigma), o.n)
	}

	for i := range x {
		s := 1.0
		if sigma != nil {
			s = sigma[i]
		}

		if err := o.SetSample(i, x[i], y[i], s); err != nil {
			return err
		}
	}

	return nil
}

func normalizeSigma(sigma float64) (float64, error) {
	switch {
	case sigma == 0 || math.IsNaN(sigma):
		return 1, nil
	case sigma < 0 || math.IsInf(sigma, 0):
		return 0, fmt.Errorf("%w: sigma must be positive and finite, got %v", ErrInvalidInput, sigma)
	}

	return sigma, nil
}

// SetParam seeds parameter i with value and marks it fixed or floating.
func (o *Optimizer) SetParam(i int, value float64, fixed bool) error {
	if i < 0 || i >= o.m {
		return fmt.Errorf("%w: parameter index %d out of range [0,%d)", ErrInvalidInput, i, o.m)
	}

	o.params[i] = value
	o.floating[i] = !fixed

	return nil
}

// SetFixed changes whether parameter i is held constant during the fit.
func (o *Optimizer) SetFixed(i int, fixed bool) error {
	if i < 0 || i >= o.m {
		return fmt.Errorf("%w: parameter index %d out of range [0,%d)", ErrInvalidInput, i, o.m)
	}

	o.floating[i] = !fixed

	return nil
}

// Param returns the current value of parameter i, or 0 if i is out of range.
func (o *Optimizer) Param(i int) float64 {
	if i < 0 || i >= o.m {
		return 0
	}

	return o.params[i]
}

// Params returns a copy of the parameter vector.
func (o *Optimizer) Params() []float64 {
	return append([]float64(nil), o.params...)
}

// IsFloating reports whether parameter i is adjusted by the fit.
func (o *Optimizer) IsFloating(i int) bool {
	return i >= 0 && i < o.m && o.floating[i]
}

// NumFloating returns the number of floating parameters.
func (o *Optimizer) NumFloating() int {
	n := 0

	for _, f := range o.floating {
		if f {
			n++
		}
	}

	return n
}

// ChiSquare returns the chi-square of the last fit or evaluation.
func (o *Optimizer) ChiSquare() float64 { return o.chiSq }

// Converged reports whether the last Fit stopped on its convergence test
// rather than by exhausting its iteration budget.
func (o *Optimizer) Converged() bool { return o.converged }

// Iterations returns the number of Marquardt iterations of the last Fit.
func (o *Optimizer) Iterations() int { return o.iterations }

// DegreesOfFreedom returns the number of samples minus the number of
// floating parameters.
func (o *Optimizer) DegreesOfFreedom() int { return o.n - o.NumFloating() }

// ModelValue returns the model at sample i as of the last Fit or Evaluate.
func (o *Optimizer) ModelValue(i int) float64 {
	if i < 0 || i >= o.n {
		return 0
	}

	return o.model[i]
}

// Evaluate recomputes the model values and chi-square at the current
// parameters without fitting.
func (o *Optimizer) Evaluate() float64 {
	chi2 := 0.0

	for i, x := range o.x {
		v := o.fn.EvalDeriv(x, o.params, o.dyda)
		o.model[i] = v

		dy := (o.y[i] - v) / o.sigma[i]
		chi2 += dy * dy
	}

	o.chiSq = chi2

	return chi2
}

// Covariance returns element (i, j) of the covariance matrix of the last
// fit. Entries involving fixed parameters are zero.
func (o *Optimizer) Covariance(i, j int) float64 {
	if i < 0 || i >= o.m || j < 0 || j >= o.m {
		return 0
	}

	return o.covar[i*o.m+j]
}

// CovarianceMatrix returns a copy of the covariance matrix of the last fit.
func (o *Optimizer) CovarianceMatrix() *mat.SymDense {
	return mat.NewSymDense(o.m, append([]float64(nil), o.covar...))
}

// ParamError returns the standard error of parameter i, sqrt(covar[i][i]).
// With rescale the error is scaled by sqrt(chi2/dof), i.e. as if the
// current chi-square represented a good fit; this is the useful estimate
// when no real uncertainties were supplied.
func (o *Optimizer) ParamError(i int, rescale bool) float64 {
	if i < 0 || i >= o.m {
		return 0
	}

	v := o.covar[i*o.m+i]
	if !(v > 0) {
		return 0
	}

	e := math.Sqrt(v)

	if rescale {
		if dof := o.DegreesOfFreedom(); dof > 0 {
			e *= math.Sqrt(o.chiSq / float64(dof))
		}
	}

	return e
}

// Fit runs the minimisation from the current parameters and returns the
// final chi-square. On return the parameters hold the best estimate and
// the covariance matrix is valid for the floating parameters.
//
// A singular normal-equations matrix aborts the fit with
// ErrSingularMatrix. Exhausting the iteration budget is not an error; see
// Converged.
func (o *Optimizer) Fit() (float64, error) {
	o.lambda = -1
	o.iterations = 0
	o.converged = false

	for i := range o.covar {
		o.covar[i] = 0
	}

	o.nfit = o.NumFloating()
	if o.nfit == 0 {
		o.converged = true
		return o.Evaluate(), nil
	}

	if err := o.step(); err != nil {
		return 0, err
	}

	floor := o.cfg.ZeroTolerance * o.dataNorm()
	failures := 0

	for o.iterations < o.cfg.MaxSteps {
		oldChiSq, oldLambda := o.bestChiSq, o.lambda

		if err := o.step(); err != nil {
			return 0, err
		}

		if o.lambda >= oldLambda {
			failures++
			if failures >= o.cfg.MaxIterations {
				o.converged = o.bestChiSq <= floor
				break
			}

			continue
		}

		failures = 0

		if o.bestChiSq/oldChiSq > o.cfg.Convergence {
			o.converged = true
			break
		}
	}

	o.lambda = 0
	if err := o.step(); err != nil {
		return 0, err
	}

	o.Evaluate()

	return o.chiSq, nil
}

// step performs one Marquardt iteration. With lambda < 0 it first builds
// the normal equations at the current parameters; with lambda == 0 it only
// solves the undamped system and stores the covariance.
func (o *Optimizer) step() error {
	m, nf := o.m, o.nfit

	if o.lambda < 0 {
		o.lambda = initialLambda
		o.bestChiSq = o.normalEquations(o.params, o.alpha, o.beta)
		o.chiSq = o.bestChiSq

		if math.IsNaN(o.bestChiSq) || math.IsInf(o.bestChiSq, 0) {
			return fmt.Errorf("%w: model is not finite at the initial parameters", ErrInvalidInput)
		}
	}

	for j := range nf {
		copy(o.work[j*m:j*m+nf], o.alpha[j*m:j*m+nf])
		o.work[j*m+j] = o.alpha[j*m+j] * (1 + o.lambda)
		o.rhs[j] = o.beta[j]
	}

	if err := o.solver.solve(o.work, o.rhs, nf); err != nil {
		return err
	}

	if o.lambda == 0 {
		o.expandCovariance()
		return nil
	}

	o.buildTrial()

	chi2 := math.Inf(1)
	if o.shrinkToDomain() {
		chi2 = o.normalEquations(o.trial, o.work, o.rhs)
	}

	accepted := chi2 < o.bestChiSq
	if accepted {
		o.lambda *= 0.1
		o.bestChiSq = chi2
		o.params, o.trial = o.trial, o.params
		o.alpha, o.work = o.work, o.alpha
		o.beta, o.rhs = o.rhs, o.beta
	} else {
		o.lambda *= 10
	}

	o.chiSq = o.bestChiSq
	o.iterations++

	if o.cfg.Observer != nil {
		o.cfg.Observer(Step{
			Iteration: o.iterations,
			Lambda:    o.lambda,
			ChiSquare: chi2,
			Best:      o.bestChiSq,
			Accepted:  accepted,
		})
	}

	return nil
}

// buildTrial sets trial to params plus the solved step in rhs.
func (o *Optimizer) buildTrial() {
	copy(o.trial, o.params)

	j := 0
	for l, f := range o.floating {
		if f {
			o.trial[l] += o.rhs[j]
			j++
		}
	}
}

// shrinkToDomain halves the step until the trial point satisfies the
// evaluator's Validator. It reports false if the point is still invalid
// after maxStepHalvings halvings.
func (o *Optimizer) shrinkToDomain() bool {
	v, ok := o.fn.(Validator)
	if !ok {
		return true
	}

	for range maxStepHalvings {
		if v.ValidParams(o.trial) {
			return true
		}

		for j := range o.nfit {
			o.rhs[j] *= 0.5
		}

		o.buildTrial()
	}

	return v.ValidParams(o.trial)
}

// normalEquations fills the nfit×nfit block of a and the first nfit entries
// of b for parameter vector p and returns the chi-square at p.
func (o *Optimizer) normalEquations(p, a, b []float64) float64 {
	m, nf := o.m, o.nfit

	for j := range nf {
		row := a[j*m : j*m+j+1]
		for k := range row {
			row[k] = 0
		}

		b[j] = 0
	}

	chi2 := 0.0

	for i, x := range o.x {
		v := o.fn.EvalDeriv(x, p, o.dyda)
		sig2i := 1 / (o.sigma[i] * o.sigma[i])
		dy := o.y[i] - v

		j := 0
		for l, fl := range o.floating {
			if !fl {
				continue
			}

			wt := o.dyda[l] * sig2i
			row := a[j*m:]

			k := 0
			for mm := 0; mm <= l; mm++ {
				if o.floating[mm] {
					row[k] += wt * o.dyda[mm]
					k++
				}
			}

			b[j] += dy * wt
			j++
		}

		chi2 += dy * dy * sig2i
	}

	for j := 1; j < nf; j++ {
		for k := range j {
			a[k*m+j] = a[j*m+k]
		}
	}

	return chi2
}

// expandCovariance copies the inverse of the floating block into the full
// m×m covariance matrix at the original parameter indices, leaving zeros
// for fixed parameters.
func (o *Optimizer) expandCovariance() {
	m := o.m

	for i := range o.covar {
		o.covar[i] = 0
	}

	j := 0
	for l1, f1 := range o.floating {
		if !f1 {
			continue
		}

		k := 0
		for l2, f2 := range o.floating {
			if !f2 {
				continue
			}

			o.covar[l1*m+l2] = o.work[j*m+k]
			k++
		}

		j++
	}
}

func (o *Optimizer) dataNorm() float64 {
	s := 0.0

	for i, y := range o.y {
		r := y / o.sigma[i]
		s += r * r
	}

	return s
}
