package lm_test

import (
	"math"
	"testing"

	reflm "github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-linefit/fit/line"
	"github.com/cwbudde/algo-linefit/fit/lm"
	"github.com/cwbudde/algo-linefit/internal/testutil"
)

// noisyLorentzian returns samples of a Lorentzian line with deterministic
// additive noise.
func noisyLorentzian(n int) (x, y []float64, truth *line.Lorentzian) {
	truth = line.NewLorentzian(3, 0.4, 0.7)
	x = testutil.Linspace(-5, 5, n)
	y = line.EvalSlice(nil, truth, x)

	for i, e := range testutil.GaussianNoise(7, 0.05, n) {
		y[i] += e
	}

	return x, y, truth
}

func fitModel(t *testing.T, m line.Model, x, y, sigma []float64, guess []float64, opts ...lm.Option) *lm.Optimizer {
	t.Helper()

	opt, err := lm.New(m, len(x), m.NumParams(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := opt.SetSamples(x, y, sigma); err != nil {
		t.Fatalf("SetSamples: %v", err)
	}

	for i, v := range guess {
		if err := opt.SetParam(i, v, false); err != nil {
			t.Fatalf("SetParam: %v", err)
		}
	}

	if _, err := opt.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	return opt
}

// TestAgreesWithReferenceSolver fits the same noisy data with an
// independent Levenberg-Marquardt implementation using a numerical
// Jacobian.
func TestAgreesWithReferenceSolver(t *testing.T) {
	x, y, _ := noisyLorentzian(201)
	guess := []float64{2.5, 0.1, 1}

	model := &line.Lorentzian{}
	opt := fitModel(t, model, x, y, nil, guess, lm.WithConvergence(0.999999))

	if !opt.Converged() {
		t.Fatal("fit did not converge")
	}

	residuals := func(dst, p []float64) {
		for i, xi := range x {
			dst[i] = y[i] - model.EvalDeriv(xi, p, nil)
		}
	}

	nj := reflm.NumJac{Func: residuals}
	problem := reflm.LMProblem{
		Dim:        3,
		Size:       len(x),
		Func:       residuals,
		Jac:        nj.Jac,
		InitParams: guess,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	ref, err := reflm.LM(problem, &reflm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err != nil {
		t.Fatalf("reference LM: %v", err)
	}

	for i, want := range ref.X {
		if got := opt.Param(i); testutil.RelDiff(got, want) > 1e-4 {
			t.Fatalf("param %d = %v, reference %v", i, got, want)
		}
	}
}

// TestCovarianceIsInverseNormalMatrix rebuilds the weighted Jacobian at the
// solution and checks the covariance against (JᵀJ)⁻¹.
func TestCovarianceIsInverseNormalMatrix(t *testing.T) {
	x, y, _ := noisyLorentzian(101)
	sigma := make([]float64, len(x))

	for i := range sigma {
		sigma[i] = 0.05 * (1 + 0.5*math.Abs(x[i])/5)
	}

	model := &line.Lorentzian{}
	opt := fitModel(t, model, x, y, sigma, []float64{2.5, 0.1, 1})

	p := opt.Params()
	n, m := len(x), len(p)

	jac := mat.NewDense(n, m, nil)
	d := make([]float64, m)

	for i, xi := range x {
		model.EvalDeriv(xi, p, d)

		for j := range m {
			jac.Set(i, j, d[j]/sigma[i])
		}
	}

	var alpha mat.SymDense
	alpha.SymOuterK(1, jac.T())

	var want mat.Dense
	if err := want.Inverse(&alpha); err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	got := opt.CovarianceMatrix()

	for i := range m {
		for j := range m {
			w := want.At(i, j)
			if math.Abs(got.At(i, j)-w) > 1e-8*math.Sqrt(want.At(i, i)*want.At(j, j)) {
				t.Fatalf("covar[%d][%d] = %v, want %v", i, j, got.At(i, j), w)
			}
		}
	}

	// Standard error from the covariance diagonal.
	if e := opt.ParamError(1, false); math.Abs(e-math.Sqrt(want.At(1, 1))) > 1e-8*e {
		t.Fatalf("ParamError(1) = %v, want %v", e, math.Sqrt(want.At(1, 1)))
	}
}

// TestCovarianceSkipsFixedParameters checks that the floating block of the
// covariance equals the inverse of the floating block of the normal matrix.
func TestCovarianceSkipsFixedParameters(t *testing.T) {
	x, y, truth := noisyLorentzian(101)

	model := &line.Lorentzian{}

	opt, err := lm.New(model, len(x), 3)
	if err != nil {
		t.Fatal(err)
	}

	if err := opt.SetSamples(x, y, nil); err != nil {
		t.Fatal(err)
	}

	_ = opt.SetParam(line.IndexScale, 2.5, false)
	_ = opt.SetParam(line.IndexCentre, truth.Centre(), true)
	_ = opt.SetParam(line.IndexWidth, 1, false)

	if _, err := opt.Fit(); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	p := opt.Params()
	floating := []int{line.IndexScale, line.IndexWidth}

	jac := mat.NewDense(len(x), len(floating), nil)
	d := make([]float64, 3)

	for i, xi := range x {
		model.EvalDeriv(xi, p, d)

		for j, l := range floating {
			jac.Set(i, j, d[l])
		}
	}

	var alpha mat.SymDense
	alpha.SymOuterK(1, jac.T())

	var want mat.Dense
	if err := want.Inverse(&alpha); err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	for j, l1 := range floating {
		for k, l2 := range floating {
			w := want.At(j, k)
			if got := opt.Covariance(l1, l2); math.Abs(got-w) > 1e-8*math.Sqrt(want.At(j, j)*want.At(k, k)) {
				t.Fatalf("covar[%d][%d] = %v, want %v", l1, l2, got, w)
			}
		}
	}

	for i := range 3 {
		if got := opt.Covariance(line.IndexCentre, i); got != 0 {
			t.Fatalf("covar[centre][%d] = %v, want 0", i, got)
		}
	}
}
