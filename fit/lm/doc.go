// Package lm implements Levenberg-Marquardt nonlinear least-squares fitting
// of a one-dimensional model to weighted samples.
//
// The optimizer drives a model through the [Evaluator] capability: at every
// sample it asks for the model value and the partial derivatives with respect
// to each parameter. Parameters may be fixed or floating; only floating
// parameters are adjusted and receive covariance entries.
//
// Each iteration builds the normal equations
//
//	alpha[j][k] = Σ (∂f/∂a_j)(∂f/∂a_k) / σ²
//	beta[j]     = Σ (y - f)(∂f/∂a_j) / σ²
//
// scales the diagonal of alpha by (1 + λ) and solves for the parameter step
// with Gauss-Jordan elimination (full pivoting). Steps that reduce
// chi-square are accepted and λ shrinks tenfold; rejected steps grow λ
// tenfold. A step that leaves the model's parameter domain (see
// Validator) is halved until it is valid again before chi-square is
// evaluated. After the loop a final undamped solve yields the covariance
// matrix.
//
// # Usage
//
//	opt, err := lm.New(model, len(x), model.NumParams())
//	if err != nil {
//	    return err
//	}
//	_ = opt.SetSamples(x, y, nil) // unit weights
//	for i, v := range guess {
//	    _ = opt.SetParam(i, v, false)
//	}
//	chi2, err := opt.Fit()
//	if err != nil {
//	    return err // lm.ErrSingularMatrix
//	}
//	if !opt.Converged() {
//	    // retry with other guesses or a relaxed threshold
//	}
//	centre, centreErr := opt.Param(1), opt.ParamError(1, true)
//
// An Optimizer is not safe for concurrent use. Independent fits need
// independent optimizers; they share no state.
package lm
