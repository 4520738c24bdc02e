// Package linefit fits spectral-line models to sampled data.
//
// A [Fitter] wraps a [line.Model] (a single profile or a [line.Composite])
// and a Levenberg-Marquardt optimizer from package lm. Fit seeds the
// optimizer from the model's parameters, runs it, and writes the fitted
// values and standard errors back into the model:
//
//	g := line.NewGaussian(5, 4, 1) // initial guess
//	f := linefit.New(g)
//	res, err := f.Fit(x, y, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.Centre(), g.Params()[line.IndexCentre].Error, res.Converged)
//
// [Estimate] makes a quick non-iterative measurement of a single line
// (peak, centre, width) and [Guess] turns it into an initial model.
package linefit
