// Package line provides analytic spectral-line models for least-squares
// fitting.
//
// Three profiles are available: [Gaussian], [Lorentzian] and [Voigt]. Each
// holds its own parameter set and implements [Model], which exposes the
// value of the line at a point and, for a full parameter vector, the
// partial derivative with respect to every parameter. A [Composite] sums
// any number of models and concatenates their parameter vectors so that
// blended lines can be fitted simultaneously.
//
// # Usage
//
//	g := line.NewGaussian(10, 5, 1.5)    // scale, centre, width
//	v := line.NewVoigt(4, 7, 0.8, 0.3)   // scale, centre, Gaussian width, Lorentzian width
//	c := line.NewComposite(g, v)
//	y := line.EvalSlice(nil, c, x)
//
// Parameters are addressed by role through the index constants
// ([IndexScale], [IndexCentre], [IndexWidth], [IndexLorentzWidth]) or the
// named accessors of each profile. Models are evaluated without mutation,
// so one model may be shared by independent evaluators; fitting writes
// the results back through [Model.Params].
package line
