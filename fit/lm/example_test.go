package lm_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-linefit/fit/lm"
)

func ExampleOptimizer_Fit() {
	// A straight line a + b·x through four exact points.
	line := lm.EvaluatorFunc(func(x float64, p, d []float64) float64 {
		d[0], d[1] = 1, x
		return p[0] + p[1]*x
	})

	opt, _ := lm.New(line, 4, 2)
	_ = opt.SetSamples([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7}, nil)

	chi2, err := opt.Fit()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("a=%.4f b=%.4f chi2<1e-12: %v\n", opt.Param(0), opt.Param(1), chi2 < 1e-12)
	fmt.Printf("converged: %v\n", opt.Converged())
	fmt.Printf("var(b)=%.4f\n", math.Pow(opt.ParamError(1, false), 2))

	// Output:
	// a=1.0000 b=2.0000 chi2<1e-12: true
	// converged: true
	// var(b)=0.2000
}
