package linefit

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-linefit/fit/line"
	"github.com/cwbudde/algo-linefit/internal/testutil"
)

func BenchmarkFitComposite(b *testing.B) {
	for _, lines := range []int{1, 3, 6} {
		truth := line.NewComposite()
		for i := range lines {
			truth.Add(line.NewGaussian(2+float64(i), float64(2*i), 0.5))
		}

		x := testutil.Linspace(-3, float64(2*lines)+1, 512)
		y := line.EvalSlice(nil, truth, x)
		guess := testutil.Perturb(1, 0.1, line.Values(truth))

		b.Run(fmt.Sprintf("lines=%d", lines), func(b *testing.B) {
			b.ReportAllocs()

			for range b.N {
				model := line.NewComposite()
				for i := range lines {
					model.Add(line.NewGaussian(guess[3*i], guess[3*i+1], guess[3*i+2]))
				}

				if _, err := New(model).Fit(x, y, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEstimate(b *testing.B) {
	x := testutil.Linspace(-10, 10, 4096)
	y := line.EvalSlice(nil, line.NewVoigt(1, 0.4, 0.7, 0.5), x)

	b.ReportAllocs()

	for range b.N {
		_ = Estimate(x, y, nil)
	}
}
