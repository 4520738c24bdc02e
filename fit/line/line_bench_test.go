package line

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-linefit/internal/testutil"
)

func BenchmarkEvalDeriv(b *testing.B) {
	profiles := []Profile{
		NewGaussian(1, 0, 1),
		NewLorentzian(1, 0, 1),
		NewVoigt(1, 0, 1, 0.5),
	}

	x := testutil.Linspace(-6, 6, 1024)

	for _, p := range profiles {
		params := Values(p)
		deriv := make([]float64, p.NumParams())

		b.Run(p.Kind().String(), func(b *testing.B) {
			b.ReportAllocs()

			for range b.N {
				for _, xi := range x {
					_ = p.EvalDeriv(xi, params, deriv)
				}
			}
		})
	}
}

func BenchmarkEvalSliceComposite(b *testing.B) {
	for _, n := range []int{1, 4, 16} {
		c := NewComposite()
		for i := range n {
			c.Add(NewVoigt(1, float64(i), 0.5, 0.2))
		}

		x := testutil.Linspace(-2, float64(n)+2, 4096)
		dst := make([]float64, len(x))

		b.Run(fmt.Sprintf("lines=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(x) * 8))
			b.ReportAllocs()

			for range b.N {
				dst = EvalSlice(dst, c, x)
			}
		})
	}
}
