package lm

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-linefit/internal/testutil"
)

func BenchmarkFitGaussian(b *testing.B) {
	for _, n := range []int{32, 256, 2048} {
		x := testutil.Linspace(-5, 5, n)
		y := gaussSamples(10, 0.3, 1.2, x)
		guess := []float64{8, 0, 1}

		opt, err := New(gaussFunc{}, n, 3)
		if err != nil {
			b.Fatal(err)
		}

		if err := opt.SetSamples(x, y, nil); err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()

			for range b.N {
				for i, v := range guess {
					_ = opt.SetParam(i, v, false)
				}

				if _, err := opt.Fit(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSolve(b *testing.B) {
	for _, m := range []int{3, 12, 48} {
		a := make([]float64, m*m)
		rhs := make([]float64, m)
		work := make([]float64, m*m)
		wrhs := make([]float64, m)

		for i := range m {
			for j := range m {
				a[i*m+j] = 1 / float64(1+i+j)
			}

			a[i*m+i] += float64(m)
			rhs[i] = 1
		}

		s := newSolver(m)

		b.Run(fmt.Sprintf("m=%d", m), func(b *testing.B) {
			for range b.N {
				copy(work, a)
				copy(wrhs, rhs)

				if err := s.solve(work, wrhs, m); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
