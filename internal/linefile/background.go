package linefile

import (
	"fmt"
	"sort"
)

// Background is a tabulated baseline spectrum. It is interpolated linearly
// between its points and held constant beyond the first and last point.
type Background struct {
	X, Y []float64
}

// ReadBackgroundFile reads a baseline from a data file in the same format
// as ReadDataFile. A sigma column is ignored. x must be strictly
// ascending.
func ReadBackgroundFile(path string) (Background, error) {
	d, err := ReadDataFile(path)
	if err != nil {
		return Background{}, err
	}

	if d.Len() == 0 {
		return Background{}, fmt.Errorf("%s: %w: background has no samples", path, ErrSyntax)
	}

	for i := 1; i < d.Len(); i++ {
		if d.X[i] <= d.X[i-1] {
			return Background{}, fmt.Errorf("%s: %w: background x not ascending at sample %d", path, ErrSyntax, i)
		}
	}

	return Background{X: d.X, Y: d.Y}, nil
}

// At returns the baseline at every x. An empty Background is zero.
func (b Background) At(x []float64) []float64 {
	out := make([]float64, len(x))

	n := min(len(b.X), len(b.Y))
	if n == 0 {
		return out
	}

	for i, v := range x {
		j := sort.SearchFloat64s(b.X[:n], v)

		switch {
		case j == 0:
			out[i] = b.Y[0]
		case j == n:
			out[i] = b.Y[n-1]
		default:
			t := (v - b.X[j-1]) / (b.X[j] - b.X[j-1])
			out[i] = b.Y[j-1] + t*(b.Y[j]-b.Y[j-1])
		}
	}

	return out
}
