package testutil

import (
	"math"
	"math/rand"
)

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}

	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}

	return out
}

// Sample evaluates f at every x.
func Sample(f func(float64) float64, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = f(v)
	}

	return out
}

// Perturb returns a copy of values with each element scaled by a factor
// drawn uniformly from [1-frac, 1+frac], reproducibly for a given seed.
func Perturb(seed int64, frac float64, values []float64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * (1 + frac*(rng.Float64()*2-1))
	}

	return out
}

// GaussianNoise returns n normally distributed values with standard
// deviation sd, reproducibly for a given seed.
func GaussianNoise(seed int64, sd float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))

	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * sd
	}

	return out
}

// RelDiff returns |got-want| / |want|, or |got| when want is zero.
func RelDiff(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}

	return math.Abs(got-want) / math.Abs(want)
}

// DC returns a slice of length n filled with value.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}
