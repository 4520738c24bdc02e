package testutil

import (
	"math"
	"testing"
)

func TestLinspace(t *testing.T) {
	x := Linspace(1, 10, 10)
	if len(x) != 10 {
		t.Fatalf("len = %d, want 10", len(x))
	}

	for i, v := range x {
		if math.Abs(v-float64(i+1)) > 1e-15 {
			t.Fatalf("x[%d] = %v, want %d", i, v, i+1)
		}
	}

	if one := Linspace(3, 7, 1); len(one) != 1 || one[0] != 3 {
		t.Fatalf("Linspace(3, 7, 1) = %v, want [3]", one)
	}
}

func TestSample(t *testing.T) {
	y := Sample(func(x float64) float64 { return 2 * x }, []float64{1, 2, 3})
	RequireSliceNearlyEqual(t, y, []float64{2, 4, 6}, 0)
}

func TestPerturbBoundsAndReproducible(t *testing.T) {
	values := []float64{10, -5, 0.25}

	a := Perturb(7, 0.2, values)
	b := Perturb(7, 0.2, values)

	for i := range values {
		if a[i] != b[i] {
			t.Fatalf("index %d: not reproducible (%v vs %v)", i, a[i], b[i])
		}

		if RelDiff(a[i], values[i]) > 0.2+1e-15 {
			t.Fatalf("index %d: %v is more than 20%% from %v", i, a[i], values[i])
		}
	}
}

func TestGaussianNoiseStatistics(t *testing.T) {
	n := GaussianNoise(3, 0.5, 20000)

	mean, sq := 0.0, 0.0
	for _, v := range n {
		mean += v
		sq += v * v
	}

	mean /= float64(len(n))
	sd := math.Sqrt(sq/float64(len(n)) - mean*mean)

	if math.Abs(mean) > 0.02 {
		t.Fatalf("mean = %v, want ~0", mean)
	}

	if math.Abs(sd-0.5) > 0.02 {
		t.Fatalf("sd = %v, want ~0.5", sd)
	}
}

func TestRelDiff(t *testing.T) {
	if d := RelDiff(1.1, 1); math.Abs(d-0.1) > 1e-12 {
		t.Fatalf("RelDiff(1.1, 1) = %v, want 0.1", d)
	}

	if d := RelDiff(0.5, 0); d != 0.5 {
		t.Fatalf("RelDiff(0.5, 0) = %v, want 0.5", d)
	}
}

func TestDCAndOnes(t *testing.T) {
	for i, v := range DC(0.5, 4) {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}

	o := Ones(3)
	if len(o) != 3 || o[0] != 1 || o[2] != 1 {
		t.Fatalf("Ones(3) = %v", o)
	}
}
