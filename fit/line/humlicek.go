package line

import "math"

// Coefficients of Humlicek's 12-term rational approximation of the
// Faddeeva function (J. Quant. Spectrosc. Radiat. Transfer 21, 309, 1979).
var (
	humT = [6]float64{.314240376, .947788391, 1.59768264, 2.27950708, 3.02063703, 3.8897249}
	humU = [6]float64{1.01172805, -.75197147, 1.2557727e-2, 1.00220082e-2, -2.42068135e-4, 5.00848061e-7}
	humS = [6]float64{1.393237, .231152406, -.155351466, 6.21836624e-3, 9.19082986e-5, -6.27525958e-7}
)

// wingRegion reports whether (x, y) lies in the far-wing region, where the
// rational sum is corrected by the Gaussian core exp(-x²) explicitly.
func wingRegion(x, y float64) bool {
	return y < 0.85 && math.Abs(x) >= 18.1*y+1.65
}

// faddeeva returns K(x, y) = Re w(x+iy) for y >= 0 together with ∂K/∂x
// and ∂K/∂y. The derivatives are those of the approximation itself.
func faddeeva(x, y float64) (k, kx, ky float64) {
	if wingRegion(x, y) {
		return faddeevaWing(x, y)
	}

	return faddeevaCore(x, y)
}

// faddeevaCore evaluates w(ζ) = Σ a/(ζ-T) + b/(ζ+T) at ζ = x + i(y+1.5).
// w is analytic in ζ, so ∂K/∂x = Re w' and ∂K/∂y = -Im w'.
func faddeevaCore(x, y float64) (k, kx, ky float64) {
	z := complex(x, y+1.5)

	var w, dw complex128

	for i := range humT {
		a := complex(-humS[i], humU[i])
		b := complex(humS[i], humU[i])
		zm := 1 / (z - complex(humT[i], 0))
		zp := 1 / (z + complex(humT[i], 0))

		w += a*zm + b*zp
		dw -= a*zm*zm + b*zp*zp
	}

	return real(w), real(dw), -imag(dw)
}

// faddeevaWing evaluates the real wing form
//
//	K = exp(-x²) + Σ± y·N±/(A±·E±)
//	N± = U(r² - 1.5y₁) ± S(y+3)r,  A± = r² + y₁²,  E± = r² + 2.25
//
// with r = x ∓ T and y₁ = y + 1.5.
func faddeevaWing(x, y float64) (k, kx, ky float64) {
	if math.Abs(x) < 12 {
		e := math.Exp(-x * x)
		k = e
		kx = -2 * x * e
	}

	y1 := y + 1.5
	y2 := y1 * y1
	y3 := y + 3

	for i := range humT {
		for _, sg := range [2]float64{1, -1} {
			r := x - sg*humT[i]
			r2 := r * r
			a := r2 + y2
			e := r2 + 2.25
			ae := a * e

			n := humU[i]*(r2-1.5*y1) + sg*humS[i]*y3*r
			nx := 2*humU[i]*r + sg*humS[i]*y3
			ny := -1.5*humU[i] + sg*humS[i]*r

			k += y * n / ae
			kx += y * (nx/ae - n*2*r*(e+a)/(ae*ae))
			ky += n/ae + y*(ny/ae-n*2*y1/(a*a*e))
		}
	}

	return k, kx, ky
}
