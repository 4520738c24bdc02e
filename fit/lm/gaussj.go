package lm

import "math"

// pivotTolerance is the smallest pivot magnitude accepted by the
// equilibrated Gauss-Jordan solve. The equilibrated matrix has a unit
// diagonal, so a pivot below this means the columns are linearly dependent
// to within rounding.
const pivotTolerance = 1e-10

// solver holds the scratch space of the Gauss-Jordan solve. It is owned by
// a single Optimizer and sized for its parameter count.
type solver struct {
	stride int
	scale  []float64
	ipiv   []int
	indxr  []int
	indxc  []int
}

func newSolver(m int) solver {
	return solver{
		stride: m,
		scale:  make([]float64, m),
		ipiv:   make([]int, m),
		indxr:  make([]int, m),
		indxc:  make([]int, m),
	}
}

// solve solves the n×n system held in the leading block of a (row-major,
// row stride s.stride) for right-hand side b. On return b holds the
// solution and a holds the inverse of the original matrix.
//
// The system is equilibrated first: rows and columns are scaled by
// 1/sqrt(a[j][j]) so that pivot magnitudes are comparable across
// parameters of very different units.
func (s *solver) solve(a, b []float64, n int) error {
	st := s.stride

	for j := range n {
		d := a[j*st+j]
		if !(d > 0) || math.IsInf(d, 0) {
			return ErrSingularMatrix
		}

		s.scale[j] = 1 / math.Sqrt(d)
	}

	for j := range n {
		sj := s.scale[j]
		row := a[j*st : j*st+n]

		for k := range row {
			row[k] *= sj * s.scale[k]
		}

		b[j] *= sj
	}

	if err := s.gaussJordan(a, b, n); err != nil {
		return err
	}

	for j := range n {
		sj := s.scale[j]
		row := a[j*st : j*st+n]

		for k := range row {
			row[k] *= sj * s.scale[k]
		}

		b[j] *= sj
	}

	return nil
}

// gaussJordan performs Gauss-Jordan elimination with full pivoting. At each
// step the largest-magnitude entry among unpivoted rows and columns is
// chosen; row swaps are applied immediately and undone as column swaps on
// the inverse at the end.
func (s *solver) gaussJordan(a, b []float64, n int) error {
	st := s.stride

	for j := range n {
		s.ipiv[j] = 0
	}

	for i := range n {
		big := 0.0
		irow, icol := -1, -1

		for j := range n {
			if s.ipiv[j] != 0 {
				continue
			}

			for k := range n {
				if s.ipiv[k] != 0 {
					continue
				}

				if v := math.Abs(a[j*st+k]); v >= big {
					big = v
					irow, icol = j, k
				}
			}
		}

		if irow < 0 || big <= pivotTolerance || math.IsNaN(big) {
			return ErrSingularMatrix
		}

		s.ipiv[icol]++

		if irow != icol {
			for l := range n {
				a[irow*st+l], a[icol*st+l] = a[icol*st+l], a[irow*st+l]
			}

			b[irow], b[icol] = b[icol], b[irow]
		}

		s.indxr[i] = irow
		s.indxc[i] = icol

		pivinv := 1 / a[icol*st+icol]
		a[icol*st+icol] = 1

		prow := a[icol*st : icol*st+n]
		for l := range prow {
			prow[l] *= pivinv
		}

		b[icol] *= pivinv

		for ll := range n {
			if ll == icol {
				continue
			}

			row := a[ll*st : ll*st+n]
			dum := row[icol]
			row[icol] = 0

			for l := range row {
				row[l] -= prow[l] * dum
			}

			b[ll] -= b[icol] * dum
		}
	}

	for l := n - 1; l >= 0; l-- {
		r, c := s.indxr[l], s.indxc[l]
		if r == c {
			continue
		}

		for k := range n {
			a[k*st+r], a[k*st+c] = a[k*st+c], a[k*st+r]
		}
	}

	return nil
}
