package hermite

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"goanam/internal/errors"
)

// Matrix builds the (order+1) x len(y) matrix of normalized Hermite polynomial
// values over the Gaussian abscissas y, using the three-term recurrence
//
//	H[0]   = 1
//	H[1]   = -y
//	H[k+1] = -(1/sqrt(k+1)) * y * H[k] - sqrt(k/(k+1)) * H[k-1]
//
// The recurrence is stable for moderate orders (tens); very large orders
// accumulate floating-point cancellation and no mitigation is applied.
func Matrix(y []float64, order int) (*mat.Dense, error) {
	if order < 1 {
		return nil, errors.BadOrder(order)
	}
	if len(y) == 0 {
		return nil, errors.InvalidInput("empty gaussian grid")
	}

	h := mat.NewDense(order+1, len(y), nil)
	for i, yi := range y {
		h.Set(0, i, 1)
		h.Set(1, i, -yi)
	}
	for k := 1; k < order; k++ {
		a := 1 / math.Sqrt(float64(k+1))
		b := math.Sqrt(float64(k) / float64(k+1))
		for i, yi := range y {
			h.Set(k+1, i, -a*yi*h.At(k, i)-b*h.At(k-1, i))
		}
	}
	return h, nil
}

// FitPCI fits the Hermite coefficients of the anamorphosis from the empirical
// transformation table (z sorted, right edge of bin) and its Hermite matrix.
//
// pci[0] is the mean of z; pass mean to override the computed value (an
// externally declustered mean, typically). For p >= 1 the coefficient is the
// stepwise Riemann sum
//
//	pci[p] = sum_i (z[i-1]-z[i]) * (1/sqrt(p)) * H[p-1,i] * phi(y[i])
//
// whose accuracy improves with table resolution. The standard-normal density
// values at each y[i] are returned alongside the coefficients.
func FitPCI(z, y []float64, h *mat.Dense, mean *float64) (pci, pdf []float64, err error) {
	rows, cols := h.Dims()
	if len(z) != len(y) || len(y) != cols {
		return nil, nil, errors.ShapeMismatch(
			"table/matrix shape mismatch: %d raw, %d gaussian, %d matrix columns",
			len(z), len(y), cols)
	}

	pdf = make([]float64, len(y))
	for i, yi := range y {
		pdf[i] = distuv.UnitNormal.Prob(yi)
	}

	pci = make([]float64, rows)
	if mean != nil {
		pci[0] = *mean
	} else {
		pci[0] = stat.Mean(z, nil)
	}

	for p := 1; p < rows; p++ {
		inv := 1 / math.Sqrt(float64(p))
		sum := 0.0
		for i := 1; i < len(z); i++ {
			sum += (z[i-1] - z[i]) * inv * h.At(p-1, i) * pdf[i]
		}
		pci[p] = sum
	}
	return pci, pdf, nil
}

// VarPCI is the variance carried by the expansion: the sum of squared
// coefficients of order >= 1. It approximates the empirical variance of z.
func VarPCI(pci []float64) float64 {
	sum := 0.0
	for _, c := range pci[1:] {
		sum += c * c
	}
	return sum
}

// Expand evaluates the truncated expansion over every column of h, with
// support-effect scaling r (r=1 is point support):
//
//	zhat = pci[0] + sum_p pci[p] * r^p * H[p,:]
func Expand(pci []float64, h *mat.Dense, r float64) ([]float64, error) {
	rows, cols := h.Dims()
	if len(pci) != rows {
		return nil, errors.ShapeMismatch(
			"pci length %d does not match matrix rows %d", len(pci), rows)
	}

	out := make([]float64, cols)
	for i := 0; i < cols; i++ {
		z := pci[0]
		rp := 1.0
		for p := 1; p < rows; p++ {
			rp *= r
			z += pci[p] * rp * h.At(p, i)
		}
		out[i] = z
	}
	return out, nil
}

// ExpandAt evaluates the expansion at a single Gaussian abscissa, running the
// recurrence in place rather than through a precomputed matrix.
func ExpandAt(pci []float64, y, r float64) float64 {
	if len(pci) == 0 {
		return 0
	}
	z := pci[0]
	if len(pci) == 1 {
		return z
	}

	hPrev, hCur := 1.0, -y // H0 and H1
	rp := r
	z += pci[1] * rp * hCur
	for p := 2; p < len(pci); p++ {
		hNext := -(1/math.Sqrt(float64(p)))*y*hCur - math.Sqrt(float64(p-1)/float64(p))*hPrev
		hPrev, hCur = hCur, hNext
		rp *= r
		z += pci[p] * rp * hCur
	}
	return z
}
