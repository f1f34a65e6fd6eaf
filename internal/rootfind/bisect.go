package rootfind

import (
	"math"

	"goanam/internal/errors"
)

const (
	defaultTol  = 1e-12
	defaultIter = 200
)

// Bisect finds a root of f on [a, b] by bisection. The bracket must show a
// sign change; a bracket without one is reported as an error rather than
// searched further, since for the calibration residuals it means the target
// value is infeasible.
func Bisect(f func(float64) float64, a, b float64) (float64, error) {
	fa := f(a)
	fb := f(b)

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, errors.RootBracket("no sign change over bracket: f(a) and f(b) have the same sign")
	}

	for i := 0; i < defaultIter && b-a > defaultTol; i++ {
		mid := a + (b-a)/2
		fm := f(mid)
		if fm == 0 {
			return mid, nil
		}
		if math.Signbit(fm) == math.Signbit(fa) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}
	return a + (b-a)/2, nil
}
