package calibration

import (
	"gonum.org/v1/gonum/floats"

	"goanam/domain/anamorphosis"
	"goanam/internal/errors"
)

// The locators partition the evaluated curve into the practical interval
// (ii..jj, where the empirical curve is trusted) and the authorized interval
// (i..j, where the fitted curve is declared valid). All scans are single-pass
// first-match scans with exact comparisons: the recorded index is the first
// one, in the scan direction, at which the stopping predicate fires, or the
// far end of the scan when it never does. Results are therefore sensitive to
// the grid resolution chosen by the caller.

// Authorized locates control points for a data-anchored curve. zana is the
// fitted curve, zraw the empirical curve, y the shared Gaussian grid. The
// practical bounds default to the min/max of zraw when nil.
//
// Practical indices are found scanning inward from each extreme of zraw for
// the first value crossing its threshold. Authorized indices scan outward
// from the midpoint of zana and stop where the fitted curve leaves the
// empirically supported range, loses monotonicity against its neighbor, or
// its Gaussian abscissa passes the practical-bound abscissa.
func Authorized(zana, zraw, y []float64, zpmin, zpmax *float64) (anamorphosis.Bounds, error) {
	if err := checkGrids(zana, zraw, y); err != nil {
		return anamorphosis.Bounds{}, err
	}
	n := len(zraw)

	pmin := floats.Min(zraw)
	if zpmin != nil {
		pmin = *zpmin
	}
	pmax := floats.Max(zraw)
	if zpmax != nil {
		pmax = *zpmax
	}

	ii, jj := practicalScan(zraw, pmin, pmax)

	j := n - 1
	for i := n / 2; i+1 < n; i++ {
		if zana[i+1] < zana[i] || zana[i] > zraw[jj] || y[i] > y[jj] {
			j = i
			break
		}
	}

	i0 := 0
	for k := n / 2; k >= 1; k-- {
		if zana[k-1] > zana[k] || zana[k] < zraw[ii] || y[k] < y[ii] {
			i0 = k
			break
		}
	}

	b := anamorphosis.Bounds{I: i0, J: j, II: ii, JJ: jj}
	if err := b.Validate(n); err != nil {
		return b, errors.BoundsInvalid(err.Error())
	}
	return b, nil
}

// AuthorizedBlock locates control points for a block-support curve. Block
// curves carry no empirical anchor, so the practical interval is the full
// grid and the authorized scans run against the scalar thresholds directly.
func AuthorizedBlock(zana, y []float64, zpmin, zpmax float64) (anamorphosis.Bounds, error) {
	if len(zana) == 0 || len(zana) != len(y) {
		return anamorphosis.Bounds{}, errors.ShapeMismatch(
			"curve/grid length mismatch: %d vs %d", len(zana), len(y))
	}
	n := len(zana)

	j := n - 1
	for i := n / 2; i+1 < n; i++ {
		if zana[i+1] < zana[i] || zana[i] > zpmax {
			j = i
			break
		}
	}

	i0 := 0
	for k := n / 2; k >= 1; k-- {
		if zana[k-1] > zana[k] || zana[k] < zpmin {
			i0 = k
			break
		}
	}

	b := anamorphosis.Bounds{I: i0, J: j, II: 0, JJ: n - 1}
	if err := b.Validate(n); err != nil {
		return b, errors.BoundsInvalid(err.Error())
	}
	return b, nil
}

// FindControlPoints locates control points for caller-supplied practical and
// authorized target values.
//
// The authorized parameters keep the historical contract of the reference
// formulas: zamin is the UPPER authorized target and zamax the LOWER one, so
// zamax < zamin is required. Treat the pair as an ordered pair per side; the
// names do not describe magnitudes.
func FindControlPoints(zana, zraw, y []float64, zpmin, zpmax, zamin, zamax float64) (anamorphosis.Bounds, error) {
	if err := checkGrids(zana, zraw, y); err != nil {
		return anamorphosis.Bounds{}, err
	}
	if zamax >= zamin {
		return anamorphosis.Bounds{}, errors.BoundsInvalid(
			"authorized targets must satisfy zamax < zamin")
	}
	if zamin < zpmin {
		return anamorphosis.Bounds{}, errors.BoundsInvalid(
			"authorized target zamin below practical zpmin")
	}
	if zamax > zpmax {
		return anamorphosis.Bounds{}, errors.BoundsInvalid(
			"authorized target zamax above practical zpmax")
	}
	n := len(zraw)

	ii, jj := practicalScan(zraw, zpmin, zpmax)

	// Upper authorized: first fitted value reaching the upper target zamin.
	j := n - 1
	for i := n / 2; i < n; i++ {
		if zana[i] >= zamin {
			j = i
			break
		}
	}

	// Lower authorized: first fitted value reaching the lower target zamax.
	i0 := 0
	for k := n / 2; k >= 0; k-- {
		if zana[k] <= zamax {
			i0 = k
			break
		}
	}

	b := anamorphosis.Bounds{I: i0, J: j, II: ii, JJ: jj}
	if err := b.Validate(n); err != nil {
		return b, errors.BoundsInvalid(err.Error())
	}

	// The fitted curve must stay inside the empirical curve over the claimed
	// authorized region; a crossing means the bound configuration is wrong.
	if zana[j] > zraw[jj] {
		return b, errors.CurveInconsistent(
			"fitted curve exceeds empirical at upper bound: zana[%d]=%g > zraw[%d]=%g",
			j, zana[j], jj, zraw[jj])
	}
	if zana[i0] < zraw[ii] {
		return b, errors.CurveInconsistent(
			"fitted curve undercuts empirical at lower bound: zana[%d]=%g < zraw[%d]=%g",
			i0, zana[i0], ii, zraw[ii])
	}
	if y[j] > y[jj] {
		return b, errors.CurveInconsistent(
			"authorized gaussian bound y[%d]=%g beyond practical y[%d]=%g", j, y[j], jj, y[jj])
	}
	if y[i0] < y[ii] {
		return b, errors.CurveInconsistent(
			"authorized gaussian bound y[%d]=%g below practical y[%d]=%g", i0, y[i0], ii, y[ii])
	}
	return b, nil
}

// practicalScan finds the practical indices: scanning inward from each end of
// zraw for the first value crossing the corresponding threshold. When a
// threshold is never crossed the scan runs to its far end.
func practicalScan(zraw []float64, pmin, pmax float64) (ii, jj int) {
	n := len(zraw)
	jj = 0
	for i := n - 1; i >= 0; i-- {
		if zraw[i] <= pmax {
			jj = i
			break
		}
	}
	ii = n - 1
	for i := 0; i < n; i++ {
		if zraw[i] >= pmin {
			ii = i
			break
		}
	}
	return ii, jj
}

func checkGrids(zana, zraw, y []float64) error {
	if len(zana) == 0 {
		return errors.InvalidInput("empty curve")
	}
	if len(zana) != len(zraw) || len(zraw) != len(y) {
		return errors.ShapeMismatch(
			"curve/grid length mismatch: %d fitted, %d raw, %d gaussian",
			len(zana), len(zraw), len(y))
	}
	return nil
}
