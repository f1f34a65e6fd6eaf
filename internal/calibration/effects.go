package calibration

import (
	"goanam/internal/errors"
	"goanam/internal/rootfind"
)

// Support and information effect coefficients. Each residual below is
// monotone increasing over (0,1] for a decaying PCI spectrum, so a bracketed
// search on [0,1] either finds the unique root or reports the target
// (co)variance as infeasible.

// SupportR solves the support-effect identity
//
//	sum_p pci[p]^2 * r^(2p) = varZv
//
// for the block-support coefficient r in [0,1], given the target block
// variance varZv.
func SupportR(pci []float64, varZv float64) (float64, error) {
	if len(pci) < 2 {
		return 0, errors.ShapeMismatch("pci vector too short: %d", len(pci))
	}
	f := func(r float64) float64 {
		sum := 0.0
		rr := r * r
		rp := 1.0
		for _, c := range pci[1:] {
			rp *= rr
			sum += c * c * rp
		}
		return sum - varZv
	}
	root, err := rootfind.Bisect(f, 0, 1)
	if err != nil {
		return 0, errors.Wrapf(err, "support coefficient for target variance %g", varZv)
	}
	return root, nil
}

// InfoS solves the same identity for the information-effect smoothing
// coefficient s, against the variance of the smoothed estimate.
func InfoS(pci []float64, varZvEst float64) (float64, error) {
	s, err := SupportR(pci, varZvEst)
	if err != nil {
		return 0, errors.Wrap(err, "smoothing coefficient")
	}
	return s, nil
}

// InfoRo solves the information-effect covariance identity
//
//	sum_p pci[p]^2 * (r*s*ro)^p = covar
//
// for the conditional-bias coefficient ro in [0,1], with r and s already
// fixed.
func InfoRo(pci []float64, r, s, covar float64) (float64, error) {
	if len(pci) < 2 {
		return 0, errors.ShapeMismatch("pci vector too short: %d", len(pci))
	}
	f := func(ro float64) float64 {
		sum := 0.0
		base := r * s * ro
		q := 1.0
		for _, c := range pci[1:] {
			q *= base
			sum += c * c * q
		}
		return sum - covar
	}
	root, err := rootfind.Bisect(f, 0, 1)
	if err != nil {
		return 0, errors.Wrapf(err, "conditional-bias coefficient for target covariance %g", covar)
	}
	return root, nil
}
