package calibration

import (
	"goanam/domain/anamorphosis"
	"goanam/internal/errors"
	"goanam/internal/hermite"
)

// YToZ converts Gaussian values to raw scale through the fitted expansion.
// Inside the practical Gaussian interval the raw expansion result is kept
// unmodified; at or beyond either practical bound the output is replaced by
// the straight line through the authorized and practical anchors of that
// side, which keeps the transform monotone and bounded where the expansion
// is no longer empirically trusted.
func YToZ(ys, pci []float64, r float64, a anamorphosis.Anchors) []float64 {
	out := make([]float64, len(ys))
	for i, yv := range ys {
		switch {
		case yv <= a.YPMin:
			out[i] = lerp(yv, a.YAMin, a.ZAMin, a.YPMin, a.ZPMin)
		case yv >= a.YPMax:
			out[i] = lerp(yv, a.YPMax, a.ZPMax, a.YAMax, a.ZAMax)
		default:
			out[i] = hermite.ExpandAt(pci, yv, r)
		}
	}
	return out
}

// ZToYLinear converts raw values to Gaussian scale against the tabulated
// empirical curve. Each input falls into exactly one of five regions, tested
// in this fixed priority order:
//
//  1. at/below the authorized minimum: clamp to its Gaussian value
//  2. at/above the authorized maximum: clamp to its Gaussian value
//  3. at/below the practical minimum: line through the lower anchors
//  4. at/above the practical maximum: line through the upper anchors
//  5. strictly inside the practical interval: linear interpolation on the table
func ZToYLinear(zs []float64, table anamorphosis.Table, a anamorphosis.Anchors) ([]float64, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.TableInvalid(err.Error())
	}

	out := make([]float64, len(zs))
	for i, zv := range zs {
		switch {
		case zv <= a.ZAMin:
			out[i] = a.YAMin
		case zv >= a.ZAMax:
			out[i] = a.YAMax
		case zv <= a.ZPMin:
			out[i] = lerp(zv, a.ZAMin, a.YAMin, a.ZPMin, a.YPMin)
		case zv >= a.ZPMax:
			out[i] = lerp(zv, a.ZPMax, a.YPMax, a.ZAMax, a.YAMax)
		default:
			out[i] = tableInterp(zv, table.Z, table.Y)
		}
	}
	return out, nil
}

// tableInterp linearly interpolates y at z against the tabulated curve,
// bracketing with the first table entry at or above z. Flat table segments
// (tied raw values) resolve to the lower edge of the tie.
func tableInterp(z float64, zs, ys []float64) float64 {
	if z <= zs[0] {
		return ys[0]
	}
	last := len(zs) - 1
	if z >= zs[last] {
		return ys[last]
	}
	hi := 1
	for hi < last && zs[hi] < z {
		hi++
	}
	return lerp(z, zs[hi-1], ys[hi-1], zs[hi], ys[hi])
}

// lerp is the two-point line through (x0,v0) and (x1,v1) evaluated at x.
// A degenerate segment collapses to its left value.
func lerp(x, x0, v0, x1, v1 float64) float64 {
	if x1 == x0 {
		return v0
	}
	return v0 + (v1-v0)*(x-x0)/(x1-x0)
}
