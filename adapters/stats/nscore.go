package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"goanam/domain/anamorphosis"
	"goanam/internal/errors"
)

// NormalScorer converts between raw and Gaussian scale against a
// transformation table. Interior values interpolate linearly on the table;
// outside the table the back-transform applies the requested tail model and
// clamps to its explicit bounds.
type NormalScorer struct{}

// NewNormalScorer creates a new normal scorer
func NewNormalScorer() *NormalScorer {
	return &NormalScorer{}
}

// Score transforms raw values to Gaussian scores, clamping outside the table.
func (s *NormalScorer) Score(values []float64, table anamorphosis.Table) ([]float64, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.TableInvalid(err.Error())
	}

	out := make([]float64, len(values))
	last := table.Len() - 1
	for i, z := range values {
		switch {
		case z <= table.Z[0]:
			out[i] = table.Y[0]
		case z >= table.Z[last]:
			out[i] = table.Y[last]
		default:
			hi := sort.SearchFloat64s(table.Z, z)
			if table.Z[hi] == z {
				out[i] = table.Y[hi]
				continue
			}
			out[i] = interpolate(z, table.Z[hi-1], table.Y[hi-1], table.Z[hi], table.Y[hi])
		}
	}
	return out, nil
}

// Back transforms Gaussian scores to raw values. Interior scores interpolate
// on the table; tail scores follow the tail model in cumulative-probability
// space and every output is clamped to [tail.ZMin, tail.ZMax].
func (s *NormalScorer) Back(scores []float64, table anamorphosis.Table, tail anamorphosis.TailModel) ([]float64, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.TableInvalid(err.Error())
	}
	if tail.Kind == anamorphosis.TailPower && tail.Power <= 0 {
		return nil, errors.InvalidInput("power tail requires a positive shape parameter")
	}

	last := table.Len() - 1
	pLo := distuv.UnitNormal.CDF(table.Y[0])
	pHi := distuv.UnitNormal.CDF(table.Y[last])

	out := make([]float64, len(scores))
	for i, yv := range scores {
		var z float64
		switch {
		case yv < table.Y[0]:
			z = s.lowerTail(yv, table, tail, pLo)
		case yv > table.Y[last]:
			z = s.upperTail(yv, table, tail, pHi)
		default:
			hi := sort.SearchFloat64s(table.Y, yv)
			if table.Y[hi] == yv {
				z = table.Z[hi]
			} else {
				z = interpolate(yv, table.Y[hi-1], table.Z[hi-1], table.Y[hi], table.Z[hi])
			}
		}
		out[i] = math.Min(math.Max(z, tail.ZMin), tail.ZMax)
	}
	return out, nil
}

func (s *NormalScorer) lowerTail(yv float64, table anamorphosis.Table, tail anamorphosis.TailModel, pLo float64) float64 {
	switch tail.Kind {
	case anamorphosis.TailLinear:
		p := distuv.UnitNormal.CDF(yv)
		return powint(0, pLo, tail.ZMin, table.Z[0], p, 1)
	case anamorphosis.TailPower:
		p := distuv.UnitNormal.CDF(yv)
		return powint(0, pLo, tail.ZMin, table.Z[0], p, tail.Power)
	default:
		return table.Z[0]
	}
}

func (s *NormalScorer) upperTail(yv float64, table anamorphosis.Table, tail anamorphosis.TailModel, pHi float64) float64 {
	last := table.Len() - 1
	switch tail.Kind {
	case anamorphosis.TailLinear:
		p := distuv.UnitNormal.CDF(yv)
		return powint(pHi, 1, table.Z[last], tail.ZMax, p, 1)
	case anamorphosis.TailPower:
		// Hyperbolic upper tail: mass above the table decays as z^-omega.
		p := distuv.UnitNormal.CDF(yv)
		lambda := (1 - pHi) * math.Pow(table.Z[last], tail.Power)
		if lambda <= 0 || p >= 1 {
			return tail.ZMax
		}
		return math.Pow(lambda/(1-p), 1/tail.Power)
	default:
		return table.Z[last]
	}
}

// powint interpolates between (xlo, zlo) and (xhi, zhi) with a power-law
// shape; pow=1 is plain linear interpolation.
func powint(xlo, xhi, zlo, zhi, x, pow float64) float64 {
	if xhi == xlo {
		return zlo
	}
	frac := (x - xlo) / (xhi - xlo)
	return zlo + (zhi-zlo)*math.Pow(frac, pow)
}

func interpolate(x, x0, v0, x1, v1 float64) float64 {
	if x1 == x0 {
		return v0
	}
	return v0 + (v1-v0)*(x-x0)/(x1-x0)
}
