package stats

import (
	"log"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"goanam/domain/anamorphosis"
	"goanam/internal/errors"
)

// TableBuilder builds the empirical transformation table from raw declustered
// data: values sorted ascending, each paired with the standard-normal
// quantile of its weighted cumulative probability.
type TableBuilder struct{}

// NewTableBuilder creates a new table builder
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// Build sorts (value, weight) pairs by value and assigns each row the
// quantile of its midpoint cumulative probability (cum - w/2) / total.
// A nil weights slice means equal weighting.
func (b *TableBuilder) Build(values, weights []float64) (anamorphosis.Table, error) {
	if len(values) == 0 {
		return anamorphosis.Table{}, errors.TableInvalid("no input values")
	}
	if weights != nil && len(weights) != len(values) {
		return anamorphosis.Table{}, errors.ShapeMismatch(
			"weights length %d does not match values length %d", len(weights), len(values))
	}

	type pair struct{ z, w float64 }
	pairs := make([]pair, len(values))
	total := 0.0
	for i, z := range values {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w <= 0 {
			return anamorphosis.Table{}, errors.TableInvalid("nonpositive declustering weight")
		}
		pairs[i] = pair{z: z, w: w}
		total += w
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].z < pairs[j].z })

	table := anamorphosis.Table{
		Z: make([]float64, len(pairs)),
		Y: make([]float64, len(pairs)),
	}
	cum := 0.0
	for i, p := range pairs {
		cum += p.w
		cp := (cum - p.w/2) / total
		table.Z[i] = p.z
		table.Y[i] = distuv.UnitNormal.Quantile(cp)
	}

	if err := table.Validate(); err != nil {
		return anamorphosis.Table{}, errors.TableInvalid(err.Error())
	}

	log.Printf("[TableBuilder] built transformation table (%d rows, total weight %.4g)",
		table.Len(), total)
	return table, nil
}
