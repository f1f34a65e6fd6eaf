package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"

	"goanam/domain/anamorphosis"
	"goanam/internal/errors"
)

// Descriptive computes the summary statistics consumed by calibration
// reports: unweighted moments via montanaflynn/stats, declustering-weighted
// moments via gonum.
type Descriptive struct{}

// NewDescriptive creates a new descriptive statistics adapter
func NewDescriptive() *Descriptive {
	return &Descriptive{}
}

// Summarize returns min, max, CV, mean, variance and the quartiles of values.
// With useWeights set, the mean, variance and quantiles are weighted.
func (d *Descriptive) Summarize(values, weights []float64, useWeights bool) (anamorphosis.Summary, error) {
	if len(values) == 0 {
		return anamorphosis.Summary{}, errors.InvalidInput("no values to summarize")
	}
	if useWeights && len(weights) != len(values) {
		return anamorphosis.Summary{}, errors.ShapeMismatch(
			"weights length %d does not match values length %d", len(weights), len(values))
	}

	min, err := mstats.Min(values)
	if err != nil {
		return anamorphosis.Summary{}, errors.Wrap(err, "min")
	}
	max, err := mstats.Max(values)
	if err != nil {
		return anamorphosis.Summary{}, errors.Wrap(err, "max")
	}

	if !useWeights {
		mean, err := mstats.Mean(values)
		if err != nil {
			return anamorphosis.Summary{}, errors.Wrap(err, "mean")
		}
		variance, err := mstats.PopulationVariance(values)
		if err != nil {
			return anamorphosis.Summary{}, errors.Wrap(err, "variance")
		}
		q25, _ := mstats.Percentile(values, 25)
		q50, _ := mstats.Percentile(values, 50)
		q75, _ := mstats.Percentile(values, 75)

		return anamorphosis.Summary{
			Min:      min,
			Max:      max,
			CV:       cv(mean, variance),
			Mean:     mean,
			Variance: variance,
			Quantile: []float64{q25, q50, q75},
		}, nil
	}

	// Weighted path: gonum's quantile needs the values sorted with weights
	// carried along.
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	sorted := make([]float64, len(values))
	sortedW := make([]float64, len(values))
	for i, j := range idx {
		sorted[i] = values[j]
		sortedW[i] = weights[j]
	}

	mean := gstat.Mean(sorted, sortedW)
	variance := gstat.Variance(sorted, sortedW)
	q25 := gstat.Quantile(0.25, gstat.Empirical, sorted, sortedW)
	q50 := gstat.Quantile(0.50, gstat.Empirical, sorted, sortedW)
	q75 := gstat.Quantile(0.75, gstat.Empirical, sorted, sortedW)

	return anamorphosis.Summary{
		Min:      min,
		Max:      max,
		CV:       cv(mean, variance),
		Mean:     mean,
		Variance: variance,
		Quantile: []float64{q25, q50, q75},
	}, nil
}

func cv(mean, variance float64) float64 {
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / math.Abs(mean)
}
