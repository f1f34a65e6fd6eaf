package ports

import (
	"goanam/domain/anamorphosis"
)

// TableBuilder produces the empirical transformation table from raw
// declustered data: equal-length sorted raw values paired with
// standard-normal quantiles.
type TableBuilder interface {
	// Build sorts values by magnitude, accumulates declustering weights into
	// cumulative probabilities, and pairs each raw value with its Gaussian
	// quantile. A nil weights slice means equal weighting.
	Build(values, weights []float64) (anamorphosis.Table, error)
}

// NormalScorer converts between raw and Gaussian scale against a
// transformation table, with tail extrapolation outside the tabulated range.
type NormalScorer interface {
	// Score transforms raw values to Gaussian scores.
	Score(values []float64, table anamorphosis.Table) ([]float64, error)

	// Back transforms Gaussian scores to raw values, applying the tail model
	// beyond the table and clamping to its explicit bounds.
	Back(scores []float64, table anamorphosis.Table, tail anamorphosis.TailModel) ([]float64, error)
}

// Descriptive computes summary statistics, optionally declustering-weighted.
type Descriptive interface {
	Summarize(values, weights []float64, useWeights bool) (anamorphosis.Summary, error)
}

// ReportSink receives labeled curve panels for visualization. Implementations
// carry no numerical responsibility; a no-op sink is valid in headless runs.
type ReportSink interface {
	WritePanel(panel anamorphosis.CurvePanel) error
	WriteModelSummary(model anamorphosis.Model) error
	Flush() error
}
