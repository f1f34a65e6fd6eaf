package anamorphosis

import (
	"fmt"

	"goanam/domain/core"
)

// Table is the empirical anamorphosis table: raw values Z paired index-for-index
// with standard-normal quantiles Y. Z is non-decreasing, Y strictly increasing,
// both the same length. Built once per calibration run and never mutated.
type Table struct {
	Z []float64 `json:"z"`
	Y []float64 `json:"y"`
}

// Len returns the number of table rows.
func (t Table) Len() int { return len(t.Z) }

// Validate checks the pairing and ordering invariants.
func (t Table) Validate() error {
	if len(t.Z) == 0 {
		return fmt.Errorf("empty transformation table")
	}
	if len(t.Z) != len(t.Y) {
		return fmt.Errorf("table length mismatch: %d raw vs %d gaussian", len(t.Z), len(t.Y))
	}
	for i := 1; i < len(t.Y); i++ {
		if t.Y[i] <= t.Y[i-1] {
			return fmt.Errorf("gaussian grid not strictly increasing at index %d", i)
		}
		if t.Z[i] < t.Z[i-1] {
			return fmt.Errorf("raw grid decreasing at index %d", i)
		}
	}
	return nil
}

// Bounds is the control-point quadruple: indices into the evaluated curve
// marking the authorized interval (I..J) and the practical interval (II..JJ).
type Bounds struct {
	I  int `json:"i"`
	J  int `json:"j"`
	II int `json:"ii"`
	JJ int `json:"jj"`
}

// Validate checks index ordering against a grid of length n.
func (b Bounds) Validate(n int) error {
	if b.I < 0 || b.J >= n || b.II < 0 || b.JJ >= n {
		return fmt.Errorf("control-point indices out of range for grid of %d: %+v", n, b)
	}
	if b.I > b.J {
		return fmt.Errorf("authorized bounds inverted: i=%d > j=%d", b.I, b.J)
	}
	if b.II > b.JJ {
		return fmt.Errorf("practical bounds inverted: ii=%d > jj=%d", b.II, b.JJ)
	}
	return nil
}

// Anchors carries the raw and Gaussian values at the four control points.
// Authorized anchors come from the fitted curve, practical anchors from the
// empirical curve; both share the Gaussian grid.
type Anchors struct {
	ZAMin float64 `json:"zamin"`
	YAMin float64 `json:"yamin"`
	ZPMin float64 `json:"zpmin"`
	YPMin float64 `json:"ypmin"`
	ZPMax float64 `json:"zpmax"`
	YPMax float64 `json:"ypmax"`
	ZAMax float64 `json:"zamax"`
	YAMax float64 `json:"yamax"`
}

// AnchorsFrom reads the anchor values for bounds b: fitted curve zana at the
// authorized indices, empirical zraw at the practical indices.
func AnchorsFrom(zana, zraw, y []float64, b Bounds) Anchors {
	return Anchors{
		ZAMin: zana[b.I], YAMin: y[b.I],
		ZPMin: zraw[b.II], YPMin: y[b.II],
		ZPMax: zraw[b.JJ], YPMax: y[b.JJ],
		ZAMax: zana[b.J], YAMax: y[b.J],
	}
}

// BlockAnchorsFrom reads anchors for a block-support curve, where both the
// authorized and practical anchors come from the fitted block curve itself.
func BlockAnchorsFrom(zana, y []float64, b Bounds) Anchors {
	return Anchors{
		ZAMin: zana[b.I], YAMin: y[b.I],
		ZPMin: zana[b.II], YPMin: y[b.II],
		ZPMax: zana[b.JJ], YPMax: y[b.JJ],
		ZAMax: zana[b.J], YAMax: y[b.J],
	}
}

// FitDiagnostics reports how well the truncated expansion reproduces the
// empirical distribution. The variance gap is a validation signal, not an
// enforced invariant: it shrinks with grid resolution and expansion order.
type FitDiagnostics struct {
	Mean              float64 `json:"mean"`
	EmpiricalVariance float64 `json:"empirical_variance"`
	PCIVariance       float64 `json:"pci_variance"`
	VarianceGap       float64 `json:"variance_gap"`
}

// Model is a fitted point-support anamorphosis.
type Model struct {
	ID          core.ModelID     `json:"id"`
	Variable    core.VariableKey `json:"variable"`
	Order       int              `json:"order"`
	Table       Table            `json:"table"`
	PCI         []float64        `json:"pci"`
	PDF         []float64        `json:"pdf"`
	ZAna        []float64        `json:"zana"`
	Bounds      Bounds           `json:"bounds"`
	Anchors     Anchors          `json:"anchors"`
	Diagnostics FitDiagnostics   `json:"diagnostics"`
	CreatedAt   core.Timestamp   `json:"created_at"`
}

// BlockModel is a block-support anamorphosis derived from a point model and a
// support-effect coefficient r.
type BlockModel struct {
	ModelID core.ModelID `json:"model_id"`
	R       float64      `json:"r"`
	ZAna    []float64    `json:"zana"`
	Bounds  Bounds       `json:"bounds"`
	Anchors Anchors      `json:"anchors"`
}

// EffectCoefficients are the support and information effect scalars, each the
// root of its variance/covariance identity over the PCI spectrum.
type EffectCoefficients struct {
	R  float64 `json:"r"`
	S  float64 `json:"s"`
	Ro float64 `json:"ro"`
}

// Summary is the descriptive-statistics contract consumed by reports.
type Summary struct {
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	CV       float64   `json:"cv"`
	Mean     float64   `json:"mean"`
	Variance float64   `json:"variance"`
	Quantile []float64 `json:"quantiles"` // 0.25, 0.50, 0.75
}

// TailKind selects the extrapolation rule for back-transforms outside the
// tabulated range.
type TailKind int

const (
	TailNone TailKind = iota
	TailLinear
	TailPower
)

// TailModel bundles a tail kind with its shape parameter and clamp bounds.
type TailModel struct {
	Kind TailKind `json:"kind"`
	// Power is the shape parameter for TailPower (>1 decays faster than linear).
	Power float64 `json:"power"`
	ZMin  float64 `json:"zmin"`
	ZMax  float64 `json:"zmax"`
}

// Series is one labeled raw-scale curve over a shared Gaussian grid.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// CurvePanel groups curve series for the reporting sink; purely presentational.
type CurvePanel struct {
	Title  string    `json:"title"`
	Gauss  []float64 `json:"gauss"`
	Series []Series  `json:"series"`
}
