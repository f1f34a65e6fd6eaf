package app

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"goanam/adapters/report"
	"goanam/adapters/stats"
	"goanam/domain/anamorphosis"
	"goanam/domain/core"
	"goanam/internal/hermite"
)

func newTestService() *CalibrationService {
	return NewCalibrationService(
		stats.NewTableBuilder(),
		stats.NewNormalScorer(),
		stats.NewDescriptive(),
		report.NoopSink{},
	)
}

// lognormalSamples draws a reproducible skewed dataset.
func lognormalSamples(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(0.4 + 0.5*rng.NormFloat64())
	}
	return out
}

func TestCalibrate(t *testing.T) {
	svc := newTestService()

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(600, 7),
		Order:    24,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	if model.ID.String() == "" {
		t.Error("model should carry an ID")
	}
	if len(model.PCI) != 25 {
		t.Errorf("expected 25 coefficients, got %d", len(model.PCI))
	}
	if model.Table.Len() != 600 {
		t.Errorf("table rows = %d, want 600", model.Table.Len())
	}
	if err := model.Bounds.Validate(model.Table.Len()); err != nil {
		t.Errorf("invalid bounds: %v", err)
	}
	if model.Diagnostics.PCIVariance <= 0 {
		t.Error("expansion variance should be positive")
	}
	// The variance gap is a diagnostic, not an exact match, but it should be
	// small relative to the variance itself at this resolution.
	if model.Diagnostics.VarianceGap > 0.2*model.Diagnostics.EmpiricalVariance {
		t.Errorf("variance gap %g too large against empirical variance %g",
			model.Diagnostics.VarianceGap, model.Diagnostics.EmpiricalVariance)
	}
}

func TestCalibrateRejectsBadOrder(t *testing.T) {
	svc := newTestService()
	_, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(50, 1),
		Order:    0,
	})
	if err == nil {
		t.Fatal("expected error for order 0")
	}
}

func TestCalibrateMeanOverride(t *testing.T) {
	svc := newTestService()
	mean := 42.0

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(200, 3),
		Order:    12,
		Mean:     &mean,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if model.PCI[0] != mean {
		t.Errorf("pci[0] = %g, want supplied mean %g", model.PCI[0], mean)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	svc := newTestService()

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(800, 11),
		Order:    30,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	// A value near the center of the practical interval survives the round
	// trip within the fit error of the expansion.
	z0 := model.Table.Z[model.Table.Len()/2]
	ys, err := svc.RawToGaussian(model, []float64{z0})
	if err != nil {
		t.Fatalf("RawToGaussian failed: %v", err)
	}
	back := svc.GaussianToRaw(model, ys)[0]
	if math.Abs(back-z0) > 0.1*z0 {
		t.Errorf("round trip of %g drifted to %g", z0, back)
	}
}

func TestCalibrateBlock(t *testing.T) {
	svc := newTestService()

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(500, 5),
		Order:    20,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	block, err := svc.CalibrateBlock(model, 0.7, nil, nil)
	if err != nil {
		t.Fatalf("CalibrateBlock failed: %v", err)
	}
	if block.R != 0.7 {
		t.Errorf("block r = %g, want 0.7", block.R)
	}
	if block.Bounds.II != 0 || block.Bounds.JJ != model.Table.Len()-1 {
		t.Errorf("block practical interval must span the grid, got %+v", block.Bounds)
	}

	// Support scaling shrinks the spread of the curve over the authorized
	// interval.
	pointSpread := model.ZAna[model.Bounds.J] - model.ZAna[model.Bounds.I]
	blockSpread := block.ZAna[block.Bounds.J] - block.ZAna[block.Bounds.I]
	if blockSpread >= pointSpread {
		t.Errorf("block spread %g should be below point spread %g", blockSpread, pointSpread)
	}

	// r outside (0,1] is rejected.
	if _, err := svc.CalibrateBlock(model, 0, nil, nil); err == nil {
		t.Error("expected error for r=0")
	}
	if _, err := svc.CalibrateBlock(model, 1.5, nil, nil); err == nil {
		t.Error("expected error for r>1")
	}
}

func TestEffects(t *testing.T) {
	svc := newTestService()

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(400, 9),
		Order:    18,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	pciVar := hermite.VarPCI(model.PCI)

	// A reachable covariance target: evaluate the identity at a chosen ro.
	rWant, sWant := 0.85, 0.9
	rv, err := svc.Effects(model, 0, 0, 0)
	if err != nil {
		t.Fatalf("Effects with zero targets failed: %v", err)
	}
	if rv.R != 0 || rv.S != 0 || rv.Ro != 0 {
		t.Errorf("zero targets must give zero coefficients, got %+v", rv)
	}

	roWant := 0.8
	varZv := weightedPCISum(model.PCI, rWant*rWant)
	varZvEst := weightedPCISum(model.PCI, sWant*sWant)
	covar := weightedPCISum(model.PCI, rWant*sWant*roWant)
	coeffs, err := svc.Effects(model, varZv, varZvEst, covar)
	if err != nil {
		t.Fatalf("Effects failed: %v", err)
	}
	if math.Abs(coeffs.R-rWant) > 1e-6 {
		t.Errorf("r = %g, want %g", coeffs.R, rWant)
	}
	if math.Abs(coeffs.S-sWant) > 1e-6 {
		t.Errorf("s = %g, want %g", coeffs.S, sWant)
	}
	if math.Abs(coeffs.Ro-roWant) > 1e-6 {
		t.Errorf("ro = %g, want %g", coeffs.Ro, roWant)
	}

	// Infeasible target: more variance than the expansion carries.
	if _, err := svc.Effects(model, 2*pciVar, varZvEst, 0.1); err == nil {
		t.Error("expected error for infeasible block variance")
	}
}

// weightedPCISum evaluates sum_p pci[p]^2 * base^p over p >= 1, the left side
// of the support and information identities.
func weightedPCISum(pci []float64, base float64) float64 {
	sum := 0.0
	q := 1.0
	for _, c := range pci[1:] {
		q *= base
		sum += c * c * q
	}
	return sum
}

func TestCalibrateBatch(t *testing.T) {
	svc := newTestService()

	reqs := []CalibrationRequest{
		{Variable: core.VariableKey("cu"), Values: lognormalSamples(300, 21), Order: 16},
		{Variable: core.VariableKey("au"), Values: lognormalSamples(300, 22), Order: 16},
		{Variable: core.VariableKey("ag"), Values: lognormalSamples(300, 23), Order: 16},
	}
	models, err := svc.CalibrateBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("CalibrateBatch failed: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	for i, m := range models {
		if m == nil {
			t.Fatalf("model %d missing", i)
		}
		if m.Variable != reqs[i].Variable {
			t.Errorf("model %d variable = %s, want %s", i, m.Variable, reqs[i].Variable)
		}
	}

	// One bad request fails the batch.
	reqs[1].Values = nil
	if _, err := svc.CalibrateBatch(context.Background(), reqs); err == nil {
		t.Error("expected batch failure for empty values")
	}
}

func TestNormalScoresAndBack(t *testing.T) {
	svc := newTestService()

	model, err := svc.Calibrate(context.Background(), CalibrationRequest{
		Variable: core.VariableKey("grade"),
		Values:   lognormalSamples(300, 31),
		Order:    16,
	})
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	values := []float64{model.Table.Z[50], model.Table.Z[150], model.Table.Z[250]}
	scores, err := svc.NormalScores(model, values)
	if err != nil {
		t.Fatalf("NormalScores failed: %v", err)
	}
	tail := anamorphosis.TailModel{Kind: anamorphosis.TailLinear, ZMin: 0, ZMax: model.Table.Z[299] * 2}
	back, err := svc.BackTransform(model, scores, tail)
	if err != nil {
		t.Fatalf("BackTransform failed: %v", err)
	}
	for i, v := range values {
		if math.Abs(back[i]-v) > 1e-9 {
			t.Errorf("normal-score round trip of %g drifted to %g", v, back[i])
		}
	}
}
