package stats

import (
	"math"
	"testing"
)

func TestSummarizeUnweighted(t *testing.T) {
	d := NewDescriptive()

	summary, err := d.Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9}, nil, false)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.Min != 2 || summary.Max != 9 {
		t.Errorf("min/max = %g/%g, want 2/9", summary.Min, summary.Max)
	}
	if summary.Mean != 5 {
		t.Errorf("mean = %g, want 5", summary.Mean)
	}
	if summary.Variance != 4 {
		t.Errorf("variance = %g, want 4", summary.Variance)
	}
	if want := 2.0 / 5.0; math.Abs(summary.CV-want) > 1e-12 {
		t.Errorf("cv = %g, want %g", summary.CV, want)
	}
	if len(summary.Quantile) != 3 {
		t.Fatalf("expected 3 quantiles, got %d", len(summary.Quantile))
	}
	if summary.Quantile[1] != 4.5 {
		t.Errorf("median = %g, want 4.5", summary.Quantile[1])
	}
}

func TestSummarizeWeighted(t *testing.T) {
	d := NewDescriptive()

	// All the weight on the value 10: weighted mean must follow it.
	summary, err := d.Summarize([]float64{1, 10}, []float64{0.001, 1000}, true)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if math.Abs(summary.Mean-10) > 1e-3 {
		t.Errorf("weighted mean = %g, want ~10", summary.Mean)
	}
	if summary.Min != 1 || summary.Max != 10 {
		t.Errorf("min/max ignore weights: got %g/%g", summary.Min, summary.Max)
	}
}

func TestSummarizeErrors(t *testing.T) {
	d := NewDescriptive()

	if _, err := d.Summarize(nil, nil, false); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := d.Summarize([]float64{1, 2}, []float64{1}, true); err == nil {
		t.Error("expected error for weight length mismatch")
	}
}
