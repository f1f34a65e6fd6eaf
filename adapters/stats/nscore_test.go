package stats

import (
	"math"
	"testing"

	"goanam/domain/anamorphosis"
)

func testTable(t *testing.T) anamorphosis.Table {
	t.Helper()
	table, err := NewTableBuilder().Build([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return table
}

func TestScoreBackRoundTrip(t *testing.T) {
	table := testTable(t)
	scorer := NewNormalScorer()
	tail := anamorphosis.TailModel{Kind: anamorphosis.TailNone, ZMin: 0, ZMax: 20}

	values := []float64{2.5, 5, 7.25, 9.5}
	scores, err := scorer.Score(values, table)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	back, err := scorer.Back(scores, table, tail)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}

	for i, v := range values {
		if math.Abs(back[i]-v) > 1e-9 {
			t.Errorf("round trip of %g drifted to %g", v, back[i])
		}
	}
}

func TestScoreClampsOutsideTable(t *testing.T) {
	table := testTable(t)
	scorer := NewNormalScorer()

	scores, err := scorer.Score([]float64{-5, 50}, table)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if scores[0] != table.Y[0] {
		t.Errorf("low score = %g, want clamp %g", scores[0], table.Y[0])
	}
	if scores[1] != table.Y[table.Len()-1] {
		t.Errorf("high score = %g, want clamp %g", scores[1], table.Y[table.Len()-1])
	}
}

func TestBackTailModels(t *testing.T) {
	table := testTable(t)
	scorer := NewNormalScorer()
	low := table.Y[0] - 1
	high := table.Y[table.Len()-1] + 1

	t.Run("no extrapolation clamps to the table", func(t *testing.T) {
		tail := anamorphosis.TailModel{Kind: anamorphosis.TailNone, ZMin: 0, ZMax: 20}
		out, err := scorer.Back([]float64{low, high}, table, tail)
		if err != nil {
			t.Fatalf("Back failed: %v", err)
		}
		if out[0] != table.Z[0] || out[1] != table.Z[table.Len()-1] {
			t.Errorf("clamped tails = %v, want table edges", out)
		}
	})

	t.Run("linear tail falls between clamp and edge", func(t *testing.T) {
		tail := anamorphosis.TailModel{Kind: anamorphosis.TailLinear, ZMin: 0, ZMax: 20}
		out, err := scorer.Back([]float64{low, high}, table, tail)
		if err != nil {
			t.Fatalf("Back failed: %v", err)
		}
		if out[0] <= tail.ZMin || out[0] >= table.Z[0] {
			t.Errorf("lower linear tail = %g, want inside (%g, %g)", out[0], tail.ZMin, table.Z[0])
		}
		if out[1] <= table.Z[table.Len()-1] || out[1] >= tail.ZMax {
			t.Errorf("upper linear tail = %g, want inside (%g, %g)",
				out[1], table.Z[table.Len()-1], tail.ZMax)
		}
	})

	t.Run("power tail respects the clamp bounds", func(t *testing.T) {
		tail := anamorphosis.TailModel{Kind: anamorphosis.TailPower, Power: 2, ZMin: 0, ZMax: 20}
		out, err := scorer.Back([]float64{low - 3, high + 3}, table, tail)
		if err != nil {
			t.Fatalf("Back failed: %v", err)
		}
		for _, z := range out {
			if z < tail.ZMin || z > tail.ZMax {
				t.Errorf("tail output %g escapes clamp [%g, %g]", z, tail.ZMin, tail.ZMax)
			}
		}
	})

	t.Run("power tail requires a shape parameter", func(t *testing.T) {
		tail := anamorphosis.TailModel{Kind: anamorphosis.TailPower, ZMin: 0, ZMax: 20}
		if _, err := scorer.Back([]float64{low}, table, tail); err == nil {
			t.Error("expected error for power tail without a positive shape")
		}
	})
}
