package anamorphosis

import (
	"testing"
)

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr bool
	}{
		{
			name:  "valid table",
			table: Table{Z: []float64{1, 2, 2, 3}, Y: []float64{-1, 0, 0.5, 1}},
		},
		{
			name:    "empty table",
			table:   Table{},
			wantErr: true,
		},
		{
			name:    "length mismatch",
			table:   Table{Z: []float64{1, 2}, Y: []float64{0}},
			wantErr: true,
		},
		{
			name:    "gaussian grid with tie",
			table:   Table{Z: []float64{1, 2}, Y: []float64{0, 0}},
			wantErr: true,
		},
		{
			name:    "decreasing raw grid",
			table:   Table{Z: []float64{2, 1}, Y: []float64{-1, 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		n       int
		wantErr bool
	}{
		{"valid", Bounds{I: 1, J: 8, II: 0, JJ: 9}, 10, false},
		{"authorized inverted", Bounds{I: 8, J: 1, II: 0, JJ: 9}, 10, true},
		{"practical inverted", Bounds{I: 1, J: 8, II: 9, JJ: 0}, 10, true},
		{"out of range", Bounds{I: 0, J: 10, II: 0, JJ: 9}, 10, true},
		{"negative index", Bounds{I: -1, J: 8, II: 0, JJ: 9}, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate(tt.n)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAnchorsFrom(t *testing.T) {
	zana := []float64{0.5, 1.5, 2.5, 3.5, 4.5}
	zraw := []float64{0, 1, 2, 3, 4}
	y := []float64{-2, -1, 0, 1, 2}
	b := Bounds{I: 1, J: 3, II: 0, JJ: 4}

	a := AnchorsFrom(zana, zraw, y, b)
	if a.ZAMin != 1.5 || a.YAMin != -1 {
		t.Errorf("authorized lower anchor = (%g, %g), want (1.5, -1)", a.ZAMin, a.YAMin)
	}
	if a.ZPMin != 0 || a.YPMin != -2 {
		t.Errorf("practical lower anchor = (%g, %g), want (0, -2)", a.ZPMin, a.YPMin)
	}
	if a.ZAMax != 3.5 || a.YAMax != 1 {
		t.Errorf("authorized upper anchor = (%g, %g), want (3.5, 1)", a.ZAMax, a.YAMax)
	}
	if a.ZPMax != 4 || a.YPMax != 2 {
		t.Errorf("practical upper anchor = (%g, %g), want (4, 2)", a.ZPMax, a.YPMax)
	}

	// Block anchors read every value from the fitted curve.
	ba := BlockAnchorsFrom(zana, y, b)
	if ba.ZPMin != 0.5 || ba.ZPMax != 4.5 {
		t.Errorf("block practical anchors = (%g, %g), want (0.5, 4.5)", ba.ZPMin, ba.ZPMax)
	}
}
