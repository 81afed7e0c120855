package printing

import "testing"

func TestNormalizePaperName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already normalized", input: "a4", expected: "a4"},
		{name: "uppercase", input: "A4", expected: "a4"},
		{name: "underscores stripped", input: "THERMAL_80", expected: "thermal80"},
		{name: "spaces stripped", input: "100 x 150", expected: "100x150"},
		{name: "mixed", input: " Thermal 57 ", expected: "thermal57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePaperName(tt.input)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLookupPaperSize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantWidth  float64
		wantHeight float64
		wantOK     bool
	}{
		{name: "a4", input: "A4", wantWidth: 210, wantHeight: 297, wantOK: true},
		{name: "letter", input: "Letter", wantWidth: 216, wantHeight: 279, wantOK: true},
		{name: "receipt roll", input: "80mm", wantWidth: 80, wantHeight: 297, wantOK: true},
		{name: "label stock", input: "100x150", wantWidth: 100, wantHeight: 150, wantOK: true},
		{name: "thermal with underscore", input: "Thermal_80", wantWidth: 80, wantHeight: 297, wantOK: true},
		{name: "unknown", input: "Quarto", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, ok := LookupPaperSize(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if size.WidthMM != tt.wantWidth || size.HeightMM != tt.wantHeight {
				t.Errorf("expected %gx%gmm, got %gx%gmm",
					tt.wantWidth, tt.wantHeight, size.WidthMM, size.HeightMM)
			}
		})
	}
}
