package quality

import (
	"testing"

	"github.com/ironsheep/stripscan/internal/imaging"
)

func TestColorSeparation(t *testing.T) {
	red := imaging.RGBColor{R: 220, G: 20, B: 60}
	blue := imaging.RGBColor{R: 0, G: 100, B: 255}
	yellow := imaging.RGBColor{R: 255, G: 255}

	tests := []struct {
		name      string
		colors    []imaging.RGBColor
		wantLabel string
	}{
		{"none", nil, "Unknown"},
		{"single", []imaging.RGBColor{red}, "Unknown"},
		{"identical", []imaging.RGBColor{red, red, red}, "Poor"},
		{"distinct", []imaging.RGBColor{red, blue, yellow}, "Excellent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorSeparation(tt.colors)
			if got.Label != tt.wantLabel {
				t.Errorf("got %+v, want label %s", got, tt.wantLabel)
			}
			if got.MinDeltaE > got.MeanDeltaE {
				t.Errorf("min %v exceeds mean %v", got.MinDeltaE, got.MeanDeltaE)
			}
		})
	}
}
