package units

import (
	"math"
	"testing"

	"github.com/banshee-data/serve.report/internal/testutil"
)

func TestConvertInches(t *testing.T) {
	tests := []struct {
		name     string
		inches   float64
		units    string
		expected float64
	}{
		{"10 in to cm", 10.0, Centimeters, 25.4},
		{"24 in to ft", 24.0, Feet, 2.0},
		{"100 in to m", 100.0, Meters, 2.54},
		{"10 in to in", 10.0, Inches, 10.0},
		{"unknown units default to in", 10.0, "unknown", 10.0},
		{"0 in to cm", 0.0, Centimeters, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertInches(tt.inches, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertInches(%f, %s) = %f, want %f", tt.inches, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertFeet(t *testing.T) {
	tests := []struct {
		name     string
		feet     float64
		units    string
		expected float64
	}{
		{"1 ft to in", 1.0, Inches, 12.0},
		{"1 ft to ft", 1.0, Feet, 1.0},
		{"1 ft to cm", 1.0, Centimeters, 30.48},
		{"10 ft to m", 10.0, Meters, 3.048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertNear(t, ConvertFeet(tt.feet, tt.units), tt.expected, 1e-9)
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid in", Inches, true},
		{"valid cm", Centimeters, true},
		{"valid ft", Feet, true},
		{"valid m", Meters, true},
		{"invalid unit", "yd", false},
		{"empty string", "", false},
		{"case sensitive", "CM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "in, cm, ft, m" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
