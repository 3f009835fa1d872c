// Package units provides shared constants and validation for length units
package units

// Unit constants
const (
	Inches      = "in"
	Centimeters = "cm"
	Feet        = "ft"
	Meters      = "m"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Inches, Centimeters, Feet, Meters}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "in, cm, ft, m"
}

// ConvertInches converts a length in inches to the target units.
// Jump height is measured in inches.
func ConvertInches(inches float64, targetUnits string) float64 {
	switch targetUnits {
	case Centimeters:
		return inches * 2.54
	case Feet:
		return inches / 12
	case Meters:
		return inches * 0.0254
	default:
		return inches
	}
}

// ConvertFeet converts a length in feet to the target units.
// Lateral drift is measured in feet.
func ConvertFeet(feet float64, targetUnits string) float64 {
	return ConvertInches(feet*12, targetUnits)
}
