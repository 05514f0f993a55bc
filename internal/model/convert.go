package model

import (
	"fmt"
	"math"
)

const kgToLb = 2.20462

// ToDisplayWeight converts a canonical kilogram value to the display unit,
// rounded to one decimal place as shown in the UI.
func ToDisplayWeight(kg float64, imperial bool) float64 {
	v := kg
	if imperial {
		v = kg * kgToLb
	}
	return roundTo(v, 1)
}

// ToKg converts a user-entered display weight back to canonical kilograms,
// rounded to three decimal places before storage.
func ToKg(display float64, imperial bool) float64 {
	if math.IsNaN(display) {
		return 0
	}
	v := display
	if imperial {
		v = display / kgToLb
	}
	return roundTo(v, 3)
}

// FormatWeight renders a kilogram value with its display unit suffix.
func FormatWeight(kg float64, imperial bool) string {
	suffix := "kg"
	if imperial {
		suffix = "lbs"
	}
	return fmt.Sprintf("%g %s", ToDisplayWeight(kg, imperial), suffix)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
