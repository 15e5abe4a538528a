// Package health holds body-measurement formulas: unit conversion and BMI.
package health

import (
	"fmt"
	"strings"
)

const poundsPerKilogram = 1 / 0.45359237

// Weight units
const (
	UnitKilogram = "kg"
	UnitPound    = "lb"
)

// NormalizeUnit maps user input to UnitKilogram or UnitPound.
func NormalizeUnit(unit string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg", "kgs":
		return UnitKilogram, nil
	case "lb", "lbs":
		return UnitPound, nil
	default:
		return "", fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

// PoundsToKilograms converts a weight in pounds.
func PoundsToKilograms(lb float64) float64 {
	return lb / poundsPerKilogram
}

// KilogramsToPounds converts a weight in kilograms.
func KilogramsToPounds(kg float64) float64 {
	return kg * poundsPerKilogram
}

// ToKilograms converts value in unit to kilograms, rejecting non-positive weights.
func ToKilograms(value float64, unit string) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	u, err := NormalizeUnit(unit)
	if err != nil {
		return 0, err
	}
	if u == UnitPound {
		return PoundsToKilograms(value), nil
	}
	return value, nil
}

// BMI computes body-mass index from kilograms and centimetres.
func BMI(weightKg, heightCm float64) (float64, error) {
	if weightKg <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	if heightCm <= 0 {
		return 0, fmt.Errorf("height must be > 0")
	}
	m := heightCm / 100
	return weightKg / (m * m), nil
}

// BMIStatus classifies a BMI value using the WHO bands.
func BMIStatus(bmi float64) string {
	switch {
	case bmi < 16:
		return "Severe Thinness"
	case bmi < 17:
		return "Moderate thinness"
	case bmi < 18.5:
		return "Mild thinness"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	case bmi < 35:
		return "Obese class 1"
	default:
		return "Obese class 2"
	}
}
