package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMIStatus(t *testing.T) {
	tests := []struct {
		bmi      float64
		expected string
	}{
		{15.9, "Severe Thinness"},
		{16, "Moderate thinness"},
		{17, "Mild thinness"},
		{18.5, "Normal"},
		{24.99, "Normal"},
		{25, "Overweight"},
		{30, "Obese class 1"},
		{35, "Obese class 2"},
		{52, "Obese class 2"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, BMIStatus(tt.bmi))
		})
	}
}

func TestBMI(t *testing.T) {
	bmi, err := BMI(72, 180)
	require.NoError(t, err)
	assert.InDelta(t, 22.22, bmi, 0.01)

	_, err = BMI(0, 180)
	assert.Error(t, err)
	_, err = BMI(72, 0)
	assert.Error(t, err)
}

func TestUnitConversion(t *testing.T) {
	assert.InDelta(t, 45.359237, PoundsToKilograms(100), 1e-9)
	assert.InDelta(t, 220.462, KilogramsToPounds(100), 0.001)
	assert.InDelta(t, 80, PoundsToKilograms(KilogramsToPounds(80)), 1e-9)

	kg, err := ToKilograms(160, "LBS")
	require.NoError(t, err)
	assert.InDelta(t, 72.57, kg, 0.01)

	kg, err = ToKilograms(70, "")
	require.NoError(t, err)
	assert.Equal(t, 70.0, kg)

	_, err = ToKilograms(70, "stone")
	assert.ErrorContains(t, err, "invalid weight unit")
	_, err = ToKilograms(-1, "kg")
	assert.ErrorContains(t, err, "weight must be > 0")
}
