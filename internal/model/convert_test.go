package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDisplayWeightMetric(t *testing.T) {
	assert.Equal(t, 100.0, ToDisplayWeight(100, false))
	assert.Equal(t, 82.5, ToDisplayWeight(82.5, false))
	assert.Equal(t, 60.3, ToDisplayWeight(60.34, false))
}

func TestToDisplayWeightImperial(t *testing.T) {
	// 100 kg = 220.462 lbs, shown with one decimal
	assert.Equal(t, 220.5, ToDisplayWeight(100, true))
	assert.Equal(t, 132.3, ToDisplayWeight(60, true))
	assert.Equal(t, 0.0, ToDisplayWeight(0, true))
}

func TestToKg(t *testing.T) {
	assert.Equal(t, 60.0, ToKg(60, false))
	assert.InDelta(t, 100.0, ToKg(220.5, true), 0.02)
	assert.InDelta(t, 225.0/2.20462, ToKg(225, true), 0.001)
}

func TestToKgNaN(t *testing.T) {
	assert.Equal(t, 0.0, ToKg(math.NaN(), false))
	assert.Equal(t, 0.0, ToKg(math.NaN(), true))
}

func TestWeightRoundTrip(t *testing.T) {
	// Display rounding loses at most half of the last shown digit, so a
	// canonical value survives an edit round trip within a few hundredths
	// of a kilogram.
	for _, kg := range []float64{20, 45.5, 60, 80, 102.5, 140} {
		metric := ToKg(ToDisplayWeight(kg, false), false)
		assert.InDelta(t, kg, metric, 0.05, "metric round trip of %v", kg)

		imperial := ToKg(ToDisplayWeight(kg, true), true)
		assert.InDelta(t, kg, imperial, 0.025, "imperial round trip of %v", kg)
	}
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "100 kg", FormatWeight(100, false))
	assert.Equal(t, "220.5 lbs", FormatWeight(100, true))
	assert.Equal(t, "82.5 kg", FormatWeight(82.5, false))
}
