package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopulationStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"spread", []float64{10, 20, 30}, 8.16},
		{"identical", []float64{42, 42, 42, 42}, 0},
		{"single", []float64{7}, 0},
		{"empty", nil, 0},
		{"repeating decimal", []float64{0.1, 0.1, 0.1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PopulationStdDev(tt.values)
			assert.False(t, math.IsNaN(got))
			assert.GreaterOrEqual(t, got, 0.0)
			assert.InDelta(t, tt.expected, Round2(got), 0.001)
		})
	}
}

func TestClampedSqrt(t *testing.T) {
	assert.Equal(t, 3.0, ClampedSqrt(9))
	assert.Equal(t, 0.0, ClampedSqrt(-1e-12))
	assert.Equal(t, 0.0, ClampedSqrt(math.NaN()))
	assert.Equal(t, 0.0, ClampedSqrt(0))
}

func TestSafeRatio(t *testing.T) {
	v, ok := SafeRatio(300, 4)
	assert.True(t, ok)
	assert.Equal(t, 75.0, v)

	_, ok = SafeRatio(300, 0)
	assert.False(t, ok)
}

func TestMean(t *testing.T) {
	v, ok := Mean([]float64{1, 2, 3, 4})
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = Mean(nil)
	assert.False(t, ok)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 8.16, Round2(8.164965809))
	assert.Equal(t, 1.01, Round2(1.005000001))
	assert.Equal(t, -2.5, Round2(-2.499999))
}
