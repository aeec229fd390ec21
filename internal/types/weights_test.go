package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights_Valid(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.Equal(t, WeightTotal, w.Sum())
}

func TestValidate_BadSum(t *testing.T) {
	w := PriorityWeights{Growth: 50, Stability: 30}
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 100")
}

func TestValidate_Negative(t *testing.T) {
	w := PriorityWeights{Growth: 120, Stability: -20}
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestWeightedTotal(t *testing.T) {
	w := PriorityWeights{Growth: 40, Stability: 20, Compensation: 20, WorkLife: 10, RoleFit: 10}
	scores := map[string]float64{
		AxisGrowth:       5,
		AxisStability:    3,
		AxisCompensation: 4,
		AxisWorkLife:     2,
		AxisRoleFit:      1,
	}

	// 5*40 + 3*20 + 4*20 + 2*10 + 1*10 = 370 -> 3.7
	assert.InDelta(t, 3.7, w.WeightedTotal(scores), 1e-9)
}

func TestWeightedTotal_EvenWeightsIsMean(t *testing.T) {
	scores := map[string]float64{
		AxisGrowth:       4,
		AxisStability:    4,
		AxisCompensation: 4,
		AxisWorkLife:     4,
		AxisRoleFit:      4,
	}
	assert.InDelta(t, 4.0, DefaultWeights().WeightedTotal(scores), 1e-9)
}

func TestCanonical_StableAcrossEqualValues(t *testing.T) {
	a := PriorityWeights{Growth: 30, Stability: 20, Compensation: 25, WorkLife: 10, RoleFit: 15}
	b := PriorityWeights{RoleFit: 15, WorkLife: 10, Compensation: 25, Stability: 20, Growth: 30}

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, "compensation=25,growth=30,rolefit=15,stability=20,worklife=10", a.Canonical())
}

func TestParseWeights(t *testing.T) {
	w, err := ParseWeights("growth:30,stability:20,compensation:25,worklife:10,rolefit:15")
	require.NoError(t, err)
	assert.Equal(t, 30, w.Growth)
	assert.Equal(t, 15, w.RoleFit)
}

func TestParseWeights_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing colon", "growth30"},
		{"unknown axis", "vibes:100"},
		{"non-numeric", "growth:lots"},
		{"bad sum", "growth:50,stability:20"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWeights(tc.input)
			assert.Error(t, err)
		})
	}
}
