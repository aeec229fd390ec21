package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictForScore_Bands(t *testing.T) {
	cases := []struct {
		total float64
		want  Verdict
	}{
		{5.0, VerdictStrongGo},
		{4.5, VerdictStrongGo},
		{4.49, VerdictGo},
		{3.5, VerdictGo},
		{3.49, VerdictConditionalGo},
		{2.5, VerdictConditionalGo},
		{2.49, VerdictNoGo},
		{1.5, VerdictNoGo},
		{1.49, VerdictStrongNoGo},
		{0, VerdictStrongNoGo},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, VerdictForScore(tc.total), "total %.2f", tc.total)
	}
}

func TestVerdictForScore_Monotonic(t *testing.T) {
	prev := VerdictForScore(0).Rank()
	for total := 0.0; total <= 5.0; total += 0.1 {
		rank := VerdictForScore(total).Rank()
		assert.GreaterOrEqual(t, rank, prev, "rank regressed at %.1f", total)
		prev = rank
	}
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("ConditionalGo")
	require.NoError(t, err)
	assert.Equal(t, VerdictConditionalGo, v)

	_, err = ParseVerdict("Definitely")
	assert.Error(t, err)
}

func TestVerdictRank_Ordering(t *testing.T) {
	assert.Greater(t, VerdictStrongGo.Rank(), VerdictGo.Rank())
	assert.Greater(t, VerdictGo.Rank(), VerdictConditionalGo.Rank())
	assert.Greater(t, VerdictConditionalGo.Rank(), VerdictNoGo.Rank())
	assert.Greater(t, VerdictNoGo.Rank(), VerdictStrongNoGo.Rank())
	assert.Equal(t, 0, Verdict("bogus").Rank())
}
