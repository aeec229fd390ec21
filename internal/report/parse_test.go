package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-analyst/internal/types"
)

func TestParseResponse_Valid(t *testing.T) {
	payload, err := parseResponse(validResponse())
	require.NoError(t, err)
	assert.Equal(t, "Go", payload.Verdict)
	assert.Len(t, payload.Scores, 5)
}

func TestParseResponse_MissingSection(t *testing.T) {
	_, err := parseResponse(`{
		"verdict": "Go", "total_score": 3,
		"scores": {"growth": 3, "stability": 3, "compensation": 3, "worklife": 3, "rolefit": 3},
		"key_attractions": [], "key_risks": [], "verification_items": [],
		"sections": {"executive_summary": "x"},
		"judgments": []
	}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseResponse_ScoreOutOfRange(t *testing.T) {
	raw := validResponse()
	_, err := parseResponse(raw[:len(raw)-1]) // truncate closing brace
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseResponse_UnknownVerdict(t *testing.T) {
	_, err := parseResponse(`{"verdict": "Shrug"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain JSON passes through", `{"verdict": "Go"}`, `{"verdict": "Go"}`},
		{"json fence", "```json\n{\"verdict\": \"Go\"}\n```", `{"verdict": "Go"}`},
		{"bare fence", "```\n{\"verdict\": \"Go\"}\n```", `{"verdict": "Go"}`},
		{"fence with language tag", "```javascript\n{\"verdict\": \"Go\"}\n```", `{"verdict": "Go"}`},
		{"fence with brace on first line", "```{\"verdict\": \"Go\"}\n```", `{"verdict": "Go"}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripFence(tt.input))
		})
	}
}

func TestOrderedSections_ExtrasAfterRequired(t *testing.T) {
	sections := map[string]string{
		"bonus_notes":       "extra",
		"executive_summary": "a",
		"interview_guide":   "b",
	}
	out := orderedSections(sections)
	require.Len(t, out, 3)
	assert.Equal(t, types.SectionExecutiveSummary, out[0].Name)
	assert.Equal(t, types.SectionInterviewGuide, out[1].Name)
	assert.Equal(t, "bonus_notes", out[2].Name)
}
