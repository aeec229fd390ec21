package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/company-analyst/internal/schemas"
	"github.com/jonathan/company-analyst/internal/types"
)

//go:embed response_schema.json
var responseSchema string

// ErrMalformedResponse is returned when provider output cannot be parsed
// into a structurally valid report. The generator treats it as retryable
// up to its parse-retry budget.
var ErrMalformedResponse = errors.New("malformed provider response")

// responsePayload mirrors the JSON object the provider is instructed to
// return. It is an intermediate form; the generator converts it into a
// full types.Report.
type responsePayload struct {
	Verdict           string             `json:"verdict"`
	TotalScore        float64            `json:"total_score"`
	Scores            map[string]float64 `json:"scores"`
	KeyAttractions    []string           `json:"key_attractions"`
	KeyRisks          []string           `json:"key_risks"`
	VerificationItems []string           `json:"verification_items"`
	Sections          map[string]string  `json:"sections"`
	Judgments         []types.Judgment   `json:"judgments"`
}

// stripFence unwraps a markdown code fence when the provider added one
// despite the prompt's instructions.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
		// A short first line without spaces or braces is a language tag.
		if nl := strings.Index(text, "\n"); nl >= 0 {
			tag := text[:nl]
			if len(tag) < 20 && !strings.ContainsAny(tag, " {") {
				text = text[nl+1:]
			}
		}
	default:
		return text
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// parseResponse strips markdown fencing, validates the document against
// the embedded response schema, and unmarshals it.
func parseResponse(raw string) (*responsePayload, error) {
	cleaned := stripFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	if err := schemas.ValidateJSONString(responseSchema, cleaned); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if _, err := types.ParseVerdict(payload.Verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &payload, nil
}

// orderedSections converts the sections map into the canonical slice form,
// required sections first in render order, then any extras the model added.
func orderedSections(sections map[string]string) []types.ReportSection {
	out := make([]types.ReportSection, 0, len(sections))
	seen := make(map[string]bool, len(sections))
	for _, name := range types.RequiredSections() {
		if body, ok := sections[name]; ok {
			out = append(out, types.ReportSection{Name: name, Body: body})
			seen[name] = true
		}
	}
	extras := make([]string, 0)
	for name := range sections {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		out = append(out, types.ReportSection{Name: name, Body: sections[name]})
	}
	return out
}
