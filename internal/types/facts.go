package types

// FactTag classifies a context item by evidentiary provenance. The quality
// gate uses these tags to verify that model judgments trace back to
// observed facts.
type FactTag string

// Provenance categories for context facts.
const (
	// TagFact marks content directly present in a stored evidence record.
	TagFact FactTag = "fact"
	// TagInterpretation marks content derived from facts during context
	// building (aggregates, trends, comparisons).
	TagInterpretation FactTag = "interpretation"
	// TagJudgment marks model-originated opinion. Context facts never carry
	// this tag; it exists for claims parsed out of generated reports.
	TagJudgment FactTag = "judgment"
)

// ContextFact is a single tagged item in the evaluation context. ID is a
// short stable handle ("F1", "F2", ...) the model is instructed to cite
// when making judgments.
type ContextFact struct {
	ID     string  `json:"id"`
	Tag    FactTag `json:"tag"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
}

// Judgment is a model-originated claim parsed from a generated report,
// together with the context fact IDs it cites as support.
type Judgment struct {
	Claim string   `json:"claim"`
	Cites []string `json:"cites"`
}
