package types

import "fmt"

// Verdict is the discrete apply/no-apply recommendation derived from the
// total score.
type Verdict string

// Verdict bands, ordered from best to worst.
const (
	VerdictStrongGo      Verdict = "StrongGo"
	VerdictGo            Verdict = "Go"
	VerdictConditionalGo Verdict = "ConditionalGo"
	VerdictNoGo          Verdict = "NoGo"
	VerdictStrongNoGo    Verdict = "StrongNoGo"
)

// Score bounds for per-axis and total scores.
const (
	ScoreMin = 0.0
	ScoreMax = 5.0
)

// VerdictForScore maps a total score to its verdict band. The mapping is
// monotonic: a higher score never yields a worse band.
func VerdictForScore(total float64) Verdict {
	switch {
	case total >= 4.5:
		return VerdictStrongGo
	case total >= 3.5:
		return VerdictGo
	case total >= 2.5:
		return VerdictConditionalGo
	case total >= 1.5:
		return VerdictNoGo
	default:
		return VerdictStrongNoGo
	}
}

// ParseVerdict converts a string into a known Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictStrongGo, VerdictGo, VerdictConditionalGo, VerdictNoGo, VerdictStrongNoGo:
		return Verdict(s), nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Rank returns the ordinal position of the verdict band (higher is better).
// Unknown verdicts rank below StrongNoGo.
func (v Verdict) Rank() int {
	switch v {
	case VerdictStrongGo:
		return 5
	case VerdictGo:
		return 4
	case VerdictConditionalGo:
		return 3
	case VerdictNoGo:
		return 2
	case VerdictStrongNoGo:
		return 1
	default:
		return 0
	}
}
