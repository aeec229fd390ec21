package promptctx

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jonathan/company-analyst/internal/types"
)

// fingerprint computes a stable hash over the retained facts, the
// weights, and the applicant profile. Identical inputs always produce the
// same fingerprint, which feeds the cache key.
func fingerprint(facts []types.ContextFact, weights types.PriorityWeights, applicant *types.ApplicantProfile) string {
	h := sha256.New()
	for _, f := range facts {
		fmt.Fprintf(h, "%s|%s|%s\n", f.Tag, f.Source, f.Text)
	}
	fmt.Fprintf(h, "weights:%s\n", weights.Canonical())
	if !applicant.IsEmpty() {
		// JSON field order of a struct is declaration order, so this is stable.
		profileJSON, _ := json.Marshal(applicant)
		h.Write(profileJSON)
	}
	return hex.EncodeToString(h.Sum(nil))
}
