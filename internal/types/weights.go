// Package types provides type definitions for structured data used throughout the company-analyst system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Evaluation axis names used for per-axis scores and priority weights.
const (
	AxisGrowth       = "growth"
	AxisStability    = "stability"
	AxisCompensation = "compensation"
	AxisWorkLife     = "worklife"
	AxisRoleFit      = "rolefit"
)

// WeightTotal is the required sum of all priority weights.
const WeightTotal = 100

// AxisNames lists all evaluation axes in canonical order.
func AxisNames() []string {
	return []string{AxisGrowth, AxisStability, AxisCompensation, AxisWorkLife, AxisRoleFit}
}

// PriorityWeights maps evaluation axes to integer weights summing to 100.
// A caller-supplied weighting shifts how the per-axis scores combine into
// the total score.
type PriorityWeights struct {
	Growth       int `json:"growth"`
	Stability    int `json:"stability"`
	Compensation int `json:"compensation"`
	WorkLife     int `json:"worklife"`
	RoleFit      int `json:"rolefit"`
}

// DefaultWeights returns the even 20/20/20/20/20 weighting used when the
// caller does not supply custom weights.
func DefaultWeights() PriorityWeights {
	return PriorityWeights{
		Growth:       20,
		Stability:    20,
		Compensation: 20,
		WorkLife:     20,
		RoleFit:      20,
	}
}

// Validate checks that all weights are non-negative and sum to exactly 100.
func (w PriorityWeights) Validate() error {
	for axis, v := range w.ToMap() {
		if v < 0 {
			return fmt.Errorf("weight for %s must be non-negative, got %d", axis, v)
		}
	}
	if sum := w.Sum(); sum != WeightTotal {
		return fmt.Errorf("weights must sum to %d, got %d", WeightTotal, sum)
	}
	return nil
}

// Sum returns the total of all axis weights.
func (w PriorityWeights) Sum() int {
	return w.Growth + w.Stability + w.Compensation + w.WorkLife + w.RoleFit
}

// ToMap returns the weights keyed by canonical axis name.
func (w PriorityWeights) ToMap() map[string]int {
	return map[string]int{
		AxisGrowth:       w.Growth,
		AxisStability:    w.Stability,
		AxisCompensation: w.Compensation,
		AxisWorkLife:     w.WorkLife,
		AxisRoleFit:      w.RoleFit,
	}
}

// WeightedTotal combines per-axis scores (0-5 each) into a single 0-5 total
// using these weights.
func (w PriorityWeights) WeightedTotal(scores map[string]float64) float64 {
	total := 0.0
	for axis, weight := range w.ToMap() {
		total += scores[axis] * float64(weight)
	}
	return total / float64(WeightTotal)
}

// Canonical returns a stable string form of the weights, suitable for
// inclusion in cache-key material. Axes are sorted by name so that equal
// weights always produce identical output.
func (w PriorityWeights) Canonical() string {
	m := w.ToMap()
	axes := make([]string, 0, len(m))
	for axis := range m {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	parts := make([]string, len(axes))
	for i, axis := range axes {
		parts[i] = fmt.Sprintf("%s=%d", axis, m[axis])
	}
	return strings.Join(parts, ",")
}

// ParseWeights parses a comma-separated "axis:value" list such as
// "growth:30,stability:20,compensation:25,worklife:10,rolefit:15".
// Unknown axes and weights that do not sum to 100 are rejected.
func ParseWeights(s string) (PriorityWeights, error) {
	var w PriorityWeights
	if strings.TrimSpace(s) == "" {
		return w, fmt.Errorf("weights string is empty")
	}

	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return w, fmt.Errorf("invalid weight entry %q (expected axis:value)", part)
		}
		value, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return w, fmt.Errorf("invalid weight value in %q: %w", part, err)
		}

		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case AxisGrowth:
			w.Growth = value
		case AxisStability:
			w.Stability = value
		case AxisCompensation:
			w.Compensation = value
		case AxisWorkLife:
			w.WorkLife = value
		case AxisRoleFit:
			w.RoleFit = value
		default:
			return w, fmt.Errorf("unknown axis %q", kv[0])
		}
	}

	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}
