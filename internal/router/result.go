package router

import (
	"time"

	"skillrouter/internal/fusion"
)

// ReasonNoConfidentMatch is the reasoning string for the valid outcome of
// no tool clearing the confidence floor. Callers must treat it as data, not
// an error.
const ReasonNoConfidentMatch = "no confident match"

// RoutingResult is the routing decision handed to the agent runtime.
type RoutingResult struct {
	// RequestID correlates logs for one routing decision. A cache hit
	// returns the id of the original decision.
	RequestID string `json:"request_id"`

	// SelectedToolID is the winning tool, empty when nothing cleared the
	// confidence floor.
	SelectedToolID string `json:"selected_tool_id,omitempty"`

	// Confidence is the winner's calibrated final score, in [0.3,0.95].
	Confidence float64 `json:"confidence"`

	// Reasoning summarizes which signals drove the decision.
	Reasoning string `json:"reasoning"`

	// FromCache reports whether this decision was served from the routing
	// cache without recomputing scores.
	FromCache bool `json:"from_cache"`

	// Explain carries the full breakdowns for the top-N candidates.
	Explain []fusion.ScoreBreakdown `json:"explain,omitempty"`

	// Timestamp is the decision creation time.
	Timestamp time.Time `json:"timestamp"`
}

// Selected reports whether a tool cleared the confidence floor.
func (r *RoutingResult) Selected() bool {
	return r.SelectedToolID != ""
}
