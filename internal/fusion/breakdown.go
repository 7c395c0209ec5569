// Package fusion combines the per-index retrieval signals into one ranked,
// confidence-calibrated candidate list. The engine is side-effect-free:
// weights, calibration parameters, and the verb table are fixed at
// construction.
package fusion

// ScoreBreakdown is the per (query, tool) explain record. Field names and
// value ranges are schema-stable: downstream tooling asserts on them.
type ScoreBreakdown struct {
	// ToolID identifies the candidate.
	ToolID string `json:"tool_id"`

	// VectorScore is cosine similarity clamped to [0,1]; 0 when the tool
	// has no embedding.
	VectorScore float64 `json:"vector_score"`

	// KeywordScore is the corpus-normalized BM25 score in [0,1].
	KeywordScore float64 `json:"keyword_score"`

	// PhraseBonus in [0,0.3] rewards an exact multi-word routing-keyword
	// match; MatchedPhrase names the phrase that earned it.
	PhraseBonus   float64 `json:"phrase_bonus"`
	MatchedPhrase string  `json:"matched_phrase,omitempty"`

	// VerbBoost in [0,0.3] applies when the query contains an action verb
	// affiliated with one of the tool's domains.
	VerbBoost   float64 `json:"verb_boost"`
	MatchedVerb string  `json:"matched_verb,omitempty"`

	// FeedbackBoost in [-0.3,0.3] comes from the feedback store.
	FeedbackBoost float64 `json:"feedback_boost"`

	// RawScore is the weighted sum of the signals before calibration.
	RawScore float64 `json:"raw_score"`

	// FinalScore is RawScore after sigmoid calibration into [0.3,0.95].
	// Calibration is monotonic: it never reorders candidates.
	FinalScore float64 `json:"final_score"`
}

// Candidate is one fusion input: the retrieval signals gathered for a single
// tool, before weighting and calibration.
type Candidate struct {
	ToolID        string
	Domains       []string
	Intents       []string
	VectorScore   float64
	KeywordScore  float64
	MatchedPhrase string
	FeedbackBoost float64
}
