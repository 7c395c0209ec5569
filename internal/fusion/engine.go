package fusion

import (
	"math"
	"sort"

	"skillrouter/internal/lexical"
)

// Confidence bounds. Calibration maps raw scores into (floor, ceiling); a
// final score of exactly 0 or 1 is never reported.
const (
	ConfidenceFloor   = 0.3
	ConfidenceCeiling = 0.95
)

// Weights are the fusion weights for the two retrieval signals. The boosts
// (phrase, verb, feedback) are additive and unweighted.
type Weights struct {
	Vector  float64 `yaml:"vector" json:"vector"`
	Keyword float64 `yaml:"keyword" json:"keyword"`
}

// Calibration parameterizes the sigmoid that maps raw scores into
// [ConfidenceFloor, ConfidenceCeiling]. Any steepness > 0 preserves ranking
// order; only the output range and monotonicity are contractual.
type Calibration struct {
	Steepness float64 `yaml:"steepness" json:"steepness"`
	Midpoint  float64 `yaml:"midpoint" json:"midpoint"`
}

// Config holds the tunable fusion parameters.
type Config struct {
	Weights     Weights     `yaml:"weights" json:"weights"`
	Calibration Calibration `yaml:"calibration" json:"calibration"`

	// PhraseBonus is added when the query contains one of the tool's
	// multi-word routing keywords verbatim. Capped at 0.3.
	PhraseBonus float64 `yaml:"phrase_bonus" json:"phrase_bonus"`

	// VerbBoost is the flat boost for a verb-domain match. Capped at 0.3.
	VerbBoost float64 `yaml:"verb_boost" json:"verb_boost"`

	// MinRawScore drops candidates with essentially no signal before
	// calibration. Without it the sigmoid floor would report ~0.3
	// confidence for tools that matched nothing.
	MinRawScore float64 `yaml:"min_raw_score" json:"min_raw_score"`

	// RerankTopN enables the optional intents rerank pass over the top N
	// candidates. 0 disables it (the default: the rerank trades strict
	// score-order ranking for intent alignment).
	RerankTopN int `yaml:"rerank_top_n" json:"rerank_top_n"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Weights:     Weights{Vector: 0.5, Keyword: 0.5},
		Calibration: Calibration{Steepness: 6.0, Midpoint: 0.5},
		PhraseBonus: 0.25,
		VerbBoost:   0.25,
		MinRawScore: 0.05,
	}
}

// Engine fuses retrieval signals into a ranked list of score breakdowns.
// Immutable after New; safe for concurrent use.
type Engine struct {
	cfg   Config
	verbs *VerbTable
}

// New creates a fusion engine. verbOverrides extends the built-in verb
// table (see NewVerbTable).
func New(cfg Config, verbOverrides map[string][]string) *Engine {
	if cfg.PhraseBonus > VerbBoostCap {
		cfg.PhraseBonus = VerbBoostCap
	}
	if cfg.PhraseBonus < 0 {
		cfg.PhraseBonus = 0
	}
	return &Engine{
		cfg:   cfg,
		verbs: NewVerbTable(verbOverrides, cfg.VerbBoost),
	}
}

// Fuse scores the candidates against the normalized query and returns the
// breakdowns ranked best-first. Candidates below MinRawScore are dropped;
// an empty result means no confident match.
//
// Ordering is deterministic: final score descending, then phrase bonus
// descending, then tool id ascending.
func (e *Engine) Fuse(normalizedQuery string, candidates []Candidate) []ScoreBreakdown {
	queryTerms := lexical.Tokenize(normalizedQuery)

	out := make([]ScoreBreakdown, 0, len(candidates))
	for _, c := range candidates {
		b := ScoreBreakdown{
			ToolID:        c.ToolID,
			VectorScore:   clamp(c.VectorScore, 0, 1),
			KeywordScore:  clamp(c.KeywordScore, 0, 1),
			FeedbackBoost: clamp(c.FeedbackBoost, -0.3, 0.3),
		}
		if c.MatchedPhrase != "" {
			b.PhraseBonus = e.cfg.PhraseBonus
			b.MatchedPhrase = c.MatchedPhrase
		}
		b.VerbBoost, b.MatchedVerb = e.verbs.Boost(queryTerms, c.Domains)

		b.RawScore = e.cfg.Weights.Vector*b.VectorScore +
			e.cfg.Weights.Keyword*b.KeywordScore +
			b.PhraseBonus + b.VerbBoost + b.FeedbackBoost

		if b.RawScore < e.cfg.MinRawScore {
			continue
		}
		b.FinalScore = e.Calibrate(b.RawScore)
		out = append(out, b)
	}

	sortBreakdowns(out)

	if e.cfg.RerankTopN > 1 {
		e.rerank(out, candidates, queryTerms)
	}
	return out
}

// Calibrate maps a raw score into (ConfidenceFloor, ConfidenceCeiling) via
// a stretched sigmoid. Strictly monotonic in the raw score.
func (e *Engine) Calibrate(raw float64) float64 {
	s := e.cfg.Calibration.Steepness
	m := e.cfg.Calibration.Midpoint
	sigmoid := 1.0 / (1.0 + math.Exp(-s*(raw-m)))
	return ConfidenceFloor + (ConfidenceCeiling-ConfidenceFloor)*sigmoid
}

// rerank reorders the top N candidates by adding an intents-similarity
// signal to the raw score. It never changes which tools are eligible, only
// their relative order among the top N.
func (e *Engine) rerank(ranked []ScoreBreakdown, candidates []Candidate, queryTerms []string) {
	n := e.cfg.RerankTopN
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 2 {
		return
	}

	intents := make(map[string][]string, len(candidates))
	for _, c := range candidates {
		intents[c.ToolID] = c.Intents
	}

	key := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		b := ranked[i]
		key[b.ToolID] = b.RawScore + 0.1*intentOverlap(queryTerms, intents[b.ToolID])
	}

	top := ranked[:n]
	sort.SliceStable(top, func(i, j int) bool {
		if key[top[i].ToolID] != key[top[j].ToolID] {
			return key[top[i].ToolID] > key[top[j].ToolID]
		}
		return top[i].ToolID < top[j].ToolID
	})
}

// intentOverlap returns the fraction of query terms that appear in the
// tool's intent phrases, in [0,1].
func intentOverlap(queryTerms []string, intents []string) float64 {
	if len(queryTerms) == 0 || len(intents) == 0 {
		return 0
	}
	intentTerms := make(map[string]bool)
	for _, phrase := range intents {
		for _, t := range lexical.Tokenize(phrase) {
			intentTerms[t] = true
		}
	}
	matched := 0
	for _, t := range queryTerms {
		if intentTerms[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

// sortBreakdowns applies the documented deterministic ordering.
func sortBreakdowns(bs []ScoreBreakdown) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].FinalScore != bs[j].FinalScore {
			return bs[i].FinalScore > bs[j].FinalScore
		}
		if bs[i].PhraseBonus != bs[j].PhraseBonus {
			return bs[i].PhraseBonus > bs[j].PhraseBonus
		}
		return bs[i].ToolID < bs[j].ToolID
	})
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
