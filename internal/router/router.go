// Package router orchestrates a routing call: cache lookup, parallel
// candidate retrieval from the lexical and vector indexes, score fusion
// with feedback, calibration, and one bounded adaptive retry.
//
// A routing call never fails the agent session: embedding trouble degrades
// to keyword-only scoring and the worst outcome is a no-confident-match
// decision.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"skillrouter/internal/catalog"
	"skillrouter/internal/embedding"
	"skillrouter/internal/feedback"
	"skillrouter/internal/fusion"
	"skillrouter/internal/lexical"
	"skillrouter/internal/routecache"
	"skillrouter/internal/vector"
)

// Config holds the router's orchestration settings.
type Config struct {
	// CandidatesPerIndex is K: how many candidates each index contributes
	// before the union is fused. Doubled once on adaptive retry.
	CandidatesPerIndex int `yaml:"candidates_per_index" json:"candidates_per_index"`

	// RetryBandCeiling: a top final score in [floor, ceiling) triggers one
	// widened-K recompute, guarding against under-retrieval.
	RetryBandCeiling float64 `yaml:"retry_band_ceiling" json:"retry_band_ceiling"`

	// ExplainTopN bounds the breakdowns attached to each result.
	ExplainTopN int `yaml:"explain_top_n" json:"explain_top_n"`

	// EmbedTimeout bounds the query embedding call; on expiry the call
	// degrades to keyword-only scoring.
	EmbedTimeout time.Duration `yaml:"embed_timeout" json:"embed_timeout"`

	// Cache bounds.
	CacheMaxEntries int           `yaml:"cache_max_entries" json:"cache_max_entries"`
	CacheTTL        time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// DefaultConfig returns the tuned orchestration defaults.
func DefaultConfig() Config {
	return Config{
		CandidatesPerIndex: 20,
		RetryBandCeiling:   0.4,
		ExplainTopN:        5,
		EmbedTimeout:       2 * time.Second,
		CacheMaxEntries:    routecache.DefaultMaxEntries,
		CacheTTL:           routecache.DefaultTTL,
	}
}

// Router routes natural-language queries to skill commands.
type Router struct {
	catalog  *catalog.Catalog
	engine   *fusion.Engine
	feedback *feedback.Store
	embedder embedding.Provider
	cache    *routecache.Cache[RoutingResult]
	cfg      Config
	logger   *zap.Logger
}

// New wires a router. embedder may be nil (keyword-only); feedback must not
// be nil; logger may be nil.
func New(cat *catalog.Catalog, engine *fusion.Engine, fb *feedback.Store, embedder embedding.Provider, cfg Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.CandidatesPerIndex <= 0 {
		cfg.CandidatesPerIndex = def.CandidatesPerIndex
	}
	if cfg.RetryBandCeiling <= 0 {
		cfg.RetryBandCeiling = def.RetryBandCeiling
	}
	if cfg.ExplainTopN <= 0 {
		cfg.ExplainTopN = def.ExplainTopN
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = def.EmbedTimeout
	}

	return &Router{
		catalog:  cat,
		engine:   engine,
		feedback: fb,
		embedder: embedder,
		cache:    routecache.New[RoutingResult](cfg.CacheMaxEntries, cfg.CacheTTL),
		cfg:      cfg,
		logger:   logger,
	}
}

// Route resolves a query to a routing decision. A cache hit within TTL is
// returned as-is with FromCache set, scores untouched. On a miss the result
// is computed, cached, and returned with FromCache false.
func (r *Router) Route(ctx context.Context, query string) (RoutingResult, error) {
	norm := catalog.NormalizeQuery(query)

	if res, ok := r.cache.Get(norm); ok {
		res.FromCache = true
		r.logger.Debug("cache hit",
			zap.String("query", norm),
			zap.String("selected", res.SelectedToolID))
		return res, nil
	}

	res, err := r.compute(ctx, norm, r.cfg.CandidatesPerIndex)
	if err != nil {
		return RoutingResult{}, err
	}

	// Adaptive retry: a winner barely above the floor often means the
	// right tool never made it into the candidate set. Widen K once.
	if res.Selected() && res.Confidence < r.cfg.RetryBandCeiling {
		r.logger.Debug("confidence in retry band, widening candidate set",
			zap.String("query", norm),
			zap.Float64("confidence", res.Confidence))
		res, err = r.compute(ctx, norm, 2*r.cfg.CandidatesPerIndex)
		if err != nil {
			return RoutingResult{}, err
		}
	}

	r.cache.Put(norm, res)
	r.logger.Info("routed query",
		zap.String("query", norm),
		zap.String("selected", res.SelectedToolID),
		zap.Float64("confidence", res.Confidence))
	return res, nil
}

// Explain scores a query read-only: full breakdowns for the top-N
// candidates, bypassing the cache and leaving it untouched.
func (r *Router) Explain(ctx context.Context, query string, topN int) ([]fusion.ScoreBreakdown, error) {
	norm := catalog.NormalizeQuery(query)
	ranked, err := r.rank(ctx, norm, r.cfg.CandidatesPerIndex)
	if err != nil {
		return nil, err
	}
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// RecordFeedback forwards an observed execution outcome to the feedback
// store and returns the new stored score.
func (r *Router) RecordFeedback(query, toolID string, success bool) (float64, error) {
	score, err := r.feedback.RecordFeedback(query, toolID, success)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("recorded feedback",
		zap.String("query", catalog.NormalizeQuery(query)),
		zap.String("tool", toolID),
		zap.Bool("success", success),
		zap.Float64("score", score))
	return score, nil
}

// compute runs one full scoring pass and assembles the decision.
func (r *Router) compute(ctx context.Context, norm string, k int) (RoutingResult, error) {
	ranked, err := r.rank(ctx, norm, k)
	if err != nil {
		return RoutingResult{}, err
	}

	res := RoutingResult{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}

	if len(ranked) == 0 {
		res.Reasoning = ReasonNoConfidentMatch
		return res, nil
	}

	top := ranked[0]
	res.SelectedToolID = top.ToolID
	res.Confidence = top.FinalScore
	res.Reasoning = describe(top)
	if len(ranked) > r.cfg.ExplainTopN {
		ranked = ranked[:r.cfg.ExplainTopN]
	}
	res.Explain = ranked
	return res, nil
}

// rank gathers candidates from both indexes in parallel, joins in feedback,
// and fuses. An embedding failure or timeout degrades to keyword-only
// scoring; it is logged, never returned.
func (r *Router) rank(ctx context.Context, norm string, k int) ([]fusion.ScoreBreakdown, error) {
	lex, vec := r.catalog.Indexes()

	var (
		lexHits []lexical.Hit
		vecHits []vector.Hit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits = lex.TopK(norm, k)
		return nil
	})
	g.Go(func() error {
		if r.embedder == nil || vec.Len() == 0 {
			return nil
		}
		queryVec, err := embedding.EmbedWithTimeout(gctx, r.embedder, norm, r.cfg.EmbedTimeout)
		if err != nil {
			r.logger.Warn("query embedding failed, degrading to keyword-only scoring",
				zap.String("query", norm),
				zap.Error(err))
			return nil
		}
		hits, err := vec.TopK(queryVec, k)
		if err != nil {
			r.logger.Warn("vector search failed, degrading to keyword-only scoring",
				zap.Error(err))
			return nil
		}
		vecHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Union the candidate sets.
	keywordScores := make(map[string]float64, len(lexHits))
	for _, h := range lexHits {
		keywordScores[h.ID] = h.Score
	}
	vectorScores := make(map[string]float64, len(vecHits))
	for _, h := range vecHits {
		vectorScores[h.ID] = h.Score
	}

	seen := make(map[string]bool, len(keywordScores)+len(vectorScores))
	candidates := make([]fusion.Candidate, 0, len(keywordScores)+len(vectorScores))
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true

		rec, ok := r.catalog.Get(id)
		if !ok {
			// Index lagging a concurrent removal; skip rather than crash.
			return
		}

		c := fusion.Candidate{
			ToolID:        id,
			Domains:       rec.DomainTags(),
			Intents:       rec.Intents,
			VectorScore:   vectorScores[id],
			KeywordScore:  keywordScores[id],
			FeedbackBoost: r.feedback.Boost(norm, id),
		}
		if phrase, ok := lex.ExactPhrase(id, norm); ok {
			c.MatchedPhrase = phrase
		}
		candidates = append(candidates, c)
	}
	for _, h := range lexHits {
		add(h.ID)
	}
	for _, h := range vecHits {
		add(h.ID)
	}

	return r.engine.Fuse(norm, candidates), nil
}

// describe renders the winning breakdown as a human-readable summary.
func describe(b fusion.ScoreBreakdown) string {
	parts := make([]string, 0, 4)
	if b.VectorScore > 0 {
		parts = append(parts, fmt.Sprintf("semantic similarity %.2f", b.VectorScore))
	}
	if b.KeywordScore > 0 {
		parts = append(parts, fmt.Sprintf("keyword match %.2f", b.KeywordScore))
	}
	if b.MatchedPhrase != "" {
		parts = append(parts, fmt.Sprintf("exact phrase %q +%.2f", b.MatchedPhrase, b.PhraseBonus))
	}
	if b.MatchedVerb != "" {
		parts = append(parts, fmt.Sprintf("action verb %q +%.2f", b.MatchedVerb, b.VerbBoost))
	}
	if b.FeedbackBoost != 0 {
		parts = append(parts, fmt.Sprintf("feedback %+.2f", b.FeedbackBoost))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("selected %s with confidence %.2f", b.ToolID, b.FinalScore)
	}
	return fmt.Sprintf("selected %s (%s)", b.ToolID, strings.Join(parts, ", "))
}
