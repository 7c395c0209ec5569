package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate_RangeAndMonotonicity(t *testing.T) {
	e := New(DefaultConfig(), nil)

	prev := -1.0
	for raw := -2.0; raw <= 3.0; raw += 0.05 {
		final := e.Calibrate(raw)
		assert.Greater(t, final, ConfidenceFloor, "raw=%v", raw)
		assert.Less(t, final, ConfidenceCeiling, "raw=%v", raw)
		assert.Greater(t, final, prev, "calibration must be strictly monotonic at raw=%v", raw)
		prev = final
	}
}

func TestFuse_WeightedSum(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg, nil)

	out := e.Fuse("commit my changes", []Candidate{{
		ToolID:        "git.commit",
		Domains:       []string{"git"},
		VectorScore:   0.8,
		KeywordScore:  1.0,
		MatchedPhrase: "save changes",
		FeedbackBoost: 0.1,
	}})
	require.Len(t, out, 1)

	b := out[0]
	assert.Equal(t, 0.25, b.PhraseBonus)
	assert.Equal(t, "save changes", b.MatchedPhrase)
	assert.Equal(t, 0.25, b.VerbBoost)
	assert.Equal(t, "commit", b.MatchedVerb)

	wantRaw := 0.5*0.8 + 0.5*1.0 + 0.25 + 0.25 + 0.1
	assert.InDelta(t, wantRaw, b.RawScore, 1e-9)
	assert.InDelta(t, e.Calibrate(wantRaw), b.FinalScore, 1e-9)
}

func TestFuse_ClampsInputs(t *testing.T) {
	e := New(DefaultConfig(), nil)

	out := e.Fuse("do the thing", []Candidate{{
		ToolID:        "a.b",
		VectorScore:   1.7,
		KeywordScore:  -0.2,
		FeedbackBoost: 0.9,
	}})
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].VectorScore)
	assert.Equal(t, 0.0, out[0].KeywordScore)
	assert.Equal(t, 0.3, out[0].FeedbackBoost)
}

func TestFuse_DropsBelowMinRawScore(t *testing.T) {
	e := New(DefaultConfig(), nil)

	out := e.Fuse("launch the rocket", []Candidate{
		{ToolID: "weak.signal", VectorScore: 0.01},
		{ToolID: "no.signal"},
	})
	assert.Empty(t, out, "candidates with essentially no signal must be dropped")
}

func TestFuse_DeterministicTieBreak(t *testing.T) {
	e := New(DefaultConfig(), nil)

	candidates := []Candidate{
		{ToolID: "b.tool", KeywordScore: 0.6},
		{ToolID: "a.tool", KeywordScore: 0.6},
	}
	for i := 0; i < 10; i++ {
		out := e.Fuse("some query", candidates)
		require.Len(t, out, 2)
		assert.Equal(t, "a.tool", out[0].ToolID, "equal scores must tie-break by id ascending")
	}
}

func TestFuse_PhraseBonusBreaksTies(t *testing.T) {
	e := New(DefaultConfig(), nil)

	// Signals offset so both candidates land on raw = 0.5: the generic tool
	// via pure keyword strength, the other via a weaker keyword plus the
	// exact-phrase bonus. The phrase match must rank first.
	out := e.Fuse("research url please", []Candidate{
		{ToolID: "a.generic", KeywordScore: 1.0},
		{ToolID: "z.phrase", KeywordScore: 0.5, MatchedPhrase: "research url"},
	})
	require.Len(t, out, 2)
	require.Equal(t, out[0].FinalScore, out[1].FinalScore)
	assert.Equal(t, "z.phrase", out[0].ToolID,
		"at equal final score the exact-phrase match must rank first")
}

func TestFuse_RankingRespectsScoreOrder(t *testing.T) {
	e := New(DefaultConfig(), nil)

	out := e.Fuse("fetch the page", []Candidate{
		{ToolID: "strong", KeywordScore: 0.9},
		{ToolID: "boosted", KeywordScore: 0.5, FeedbackBoost: 0.3},
		{ToolID: "weak", KeywordScore: 0.4},
	})
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].FinalScore, out[i].FinalScore)
		assert.GreaterOrEqual(t, out[i-1].RawScore, out[i].RawScore,
			"final ordering must follow raw score order exactly")
	}
}

func TestFuse_FeedbackBoostCanFlipRank(t *testing.T) {
	e := New(DefaultConfig(), nil)

	without := e.Fuse("fetch the page", []Candidate{
		{ToolID: "a.first", KeywordScore: 0.7},
		{ToolID: "b.second", KeywordScore: 0.6},
	})
	require.Equal(t, "a.first", without[0].ToolID)

	with := e.Fuse("fetch the page", []Candidate{
		{ToolID: "a.first", KeywordScore: 0.7},
		{ToolID: "b.second", KeywordScore: 0.6, FeedbackBoost: 0.3},
	})
	require.Equal(t, "b.second", with[0].ToolID,
		"a boost that makes the score larger must raise the rank")
}

func TestFuse_RerankReordersOnlyTopN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RerankTopN = 2
	e := New(cfg, nil)

	out := e.Fuse("summarize the findings", []Candidate{
		{ToolID: "a.close", KeywordScore: 0.62},
		{ToolID: "b.intent", KeywordScore: 0.60, Intents: []string{"summarize research findings"}},
		{ToolID: "c.rest", KeywordScore: 0.30},
	})
	require.Len(t, out, 3)

	// The intent-aligned candidate overtakes within the top 2.
	assert.Equal(t, "b.intent", out[0].ToolID)
	assert.Equal(t, "a.close", out[1].ToolID)
	// Eligibility and the tail are untouched.
	assert.Equal(t, "c.rest", out[2].ToolID)
}

func TestFuse_SigmoidNeverReportsExtremes(t *testing.T) {
	e := New(DefaultConfig(), nil)

	out := e.Fuse("commit", []Candidate{{
		ToolID:        "git.commit",
		Domains:       []string{"git"},
		VectorScore:   1.0,
		KeywordScore:  1.0,
		MatchedPhrase: "save all changes",
		FeedbackBoost: 0.3,
	}})
	require.Len(t, out, 1)
	assert.Less(t, out[0].FinalScore, 1.0)
	assert.Less(t, out[0].FinalScore, ConfidenceCeiling)
	assert.False(t, math.IsNaN(out[0].FinalScore))
}
