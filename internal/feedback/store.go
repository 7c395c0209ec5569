// Package feedback implements the self-reinforcing learning table: bounded,
// decaying score adjustments keyed by (normalized query, tool id). The table
// is the sole durable state of the router.
//
// The store is an explicit injectable object, not a package singleton, so
// tests construct isolated instances.
package feedback

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"skillrouter/internal/catalog"
)

// Score bounds and defaults.
const (
	DefaultStep          = 0.1
	DefaultMinScore      = -0.3
	DefaultMaxScore      = 0.3
	DefaultTimeDecayRate = 0.99
)

// Config holds feedback store settings.
type Config struct {
	// Path locates the durable state file. Empty means in-memory only.
	Path string `yaml:"path" json:"path"`

	// Backend selects the persistence format: "json" (default, whole table
	// rewritten atomically on every write) or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Step is the per-feedback-event adjustment.
	Step float64 `yaml:"step" json:"step"`

	// MinScore/MaxScore clamp the stored score.
	MinScore float64 `yaml:"min_score" json:"min_score"`
	MaxScore float64 `yaml:"max_score" json:"max_score"`

	// TimeDecayRate multiplies the stored score on every read, so stale
	// feedback fades without a background timer.
	TimeDecayRate float64 `yaml:"time_decay_rate" json:"time_decay_rate"`
}

// DefaultConfig returns the standard bounds with the given state path.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		Backend:       "json",
		Step:          DefaultStep,
		MinScore:      DefaultMinScore,
		MaxScore:      DefaultMaxScore,
		TimeDecayRate: DefaultTimeDecayRate,
	}
}

// key identifies one feedback entry.
type key struct {
	Query  string
	ToolID string
}

// Entry is one persisted feedback adjustment.
type Entry struct {
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// persister is the durable backend. load tolerance is the caller's job:
// a load error resets the table, it never fails routing.
type persister interface {
	load() (map[key]Entry, error)
	store(all map[key]Entry, changed key, e Entry) error
	close() error
}

// Store is the feedback table. Writes are serialized by the mutex so clamp
// arithmetic never loses updates; reads take the same lock because Boost
// mutates the stored score (per-read decay).
type Store struct {
	mu      sync.Mutex
	entries map[key]Entry
	persist persister
	cfg     Config
	logger  *zap.Logger
}

// Open creates a store and loads prior state. A missing or corrupt state
// file starts an empty table with a warning; it never returns an error for
// corruption.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Step == 0 {
		cfg.Step = DefaultStep
	}
	if cfg.MinScore == 0 && cfg.MaxScore == 0 {
		cfg.MinScore, cfg.MaxScore = DefaultMinScore, DefaultMaxScore
	}
	if cfg.TimeDecayRate == 0 {
		cfg.TimeDecayRate = DefaultTimeDecayRate
	}

	s := &Store{
		entries: make(map[key]Entry),
		cfg:     cfg,
		logger:  logger,
	}

	if cfg.Path != "" {
		var err error
		switch cfg.Backend {
		case "", "json":
			s.persist = newJSONPersister(cfg.Path)
		case "sqlite":
			s.persist, err = newSQLitePersister(cfg.Path)
			if err != nil {
				return nil, err
			}
		default:
			s.persist = newJSONPersister(cfg.Path)
			logger.Warn("unknown feedback backend, using json", zap.String("backend", cfg.Backend))
		}

		loaded, err := s.persist.load()
		if err != nil {
			logger.Warn("feedback state unreadable, starting from empty table",
				zap.String("path", cfg.Path),
				zap.Error(err))
		} else if loaded != nil {
			s.entries = loaded
		}
	}

	return s, nil
}

// RecordFeedback adjusts the score for (query, toolID) by one step up on
// success or down on failure, clamps it, persists, and returns the new
// score.
func (s *Store) RecordFeedback(query, toolID string, success bool) (float64, error) {
	k := key{Query: catalog.NormalizeQuery(query), ToolID: toolID}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[k]
	if success {
		e.Score += s.cfg.Step
	} else {
		e.Score -= s.cfg.Step
	}
	e.Score = s.clamp(e.Score)
	e.UpdatedAt = time.Now().UTC()
	s.entries[k] = e

	if s.persist != nil {
		if err := s.persist.store(s.entries, k, e); err != nil {
			// Advisory state: log and keep routing.
			s.logger.Warn("failed to persist feedback", zap.Error(err))
		}
	}
	return e.Score, nil
}

// Boost returns the current adjustment for (query, toolID). Every read
// decays the stored score multiplicatively by TimeDecayRate, so repeated
// lookups without fresh feedback fade toward zero.
func (s *Store) Boost(query, toolID string) float64 {
	k := key{Query: catalog.NormalizeQuery(query), ToolID: toolID}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		return 0
	}
	e.Score *= s.cfg.TimeDecayRate
	if math.Abs(e.Score) < 1e-9 {
		e.Score = 0
	}
	s.entries[k] = e
	return e.Score
}

// Len returns the number of feedback entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close releases the persistence backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persist == nil {
		return nil
	}
	return s.persist.close()
}

func (s *Store) clamp(f float64) float64 {
	if f < s.cfg.MinScore {
		return s.cfg.MinScore
	}
	if f > s.cfg.MaxScore {
		return s.cfg.MaxScore
	}
	return f
}
