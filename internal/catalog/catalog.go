package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"skillrouter/internal/embedding"
	"skillrouter/internal/lexical"
	"skillrouter/internal/vector"
)

// Catalog is the thread-safe registry of tool records. It owns both the
// lexical and the vector index: every mutation rebuilds both under the write
// lock before it returns, so readers never observe a tool present in one
// index but not the other.
//
// Registration is rare relative to routing reads; rebuild cost at catalog
// scale (hundreds of records) is negligible next to an embedding call.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]*ToolRecord
	lex     *lexical.Index
	vec     *vector.Index

	embedder     embedding.Provider
	embedTimeout time.Duration
	logger       *zap.Logger
}

// Stats summarizes catalog state for diagnostics.
type Stats struct {
	Tools         int `json:"tools"`
	VectorIndexed int `json:"vector_indexed"`
}

// New creates an empty catalog. embedder may be nil for keyword-only
// operation; logger may be nil.
func New(embedder embedding.Provider, embedTimeout time.Duration, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		records:      make(map[string]*ToolRecord),
		embedder:     embedder,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
	c.rebuildLocked()
	return c
}

// Register inserts or atomically replaces a record by id. If embedding
// generation fails the record is indexed lexically only and flagged
// VectorIndexMissing; that is a degradation, not an error.
func (c *Catalog) Register(ctx context.Context, rec ToolRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid tool record: %w", err)
	}

	rec.RoutingKeywords = normalizeKeywords(rec.RoutingKeywords)
	rec.Embedding = nil
	rec.VectorIndexMissing = false

	if c.embedder != nil {
		vec, err := embedding.EmbedWithTimeout(ctx, c.embedder, rec.EmbeddingText(), c.embedTimeout)
		if err != nil {
			rec.VectorIndexMissing = true
			c.logger.Warn("embedding failed at registration, indexing lexically only",
				zap.String("tool", rec.ID),
				zap.Error(err))
		} else {
			rec.Embedding = vec
		}
	} else {
		rec.VectorIndexMissing = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.ID] = &rec
	c.rebuildLocked()

	c.logger.Debug("registered tool",
		zap.String("tool", rec.ID),
		zap.Int("keywords", len(rec.RoutingKeywords)),
		zap.Bool("vector_index_missing", rec.VectorIndexMissing))
	return nil
}

// Remove deletes a record and drops it from both indexes.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(c.records, id)
	c.rebuildLocked()

	c.logger.Debug("removed tool", zap.String("tool", id))
	return nil
}

// Get returns a copy of the record for id.
func (c *Catalog) Get(id string) (ToolRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[id]
	if !ok {
		return ToolRecord{}, false
	}
	return *rec, true
}

// All returns copies of every record, ordered by id.
func (c *Catalog) All() []ToolRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ToolRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Stats returns catalog counters.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Tools: len(c.records)}
	s.VectorIndexed = c.vec.Len()
	return s
}

// Indexes returns the current immutable index pair. The pointers stay valid
// and internally consistent even if the catalog mutates afterwards; a router
// call operates on the snapshot it took.
func (c *Catalog) Indexes() (*lexical.Index, *vector.Index) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lex, c.vec
}

// rebuildLocked rebuilds both indexes from the record table.
// Caller must hold the write lock (or have exclusive access during New).
func (c *Catalog) rebuildLocked() {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]lexical.Document, 0, len(ids))
	entries := make([]vector.Entry, 0, len(ids))
	for _, id := range ids {
		rec := c.records[id]
		docs = append(docs, lexical.Document{
			ID:      rec.ID,
			Text:    rec.indexText(),
			Phrases: rec.RoutingKeywords,
		})
		if !rec.VectorIndexMissing && len(rec.Embedding) > 0 {
			entries = append(entries, vector.Entry{ID: rec.ID, Vector: rec.Embedding})
		}
	}

	c.lex = lexical.Build(docs)

	vec, skipped := vector.Build(entries)
	c.vec = vec
	for _, id := range skipped {
		// Dimension drift (embedding model changed between registrations).
		// Treat the tool as absent from the vector index rather than failing.
		if rec, ok := c.records[id]; ok {
			rec.VectorIndexMissing = true
		}
		c.logger.Warn("embedding dimension mismatch, tool excluded from vector index",
			zap.String("tool", id))
	}
}
