// Package vector implements the semantic half of hybrid routing: an
// in-memory nearest-neighbor index over tool embeddings. The catalog holds
// a few hundred entries at most, so brute-force cosine scan beats any ANN
// structure on both latency and complexity.
//
// Indexes are immutable after Build and safe for concurrent use.
package vector

import (
	"fmt"
	"math"
	"sort"
)

// Entry pairs a tool id with its embedding.
type Entry struct {
	ID     string
	Vector []float32
}

// Hit is a similarity search result. Score is cosine similarity clamped
// to [0,1].
type Hit struct {
	ID    string
	Score float64
}

// Index is a brute-force cosine index over fixed-dimension embeddings.
type Index struct {
	dims    int
	entries []Entry
}

// Build constructs an Index from entries. The dimensionality is taken from
// the first entry; entries with a different dimension are skipped and
// reported so the caller can flag the tool as absent from this index.
func Build(entries []Entry) (*Index, []string) {
	ix := &Index{}
	var skipped []string

	for _, e := range entries {
		if len(e.Vector) == 0 {
			continue
		}
		if ix.dims == 0 {
			ix.dims = len(e.Vector)
		}
		if len(e.Vector) != ix.dims {
			skipped = append(skipped, e.ID)
			continue
		}
		ix.entries = append(ix.entries, e)
	}
	return ix, skipped
}

// Len returns the number of indexed embeddings.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimensions returns the embedding dimensionality, 0 for an empty index.
func (ix *Index) Dimensions() int {
	return ix.dims
}

// TopK returns the k entries most similar to the query embedding, ordered by
// score descending with id ascending as the tie-break. Entries whose
// similarity clamps to zero are omitted.
func (ix *Index) TopK(query []float32, k int) ([]Hit, error) {
	if len(ix.entries) == 0 {
		return nil, nil
	}
	if len(query) != ix.dims {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dims)
	}

	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		sim := clampUnit(Cosine(query, e.Vector))
		if sim > 0 {
			hits = append(hits, Hit{ID: e.ID, Score: sim})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Cosine computes cosine similarity of two equal-length vectors.
// Returns 0 for zero-magnitude input.
func Cosine(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// clampUnit clamps similarity into [0,1]. Negative cosine carries no useful
// routing signal and would otherwise leak out of the documented score range.
func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
