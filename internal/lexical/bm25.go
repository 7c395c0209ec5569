// Package lexical implements the keyword half of hybrid routing: an Okapi
// BM25 inverted index over tool text fields plus exact-phrase matching
// against declared routing keywords.
//
// Indexes are immutable after Build and safe for concurrent use; the catalog
// rebuilds the index on every mutation and swaps the pointer under its own
// write lock.
package lexical

import (
	"math"
	"sort"
)

// BM25 tuning constants. Standard values from Robertson et al.
const (
	// k1 controls term frequency saturation. Higher = slower saturation.
	bm25K1 = 1.5

	// b controls document length normalization. 0.75 is the common default.
	bm25B = 0.75
)

// Document is the indexable projection of one tool: its id, the text fields
// that form its BM25 document, and the normalized routing keywords used for
// exact-phrase matching.
type Document struct {
	ID      string
	Text    string
	Phrases []string
}

// Hit is a scored document reference.
type Hit struct {
	ID    string
	Score float64
}

type doc struct {
	id      string
	tf      map[string]int
	length  int
	phrases []string
}

// Index is a pre-built BM25 inverted index over tool documents.
// Immutable after Build; safe for concurrent use.
type Index struct {
	docs   []doc
	byID   map[string]int
	idf    map[string]float64
	avgLen float64
}

// Build constructs an Index from documents. An empty input yields a valid
// index that scores every query as zero.
func Build(documents []Document) *Index {
	ix := &Index{
		byID: make(map[string]int, len(documents)),
		idf:  make(map[string]float64),
	}
	if len(documents) == 0 {
		return ix
	}

	df := make(map[string]int)
	totalLen := 0

	for _, d := range documents {
		terms := Tokenize(d.Text)
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}

		ix.byID[d.ID] = len(ix.docs)
		ix.docs = append(ix.docs, doc{
			id:      d.ID,
			tf:      tf,
			length:  len(terms),
			phrases: d.Phrases,
		})
		totalLen += len(terms)

		for term := range tf {
			df[term]++
		}
	}

	n := len(ix.docs)
	ix.avgLen = float64(totalLen) / float64(n)

	// Lucene-style smoothing: log((N+1)/(df+1)) + 1, always >= 1.
	for term, freq := range df {
		ix.idf[term] = math.Log(float64(n+1)/float64(freq+1)) + 1.0
	}

	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Scores computes per-document BM25 scores for the query, normalized to
// [0,1] against the best-scoring document. Zero-score documents are omitted.
func (ix *Index) Scores(query string) map[string]float64 {
	scores := make(map[string]float64)
	if len(ix.docs) == 0 {
		return scores
	}

	queryTerms := TermSet(query)
	if len(queryTerms) == 0 {
		return scores
	}

	var maxScore float64
	for _, d := range ix.docs {
		s := ix.score(queryTerms, d)
		if s > 0 {
			scores[d.id] = s
			if s > maxScore {
				maxScore = s
			}
		}
	}

	if maxScore > 0 {
		for id := range scores {
			scores[id] /= maxScore
		}
	}
	return scores
}

// TopK returns the k best documents for the query by normalized BM25 score,
// ordered by score descending with id ascending as the tie-break.
func (ix *Index) TopK(query string, k int) []Hit {
	scores := ix.Scores(query)
	hits := make([]Hit, 0, len(scores))
	for id, s := range scores {
		hits = append(hits, Hit{ID: id, Score: s})
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
	return hits
}

// ExactPhrase reports the longest multi-term routing keyword of the given
// document whose terms appear as a contiguous run in the query's terms.
// Matching happens after tokenization, so punctuation and stopwords between
// the phrase words do not break a match ("research this url" still matches
// "research url"). Single-token keywords never qualify: the phrase bonus
// exists to reward discriminative multi-word phrases over generic tokens.
func (ix *Index) ExactPhrase(id, normalizedQuery string) (string, bool) {
	pos, ok := ix.byID[id]
	if !ok {
		return "", false
	}

	queryTerms := Tokenize(normalizedQuery)
	var best string
	var bestLen int
	for _, phrase := range ix.docs[pos].phrases {
		terms := Tokenize(phrase)
		if len(terms) < 2 || len(terms) < bestLen {
			continue
		}
		if containsRun(queryTerms, terms) {
			best, bestLen = phrase, len(terms)
		}
	}
	return best, best != ""
}

// containsRun reports whether needle occurs as a contiguous subsequence of
// haystack.
func containsRun(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, term := range needle {
			if haystack[i+j] != term {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// score computes the raw BM25 score of one document against the query terms.
func (ix *Index) score(queryTerms map[string]bool, d doc) float64 {
	dl := float64(d.length)
	var s float64

	for term := range queryTerms {
		tf, ok := d.tf[term]
		if !ok {
			continue
		}
		idf, ok := ix.idf[term]
		if !ok {
			continue
		}

		tfF := float64(tf)
		numerator := tfF * (bm25K1 + 1)
		denominator := tfF + bm25K1*(1.0-bm25B+bm25B*dl/ix.avgLen)
		s += idf * (numerator / denominator)
	}
	return s
}
