// Package catalog holds the canonical in-memory table of registered skill
// commands and keeps the lexical and vector indexes consistent with it.
package catalog

import (
	"fmt"
	"strings"
)

// ToolRecord is one registered skill command. Only metadata lives here; the
// tool implementation itself belongs to the agent runtime.
type ToolRecord struct {
	// ID is the globally unique identifier, "namespace.command".
	ID string `json:"id" yaml:"id"`

	// Description is free text and the primary semantic signal.
	Description string `json:"description" yaml:"description"`

	// RoutingKeywords are case-normalized, deduplicated trigger terms and
	// phrases. Multi-word entries qualify for the exact-phrase bonus.
	RoutingKeywords []string `json:"routing_keywords" yaml:"routing_keywords"`

	// Intents are short goal phrases, in declaration order.
	Intents []string `json:"intents,omitempty" yaml:"intents,omitempty"`

	// Domains optionally overrides the domain tags used by verb boosting.
	// When empty, the namespace part of ID is the single domain.
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`

	// Embedding is derived from description + keywords + intents at index
	// time and is immutable until the record is re-registered.
	Embedding []float32 `json:"-" yaml:"-"`

	// VectorIndexMissing marks a record whose embedding generation failed.
	// The tool still routes via keyword score alone.
	VectorIndexMissing bool `json:"vector_index_missing,omitempty" yaml:"-"`
}

// Validate checks the record before registration. A record that fails
// validation is never partially registered.
func (r *ToolRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyDescription, r.ID)
	}
	return nil
}

// DomainTags returns the domains this tool declares for verb boosting:
// the explicit Domains list, or the ID namespace when none is declared.
func (r *ToolRecord) DomainTags() []string {
	if len(r.Domains) > 0 {
		return r.Domains
	}
	if i := strings.IndexByte(r.ID, '.'); i > 0 {
		return []string{r.ID[:i]}
	}
	return []string{r.ID}
}

// EmbeddingText returns the text embedded at index time.
func (r *ToolRecord) EmbeddingText() string {
	parts := make([]string, 0, 2+len(r.RoutingKeywords)+len(r.Intents))
	parts = append(parts, r.Description)
	parts = append(parts, r.RoutingKeywords...)
	parts = append(parts, r.Intents...)
	return strings.Join(parts, ". ")
}

// indexText returns the text the lexical index tokenizes for this record.
func (r *ToolRecord) indexText() string {
	parts := make([]string, 0, 2+len(r.RoutingKeywords)+len(r.Intents))
	parts = append(parts, r.ID, r.Description)
	parts = append(parts, r.RoutingKeywords...)
	parts = append(parts, r.Intents...)
	return strings.Join(parts, " ")
}

// normalizeKeywords lowercases, trims, and deduplicates routing keywords,
// dropping empties.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = NormalizeQuery(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// NormalizeQuery lowercases, trims, and collapses whitespace. The normalized
// form is the cache key and the feedback key.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
