package lexical

import (
	"strings"
	"unicode"
)

// =============================================================================
// TOKENIZER
// =============================================================================

// stopwords are terms too common to carry routing signal. Kept deliberately
// small: tool descriptions are short, and over-aggressive filtering hurts
// recall more than noise hurts precision at this corpus size.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "as": true,
	"and": true, "or": true, "but": true, "not": true, "no": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "my": true, "your": true, "our": true,
	"i": true, "you": true, "we": true, "me": true, "us": true,
	"be": true, "been": true, "was": true, "were": true,
	"do": true, "does": true, "did": true, "can": true, "will": true,
	"please": true, "want": true, "need": true, "would": true, "like": true,
}

// Tokenize splits text into lowercase terms, dropping punctuation,
// stopwords, and single-character fragments. Term order is preserved
// and duplicates are kept so callers can compute true term frequencies.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// TermSet returns the unique terms of text.
func TermSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(text) {
		set[t] = true
	}
	return set
}
