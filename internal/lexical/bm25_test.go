package lexical

import (
	"reflect"
	"testing"
)

func testDocs() []Document {
	return []Document{
		{
			ID:      "git.commit",
			Text:    "git.commit Commit staged changes to the repository commit save changes record a commit",
			Phrases: []string{"commit", "save changes"},
		},
		{
			ID:      "crawl4ai.fetch",
			Text:    "crawl4ai.fetch Fetch and render a web page crawl fetch url download a page",
			Phrases: []string{"crawl", "fetch url"},
		},
		{
			ID:      "researcher.analyze",
			Text:    "researcher.analyze Analyze a topic and summarize findings research analyze summarize",
			Phrases: []string{"research", "analyze topic"},
		},
	}
}

func TestTokenize_DropsStopwordsAndShortTerms(t *testing.T) {
	got := Tokenize("Please commit MY changes to the repo, ok? a x")
	want := []string{"commit", "changes", "repo", "ok"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenize_KeepsDuplicatesForTermFrequency(t *testing.T) {
	got := Tokenize("commit commit commit")
	if len(got) != 3 {
		t.Fatalf("Tokenize() kept %d terms, want 3", len(got))
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	ix := Build(nil)
	if ix.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", ix.Len())
	}
	if scores := ix.Scores("anything"); len(scores) != 0 {
		t.Fatalf("Scores() on empty index = %v, want empty", scores)
	}
}

func TestScores_NormalizedAgainstBest(t *testing.T) {
	ix := Build(testDocs())
	scores := ix.Scores("commit my changes")

	if scores["git.commit"] != 1.0 {
		t.Fatalf("best score = %v, want 1.0", scores["git.commit"])
	}
	for id, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("score for %s = %v, outside [0,1]", id, s)
		}
	}
	if _, ok := scores["crawl4ai.fetch"]; ok {
		t.Fatalf("crawl4ai.fetch scored for a git query: %v", scores)
	}
}

func TestScores_NoQueryTerms(t *testing.T) {
	ix := Build(testDocs())
	if scores := ix.Scores("the of to"); len(scores) != 0 {
		t.Fatalf("Scores() for stopword-only query = %v, want empty", scores)
	}
}

func TestTopK_OrderAndLimit(t *testing.T) {
	ix := Build(testDocs())
	hits := ix.TopK("fetch the url and analyze it", 2)

	if len(hits) != 2 {
		t.Fatalf("TopK returned %d hits, want 2", len(hits))
	}
	if hits[0].Score < hits[1].Score {
		t.Fatalf("hits not sorted by score: %v", hits)
	}
}

func TestTopK_DeterministicTieBreak(t *testing.T) {
	docs := []Document{
		{ID: "b.tool", Text: "identical text here"},
		{ID: "a.tool", Text: "identical text here"},
	}
	ix := Build(docs)

	hits := ix.TopK("identical text", 0)
	if len(hits) != 2 {
		t.Fatalf("TopK returned %d hits, want 2", len(hits))
	}
	if hits[0].ID != "a.tool" {
		t.Fatalf("tie not broken by id ascending: %v", hits)
	}
}

func TestExactPhrase_MultiWordOnly(t *testing.T) {
	ix := Build(testDocs())

	// Multi-word phrase present verbatim.
	phrase, ok := ix.ExactPhrase("crawl4ai.fetch", "please fetch url https example com")
	if !ok || phrase != "fetch url" {
		t.Fatalf("ExactPhrase() = %q, %v; want \"fetch url\", true", phrase, ok)
	}

	// Single-token keyword never qualifies.
	if phrase, ok := ix.ExactPhrase("git.commit", "commit now"); ok {
		t.Fatalf("single-token keyword matched as phrase: %q", phrase)
	}

	// Word boundary: "fetch urls" does not contain the phrase "fetch url".
	if phrase, ok := ix.ExactPhrase("crawl4ai.fetch", "fetch urls in bulk"); ok {
		t.Fatalf("phrase matched across word boundary: %q", phrase)
	}
}

func TestExactPhrase_BridgesStopwordsAndPunctuation(t *testing.T) {
	docs := []Document{{
		ID:      "crawl4ai.crawl",
		Text:    "crawl a url and extract content",
		Phrases: []string{"research url"},
	}}
	ix := Build(docs)

	phrase, ok := ix.ExactPhrase("crawl4ai.crawl", "research this url: https://example.com")
	if !ok || phrase != "research url" {
		t.Fatalf("ExactPhrase() = %q, %v; want \"research url\", true", phrase, ok)
	}
}

func TestExactPhrase_UnknownDocument(t *testing.T) {
	ix := Build(testDocs())
	if _, ok := ix.ExactPhrase("missing.tool", "save changes"); ok {
		t.Fatal("ExactPhrase matched for an unindexed document")
	}
}

func TestExactPhrase_PrefersLongest(t *testing.T) {
	docs := []Document{{
		ID:      "deploy.release",
		Text:    "cut a release",
		Phrases: []string{"cut release", "cut a new release"},
	}}
	ix := Build(docs)

	phrase, ok := ix.ExactPhrase("deploy.release", "cut a new release for me and cut release notes")
	if !ok || phrase != "cut a new release" {
		t.Fatalf("ExactPhrase() = %q, want the longest matching phrase", phrase)
	}
}
