package corpus

import (
	"context"
	"testing"
)

func fixtureIndex(t *testing.T) *Index {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "Laws/Republic Acts/2004/ra_9262_2004.html",
		`<html><body><h1>Anti-Violence Against Women and Their Children Act</h1>
<p>An Act defining violence against women and their children, providing for
protective measures for victims, prescribing penalties therefor.</p></body></html>`)
	writeFixture(t, root, "Laws/Presidential Decree/pd_1529_1978.html",
		`<html><body><p>Property Registration Decree. Amending and codifying the
laws relative to registration of property.</p></body></html>`)
	return NewIndex(NewFSStore(root), DefaultFolders(), 0)
}

func TestIndexSearchFindsKeywordMatches(t *testing.T) {
	ix := fixtureIndex(t)
	ctx, err := ix.Search(context.Background(), "violence against women", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ctx.Results) == 0 {
		t.Fatal("no results")
	}
	top := ctx.Results[0]
	if top.Title != "Republic Act No. 9262" {
		t.Fatalf("top title = %q", top.Title)
	}
	if top.Provenance != ProvenanceKeyword {
		t.Fatalf("provenance = %q", top.Provenance)
	}
	if top.Date != "2004" {
		t.Fatalf("date = %q, want year folder 2004", top.Date)
	}
	if top.Score <= 0 {
		t.Fatalf("score = %v", top.Score)
	}
	if top.RelevantText == "" {
		t.Fatal("missing snippet")
	}
}

func TestIndexSearchKeywordLessQuery(t *testing.T) {
	ix := fixtureIndex(t)
	ctx, err := ix.Search(context.Background(), "is the of a", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ctx.Results) != 0 {
		t.Fatalf("got %d results, want none", len(ctx.Results))
	}
}

func TestIndexSearchSourceFilters(t *testing.T) {
	ix := fixtureIndex(t)
	ctx, err := ix.Search(context.Background(), "registration property", []string{"jurisprudence"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// The decree lives under laws; a jurisprudence-only filter excludes it.
	if len(ctx.Results) != 0 {
		t.Fatalf("filter leaked %d results", len(ctx.Results))
	}
}

func TestScoreDocumentWeights(t *testing.T) {
	score := ScoreDocument("body violence violence", "anti-violence act", "r.a. no. 9262", []string{"violence"})
	// +5 title, +2 body occurrences.
	if score != 7 {
		t.Fatalf("score = %v, want 7", score)
	}
	if got := ScoreDocument("anything", "title", "", nil); got != 0 {
		t.Fatalf("empty keywords score = %v, want 0", got)
	}
}

func TestScoreDocumentBodyCap(t *testing.T) {
	body := ""
	for i := 0; i < 25; i++ {
		body += "tenancy "
	}
	score := ScoreDocument(body, "", "", []string{"tenancy"})
	if score != 10 {
		t.Fatalf("score = %v, want capped 10", score)
	}
}

func TestSortByScoreDeterministicTies(t *testing.T) {
	a := Result{DocumentID: "b", Score: 5}
	b := Result{DocumentID: "a", Score: 5}
	c := Result{DocumentID: "c", Score: 9}
	results := []Result{a, b, c}
	SortByScore(results)
	if results[0].DocumentID != "c" || results[1].DocumentID != "a" || results[2].DocumentID != "b" {
		t.Fatalf("order = %v", []string{results[0].DocumentID, results[1].DocumentID, results[2].DocumentID})
	}
}
