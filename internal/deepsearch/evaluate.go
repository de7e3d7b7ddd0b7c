package deepsearch

import (
	"strings"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

// exactPriority breaks dedup ties in favor of exact-match results. It is
// applied only while comparing duplicates and never persists in an
// emitted score.
const exactPriority = 50

// Evaluate merges multi-pass results: dedup by document id keeping the
// highest-scoring copy, dedup again by normalized title, add relevance and
// recency bonuses against the original query, sort, truncate. Re-running it
// on its own output keeps membership and order stable.
func Evaluate(results []corpus.Result, originalQuery string, maxResults int) []corpus.Result {
	priority := func(r corpus.Result) float64 {
		if r.Provenance == corpus.ProvenanceExactMatch {
			return r.Score + exactPriority
		}
		return r.Score
	}

	// Keep first-seen order so ties resolve the same way regardless of
	// which pass finished first.
	var order []string
	byID := make(map[string]corpus.Result)
	for _, r := range results {
		existing, ok := byID[r.DocumentID]
		if !ok {
			order = append(order, r.DocumentID)
			byID[r.DocumentID] = r
			continue
		}
		if priority(r) > priority(existing) {
			byID[r.DocumentID] = r
		}
	}

	titlesSeen := make(map[string]bool)
	unique := make([]corpus.Result, 0, len(order))
	for _, id := range order {
		r := byID[id]
		title := strings.Join(strings.Fields(strings.ToLower(r.Title)), " ")
		if titlesSeen[title] {
			continue
		}
		titlesSeen[title] = true
		unique = append(unique, r)
	}

	keywords := shortKeywords(originalQuery)
	rescored := make([]corpus.Result, 0, len(unique))
	for _, r := range unique {
		rescored = append(rescored, r.WithScore(r.Score+relevanceBonus(r, keywords)))
	}

	corpus.SortByScore(rescored)
	if len(rescored) > maxResults {
		rescored = rescored[:maxResults]
	}
	return rescored
}

// relevanceBonus rewards hits on the original query's keywords and recent
// documents: +2 per keyword in the title, +1 per keyword in the snippet,
// +2 for year 2020 onward, +1 for 2010 onward.
func relevanceBonus(r corpus.Result, keywords []string) float64 {
	bonus := 0.0
	titleLower := strings.ToLower(r.Title)
	textLower := strings.ToLower(r.RelevantText)
	for _, kw := range keywords {
		if strings.Contains(titleLower, kw) {
			bonus += 2
		}
		if strings.Contains(textLower, kw) {
			bonus += 1
		}
	}
	switch year := yearOf(r.Date); {
	case year >= 2020:
		bonus += 2
	case year >= 2010:
		bonus += 1
	}
	return bonus
}

func shortKeywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
