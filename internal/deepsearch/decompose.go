package deepsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jusconsultus/lexsearch/provider"
)

const (
	decomposeTemperature = 0.2
	decomposeMaxTokens   = 500
	maxDecomposed        = 5

	// Queries this small never benefit from decomposition; skip the
	// provider round-trip.
	shortCircuitWords = 4
	shortCircuitBytes = 40
)

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)

// Decompose asks the provider to split a complex legal question into 2-5
// focused sub-queries. Any failure degrades to the original query; the
// pipeline never aborts here.
func (e *Engine) Decompose(ctx context.Context, query, chatMode string, history []provider.Message) []string {
	if len(strings.Fields(query)) <= shortCircuitWords || len(query) <= shortCircuitBytes {
		return []string{query}
	}
	if e.provider == nil {
		return []string{query}
	}

	var historyContext string
	if len(history) > 0 {
		tail := history
		if len(tail) > 4 {
			tail = tail[len(tail)-4:]
		}
		var lines []string
		for _, m := range tail {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Role, head(m.Content, 200)))
		}
		historyContext = "\nConversation context:\n" + strings.Join(lines, "\n")
	}

	var modeHint string
	if chatMode != "" {
		modeHint = fmt.Sprintf("\nThe user is in %q mode.", chatMode)
	}

	prompt := fmt.Sprintf(`You are a Philippine legal research query planner. Given a legal question, decompose it into 2-5 focused sub-queries that together cover the full scope of the question. Each sub-query should target a specific legal concept, statute, case, or doctrine.

Rules:
- Output ONLY a JSON array of strings. No other text.
- Each sub-query must be specific and searchable against a Philippine legal database.
- Include queries for: relevant statutes/laws, Supreme Court jurisprudence, key legal doctrines, and practical application.
- If the question is already simple and narrow, return it as a single-element array.
- Maximum 5 sub-queries.%s%s

Question: %s

Output:`, modeHint, historyContext, query)

	raw, err := e.provider.Complete(ctx, []provider.Message{
		{Role: "system", Content: "You output only valid JSON arrays of strings."},
		{Role: "user", Content: prompt},
	}, provider.Options{Temperature: decomposeTemperature, MaxTokens: decomposeMaxTokens})
	if err != nil {
		e.logger.Printf("decomposition failed, using original query: %v", err)
		return []string{query}
	}

	if parsed := parseSubQueries(raw); len(parsed) > 0 {
		return parsed
	}
	return []string{query}
}

// parseSubQueries extracts the first well-formed JSON array of strings
// from a provider response.
func parseSubQueries(raw string) []string {
	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil
	}
	var out []string
	for _, q := range parsed {
		if strings.TrimSpace(q) != "" {
			out = append(out, q)
		}
	}
	if len(out) > maxDecomposed {
		out = out[:maxDecomposed]
	}
	return out
}
