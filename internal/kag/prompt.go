package kag

import (
	"fmt"
	"strings"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

// modeInstructions is the fixed response-style directive table.
var modeInstructions = map[string]string{
	"standard_v2":    "Provide a comprehensive, well-structured legal analysis with formal Philippine legal writing style.",
	"concise":        "Be extremely concise. Key legal points and citations only.",
	"professional":   "Detailed legal analysis for practitioners. Include risk assessment, practical implications, strategic considerations.",
	"educational":    "Explain for law students. Define terms, explain reasoning, include learning points.",
	"simple_english": "Explain in everyday language. Avoid legal jargon. Use analogies.",
}

const defaultMode = "standard_v2"

// BuildPrompt constructs the grounding system prompt for provider
// synthesis: style directive, logical-form trace, strict citation rules and
// the serialized source list.
func BuildPrompt(result SearchResult, mode string) string {
	instruction, ok := modeInstructions[mode]
	if !ok {
		instruction = modeInstructions[defaultMode]
	}
	form := result.LogicalForm

	var entitySection string
	if len(form.Entities) > 0 {
		var b strings.Builder
		b.WriteString("\nIDENTIFIED LEGAL ENTITIES:\n")
		for _, e := range form.Entities {
			fmt.Fprintf(&b, "  - %s: %s\n", strings.ReplaceAll(string(e.Type), "_", " "), e.Normalized)
		}
		entitySection = b.String()
	}

	var logicalSection strings.Builder
	fmt.Fprintf(&logicalSection, "\nLOGICAL FORM ANALYSIS:\n  Operation: %s\n  Intent: %s\n  Concepts: %s",
		form.Operation,
		strings.ReplaceAll(string(form.Intent), "_", " "),
		orNone(strings.Join(headN(form.ConceptKeywords, 5), ", ")))
	if form.RequiresMultiHop {
		logicalSection.WriteString("\n  Multi-hop reasoning: enabled")
	}

	sourcesText := FormatSources(result.Results)
	if sourcesText == "" {
		sourcesText = "No matching documents were retrieved from the database for this specific query. Use your comprehensive knowledge of Philippine law (Revised Penal Code, Civil Code, Family Code, Rules of Court, Labor Code, Constitution, and established Supreme Court jurisprudence) to provide a thorough and accurate legal analysis. Clearly indicate that your answer is based on general legal knowledge rather than specific retrieved documents."
	}

	return fmt.Sprintf(`You are JusConsultus AI, an expert Philippine legal research assistant enhanced with knowledge-augmented retrieval.

%s
%s%s

MANDATORY RULES:
1. ALWAYS provide a comprehensive, helpful answer to the user's legal question. Never refuse to answer.
2. Use the provided sources to support your answer with citations when available.
3. If the sources do not directly address the question, use your knowledge of Philippine law to provide an accurate answer, clearly noting which parts come from your general legal knowledge vs. retrieved sources.
4. When citing Supreme Court decisions: Title + G.R. Number + Date + Key doctrine.
5. When citing statutes: Full title + Number + relevant provisions.
6. Structure: **Legal Context** (1-2 sentence direct answer to the specific question) -> **Legal Basis/Doctrine** -> **Detailed Analysis** -> **Sources Referenced**.
7. Do NOT invent fake G.R. numbers or case names. If citing from memory, use qualifiers like "as established in jurisprudence" or "under settled doctrine."
8. State when the user should consult a lawyer for case-specific advice.
9. When multi-hop results are present, explain the reasoning chain connecting related laws.

CITATION FORMAT:
Cite laws: {{law: FULL TITLE}}
Cite jurisprudence: {{case: CASE TITLE (Year)}}
Quote provisions verbatim: use > blockquote prefix

FOLLOW-UP TOPICS:
End with "## Suggested Follow-Up Topics" followed by 3 concise suggestions prefixed with "- ".

RETRIEVED SOURCES (%d documents via knowledge-graph retrieval):
%s

Provide your legal analysis now.`, instruction, entitySection, logicalSection.String(), len(result.Results), sourcesText)
}

// FormatSources serializes retrieval results into numbered source blocks
// for grounding prompts.
func FormatSources(results []corpus.Result) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "[SOURCE %d] %s", i+1, r.Title)
		if r.Number != "" && r.Number != r.Title {
			fmt.Fprintf(&b, " (%s)", r.Number)
		}
		if r.Date != "" {
			fmt.Fprintf(&b, ", %s", r.Date)
		}
		fmt.Fprintf(&b, "\nCategory: %s/%s", r.Category, r.Subcategory)
		if r.Provenance != "" {
			fmt.Fprintf(&b, " | Found via: %s", strings.ReplaceAll(string(r.Provenance), "_", " "))
		}
		if r.HopDepth > 0 {
			fmt.Fprintf(&b, " | Hop depth: %d", r.HopDepth)
		}
		if len(r.ReasoningChain) > 0 {
			fmt.Fprintf(&b, "\nReasoning: %s", strings.Join(r.ReasoningChain, " -> "))
		}
		if r.RelevantText != "" {
			fmt.Fprintf(&b, "\nExcerpt:\n%s", r.RelevantText)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
