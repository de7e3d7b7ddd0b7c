package deepsearch

import (
	"fmt"
	"strings"

	"github.com/jusconsultus/lexsearch/internal/corpus"
	"github.com/jusconsultus/lexsearch/internal/kag"
)

// modeInstructions selects the response style for the final answer.
var modeInstructions = map[string]string{
	"standard_v2":    "Provide a comprehensive, well-structured legal analysis. Include relevant citations for every legal claim. Use formal Philippine legal writing style with clear headings and structured sections.",
	"standard":       "Provide a balanced legal analysis with citations.",
	"concise":        "Be extremely concise. Provide only the key legal points, citations, and conclusions in bullet form.",
	"professional":   "Provide detailed legal analysis suitable for a practising lawyer. Include risk assessment, practical implications, strategic considerations. Cite specific provisions and case holdings with pinpoint references.",
	"educational":    "Explain legal concepts for law students. Define legal terms, explain reasoning, and include learning points with illustrative examples.",
	"simple_english": "Explain in simple, everyday language. Avoid legal jargon. Use analogies and examples that a non-lawyer would easily understand.",
}

// chatModeInstructions layers the task framing on top of the style.
var chatModeInstructions = map[string]string{
	"find":    "The user wants to FIND specific legal documents, cases, or statutes. Focus on listing the most relevant documents with their full citations and brief summaries.",
	"explain": "The user wants a legal concept EXPLAINED. Provide clear, structured explanations with supporting citations. Use the format: Definition -> Legal Basis -> Jurisprudence -> Practical Application.",
	"draft":   "The user wants help DRAFTING a legal document. Provide a well-structured draft or template with proper legal formatting, standard clauses, and citations to supporting law.",
	"digest":  "The user wants a DIGEST of a case or law. Provide: Title/Citation -> Facts -> Issues -> Ruling -> Ratio Decidendi -> Dispositive Portion. Format like a proper case digest.",
	"analyze": "The user wants IN-DEPTH ANALYSIS. Provide comprehensive legal analysis with: Issue Identification -> Applicable Law -> Jurisprudential Development -> Analysis -> Conclusion -> Recommendations.",
}

const defaultMode = "standard_v2"

// BuildPrompt assembles the grounding system prompt for answer synthesis:
// style and task directives, the sub-query trace, strict citation rules
// and the serialized source list.
func BuildPrompt(sources []corpus.Result, subQueries []string, opts Options) string {
	instruction, ok := modeInstructions[opts.Mode]
	if !ok {
		instruction = modeInstructions[defaultMode]
	}
	chatInstruction := chatModeInstructions[opts.ChatMode]

	var trace strings.Builder
	for i, q := range subQueries {
		fmt.Fprintf(&trace, "  %d. %s\n", i+1, q)
	}

	sourcesText := kag.FormatSources(sources)
	if sourcesText == "" {
		sourcesText = "No specific documents were retrieved from the database. Use your comprehensive knowledge of Philippine law (Revised Penal Code, Civil Code, Family Code, Rules of Court, Labor Code, Constitution, and established Supreme Court jurisprudence) to provide a thorough and accurate legal analysis."
	}

	return fmt.Sprintf(`You are JusConsultus AI, an expert Philippine legal research assistant powered by deep search technology.

%s
%s

DEEP SEARCH CONTEXT:
I decomposed the user's question into these research sub-queries:
%s
MANDATORY RULES:
1. ALWAYS provide a comprehensive, helpful answer to the user's legal question. Never refuse to answer.
2. Use the provided sources to support your answer with citations when available.
3. If the sources do not directly address the question, use your knowledge of Philippine law to provide an accurate and thorough answer, noting which parts come from general legal knowledge vs. retrieved sources.
4. When citing Supreme Court decisions: Case Title + G.R. Number + Date + Key doctrine.
5. When citing laws/statutes: Full title + Number + Key provisions.
6. Structure your response with:
   - **Legal Context:** (1-2 sentence direct answer specific to the exact question asked, no generic preamble)
   - **Legal Basis / Doctrine** with proper headings
   - Detailed analysis under clear sub-headings
7. Do NOT invent fake G.R. numbers or case names. Use qualifiers like "as established in jurisprudence" when citing from memory.
8. State when the user should consult a lawyer for case-specific advice.

CITATION FORMAT:
When citing a law, wrap it: {{law: FULL TITLE}}
When citing jurisprudence, wrap it: {{case: CASE TITLE (Year)}}
Use > blockquote prefix when directly quoting legal provisions verbatim.

FOLLOW-UP TOPICS:
At the end, include "## Suggested Follow-Up Topics" with 3 concise topic suggestions, each on its own line prefixed with "- ".

RETRIEVED SOURCES FROM THE PHILIPPINE LEGAL DATABASE (%d documents):
%s

Provide your legal analysis now.`, instruction, chatInstruction, trace.String(), len(sources), sourcesText)
}
