package kag

import (
	"strings"
	"testing"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

func TestBuildPromptWithEntities(t *testing.T) {
	result := SearchResult{
		LogicalForm: ParseLogicalForm("R.A. No. 9262"),
		Results: []corpus.Result{{
			Title:        "R.A. No. 9262",
			Number:       "R.A. No. 9262",
			Category:     "laws",
			Subcategory:  "republic_acts",
			Date:         "2004",
			RelevantText: "An act defining violence against women.",
			Provenance:   corpus.ProvenanceExactMatch,
		}},
	}

	prompt := BuildPrompt(result, "standard_v2")
	for _, want := range []string{
		"IDENTIFIED LEGAL ENTITIES:",
		"republic act: R.A. No. 9262",
		"Operation: lookup",
		"[SOURCE 1] R.A. No. 9262",
		"Found via: exact match",
		"{{law: FULL TITLE}}",
		"## Suggested Follow-Up Topics",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptUnknownModeFallsBack(t *testing.T) {
	result := SearchResult{LogicalForm: ParseLogicalForm("due process rights")}
	prompt := BuildPrompt(result, "nonsense_mode")
	if !strings.Contains(prompt, modeInstructions["standard_v2"]) {
		t.Fatal("unknown mode should fall back to the default instruction")
	}
	if !strings.Contains(prompt, "No matching documents were retrieved") {
		t.Fatal("empty result set should produce the knowledge-only directive")
	}
}

func TestFormatSources(t *testing.T) {
	text := FormatSources([]corpus.Result{
		{
			Title:          "Presidential Decree No. 603",
			Number:         "Presidential Decree No. 603",
			Category:       "laws",
			Subcategory:    "presidential_decree",
			Date:           "1974",
			RelevantText:   "The Child and Youth Welfare Code.",
			Provenance:     corpus.ProvenanceMultiHop,
			HopDepth:       1,
			ReasoningChain: []string{"Root: R.A. No. 9262", "Referenced in root: Presidential Decree No. 603"},
		},
		{Title: "Family Code", Category: "laws", Subcategory: "codes"},
	})

	if !strings.Contains(text, "[SOURCE 1] Presidential Decree No. 603, 1974") {
		t.Fatalf("missing first source header:\n%s", text)
	}
	if !strings.Contains(text, "Hop depth: 1") {
		t.Fatal("missing hop depth")
	}
	if !strings.Contains(text, "Reasoning: Root: R.A. No. 9262 -> Referenced in root: Presidential Decree No. 603") {
		t.Fatal("missing reasoning chain")
	}
	if !strings.Contains(text, "\n\n---\n\n[SOURCE 2] Family Code") {
		t.Fatal("sources not separated")
	}
	if FormatSources(nil) != "" {
		t.Fatal("nil input should serialize to empty")
	}
}
