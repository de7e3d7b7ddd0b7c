package kag

import "testing"

func TestExtractEntitiesTypes(t *testing.T) {
	cases := []struct {
		query      string
		typ        EntityType
		normalized string
	}{
		{"Republic Act No. 9262 penalties", EntityRepublicAct, "Republic Act No. 9262"},
		{"what does R.A. 11232 change", EntityRepublicAct, "R.A. No. 11232"},
		{"Presidential Decree No. 1529 registration", EntityPresidentialDecree, "Presidential Decree No. 1529"},
		{"is B.P. 22 still enforced", EntityBatasPambansa, "B.P. Blg. 22"},
		{"Executive Order No. 209 family code", EntityExecutiveOrder, "Executive Order No. 209"},
		{"G.R. No. 171396 ruling", EntitySupremeCourtCase, "G.R. No. 171396"},
	}
	for _, c := range cases {
		entities := ExtractEntities(c.query)
		if len(entities) == 0 {
			t.Fatalf("%q: no entities", c.query)
		}
		if entities[0].Type != c.typ {
			t.Fatalf("%q: type = %q, want %q", c.query, entities[0].Type, c.typ)
		}
		if entities[0].Normalized != c.normalized {
			t.Fatalf("%q: normalized = %q, want %q", c.query, entities[0].Normalized, c.normalized)
		}
	}
}

func TestExtractEntitiesConstitution(t *testing.T) {
	entities := ExtractEntities("due process under the 1987 Constitution")
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	if entities[0].Type != EntityConstitution {
		t.Fatalf("type = %q", entities[0].Type)
	}
}

func TestExtractEntitiesDedup(t *testing.T) {
	entities := ExtractEntities("Republic Act No. 9262 and Republic Act No. 9262 again")
	if len(entities) != 1 {
		t.Fatalf("duplicates not collapsed: %d entities", len(entities))
	}
}

func TestParseLogicalFormPureLookup(t *testing.T) {
	form := ParseLogicalForm("Republic Act No. 9262")
	if form.Operation != OpLookup {
		t.Fatalf("operation = %q, want lookup", form.Operation)
	}
	if len(form.Entities) != 1 || form.Entities[0].Number != "9262" {
		t.Fatalf("entities = %+v", form.Entities)
	}
	if form.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", form.Confidence)
	}
	// Plan must end with rerank then synthesize.
	n := len(form.Steps)
	if n < 3 || form.Steps[n-2].Type != StepRerank || form.Steps[n-1].Type != StepSynthesize {
		t.Fatalf("plan tail = %+v", form.Steps)
	}
	if form.Steps[0].Type != StepExactLookup {
		t.Fatalf("first step = %q", form.Steps[0].Type)
	}
}

func TestParseLogicalFormConceptQuery(t *testing.T) {
	form := ParseLogicalForm("explain res judicata in civil procedure")
	if len(form.Entities) != 0 {
		t.Fatalf("unexpected entities: %+v", form.Entities)
	}
	if form.Intent != IntentExplainConcept {
		t.Fatalf("intent = %q", form.Intent)
	}
	found := false
	for _, kw := range form.ConceptKeywords {
		if kw == "res judicata" {
			found = true
		}
	}
	if !found {
		t.Fatalf("concept catalogue missed res judicata: %v", form.ConceptKeywords)
	}
	if form.Confidence != 0.7 {
		t.Fatalf("confidence = %v, want 0.7", form.Confidence)
	}
}

func TestParseLogicalFormMultiHop(t *testing.T) {
	form := ParseLogicalForm("laws implementing Republic Act No. 6657 and Presidential Decree No. 27")
	if !form.RequiresMultiHop {
		t.Fatal("two entities should flag multi-hop")
	}
	hasTraverse := false
	for _, s := range form.Steps {
		if s.Type == StepGraphTraverse {
			hasTraverse = true
		}
	}
	if !hasTraverse {
		t.Fatalf("plan lacks graph_traverse: %+v", form.Steps)
	}
}

func TestParseLogicalFormEntityWithKeywords(t *testing.T) {
	form := ParseLogicalForm("penalties prescribed under Republic Act No. 9262 for psychological abuse")
	if form.Operation != OpReason {
		t.Fatalf("operation = %q, want reason", form.Operation)
	}
	if len(form.ConceptKeywords) == 0 {
		t.Fatal("keywords stripped entirely")
	}
}

func TestParseLogicalFormNoSignal(t *testing.T) {
	form := ParseLogicalForm("so it is")
	if form.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", form.Confidence)
	}
	if form.Operation != OpSearch {
		t.Fatalf("operation = %q, want search", form.Operation)
	}
}

func TestDetectIntentPriority(t *testing.T) {
	cases := []struct {
		query  string
		intent Intent
	}{
		{"what law governs corporations", IntentFindLaw},
		{"ruling on psychological incapacity", IntentFindCase},
		{"define certiorari", IntentExplainConcept},
		{"difference between libel and slander", IntentCompareLaws},
		{"draft a demand letter", IntentDraft},
		{"land ownership requirements foreigners", IntentGeneralResearch},
	}
	for _, c := range cases {
		if got := detectIntent(c.query, nil); got != c.intent {
			t.Fatalf("%q: intent = %q, want %q", c.query, got, c.intent)
		}
	}
}
