package kag

import (
	"regexp"
	"strings"
)

// EntityType enumerates the typed legal-instrument schema.
type EntityType string

const (
	EntitySupremeCourtCase    EntityType = "supreme_court_case"
	EntityRepublicAct         EntityType = "republic_act"
	EntityPresidentialDecree  EntityType = "presidential_decree"
	EntityBatasPambansa       EntityType = "batas_pambansa"
	EntityExecutiveOrder      EntityType = "executive_order"
	EntityAdministrativeOrder EntityType = "administrative_order"
	EntityConstitution        EntityType = "constitution"
	EntityLegalConcept        EntityType = "legal_concept"
	EntityUnknown             EntityType = "unknown"
)

// Entity is one typed legal-instrument reference extracted from text.
// Immutable once produced.
type Entity struct {
	Type       EntityType `json:"type"`
	Raw        string     `json:"raw"`
	Normalized string     `json:"normalized"`
	Number     string     `json:"number,omitempty"`
	Year       string     `json:"year,omitempty"`
}

// Operation is the primary logical operation solving a query.
type Operation string

const (
	OpLookup    Operation = "lookup"
	OpSearch    Operation = "search"
	OpCompare   Operation = "compare"
	OpAggregate Operation = "aggregate"
	OpReason    Operation = "reason"
	OpMultiHop  Operation = "multi_hop"
)

// Intent classifies what kind of answer the query is after.
type Intent string

const (
	IntentFindLaw         Intent = "find_law"
	IntentFindCase        Intent = "find_case"
	IntentExplainConcept  Intent = "explain_concept"
	IntentCompareLaws     Intent = "compare_laws"
	IntentDraft           Intent = "draft"
	IntentGeneralResearch Intent = "general_research"
)

// StepType enumerates logical plan step kinds.
type StepType string

const (
	StepExactLookup    StepType = "exact_lookup"
	StepSemanticSearch StepType = "semantic_search"
	StepGraphTraverse  StepType = "graph_traverse"
	StepFilter         StepType = "filter"
	StepRerank         StepType = "rerank"
	StepSynthesize     StepType = "synthesize"
)

// Step is one ordered retrieval-plan step.
type Step struct {
	Type   StepType               `json:"type"`
	Target string                 `json:"target,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// LogicalForm is the structured representation of a query: its operation,
// entities, plan steps, intent and concept keywords. Created once per query
// and read-only thereafter.
type LogicalForm struct {
	Operation        Operation `json:"operation"`
	Entities         []Entity  `json:"entities"`
	Steps            []Step    `json:"steps"`
	Intent           Intent    `json:"intent"`
	ConceptKeywords  []string  `json:"concept_keywords"`
	RequiresMultiHop bool      `json:"requires_multi_hop"`
	Confidence       float64   `json:"confidence"`
}

// entityRule binds a recognizer pattern to an instrument type and its
// canonical citation prefix. Rules run in order; earlier rules claim their
// spans first.
type entityRule struct {
	re     *regexp.Regexp
	typ    EntityType
	prefix string
}

var entityRules = []entityRule{
	{regexp.MustCompile(`(?i)\bG\.?R\.?\s*Nos?\.?\s*([\d][\d,\s-]*(?:and\s+[\d-]+)?)`), EntitySupremeCourtCase, "G.R. No."},
	{regexp.MustCompile(`(?i)\bRepublic Act\s+(?:No\.?\s*)?([\d][\d,\s]*)`), EntityRepublicAct, "Republic Act No."},
	{regexp.MustCompile(`(?i)\bR\.?A\.?\s*(?:No\.?\s*)?([\d][\d,\s]*)`), EntityRepublicAct, "R.A. No."},
	{regexp.MustCompile(`(?i)\bPresidential Decree\s+(?:No\.?\s*)?([\d][\d,\s]*)`), EntityPresidentialDecree, "Presidential Decree No."},
	{regexp.MustCompile(`(?i)\bP\.?D\.?\s*(?:No\.?\s*)?([\d][\d,\s]*)`), EntityPresidentialDecree, "P.D. No."},
	{regexp.MustCompile(`(?i)\bBatas Pambansa\s+(?:Blg\.?\s*)?([\d][\d,\s]*)`), EntityBatasPambansa, "Batas Pambansa Blg."},
	{regexp.MustCompile(`(?i)\bB\.?P\.?\s*(?:Blg\.?\s*)?([\d][\d,\s]*)`), EntityBatasPambansa, "B.P. Blg."},
	{regexp.MustCompile(`(?i)\bExecutive Order\s+(?:No\.?\s*)?([\d][\d,\s]*)`), EntityExecutiveOrder, "Executive Order No."},
	{regexp.MustCompile(`(?i)\bE\.?O\.?\s*(?:No\.?\s*)?([\d][\d,\s]*)`), EntityExecutiveOrder, "E.O. No."},
	{regexp.MustCompile(`(?i)\bAdministrative Order\s+(?:No\.?\s*)?([\d][\d,\s]*)`), EntityAdministrativeOrder, "Administrative Order No."},
	{regexp.MustCompile(`(?i)\b(1987|1973|1935)\s+(?:Philippine\s+)?Constitution`), EntityConstitution, "Philippine Constitution"},
}

// conceptPatterns is the fixed catalogue of doctrine phrases recognized as
// legal concepts.
var conceptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:due process|equal protection|police power|eminent domain|judicial review)\b`),
	regexp.MustCompile(`(?i)\b(?:res judicata|stare decisis|collateral estoppel|laches|prescription)\b`),
	regexp.MustCompile(`(?i)\b(?:habeas corpus|certiorari|mandamus|prohibition|quo warranto)\b`),
	regexp.MustCompile(`(?i)\b(?:double jeopardy|right to counsel|presumption of innocence|speedy trial)\b`),
	regexp.MustCompile(`(?i)\b(?:labor standards|security of tenure|illegal dismissal|constructive dismissal)\b`),
	regexp.MustCompile(`(?i)\b(?:civil liability|criminal liability|moral damages|exemplary damages)\b`),
	regexp.MustCompile(`(?i)\b(?:land reform|agrarian reform|tenancy|CARP)\b`),
	regexp.MustCompile(`(?i)\b(?:anti-graft|plunder|malversation|bribery|corruption)\b`),
	regexp.MustCompile(`(?i)\b(?:anti-violence|VAWC|domestic violence)\b`),
	regexp.MustCompile(`(?i)\b(?:cybercrime|data privacy)\b`),
}

var queryStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true,
	"by": true, "from": true, "as": true, "and": true, "or": true, "but": true,
	"not": true, "it": true, "its": true, "this": true, "that": true,
	"what": true, "which": true, "who": true, "how": true, "when": true,
	"where": true, "why": true, "can": true, "may": true, "shall": true,
	"will": true, "do": true, "does": true, "did": true, "has": true,
	"have": true, "had": true, "about": true, "under": true, "law": true,
	"laws": true, "case": true, "cases": true, "legal": true,
	"philippines": true, "philippine": true,
}

var (
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	wordStartsAlpha = regexp.MustCompile(`^[a-z]`)

	intentFindLawRe        = regexp.MustCompile(`(?i)\b(what|which|find|get|show|list)\b.*\b(law|act|statute|code|decree)\b`)
	intentFindCaseRe       = regexp.MustCompile(`(?i)\b(case|ruling|decision|jurisprudence|held|doctrine)\b`)
	intentExplainConceptRe = regexp.MustCompile(`(?i)\b(explain|what is|define|meaning|concept|doctrine)\b`)
	intentCompareRe        = regexp.MustCompile(`(?i)\b(compare|difference|versus|vs\.?|between)\b`)
	intentDraftRe          = regexp.MustCompile(`(?i)\b(draft|write|prepare|create|template|format)\b`)
)

// multi-hop trigger keywords: amendment and cross-instrument language.
var multiHopKeywords = map[string]bool{
	"amend": true, "repealed": true, "superseded": true, "pursuant": true,
	"implementing": true,
}

const maxConceptKeywords = 15

// ExtractEntities runs the ordered recognizer rules over text. Duplicate
// normalized labels collapse to one entity.
func ExtractEntities(text string) []Entity {
	var entities []Entity
	seen := make(map[string]bool)
	for _, rule := range entityRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			number := strings.TrimSpace(m[1])
			number = multiSpaceRe.ReplaceAllString(number, " ")
			number = strings.Trim(number, ",- ")
			if number == "" {
				continue
			}
			normalized := rule.prefix + " " + number
			if seen[normalized] {
				continue
			}
			seen[normalized] = true
			entities = append(entities, Entity{
				Type:       rule.typ,
				Raw:        m[0],
				Normalized: normalized,
				Number:     number,
			})
		}
	}
	return entities
}

// ParseLogicalForm turns a free-text query into a logical form: entities,
// concepts, intent, operation and an ordered retrieval plan. Pure function.
func ParseLogicalForm(query string) LogicalForm {
	remaining := query

	entities := ExtractEntities(query)
	for _, e := range entities {
		remaining = strings.Replace(remaining, e.Raw, " ", 1)
	}

	// Doctrine phrases pulled from the fixed concept catalogue.
	var concepts []string
	conceptSeen := make(map[string]bool)
	for _, pattern := range conceptPatterns {
		for _, m := range pattern.FindAllString(query, -1) {
			c := strings.ToLower(strings.TrimSpace(m))
			if conceptSeen[c] {
				continue
			}
			conceptSeen[c] = true
			concepts = append(concepts, c)
			remaining = strings.Replace(remaining, m, " ", 1)
		}
	}

	// Remaining non-stop-word tokens become free keywords.
	keywords := append([]string{}, concepts...)
	kwSeen := make(map[string]bool)
	for _, c := range concepts {
		kwSeen[c] = true
	}
	for _, w := range strings.Fields(strings.ToLower(remaining)) {
		if len(w) <= 3 || queryStopWords[w] || !wordStartsAlpha.MatchString(w) {
			continue
		}
		if kwSeen[w] {
			continue
		}
		kwSeen[w] = true
		keywords = append(keywords, w)
	}
	if len(keywords) > maxConceptKeywords {
		keywords = keywords[:maxConceptKeywords]
	}

	intent := detectIntent(query, entities)

	requiresMultiHop := len(entities) > 1
	for _, kw := range keywords {
		if multiHopKeywords[kw] {
			requiresMultiHop = true
			break
		}
	}

	operation := OpSearch
	switch {
	case len(entities) > 0 && len(keywords) == 0:
		operation = OpLookup
	case len(entities) > 0 && len(keywords) > 0:
		operation = OpReason
	case requiresMultiHop:
		operation = OpMultiHop
	}

	var steps []Step
	for _, e := range entities {
		steps = append(steps, Step{
			Type:   StepExactLookup,
			Target: e.Normalized,
			Params: map[string]interface{}{"type": string(e.Type), "number": e.Number},
		})
	}
	if len(keywords) > 0 {
		target := keywords
		if len(target) > 5 {
			target = target[:5]
		}
		steps = append(steps, Step{
			Type:   StepSemanticSearch,
			Target: strings.Join(target, " "),
			Params: map[string]interface{}{"intent": string(intent)},
		})
	}
	if requiresMultiHop && len(entities) > 0 {
		steps = append(steps, Step{
			Type:   StepGraphTraverse,
			Target: entities[0].Normalized,
			Params: map[string]interface{}{"depth": 1, "relation": "related_law"},
		})
	}
	steps = append(steps, Step{Type: StepRerank}, Step{Type: StepSynthesize})

	// Heuristic confidence: tunable constants, not load-bearing.
	confidence := 0.5
	if len(entities) > 0 {
		confidence = 0.9
	} else if len(keywords) > 0 {
		confidence = 0.7
	}

	return LogicalForm{
		Operation:        operation,
		Entities:         entities,
		Steps:            steps,
		Intent:           intent,
		ConceptKeywords:  keywords,
		RequiresMultiHop: requiresMultiHop,
		Confidence:       confidence,
	}
}

// detectIntent applies priority-ordered phrase heuristics.
func detectIntent(query string, entities []Entity) Intent {
	hasCase := false
	for _, e := range entities {
		if e.Type == EntitySupremeCourtCase {
			hasCase = true
			break
		}
	}
	switch {
	case intentFindLawRe.MatchString(query):
		return IntentFindLaw
	case intentFindCaseRe.MatchString(query) || hasCase:
		return IntentFindCase
	case intentExplainConceptRe.MatchString(query):
		return IntentExplainConcept
	case intentCompareRe.MatchString(query):
		return IntentCompareLaws
	case intentDraftRe.MatchString(query):
		return IntentDraft
	}
	return IntentGeneralResearch
}
