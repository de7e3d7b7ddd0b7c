package corpus

// Provenance records which retrieval stage produced a result.
type Provenance string

const (
	ProvenanceExactMatch   Provenance = "exact_match"
	ProvenanceMultiHop     Provenance = "multi_hop"
	ProvenanceSchemaLookup Provenance = "schema_lookup"
	ProvenanceKeyword      Provenance = "keyword"
	ProvenanceUserFile     Provenance = "user_file"
)

// Result is one retrieved document reference. Every Result must be
// traceable to a real corpus document; stages never fabricate one.
// Score adjustments produce new values rather than mutating in place.
type Result struct {
	DocumentID     string     `json:"document_id"`
	Title          string     `json:"title"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory"`
	Number         string     `json:"number,omitempty"`
	Date           string     `json:"date,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	RelevantText   string     `json:"relevant_text,omitempty"`
	Score          float64    `json:"score"`
	RelativePath   string     `json:"relative_path"`
	Provenance     Provenance `json:"provenance,omitempty"`
	HopDepth       int        `json:"hop_depth"`
	ReasoningChain []string   `json:"reasoning_chain,omitempty"`
}

// WithScore returns a copy of the result carrying a new score.
func (r Result) WithScore(score float64) Result {
	r.Score = score
	return r
}

// Context is the outcome of one retrieval pass.
type Context struct {
	Query        string   `json:"query"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}
