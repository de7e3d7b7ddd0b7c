package kag

import (
	"context"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

const (
	exactMatchScore = 100
	// exactMatchPriority is applied only while comparing duplicates; it
	// never persists in an emitted score.
	exactMatchPriority = 50

	strictCandidateCap = 3
	broadCandidateCap  = 3
	defaultHopCap      = 3
	defaultSampleCap   = 5
)

// Options tune one KAG search.
type Options struct {
	MaxResults     int
	EnableMultiHop bool
	TraversalDepth int
}

// SearchResult bundles the logical form with the ranked retrieval output.
type SearchResult struct {
	LogicalForm LogicalForm     `json:"logical_form"`
	Context     corpus.Context  `json:"context"`
	Results     []corpus.Result `json:"results"`
	Modes       []string        `json:"modes"`
}

// Searcher executes logical-form retrieval plans against the corpus:
// exact lookup, bounded graph traversal and schema-constrained concept
// search.
type Searcher struct {
	store     corpus.DocumentStore
	folders   []corpus.Folder
	hopCap    int
	sampleCap int
	logger    *log.Logger
}

// NewSearcher creates a KAG searcher over the given document store and
// folder table. hopCap bounds referenced-entity lookups per traversal;
// sampleCap bounds content-only file scans per folder in concept search.
func NewSearcher(store corpus.DocumentStore, folders []corpus.Folder, hopCap, sampleCap int) *Searcher {
	if hopCap <= 0 {
		hopCap = defaultHopCap
	}
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}
	return &Searcher{
		store:     store,
		folders:   folders,
		hopCap:    hopCap,
		sampleCap: sampleCap,
		logger:    log.New(log.Writer(), "[KAG] ", log.LstdFlags),
	}
}

// folderByPath resolves a schema folder path against the configured table.
func (s *Searcher) folderByPath(path string) (corpus.Folder, bool) {
	for _, f := range s.folders {
		if f.Path == path {
			return f, true
		}
	}
	return corpus.Folder{}, false
}

// Search parses the query into a logical form and executes its plan steps.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (SearchResult, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.TraversalDepth <= 0 {
		opts.TraversalDepth = 1
	}

	form := ParseLogicalForm(query)
	var all []corpus.Result
	modeSet := make(map[string]bool)

	for _, step := range form.Steps {
		switch step.Type {
		case StepExactLookup:
			entity, ok := findEntity(form.Entities, step.Target)
			if !ok {
				continue
			}
			var results []corpus.Result
			var err error
			if opts.EnableMultiHop && form.RequiresMultiHop && opts.TraversalDepth > 0 {
				results, err = s.Traverse(ctx, entity, form.ConceptKeywords, opts.TraversalDepth)
			} else {
				results, err = s.ExactLookup(ctx, entity, form.ConceptKeywords)
			}
			if err != nil {
				return SearchResult{}, err
			}
			all = append(all, results...)
			for _, r := range results {
				modeSet[string(r.Provenance)] = true
			}
		case StepSemanticSearch:
			results, err := s.ConceptSearch(ctx, form.ConceptKeywords, form.Intent, opts.MaxResults)
			if err != nil {
				return SearchResult{}, err
			}
			all = append(all, results...)
			for _, r := range results {
				modeSet[string(r.Provenance)] = true
			}
		}
		// graph_traverse runs inside exact_lookup when multi-hop is enabled;
		// rerank and synthesize belong to the caller.
	}

	ranked := rankAndDedup(all, query, opts.MaxResults)

	modes := make([]string, 0, len(modeSet))
	for m := range modeSet {
		modes = append(modes, m)
	}

	s.logger.Printf("query %q: %d entities, intent=%s, %d results", query, len(form.Entities), form.Intent, len(ranked))

	return SearchResult{
		LogicalForm: form,
		Context:     corpus.Context{Query: query, Results: ranked, TotalResults: len(ranked)},
		Results:     ranked,
		Modes:       modes,
	}, nil
}

func findEntity(entities []Entity, normalized string) (Entity, bool) {
	for _, e := range entities {
		if e.Normalized == normalized {
			return e, true
		}
	}
	return Entity{}, false
}

// ExactLookup resolves one entity to its source document(s): candidate
// folders come from the schema table, strict digit matches are preferred,
// digit-containment matches fill in when nothing is strict.
func (s *Searcher) ExactLookup(ctx context.Context, entity Entity, keywords []string) ([]corpus.Result, error) {
	paths := entityFolderPaths[entity.Type]
	if len(paths) == 0 {
		return nil, nil
	}

	var (
		mu  sync.Mutex
		out []corpus.Result
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			folder, ok := s.folderByPath(path)
			if !ok {
				folder = corpus.Folder{Category: "laws", Subcategory: "general", Path: path}
			}
			results := s.lookupInFolder(folder, entity, keywords)
			mu.Lock()
			out = append(out, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Searcher) lookupInFolder(folder corpus.Folder, entity Entity, keywords []string) []corpus.Result {
	files, err := s.store.List(folder.Path)
	if err != nil || len(files) == 0 {
		return nil
	}

	entityDigits := digits(entity.Number)

	var strict, broad []corpus.FileEntry
	for _, f := range files {
		if fileMatchesEntity(f.Filename, entity, entityDigits) {
			strict = append(strict, f)
		}
	}
	if len(strict) == 0 && len(entityDigits) >= 3 {
		for _, f := range files {
			if strings.Contains(digits(f.Filename), entityDigits) {
				broad = append(broad, f)
				if len(broad) == broadCandidateCap {
					break
				}
			}
		}
	}
	if len(strict) > strictCandidateCap {
		strict = strict[:strictCandidateCap]
	}

	var out []corpus.Result
	for _, f := range append(strict, broad...) {
		raw, err := s.store.Read(f.RelPath)
		if err != nil {
			continue
		}
		text := corpus.HTMLToText(raw)

		anchor := append([]string{entity.Number, entity.Normalized}, keywords...)
		snippet := corpus.ExtractSnippet(text, anchor, 700)

		date := f.YearFolder
		if date == "" {
			if meta := corpus.ParseFileMeta(f.Filename); meta.Year != "" {
				date = meta.Year
			} else {
				date = entity.Year
			}
		}

		out = append(out, corpus.Result{
			DocumentID:   corpus.EncodeDocID(f.RelPath),
			Title:        entity.Normalized,
			Category:     folder.Category,
			Subcategory:  folder.Subcategory,
			Number:       entity.Normalized,
			Date:         date,
			Summary:      head(snippet, 300),
			RelevantText: snippet,
			Score:        exactMatchScore,
			RelativePath: f.RelPath,
			Provenance:   corpus.ProvenanceExactMatch,
			HopDepth:     0,
			ReasoningChain: []string{
				"Exact lookup: " + string(entity.Type) + " -> " + entity.Normalized,
			},
		})
	}
	return out
}

// fileMatchesEntity reports a strict filename match: the filename's encoded
// instrument number matches the entity's digits exactly, or the filename
// carries the underscore-joined number verbatim.
func fileMatchesEntity(filename string, entity Entity, entityDigits string) bool {
	if entityDigits == "" {
		return false
	}
	meta := corpus.ParseFileMeta(filename)
	if meta.Number != "" && digits(meta.Number) == entityDigits {
		return true
	}
	fl := strings.ToLower(filename)
	joined := strings.ReplaceAll(strings.ToLower(entity.Number), " ", "_")
	return joined != "" && strings.Contains(fl, joined)
}

// Traverse runs exact lookup for the seed, then follows entity references
// found in the seed's own snippet text to pull in related documents at hop
// depth 1. Expansion is bounded to one hop and hopCap referenced entities.
func (s *Searcher) Traverse(ctx context.Context, seed Entity, keywords []string, depth int) ([]corpus.Result, error) {
	seedResults, err := s.ExactLookup(ctx, seed, keywords)
	if err != nil {
		return nil, err
	}
	if len(seedResults) == 0 || depth <= 0 {
		return seedResults, nil
	}

	// Only the first seed document's snippet is scanned for references;
	// rescanning full bodies would change latency materially.
	referenced := ExtractEntities(seedResults[0].RelevantText)
	var related []Entity
	for _, e := range referenced {
		if e.Normalized == seed.Normalized {
			continue
		}
		related = append(related, e)
		if len(related) == s.hopCap {
			break
		}
	}

	var (
		mu  sync.Mutex
		out []corpus.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, rel := range related {
		rel := rel
		g.Go(func() error {
			results, err := s.ExactLookup(gctx, rel, keywords)
			if err != nil {
				return err
			}
			for i := range results {
				results[i].HopDepth = 1
				results[i].Provenance = corpus.ProvenanceMultiHop
				results[i].ReasoningChain = []string{
					"Root: " + seed.Normalized,
					"Referenced in root: " + rel.Normalized,
					"Retrieved: " + results[i].Title,
				}
			}
			mu.Lock()
			out = append(out, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(seedResults, out...), nil
}

// ConceptSearch is the schema-constrained keyword path used when no exact
// identifier is present: folders come from the intent table, filename hits
// are preferred, and a small sample of non-matching files is content
// scanned.
func (s *Searcher) ConceptSearch(ctx context.Context, keywords []string, intent Intent, limit int) ([]corpus.Result, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}

	paths := intentFolderPaths[intent]
	if len(paths) == 0 {
		paths = intentFolderPaths[IntentGeneralResearch]
	}

	var (
		mu  sync.Mutex
		all []corpus.Result
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			folder, ok := s.folderByPath(path)
			if !ok {
				return nil
			}
			results := s.conceptScanFolder(folder, keywords, intent)
			mu.Lock()
			all = append(all, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	corpus.SortByScore(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Searcher) conceptScanFolder(folder corpus.Folder, keywords []string, intent Intent) []corpus.Result {
	files, err := s.store.List(folder.Path)
	if err != nil || len(files) == 0 {
		return nil
	}

	var toScan []corpus.FileEntry
	sampled := 0
	for _, f := range files {
		fl := strings.ToLower(f.Filename)
		matched := false
		for _, kw := range keywords {
			if strings.Contains(fl, kw) {
				matched = true
				break
			}
		}
		if matched {
			toScan = append(toScan, f)
		} else if sampled < s.sampleCap {
			toScan = append(toScan, f)
			sampled++
		}
	}

	var out []corpus.Result
	for _, f := range toScan {
		raw, err := s.store.Read(f.RelPath)
		if err != nil {
			continue
		}
		text := corpus.HTMLToText(raw)
		textLower := strings.ToLower(text)
		fl := strings.ToLower(f.Filename)

		score := 0
		for _, kw := range keywords {
			if strings.Contains(fl, kw) {
				score += 5
			}
			hits := strings.Count(textLower, kw)
			if hits > 10 {
				hits = 10
			}
			score += hits
		}
		if score == 0 {
			continue
		}

		snippet := corpus.ExtractSnippet(text, keywords, 600)
		meta := corpus.ParseFileMeta(f.Filename)
		date := f.YearFolder
		if date == "" {
			date = meta.Year
		}

		out = append(out, corpus.Result{
			DocumentID:   corpus.EncodeDocID(f.RelPath),
			Title:        meta.Title,
			Category:     folder.Category,
			Subcategory:  folder.Subcategory,
			Number:       meta.Number,
			Date:         date,
			Summary:      head(snippet, 300),
			RelevantText: snippet,
			Score:        float64(score),
			RelativePath: f.RelPath,
			Provenance:   corpus.ProvenanceSchemaLookup,
			ReasoningChain: []string{
				"Schema-constrained search: intent=" + string(intent) + ", keywords=" + strings.Join(headN(keywords, 3), ", "),
			},
		})
	}
	return out
}

// rankAndDedup deduplicates by document id, preferring exact matches via a
// transient priority bonus, then boosts by original-query keyword hits and
// recency before sorting and truncating. Emitted scores never carry the
// priority bonus.
func rankAndDedup(results []corpus.Result, query string, limit int) []corpus.Result {
	priority := func(r corpus.Result) float64 {
		if r.Provenance == corpus.ProvenanceExactMatch {
			return r.Score + exactMatchPriority
		}
		return r.Score
	}

	seen := make(map[string]corpus.Result)
	var order []string
	for _, r := range results {
		existing, ok := seen[r.DocumentID]
		if !ok {
			seen[r.DocumentID] = r
			order = append(order, r.DocumentID)
			continue
		}
		if priority(r) > priority(existing) {
			seen[r.DocumentID] = r
		}
	}

	queryKeywords := shortKeywords(query)
	ranked := make([]corpus.Result, 0, len(order))
	for _, id := range order {
		r := seen[id]
		ranked = append(ranked, r.WithScore(r.Score+relevanceBonus(r, queryKeywords)))
	}

	corpus.SortByScore(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// relevanceBonus rewards original-query keyword hits (+2 title, +1 snippet)
// and recency (+2 for 2020 onward, +1 for 2010 onward).
func relevanceBonus(r corpus.Result, queryKeywords []string) float64 {
	bonus := 0.0
	titleLower := strings.ToLower(r.Title)
	textLower := strings.ToLower(r.RelevantText)
	for _, kw := range queryKeywords {
		if strings.Contains(titleLower, kw) {
			bonus += 2
		}
		if strings.Contains(textLower, kw) {
			bonus++
		}
	}
	if year := yearOf(r.Date); year >= 2020 {
		bonus += 2
	} else if year >= 2010 {
		bonus++
	}
	return bonus
}

// shortKeywords tokenizes with the looser length>2 rule used for scoring
// bonuses.
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

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func headN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}
