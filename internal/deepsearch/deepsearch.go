// Package deepsearch is the iterative retrieval orchestrator: it decomposes
// a question into sub-queries, fans them out across the corpus (and the
// user-document index when present), merges and reranks the pooled results,
// and synthesizes a citation-grounded answer through the completion
// provider.
package deepsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jusconsultus/lexsearch/config"
	"github.com/jusconsultus/lexsearch/internal/cache"
	"github.com/jusconsultus/lexsearch/internal/corpus"
	"github.com/jusconsultus/lexsearch/internal/kag"
	"github.com/jusconsultus/lexsearch/internal/telemetry"
	"github.com/jusconsultus/lexsearch/internal/userdocs"
	"github.com/jusconsultus/lexsearch/provider"
)

const (
	defaultMaxSources    = 15
	defaultMaxSubQueries = 3
	deepThinkSubQueries  = 5
	historyTurnBytes     = 1500

	synthesisMaxTokens = 2048
	deepThinkMaxTokens = 8192
)

// Options tunes a single DeepAnswer call. The zero value uses the engine
// defaults.
type Options struct {
	// Mode selects the response style (standard_v2, concise, professional,
	// educational, simple_english).
	Mode string `json:"mode,omitempty"`
	// ChatMode selects the task framing (find, explain, draft, digest,
	// analyze).
	ChatMode        string             `json:"chat_mode,omitempty"`
	SourceFilters   []string           `json:"source_filters,omitempty"`
	IncludeUserDocs bool               `json:"include_user_docs,omitempty"`
	MaxSources      int                `json:"max_sources,omitempty"`
	MaxSubQueries   int                `json:"max_sub_queries,omitempty"`
	History         []provider.Message `json:"history,omitempty"`
	DeepThink       bool               `json:"deep_think,omitempty"`
}

// StepType identifies a pipeline stage in the progress trace.
type StepType string

const (
	StepDecompose  StepType = "decompose"
	StepSearch     StepType = "search"
	StepEvaluate   StepType = "evaluate"
	StepSynthesize StepType = "synthesize"
)

// Step is a progress record for one pipeline stage. Reporting only; it has
// no effect on retrieval.
type Step struct {
	ID          string    `json:"id"`
	Type        StepType  `json:"type"`
	Label       string    `json:"label"`
	Detail      string    `json:"detail,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Answer is the outcome of one DeepAnswer call. Fallback marks answers
// produced without the provider (canned research note).
type Answer struct {
	Answer              string          `json:"answer"`
	Sources             []corpus.Result `json:"sources"`
	Steps               []Step          `json:"steps"`
	SubQueries          []string        `json:"sub_queries"`
	TotalSourcesScanned int             `json:"total_sources_scanned"`
	Fallback            bool            `json:"fallback,omitempty"`
}

// Engine wires the retrieval stages together. Stateless per call apart
// from the cache; conversation history arrives with each request.
type Engine struct {
	index    *corpus.Index
	searcher *kag.Searcher
	provider provider.CompletionProvider
	cache    *cache.Cache
	userDocs *userdocs.Index
	metrics  *telemetry.Metrics

	deepThinkModel string
	maxSources     int
	maxSubQueries  int
	answerTTL      time.Duration
	deepThinkTTL   time.Duration
	queryTTL       time.Duration

	logger *log.Logger
}

func NewEngine(
	index *corpus.Index,
	searcher *kag.Searcher,
	prov provider.CompletionProvider,
	store *cache.Cache,
	userDocs *userdocs.Index,
	metrics *telemetry.Metrics,
	searchCfg config.SearchConfig,
	llmCfg config.LLMConfig,
	cacheCfg config.CacheConfig,
) *Engine {
	maxSources := searchCfg.MaxSources
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	maxSubQueries := searchCfg.MaxSubQueries
	if maxSubQueries <= 0 {
		maxSubQueries = defaultMaxSubQueries
	}
	return &Engine{
		index:          index,
		searcher:       searcher,
		provider:       prov,
		cache:          store,
		userDocs:       userDocs,
		metrics:        metrics,
		deepThinkModel: llmCfg.DeepThinkModel,
		maxSources:     maxSources,
		maxSubQueries:  maxSubQueries,
		answerTTL:      cacheCfg.AnswerTTL,
		deepThinkTTL:   cacheCfg.DeepThinkTTL,
		queryTTL:       cacheCfg.QueryTTL,
		logger:         log.New(log.Writer(), "[DEEPSEARCH] ", log.LstdFlags),
	}
}

// Search is the lightweight single-pass entry point used for suggestions
// and database search. Queries carrying a recognizable instrument
// identifier take the knowledge-graph path; everything else is a plain
// keyword scan.
func (e *Engine) Search(ctx context.Context, query string, sourceFilters []string, limit int) (corpus.Context, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 10
	}

	key := cache.Key("query", query, strings.Join(sourceFilters, ","), fmt.Sprintf("%d", limit))
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, key); ok {
			e.metrics.RecordCache("query", true)
			var cached corpus.Context
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else {
			e.metrics.RecordCache("query", false)
		}
	}

	result, err := e.retrievalPass(ctx, query, sourceFilters, limit)
	if err != nil {
		e.metrics.RecordSearch("quick", "error", time.Since(start))
		return corpus.Context{}, err
	}
	e.metrics.RecordSearch("quick", "ok", time.Since(start))
	e.metrics.RecordScanned(result.TotalResults)

	if e.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			e.cache.Set(ctx, key, string(data), e.queryTTL)
		}
	}
	return result, nil
}

// retrievalPass runs one search with the given query: knowledge-graph
// retrieval when the logical form carries entities, keyword retrieval
// otherwise.
func (e *Engine) retrievalPass(ctx context.Context, query string, sourceFilters []string, limit int) (corpus.Context, error) {
	form := kag.ParseLogicalForm(query)
	if len(form.Entities) > 0 && e.searcher != nil {
		res, err := e.searcher.Search(ctx, query, kag.Options{
			MaxResults:     limit,
			EnableMultiHop: form.RequiresMultiHop,
		})
		if err != nil {
			return corpus.Context{}, err
		}
		return res.Context, nil
	}
	return e.index.Search(ctx, query, sourceFilters, limit)
}

// DeepAnswer executes the full pipeline: decompose, fan-out retrieval,
// evaluate, synthesize. It always returns a usable Answer; provider
// failures degrade to a canned research note tagged Fallback.
func (e *Engine) DeepAnswer(ctx context.Context, query string, opts Options) (Answer, error) {
	start := time.Now()

	maxSources := opts.MaxSources
	if maxSources <= 0 {
		maxSources = e.maxSources
	}
	maxSubQueries := opts.MaxSubQueries
	if maxSubQueries <= 0 {
		maxSubQueries = e.maxSubQueries
	}
	if opts.DeepThink {
		maxSources *= 2
		maxSubQueries = deepThinkSubQueries
	}

	cacheKey := cache.Key("deepsearch",
		query,
		opts.Mode, opts.ChatMode,
		strings.Join(opts.SourceFilters, ","),
		fmt.Sprintf("deep=%t", opts.DeepThink))
	// Only history-free calls hit the cache: a cached answer for turn one
	// is wrong for turn five of the same conversation.
	cacheable := len(opts.History) == 0 && !opts.IncludeUserDocs
	if cacheable && e.cache != nil {
		if raw, ok := e.cache.Get(ctx, cacheKey); ok {
			e.metrics.RecordCache("deepsearch", true)
			var cached Answer
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else {
			e.metrics.RecordCache("deepsearch", false)
		}
	}

	var steps []Step

	// Decompose and run the first retrieval pass with the original query
	// concurrently. The initial pass uses a reduced cap; decomposed
	// sub-queries fill in the rest.
	decomposeStep := newStep(StepDecompose, "Analyzing your question", "Breaking down into focused legal research queries")
	searchStep := newStep(StepSearch, "Searching legal database", query)

	type decomposed struct{ subQueries []string }
	decomposeCh := make(chan decomposed, 1)
	go func() {
		decomposeCh <- decomposed{e.Decompose(ctx, query, opts.ChatMode, opts.History)}
	}()

	initialCap := (maxSources*6 + 9) / 10
	pooled, totalScanned := e.retrieve(ctx, []string{query}, opts, initialCap)

	dec := <-decomposeCh
	decomposeStep = completeStep(decomposeStep)

	subQueries := dec.subQueries
	if len(subQueries) > maxSubQueries {
		subQueries = subQueries[:maxSubQueries]
	}

	var extra []string
	for _, sq := range subQueries {
		if !strings.EqualFold(strings.TrimSpace(sq), strings.TrimSpace(query)) {
			extra = append(extra, sq)
		}
	}
	if len(extra) > 0 {
		extraResults, extraScanned := e.retrieve(ctx, extra, opts, maxSources)
		pooled = append(pooled, extraResults...)
		totalScanned += extraScanned
	}

	searchStep.Label = fmt.Sprintf("Searched %d queries across legal database", len(extra)+1)
	searchStep.Detail = strings.Join(append([]string{query}, extra...), " | ")
	searchStep = completeStep(searchStep)

	evalStep := newStep(StepEvaluate, fmt.Sprintf("Evaluating %d documents", len(pooled)), "Scoring relevance, deduplicating, and ranking")
	ranked := Evaluate(pooled, query, maxSources)
	evalStep = completeStep(evalStep)

	synthStep := newStep(StepSynthesize, "Generating comprehensive legal analysis", fmt.Sprintf("Using %d sources", len(ranked)))
	answerText, fallback := e.synthesize(ctx, query, ranked, subQueries, opts)
	synthStep = completeStep(synthStep)

	steps = append(steps, decomposeStep, searchStep, evalStep, synthStep)

	result := Answer{
		Answer:              answerText,
		Sources:             ranked,
		Steps:               steps,
		SubQueries:          subQueries,
		TotalSourcesScanned: totalScanned,
		Fallback:            fallback,
	}

	status := "ok"
	if fallback {
		status = "fallback"
	}
	e.metrics.RecordSearch("deep", status, time.Since(start))
	e.metrics.RecordScanned(totalScanned)

	if cacheable && !fallback && e.cache != nil {
		ttl := e.answerTTL
		if opts.DeepThink {
			ttl = e.deepThinkTTL
		}
		if data, err := json.Marshal(result); err == nil {
			e.cache.Set(ctx, cacheKey, string(data), ttl)
		}
	}
	return result, nil
}

// synthesize calls the provider with the grounding prompt and the trailing
// conversation turns. Any failure yields the offline research note.
func (e *Engine) synthesize(ctx context.Context, query string, sources []corpus.Result, subQueries []string, opts Options) (string, bool) {
	prompt := BuildPrompt(sources, subQueries, opts)

	messages := []provider.Message{{Role: "system", Content: prompt}}
	history := opts.History
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	for _, h := range history {
		messages = append(messages, provider.Message{Role: h.Role, Content: head(h.Content, historyTurnBytes)})
	}
	messages = append(messages, provider.Message{Role: "user", Content: query})

	callOpts := provider.Options{Temperature: 0.3, MaxTokens: synthesisMaxTokens}
	if opts.DeepThink {
		callOpts = provider.Options{
			Model:       e.deepThinkModel,
			Temperature: 1,
			MaxTokens:   deepThinkMaxTokens,
		}
	}

	if e.provider == nil {
		return offlineAnswer(query, sources), true
	}
	start := time.Now()
	answer, err := e.provider.Complete(ctx, messages, callOpts)
	if err != nil {
		e.metrics.RecordProviderCall("synthesize", "error", time.Since(start))
		if !errors.Is(err, provider.ErrNotConfigured) {
			e.logger.Printf("synthesis failed, returning offline answer: %v", err)
		}
		return offlineAnswer(query, sources), true
	}
	e.metrics.RecordProviderCall("synthesize", "ok", time.Since(start))
	return answer, false
}

// offlineAnswer is the deterministic degraded-mode response used when the
// provider is unconfigured or failing. It names the thin coverage instead
// of pretending at analysis.
func offlineAnswer(query string, sources []corpus.Result) string {
	var b strings.Builder
	b.WriteString("**Legal Context:** Automated analysis is temporarily unavailable; below are the documents retrieved for your question so you can review them directly.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	if len(sources) == 0 {
		b.WriteString("No matching documents were found in the legal database for this query. Try rephrasing with a specific statute number, case title, or legal doctrine.\n")
	} else {
		b.WriteString("**Retrieved Documents:**\n")
		for i, r := range sources {
			fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
			if r.Number != "" && r.Number != r.Title {
				fmt.Fprintf(&b, " (%s)", r.Number)
			}
			if r.Date != "" {
				fmt.Fprintf(&b, ", %s", r.Date)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nThis listing is based solely on keyword retrieval; no legal analysis has been applied. Consult a lawyer for advice on your specific situation.\n")
	}
	b.WriteString("\n## Suggested Follow-Up Topics\n- Retry this question once the analysis service is back\n- Search for a specific statute or case number\n- Browse the retrieved documents above\n")
	return b.String()
}

func newStep(t StepType, label, detail string) Step {
	return Step{
		ID:        uuid.NewString(),
		Type:      t,
		Label:     label,
		Detail:    detail,
		StartedAt: time.Now(),
	}
}

func completeStep(s Step) Step {
	s.CompletedAt = time.Now()
	return s
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
