package corpus

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// stopWords are tokens carrying no retrieval signal in legal queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true,
	"by": true, "from": true, "as": true, "and": true, "or": true, "but": true,
	"not": true, "it": true, "its": true, "this": true, "that": true,
	"what": true, "which": true, "who": true, "whom": true, "how": true,
	"when": true, "where": true, "why": true, "can": true, "may": true,
	"shall": true, "will": true, "do": true, "does": true, "did": true,
	"has": true, "have": true, "had": true, "about": true, "under": true,
}

// Keywords lowercases and tokenizes a query, dropping stop words and tokens
// of length <= 2.
func Keywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 2 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// ScoreDocument scores text against keywords: +5 per title hit, +4 per
// number hit, and each body occurrence counts +1 capped at 10 per keyword.
// Returns 0 when keywords is empty.
func ScoreDocument(text, titleLower, numberLower string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	textLower := strings.ToLower(text)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(titleLower, kw) {
			score += 5
		}
		if numberLower != "" && strings.Contains(numberLower, kw) {
			score += 4
		}
		hits := strings.Count(textLower, kw)
		if hits > 10 {
			hits = 10
		}
		score += hits
	}
	return float64(score)
}

// Index is the filesystem knowledge index: keyword search across the corpus
// folder table with per-folder sampling caps.
type Index struct {
	store     DocumentStore
	folders   []Folder
	sampleCap int
	logger    *log.Logger
}

// NewIndex creates a filesystem knowledge index. sampleCap bounds how many
// non-matching files per folder are opened for content-only scoring.
func NewIndex(store DocumentStore, folders []Folder, sampleCap int) *Index {
	if sampleCap <= 0 {
		sampleCap = 50
	}
	return &Index{
		store:     store,
		folders:   folders,
		sampleCap: sampleCap,
		logger:    log.New(log.Writer(), "[CORPUS] ", log.LstdFlags),
	}
}

// Folders returns the folder table restricted by source filters.
func (ix *Index) Folders(sourceFilters []string) []Folder {
	return FilterFolders(ix.folders, sourceFilters)
}

// Store exposes the underlying document store.
func (ix *Index) Store() DocumentStore {
	return ix.store
}

// Search scans the (filtered) folder table for documents matching the query
// keywords, scored and snippeted. Folder scans run concurrently; unreadable
// files are skipped. A keyword-less query returns an empty context.
func (ix *Index) Search(ctx context.Context, query string, sourceFilters []string, limit int) (Context, error) {
	if limit <= 0 {
		limit = 8
	}
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return Context{Query: query}, nil
	}

	folders := FilterFolders(ix.folders, sourceFilters)

	var (
		mu         sync.Mutex
		candidates []Result
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, folder := range folders {
		folder := folder
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results := ix.scanFolder(folder, keywords)
			mu.Lock()
			candidates = append(candidates, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Context{Query: query}, err
	}

	SortByScore(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return Context{Query: query, Results: candidates, TotalResults: len(candidates)}, nil
}

// scanFolder scores every filename-matching file plus a bounded sample of
// the rest.
func (ix *Index) scanFolder(folder Folder, keywords []string) []Result {
	files, err := ix.store.List(folder.Path)
	if err != nil || len(files) == 0 {
		return nil
	}

	var toScan []FileEntry
	sampled := 0
	for _, f := range files {
		if filenameMatches(f.Filename, keywords) {
			toScan = append(toScan, f)
		} else if sampled < ix.sampleCap {
			toScan = append(toScan, f)
			sampled++
		}
	}

	var out []Result
	for _, f := range toScan {
		raw, err := ix.store.Read(f.RelPath)
		if err != nil {
			continue
		}
		text := HTMLToText(raw)
		meta := ParseFileMeta(f.Filename)
		year := f.YearFolder
		if year == "" {
			year = meta.Year
		}

		score := ScoreDocument(text, strings.ToLower(meta.Title), strings.ToLower(meta.Number), keywords)
		if score <= 0 {
			continue
		}

		snippet := ExtractSnippet(text, keywords, 600)
		out = append(out, Result{
			DocumentID:   EncodeDocID(f.RelPath),
			Title:        meta.Title,
			Category:     folder.Category,
			Subcategory:  folder.Subcategory,
			Number:       meta.Number,
			Date:         year,
			Summary:      head(snippet, 350),
			RelevantText: snippet,
			Score:        score,
			RelativePath: f.RelPath,
			Provenance:   ProvenanceKeyword,
		})
	}
	return out
}

func filenameMatches(filename string, keywords []string) bool {
	fl := strings.ToLower(filename)
	for _, kw := range keywords {
		if strings.Contains(fl, kw) {
			return true
		}
	}
	return false
}

// SortByScore orders by score descending with document id as the
// deterministic tie-breaker.
func SortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
