// Package userdocs holds an in-memory full-text index over documents a
// user uploads alongside a query (contracts, pleadings, case files). Results
// surface next to corpus hits so answers can ground on the user's own
// materials.
package userdocs

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
	readability "github.com/go-shiori/go-readability"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

const (
	chunkSize    = 800
	chunkOverlap = 200
)

// DocInput is a single uploaded document. HTML is stripped to readable
// text before indexing; plain text is indexed as-is.
type DocInput struct {
	Name string
	Text string
	HTML string
}

type docChunk struct {
	DocID string `json:"doc_id"`
	Name  string `json:"name"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Index is a per-session, memory-only bleve index.
type Index struct {
	mu     sync.RWMutex
	bleve  bleve.Index
	meta   map[string]docChunk
	logger *log.Logger
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{
		bleve:  idx,
		meta:   make(map[string]docChunk),
		logger: log.New(log.Writer(), "[USERDOCS] ", log.LstdFlags),
	}, nil
}

// Add extracts text from the document, chunks it and indexes every chunk.
// Returns the number of chunks indexed.
func (ix *Index) Add(doc DocInput) (int, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" && doc.HTML != "" {
		article, err := readability.FromReader(strings.NewReader(doc.HTML), &url.URL{Path: doc.Name})
		if err != nil {
			return 0, fmt.Errorf("extracting %s: %w", doc.Name, err)
		}
		text = strings.TrimSpace(article.TextContent)
	}
	if text == "" {
		return 0, nil
	}

	hash := sha1Hex(text)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	count := 0
	for i, part := range makeChunks(text, chunkSize, chunkOverlap) {
		chunk := docChunk{
			DocID: fmt.Sprintf("%s#%03d", hash, i),
			Name:  doc.Name,
			Text:  part,
			Index: i,
		}
		if err := ix.bleve.Index(chunk.DocID, chunk); err != nil {
			return count, fmt.Errorf("indexing chunk %d of %s: %w", i, doc.Name, err)
		}
		ix.meta[chunk.DocID] = chunk
		count++
	}
	return count, nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.meta)
}

// Search runs a BM25 query and returns the top k chunks as retrieval
// results tagged with user-file provenance.
func (ix *Index) Search(q string, k int) ([]corpus.Result, error) {
	if strings.TrimSpace(q) == "" || k <= 0 {
		return nil, nil
	}
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	ix.mu.RLock()
	res, err := ix.bleve.Search(searchReq)
	if err != nil {
		ix.mu.RUnlock()
		return nil, fmt.Errorf("searching user documents: %w", err)
	}
	var out []corpus.Result
	for _, hit := range res.Hits {
		chunk, ok := ix.meta[hit.ID]
		if !ok {
			continue
		}
		out = append(out, corpus.Result{
			DocumentID:   "userdoc:" + hit.ID,
			Title:        chunk.Name,
			Category:     "user",
			Subcategory:  "uploaded",
			Summary:      head(chunk.Text, 200),
			RelevantText: chunk.Text,
			Score:        hit.Score,
			Provenance:   corpus.ProvenanceUserFile,
		})
		if len(out) >= k {
			break
		}
	}
	ix.mu.RUnlock()
	return out, nil
}

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

func makeChunks(text string, approx, overlap int) []string {
	if len(text) <= approx {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(text); {
		end := start + approx
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
