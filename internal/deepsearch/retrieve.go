package deepsearch

import (
	"context"
	"sync"

	"github.com/jusconsultus/lexsearch/internal/corpus"
)

const userDocsPerQuery = 5

// retrieve fans the sub-queries out concurrently: one corpus pass per
// sub-query, plus one user-document search per sub-query when enabled.
// Per-query failures are logged and skipped; a retrieval pass never takes
// the pipeline down.
func (e *Engine) retrieve(ctx context.Context, subQueries []string, opts Options, maxSources int) ([]corpus.Result, int) {
	perQuery := maxSources/len(subQueries) + 3

	type passOutcome struct {
		results []corpus.Result
		scanned int
	}
	outcomes := make([]passOutcome, len(subQueries))
	userOutcomes := make([]passOutcome, len(subQueries))

	var wg sync.WaitGroup
	for i, sq := range subQueries {
		i, sq := i, sq
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.retrievalPass(ctx, sq, opts.SourceFilters, perQuery)
			if err != nil {
				e.logger.Printf("retrieval pass %q: %v", sq, err)
				return
			}
			outcomes[i] = passOutcome{results: res.Results, scanned: res.TotalResults}
		}()

		if opts.IncludeUserDocs && e.userDocs != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := e.userDocs.Search(sq, userDocsPerQuery)
				if err != nil {
					e.logger.Printf("user document search %q: %v", sq, err)
					return
				}
				userOutcomes[i] = passOutcome{results: res, scanned: len(res)}
			}()
		}
	}
	wg.Wait()

	var pooled []corpus.Result
	totalScanned := 0
	for _, o := range outcomes {
		pooled = append(pooled, o.results...)
		totalScanned += o.scanned
	}
	for _, o := range userOutcomes {
		pooled = append(pooled, o.results...)
		totalScanned += o.scanned
	}
	return pooled, totalScanned
}
