package research

import (
	"context"
	"fmt"
	"strings"

	"deep-research-be/pkg/websearch"
)

// WebWorker gathers open-web evidence for a sub-query.
type WebWorker struct {
	search         websearch.SearchProvider
	maxResults     int
	includeContent bool
}

func NewWebWorker(search websearch.SearchProvider, maxResults int, includeContent bool) *WebWorker {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &WebWorker{
		search:         search,
		maxResults:     maxResults,
		includeContent: includeContent,
	}
}

// Search never returns an error: a failed lookup yields a placeholder
// string and no citations.
func (w *WebWorker) Search(ctx context.Context, subQuery string) (string, []websearch.Source) {
	result, err := w.search.Search(ctx, subQuery, w.maxResults, w.includeContent)
	if err != nil {
		return fmt.Sprintf("Web search unavailable for: %s", subQuery), nil
	}

	var b strings.Builder
	b.WriteString(result.Answer)
	if len(result.Sources) > 0 {
		b.WriteString("\n\nSources:\n")
		for _, src := range result.Sources {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", src.Title, src.URL))
		}
	}
	return b.String(), result.Sources
}
