package websearch

import "context"

// Source is a single citable result returned by a search backend.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result carries the synthesized answer text (when the backend produces
// one) plus the sources that backed it.
type Result struct {
	Answer  string
	Sources []Source
}

// SearchProvider executes a web search for a query.
type SearchProvider interface {
	// Search runs the query. maxResults bounds the source list;
	// includeContent asks the backend for full page content where supported.
	Search(ctx context.Context, query string, maxResults int, includeContent bool) (*Result, error)
}
