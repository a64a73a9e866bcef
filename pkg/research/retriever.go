package research

import (
	"context"
	"fmt"
	"strings"

	"deep-research-be/pkg/embedding"
)

// GraphHit is one scored knowledge-graph match.
type GraphHit struct {
	Label      string
	Name       string
	Summary    string
	Similarity float64
}

// GraphSearcher runs a nearest-neighbor lookup against one node label.
// Implementations are expected to scope results to the run's owner.
type GraphSearcher interface {
	SearchByLabel(ctx context.Context, embedding []float32, label string, limit int) ([]GraphHit, error)
}

// Retriever gathers knowledge-graph evidence for a sub-query: it embeds
// the text (cache-checked by the provider wrapper) and searches the
// vector index of every configured node label.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	graph    GraphSearcher
	labels   []string
	limit    int
}

func NewRetriever(embedder embedding.EmbeddingProvider, graph GraphSearcher, labels []string, limit int) *Retriever {
	if limit <= 0 {
		limit = 3
	}
	return &Retriever{
		embedder: embedder,
		graph:    graph,
		labels:   labels,
		limit:    limit,
	}
}

// GraphEvidence never returns an error: any failure yields a descriptive
// "no information found" string so one broken lookup cannot abort a run.
func (r *Retriever) GraphEvidence(ctx context.Context, subQuery string) string {
	res, err := r.embedder.Generate(subQuery, "RETRIEVAL_QUERY")
	if err != nil {
		return noGraphInformation(subQuery)
	}

	var b strings.Builder
	hitCount := 0
	for _, label := range r.labels {
		hits, err := r.graph.SearchByLabel(ctx, res.Embedding.Values, label, r.limit)
		if err != nil {
			continue
		}
		for _, hit := range hits {
			b.WriteString(fmt.Sprintf("- [%s] %s (similarity %.2f): %s\n", hit.Label, hit.Name, hit.Similarity, hit.Summary))
			hitCount++
		}
	}

	if hitCount == 0 {
		return noGraphInformation(subQuery)
	}
	return b.String()
}

func noGraphInformation(subQuery string) string {
	return fmt.Sprintf("No information found in the knowledge graph for: %s", subQuery)
}
