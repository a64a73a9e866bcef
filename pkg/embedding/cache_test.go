package embedding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingProvider records how many times Generate reaches the backend.
type countingProvider struct {
	calls int
}

func (p *countingProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	p.calls++
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: []float32{float32(len(text))}},
	}, nil
}

func TestCachedProviderSuppressesSecondCall(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 8)

	_, err := cached.Generate("What is Go?", "RETRIEVAL_QUERY")
	assert.NoError(t, err)
	assert.Equal(t, 1, backend.calls)

	// Same normalized text must be served from cache.
	_, err = cached.Generate("  what   is GO? ", "RETRIEVAL_QUERY")
	assert.NoError(t, err)
	assert.Equal(t, 1, backend.calls)

	// Different task type is a different key.
	_, err = cached.Generate("What is Go?", "RETRIEVAL_DOCUMENT")
	assert.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedProviderEvictsLeastRecentlyUsed(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 2)

	_, _ = cached.Generate("alpha", "q")
	_, _ = cached.Generate("beta", "q")

	// Touch alpha so beta becomes the eviction candidate.
	_, _ = cached.Generate("alpha", "q")
	assert.Equal(t, 2, backend.calls)

	_, _ = cached.Generate("gamma", "q")
	assert.Equal(t, 2, cached.Len())

	// beta was evicted, alpha was not.
	_, _ = cached.Generate("alpha", "q")
	assert.Equal(t, 3, backend.calls)
	_, _ = cached.Generate("beta", "q")
	assert.Equal(t, 4, backend.calls)
}

func TestCachedProviderCapacityBound(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 16)

	for i := 0; i < 100; i++ {
		_, _ = cached.Generate(fmt.Sprintf("query %d", i), "q")
	}
	assert.Equal(t, 16, cached.Len())
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  spaced \t out \n text ", "spaced out text"},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
