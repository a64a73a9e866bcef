package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestTavilySearch(t *testing.T) {
	var captured map[string]any
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(body, &captured)
		return jsonResponse(http.StatusOK, map[string]any{
			"answer": "Go is a programming language.",
			"results": []map[string]string{
				{"title": "Go", "url": "https://go.dev", "content": "The Go programming language."},
				{"title": "Go wiki", "url": "https://en.wikipedia.org/wiki/Go", "content": ""},
			},
		}), nil
	})}

	tavily := NewTavilyWithClient("test-key", "", client)
	result, err := tavily.Search(context.Background(), "what is go", 5, false)
	require.NoError(t, err)

	assert.Equal(t, "Go is a programming language.", result.Answer)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "https://go.dev", result.Sources[0].URL)

	assert.Equal(t, "what is go", captured["query"])
	assert.Equal(t, "basic", captured["search_depth"])
	assert.Equal(t, "test-key", captured["api_key"])
}

func TestTavilySearchCapsSources(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"answer": "a",
			"results": []map[string]string{
				{"title": "1", "url": "https://one.example"},
				{"title": "2", "url": "https://two.example"},
				{"title": "3", "url": "https://three.example"},
			},
		}), nil
	})}

	tavily := NewTavilyWithClient("test-key", "", client)
	result, err := tavily.Search(context.Background(), "q", 2, false)
	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
}

func TestTavilySearchAnswerFallsBackToSnippets(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"answer": "",
			"results": []map[string]string{
				{"title": "Doc", "url": "https://doc.example", "content": "snippet text"},
			},
		}), nil
	})}

	tavily := NewTavilyWithClient("test-key", "", client)
	result, err := tavily.Search(context.Background(), "q", 5, false)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "snippet text")
}

func TestTavilySearchMissingKey(t *testing.T) {
	tavily := NewTavily("", "")
	_, err := tavily.Search(context.Background(), "q", 5, false)
	assert.Error(t, err)
}

func TestTavilySearchHTTPError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, map[string]any{"error": "boom"}), nil
	})}

	tavily := NewTavilyWithClient("test-key", "", client)
	_, err := tavily.Search(context.Background(), "q", 5, false)
	assert.Error(t, err)
}
