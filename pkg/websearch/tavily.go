package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	client *http.Client
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth string
}

var _ SearchProvider = &Tavily{}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, depth string) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{APIKey: apiKey, Depth: depth, client: &http.Client{Timeout: 30 * time.Second}}
}

// NewTavilyWithClient constructs a Tavily search provider using the supplied
// HTTP client. Useful for overriding the default timeout in tests.
func NewTavilyWithClient(apiKey string, depth string, client *http.Client) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{APIKey: apiKey, Depth: depth, client: client}
}

// Search posts the query to Tavily, retrying with exponential backoff on 429.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int, includeContent bool) (*Result, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	body := map[string]any{
		"query":               query,
		"api_key":             t.APIKey,
		"search_depth":        t.Depth,
		"max_results":         maxResults,
		"include_answer":      true,
		"include_raw_content": includeContent,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.tavily.com/search", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time up to 30 s.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	result := &Result{Answer: response.Answer}
	var snippets []string
	for _, r := range response.Results {
		result.Sources = append(result.Sources, Source{Title: r.Title, URL: r.URL})
		if r.Content != "" {
			snippets = append(snippets, fmt.Sprintf("%s (%s): %s", r.Title, r.URL, r.Content))
		}
		if len(result.Sources) >= maxResults {
			break
		}
	}

	// Some accounts have include_answer disabled; fall back to snippets.
	if result.Answer == "" && len(snippets) > 0 {
		result.Answer = strings.Join(snippets, "\n\n")
	}

	return result, nil
}
