package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deep-research-be/pkg/llm"
)

// DefaultMaxSubQueries bounds a run when the caller does not say otherwise.
const DefaultMaxSubQueries = 3

// MaxSubQueriesCeiling is the hard upper bound on sub-queries per run.
const MaxSubQueriesCeiling = 10

// Planner splits a research question into focused sub-questions.
type Planner struct {
	llmProvider llm.LLMProvider
}

func NewPlanner(llmProvider llm.LLMProvider) *Planner {
	return &Planner{llmProvider: llmProvider}
}

// Plan never returns an empty list and never fails: any model or parse
// error degrades to treating the whole query as a single sub-query.
func (p *Planner) Plan(ctx context.Context, query string, maxSubQueries int) []string {
	if maxSubQueries <= 0 {
		maxSubQueries = DefaultMaxSubQueries
	}
	if maxSubQueries > MaxSubQueriesCeiling {
		maxSubQueries = MaxSubQueriesCeiling
	}

	prompt := fmt.Sprintf(plannerPromptTemplate, maxSubQueries, query, maxSubQueries)
	response, err := p.llmProvider.Generate(ctx, prompt, llm.WithJSONMode(), llm.WithTemperature(0.3))
	if err != nil {
		return []string{query}
	}

	subQueries := parseSubQueries(response)
	if len(subQueries) == 0 {
		return []string{query}
	}
	if len(subQueries) > maxSubQueries {
		subQueries = subQueries[:maxSubQueries]
	}
	return subQueries
}

// parseSubQueries reads the "sub_queries" field; if it is absent it
// flattens any array-valued field found in the object.
func parseSubQueries(response string) []string {
	jsonContent := extractJSON(response)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil
	}

	if raw, ok := parsed["sub_queries"]; ok {
		if items := collectStrings(raw); len(items) > 0 {
			return items
		}
	}
	for _, raw := range parsed {
		if items := collectStrings(raw); len(items) > 0 {
			return items
		}
	}
	return nil
}

func collectStrings(raw interface{}) []string {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var items []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
	}
	return items
}

// extractJSON isolates the JSON object from a model response that may
// carry prose or code fences around it.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}
	return response[startIdx : endIdx+1]
}
