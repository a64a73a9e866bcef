package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"deep-research-be/pkg/llm"
)

// fakeLLM routes every call through a single function so each test can
// script the model's behavior.
type fakeLLM struct {
	generateFunc func(prompt string) (string, error)
	calls        int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.generateFunc(prompt)
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return f.generateFunc(last)
}

func TestPlannerParsesNamedField(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return `{"sub_queries": ["What is X?", "What is Y?", "How do X and Y differ?"]}`, nil
	}}
	planner := NewPlanner(provider)

	got := planner.Plan(context.Background(), "Compare X and Y", 3)

	assert.Equal(t, []string{"What is X?", "What is Y?", "How do X and Y differ?"}, got)
}

func TestPlannerFlattensUnnamedArrayField(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return `{"questions": ["first", "second"]}`, nil
	}}
	planner := NewPlanner(provider)

	got := planner.Plan(context.Background(), "topic", 5)

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPlannerNeverReturnsZeroSubQueries(t *testing.T) {
	cases := []struct {
		name     string
		response string
		err      error
	}{
		{"provider error", "", errors.New("rate limited")},
		{"not json", "I cannot answer that.", nil},
		{"empty array", `{"sub_queries": []}`, nil},
		{"no array field", `{"sub_queries": "not a list"}`, nil},
		{"blank entries", `{"sub_queries": ["", "  "]}`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeLLM{generateFunc: func(string) (string, error) {
				return tc.response, tc.err
			}}
			planner := NewPlanner(provider)

			got := planner.Plan(context.Background(), "original query", 5)

			assert.Equal(t, []string{"original query"}, got)
		})
	}
}

func TestPlannerTruncatesToMax(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return `{"sub_queries": ["a", "b", "c", "d", "e"]}`, nil
	}}
	planner := NewPlanner(provider)

	got := planner.Plan(context.Background(), "topic", 2)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestPlannerStripsProseAroundJSON(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return "Here is the plan:\n```json\n{\"sub_queries\": [\"only one\"]}\n```", nil
	}}
	planner := NewPlanner(provider)

	got := planner.Plan(context.Background(), "topic", 3)

	assert.Equal(t, []string{"only one"}, got)
}
