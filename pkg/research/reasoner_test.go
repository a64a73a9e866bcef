package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonerDecodesStructuredOutput(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return `{"reasoning": "X is defined in the graph evidence.", "answer": "X is a thing."}`, nil
	}}
	reasoner := NewReasoner(provider)

	got := reasoner.Reason(context.Background(), ReasonInput{
		SubQuery:      "What is X?",
		OriginalQuery: "Compare X and Y",
		StepIndex:     1,
		TotalSteps:    3,
	})

	assert.Equal(t, "What is X?", got.SubQuery)
	assert.Equal(t, "X is defined in the graph evidence.", got.Reasoning)
	assert.Equal(t, "X is a thing.", got.Answer)
}

func TestReasonerFallsBackToFullTextOnMalformedOutput(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"plain prose", "X is a thing, plainly speaking."},
		{"json without answer", `{"reasoning": "thinking", "answer": ""}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeLLM{generateFunc: func(string) (string, error) {
				return tc.response, nil
			}}
			reasoner := NewReasoner(provider)

			got := reasoner.Reason(context.Background(), ReasonInput{SubQuery: "What is X?"})

			assert.Equal(t, tc.response, got.Answer)
			assert.Empty(t, got.Reasoning)
		})
	}
}

func TestReasonerPlaceholderOnProviderError(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return "", errors.New("upstream down")
	}}
	reasoner := NewReasoner(provider)

	got := reasoner.Reason(context.Background(), ReasonInput{SubQuery: "What is X?"})

	assert.Contains(t, got.Answer, "What is X?")
	assert.Empty(t, got.Reasoning)
}
