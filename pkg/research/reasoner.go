package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deep-research-be/pkg/llm"
)

// ReasonInput carries everything one reasoning call needs. StepIndex and
// TotalSteps only phrase the prompt.
type ReasonInput struct {
	SubQuery      string
	GraphEvidence string
	WebEvidence   string
	OriginalQuery string
	StepIndex     int
	TotalSteps    int
}

// Reasoner asks the model to reason over gathered evidence and answer one
// sub-query.
type Reasoner struct {
	llmProvider llm.LLMProvider
}

func NewReasoner(llmProvider llm.LLMProvider) *Reasoner {
	return &Reasoner{llmProvider: llmProvider}
}

// Reason requests a structured {"reasoning", "answer"} object. If the
// response cannot be decoded the whole text becomes the answer and the
// reasoning stays empty; a transport failure yields a placeholder answer.
func (r *Reasoner) Reason(ctx context.Context, in ReasonInput) ReasoningResult {
	prompt := fmt.Sprintf(reasonPromptTemplate,
		in.StepIndex,
		in.TotalSteps,
		in.OriginalQuery,
		in.SubQuery,
		in.GraphEvidence,
		in.WebEvidence,
	)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithJSONMode())
	if err != nil {
		return ReasoningResult{
			SubQuery: in.SubQuery,
			Answer:   fmt.Sprintf("No answer could be produced for: %s", in.SubQuery),
		}
	}

	var parsed struct {
		Reasoning string `json:"reasoning"`
		Answer    string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil || strings.TrimSpace(parsed.Answer) == "" {
		return ReasoningResult{
			SubQuery: in.SubQuery,
			Answer:   response,
		}
	}

	return ReasoningResult{
		SubQuery:  in.SubQuery,
		Reasoning: parsed.Reasoning,
		Answer:    parsed.Answer,
	}
}
