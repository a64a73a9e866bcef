package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"deep-research-be/pkg/embedding"
	"deep-research-be/pkg/research/progress"
	"deep-research-be/pkg/websearch"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := &embedding.EmbeddingResponse{}
	res.Embedding.Values = []float32{0.1, 0.2, 0.3}
	return res, nil
}

type fakeGraph struct {
	err  error
	hits []GraphHit
}

func (f *fakeGraph) SearchByLabel(ctx context.Context, emb []float32, label string, limit int) ([]GraphHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeSearch struct {
	err    error
	result *websearch.Result
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int, includeContent bool) (*websearch.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type captureSink struct {
	events []progress.Event
}

func (s *captureSink) Emit(event progress.Event) {
	s.events = append(s.events, event)
}

// scriptedLLM answers the planner, reasoner and synthesizer prompts by
// inspecting prompt content.
func scriptedLLM(planResponse string, planErr error) *fakeLLM {
	return &fakeLLM{generateFunc: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "research planner"):
			return planResponse, planErr
		case strings.Contains(prompt, `"reasoning"`):
			return `{"reasoning": "stepwise", "answer": "partial answer"}`, nil
		default:
			return "synthesized report", nil
		}
	}}
}

func newTestOrchestrator(provider *fakeLLM, graph GraphSearcher, search websearch.SearchProvider) *Orchestrator {
	return NewOrchestrator(
		NewPlanner(provider),
		NewRetriever(&fakeEmbedder{}, graph, []string{"Concept", "Person"}, 3),
		NewWebWorker(search, 3, false),
		NewReasoner(provider),
		NewSynthesizer(provider),
	)
}

func healthySearch() *fakeSearch {
	return &fakeSearch{result: &websearch.Result{
		Answer:  "web answer",
		Sources: []websearch.Source{{Title: "Doc", URL: "https://example.com/doc"}},
	}}
}

func TestRunProducesOneResultPerSubQuery(t *testing.T) {
	provider := scriptedLLM(`{"sub_queries": ["What is X?", "What is Y?", "How do X and Y differ?"]}`, nil)
	orch := newTestOrchestrator(provider, &fakeGraph{hits: []GraphHit{{Label: "Concept", Name: "X", Summary: "sum", Similarity: 0.9}}}, healthySearch())

	sink := &captureSink{}
	res, err := orch.Run(context.Background(), Request{Query: "Compare X and Y", MaxSubQueries: 3}, sink)

	assert.NoError(t, err)
	assert.Len(t, res.SubQueries, 3)
	assert.Len(t, res.Results, 3)
	// one graph and one web evidence item per sub-query
	assert.Len(t, res.Evidence, 6)
	assert.Equal(t, "synthesized report", res.Report.Text)
	assert.Len(t, res.Report.Citations, 1)
}

func TestRunPlannerFailureDegradesToSingleCycle(t *testing.T) {
	provider := scriptedLLM("", errors.New("planner down"))
	orch := newTestOrchestrator(provider, &fakeGraph{}, healthySearch())

	res, err := orch.Run(context.Background(), Request{Query: "original query", MaxSubQueries: 5}, &captureSink{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"original query"}, res.SubQueries)
	assert.Len(t, res.Results, 1)
	assert.Len(t, res.Evidence, 2)
}

func TestRunSurvivesGraphFailure(t *testing.T) {
	provider := scriptedLLM(`{"sub_queries": ["What is X?", "What is Y?"]}`, nil)
	orch := newTestOrchestrator(provider, &fakeGraph{err: errors.New("index offline")}, healthySearch())

	sink := &captureSink{}
	res, err := orch.Run(context.Background(), Request{Query: "Compare X and Y"}, sink)

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Report.Text)
	for _, item := range res.Evidence {
		if item.SourceKind == SourceGraph {
			assert.Contains(t, item.Content, "No information found")
		}
	}

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, progress.StatusComplete, last.Status)
}

func TestRunProgressIsMonotonicWithOneTerminalEvent(t *testing.T) {
	provider := scriptedLLM(`{"sub_queries": ["a", "b", "c"]}`, nil)
	orch := newTestOrchestrator(provider, &fakeGraph{}, healthySearch())

	sink := &captureSink{}
	_, err := orch.Run(context.Background(), Request{Query: "q", MaxSubQueries: 3}, sink)
	assert.NoError(t, err)

	terminals := 0
	prevStep := -1
	for _, event := range sink.events {
		assert.GreaterOrEqual(t, event.CurrentStep, prevStep)
		prevStep = event.CurrentStep
		if progress.IsTerminal(event.Status) {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
	assert.Equal(t, progress.StatusComplete, sink.events[len(sink.events)-1].Status)
}

func TestRunCancelledContextEmitsErrorEvent(t *testing.T) {
	provider := scriptedLLM(`{"sub_queries": ["a", "b"]}`, nil)
	orch := newTestOrchestrator(provider, &fakeGraph{}, healthySearch())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &captureSink{}
	_, err := orch.Run(ctx, Request{Query: "q"}, sink)

	assert.Error(t, err)
	terminals := 0
	for _, event := range sink.events {
		if progress.IsTerminal(event.Status) {
			terminals++
			assert.Equal(t, progress.StatusError, event.Status)
		}
	}
	assert.Equal(t, 1, terminals)
}
