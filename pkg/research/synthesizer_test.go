package research

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"deep-research-be/pkg/websearch"
)

func TestSynthesizerFallbackContainsEveryPartialAnswer(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return "", errors.New("model unavailable")
	}}
	synthesizer := NewSynthesizer(provider)

	results := []ReasoningResult{
		{SubQuery: "What is X?", Answer: "X is the first subject."},
		{SubQuery: "What is Y?", Answer: "Y is the second subject."},
		{SubQuery: "How do they differ?", Answer: "They differ in kind."},
	}

	report := synthesizer.Synthesize(context.Background(), "Compare X and Y", results, nil)

	assert.Contains(t, report.Text, "Compare X and Y")
	for _, res := range results {
		assert.Contains(t, report.Text, res.Answer)
	}
}

func TestSynthesizerReturnsModelReport(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return "## Findings\n\nX and Y differ.", nil
	}}
	synthesizer := NewSynthesizer(provider)

	report := synthesizer.Synthesize(context.Background(), "Compare X and Y", []ReasoningResult{
		{SubQuery: "q", Answer: "a"},
	}, nil)

	assert.Equal(t, "## Findings\n\nX and Y differ.", report.Text)
}

func TestSynthesizerSummarizesLongNotes(t *testing.T) {
	summarizeCalls := 0
	provider := &fakeLLM{generateFunc: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Condense the following") {
			summarizeCalls++
			return "condensed notes", nil
		}
		return "final report", nil
	}}
	synthesizer := NewSynthesizer(provider)

	longReasoning := strings.Repeat("very long reasoning. ", 600)
	report := synthesizer.Synthesize(context.Background(), "query", []ReasoningResult{
		{SubQuery: "q", Answer: "a", Reasoning: longReasoning},
	}, nil)

	assert.Equal(t, "final report", report.Text)
	assert.Equal(t, 1, summarizeCalls)
}

func TestSummarizeFallbackKeepsRunesIntact(t *testing.T) {
	provider := &fakeLLM{generateFunc: func(string) (string, error) {
		return "", errors.New("model unavailable")
	}}
	synthesizer := NewSynthesizer(provider)

	longMultibyte := strings.Repeat("日本語の推論。", 2000)
	got := synthesizer.maybeSummarize(context.Background(), longMultibyte)

	assert.True(t, utf8.ValidString(got))
	assert.Len(t, []rune(got), summarizeThreshold)
}

func TestDedupCitations(t *testing.T) {
	evidence := []EvidenceItem{
		{SourceKind: SourceWeb, SubQuery: "a", Citations: []websearch.Source{
			{Title: "First", URL: "https://example.com/one"},
			{Title: "Second", URL: "https://example.com/two"},
		}},
		{SourceKind: SourceWeb, SubQuery: "b", Citations: []websearch.Source{
			{Title: "First again", URL: "https://example.com/one"},
		}},
		// graph evidence never contributes citations
		{SourceKind: SourceGraph, SubQuery: "a", Content: "see https://example.com/three"},
	}

	got := DedupCitations(evidence)

	assert.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "https://example.com/two", got[1].URL)
}

func TestDedupCitationsFallsBackToBareURLs(t *testing.T) {
	evidence := []EvidenceItem{
		{SourceKind: SourceWeb, SubQuery: "a",
			Content: "According to https://example.com/report and https://example.com/report again."},
	}

	got := DedupCitations(evidence)

	assert.Len(t, got, 1)
	assert.Equal(t, "https://example.com/report", got[0].URL)
}
