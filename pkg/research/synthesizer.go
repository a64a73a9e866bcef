package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"deep-research-be/pkg/llm"
	"deep-research-be/pkg/websearch"
)

// summarizeThreshold is the character count above which accumulated notes
// are condensed by an extra model call before synthesis.
const summarizeThreshold = 8000

var urlPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// Synthesizer merges all per-sub-query results into one final report.
type Synthesizer struct {
	llmProvider llm.LLMProvider
}

func NewSynthesizer(llmProvider llm.LLMProvider) *Synthesizer {
	return &Synthesizer{llmProvider: llmProvider}
}

// Synthesize always returns a report: if the final model call fails, the
// fallback is a plain concatenation of every partial answer, so a run can
// degrade but never come back empty-handed.
func (s *Synthesizer) Synthesize(ctx context.Context, originalQuery string, results []ReasoningResult, evidence []EvidenceItem) Report {
	partials := formatPartialAnswers(results)
	reasoning := s.maybeSummarize(ctx, formatReasoning(results))
	evidenceBlocks := s.maybeSummarize(ctx, formatEvidence(evidence))
	citations := DedupCitations(evidence)

	citationsSection := ""
	if len(citations) > 0 {
		var b strings.Builder
		for _, c := range citations {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", c.Title, c.URL))
		}
		citationsSection = fmt.Sprintf(synthesisCitationsInstruction, b.String())
	}

	prompt := fmt.Sprintf(synthesisPromptTemplate,
		originalQuery,
		partials,
		reasoning,
		evidenceBlocks,
		citationsSection,
	)

	text, err := s.llmProvider.Generate(ctx, prompt, llm.WithMaxTokens(4000))
	if err != nil || strings.TrimSpace(text) == "" {
		return Report{
			Text:      FallbackReport(originalQuery, results),
			Citations: citations,
		}
	}

	return Report{Text: text, Citations: citations}
}

// maybeSummarize condenses text above the threshold with an extra model
// call; if that call fails the text is hard-truncated instead.
func (s *Synthesizer) maybeSummarize(ctx context.Context, text string) string {
	if len(text) <= summarizeThreshold {
		return text
	}
	summary, err := s.llmProvider.Generate(ctx, fmt.Sprintf(summarizePromptTemplate, text))
	if err != nil || strings.TrimSpace(summary) == "" {
		return truncateRunes(text, summarizeThreshold)
	}
	return summary
}

// truncateRunes cuts text to at most n runes, never splitting a multi-byte
// character the way a byte slice would.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// FallbackReport concatenates every partial answer under a generated
// heading. Guaranteed to contain each answer verbatim.
func FallbackReport(originalQuery string, results []ReasoningResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Research Summary: %s\n", originalQuery))
	for _, res := range results {
		b.WriteString(fmt.Sprintf("\n## %s\n\n%s\n", res.SubQuery, res.Answer))
	}
	return b.String()
}

// DedupCitations collects web citations across all evidence, deduplicated
// by URL in first-seen order. Items without a structured source list fall
// back to bare URL extraction from their content.
func DedupCitations(evidence []EvidenceItem) []websearch.Source {
	seen := make(map[string]bool)
	var citations []websearch.Source

	add := func(src websearch.Source) {
		if src.URL == "" || seen[src.URL] {
			return
		}
		seen[src.URL] = true
		citations = append(citations, src)
	}

	for _, item := range evidence {
		if item.SourceKind != SourceWeb {
			continue
		}
		if len(item.Citations) > 0 {
			for _, src := range item.Citations {
				add(src)
			}
			continue
		}
		for _, url := range urlPattern.FindAllString(item.Content, -1) {
			add(websearch.Source{Title: url, URL: url})
		}
	}
	return citations
}

func formatPartialAnswers(results []ReasoningResult) string {
	var b strings.Builder
	for i, res := range results {
		b.WriteString(fmt.Sprintf("%d. %s\n%s\n\n", i+1, res.SubQuery, res.Answer))
	}
	return b.String()
}

func formatReasoning(results []ReasoningResult) string {
	var b strings.Builder
	for _, res := range results {
		if strings.TrimSpace(res.Reasoning) == "" {
			continue
		}
		b.WriteString(res.Reasoning)
		b.WriteString("\n\n")
	}
	return b.String()
}

func formatEvidence(evidence []EvidenceItem) string {
	var b strings.Builder
	for _, item := range evidence {
		b.WriteString(fmt.Sprintf("[%s] %s\n%s\n\n", item.SourceKind, item.SubQuery, item.Content))
	}
	return b.String()
}
