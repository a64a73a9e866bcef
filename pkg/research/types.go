package research

import (
	"time"

	"github.com/google/uuid"

	"deep-research-be/pkg/websearch"
)

// Source kinds for evidence items.
const (
	SourceGraph = "graph"
	SourceWeb   = "web"
)

// Request describes one research run. It lives only for the duration of
// the run; persistence of the resulting report belongs to the caller.
type Request struct {
	Query         string
	MaxSubQueries int
	ChatID        uuid.UUID
	UserID        uuid.UUID
}

// EvidenceItem is one unit of retrieved context for a sub-query.
// Immutable after creation; one per sub-query per source kind.
type EvidenceItem struct {
	SourceKind string
	SubQuery   string
	Content    string
	Citations  []websearch.Source
}

// ReasoningResult is the model's inference for one sub-query. Reasoning
// may be empty when the model's output could not be decoded.
type ReasoningResult struct {
	SubQuery  string
	Reasoning string
	Answer    string
}

// Report is the synthesized output of a completed run.
type Report struct {
	Text      string
	Citations []websearch.Source
}

// RunState is the in-memory snapshot of an active or recently finished
// run, kept by the run registry for the snapshot endpoint.
type RunState struct {
	ChatID      uuid.UUID
	UserID      uuid.UUID
	Query       string
	Status      string
	CurrentStep int
	TotalSteps  int
	StartedAt   time.Time
}
