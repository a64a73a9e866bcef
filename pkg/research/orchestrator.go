package research

import (
	"context"
	"fmt"
	"time"

	"deep-research-be/pkg/research/progress"
)

// Sink receives progress events from a running orchestration. A broker
// handle satisfies it in production; tests can capture events directly.
type Sink interface {
	Emit(event progress.Event)
}

// RunResult carries everything a completed run produced.
type RunResult struct {
	SubQueries []string
	Evidence   []EvidenceItem
	Results    []ReasoningResult
	Report     Report
}

// Orchestrator drives one research run: plan, gather evidence and reason
// per sub-query (sequentially, in plan order), then synthesize.
type Orchestrator struct {
	planner     *Planner
	retriever   *Retriever
	web         *WebWorker
	reasoner    *Reasoner
	synthesizer *Synthesizer
}

func NewOrchestrator(
	planner *Planner,
	retriever *Retriever,
	web *WebWorker,
	reasoner *Reasoner,
	synthesizer *Synthesizer,
) *Orchestrator {
	return &Orchestrator{
		planner:     planner,
		retriever:   retriever,
		web:         web,
		reasoner:    reasoner,
		synthesizer: synthesizer,
	}
}

// Run executes the full pipeline. Individual step failures degrade to
// placeholders inside the steps themselves; Run only fails on context
// cancellation or a programming error, in which case it emits exactly one
// error-status event. A successful run ends with exactly one complete
// event.
func (o *Orchestrator) Run(ctx context.Context, req Request, sink Sink) (result *RunResult, err error) {
	currentStep := 0
	totalSteps := 0
	emit := func(status, message string) {
		sink.Emit(progress.Event{
			ChatID:      req.ChatID,
			Status:      status,
			Message:     message,
			CurrentStep: currentStep,
			TotalSteps:  totalSteps,
			Timestamp:   time.Now(),
		})
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("research run failed: %v", r)
		}
		if err != nil {
			emit(progress.StatusError, "Research failed. Please try again.")
		}
	}()

	emit(progress.StatusStarting, "Starting research")

	currentStep = 1
	emit(progress.StatusGeneratingQueries, "Breaking the question into sub-queries")
	subQueries := o.planner.Plan(ctx, req.Query, req.MaxSubQueries)

	// generating-queries and finalizing each count as one step
	totalSteps = len(subQueries) + 2

	res := &RunResult{SubQueries: subQueries}

	for i, subQuery := range subQueries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		currentStep = i + 2
		emit(progress.StatusProcessingQuery, fmt.Sprintf("Researching (%d/%d): %s", i+1, len(subQueries), subQuery))

		graphEvidence := o.retriever.GraphEvidence(ctx, subQuery)
		webEvidence, sources := o.web.Search(ctx, subQuery)

		res.Evidence = append(res.Evidence,
			EvidenceItem{SourceKind: SourceGraph, SubQuery: subQuery, Content: graphEvidence},
			EvidenceItem{SourceKind: SourceWeb, SubQuery: subQuery, Content: webEvidence, Citations: sources},
		)

		res.Results = append(res.Results, o.reasoner.Reason(ctx, ReasonInput{
			SubQuery:      subQuery,
			GraphEvidence: graphEvidence,
			WebEvidence:   webEvidence,
			OriginalQuery: req.Query,
			StepIndex:     i + 1,
			TotalSteps:    len(subQueries),
		}))
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	currentStep = totalSteps
	emit(progress.StatusFinalizing, "Synthesizing final report")
	res.Report = o.synthesizer.Synthesize(ctx, req.Query, res.Results, res.Evidence)

	emit(progress.StatusComplete, "Research complete")
	return res, nil
}
