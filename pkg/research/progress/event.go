package progress

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses, in the order a healthy run walks through them. Complete
// and Error are terminal; Error is reachable from any state.
const (
	StatusStarting          = "starting"
	StatusGeneratingQueries = "generating-queries"
	StatusProcessingQuery   = "processing-query"
	StatusFinalizing        = "finalizing"
	StatusComplete          = "complete"
	StatusError             = "error"
)

// IsTerminal reports whether a status ends the run.
func IsTerminal(status string) bool {
	return status == StatusComplete || status == StatusError
}

// Event is one progress update for a research run. Events are transient:
// they are pushed to live subscribers and never stored.
type Event struct {
	ChatID      uuid.UUID `json:"chat_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Timestamp   time.Time `json:"timestamp"`
}
