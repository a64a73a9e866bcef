package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"deep-research-be/pkg/research"
)

// RunRepository tracks research runs currently in flight, keyed by chat
// session id. Entries expire on their own so a crashed run cannot pin a
// session in a non-terminal state forever.
type RunRepository struct {
	cache *cache.Cache
}

func NewRunRepository() *RunRepository {
	// Runs rarely exceed a few minutes; an hour of retention keeps the
	// snapshot endpoint useful well after completion.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RunRepository{
		cache: c,
	}
}

func (r *RunRepository) Save(state *research.RunState) {
	r.cache.Set(state.ChatID.String(), state, cache.DefaultExpiration)
}

func (r *RunRepository) Get(chatID string) (*research.RunState, bool) {
	if x, found := r.cache.Get(chatID); found {
		return x.(*research.RunState), true
	}
	return nil, false
}

func (r *RunRepository) Delete(chatID string) {
	r.cache.Delete(chatID)
}
