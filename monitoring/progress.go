package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks one long-running activity, such as the slots of a
// simulation run. The field names form the JSON shape of /api/progress.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Advance marks amount more elements as finished.
func (b *ProgressBar) Advance(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// Begin marks amount elements as started but not yet finished.
func (b *ProgressBar) Begin(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// Finish moves amount elements from in progress to finished.
func (b *ProgressBar) Finish(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}
