package domain

import "time"

// Outcome classifies what happened to one artifact during a run.
type Outcome string

const (
	OutcomeFetched     Outcome = "fetched"
	OutcomePlaceholder Outcome = "placeholder"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
)

// AccountResult is the per-handle, per-kind result of a refresh run.
type AccountResult struct {
	Handle      string       `json:"handle"`
	Kind        ArtifactKind `json:"kind"`
	Outcome     Outcome      `json:"outcome"`
	Count       int          `json:"count"`
	Error       string       `json:"error,omitempty"`
	RateLimited bool         `json:"rate_limited,omitempty"`
	RecordedAt  time.Time    `json:"recorded_at"`
	RunID       string       `json:"run_id,omitempty"`
}

// RunReport collects every AccountResult of one refresh run in order.
type RunReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Results    []AccountResult `json:"results"`
}

// Count returns how many results ended with outcome o.
func (r RunReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
