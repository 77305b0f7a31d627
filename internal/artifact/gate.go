package artifact

import (
	"encoding/json"
	"os"
	"time"
)

// Gate decides whether an artifact is old enough to refetch.
type Gate struct {
	now func() time.Time
}

func NewGate(now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{now: now}
}

type stamped struct {
	FetchedAt *time.Time `json:"fetched_at"`
}

// Due reports whether at least threshold has elapsed since the artifact at
// path was fetched. Missing or unreadable state is always due.
func (g *Gate) Due(path string, threshold time.Duration) bool {
	fetchedAt, ok := g.FetchedAt(path)
	if !ok {
		return true
	}
	return g.now().Sub(fetchedAt) >= threshold
}

// FetchedAt returns the stored fetch time, if any.
func (g *Gate) FetchedAt(path string) (time.Time, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	var s stamped
	if err := json.Unmarshal(data, &s); err != nil || s.FetchedAt == nil || s.FetchedAt.IsZero() {
		return time.Time{}, false
	}
	return *s.FetchedAt, true
}
