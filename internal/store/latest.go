package store

import (
	"sync"
	"time"

	"openweather-exporter/internal/weather"
)

// LatestStore is the concurrency-safe holder of the most recent fetch
// outcome. Exactly one outcome is current at any instant; writes replace it
// wholesale and readers receive copies, so a scrape can never observe a
// torn or partially updated reading.
type LatestStore struct {
	mu          sync.RWMutex
	outcome     weather.FetchOutcome
	lastSuccess time.Time
}

// NewLatestStore creates a store in the "no data yet" state.
func NewLatestStore() *LatestStore {
	return &LatestStore{
		outcome: weather.NoData(),
	}
}

// Write replaces the current outcome. The prior value is discarded
// unconditionally; a failure overwrites an earlier success so an upstream
// outage shows up within one poll interval.
func (s *LatestStore) Write(outcome weather.FetchOutcome) {
	clone := outcome.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcome = clone
	if clone.OK() {
		s.lastSuccess = time.Now().UTC()
	}
}

// Read returns a copy of the current outcome. It never blocks behind an
// in-flight fetch, only behind the copy inside Write.
func (s *LatestStore) Read() weather.FetchOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.outcome.Clone()
}

// LastSuccess returns when the most recent successful reading was stored,
// or the zero time if none has been.
func (s *LatestStore) LastSuccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSuccess
}
