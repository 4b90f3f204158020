package poller

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"openweather-exporter/internal/store"
	"openweather-exporter/internal/weather"
)

// Fetcher is the single operation the poller drives each cycle.
type Fetcher interface {
	Fetch(ctx context.Context) weather.FetchOutcome
}

// Poller periodically fetches the current weather and writes the outcome,
// success or failure, into the store. The interval is fixed; failed cycles
// simply wait for the next tick instead of retrying.
type Poller struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	store     *store.LatestStore
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Poller. timeout bounds each fetch; it must be shorter than
// interval for the singleton job to keep its cadence.
func New(fetcher Fetcher, st *store.LatestStore, interval, timeout time.Duration) *Poller {
	s := gocron.NewScheduler(time.UTC)
	return &Poller{
		scheduler: s,
		fetcher:   fetcher,
		store:     st,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic fetch job and runs the first cycle
// immediately. Singleton mode guarantees two fetches never overlap: a tick
// that elapses while a fetch is in flight is skipped.
func (p *Poller) Start() error {
	_, err := p.scheduler.
		Every(p.interval).
		SingletonMode().
		StartImmediately().
		Do(p.runOnce)
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler. An in-flight fetch is abandoned; the store
// keeps whatever was last written.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

func (p *Poller) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	outcome := p.fetcher.Fetch(ctx)
	p.store.Write(outcome)

	if outcome.OK() {
		log.Printf("poller: stored reading observed at %s", outcome.Reading.ObservedAt.Format(time.RFC3339))
	} else {
		log.Printf("poller: fetch failed: %v", outcome.Err)
	}
}
