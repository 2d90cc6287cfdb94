// Package ratelimit implements request pacing for the CourtListener API.
// The API enforces a request-rate policy; the crawler stays polite by
// spacing outbound requests a configured minimum interval apart rather
// than bursting and reacting to throttling.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pacing.
var (
	pacerWaitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtlistener_pacer_waits_total",
		Help: "Total number of paced waits by endpoint class",
	}, []string{"class"})

	pacerWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courtlistener_pacer_wait_seconds",
		Help:    "Duration spent waiting for pacing by endpoint class",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"class"})
)

// Pacer enforces a minimum delay between consecutive requests of one
// endpoint class. Distinct classes (docket listing vs resource fetches)
// use distinct Pacers so their rates are configured independently.
//
// The mutex is held across the wait so concurrent callers are admitted
// one at a time, each a full interval after the previous request.
type Pacer struct {
	class    string
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a pacer for the given endpoint class. An interval of
// zero or less disables pacing.
func NewPacer(class string, interval time.Duration) *Pacer {
	return &Pacer{
		class:    class,
		interval: interval,
	}
}

// Interval returns the configured minimum delay between requests.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks until at least the configured interval has elapsed since
// the previous admitted request, then records the admission. The first
// call never waits. Wait returns early with ctx.Err() if the context is
// cancelled, without recording an admission.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		remaining := p.interval - time.Since(p.last)
		if remaining > 0 {
			pacerWaitsTotal.WithLabelValues(p.class).Inc()
			pacerWaitSeconds.WithLabelValues(p.class).Observe(remaining.Seconds())

			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	p.last = time.Now()
	return nil
}
