// Package bench repeats a call at an optional target rate and
// aggregates latency percentiles.
package bench

import (
	"context"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"
)

// CallFunc executes one attempt and reports how long it took.
type CallFunc func(ctx context.Context) (time.Duration, error)

// Summary is the aggregated outcome of a bench run.
type Summary struct {
	Total   int
	Errors  int
	Elapsed time.Duration
	Min     time.Duration
	P50     time.Duration
	P90     time.Duration
	P99     time.Duration
	Max     time.Duration
}

// Metrics records latencies into an HDR histogram.
type Metrics struct {
	// Histogram: 1us to 60s range, 3 significant digits
	hist   *hdrhistogram.Histogram
	total  int
	errors int
}

func NewMetrics() *Metrics {
	return &Metrics{
		hist: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Record adds one attempt.
func (m *Metrics) Record(d time.Duration, err error) {
	m.total++
	if err != nil {
		m.errors++
	}

	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 60_000_000 {
		us = 60_000_000
	}
	_ = m.hist.RecordValue(us)
}

// Summary snapshots the recorded metrics.
func (m *Metrics) Summary(elapsed time.Duration) Summary {
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return Summary{
		Total:   m.total,
		Errors:  m.errors,
		Elapsed: elapsed,
		Min:     us(m.hist.Min()),
		P50:     us(m.hist.ValueAtQuantile(50)),
		P90:     us(m.hist.ValueAtQuantile(90)),
		P99:     us(m.hist.ValueAtQuantile(99)),
		Max:     us(m.hist.Max()),
	}
}

// Run performs n sequential attempts. When rps > 0 a rate limiter
// paces the attempts; a canceled context stops the run early and
// returns what was collected so far.
func Run(ctx context.Context, n int, rps float64, call CallFunc) (Summary, error) {
	metrics := NewMetrics()

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return metrics.Summary(time.Since(start)), err
			}
		} else if ctx.Err() != nil {
			return metrics.Summary(time.Since(start)), ctx.Err()
		}

		d, err := call(ctx)
		metrics.Record(d, err)
	}

	return metrics.Summary(time.Since(start)), nil
}
