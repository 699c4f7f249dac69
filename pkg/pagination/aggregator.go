package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/neo-orbit-api/pkg/logging"
	"github.com/Sternrassler/neo-orbit-api/pkg/metrics"
	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ErrInvalidRequest is returned when paging parameters are out of range.
var ErrInvalidRequest = errors.New("invalid paging request")

var (
	aggregationPagesTotal = promauto.With(metrics.Registry).NewCounter(prometheus.CounterOpts{
		Name: "neo_aggregation_pages_total",
		Help: "Upstream pages fetched by the aggregator",
	})

	aggregationDelaysTotal = promauto.With(metrics.Registry).NewCounter(prometheus.CounterOpts{
		Name: "neo_aggregation_pacing_delays_total",
		Help: "Pacing delays applied between page fetches",
	})
)

// PageFetcher fetches and maps a single upstream page.
type PageFetcher interface {
	BrowsePage(ctx context.Context, page, size int) ([]orbit.Record, error)
}

// Request describes which pages to aggregate.
type Request struct {
	// Page is the first page index (>= 0).
	Page int
	// Size is the page size (> 0).
	Size int
	// Pages is how many consecutive pages to fetch (> 0).
	Pages int
	// SleepMS is the pause between consecutive fetches in milliseconds (>= 0).
	SleepMS int
}

// DefaultRequest returns page 0, size 20, one page, no pacing.
func DefaultRequest() Request {
	return Request{Page: 0, Size: 20, Pages: 1, SleepMS: 0}
}

// Upper paging bounds. They keep page arithmetic and pacing durations far
// from overflow.
const (
	MaxPage    = 1_000_000
	MaxSize    = 1_000
	MaxPages   = 100
	MaxSleepMS = 60_000
)

// Validate checks the paging bounds.
func (r Request) Validate() error {
	switch {
	case r.Page < 0 || r.Page > MaxPage:
		return fmt.Errorf("%w: page must be in [0, %d] (got %d)", ErrInvalidRequest, MaxPage, r.Page)
	case r.Size <= 0 || r.Size > MaxSize:
		return fmt.Errorf("%w: size must be in [1, %d] (got %d)", ErrInvalidRequest, MaxSize, r.Size)
	case r.Pages <= 0 || r.Pages > MaxPages:
		return fmt.Errorf("%w: pages must be in [1, %d] (got %d)", ErrInvalidRequest, MaxPages, r.Pages)
	case r.SleepMS < 0 || r.SleepMS > MaxSleepMS:
		return fmt.Errorf("%w: sleep_ms must be in [0, %d] (got %d)", ErrInvalidRequest, MaxSleepMS, r.SleepMS)
	}
	return nil
}

// PacingTime is the total pause Collect spends between pages.
func (r Request) PacingTime() time.Duration {
	if r.Pages <= 1 {
		return 0
	}
	return time.Duration(r.Pages-1) * time.Duration(r.SleepMS) * time.Millisecond
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSleeper replaces the pacing delay implementation.
func WithSleeper(sleep SleepFunc) Option {
	return func(a *Aggregator) {
		a.sleep = sleep
	}
}

// Aggregator fetches consecutive pages one at a time and concatenates their
// records in page order.
type Aggregator struct {
	fetcher PageFetcher
	sleep   SleepFunc
	logger  zerolog.Logger
}

// NewAggregator creates a new aggregator over fetcher.
func NewAggregator(fetcher PageFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
		sleep:   sleepContext,
		logger:  logging.NewLogger("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect fetches req.Pages pages starting at req.Page. The first failing
// page aborts the aggregation and no partial result is returned.
func (a *Aggregator) Collect(ctx context.Context, req Request) (orbit.Page, error) {
	if err := req.Validate(); err != nil {
		return orbit.Page{}, err
	}

	start := time.Now()
	delay := time.Duration(req.SleepMS) * time.Millisecond

	var items []orbit.Record
	for k := 0; k < req.Pages; k++ {
		p := req.Page + k

		records, err := a.fetcher.BrowsePage(ctx, p, req.Size)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Int("page", p).
				Int("fetched_pages", k).
				Msg("Page fetch failed - aborting aggregation")
			return orbit.Page{}, fmt.Errorf("fetch page %d: %w", p, err)
		}
		aggregationPagesTotal.Inc()
		items = append(items, records...)

		if delay > 0 && k < req.Pages-1 {
			aggregationDelaysTotal.Inc()
			if err := a.sleep(ctx, delay); err != nil {
				return orbit.Page{}, fmt.Errorf("pacing after page %d: %w", p, err)
			}
		}
	}

	a.logger.Info().
		Int("first_page", req.Page).
		Int("pages", req.Pages).
		Int("size", req.Size).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")

	return orbit.NewPage(items), nil
}

// sleepContext is the default SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
