package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/copilot-dash/pkg/service/github"
)

const (
	defaultAuthorFilter = "app/copilot-swe-agent"
	defaultDataSource   = "github"

	// inter-page / inter-call throttle; a deliberate fixed delay,
	// not an adaptive rate mechanism
	defaultPageDelay   = 200 * time.Millisecond
	defaultLookupDelay = 50 * time.Millisecond
)

// UseCases bundles the fetch and aggregation pipeline: seat fetcher,
// PR fetcher, stats aggregation, cross-reference and simulated metrics.
type UseCases struct {
	github github.Service

	org          string
	authorFilter string
	dataSource   string

	pageDelay   time.Duration
	lookupDelay time.Duration

	agentNames map[string]string

	sim *SimulatedMetrics
	now func() time.Time
}

// Option configures UseCases
type Option func(*UseCases)

// WithAuthorFilter overrides the tracked-author search filter
func WithAuthorFilter(author string) Option {
	return func(uc *UseCases) {
		uc.authorFilter = author
	}
}

// WithDataSource overrides the data-source label in snapshot metadata
func WithDataSource(source string) Option {
	return func(uc *UseCases) {
		uc.dataSource = source
	}
}

// WithPageDelay overrides the fixed inter-page delay
func WithPageDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.pageDelay = d
	}
}

// WithLookupDelay overrides the per-user lookup delay in cross-reference
func WithLookupDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.lookupDelay = d
	}
}

// WithAgentNames installs display names applied to agent breakdown labels
func WithAgentNames(names map[string]string) Option {
	return func(uc *UseCases) {
		uc.agentNames = names
	}
}

// WithSimulatedMetrics replaces the simulated metrics generator
func WithSimulatedMetrics(sim *SimulatedMetrics) Option {
	return func(uc *UseCases) {
		uc.sim = sim
	}
}

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the use case layer for the given GitHub service and org
func New(svc github.Service, org string, opts ...Option) *UseCases {
	uc := &UseCases{
		github:       svc,
		org:          org,
		authorFilter: defaultAuthorFilter,
		dataSource:   defaultDataSource,
		pageDelay:    defaultPageDelay,
		lookupDelay:  defaultLookupDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.sim == nil {
		uc.sim = NewSimulatedMetrics(uc.now().UnixNano())
	}
	return uc
}

// sleep waits for d, honoring context cancellation. Returns false when
// the context was cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
