package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/copilot-dash/pkg/domain/interfaces"
	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/repository/cache"
	"github.com/secmon-lab/copilot-dash/pkg/utils/errutil"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

const (
	defaultCooldown     = 10 * time.Second
	defaultDashboardKey = "dashboard:full"
	defaultKPIKey       = "dashboard:kpis"

	// generic code surfaced to subscribers on pipeline failure
	ErrCodeRefreshFailed = "REFRESH_FAILED"
)

// Refresher orchestrates refresh cycles: run the pipeline, update the
// cache, and notify subscribers when the outcome warrants it. Manual
// refreshes are rate limited per subscriber, not globally.
type Refresher struct {
	uc       *UseCases
	store    *cache.Cache[any]
	notifier interfaces.Notifier

	dashboardKey string
	kpiKey       string

	cooldown   time.Duration
	mu         sync.Mutex
	lastManual map[types.SubscriberID]time.Time

	inFlight atomic.Bool
	now      func() time.Time
}

// RefresherOption configures a Refresher
type RefresherOption func(*Refresher)

// WithNotifier installs the subscriber fan-out
func WithNotifier(n interfaces.Notifier) RefresherOption {
	return func(r *Refresher) {
		r.notifier = n
	}
}

// WithCooldown overrides the per-subscriber manual refresh cooldown
func WithCooldown(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		r.cooldown = d
	}
}

// WithCacheKeys overrides the cache keys the orchestrator writes. Key
// naming belongs to the delivery layer; the pipeline is agnostic to it.
func WithCacheKeys(dashboard, kpis string) RefresherOption {
	return func(r *Refresher) {
		r.dashboardKey = dashboard
		r.kpiKey = kpis
	}
}

// WithRefreshClock replaces the time source, for tests
func WithRefreshClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		r.now = now
	}
}

// NewRefresher creates a refresh orchestrator over the given pipeline
// and cache instance
func NewRefresher(uc *UseCases, store *cache.Cache[any], opts ...RefresherOption) *Refresher {
	r := &Refresher{
		uc:           uc,
		store:        store,
		dashboardKey: defaultDashboardKey,
		kpiKey:       defaultKPIKey,
		cooldown:     defaultCooldown,
		lastManual:   make(map[types.SubscriberID]time.Time),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs one refresh cycle. When notifyProgress is set (manual
// trigger), subscribers are told a refresh started and always receive the
// result; otherwise only a significant change is broadcast. The cache is
// overwritten on every successful cycle regardless of significance. A
// cycle that fails leaves the previous cache state untouched and surfaces
// a generic error event. Overlapping calls coalesce: a refresh already in
// flight makes this a no-op.
func (r *Refresher) Refresh(ctx context.Context, notifyProgress bool) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		logging.From(ctx).Debug("refresh already in flight, skipping")
		return nil
	}
	defer r.inFlight.Store(false)

	if notifyProgress && r.notifier != nil {
		r.notifier.NotifyRefreshStarted(ctx)
	}

	prev, _ := r.CachedDashboard()

	data, err := r.uc.FetchDashboardData(ctx)
	if err != nil {
		if r.notifier != nil {
			r.notifier.NotifyError(ctx, ErrCodeRefreshFailed)
		}
		return errutil.Handle(ctx, goerr.Wrap(err, "refresh pipeline failed"), "dashboard refresh failed")
	}

	significant := data.HasSignificantChanges(prev)
	r.store.Set(r.dashboardKey, data)
	r.store.Set(r.kpiKey, data.KPIs())

	logging.From(ctx).Info("dashboard refreshed",
		"significant", significant,
		"manual", notifyProgress,
		"seats", data.SeatsStats.TotalSeats,
		"prs", data.PRStats.Total)

	if (significant || notifyProgress) && r.notifier != nil {
		r.notifier.NotifyDashboard(ctx, data)
	}

	return nil
}

// AllowManualRefresh checks the per-subscriber cooldown. When the request
// arrives within the cooldown window of that subscriber's previous manual
// refresh it is rejected with the remaining wait; otherwise the window
// restarts now.
func (r *Refresher) AllowManualRefresh(id types.SubscriberID) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last, ok := r.lastManual[id]; ok {
		if elapsed := now.Sub(last); elapsed < r.cooldown {
			return r.cooldown - elapsed, false
		}
	}
	r.lastManual[id] = now
	return 0, true
}

// ForgetSubscriber drops the rate-limit state of a disconnected subscriber
func (r *Refresher) ForgetSubscriber(id types.SubscriberID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastManual, id)
}

// CachedDashboard returns the cached snapshot regardless of expiry,
// flagging staleness. Reads never block an in-flight refresh; they see
// the last completed cycle. Returns (nil, true) when nothing has been
// cached yet.
func (r *Refresher) CachedDashboard() (*model.DashboardData, bool) {
	v, stale := r.store.GetStale(r.dashboardKey)
	data, _ := v.(*model.DashboardData)
	return data, stale
}

// CachedKPIs returns the cached KPI view with staleness
func (r *Refresher) CachedKPIs() (*model.KPISummary, bool) {
	v, stale := r.store.GetStale(r.kpiKey)
	kpis, _ := v.(*model.KPISummary)
	return kpis, stale
}

// CacheStats exposes cache observability to the delivery layer
func (r *Refresher) CacheStats() cache.Stats {
	return r.store.GetStats()
}
