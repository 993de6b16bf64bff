package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/usecase"
	"github.com/secmon-lab/copilot-dash/pkg/utils/async"
	"github.com/secmon-lab/copilot-dash/pkg/utils/errutil"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
	"github.com/secmon-lab/copilot-dash/pkg/utils/safe"
)

// Cache key names are owned by the delivery layer; the pipeline writes
// whatever keys it is configured with.
const (
	CacheKeyDashboard = "dashboard:full"
	CacheKeyKPIs      = "dashboard:kpis"
)

type Server struct {
	router    *chi.Mux
	refresher *usecase.Refresher
	hub       *Hub
}

type Options func(*Server)

// WithHub installs the WebSocket hub. Without it the /ws endpoint is
// not registered.
func WithHub(hub *Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

func New(refresher *usecase.Refresher, opts ...Options) (*Server, error) {
	if refresher == nil {
		return nil, goerr.New("refresher is required")
	}

	r := chi.NewRouter()
	s := &Server{
		router:    r,
		refresher: refresher,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.dashboardHandler)
		r.Get("/kpis", s.kpisHandler)
		r.Post("/refresh", s.refreshHandler)
		r.Get("/cache/stats", s.cacheStatsHandler)
	})

	r.Get("/health", healthHandler)

	if s.hub != nil {
		r.Get("/ws", s.serveWS)
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type dashboardResponse struct {
	Data    *model.DashboardData `json:"data"`
	IsStale bool                 `json:"isStale"`
}

// dashboardHandler serves the cached snapshot with stale-while-revalidate:
// expired data is returned immediately while a background refresh runs.
// Only a genuinely empty cache yields a loading response.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	data, stale := s.refresher.CachedDashboard()
	if data == nil {
		async.Dispatch(r.Context(), func(ctx context.Context) error {
			return s.refresher.Refresh(ctx, false)
		})
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "loading"})
		return
	}

	if stale {
		async.Dispatch(r.Context(), func(ctx context.Context) error {
			return s.refresher.Refresh(ctx, false)
		})
	}

	writeJSON(w, r, http.StatusOK, dashboardResponse{Data: data, IsStale: stale})
}

type kpisResponse struct {
	Data    *model.KPISummary `json:"data"`
	IsStale bool              `json:"isStale"`
}

func (s *Server) kpisHandler(w http.ResponseWriter, r *http.Request) {
	kpis, stale := s.refresher.CachedKPIs()
	if kpis == nil {
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, r, http.StatusOK, kpisResponse{Data: kpis, IsStale: stale})
}

// refreshHandler triggers a manual refresh, rate limited per subscriber.
// The subscriber identity comes from the X-Subscriber-Id header when the
// SPA provides one, otherwise from the remote host.
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	id := types.SubscriberID(r.Header.Get("X-Subscriber-Id"))
	if id == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		id = types.SubscriberID(host)
	}

	retryAfter, ok := s.refresher.AllowManualRefresh(id)
	if !ok {
		seconds := int(retryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSON(w, r, http.StatusTooManyRequests, map[string]any{
			"error":             "rate_limited",
			"retryAfterSeconds": seconds,
		})
		return
	}

	async.Dispatch(r.Context(), func(ctx context.Context) error {
		return s.refresher.Refresh(ctx, true)
	})

	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "refresh-started"})
}

func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.refresher.CacheStats())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
