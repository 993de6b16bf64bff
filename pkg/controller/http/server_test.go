package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/secmon-lab/copilot-dash/pkg/controller/http"
	"github.com/secmon-lab/copilot-dash/pkg/repository/cache"
	"github.com/secmon-lab/copilot-dash/pkg/service/github"
	"github.com/secmon-lab/copilot-dash/pkg/usecase"
)

// stubGitHub serves a single fixed page of seats and PRs
type stubGitHub struct{}

func (s *stubGitHub) CopilotSeats(ctx context.Context, org string, page, perPage int) (*github.SeatsPage, error) {
	if page > 1 {
		return &github.SeatsPage{TotalSeats: 2}, nil
	}
	active := time.Now().Add(-2 * time.Hour)
	return &github.SeatsPage{TotalSeats: 2, Seats: []github.Seat{
		{Assignee: github.User{Login: "alice"}, LastActivityAt: &active, LastActivityEditor: "vscode/1.96"},
		{Assignee: github.User{Login: "bob"}},
	}}, nil
}

func (s *stubGitHub) SearchPullRequests(ctx context.Context, query string, page, perPage int) (*github.SearchPage, error) {
	if page > 1 {
		return &github.SearchPage{}, nil
	}
	return &github.SearchPage{TotalCount: 1, Items: []github.Issue{{
		Number:    1,
		State:     "open",
		HTMLURL:   "https://github.com/acme/widgets/pull/1",
		CreatedAt: time.Now().Add(-24 * time.Hour),
		Assignees: []string{"alice"},
	}}}, nil
}

func (s *stubGitHub) GetUser(ctx context.Context, login string) (*github.User, error) {
	return &github.User{Login: login}, nil
}

func newTestServer(t *testing.T, opts ...usecase.RefresherOption) (*httpctrl.Server, *usecase.Refresher) {
	t.Helper()

	uc := usecase.New(&stubGitHub{}, "acme",
		usecase.WithPageDelay(0),
		usecase.WithLookupDelay(0),
	)
	store := cache.New[any](time.Minute)
	refresher := usecase.NewRefresher(uc, store, append(opts,
		usecase.WithCacheKeys(httpctrl.CacheKeyDashboard, httpctrl.CacheKeyKPIs),
	)...)

	srv, err := httpctrl.New(refresher)
	gt.NoError(t, err).Required()
	return srv, refresher
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(`"status":"ok"`)
}

func TestDashboardEndpoint(t *testing.T) {
	t.Run("empty cache responds loading", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		gt.Value(t, rec.Code).Equal(http.StatusAccepted)
		gt.String(t, rec.Body.String()).Contains(`"status":"loading"`)
	})

	t.Run("populated cache responds with snapshot", func(t *testing.T) {
		srv, refresher := newTestServer(t)
		gt.NoError(t, refresher.Refresh(context.Background(), false))

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Data    json.RawMessage `json:"data"`
			IsStale bool            `json:"isStale"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.Bool(t, resp.IsStale).False()
		gt.String(t, string(resp.Data)).Contains(`"totalSeats":2`)
	})
}

func TestKPIsEndpoint(t *testing.T) {
	srv, refresher := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	gt.Value(t, rec.Code).Equal(http.StatusAccepted)

	gt.NoError(t, refresher.Refresh(context.Background(), false))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(`"isStale":false`)
}

func TestRefreshEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, usecase.WithCooldown(time.Minute))

	trigger := func(subscriber string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
		if subscriber != "" {
			req.Header.Set("X-Subscriber-Id", subscriber)
		}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	rec := trigger("alice")
	gt.Value(t, rec.Code).Equal(http.StatusAccepted)

	// second trigger inside the cooldown window
	rec = trigger("alice")
	gt.Value(t, rec.Code).Equal(http.StatusTooManyRequests)
	gt.String(t, rec.Header().Get("Retry-After")).NotEqual("")
	gt.String(t, rec.Body.String()).Contains(`"error":"rate_limited"`)

	// cooldowns are per subscriber
	rec = trigger("bob")
	gt.Value(t, rec.Code).Equal(http.StatusAccepted)
}

func TestCacheStatsEndpoint(t *testing.T) {
	srv, refresher := newTestServer(t)
	gt.NoError(t, refresher.Refresh(context.Background(), false))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var stats cache.Stats
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	gt.Value(t, stats.Size).Equal(2)
}

func TestWebSocket(t *testing.T) {
	uc := usecase.New(&stubGitHub{}, "acme",
		usecase.WithPageDelay(0),
		usecase.WithLookupDelay(0),
	)
	store := cache.New[any](time.Minute)
	hub := httpctrl.NewHub()
	refresher := usecase.NewRefresher(uc, store,
		usecase.WithNotifier(hub),
		usecase.WithCooldown(time.Minute),
		usecase.WithCacheKeys(httpctrl.CacheKeyDashboard, httpctrl.CacheKeyKPIs),
	)
	gt.NoError(t, refresher.Refresh(context.Background(), false))

	srv, err := httpctrl.New(refresher, httpctrl.WithHub(hub))
	gt.NoError(t, err).Required()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	gt.NoError(t, err).Required()
	defer conn.Close()
	defer resp.Body.Close()

	readFrame := func() map[string]any {
		gt.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]any
		gt.NoError(t, conn.ReadJSON(&msg)).Required()
		return msg
	}

	// fresh subscribers receive the cached snapshot right away
	msg := readFrame()
	gt.Value(t, msg["type"]).Equal("dashboard-update")

	// manual refresh fans out start and result events
	gt.NoError(t, conn.WriteJSON(map[string]string{"type": "refresh"}))
	gt.Value(t, readFrame()["type"]).Equal("refresh-started")
	gt.Value(t, readFrame()["type"]).Equal("dashboard-update")

	// a second trigger inside the cooldown is answered privately
	gt.NoError(t, conn.WriteJSON(map[string]string{"type": "refresh"}))
	limited := readFrame()
	gt.Value(t, limited["type"]).Equal("rate-limited")
	gt.Bool(t, limited["retryAfterSeconds"].(float64) > 0).True()
}
