package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/utils/async"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
	"github.com/secmon-lab/copilot-dash/pkg/utils/safe"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
	wsReadLimit  = 1024
)

// wsMessage is the envelope for every server→client frame
type wsMessage struct {
	Type              string               `json:"type"`
	Data              *model.DashboardData `json:"data,omitempty"`
	Code              string               `json:"code,omitempty"`
	RetryAfterSeconds int                  `json:"retryAfterSeconds,omitempty"`
}

// wsRequest is the only client→server frame
type wsRequest struct {
	Type string `json:"type"`
}

const (
	wsTypeDashboardUpdate = "dashboard-update"
	wsTypeRefreshStarted  = "refresh-started"
	wsTypeError           = "error"
	wsTypeRateLimited     = "rate-limited"
	wsTypeRefresh         = "refresh"
)

type wsClient struct {
	id   types.SubscriberID
	conn *websocket.Conn
	send chan []byte
}

// Hub is the subscriber registry: one entry per connected client. It
// implements interfaces.Notifier so the refresh orchestrator stays free
// of transport concerns.
type Hub struct {
	mu      sync.RWMutex
	clients map[types.SubscriberID]*wsClient
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[types.SubscriberID]*wsClient),
	}
}

// NotifyRefreshStarted implements interfaces.Notifier
func (h *Hub) NotifyRefreshStarted(ctx context.Context) {
	h.broadcast(ctx, wsMessage{Type: wsTypeRefreshStarted})
}

// NotifyDashboard implements interfaces.Notifier
func (h *Hub) NotifyDashboard(ctx context.Context, data *model.DashboardData) {
	h.broadcast(ctx, wsMessage{Type: wsTypeDashboardUpdate, Data: data})
}

// NotifyError implements interfaces.Notifier
func (h *Hub) NotifyError(ctx context.Context, code string) {
	h.broadcast(ctx, wsMessage{Type: wsTypeError, Code: code})
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ctx context.Context, msg wsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.From(ctx).Error("failed to marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// slow consumer; drop the frame rather than block the hub
			logging.From(ctx).Warn("dropping frame for slow subscriber", "subscriber", c.id)
		}
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// dashboard is same-origin only in production; dev runs behind a proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWS upgrades the connection and attaches a subscriber to the hub.
// Each subscriber gets its own identity and rate-limit state.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		id:   types.SubscriberID(uuid.NewString()),
		conn: conn,
		send: make(chan []byte, 16),
	}
	s.hub.register(client)

	// a fresh subscriber sees the last completed snapshot immediately
	if data, _ := s.refresher.CachedDashboard(); data != nil {
		if payload, err := json.Marshal(wsMessage{Type: wsTypeDashboardUpdate, Data: data}); err == nil {
			client.send <- payload
		}
	}

	go s.writePump(r.Context(), client)
	s.readPump(r.Context(), client)
}

func (s *Server) readPump(ctx context.Context, c *wsClient) {
	defer func() {
		s.hub.unregister(c)
		s.refresher.ForgetSubscriber(c.id)
		safe.Close(ctx, c.conn)
	}()

	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.From(ctx).Warn("websocket read failed", "subscriber", c.id, "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			logging.From(ctx).Debug("ignoring malformed frame", "subscriber", c.id)
			continue
		}

		if req.Type != wsTypeRefresh {
			continue
		}

		if retryAfter, ok := s.refresher.AllowManualRefresh(c.id); !ok {
			s.sendTo(ctx, c, wsMessage{
				Type:              wsTypeRateLimited,
				RetryAfterSeconds: int(retryAfter.Seconds()) + 1,
			})
			continue
		}

		async.Dispatch(ctx, func(ctx context.Context) error {
			return s.refresher.Refresh(ctx, true)
		})
	}
}

func (s *Server) writePump(ctx context.Context, c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		safe.Close(ctx, c.conn)
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendTo delivers one frame to a single subscriber only
func (s *Server) sendTo(ctx context.Context, c *wsClient, msg wsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.From(ctx).Error("failed to marshal frame", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.send <- payload:
	default:
		logging.From(ctx).Warn("dropping frame for slow subscriber", "subscriber", c.id)
	}
}
