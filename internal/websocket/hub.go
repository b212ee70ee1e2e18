package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
)

const (
	maxMessagesPerSecond = 10
	sendBufferSize       = 256
)

// ClientMessage is the only inbound frame clients may send.
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one WebSocket session. Admin sessions also receive the
// moderation feed.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Admin  bool
	Send   chan []byte

	rateMu        sync.Mutex
	messageCount  int
	lastResetTime time.Time
}

func NewClient(hub *Hub, conn *Conn, userID uint, admin bool) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Admin:  admin,
		Send:   make(chan []byte, sendBufferSize),
	}
}

type delivery struct {
	userID  uint
	admins  bool
	client  *Client
	payload []byte
}

// Hub fans moderation events out to connected sessions. It implements
// service.ModerationNotifier.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		deliver:    make(chan delivery, 1024),
	}
}

// Run processes registrations and deliveries until ctx is done, then
// closes every session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"admin":          client.Admin,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			h.dispatch(d)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) dispatch(d delivery) {
	h.mu.RLock()
	var targets []*Client
	switch {
	case d.client != nil:
		for _, c := range h.clients[d.client.UserID] {
			if c == d.client {
				targets = append(targets, c)
			}
		}
	case d.admins:
		for _, list := range h.clients {
			for _, c := range list {
				if c.Admin {
					targets = append(targets, c)
				}
			}
		}
	default:
		targets = append(targets, h.clients[d.userID]...)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.Send <- d.payload:
		default:
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": c.UserID,
			})
			go h.Unregister(c)
		}
	}
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliver <- d:
	default:
		logger.Warn("Delivery queue full, event dropped", map[string]interface{}{
			"user_id": d.userID,
			"admins":  d.admins,
		})
	}
}

// ModerationApplied broadcasts a committed moderation event to admins.
func (h *Hub) ModerationApplied(event model.ModerationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal moderation event", err)
		return
	}
	h.enqueue(delivery{admins: true, payload: data})
}

// NotifyAuthor tells a review author that their review changed status.
func (h *Hub) NotifyAuthor(userID uint, notice model.ReviewStatusNotice) {
	if !h.IsUserOnline(userID) {
		return
	}
	data, err := json.Marshal(notice)
	if err != nil {
		logger.Error("Failed to marshal status notice", err)
		return
	}
	h.enqueue(delivery{userID: userID, payload: data})
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SessionCount returns the number of open sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, list := range h.clients {
		n += len(list)
	}
	return n
}

// allow applies the per-session inbound message budget.
func (c *Client) allow(now time.Time) bool {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if now.Sub(c.lastResetTime) >= time.Second {
		c.messageCount = 0
		c.lastResetTime = now
	}
	c.messageCount++
	return c.messageCount <= maxMessagesPerSecond
}

// HandleClientMessage answers pings; everything else is ignored.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	if !client.allow(time.Now()) {
		logger.Warn("WebSocket rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Ignoring malformed client message", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}
	if msg.Type == "ping" {
		h.enqueue(delivery{client: client, payload: []byte(`{"type":"pong"}`)})
	}
}
