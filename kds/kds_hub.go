// Package kds pushes order changes to the kitchen display of the owning tenant.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/utils"
)

const (
	EventOrderCreated = "order_created"
	EventOrderUpdate  = "order_update"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	tenantID  string
	profileID string
	send      chan []byte
}

// Hub holds the dashboard connections of every tenant. A message is only ever written to
// connections of the tenant it belongs to. Each connection has its own writer goroutine;
// a client whose queue is full is dropped instead of blocking the broadcaster.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, tenantID, profileID string) {
	c := &client{tenantID: tenantID, profileID: profileID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	go h.writePump(conn, c)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// removeLocked drops conn and stops its writer. h.mu must be held.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	for data := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"tenant_id":  c.tenantID,
				"profile_id": c.profileID,
			}).WithError(err).Warn("kds: dropping client")
			h.Unregister(conn)
			return
		}
	}
}

// Clients counts the open connections of a tenant.
func (h *Hub) Clients(tenantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.tenantID == tenantID {
			n++
		}
	}
	return n
}

// OrderUpdated broadcasts a new or changed order to its tenant.
func (h *Hub) OrderUpdated(tenantID string, order models.Order) {
	event := EventOrderUpdate
	if order.Status == models.OrderPending {
		event = EventOrderCreated
	}
	h.Broadcast(tenantID, Message{Event: event, Data: order})
}

func (h *Hub) Broadcast(tenantID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("kds: marshal message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for conn, c := range h.clients {
		if c.tenantID != tenantID {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			utils.InfoLogger.WithFields(logrus.Fields{
				"tenant_id":  tenantID,
				"profile_id": c.profileID,
			}).Warn("kds: client too slow, dropping")
			h.removeLocked(conn)
			_ = conn.Close()
		}
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"event":     msg.Event,
		"clients":   sent,
	}).Debug("kds: broadcast")
}
