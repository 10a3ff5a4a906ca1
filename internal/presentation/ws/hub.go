// Package ws streams counter token events to the counter display boards.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// display boards run from the same origins the CORS policy admits
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenEvent is sent to every board when an invoice issues counter tokens
type TokenEvent struct {
	Type          string    `json:"type"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CounterNo     int       `json:"counterNo"`
	TokenNumber   int       `json:"tokenNumber"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// Client is a single connected board
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the set of connected boards and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

// Authenticator resolves a session token to an active user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// NewHub initializes a new hub. Run must be started before clients connect.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches hub events until ctx is cancelled. Run must only be
// called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow board, drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected boards
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishTokens queues one event per counter group of a committed invoice.
// Events are dropped when the broadcast queue is full.
func (h *Hub) PublishTokens(invoiceNumber string, groups []entity.CounterGroup) {
	now := time.Now().UTC()
	for _, g := range groups {
		payload, err := json.Marshal(TokenEvent{
			Type:          "counter_token",
			InvoiceNumber: invoiceNumber,
			CounterNo:     g.CounterNo,
			TokenNumber:   g.CounterTokenNumber,
			IssuedAt:      now,
		})
		if err != nil {
			h.log.Error("marshal token event", zap.Error(err))
			continue
		}
		select {
		case h.broadcast <- payload:
		default:
			h.log.Warn("token event dropped, broadcast queue full",
				zap.String("invoice_number", invoiceNumber),
				zap.Int("counter_no", g.CounterNo))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs authenticates the token query parameter and upgrades the request.
// Tokens of blocked or deleted users are rejected like invalid ones.
func ServeWs(hub *Hub, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			hub.log.Debug("websocket rejected", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize)}
		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}
		hub.log.Debug("websocket authenticated", zap.String("user_id", user.ID.String()))

		go client.writePump()
		go client.readPump()
	}
}
