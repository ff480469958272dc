// Package ws pushes in-app notifications to connected users over WebSocket.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Client is one live connection of an authenticated user. A user may hold
// several (tabs, devices).
type Client struct {
	UsuarioID uint
	conn      *websocket.Conn
	send      chan []byte
}

type mensaje struct {
	usuarioID uint
	data      []byte
}

type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan mensaje
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan mensaje, 256),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is cancelled, then closes every
// remaining connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uint]map[*Client]bool)
			h.mutex.Unlock()
			metrics.ConexionesWS.Set(0)
			return

		case c := <-h.register:
			h.mutex.Lock()
			set, ok := h.clients[c.UsuarioID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[c.UsuarioID] = set
			}
			set[c] = true
			h.mutex.Unlock()
			metrics.ConexionesWS.Inc()
			log.Debug().Uint("usuario_id", c.UsuarioID).Msg("ws: cliente conectado")

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.outbound:
			h.mutex.Lock()
			for c := range h.clients[m.usuarioID] {
				select {
				case c.send <- m.data:
				default:
					// Slow consumer: drop the connection, the inbox keeps the row.
					h.removeLocked(c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	h.removeLocked(c)
	h.mutex.Unlock()
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UsuarioID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UsuarioID)
	}
	close(c.send)
	metrics.ConexionesWS.Dec()
}

// SendToUser queues data for every connection of the user. It never blocks
// the caller; when the hub queue is full the push is dropped.
func (h *Hub) SendToUser(usuarioID uint, data []byte) bool {
	select {
	case h.outbound <- mensaje{usuarioID: usuarioID, data: data}:
		return true
	default:
		log.Warn().Uint("usuario_id", usuarioID).Msg("ws: cola llena, push descartado")
		return false
	}
}

// Conectados reports how many live connections the user holds.
func (h *Hub) Conectados(usuarioID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[usuarioID])
}

// Serve registers conn for the user and blocks until the peer disconnects.
func (h *Hub) Serve(conn *websocket.Conn, usuarioID uint) {
	c := &Client{UsuarioID: usuarioID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// readPump only consumes control frames; clients do not send data.
func (c *Client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
