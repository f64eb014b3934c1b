// Package ws fans JSON events out to WebSocket clients. Each client gets
// its own send queue and writer goroutine, so one slow reader never delays
// the rest; a client whose queue fills up is disconnected.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 3 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second
	queueSize  = 64
)

// client is one upgraded connection and its outbound queue. Only the hub
// goroutine closes send.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients. Register, unregister, and broadcast all go
// through channels handled by Run.
type Hub struct {
	// Snapshot, when set, returns events queued to each new client before
	// it joins the broadcast set, so late joiners see current state.
	Snapshot func() []any
	// ClientsChanged, when set, receives the client count after every
	// change. It runs on the hub goroutine.
	ClientsChanged func(n int)

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	upgrader   websocket.Upgrader
}

// NewHub allocates a hub. Call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run owns the client set until ctx is cancelled, then closes every queue
// so the writers send a close frame and exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
			}
			h.clients = map[*client]struct{}{}
			return

		case c := <-h.register:
			if h.queueSnapshot(c) {
				h.clients[c] = struct{}{}
			} else {
				close(c.send)
			}
			h.clientsChanged()

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.clientsChanged()
}

// queueSnapshot reports false when the snapshot alone overflows the queue.
func (h *Hub) queueSnapshot(c *client) bool {
	if h.Snapshot == nil {
		return true
	}
	for _, ev := range h.Snapshot() {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		select {
		case c.send <- b:
		default:
			return false
		}
	}
	return true
}

func (h *Hub) clientsChanged() {
	if h.ClientsChanged != nil {
		h.ClientsChanged(len(h.clients))
	}
}

// Handler upgrades incoming requests and hands the connection to the hub.
// Clients are not expected to send anything; reads only service pongs and
// detect disconnects.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			return
		}

		c := &client{conn: conn, send: make(chan []byte, queueSize)}
		select {
		case h.register <- c:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go c.writeLoop()
		go h.readLoop(c)
	})
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

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

func (c *client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastJSON marshals v and queues it for every client. When the
// broadcast channel is full the message is dropped rather than blocking
// the caller.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- b:
	default:
	}
}
