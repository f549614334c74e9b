package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
)

type Config struct {
	SendBuffer   int
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client is one websocket connection. Frames reach it only through its send queue.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

type outbound struct {
	targets []string
	payload []byte
}

// Hub owns every live connection. A single Run loop delivers outbound frames,
// so frames queued in order reach each client in that order.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	mutex      sync.RWMutex
	cfg        Config
	log        *slog.Logger
}

func NewHub(cfg Config, log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 1024),
		done:       make(chan struct{}),
		cfg:        cfg,
		log:        log,
	}
}

// Run delivers frames until ctx is cancelled, then closes every connection
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("WebSocket client connected", "connection_id", client.ID, "total", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("WebSocket client disconnected", "connection_id", client.ID, "total", total)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg outbound) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, id := range msg.targets {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case client.send <- msg.payload:
		default:
			// A client that cannot keep up is dropped; its read loop reports the disconnect.
			h.log.Warn("Send queue full, dropping client", "connection_id", id)
			delete(h.clients, id)
			close(client.send)
		}
	}
}

func (h *Hub) closeAll() {
	close(h.done)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
}

// Register adopts an upgraded connection and starts its write pump
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}
	select {
	case h.register <- client:
		go h.writePump(client)
	case <-h.done:
		_ = conn.Close()
	}
	return client
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send queues a frame for one connection. Unknown ids are ignored.
func (h *Hub) Send(connectionID string, msg models.Message) {
	h.Broadcast([]string{connectionID}, msg)
}

// Broadcast encodes msg once and queues it for every listed connection
func (h *Hub) Broadcast(connectionIDs []string, msg models.Message) {
	if len(connectionIDs) == 0 {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Error encoding message", "event", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- outbound{targets: append([]string(nil), connectionIDs...), payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("Write failed", "connection_id", client.ID, "error", err)
				return
			}

		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump hands every text frame to handle until the connection fails or
// misses a pong for longer than the read timeout.
func (h *Hub) ReadPump(client *Client, handle func(payload []byte)) {
	conn := client.conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Unexpected close", "connection_id", client.ID, "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
		handle(payload)
	}
}
