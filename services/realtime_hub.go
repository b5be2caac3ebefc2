package services

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is how long a single write to a client may take
	writeWait = 10 * time.Second
	// pongWait is how long to wait for a pong before dropping the client
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10
	// clientSendBuffer is the per-client outbound queue; a client that falls
	// this far behind is disconnected rather than allowed to stall the hub
	clientSendBuffer = 32
	// hubQueueSize bounds the dispatch queue between request handlers and the
	// hub; when full, events are dropped
	hubQueueSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from other origins; access control happens at the
	// API layer, the socket only ever pushes.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to all connected websocket clients. It implements
// Notifier: Publish enqueues onto a buffered channel and returns immediately,
// so order placement never waits on a slow dashboard connection.
type Hub struct {
	clients    map[*hubClient]bool
	register   chan *hubClient
	unregister chan *hubClient
	events     chan Event
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; call Run in a goroutine before publishing
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*hubClient]bool),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		events:     make(chan Event, hubQueueSize),
	}
}

// Publish enqueues the event for broadcast. It never blocks: if the queue is
// full the event is dropped with a log line, because no caller may be stalled
// or failed by notification delivery.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event:
	default:
		log.Printf("realtime: event queue full, dropping %s", event.Name)
	}
}

// Run processes registrations and broadcasts until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("realtime: failed to marshal %s event: %v", event.Name, err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow client: drop it instead of blocking the hub
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade failed: %v", err)
		return
	}

	client := &hubClient{hub: h, conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// writePump pushes queued events and pings to the client connection
func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; the stream is one-way. Reading is still
// required to process pongs and notice closed connections.
func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
