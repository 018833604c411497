package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/reindeermaze/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outgoing messages buffered per client before it is dropped.
	sendBufferSize = 256

	// EventSolution is sent after every solve of a subscribed maze
	EventSolution = "solution"

	// EventMazeSaved is sent when a subscribed maze definition is stored
	EventMazeSaved = "maze_saved"
)

var log = logrus.New()

// SetLogger replaces the package logger
func SetLogger(l *logrus.Logger) {
	log = l
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	Maze     string               `json:"maze"`
	Event    string               `json:"event"`
	Solution *service.SolveResult `json:"solution,omitempty"`
	Data     interface{}          `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	maze string
}

type countRequest struct {
	maze  string
	reply chan int
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by maze name
	mazes map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	counts     chan countRequest

	// done is closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		mazes:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled. Every
// client still connected is closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.mazes {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.mazes[req.maze])
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to maze
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, maze string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		maze: maze,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastSolution sends a solve result to every client subscribed to its maze
func (h *Hub) BroadcastSolution(result *service.SolveResult) {
	if result == nil {
		return
	}
	h.send(&Message{
		Maze:     result.MazeName,
		Event:    EventSolution,
		Solution: result,
	})
}

// BroadcastEvent sends a custom event to every client subscribed to maze
func (h *Hub) BroadcastEvent(maze string, event string, data interface{}) {
	h.send(&Message{
		Maze:  maze,
		Event: event,
		Data:  data,
	})
}

// ClientCount returns the number of clients subscribed to maze, or 0 once
// the hub has stopped
func (h *Hub) ClientCount(maze string) int {
	req := countRequest{maze: maze, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) send(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// registerClient adds a client to its maze
func (h *Hub) registerClient(client *Client) {
	if h.mazes[client.maze] == nil {
		h.mazes[client.maze] = make(map[*Client]bool)
	}
	h.mazes[client.maze][client] = true

	log.WithFields(logrus.Fields{
		"maze":    client.maze,
		"clients": len(h.mazes[client.maze]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from its maze
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.mazes[client.maze]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.mazes, client.maze)
			}

			log.WithFields(logrus.Fields{
				"maze":    client.maze,
				"clients": len(clients),
			}).Debug("websocket client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients of its maze
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.WithError(err).Error("failed to marshal websocket message")
		return
	}

	for client := range h.mazes[message.Maze] {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump keeps the connection alive and detects disconnects. Clients do
// not send anything meaningful.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
