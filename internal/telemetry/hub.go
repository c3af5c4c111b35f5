// Package telemetry streams completed scans to websocket subscribers so an
// external UI or logger can follow the sweep without touching the terminal.
package telemetry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ScanFrame is the per-scan message sent to every subscriber.
type ScanFrame struct {
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	StartHz  uint32    `json:"startHz"`
	StepHz   uint32    `json:"stepHz"`
	Steps    int       `json:"steps"`
	BinsDBm  []int     `json:"binsDbm"`
	PeakHz   uint32    `json:"peakHz"`
	PeakDBm  int       `json:"peakDbm"`
	FloorDBm float64   `json:"floorDbm"`
	SigmaDB  float64   `json:"sigmaDb"`
	SNRdB    float64   `json:"snrDb"`
}

// Event marks a state transition such as signal detection or loss.
type Event struct {
	Type   string    `json:"type"`
	Time   time.Time `json:"time"`
	FreqHz uint32    `json:"freqHz"`
	DBm    int       `json:"dbm,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan interface{}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub fans scan frames out to the connected clients. A slow client drops
// messages rather than stalling the scan loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	log     logrus.FieldLogger
}

// NewHub returns an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		log:     log,
	}
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan interface{}, 64)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	go c.writePump()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast queues msg for every connected client, dropping it for clients
// whose buffers are full.
func (h *Hub) Broadcast(msg interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
