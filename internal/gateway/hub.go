// Package gateway is the display collaborator: it serves the simulated
// feed to websocket clients. Every scheduler update is wrapped in a
// seq-stamped JSON envelope and fanned out; clients that cannot keep up
// have frames dropped rather than stalling the hub.
package gateway

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"signalbotv1/internal/model"
)

const clientBuffer = 256

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Hub manages websocket clients and broadcasts feed envelopes.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	latest  []byte // last envelope, sent to new clients on connect
	seq     int64

	// OnClientChange reports the new client count on connect/disconnect.
	OnClientChange func(n int)
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Run consumes scheduler updates and broadcasts them until ctx is
// cancelled or the channel is closed.
func (h *Hub) Run(ctx context.Context, updates <-chan model.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			h.Broadcast(&u)
		}
	}
}

// Broadcast wraps the update in an envelope and sends it to all clients.
// The envelope is hand-built JSON; the update payload is already encoded.
func (h *Hub) Broadcast(u *model.Update) {
	buf := buildEnvelope(u.JSON(), h.nextSeq(), time.Now().UTC())

	h.mu.Lock()
	h.latest = buf
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- buf:
		default: // slow client — drop frame
		}
	}
}

func (h *Hub) nextSeq() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	return h.seq
}

// buildEnvelope wraps payload JSON with channel, timestamp and seq.
func buildEnvelope(data []byte, seq int64, ts time.Time) []byte {
	buf := make([]byte, 0, len(data)+96)
	buf = append(buf, `{"channel":"feed","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = ts.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')
	return buf
}

// Latest returns the most recently broadcast envelope, nil before the
// first one. Survives scheduler Stop: the display keeps the last state.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the connection and starts the client's pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] upgrade error: %v", err)
		return
	}

	ch := h.register(conn)
	log.Printf("[gateway] client connected: %s (%d total)", r.RemoteAddr, h.ClientCount())

	// Resumable display: replay the last known envelope immediately.
	if latest := h.Latest(); latest != nil {
		ch <- latest
	}

	// Read pump: discard inbound frames, detect disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister(conn)
				conn.Close()
				return
			}
		}
	}()

	// Write pump.
	go func() {
		for msg := range ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(conn)
				conn.Close()
				return
			}
		}
		conn.Close()
	}()
}

func (h *Hub) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	n := len(h.clients)
	h.mu.Unlock()
	if h.OnClientChange != nil {
		h.OnClientChange(n)
	}
	return ch
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		close(ch)
		delete(h.clients, conn)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok && h.OnClientChange != nil {
		h.OnClientChange(n)
	}
}
