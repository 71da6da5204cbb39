package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkraus12/courtside/internal/models"
)

const writeTimeout = 10 * time.Second

// Hub pushes every state change to the overlay clients: SSE subscribers and
// websocket connections. Slow clients are dropped, never waited on.
type Hub struct {
	mu       sync.Mutex
	sse      map[chan []byte]struct{}
	ws       map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		sse: make(map[chan []byte]struct{}),
		ws:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The overlay is served from anywhere on the venue LAN.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast fans a snapshot out to every connected client.
func (h *Hub) Broadcast(state models.Scoreboard) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode broadcast payload")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.sse {
		select {
		case ch <- payload:
		default:
			// Client is not draining; let its handler clean up on close.
		}
	}
	for conn := range h.ws {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Debug().Err(err).Msg("dropping websocket client")
			conn.Close()
			delete(h.ws, conn)
		}
	}
}

// ServeSSE streams snapshots as server-sent events, starting with the
// current one.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, current models.Scoreboard) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.sse[ch] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sse, ch)
		h.mu.Unlock()
	}()

	initial, _ := json.Marshal(current)
	writeSSE(w, initial)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-ch:
			writeSSE(w, payload)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, payload []byte) {
	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}

// ServeWS upgrades to a websocket and pushes snapshots until the client
// goes away, starting with the current one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, current models.Scoreboard) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	initial, _ := json.Marshal(current)
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	h.ws[conn] = struct{}{}
	h.mu.Unlock()

	// Drain (and discard) client reads so pings and close frames are
	// processed; removal happens in Broadcast on write failure.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.ws, conn)
				h.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
