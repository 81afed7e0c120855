package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/muurk/printbridge/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Interval between heartbeat events on the stream
	heartbeatPeriod = 30 * time.Second

	// Outbound queue per subscriber; a subscriber whose queue is full is
	// dropped so it cannot stall the hub
	subscriberBuffer = 16
)

// Event is one message on the /events stream. Job events carry the jobId,
// stage, printer, and detail fields; heartbeats carry only the timestamp.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"jobId,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Printer   string `json:"printer,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Hub fans events out to every connected /events subscriber.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
	done        chan struct{}
}

// NewHub creates an empty hub. Run starts the heartbeat loop.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		done:        make(chan struct{}),
	}
}

// Run emits heartbeat events until the hub is closed.
func (h *Hub) Run() {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Publish(Event{Type: "heartbeat"})
		case <-h.done:
			return
		}
	}
}

// Publish delivers an event to all subscribers. Delivery never blocks:
// subscribers with a full queue are disconnected instead.
func (h *Hub) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			delete(h.subscribers, ch)
			close(ch)
			logging.Warn("Dropped stalled event subscriber")
		}
	}
}

// JobSubmitted publishes the submitted event for a new print job and
// returns its id.
func (h *Hub) JobSubmitted(printer, document string) string {
	jobID := uuid.NewString()
	h.Publish(Event{
		Type:    "job",
		JobID:   jobID,
		Stage:   "submitted",
		Printer: printer,
		Detail:  document,
	})
	return jobID
}

// JobCompleted publishes the completed event for a print job.
func (h *Hub) JobCompleted(jobID, printer string) {
	h.Publish(Event{
		Type:    "job",
		JobID:   jobID,
		Stage:   "completed",
		Printer: printer,
	})
}

// JobFailed publishes the failed event for a print job with the cause.
func (h *Hub) JobFailed(jobID, printer string, err error) {
	h.Publish(Event{
		Type:    "job",
		JobID:   jobID,
		Stage:   "failed",
		Printer: printer,
		Detail:  err.Error(),
	})
}

// SubscriberCount reports how many subscribers are connected.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects all subscribers and stops the heartbeat loop. Publish
// calls after Close are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()

	close(h.done)
}

func (h *Hub) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// unsubscribe is idempotent; the channel is closed exactly once, under the
// same lock Publish sends under.
func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The service is loopback-bound; subscribers connect from file:// and
	// localhost origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents upgrades the connection and streams hub events to the peer
// until it disconnects or the hub closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.LogConnection(r.RemoteAddr, "events_subscribed")

	ch := s.hub.subscribe()
	defer func() {
		s.hub.unsubscribe(ch)
		_ = conn.Close()
		logging.LogConnection(r.RemoteAddr, "events_unsubscribed")
	}()

	// Inbound messages are discarded; the read loop detects the peer
	// closing and ends the stream by unsubscribing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.unsubscribe(ch)
				return
			}
		}
	}()

	for event := range ch {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(event); err != nil {
			logging.Debug("Event write failed, closing subscriber",
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}
