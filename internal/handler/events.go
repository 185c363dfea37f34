package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
)

// TicketEvent is pushed to connected dashboards when a ticket changes
type TicketEvent struct {
	Type   string         `json:"type"` // ticket_created | ticket_status_changed
	Ticket *domain.Ticket `json:"ticket"`
}

// EventsHandler upgrades GET /ws/tickets to a WebSocket and streams
// ticket events to support dashboards. It implements
// service.TicketEvents; broadcasts never block ticket operations.
type EventsHandler struct {
	logger         *slog.Logger
	allowedOrigins []string

	mu    sync.RWMutex
	conns map[*websocket.Conn]chan TicketEvent
}

// NewEventsHandler creates a new ticket events handler
func NewEventsHandler(logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		conns:          map[*websocket.Conn]chan TicketEvent{},
	}
}

func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles WebSocket subscription requests. The JWT middleware
// has already authenticated the caller; events are broadcast to every
// subscriber (ownership filtering applies to the REST reads, the feed
// is an internal dashboard surface).
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	events := make(chan TicketEvent, 16)
	h.mu.Lock()
	h.conns[ws] = events
	h.mu.Unlock()
	metrics.SetEventSubscribers(h.subscriberCount())

	defer func() {
		h.mu.Lock()
		delete(h.conns, ws)
		h.mu.Unlock()
		ws.Close()
		metrics.SetEventSubscribers(h.subscriberCount())
	}()

	// drain the connection so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case evt := <-events:
			if err := ws.WriteJSON(evt); err != nil {
				h.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// TicketCreated implements service.TicketEvents
func (h *EventsHandler) TicketCreated(ticket *domain.Ticket) {
	h.broadcast(TicketEvent{Type: "ticket_created", Ticket: ticket})
}

// TicketStatusChanged implements service.TicketEvents
func (h *EventsHandler) TicketStatusChanged(ticket *domain.Ticket) {
	h.broadcast(TicketEvent{Type: "ticket_status_changed", Ticket: ticket})
}

func (h *EventsHandler) broadcast(evt TicketEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.conns {
		select {
		case ch <- evt:
		default:
			// slow subscriber: drop the event rather than stall
		}
	}
}

func (h *EventsHandler) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
