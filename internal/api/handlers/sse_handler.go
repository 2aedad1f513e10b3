package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams appointment events to connected dashboards
type SSEHandler struct {
	eventBus          providers.EventBus
	heartbeatInterval time.Duration
	clients           map[chan *entities.AppointmentEvent]struct{}
	mu                sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:          eventBus,
		heartbeatInterval: defaultHeartbeatInterval,
		clients:           make(map[chan *entities.AppointmentEvent]struct{}),
	}
}

// StreamAppointmentEvents handles GET /api/admin/appointments/events
func (h *SSEHandler) StreamAppointmentEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelAppointments)
	if err != nil {
		log.Error().Err(err).Msg("Failed to subscribe to appointment events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.AppointmentEvent, 10)
	h.registerClient(clientChan)
	defer h.unregisterClient(clientChan)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.AppointmentEvent, clientChan chan<- *entities.AppointmentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				// slow client, drop
			}
		}
	}
}

func (h *SSEHandler) registerClient(clientChan chan *entities.AppointmentEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientChan] = struct{}{}
	log.Debug().Int("clients", len(h.clients)).Msg("Dashboard connected to event stream")
}

func (h *SSEHandler) unregisterClient(clientChan chan *entities.AppointmentEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, clientChan)
	log.Debug().Int("clients", len(h.clients)).Msg("Dashboard disconnected from event stream")
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// ClientCount returns the number of connected dashboards
func (h *SSEHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
