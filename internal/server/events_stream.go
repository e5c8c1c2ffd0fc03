package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/events"
)

// allStreamTypes is the full set of event types exposed on the stream
var allStreamTypes = []events.EventType{
	events.TradeExecuted,
	events.PriceUpdated,
	events.MarketEventSimulated,
	events.MarketFeedStarted,
	events.MarketFeedStopped,
	events.PortfolioRevalued,
	events.ErrorOccurred,
}

// EventsStreamHandler streams system events to clients over
// Server-Sent Events (SSE)
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream requests. The optional
// "types" query parameter is a comma-separated event type filter.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	streamTypes := allStreamTypes
	if filter := r.URL.Query().Get("types"); filter != "" {
		streamTypes = nil
		for _, t := range strings.Split(filter, ",") {
			streamTypes = append(streamTypes, events.EventType(strings.TrimSpace(t)))
		}
	}

	// Buffered so a slow client drops events instead of blocking the
	// emitter
	eventChan := make(chan *events.Event, 100)
	handler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
	for _, eventType := range streamTypes {
		h.bus.Subscribe(eventType, handler)
	}

	h.log.Info().Int("types", len(streamTypes)).Msg("Client connected to event stream")

	fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]interface{}{
		"type": "connected",
	}))
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			h.log.Info().Msg("Client disconnected from event stream")
			return
		case event := <-eventChan:
			fmt.Fprintf(w, "data: %s\n\n", h.encode(event))
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func (h *EventsStreamHandler) encode(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode stream event")
		return "{}"
	}
	return string(data)
}
