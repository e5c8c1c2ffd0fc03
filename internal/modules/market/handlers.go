package market

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/modules/ledger"
	"github.com/jperaltad/tradesim/internal/web"
)

// SnapshotReader lists stored market snapshots
type SnapshotReader interface {
	ListRecent(limit int) ([]ledger.MarketSnapshot, error)
}

// Handlers contains HTTP handlers for the market API
type Handlers struct {
	feed      *Feed
	store     Store
	snapshots SnapshotReader
	log       zerolog.Logger
}

// NewHandlers creates a new market handlers instance
func NewHandlers(feed *Feed, store Store, snapshots SnapshotReader, log zerolog.Logger) *Handlers {
	return &Handlers{
		feed:      feed,
		store:     store,
		snapshots: snapshots,
		log:       log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers all market routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Post("/start", h.HandleStart)
		r.Post("/stop", h.HandleStop)
		r.Post("/event", h.HandleSimulateEvent)
		r.Get("/data", h.HandleGetAllData)
		r.Get("/data/{symbol}", h.HandleGetData)
		r.Get("/snapshots", h.HandleGetSnapshots)
	})
}

// HandleStatus reports whether the feed is running
// GET /api/market/status
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]bool{"running": h.feed.Running()})
}

// HandleStart starts the periodic market feed
// POST /api/market/start
func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.feed.Start()
	web.WriteJSON(w, http.StatusOK, map[string]bool{"running": h.feed.Running()})
}

// HandleStop stops the periodic market feed
// POST /api/market/stop
func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.feed.Stop()
	web.WriteJSON(w, http.StatusOK, map[string]bool{"running": h.feed.Running()})
}

// HandleSimulateEvent applies a one-shot market-wide shock
// POST /api/market/event
func (h *Handlers) HandleSimulateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.feed.SimulateMarketEvent(domain.MarketEvent(req.Event)); err != nil {
		h.log.Error().Err(err).Str("event", req.Event).Msg("Market event failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"event": req.Event})
}

// HandleGetAllData returns market data for every symbol
// GET /api/market/data
func (h *Handlers) HandleGetAllData(w http.ResponseWriter, r *http.Request) {
	mds, err := h.store.GetAllMarketData()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get market data")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, mds)
}

// HandleGetData returns market data for one symbol
// GET /api/market/data/{symbol}
func (h *Handlers) HandleGetData(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	md, err := h.store.GetMarketData(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get market data")
		web.WriteError(w, err)
		return
	}
	if md == nil {
		web.WriteError(w, domain.NewNotFound("market data", symbol))
		return
	}

	web.WriteJSON(w, http.StatusOK, md)
}

// HandleGetSnapshots returns recent stored market snapshots
// GET /api/market/snapshots
func (h *Handlers) HandleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.snapshots.ListRecent(0)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list market snapshots")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, snapshots)
}
