package trading

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/web"
)

// Handlers contains HTTP handlers for the trading API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new trading handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "trading").Logger(),
	}
}

// RegisterRoutes registers all trading routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Post("/buy", h.HandleBuy)
		r.Post("/sell", h.HandleSell)
		r.Get("/history/{userID}", h.HandleGetHistory)
	})
}

type orderRequest struct {
	UserID   string  `json:"user_id"`
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// HandleBuy executes a buy order
// POST /api/trades/buy
func (h *Handlers) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := h.service.ExecuteBuyOrder(r.Context(), req.UserID, req.Symbol, req.Quantity)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Str("symbol", req.Symbol).Msg("Buy order failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, txn)
}

// HandleSell executes a sell order
// POST /api/trades/sell
func (h *Handlers) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := h.service.ExecuteSellOrder(r.Context(), req.UserID, req.Symbol, req.Quantity)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Str("symbol", req.Symbol).Msg("Sell order failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, txn)
}

// HandleGetHistory returns a user's transaction history, most recent
// first
// GET /api/trades/history/{userID}
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	txns, err := h.service.GetTransactionHistory(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get transaction history")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, txns)
}
