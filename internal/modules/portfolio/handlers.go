package portfolio

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/web"
)

// Handlers contains HTTP handlers for the portfolio API
type Handlers struct {
	store    Store
	revaluer *Revaluer
	log      zerolog.Logger
}

// NewHandlers creates a new portfolio handlers instance
func NewHandlers(store Store, revaluer *Revaluer, log zerolog.Logger) *Handlers {
	return &Handlers{
		store:    store,
		revaluer: revaluer,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes registers all portfolio routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/{userID}", h.HandleGetPortfolio)
		r.Post("/{userID}/revalue", h.HandleRevalue)
	})
}

// HandleGetPortfolio returns a user's portfolio with derived totals
// GET /api/portfolios/{userID}
func (h *Handlers) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolio, err := h.store.GetPortfolio(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get portfolio")
		web.WriteError(w, err)
		return
	}
	if portfolio == nil {
		web.WriteError(w, domain.NewNotFound("portfolio", userID))
		return
	}

	web.WriteJSON(w, http.StatusOK, portfolio)
}

// HandleRevalue recomputes one user's portfolio from current prices
// POST /api/portfolios/{userID}/revalue
func (h *Handlers) HandleRevalue(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.revaluer.RevalueUser(userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to revalue portfolio")
		web.WriteError(w, err)
		return
	}

	portfolio, err := h.store.GetPortfolio(userID)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	if portfolio == nil {
		web.WriteError(w, domain.NewNotFound("portfolio", userID))
		return
	}

	web.WriteJSON(w, http.StatusOK, portfolio)
}
