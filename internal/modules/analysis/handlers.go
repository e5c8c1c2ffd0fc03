package analysis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/web"
)

// Handlers contains HTTP handlers for the analysis API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// RegisterRoutes registers all analysis routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Get("/risk/{userID}", h.HandleRisk)
		r.Get("/recommendations/{userID}", h.HandleRecommendations)
		r.Get("/technical/{symbol}", h.HandleTechnical)
	})
}

// HandleRisk returns a risk analysis of a user's portfolio
// GET /api/analysis/risk/{userID}
func (h *Handlers) HandleRisk(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.service.AnalyzePortfolioRisk(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Risk analysis failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, result)
}

// HandleRecommendations returns ranked asset suggestions for a user
// GET /api/analysis/recommendations/{userID}
func (h *Handlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	recs, err := h.service.GenerateRecommendations(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Recommendation generation failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, recs)
}

// HandleTechnical returns a technical analysis for one symbol
// GET /api/analysis/technical/{symbol}
func (h *Handlers) HandleTechnical(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result, err := h.service.PerformTechnicalAnalysis(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Technical analysis failed")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, result)
}
