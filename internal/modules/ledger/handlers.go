package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/web"
)

// Handlers contains HTTP handlers for users and assets
type Handlers struct {
	store *Store
	log   zerolog.Logger
}

// NewHandlers creates a new ledger handlers instance
func NewHandlers(store *Store, log zerolog.Logger) *Handlers {
	return &Handlers{
		store: store,
		log:   log.With().Str("handler", "ledger").Logger(),
	}
}

// RegisterRoutes registers user and asset routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleGetUsers)
		r.Get("/{userID}", h.HandleGetUser)
	})
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.HandleGetAssets)
		r.Get("/{symbol}", h.HandleGetAsset)
	})
}

// HandleGetUsers returns all users
// GET /api/users
func (h *Handlers) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get users")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, users)
}

// HandleGetUser returns one user
// GET /api/users/{userID}
func (h *Handlers) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.store.GetUser(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user")
		web.WriteError(w, err)
		return
	}
	if user == nil {
		web.WriteError(w, domain.NewNotFound("user", userID))
		return
	}

	web.WriteJSON(w, http.StatusOK, user)
}

// HandleGetAssets returns all assets
// GET /api/assets
func (h *Handlers) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.GetAllAssets()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get assets")
		web.WriteError(w, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, assets)
}

// HandleGetAsset returns one asset
// GET /api/assets/{symbol}
func (h *Handlers) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	asset, err := h.store.GetAsset(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get asset")
		web.WriteError(w, err)
		return
	}
	if asset == nil {
		web.WriteError(w, domain.NewNotFound("asset", symbol))
		return
	}

	web.WriteJSON(w, http.StatusOK, asset)
}
