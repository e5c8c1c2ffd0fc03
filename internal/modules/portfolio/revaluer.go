// Package portfolio implements portfolio revaluation and the market
// snapshot recorder, both driven by market feed notifications.
package portfolio

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/events"
	"github.com/jperaltad/tradesim/internal/locks"
)

// Store is the persistence surface the revaluer needs
type Store interface {
	GetAllUsers() ([]domain.User, error)
	GetAllAssets() ([]domain.Asset, error)
	GetPortfolio(userID string) (*domain.Portfolio, error)
	UpdatePortfolio(portfolio *domain.Portfolio) error
}

// Revaluer is a market subscriber that recomputes every user's
// portfolio from current asset prices after each price-update cycle.
// It is purely a re-derivation; it never changes holdings themselves.
type Revaluer struct {
	store       Store
	userLocks   *locks.KeyedMutex
	events      *events.Manager
	lockTimeout time.Duration
	log         zerolog.Logger
}

// NewRevaluer creates a portfolio revaluation subscriber
func NewRevaluer(store Store, userLocks *locks.KeyedMutex, eventManager *events.Manager, lockTimeout time.Duration, log zerolog.Logger) *Revaluer {
	return &Revaluer{
		store:       store,
		userLocks:   userLocks,
		events:      eventManager,
		lockTimeout: lockTimeout,
		log:         log.With().Str("service", "portfolio").Logger(),
	}
}

// Name identifies this subscriber in the registry
func (r *Revaluer) Name() string { return "portfolio-revaluer" }

// Update recomputes all portfolios. Users are discovered dynamically;
// a failure on one user does not stop the others.
func (r *Revaluer) Update() {
	users, err := r.store.GetAllUsers()
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list users for revaluation")
		return
	}

	prices, err := r.currentPrices()
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to read prices for revaluation")
		return
	}

	revalued := 0
	for i := range users {
		if err := r.revalueUser(users[i].ID, prices); err != nil {
			r.log.Error().Err(err).Str("user_id", users[i].ID).Msg("Failed to revalue portfolio")
			continue
		}
		revalued++
	}

	r.events.Emit(events.PortfolioRevalued, "portfolio", map[string]interface{}{
		"portfolios": revalued,
	})
}

// RevalueUser recomputes one user's portfolio from current prices
func (r *Revaluer) RevalueUser(userID string) error {
	prices, err := r.currentPrices()
	if err != nil {
		return err
	}
	return r.revalueUser(userID, prices)
}

func (r *Revaluer) revalueUser(userID string, prices map[string]float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.lockTimeout)
	defer cancel()

	release, err := r.userLocks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	// Re-read under the lock so a concurrent trade's settlement is
	// never clobbered with a stale holding set.
	portfolio, err := r.store.GetPortfolio(userID)
	if err != nil {
		return err
	}
	if portfolio == nil {
		return nil
	}

	portfolio.Reprice(prices)
	return r.store.UpdatePortfolio(portfolio)
}

func (r *Revaluer) currentPrices() (map[string]float64, error) {
	assets, err := r.store.GetAllAssets()
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(assets))
	for i := range assets {
		prices[assets[i].Symbol] = assets[i].CurrentPrice
	}
	return prices, nil
}
