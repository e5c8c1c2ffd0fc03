package trading

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/events"
)

// Service is the trading module surface: order execution plus
// transaction history
type Service struct {
	executor *Executor
	store    Store
	events   *events.Manager
	log      zerolog.Logger
}

// NewService creates a trading service
func NewService(executor *Executor, store Store, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		executor: executor,
		store:    store,
		events:   eventManager,
		log:      log.With().Str("service", "trading").Logger(),
	}
}

// ExecuteBuyOrder executes a buy order and emits a trade event on
// success
func (s *Service) ExecuteBuyOrder(ctx context.Context, userID, symbol string, quantity float64) (*domain.Transaction, error) {
	txn, err := s.executor.ExecuteBuy(ctx, userID, symbol, quantity)
	if err != nil {
		return nil, err
	}
	s.emitTradeExecuted(txn)
	return txn, nil
}

// ExecuteSellOrder executes a sell order and emits a trade event on
// success
func (s *Service) ExecuteSellOrder(ctx context.Context, userID, symbol string, quantity float64) (*domain.Transaction, error) {
	txn, err := s.executor.ExecuteSell(ctx, userID, symbol, quantity)
	if err != nil {
		return nil, err
	}
	s.emitTradeExecuted(txn)
	return txn, nil
}

// GetTransactionHistory returns a user's transactions, most recent
// first. The user must exist.
func (s *Service) GetTransactionHistory(userID string) ([]domain.Transaction, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", userID)
	}
	return s.store.GetTransactions(userID)
}

func (s *Service) emitTradeExecuted(txn *domain.Transaction) {
	s.events.Emit(events.TradeExecuted, "trading", map[string]interface{}{
		"txn_id":   txn.ID,
		"user_id":  txn.UserID,
		"symbol":   txn.Symbol,
		"side":     string(txn.Side),
		"quantity": txn.Quantity,
		"price":    txn.Price,
		"fees":     txn.Fees,
		"total":    txn.Total,
	})
}
