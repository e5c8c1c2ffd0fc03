package trading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/locks"
)

// Store is the persistence surface the executor needs: the shared
// lookup operations plus the two atomic multi-record writes.
type Store interface {
	domain.Store
	ApplyTrade(user *domain.User, portfolio *domain.Portfolio, txn *domain.Transaction) error
	ApplyQuote(asset *domain.Asset, md *domain.MarketData) error
}

// sidePolicy supplies the side-specific steps of the execution
// protocol: the admission check against live balance/holding state and
// the settlement mutation. The orchestration skeleton is identical for
// both sides.
type sidePolicy interface {
	side() domain.TradeSide
	// total returns the amount recorded on the transaction: what the
	// buyer pays or the seller receives, fees included.
	total(gross, fees float64) float64
	admit(user *domain.User, portfolio *domain.Portfolio, symbol string, quantity, gross, fees float64) error
	settle(user *domain.User, portfolio *domain.Portfolio, symbol string, quantity, price, total float64)
}

type buyPolicy struct{}

func (buyPolicy) side() domain.TradeSide { return domain.SideBuy }

func (buyPolicy) total(gross, fees float64) float64 { return gross + fees }

func (buyPolicy) admit(user *domain.User, _ *domain.Portfolio, _ string, _, gross, fees float64) error {
	if !user.CanAfford(gross + fees) {
		return fmt.Errorf("%w: need %.2f, have %.2f", domain.ErrInsufficientFunds, gross+fees, user.Balance)
	}
	return nil
}

func (buyPolicy) settle(user *domain.User, portfolio *domain.Portfolio, symbol string, quantity, price, total float64) {
	user.Balance -= total
	portfolio.AddHolding(symbol, quantity, price)
}

type sellPolicy struct{}

func (sellPolicy) side() domain.TradeSide { return domain.SideSell }

func (sellPolicy) total(gross, fees float64) float64 { return gross - fees }

func (sellPolicy) admit(_ *domain.User, portfolio *domain.Portfolio, symbol string, quantity, _, _ float64) error {
	holding := portfolio.FindHolding(symbol)
	if holding == nil {
		return domain.NewNotFound("holding", symbol)
	}
	if holding.Quantity < quantity {
		return fmt.Errorf("%w: have %.4f, requested %.4f", domain.ErrInsufficientHoldings, holding.Quantity, quantity)
	}
	return nil
}

func (sellPolicy) settle(user *domain.User, portfolio *domain.Portfolio, symbol string, quantity, _, total float64) {
	user.Balance += total
	portfolio.RemoveHolding(symbol, quantity)
}

// Executor runs the fixed execution protocol for one order. All reads
// and writes for an order happen under the per-user and per-symbol
// locks, so orders for the same user or symbol serialize while
// unrelated orders proceed in parallel.
type Executor struct {
	store       Store
	fees        *FeeCalculator
	userLocks   *locks.KeyedMutex
	symbolLocks *locks.KeyedMutex
	lockTimeout time.Duration
	log         zerolog.Logger
}

// NewExecutor creates a trade executor
func NewExecutor(store Store, fees *FeeCalculator, userLocks, symbolLocks *locks.KeyedMutex, lockTimeout time.Duration, log zerolog.Logger) *Executor {
	return &Executor{
		store:       store,
		fees:        fees,
		userLocks:   userLocks,
		symbolLocks: symbolLocks,
		lockTimeout: lockTimeout,
		log:         log.With().Str("component", "executor").Logger(),
	}
}

// ExecuteBuy runs a buy order through the execution protocol
func (e *Executor) ExecuteBuy(ctx context.Context, userID, symbol string, quantity float64) (*domain.Transaction, error) {
	return e.execute(ctx, userID, symbol, quantity, buyPolicy{})
}

// ExecuteSell runs a sell order through the execution protocol
func (e *Executor) ExecuteSell(ctx context.Context, userID, symbol string, quantity float64) (*domain.Transaction, error) {
	return e.execute(ctx, userID, symbol, quantity, sellPolicy{})
}

// execute is the shared protocol skeleton. Lock order is always user
// then symbol; the market feed takes only symbol locks, so the two
// cannot deadlock.
func (e *Executor) execute(ctx context.Context, userID, symbol string, quantity float64, policy sidePolicy) (*domain.Transaction, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %.4f", domain.ErrInvalidQuantity, quantity)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	lockCtx, cancel := context.WithTimeout(ctx, e.lockTimeout)
	defer cancel()

	releaseUser, err := e.userLocks.Acquire(lockCtx, userID)
	if err != nil {
		return nil, err
	}
	defer releaseUser()

	releaseSymbol, err := e.symbolLocks.Acquire(lockCtx, symbol)
	if err != nil {
		return nil, err
	}
	defer releaseSymbol()

	// All state is re-read under the locks; nothing read before this
	// point may influence the execution.
	user, err := e.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", userID)
	}

	asset, err := e.store.GetAsset(symbol)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.NewNotFound("asset", symbol)
	}

	portfolio, err := e.store.GetPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		portfolio = domain.NewPortfolio(userID)
	}

	// Execution price is whatever is current at this instant. The
	// symbol lock guarantees no feed tick moves it mid-execution.
	price := asset.CurrentPrice
	gross := quantity * price
	fees := e.fees.Calculate(policy.side(), gross)
	total := policy.total(gross, fees)

	if err := policy.admit(user, portfolio, symbol, quantity, gross, fees); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:       newTransactionID(),
		UserID:   userID,
		Symbol:   symbol,
		Side:     policy.side(),
		Status:   domain.StatusPending,
		Quantity: quantity,
		Price:    price,
		Fees:     fees,
		Total:    total,
	}
	txn.Complete()

	policy.settle(user, portfolio, symbol, quantity, price, total)
	portfolio.Reprice(map[string]float64{symbol: price})

	if err := e.store.ApplyTrade(user, portfolio, txn); err != nil {
		return nil, fmt.Errorf("failed to settle trade %s: %w", txn.ID, err)
	}

	newPrice, md, err := e.applyMarketImpact(asset, policy.side(), quantity)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("txn_id", txn.ID).
		Str("user_id", userID).
		Str("symbol", symbol).
		Str("side", string(policy.side())).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("fees", fees).
		Float64("new_price", newPrice).
		Int64("volume", md.Volume).
		Msg("Trade executed")

	return txn, nil
}

// applyMarketImpact nudges the asset's price in the trade's direction,
// proportional to traded quantity, and persists asset and market data
// together. Change fields are computed against the pre-impact price.
func (e *Executor) applyMarketImpact(asset *domain.Asset, side domain.TradeSide, quantity float64) (float64, *domain.MarketData, error) {
	previous := asset.CurrentPrice

	impactFactor := quantity / 1_000_000
	priceImpact := previous * impactFactor * 0.001
	if side == domain.SideSell {
		priceImpact = -priceImpact
	}

	newPrice := previous + priceImpact
	if newPrice < domain.MinAssetPrice {
		newPrice = domain.MinAssetPrice
	}

	md, err := e.store.GetMarketData(asset.Symbol)
	if err != nil {
		return 0, nil, err
	}
	if md == nil {
		md = &domain.MarketData{Symbol: asset.Symbol}
	}

	now := time.Now()
	asset.CurrentPrice = newPrice
	asset.LastUpdated = now

	md.Price = newPrice
	md.Change = newPrice - previous
	md.ChangePercent = (newPrice - previous) / previous * 100
	md.Timestamp = now

	if err := e.store.ApplyQuote(asset, md); err != nil {
		return 0, nil, fmt.Errorf("failed to apply market impact for %s: %w", asset.Symbol, err)
	}
	return newPrice, md, nil
}

// newTransactionID allocates a globally unique, roughly time-ordered
// transaction id
func newTransactionID() string {
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
