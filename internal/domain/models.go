// Package domain provides core domain models and types.
package domain

import "time"

// RiskTolerance represents a user's declared appetite for risk
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// RiskLevel represents the computed risk classification of a portfolio
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// TradeSide represents the direction of an order
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TransactionStatus represents the lifecycle state of a transaction
type TransactionStatus string

const (
	// StatusPending - transaction created but not yet settled
	StatusPending TransactionStatus = "pending"
	// StatusCompleted - transaction settled; record is immutable from here on
	StatusCompleted TransactionStatus = "completed"
)

// MarketEvent represents a one-shot market-wide shock
type MarketEvent string

const (
	MarketEventBull     MarketEvent = "bull"
	MarketEventBear     MarketEvent = "bear"
	MarketEventCrash    MarketEvent = "crash"
	MarketEventRecovery MarketEvent = "recovery"
)

// MinAssetPrice is the floor applied to every price mutation.
// No simulated price may reach zero or go negative.
const MinAssetPrice = 0.01

// User represents an account holder with a cash balance
type User struct {
	CreatedAt     time.Time     `json:"created_at"`
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
	Balance       float64       `json:"balance"`
}

// CanAfford reports whether the user's balance covers the given cost
func (u *User) CanAfford(cost float64) bool {
	return u.Balance >= cost
}

// Asset represents a tradeable instrument with its current simulated price
type Asset struct {
	LastUpdated  time.Time `json:"last_updated"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	CurrentPrice float64   `json:"current_price"`
}

// MarketData is the market-facing view of an asset's price.
// Asset.CurrentPrice and MarketData.Price must always agree after any
// mutation (dual-write invariant).
type MarketData struct {
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
}

// Holding represents a user's position in one asset
type Holding struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	AveragePrice     float64 `json:"average_price"`
	CurrentValue     float64 `json:"current_value"`
	TotalReturn      float64 `json:"total_return"`
	PercentageReturn float64 `json:"percentage_return"`
}

// Invested returns the total amount paid for this holding at its
// weighted average acquisition price
func (h *Holding) Invested() float64 {
	return h.Quantity * h.AveragePrice
}

// Portfolio represents a user's full set of holdings plus derived totals.
// Holdings keep insertion order; symbols are unique within a portfolio.
// Totals are always recomputed from holdings, never mutated independently.
type Portfolio struct {
	LastUpdated      time.Time `json:"last_updated"`
	UserID           string    `json:"user_id"`
	Holdings         []Holding `json:"holdings"`
	TotalValue       float64   `json:"total_value"`
	TotalInvested    float64   `json:"total_invested"`
	TotalReturn      float64   `json:"total_return"`
	PercentageReturn float64   `json:"percentage_return"`
}

// NewPortfolio creates an empty portfolio for the given user
func NewPortfolio(userID string) *Portfolio {
	return &Portfolio{
		UserID:      userID,
		Holdings:    []Holding{},
		LastUpdated: time.Now(),
	}
}

// FindHolding returns a pointer to the holding for symbol, or nil if the
// symbol is not held
func (p *Portfolio) FindHolding(symbol string) *Holding {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// AddHolding merges quantity at price into the portfolio. Buying into an
// existing holding recomputes the quantity-weighted average acquisition
// price; a first buy appends a new holding.
func (p *Portfolio) AddHolding(symbol string, quantity, price float64) {
	if h := p.FindHolding(symbol); h != nil {
		totalCost := h.Quantity*h.AveragePrice + quantity*price
		h.Quantity += quantity
		h.AveragePrice = totalCost / h.Quantity
		return
	}
	p.Holdings = append(p.Holdings, Holding{
		Symbol:       symbol,
		Quantity:     quantity,
		AveragePrice: price,
	})
}

// RemoveHolding decrements the holding for symbol by quantity, dropping
// the holding entirely when its quantity reaches zero. The caller must
// have validated that enough quantity is held.
func (p *Portfolio) RemoveHolding(symbol string, quantity float64) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol != symbol {
			continue
		}
		p.Holdings[i].Quantity -= quantity
		if p.Holdings[i].Quantity <= 0 {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		}
		return
	}
}

// Reprice recomputes each holding's derived fields from the given
// symbol -> price map, then the portfolio totals. Symbols missing from
// the map keep their previous current value.
func (p *Portfolio) Reprice(prices map[string]float64) {
	var totalValue, totalInvested float64

	for i := range p.Holdings {
		h := &p.Holdings[i]
		if price, ok := prices[h.Symbol]; ok {
			h.CurrentValue = h.Quantity * price
		}
		invested := h.Invested()
		h.TotalReturn = h.CurrentValue - invested
		if invested > 0 {
			h.PercentageReturn = h.TotalReturn / invested * 100
		} else {
			h.PercentageReturn = 0
		}
		totalValue += h.CurrentValue
		totalInvested += invested
	}

	p.TotalValue = totalValue
	p.TotalInvested = totalInvested
	p.TotalReturn = totalValue - totalInvested
	if totalInvested > 0 {
		p.PercentageReturn = p.TotalReturn / totalInvested * 100
	} else {
		p.PercentageReturn = 0
	}
	p.LastUpdated = time.Now()
}

// Transaction represents one executed order. It is append-only in the
// ledger and immutable once completed.
type Transaction struct {
	Timestamp time.Time         `json:"timestamp"`
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Symbol    string            `json:"symbol"`
	Side      TradeSide         `json:"side"`
	Status    TransactionStatus `json:"status"`
	Quantity  float64           `json:"quantity"`
	Price     float64           `json:"price"`
	Fees      float64           `json:"fees"`
	Total     float64           `json:"total"`
}

// Complete transitions the transaction to completed and stamps it.
// Must be called exactly once, inside the executor run that created it.
func (t *Transaction) Complete() {
	t.Status = StatusCompleted
	t.Timestamp = time.Now()
}
