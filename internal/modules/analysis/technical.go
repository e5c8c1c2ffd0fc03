package analysis

import (
	"math/rand"
	"time"

	"github.com/jperaltad/tradesim/internal/domain"
)

// TradeSignal is the outcome of a technical analysis
type TradeSignal string

const (
	SignalBuy  TradeSignal = "buy"
	SignalSell TradeSignal = "sell"
	SignalHold TradeSignal = "hold"
)

// TechnicalAnalysis is the result of analyzing one symbol
type TechnicalAnalysis struct {
	Timestamp    time.Time   `json:"timestamp"`
	Symbol       string      `json:"symbol"`
	Signal       TradeSignal `json:"signal"`
	CurrentPrice float64     `json:"current_price"`
	SMA20        float64     `json:"sma20"`
	SMA50        float64     `json:"sma50"`
	RSI          float64     `json:"rsi"`
}

// TechnicalStrategy computes indicators and a trade signal for a
// symbol's current market data
type TechnicalStrategy interface {
	Analyze(md *domain.MarketData) TechnicalAnalysis
}

// BasicTechnicalStrategy simulates its indicators rather than
// computing them from price history: each SMA is the current price
// plus a random variation within 5%, and RSI is drawn uniformly from
// 20 to 80. Signal logic over those values is real.
type BasicTechnicalStrategy struct {
	rng *rand.Rand
}

// NewBasicTechnicalStrategy creates a technical strategy with its own
// random source
func NewBasicTechnicalStrategy() *BasicTechnicalStrategy {
	return &BasicTechnicalStrategy{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Analyze produces indicators and a signal for the given market data
func (s *BasicTechnicalStrategy) Analyze(md *domain.MarketData) TechnicalAnalysis {
	sma20 := s.simulatedSMA(md.Price)
	sma50 := s.simulatedSMA(md.Price)
	rsi := 20 + s.rng.Float64()*60

	signal := SignalHold
	if md.Price > sma20 && sma20 > sma50 && rsi < 70 {
		signal = SignalBuy
	} else if md.Price < sma20 && sma20 < sma50 && rsi > 30 {
		signal = SignalSell
	}

	return TechnicalAnalysis{
		Symbol:       md.Symbol,
		CurrentPrice: md.Price,
		SMA20:        sma20,
		SMA50:        sma50,
		RSI:          rsi,
		Signal:       signal,
		Timestamp:    time.Now(),
	}
}

func (s *BasicTechnicalStrategy) simulatedSMA(price float64) float64 {
	variation := (s.rng.Float64() - 0.5) * 0.1
	return price * (1 + variation)
}
