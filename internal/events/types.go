// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	TradeExecuted        EventType = "TRADE_EXECUTED"
	PriceUpdated         EventType = "PRICE_UPDATED"
	MarketEventSimulated EventType = "MARKET_EVENT_SIMULATED"
	MarketFeedStarted    EventType = "MARKET_FEED_STARTED"
	MarketFeedStopped    EventType = "MARKET_FEED_STOPPED"
	PortfolioRevalued    EventType = "PORTFOLIO_REVALUED"
	ErrorOccurred        EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
