package analysis

import (
	"sort"

	"github.com/jperaltad/tradesim/internal/domain"
)

// Recommendation is one suggested asset for a user
type Recommendation struct {
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	Reason       string           `json:"reason"`
	RiskLevel    domain.RiskLevel `json:"risk_level"`
	CurrentPrice float64          `json:"current_price"`
	Priority     int              `json:"priority"`
}

// RecommendationStrategy produces ranked asset suggestions for a user.
// Strategies are pure and swappable at construction time.
type RecommendationStrategy interface {
	Generate(user *domain.User, portfolio *domain.Portfolio, assets []domain.Asset) []Recommendation
}

// BasicRecommendationStrategy suggests unheld assets, ranked by how
// well each asset's sector volatility matches the user's declared risk
// tolerance. Priority 1 is the strongest match; at most five
// suggestions are returned.
type BasicRecommendationStrategy struct{}

// Generate produces recommendations for the given user
func (BasicRecommendationStrategy) Generate(user *domain.User, portfolio *domain.Portfolio, assets []domain.Asset) []Recommendation {
	owned := make(map[string]struct{}, len(portfolio.Holdings))
	for i := range portfolio.Holdings {
		owned[portfolio.Holdings[i].Symbol] = struct{}{}
	}

	var recs []Recommendation
	for i := range assets {
		asset := &assets[i]
		if _, held := owned[asset.Symbol]; held {
			continue
		}

		volatility := SectorVolatility(asset.Sector)

		reason := "Consider this asset to diversify your portfolio"
		priority := 3
		switch {
		case user.RiskTolerance == domain.RiskToleranceLow && volatility < 50:
			reason = "Low-risk asset suited to your conservative profile"
			priority = 1
		case user.RiskTolerance == domain.RiskToleranceHigh && volatility > 60:
			reason = "High growth potential suited to your aggressive profile"
			priority = 1
		case user.RiskTolerance == domain.RiskToleranceMedium:
			reason = "Balanced asset suited to your moderate profile"
			priority = 2
		}

		riskLevel := domain.RiskLevelMedium
		if volatility > 60 {
			riskLevel = domain.RiskLevelHigh
		}

		recs = append(recs, Recommendation{
			Symbol:       asset.Symbol,
			Name:         asset.Name,
			CurrentPrice: asset.CurrentPrice,
			Reason:       reason,
			Priority:     priority,
			RiskLevel:    riskLevel,
		})
	}

	// Strongest matches first; ties keep asset order
	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].Priority < recs[b].Priority
	})
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
