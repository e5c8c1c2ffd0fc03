package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jperaltad/tradesim/internal/domain"
)

// RiskStrategy classifies a portfolio from its diversification and
// volatility scores. Strategies are pure and swappable at construction
// time.
type RiskStrategy interface {
	AnalyzeRisk(diversificationScore, volatilityScore float64) domain.RiskLevel
}

// BasicRiskStrategy is the default threshold-based classification
type BasicRiskStrategy struct{}

// AnalyzeRisk classifies a portfolio: low volatility with strong
// diversification is low risk, moderate readings are medium, anything
// else is high.
func (BasicRiskStrategy) AnalyzeRisk(diversificationScore, volatilityScore float64) domain.RiskLevel {
	switch {
	case volatilityScore < 30 && diversificationScore > 70:
		return domain.RiskLevelLow
	case volatilityScore < 60 && diversificationScore > 40:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelHigh
	}
}

// RiskAnalysis is the result of analyzing one portfolio
type RiskAnalysis struct {
	AnalyzedAt           time.Time        `json:"analyzed_at"`
	UserID               string           `json:"user_id"`
	PortfolioRisk        domain.RiskLevel `json:"portfolio_risk"`
	Recommendations      []string         `json:"recommendations"`
	DiversificationScore float64          `json:"diversification_score"`
	VolatilityScore      float64          `json:"volatility_score"`
}

// DiversificationScore rates how spread out a portfolio is, 0-100.
// Half the score comes from sector coverage (five sectors for full
// marks), half from weight distribution, with any holding over 30% of
// total value penalized proportionally.
func DiversificationScore(portfolio *domain.Portfolio, sectorOf map[string]string) float64 {
	if len(portfolio.Holdings) == 0 {
		return 0
	}

	sectors := make(map[string]struct{})
	for i := range portfolio.Holdings {
		if sector, ok := sectorOf[portfolio.Holdings[i].Symbol]; ok {
			sectors[sector] = struct{}{}
		}
	}

	sectorScore := float64(len(sectors)) / 5 * 50
	if sectorScore > 50 {
		sectorScore = 50
	}

	var concentrationPenalty float64
	if portfolio.TotalValue > 0 {
		for i := range portfolio.Holdings {
			weight := portfolio.Holdings[i].CurrentValue / portfolio.TotalValue
			if weight > 0.3 {
				concentrationPenalty += (weight - 0.3) * 100
			}
		}
	}

	distributionScore := 50 - concentrationPenalty
	if distributionScore < 0 {
		distributionScore = 0
	}

	score := sectorScore + distributionScore
	if score > 100 {
		score = 100
	}
	return score
}

// VolatilityScore rates a portfolio's exposure to volatile sectors,
// 0-100: the value-weighted mean of each holding's sector volatility.
func VolatilityScore(portfolio *domain.Portfolio, sectorOf map[string]string) float64 {
	if len(portfolio.Holdings) == 0 || portfolio.TotalValue <= 0 {
		return 0
	}

	vols := make([]float64, len(portfolio.Holdings))
	weights := make([]float64, len(portfolio.Holdings))
	for i := range portfolio.Holdings {
		vols[i] = SectorVolatility(sectorOf[portfolio.Holdings[i].Symbol])
		weights[i] = portfolio.Holdings[i].CurrentValue
	}

	score := stat.Mean(vols, weights)
	if score > 100 {
		score = 100
	}
	return score
}

// riskAdvice builds the human-readable notes attached to a risk
// analysis
func riskAdvice(diversificationScore, volatilityScore float64, risk domain.RiskLevel) []string {
	var advice []string

	if diversificationScore < 40 {
		advice = append(advice, "Consider diversifying across more sectors")
	}
	if volatilityScore > 70 {
		advice = append(advice, "Portfolio volatility is high, consider adding more stable assets")
	}
	if risk == domain.RiskLevelHigh {
		advice = append(advice, "High risk level detected, review your investment strategy")
	}
	if diversificationScore > 80 && volatilityScore < 30 {
		advice = append(advice, "Excellent diversification and low volatility, keep this strategy")
	}
	if len(advice) == 0 {
		advice = append(advice, "Portfolio looks balanced, keep monitoring regularly")
	}
	return advice
}
