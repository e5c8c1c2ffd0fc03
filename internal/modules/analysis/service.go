package analysis

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
)

// Store is the read-only persistence surface the analyzer needs
type Store interface {
	GetUser(id string) (*domain.User, error)
	GetPortfolio(userID string) (*domain.Portfolio, error)
	GetAllAssets() ([]domain.Asset, error)
	GetMarketData(symbol string) (*domain.MarketData, error)
}

// Service runs risk, recommendation, and technical analyses over a
// snapshot of store data. Strategies are injected at construction.
type Service struct {
	store           Store
	risk            RiskStrategy
	recommendations RecommendationStrategy
	technical       TechnicalStrategy
	log             zerolog.Logger
}

// NewService creates an analysis service with the given strategies
func NewService(store Store, risk RiskStrategy, recommendations RecommendationStrategy, technical TechnicalStrategy, log zerolog.Logger) *Service {
	return &Service{
		store:           store,
		risk:            risk,
		recommendations: recommendations,
		technical:       technical,
		log:             log.With().Str("service", "analysis").Logger(),
	}
}

// AnalyzePortfolioRisk scores and classifies a user's portfolio
func (s *Service) AnalyzePortfolioRisk(userID string) (*RiskAnalysis, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", userID)
	}

	portfolio, err := s.store.GetPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		portfolio = domain.NewPortfolio(userID)
	}

	sectorOf, err := s.sectorIndex()
	if err != nil {
		return nil, err
	}

	diversification := DiversificationScore(portfolio, sectorOf)
	volatility := VolatilityScore(portfolio, sectorOf)
	risk := s.risk.AnalyzeRisk(diversification, volatility)

	return &RiskAnalysis{
		UserID:               userID,
		PortfolioRisk:        risk,
		DiversificationScore: diversification,
		VolatilityScore:      volatility,
		Recommendations:      riskAdvice(diversification, volatility, risk),
		AnalyzedAt:           time.Now(),
	}, nil
}

// GenerateRecommendations suggests assets matched to the user's risk
// tolerance
func (s *Service) GenerateRecommendations(userID string) ([]Recommendation, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", userID)
	}

	portfolio, err := s.store.GetPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		portfolio = domain.NewPortfolio(userID)
	}

	assets, err := s.store.GetAllAssets()
	if err != nil {
		return nil, err
	}

	return s.recommendations.Generate(user, portfolio, assets), nil
}

// PerformTechnicalAnalysis computes indicators and a signal for one
// symbol
func (s *Service) PerformTechnicalAnalysis(symbol string) (*TechnicalAnalysis, error) {
	md, err := s.store.GetMarketData(symbol)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, domain.NewNotFound("market data", symbol)
	}

	result := s.technical.Analyze(md)
	return &result, nil
}

func (s *Service) sectorIndex() (map[string]string, error) {
	assets, err := s.store.GetAllAssets()
	if err != nil {
		return nil, err
	}

	sectorOf := make(map[string]string, len(assets))
	for i := range assets {
		sectorOf[assets[i].Symbol] = assets[i].Sector
	}
	return sectorOf, nil
}
