package analysis

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jperaltad/tradesim/internal/domain"
)

type analysisStore struct {
	users      map[string]domain.User
	portfolios map[string]domain.Portfolio
	assets     []domain.Asset
	marketData map[string]domain.MarketData
}

func (s *analysisStore) GetUser(id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *analysisStore) GetPortfolio(userID string) (*domain.Portfolio, error) {
	p, ok := s.portfolios[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *analysisStore) GetAllAssets() ([]domain.Asset, error) {
	return s.assets, nil
}

func (s *analysisStore) GetMarketData(symbol string) (*domain.MarketData, error) {
	md, ok := s.marketData[symbol]
	if !ok {
		return nil, nil
	}
	return &md, nil
}

func newAnalysisStore() *analysisStore {
	return &analysisStore{
		users: map[string]domain.User{
			"demo_user": {ID: "demo_user", RiskTolerance: domain.RiskToleranceMedium},
		},
		portfolios: make(map[string]domain.Portfolio),
		assets: []domain.Asset{
			{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: 175.50},
			{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Automotive", CurrentPrice: 250.75},
			{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", CurrentPrice: 160.80},
		},
		marketData: map[string]domain.MarketData{
			"AAPL": {Symbol: "AAPL", Price: 175.50},
		},
	}
}

func newTestService(store Store) *Service {
	return NewService(store, BasicRiskStrategy{}, BasicRecommendationStrategy{}, NewBasicTechnicalStrategy(), zerolog.Nop())
}

func TestSectorVolatility(t *testing.T) {
	assert.Equal(t, 65.0, SectorVolatility("Technology"))
	assert.Equal(t, 45.0, SectorVolatility("Healthcare"))
	assert.Equal(t, 70.0, SectorVolatility("Automotive"))
	assert.Equal(t, 50.0, SectorVolatility("Unknown"))
}

func TestRiskClassificationThresholds(t *testing.T) {
	strategy := BasicRiskStrategy{}

	assert.Equal(t, domain.RiskLevelLow, strategy.AnalyzeRisk(80, 20))
	assert.Equal(t, domain.RiskLevelMedium, strategy.AnalyzeRisk(50, 50))
	assert.Equal(t, domain.RiskLevelHigh, strategy.AnalyzeRisk(30, 50))
	assert.Equal(t, domain.RiskLevelHigh, strategy.AnalyzeRisk(80, 65))
}

func TestDiversificationScoreEmptyPortfolio(t *testing.T) {
	p := domain.NewPortfolio("demo_user")

	assert.Zero(t, DiversificationScore(p, nil))
	assert.Zero(t, VolatilityScore(p, nil))
}

func TestDiversificationScoreSingleConcentratedHolding(t *testing.T) {
	p := domain.NewPortfolio("demo_user")
	p.AddHolding("AAPL", 10, 100)
	p.Reprice(map[string]float64{"AAPL": 100})

	sectorOf := map[string]string{"AAPL": "Technology"}
	score := DiversificationScore(p, sectorOf)

	// One of five sectors gives 10; a 100% position penalizes the full
	// distribution half: 50 - (1.0-0.3)*100 floors at 0
	assert.InDelta(t, 10.0, score, 1e-9)
}

func TestDiversificationScoreSpreadPortfolio(t *testing.T) {
	p := domain.NewPortfolio("demo_user")
	p.AddHolding("AAPL", 1, 100)
	p.AddHolding("TSLA", 1, 100)
	p.AddHolding("JNJ", 1, 100)
	p.AddHolding("AMZN", 1, 100)
	p.Reprice(map[string]float64{"AAPL": 100, "TSLA": 100, "JNJ": 100, "AMZN": 100})

	sectorOf := map[string]string{
		"AAPL": "Technology",
		"TSLA": "Automotive",
		"JNJ":  "Healthcare",
		"AMZN": "E-commerce",
	}
	score := DiversificationScore(p, sectorOf)

	// Four sectors of five = 40; equal 25% weights carry no penalty
	assert.InDelta(t, 90.0, score, 1e-9)
}

func TestVolatilityScoreIsValueWeighted(t *testing.T) {
	p := domain.NewPortfolio("demo_user")
	p.AddHolding("AAPL", 3, 100)
	p.AddHolding("JNJ", 1, 100)
	p.Reprice(map[string]float64{"AAPL": 100, "JNJ": 100})

	sectorOf := map[string]string{"AAPL": "Technology", "JNJ": "Healthcare"}
	score := VolatilityScore(p, sectorOf)

	// 0.75 * 65 + 0.25 * 45
	assert.InDelta(t, 60.0, score, 1e-9)
}

func TestAnalyzePortfolioRisk(t *testing.T) {
	store := newAnalysisStore()
	p := domain.NewPortfolio("demo_user")
	p.AddHolding("AAPL", 10, 100)
	p.Reprice(map[string]float64{"AAPL": 100})
	store.portfolios["demo_user"] = *p

	service := newTestService(store)

	result, err := service.AnalyzePortfolioRisk("demo_user")
	require.NoError(t, err)
	assert.Equal(t, "demo_user", result.UserID)
	assert.Equal(t, domain.RiskLevelHigh, result.PortfolioRisk)
	assert.NotEmpty(t, result.Recommendations)
}

func TestAnalyzePortfolioRiskUnknownUser(t *testing.T) {
	service := newTestService(newAnalysisStore())

	_, err := service.AnalyzePortfolioRisk("ghost")
	assert.True(t, domain.IsNotFound(err))
}

func TestRecommendationsExcludeHeldAndRank(t *testing.T) {
	store := newAnalysisStore()
	p := domain.NewPortfolio("demo_user")
	p.AddHolding("AAPL", 10, 100)
	store.portfolios["demo_user"] = *p

	service := newTestService(store)

	recs, err := service.GenerateRecommendations("demo_user")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	for _, rec := range recs {
		assert.NotEqual(t, "AAPL", rec.Symbol)
		// Medium tolerance matches everything at priority 2
		assert.Equal(t, 2, rec.Priority)
	}
}

func TestRecommendationsRankByTolerance(t *testing.T) {
	store := newAnalysisStore()
	store.users["demo_user"] = domain.User{ID: "demo_user", RiskTolerance: domain.RiskToleranceLow}

	service := newTestService(store)

	recs, err := service.GenerateRecommendations("demo_user")
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// Healthcare (45) is the only sector under the conservative
	// threshold, so JNJ ranks first
	assert.Equal(t, "JNJ", recs[0].Symbol)
	assert.Equal(t, 1, recs[0].Priority)
}

func TestRecommendationsCapAtFive(t *testing.T) {
	store := newAnalysisStore()
	for i := 0; i < 10; i++ {
		store.assets = append(store.assets, domain.Asset{
			Symbol: string(rune('A' + i)), Sector: "Financial", CurrentPrice: 10,
		})
	}

	service := newTestService(store)

	recs, err := service.GenerateRecommendations("demo_user")
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestTechnicalAnalysisRangesAndSignal(t *testing.T) {
	service := newTestService(newAnalysisStore())

	for i := 0; i < 100; i++ {
		result, err := service.PerformTechnicalAnalysis("AAPL")
		require.NoError(t, err)

		assert.GreaterOrEqual(t, result.RSI, 20.0)
		assert.LessOrEqual(t, result.RSI, 80.0)
		// Each simulated SMA stays within 5% of the price
		assert.InDelta(t, result.CurrentPrice, result.SMA20, result.CurrentPrice*0.05+1e-9)
		assert.InDelta(t, result.CurrentPrice, result.SMA50, result.CurrentPrice*0.05+1e-9)

		switch result.Signal {
		case SignalBuy:
			assert.Greater(t, result.CurrentPrice, result.SMA20)
			assert.Greater(t, result.SMA20, result.SMA50)
			assert.Less(t, result.RSI, 70.0)
		case SignalSell:
			assert.Less(t, result.CurrentPrice, result.SMA20)
			assert.Less(t, result.SMA20, result.SMA50)
			assert.Greater(t, result.RSI, 30.0)
		case SignalHold:
		default:
			t.Fatalf("unexpected signal %q", result.Signal)
		}
	}
}

func TestTechnicalAnalysisUnknownSymbol(t *testing.T) {
	service := newTestService(newAnalysisStore())

	_, err := service.PerformTechnicalAnalysis("GHOST")
	assert.True(t, domain.IsNotFound(err))
}
