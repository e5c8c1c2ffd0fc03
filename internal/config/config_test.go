package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRADESIM_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.InDelta(t, 0.001, cfg.Trading.BuyFeePercentage, 1e-9)
	assert.InDelta(t, 0.001, cfg.Trading.SellFeePercentage, 1e-9)
	assert.InDelta(t, 1.0, cfg.Trading.MinimumFee, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Trading.LockTimeout)
	assert.Equal(t, 5*time.Second, cfg.Market.UpdateInterval)
	assert.InDelta(t, 0.02, cfg.Market.VolatilityFactor, 1e-9)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRADESIM_DATA_DIR", t.TempDir())
	t.Setenv("TRADESIM_PORT", "9090")
	t.Setenv("BUY_FEE_PERCENTAGE", "0.01")
	t.Setenv("MARKET_UPDATE_INTERVAL", "30s")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.InDelta(t, 0.01, cfg.Trading.BuyFeePercentage, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Market.UpdateInterval)
	assert.True(t, cfg.DevMode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Trading: TradingConfig{
				BuyFeePercentage:  0.001,
				SellFeePercentage: 0.001,
				MinimumFee:        1.0,
				LockTimeout:       time.Second,
			},
			Market: MarketConfig{
				UpdateInterval:   time.Second,
				VolatilityFactor: 0.02,
			},
		}
	}

	cfg := base()
	cfg.Trading.BuyFeePercentage = -0.1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Trading.LockTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Market.UpdateInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Market.VolatilityFactor = 0
	assert.Error(t, cfg.Validate())

	assert.NoError(t, base().Validate())
}
