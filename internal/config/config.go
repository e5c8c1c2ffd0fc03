// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the ledger database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Trading  TradingConfig
	Market   MarketConfig
}

// TradingConfig holds fee policy and executor settings
type TradingConfig struct {
	BuyFeePercentage  float64       // e.g. 0.001 = 0.1%
	SellFeePercentage float64       // independent from the buy rate
	MinimumFee        float64       // floor applied to every commission
	LockTimeout       time.Duration // per-user/per-symbol lock acquisition bound
}

// MarketConfig holds market simulation settings
type MarketConfig struct {
	UpdateInterval   time.Duration // tick period; sub-second values round up to 1s
	VolatilityFactor float64       // scales the per-tick uniform [-1,1] price factor
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TRADESIM_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("TRADESIM_PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Trading: TradingConfig{
			BuyFeePercentage:  getEnvAsFloat("BUY_FEE_PERCENTAGE", 0.001),
			SellFeePercentage: getEnvAsFloat("SELL_FEE_PERCENTAGE", 0.001),
			MinimumFee:        getEnvAsFloat("MINIMUM_FEE", 1.0),
			LockTimeout:       getEnvAsDuration("LOCK_TIMEOUT", 5*time.Second),
		},
		Market: MarketConfig{
			UpdateInterval:   getEnvAsDuration("MARKET_UPDATE_INTERVAL", 5*time.Second),
			VolatilityFactor: getEnvAsFloat("MARKET_VOLATILITY_FACTOR", 0.02),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Trading.BuyFeePercentage < 0 || c.Trading.SellFeePercentage < 0 {
		return fmt.Errorf("fee percentages must be non-negative")
	}
	if c.Trading.MinimumFee < 0 {
		return fmt.Errorf("minimum fee must be non-negative")
	}
	if c.Trading.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive")
	}
	if c.Market.UpdateInterval <= 0 {
		return fmt.Errorf("market update interval must be positive")
	}
	if c.Market.VolatilityFactor <= 0 {
		return fmt.Errorf("volatility factor must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
