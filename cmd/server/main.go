// Package main is the entry point for the simulated trading platform.
// It wires the ledger store, the trade executor, the market feed, and
// the HTTP API together, then runs until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jperaltad/tradesim/internal/config"
	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/events"
	"github.com/jperaltad/tradesim/internal/locks"
	"github.com/jperaltad/tradesim/internal/modules/analysis"
	"github.com/jperaltad/tradesim/internal/modules/ledger"
	"github.com/jperaltad/tradesim/internal/modules/market"
	"github.com/jperaltad/tradesim/internal/modules/portfolio"
	"github.com/jperaltad/tradesim/internal/modules/trading"
	"github.com/jperaltad/tradesim/internal/server"
	"github.com/jperaltad/tradesim/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting trading platform")

	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "ledger.db"),
		Name: "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	store := ledger.NewStore(db.Conn(), log)
	if err := store.SeedDemoData(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}

	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)

	userLocks := locks.NewKeyedMutex()
	symbolLocks := locks.NewKeyedMutex()

	fees := trading.NewFeeCalculator(
		cfg.Trading.BuyFeePercentage,
		cfg.Trading.SellFeePercentage,
		cfg.Trading.MinimumFee,
	)
	executor := trading.NewExecutor(store, fees, userLocks, symbolLocks, cfg.Trading.LockTimeout, log)
	tradingService := trading.NewService(executor, store, eventManager, log)

	registry := market.NewRegistry(log)
	revaluer := portfolio.NewRevaluer(store, userLocks, eventManager, cfg.Trading.LockTimeout, log)
	registry.Subscribe(revaluer)
	registry.Subscribe(portfolio.NewSnapshotRecorder(store, store.Snapshots(), log))

	feed := market.NewFeed(
		store,
		registry,
		symbolLocks,
		eventManager,
		cfg.Market.UpdateInterval,
		cfg.Market.VolatilityFactor,
		cfg.Trading.LockTimeout,
		log,
	)
	feed.Start()

	analysisService := analysis.NewService(
		store,
		analysis.BasicRiskStrategy{},
		analysis.BasicRecommendationStrategy{},
		analysis.NewBasicTechnicalStrategy(),
		log,
	)

	srv := server.New(server.Config{
		Log:               log,
		DB:                db,
		EventBus:          bus,
		LedgerHandlers:    ledger.NewHandlers(store, log),
		TradingHandlers:   trading.NewHandlers(tradingService, log),
		MarketHandlers:    market.NewHandlers(feed, store, store.Snapshots(), log),
		PortfolioHandlers: portfolio.NewHandlers(store, revaluer, log),
		AnalysisHandlers:  analysis.NewHandlers(analysisService, log),
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	// The feed stops first so no tick runs against a closing store
	feed.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
