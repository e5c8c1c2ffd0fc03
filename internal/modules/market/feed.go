package market

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
	"github.com/jperaltad/tradesim/internal/events"
	"github.com/jperaltad/tradesim/internal/locks"
)

// Store is the persistence surface the feed needs
type Store interface {
	GetAllAssets() ([]domain.Asset, error)
	GetAsset(symbol string) (*domain.Asset, error)
	GetMarketData(symbol string) (*domain.MarketData, error)
	GetAllMarketData() ([]domain.MarketData, error)
	ApplyQuote(asset *domain.Asset, md *domain.MarketData) error
}

// Event impact ranges, as fractions of the current price
var eventImpactRanges = map[domain.MarketEvent][2]float64{
	domain.MarketEventBull:     {0.05, 0.15},
	domain.MarketEventBear:     {-0.15, -0.05},
	domain.MarketEventCrash:    {-0.35, -0.15},
	domain.MarketEventRecovery: {0.10, 0.25},
}

// Feed is the market price simulator. It runs a periodic tick that
// perturbs every asset's price, and applies one-shot market-wide
// shocks on demand. It has two states, stopped and running; Start and
// Stop are no-ops when already in the target state.
type Feed struct {
	store            Store
	registry         *Registry
	symbolLocks      *locks.KeyedMutex
	events           *events.Manager
	updateInterval   time.Duration
	volatilityFactor float64
	lockTimeout      time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	rngMu sync.Mutex
	rng   *rand.Rand

	log zerolog.Logger
}

// NewFeed creates a market feed in the stopped state
func NewFeed(store Store, registry *Registry, symbolLocks *locks.KeyedMutex, eventManager *events.Manager, updateInterval time.Duration, volatilityFactor float64, lockTimeout time.Duration, log zerolog.Logger) *Feed {
	return &Feed{
		store:            store,
		registry:         registry,
		symbolLocks:      symbolLocks,
		events:           eventManager,
		updateInterval:   updateInterval,
		volatilityFactor: volatilityFactor,
		lockTimeout:      lockTimeout,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		log:              log.With().Str("service", "market").Logger(),
	}
}

// Running reports whether the periodic tick is scheduled
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Start begins the periodic tick. Calling Start while running logs a
// warning and changes nothing.
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		f.log.Warn().Msg("Market feed already running")
		return
	}

	f.cron = cron.New()
	f.cron.Schedule(cron.Every(f.updateInterval), cron.FuncJob(func() {
		if err := f.tick(); err != nil {
			f.log.Error().Err(err).Msg("Market tick failed")
			f.events.EmitError("market", err, nil)
		}
	}))
	f.cron.Start()
	f.running = true

	f.log.Info().Dur("interval", f.updateInterval).Msg("Market feed started")
	f.events.Emit(events.MarketFeedStarted, "market", map[string]interface{}{
		"interval": f.updateInterval.String(),
	})
}

// Stop cancels the periodic tick and waits for an in-progress tick to
// finish, so no tick is torn mid-update. Calling Stop while stopped is
// a no-op.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}

	ctx := f.cron.Stop()
	<-ctx.Done()
	f.cron = nil
	f.running = false

	f.log.Info().Msg("Market feed stopped")
	f.events.Emit(events.MarketFeedStopped, "market", nil)
}

// tick perturbs every asset's price once. Each asset is updated under
// its symbol lock; subscribers are notified exactly once, after every
// asset in the cycle has been committed and all locks released.
func (f *Feed) tick() error {
	assets, err := f.store.GetAllAssets()
	if err != nil {
		return fmt.Errorf("failed to list assets for tick: %w", err)
	}

	var errs []error
	for i := range assets {
		err := f.updateSymbol(assets[i].Symbol, func(price float64) float64 {
			delta := f.uniform(-1, 1) * f.volatilityFactor * price
			return price + delta
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("symbol %s: %w", assets[i].Symbol, err))
		}
	}

	f.registry.Notify()
	f.events.Emit(events.PriceUpdated, "market", map[string]interface{}{
		"assets": len(assets),
	})

	return errors.Join(errs...)
}

// SimulateMarketEvent applies a one-shot market-wide shock outside the
// periodic schedule. Every asset moves by a random factor drawn from
// the event's fixed range; subscribers are notified once at the end.
func (f *Feed) SimulateMarketEvent(kind domain.MarketEvent) error {
	impactRange, ok := eventImpactRanges[kind]
	if !ok {
		return fmt.Errorf("unknown market event: %s", kind)
	}

	assets, err := f.store.GetAllAssets()
	if err != nil {
		return fmt.Errorf("failed to list assets for market event: %w", err)
	}

	var errs []error
	for i := range assets {
		err := f.updateSymbol(assets[i].Symbol, func(price float64) float64 {
			impact := f.uniform(impactRange[0], impactRange[1])
			return price * (1 + impact)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("symbol %s: %w", assets[i].Symbol, err))
		}
	}

	f.registry.Notify()
	f.log.Info().Str("event", string(kind)).Int("assets", len(assets)).Msg("Market event simulated")
	f.events.Emit(events.MarketEventSimulated, "market", map[string]interface{}{
		"event":  string(kind),
		"assets": len(assets),
	})

	return errors.Join(errs...)
}

// updateSymbol mutates one asset's price under its symbol lock. The
// asset and market data are re-read under the lock, so a concurrent
// trade's market impact is never overwritten with stale state.
func (f *Feed) updateSymbol(symbol string, nextPrice func(current float64) float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.lockTimeout)
	defer cancel()

	release, err := f.symbolLocks.Acquire(ctx, symbol)
	if err != nil {
		return err
	}
	defer release()

	asset, err := f.store.GetAsset(symbol)
	if err != nil {
		return err
	}
	if asset == nil {
		return domain.NewNotFound("asset", symbol)
	}

	md, err := f.store.GetMarketData(symbol)
	if err != nil {
		return err
	}
	if md == nil {
		md = &domain.MarketData{Symbol: symbol}
	}

	previous := asset.CurrentPrice
	newPrice := nextPrice(previous)
	if newPrice < domain.MinAssetPrice {
		newPrice = domain.MinAssetPrice
	}

	now := time.Now()
	asset.CurrentPrice = newPrice
	asset.LastUpdated = now

	md.Price = newPrice
	md.Change = newPrice - previous
	md.ChangePercent = (newPrice - previous) / previous * 100
	md.Volume += f.randomVolume()
	md.Timestamp = now

	return f.store.ApplyQuote(asset, md)
}

func (f *Feed) uniform(min, max float64) float64 {
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return min + f.rng.Float64()*(max-min)
}

func (f *Feed) randomVolume() int64 {
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return f.rng.Int63n(10_000)
}
