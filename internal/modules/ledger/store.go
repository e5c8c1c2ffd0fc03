// Package ledger implements the persistence boundary for the trading
// core: users, assets, market data, portfolios, and the append-only
// transaction log, all backed by a single sqlite database.
package ledger

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/domain"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so repository writes
// can run standalone or inside a store-level transaction.
type dbtx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Store is the ledger facade implementing domain.Store, plus the two
// multi-record writes the trading core needs to be atomic:
// ApplyTrade (user + portfolio + transaction) and ApplyQuote
// (asset + market data, the dual-write invariant).
type Store struct {
	db           *sql.DB
	users        *UserRepository
	assets       *AssetRepository
	portfolios   *PortfolioRepository
	transactions *TransactionRepository
	snapshots    *SnapshotRepository
	log          zerolog.Logger
}

// Compile-time check that Store implements domain.Store
var _ domain.Store = (*Store)(nil)

// NewStore creates a ledger store over an open database connection
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:           db,
		users:        NewUserRepository(db, log),
		assets:       NewAssetRepository(db, log),
		portfolios:   NewPortfolioRepository(db, log),
		transactions: NewTransactionRepository(db, log),
		snapshots:    NewSnapshotRepository(db, log),
		log:          log.With().Str("service", "ledger").Logger(),
	}
}

// Snapshots exposes the snapshot repository for subscribers and handlers
func (s *Store) Snapshots() *SnapshotRepository {
	return s.snapshots
}

// GetUser retrieves a user by id, (nil, nil) when absent
func (s *Store) GetUser(id string) (*domain.User, error) {
	return s.users.GetByID(id)
}

// GetAllUsers retrieves all users
func (s *Store) GetAllUsers() ([]domain.User, error) {
	return s.users.GetAll()
}

// UpdateUser writes a user record
func (s *Store) UpdateUser(user *domain.User) error {
	return s.users.Upsert(user)
}

// GetAsset retrieves an asset by symbol, (nil, nil) when absent
func (s *Store) GetAsset(symbol string) (*domain.Asset, error) {
	return s.assets.GetBySymbol(symbol)
}

// UpdateAsset writes an asset record
func (s *Store) UpdateAsset(asset *domain.Asset) error {
	return s.assets.Upsert(asset)
}

// GetAllAssets retrieves all assets
func (s *Store) GetAllAssets() ([]domain.Asset, error) {
	return s.assets.GetAll()
}

// GetMarketData retrieves market data by symbol, (nil, nil) when absent
func (s *Store) GetMarketData(symbol string) (*domain.MarketData, error) {
	return s.assets.GetMarketData(symbol)
}

// UpdateMarketData writes a market data record
func (s *Store) UpdateMarketData(md *domain.MarketData) error {
	return s.assets.UpsertMarketData(md)
}

// GetAllMarketData retrieves market data for every symbol
func (s *Store) GetAllMarketData() ([]domain.MarketData, error) {
	return s.assets.GetAllMarketData()
}

// GetPortfolio retrieves a portfolio by user id, (nil, nil) when absent
func (s *Store) GetPortfolio(userID string) (*domain.Portfolio, error) {
	return s.portfolios.GetByUserID(userID)
}

// UpdatePortfolio writes a portfolio with its holdings
func (s *Store) UpdatePortfolio(portfolio *domain.Portfolio) error {
	return s.portfolios.Save(portfolio)
}

// AppendTransaction appends a completed transaction to the log
func (s *Store) AppendTransaction(txn *domain.Transaction) error {
	return s.transactions.Append(txn)
}

// GetTransactions retrieves a user's transactions, most recent first
func (s *Store) GetTransactions(userID string) ([]domain.Transaction, error) {
	return s.transactions.GetByUserID(userID)
}

// ApplyTrade persists the settlement of one order in a single database
// transaction: the mutated user, the mutated portfolio, and the new
// ledger entry all land together or not at all.
func (s *Store) ApplyTrade(user *domain.User, portfolio *domain.Portfolio, txn *domain.Transaction) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := upsertUser(tx, user); err != nil {
			return err
		}
		if err := savePortfolio(tx, portfolio); err != nil {
			return err
		}
		return appendTransaction(tx, txn)
	})
}

// ApplyQuote persists a price mutation to the asset record and its
// market data view together. Both must carry the same price; the check
// catches callers that would break the dual-write invariant.
func (s *Store) ApplyQuote(asset *domain.Asset, md *domain.MarketData) error {
	if asset.Symbol != md.Symbol {
		return fmt.Errorf("quote symbol mismatch: asset %s vs market data %s", asset.Symbol, md.Symbol)
	}
	if math.Abs(asset.CurrentPrice-md.Price) > 1e-9 {
		return fmt.Errorf("quote price mismatch for %s: asset %f vs market data %f",
			asset.Symbol, asset.CurrentPrice, md.Price)
	}

	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := upsertAsset(tx, asset); err != nil {
			return err
		}
		return upsertMarketData(tx, md)
	})
}

// SeedDemoData installs the demo users, assets, and empty portfolios on
// a fresh database. A database that already has users is left untouched.
func (s *Store) SeedDemoData() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()

	users := []domain.User{
		{ID: "demo_user", Name: "Demo User", Balance: 10000, RiskTolerance: domain.RiskToleranceMedium, CreatedAt: now},
		{ID: "trader_user", Name: "Active Trader", Balance: 25000, RiskTolerance: domain.RiskToleranceHigh, CreatedAt: now},
		{ID: "admin_user", Name: "Admin", Balance: 100000, RiskTolerance: domain.RiskToleranceLow, CreatedAt: now},
	}

	assets := []domain.Asset{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: 175.50, LastUpdated: now},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", CurrentPrice: 140.25, LastUpdated: now},
		{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Automotive", CurrentPrice: 250.75, LastUpdated: now},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "E-commerce", CurrentPrice: 145.30, LastUpdated: now},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", CurrentPrice: 160.80, LastUpdated: now},
	}

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		for i := range users {
			if err := upsertUser(tx, &users[i]); err != nil {
				return err
			}
			portfolio := domain.NewPortfolio(users[i].ID)
			if err := savePortfolio(tx, portfolio); err != nil {
				return err
			}
		}
		for i := range assets {
			if err := upsertAsset(tx, &assets[i]); err != nil {
				return err
			}
			md := &domain.MarketData{
				Symbol:    assets[i].Symbol,
				Price:     assets[i].CurrentPrice,
				Volume:    1_000_000,
				Timestamp: now,
			}
			if err := upsertMarketData(tx, md); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	s.log.Info().
		Int("users", len(users)).
		Int("assets", len(assets)).
		Msg("Seeded demo data")
	return nil
}
