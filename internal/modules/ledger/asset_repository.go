package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
)

const assetsColumns = `symbol, name, sector, current_price, last_updated`
const marketDataColumns = `symbol, price, change, change_percent, volume, timestamp`

// AssetRepository handles asset and market data database operations.
// Both tables describe the same instruments; writes that must keep them
// in agreement go through Store.ApplyQuote instead.
type AssetRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sql.DB, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		db:  db,
		log: log.With().Str("repo", "asset").Logger(),
	}
}

// GetBySymbol retrieves an asset by symbol. Returns (nil, nil) when absent.
func (r *AssetRepository) GetBySymbol(symbol string) (*domain.Asset, error) {
	row := r.db.QueryRow("SELECT "+assetsColumns+" FROM assets WHERE symbol = ?", normalizeSymbol(symbol))

	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// GetAll retrieves all assets ordered by symbol
func (r *AssetRepository) GetAll() ([]domain.Asset, error) {
	rows, err := r.db.Query("SELECT " + assetsColumns + " FROM assets ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

// Upsert inserts or replaces an asset record
func (r *AssetRepository) Upsert(asset *domain.Asset) error {
	return upsertAsset(r.db, asset)
}

func upsertAsset(q dbtx, asset *domain.Asset) error {
	if asset.CurrentPrice <= 0 {
		return fmt.Errorf("failed to upsert asset %s: price must be positive", asset.Symbol)
	}

	_, err := q.Exec(`
		INSERT INTO assets (symbol, name, sector, current_price, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			current_price = excluded.current_price,
			last_updated = excluded.last_updated
	`, normalizeSymbol(asset.Symbol), asset.Name, asset.Sector, asset.CurrentPrice, asset.LastUpdated.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert asset %s: %w", asset.Symbol, err)
	}
	return nil
}

// GetMarketData retrieves market data by symbol. Returns (nil, nil) when absent.
func (r *AssetRepository) GetMarketData(symbol string) (*domain.MarketData, error) {
	row := r.db.QueryRow("SELECT "+marketDataColumns+" FROM market_data WHERE symbol = ?", normalizeSymbol(symbol))

	md, err := scanMarketData(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}
	return &md, nil
}

// GetAllMarketData retrieves market data for every symbol
func (r *AssetRepository) GetAllMarketData() ([]domain.MarketData, error) {
	rows, err := r.db.Query("SELECT " + marketDataColumns + " FROM market_data ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}
	defer rows.Close()

	var mds []domain.MarketData
	for rows.Next() {
		md, err := scanMarketData(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market data row: %w", err)
		}
		mds = append(mds, md)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate market data: %w", err)
	}
	return mds, nil
}

// UpsertMarketData inserts or replaces a market data record
func (r *AssetRepository) UpsertMarketData(md *domain.MarketData) error {
	return upsertMarketData(r.db, md)
}

func upsertMarketData(q dbtx, md *domain.MarketData) error {
	if md.Price <= 0 {
		return fmt.Errorf("failed to upsert market data %s: price must be positive", md.Symbol)
	}

	_, err := q.Exec(`
		INSERT INTO market_data (symbol, price, change, change_percent, volume, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			change = excluded.change,
			change_percent = excluded.change_percent,
			volume = excluded.volume,
			timestamp = excluded.timestamp
	`, normalizeSymbol(md.Symbol), md.Price, md.Change, md.ChangePercent, md.Volume, md.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert market data %s: %w", md.Symbol, err)
	}
	return nil
}

func scanAsset(row rowScanner) (domain.Asset, error) {
	var asset domain.Asset
	var lastUpdated int64

	err := row.Scan(&asset.Symbol, &asset.Name, &asset.Sector, &asset.CurrentPrice, &lastUpdated)
	if err != nil {
		return domain.Asset{}, err
	}

	asset.LastUpdated = time.UnixMilli(lastUpdated)
	return asset, nil
}

func scanMarketData(row rowScanner) (domain.MarketData, error) {
	var md domain.MarketData
	var timestamp int64

	err := row.Scan(&md.Symbol, &md.Price, &md.Change, &md.ChangePercent, &md.Volume, &timestamp)
	if err != nil {
		return domain.MarketData{}, err
	}

	md.Timestamp = time.UnixMilli(timestamp)
	return md, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
