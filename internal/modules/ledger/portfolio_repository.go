package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/domain"
)

// PortfolioRepository handles portfolio and holding database operations.
// Holdings keep their insertion order via an explicit position column.
type PortfolioRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *sql.DB, log zerolog.Logger) *PortfolioRepository {
	return &PortfolioRepository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// GetByUserID retrieves a portfolio with its holdings.
// Returns (nil, nil) when the user has no portfolio row.
func (r *PortfolioRepository) GetByUserID(userID string) (*domain.Portfolio, error) {
	row := r.db.QueryRow(`
		SELECT user_id, total_value, total_invested, total_return, percentage_return, last_updated
		FROM portfolios WHERE user_id = ?
	`, userID)

	var p domain.Portfolio
	var lastUpdated int64
	err := row.Scan(&p.UserID, &p.TotalValue, &p.TotalInvested, &p.TotalReturn, &p.PercentageReturn, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	p.LastUpdated = time.UnixMilli(lastUpdated)

	rows, err := r.db.Query(`
		SELECT symbol, quantity, average_price, current_value, total_return, percentage_return
		FROM holdings WHERE user_id = ? ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	p.Holdings = []domain.Holding{}
	for rows.Next() {
		var h domain.Holding
		err := rows.Scan(&h.Symbol, &h.Quantity, &h.AveragePrice, &h.CurrentValue, &h.TotalReturn, &h.PercentageReturn)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding row: %w", err)
		}
		p.Holdings = append(p.Holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return &p, nil
}

// Save writes the portfolio and all its holdings in a single transaction
func (r *PortfolioRepository) Save(p *domain.Portfolio) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return savePortfolio(tx, p)
	})
}

func savePortfolio(q dbtx, p *domain.Portfolio) error {
	_, err := q.Exec(`
		INSERT INTO portfolios (user_id, total_value, total_invested, total_return, percentage_return, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_value = excluded.total_value,
			total_invested = excluded.total_invested,
			total_return = excluded.total_return,
			percentage_return = excluded.percentage_return,
			last_updated = excluded.last_updated
	`, p.UserID, p.TotalValue, p.TotalInvested, p.TotalReturn, p.PercentageReturn, p.LastUpdated.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio %s: %w", p.UserID, err)
	}

	// Holdings are replaced wholesale; the set is small and this keeps
	// removal-on-zero-quantity and reordering trivially correct.
	if _, err := q.Exec("DELETE FROM holdings WHERE user_id = ?", p.UserID); err != nil {
		return fmt.Errorf("failed to clear holdings for %s: %w", p.UserID, err)
	}

	for i := range p.Holdings {
		h := &p.Holdings[i]
		if h.Quantity < 0 {
			return fmt.Errorf("failed to save holding %s/%s: quantity must not be negative", p.UserID, h.Symbol)
		}
		_, err := q.Exec(`
			INSERT INTO holdings (user_id, symbol, quantity, average_price, current_value, total_return, percentage_return, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.UserID, h.Symbol, h.Quantity, h.AveragePrice, h.CurrentValue, h.TotalReturn, h.PercentageReturn, i)
		if err != nil {
			return fmt.Errorf("failed to insert holding %s/%s: %w", p.UserID, h.Symbol, err)
		}
	}

	return nil
}
