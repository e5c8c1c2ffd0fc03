package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
)

const transactionsColumns = `id, user_id, symbol, side, status, quantity, price, fees, total, timestamp`

// TransactionRepository handles the append-only transaction log.
// Rows are never updated or deleted.
type TransactionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log.With().Str("repo", "transaction").Logger(),
	}
}

// Append inserts a completed transaction record
func (r *TransactionRepository) Append(txn *domain.Transaction) error {
	return appendTransaction(r.db, txn)
}

func appendTransaction(q dbtx, txn *domain.Transaction) error {
	if txn.Status != domain.StatusCompleted {
		return fmt.Errorf("failed to append transaction %s: only completed transactions enter the ledger", txn.ID)
	}

	_, err := q.Exec(`
		INSERT INTO transactions (id, user_id, symbol, side, status, quantity, price, fees, total, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.UserID, normalizeSymbol(txn.Symbol), string(txn.Side), string(txn.Status),
		txn.Quantity, txn.Price, txn.Fees, txn.Total, txn.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", txn.ID, err)
	}
	return nil
}

// GetByUserID retrieves a user's transactions, most recent first
func (r *TransactionRepository) GetByUserID(userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT `+transactionsColumns+`
		FROM transactions WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var txn domain.Transaction
	var side, status string
	var timestamp int64

	err := row.Scan(&txn.ID, &txn.UserID, &txn.Symbol, &side, &status,
		&txn.Quantity, &txn.Price, &txn.Fees, &txn.Total, &timestamp)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn.Side = domain.TradeSide(side)
	txn.Status = domain.TransactionStatus(status)
	txn.Timestamp = time.UnixMilli(timestamp)
	return txn, nil
}
