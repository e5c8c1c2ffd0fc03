package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MarketSnapshot is one msgpack-encoded capture of the full market data set
type MarketSnapshot struct {
	TakenAt time.Time `json:"taken_at"`
	Data    []byte    `json:"data"`
	ID      int64     `json:"id"`
}

// SnapshotRepository stores periodic market data snapshots
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "snapshot").Logger(),
	}
}

// Insert stores one snapshot blob
func (r *SnapshotRepository) Insert(takenAt time.Time, data []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO market_snapshots (taken_at, data) VALUES (?, ?)
	`, takenAt.UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("failed to insert market snapshot: %w", err)
	}
	return nil
}

// ListRecent retrieves the most recent snapshots, newest first
func (r *SnapshotRepository) ListRecent(limit int) ([]MarketSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, taken_at, data FROM market_snapshots
		ORDER BY taken_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []MarketSnapshot
	for rows.Next() {
		var s MarketSnapshot
		var takenAt int64
		if err := rows.Scan(&s.ID, &takenAt, &s.Data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.TakenAt = time.UnixMilli(takenAt)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}
