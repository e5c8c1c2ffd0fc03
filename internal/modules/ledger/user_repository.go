package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jperaltad/tradesim/internal/domain"
)

// usersColumns is the list of columns for the users table.
// Used to avoid SELECT * which can break when schema changes.
const usersColumns = `id, name, balance, risk_tolerance, created_at`

// UserRepository handles user database operations
type UserRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.With().Str("repo", "user").Logger(),
	}
}

// GetByID retrieves a user by id. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(id string) (*domain.User, error) {
	row := r.db.QueryRow("SELECT "+usersColumns+" FROM users WHERE id = ?", id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetAll retrieves all users ordered by creation time
func (r *UserRepository) GetAll() ([]domain.User, error) {
	rows, err := r.db.Query("SELECT " + usersColumns + " FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Upsert inserts or replaces a user record
func (r *UserRepository) Upsert(user *domain.User) error {
	return upsertUser(r.db, user)
}

func upsertUser(q dbtx, user *domain.User) error {
	if user.Balance < 0 {
		return fmt.Errorf("failed to upsert user %s: balance must not be negative", user.ID)
	}

	_, err := q.Exec(`
		INSERT INTO users (id, name, balance, risk_tolerance, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			balance = excluded.balance,
			risk_tolerance = excluded.risk_tolerance
	`, user.ID, user.Name, user.Balance, string(user.RiskTolerance), user.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var riskTolerance string
	var createdAt int64

	err := row.Scan(&user.ID, &user.Name, &user.Balance, &riskTolerance, &createdAt)
	if err != nil {
		return domain.User{}, err
	}

	user.RiskTolerance = domain.RiskTolerance(riskTolerance)
	user.CreatedAt = time.UnixMilli(createdAt)
	return user, nil
}
