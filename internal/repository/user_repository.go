package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/digkill/TGCreditBot/internal/models"
)

// ErrInvalidDebit is returned when a debit could drive a balance negative or is not positive.
var ErrInvalidDebit = errors.New("invalid debit: threshold must be >= amount > 0")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	const query = `
SELECT id, telegram_id, credit, created_at, updated_at
FROM users WHERE telegram_id = ?`
	var u models.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts the account unless one already exists for the telegram id.
// It reports whether this call created the row; a concurrent insert for the
// same id is absorbed by the unique key.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, credit int) (bool, error) {
	now := time.Now().Unix()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(r.insertIgnoreUser()), telegramID, credit, now, now)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *UserRepository) insertIgnoreUser() string {
	switch r.db.DriverName() {
	case "mysql":
		return `INSERT IGNORE INTO users (telegram_id, credit, created_at, updated_at) VALUES (?, ?, ?, ?)`
	default:
		return `INSERT INTO users (telegram_id, credit, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (telegram_id) DO NOTHING`
	}
}

// Debit subtracts amount from the balance only if it is still >= threshold at
// write time. It reports whether the debit was applied.
func (r *UserRepository) Debit(ctx context.Context, telegramID int64, threshold, amount int) (bool, error) {
	if amount <= 0 || threshold < amount {
		return false, ErrInvalidDebit
	}
	const query = `
UPDATE users SET credit = credit - ?, updated_at = ?
WHERE telegram_id = ? AND credit >= ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), amount, time.Now().Unix(), telegramID, threshold)
	if err != nil {
		return false, fmt.Errorf("debit credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit rows affected: %w", err)
	}
	return affected > 0, nil
}

// Grant adds amount to an existing balance and returns the updated account.
func (r *UserRepository) Grant(ctx context.Context, telegramID int64, amount int) (*models.User, error) {
	const query = `UPDATE users SET credit = credit + ?, updated_at = ? WHERE telegram_id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), amount, time.Now().Unix(), telegramID)
	if err != nil {
		return nil, fmt.Errorf("grant credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("grant rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *UserRepository) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT telegram_id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list telegram ids: %w", err)
	}
	return ids, nil
}
