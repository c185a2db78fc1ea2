package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/digkill/TGCreditBot/internal/models"
)

type UsageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) Log(ctx context.Context, record models.UsageRecord) error {
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}
	const query = `
INSERT INTO usage_logs (telegram_id, kind, prompt, cost, result_url, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), record.TelegramID, record.Kind, record.Prompt, record.Cost, record.ResultURL, record.CreatedAt); err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

// Recent returns the latest records for a user, newest first.
func (r *UsageRepository) Recent(ctx context.Context, telegramID int64, limit int) ([]models.UsageRecord, error) {
	const query = `
SELECT id, telegram_id, kind, prompt, cost, result_url, created_at
FROM usage_logs
WHERE telegram_id = ?
ORDER BY id DESC
LIMIT ?`
	records := []models.UsageRecord{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), telegramID, limit); err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}
	return records, nil
}
