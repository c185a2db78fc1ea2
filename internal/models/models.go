package models

type UsageKind string

const (
	UsageQuery UsageKind = "query"
	UsageImage UsageKind = "image"
)

// Credit cost per metered operation.
const (
	CostQuery = 1
	CostImage = 3
)

type User struct {
	ID         int64 `db:"id" json:"id"`
	TelegramID int64 `db:"telegram_id" json:"telegram_id"`
	Credit     int   `db:"credit" json:"credit"`
	CreatedAt  int64 `db:"created_at" json:"created_at"`
	UpdatedAt  int64 `db:"updated_at" json:"updated_at"`
}

type UsageRecord struct {
	ID         int64     `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Kind       UsageKind `db:"kind" json:"kind"`
	Prompt     string    `db:"prompt" json:"prompt"`
	Cost       int       `db:"cost" json:"cost"`
	ResultURL  string    `db:"result_url" json:"result_url,omitempty"`
	CreatedAt  int64     `db:"created_at" json:"created_at"`
}
