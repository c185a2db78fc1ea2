package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLiteIsRepeatable(t *testing.T) {
	db, err := Open(DriverSQLite, "file:"+filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'usage_logs') ORDER BY name`))
	assert.Equal(t, []string{"usage_logs", "users"}, tables)
}

func TestMigrate_CreditCannotGoNegative(t *testing.T) {
	db, err := Open(DriverSQLite, "file:"+filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO users (telegram_id, credit, created_at, updated_at) VALUES (1, -1, 0, 0)`)
	assert.Error(t, err)
}

func TestSchemasCoverEveryDriver(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverSQLite, DriverPostgres} {
		assert.Contains(t, schemas, driver)
	}
}
