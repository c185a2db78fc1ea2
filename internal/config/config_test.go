package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_ENV_PATH", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/bot")
	t.Setenv("STARTING_CREDIT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/bot", cfg.DatabaseDSN)
	assert.Equal(t, 10, cfg.StartingCredit)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONFIG_ENV_PATH", "")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "file:bot.db")
	t.Setenv("STARTING_CREDIT", "25")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8081/v1/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 25, cfg.StartingCredit)
	assert.Equal(t, "http://localhost:8081/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.S3UsePathStyle)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		t.Setenv("CONFIG_ENV_PATH", "")
		t.Setenv("DATABASE_DRIVER", "oracle")
		t.Setenv("DATABASE_DSN", "x")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oracle")
	})

	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("CONFIG_ENV_PATH", "")
		t.Setenv("DATABASE_DRIVER", "mysql")
		t.Setenv("DATABASE_DSN", "")
		t.Setenv("MYSQL_DSN", "")

		cfg, err := Load()
		require.NoError(t, err)
		err = cfg.ValidateDatabase()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_DSN")
	})

	t.Run("negative starting credit", func(t *testing.T) {
		t.Setenv("CONFIG_ENV_PATH", "")
		t.Setenv("DATABASE_DRIVER", "mysql")
		t.Setenv("DATABASE_DSN", "x")
		t.Setenv("STARTING_CREDIT", "-1")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.env")
	require.NoError(t, os.WriteFile(path, []byte("OPENAI_CHAT_MODEL=gpt-4o-mini\n"), 0o600))

	t.Setenv("CONFIG_ENV_PATH", path)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:bot.db")
	t.Setenv("OPENAI_CHAT_MODEL", "")
	// godotenv.Load never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv("OPENAI_CHAT_MODEL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
}

func TestValidateServe(t *testing.T) {
	cfg := Config{}
	err := cfg.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	assert.Contains(t, err.Error(), "DATABASE_DSN")

	cfg = Config{BotToken: "t", DatabaseDSN: "file:bot.db", OpenAIAPIKey: "k", S3Bucket: "images"}
	err = cfg.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_REGION")

	cfg = Config{BotToken: "t", DatabaseDSN: "file:bot.db", OpenAIAPIKey: "k"}
	assert.NoError(t, cfg.ValidateServe())
	assert.NoError(t, cfg.ValidateDatabase())
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.AdminEnabled())
	assert.NoError(t, cfg.ValidateBot())
}
