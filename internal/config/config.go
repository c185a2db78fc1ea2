package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot and supporting services.
type Config struct {
	BotToken        string
	WebhookURL      string
	WebhookSecret   string
	ListenAddr      string
	DatabaseDriver  string
	DatabaseDSN     string
	StartingCredit  int
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ChatModel       string
	ImageModel      string
	ImageSize       string
	SystemPrompt    string
	RequestTimeout  time.Duration
	AdminListenAddr string
	AdminUsername   string
	AdminPassword   string
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	S3Prefix        string
	LogLevel        string
}

var supportedDrivers = map[string]bool{
	"mysql":  true,
	"sqlite": true,
	"pgx":    true,
}

// Load reads configuration from environment variables, applying defaults.
// Only malformed values are rejected here; each command checks what it needs.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":3000"),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", "mysql")),
		DatabaseDSN:     getEnv("DATABASE_DSN", os.Getenv("MYSQL_DSN")),
		StartingCredit:  getInt("STARTING_CREDIT", 10),
		OpenAIBaseURL:   strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
		ImageModel:      getEnv("OPENAI_IMAGE_MODEL", "dall-e-2"),
		ImageSize:       getEnv("OPENAI_IMAGE_SIZE", "512x512"),
		SystemPrompt:    os.Getenv("SYSTEM_PROMPT"),
		RequestTimeout:  time.Second * time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 0)),
		AdminListenAddr: getEnv("ADMIN_LISTEN_ADDR", ":8080"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        os.Getenv("S3_REGION"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:        getEnv("S3_PREFIX", "generated"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if !supportedDrivers[cfg.DatabaseDriver] {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q (want mysql, sqlite or pgx)", cfg.DatabaseDriver)
	}
	if cfg.StartingCredit < 0 {
		return Config{}, fmt.Errorf("STARTING_CREDIT must not be negative")
	}

	return cfg, nil
}

// ValidateDatabase checks the settings needed to open the ledger.
func (c Config) ValidateDatabase() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("missing required environment variables: [DATABASE_DSN]")
	}
	return nil
}

// ValidateBot checks the settings needed to talk to the Telegram Bot API.
func (c Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("missing required environment variables: [TELEGRAM_BOT_TOKEN]")
	}
	return nil
}

// ValidateServe checks everything the webhook server needs.
func (c Config) ValidateServe() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.S3Bucket != "" {
		if c.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if c.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if c.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if c.S3PublicBaseURL == "" {
			missing = append(missing, "S3_PUBLIC_BASE_URL")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// ArchiveEnabled reports whether generated images are mirrored to S3.
func (c Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// AdminEnabled reports whether the admin server should be started.
func (c Config) AdminEnabled() bool {
	return c.AdminPassword != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// loadEnvFile loads the first env file found. A missing file is not an error:
// containers usually pass the environment directly.
func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	return nil
}
