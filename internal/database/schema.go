package database

var schemas = map[string]string{
	DriverMySQL:    mysqlSchema,
	DriverSQLite:   sqliteSchema,
	DriverPostgres: postgresSchema,
}

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    telegram_id BIGINT NOT NULL UNIQUE,
    credit INT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    CONSTRAINT chk_users_credit CHECK (credit >= 0)
);

CREATE TABLE IF NOT EXISTS usage_logs (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    telegram_id BIGINT NOT NULL,
    kind VARCHAR(16) NOT NULL,
    prompt TEXT NOT NULL,
    cost INT NOT NULL,
    result_url VARCHAR(1024) NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    INDEX idx_usage_logs_user (telegram_id, id)
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    telegram_id INTEGER NOT NULL UNIQUE,
    credit INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    telegram_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    prompt TEXT NOT NULL,
    cost INTEGER NOT NULL,
    result_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_logs_user ON usage_logs(telegram_id, id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    telegram_id BIGINT NOT NULL UNIQUE,
    credit INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_logs (
    id BIGSERIAL PRIMARY KEY,
    telegram_id BIGINT NOT NULL,
    kind VARCHAR(16) NOT NULL,
    prompt TEXT NOT NULL,
    cost INTEGER NOT NULL,
    result_url TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_logs_user ON usage_logs(telegram_id, id);
`
