package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the game schema and tables if they do not exist.
// Statements are idempotent so every binary can run this at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS game`,
		`CREATE TABLE IF NOT EXISTS game.players (
			user_id      TEXT PRIMARY KEY,
			username     TEXT NOT NULL,
			level        INT NOT NULL DEFAULT 1,
			xp           BIGINT NOT NULL DEFAULT 0,
			reputation   BIGINT NOT NULL DEFAULT 0,
			strength     INT NOT NULL DEFAULT 1,
			stealth      INT NOT NULL DEFAULT 1,
			intelligence INT NOT NULL DEFAULT 1,
			bank_tier    INT NOT NULL DEFAULT 1,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS game.finances (
			user_id        TEXT PRIMARY KEY REFERENCES game.players(user_id),
			cash           BIGINT NOT NULL DEFAULT 0 CHECK (cash >= 0),
			bank           BIGINT NOT NULL DEFAULT 0 CHECK (bank >= 0),
			withdrawn_today BIGINT NOT NULL DEFAULT 0,
			withdrawal_day DATE NOT NULL DEFAULT CURRENT_DATE,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS game.crypto_holdings (
			user_id TEXT NOT NULL REFERENCES game.players(user_id),
			coin_id TEXT NOT NULL,
			amount  DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, coin_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game.coin_prices (
			coin_id    TEXT PRIMARY KEY,
			price      DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS game.jail_records (
			user_id            TEXT PRIMARY KEY REFERENCES game.players(user_id),
			until              TIMESTAMPTZ,
			crime              TEXT NOT NULL DEFAULT '',
			severity           INT NOT NULL DEFAULT 1,
			sentence_minutes   INT NOT NULL DEFAULT 0,
			bribe_amount       BIGINT NOT NULL DEFAULT 0,
			cooldown_until     TIMESTAMPTZ,
			total_jail_minutes BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS game.assets (
			id             BIGSERIAL PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES game.players(user_id),
			template_id    TEXT NOT NULL,
			level          INT NOT NULL DEFAULT 1,
			income_rate    BIGINT NOT NULL,
			security_level INT NOT NULL,
			value          BIGINT NOT NULL,
			last_income_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS assets_user_idx ON game.assets (user_id)`,
		`CREATE TABLE IF NOT EXISTS game.transactions (
			id          BIGSERIAL PRIMARY KEY,
			tx_group_id UUID NOT NULL,
			user_id     TEXT NOT NULL,
			kind        TEXT NOT NULL,
			amount      BIGINT NOT NULL,
			fee         BIGINT NOT NULL DEFAULT 0,
			cash_before BIGINT NOT NULL,
			cash_after  BIGINT NOT NULL,
			bank_before BIGINT NOT NULL,
			bank_after  BIGINT NOT NULL,
			metadata    JSONB,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_user_idx ON game.transactions (user_id, id DESC)`,
		`CREATE TABLE IF NOT EXISTS game.idempotency_keys (
			user_id    TEXT NOT NULL,
			key        TEXT NOT NULL,
			action     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
