package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApplyPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://localhost/mafiawar")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defMax := cfg.MaxConns
	defLifetime := cfg.MaxConnLifetime

	applyPoolOptions(cfg, PoolOptions{})
	if cfg.MaxConns != defMax || cfg.MaxConnLifetime != defLifetime {
		t.Fatalf("zero options must keep pgx defaults: %d %v", cfg.MaxConns, cfg.MaxConnLifetime)
	}

	applyPoolOptions(cfg, PoolOptions{
		MaxConns:        16,
		MinConns:        4,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if cfg.MaxConns != 16 || cfg.MinConns != 4 {
		t.Fatalf("sizing not applied: max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnLifetime != 30*time.Minute || cfg.MaxConnIdleTime != 5*time.Minute {
		t.Fatalf("lifetimes not applied: %v %v", cfg.MaxConnLifetime, cfg.MaxConnIdleTime)
	}
}
