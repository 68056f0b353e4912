package config

import (
	"testing"
	"time"
)

func TestEnvInt32Default(t *testing.T) {
	t.Setenv("MW_TEST_INT", "")
	if got := envInt32Default("MW_TEST_INT", 16); got != 16 {
		t.Fatalf("unset got %d want fallback", got)
	}
	t.Setenv("MW_TEST_INT", "40")
	if got := envInt32Default("MW_TEST_INT", 16); got != 40 {
		t.Fatalf("got %d want 40", got)
	}
	for _, bad := range []string{"0", "-3", "abc"} {
		t.Setenv("MW_TEST_INT", bad)
		if got := envInt32Default("MW_TEST_INT", 16); got != 16 {
			t.Fatalf("%q got %d want fallback", bad, got)
		}
	}
}

func TestEnvDurationDefault(t *testing.T) {
	t.Setenv("MW_TEST_DUR", "90s")
	if got := envDurationDefault("MW_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("got %v want 90s", got)
	}
	t.Setenv("MW_TEST_DUR", "not-a-duration")
	if got := envDurationDefault("MW_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("got %v want fallback", got)
	}
}

func TestLoadWorkerPoolSizing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mafiawar")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// The worker runs a couple of scheduled jobs; it never needs an
	// API-sized pool.
	if cfg.DBMaxConns != 4 || cfg.DBMinConns != 1 {
		t.Fatalf("worker pool defaults got max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	t.Setenv("MAFIAWAR_DB_MAX_CONNS", "8")
	cfg, err = LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBMaxConns != 8 {
		t.Fatalf("override got %d want 8", cfg.DBMaxConns)
	}
}
