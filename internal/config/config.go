package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr              string
	DatabaseURL       string
	ServiceToken      string
	ContentFile       string
	PriceCacheTTL     time.Duration
	PricePersistTTL   time.Duration
	JailCooldownFrac  float64
	StartupSeedPrices bool
	DBMaxConns        int32
	DBMinConns        int32
}

type WorkerConfig struct {
	DatabaseURL  string
	ContentFile  string
	PriceCron    string
	InterestCron string
	RunOnStart   bool
	DBMaxConns   int32
	DBMinConns   int32
}

type CLIConfig struct {
	APIBaseURL string
	APIToken   string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MAFIAWAR_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:              addr,
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ServiceToken:      strings.TrimSpace(os.Getenv("MAFIAWAR_SERVICE_TOKEN")),
		ContentFile:       strings.TrimSpace(os.Getenv("MAFIAWAR_CONTENT_FILE")),
		PriceCacheTTL:     envDurationDefault("MAFIAWAR_PRICE_CACHE_TTL", 5*time.Minute),
		PricePersistTTL:   envDurationDefault("MAFIAWAR_PRICE_PERSIST_TTL", time.Hour),
		JailCooldownFrac:  envFloatDefault("MAFIAWAR_JAIL_COOLDOWN_FRAC", 0.25),
		StartupSeedPrices: envBoolDefault("MAFIAWAR_STARTUP_SEED_PRICES", true),
		DBMaxConns:        envInt32Default("MAFIAWAR_DB_MAX_CONNS", 16),
		DBMinConns:        envInt32Default("MAFIAWAR_DB_MIN_CONNS", 4),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ServiceToken == "" {
		return cfg, fmt.Errorf("MAFIAWAR_SERVICE_TOKEN is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ContentFile:  strings.TrimSpace(os.Getenv("MAFIAWAR_CONTENT_FILE")),
		PriceCron:    envDefault("MAFIAWAR_PRICE_CRON", "0 0 * * * *"),
		InterestCron: envDefault("MAFIAWAR_INTEREST_CRON", "0 0 4 * * *"),
		RunOnStart:   envBoolDefault("MAFIAWAR_RUN_ON_START", false),
		DBMaxConns:   envInt32Default("MAFIAWAR_DB_MAX_CONNS", 4),
		DBMinConns:   envInt32Default("MAFIAWAR_DB_MIN_CONNS", 1),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("MW_API_BASE_URL", "http://localhost:8080"), "/"),
		APIToken:   strings.TrimSpace(os.Getenv("MW_API_TOKEN")),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt32Default(key string, fallback int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
