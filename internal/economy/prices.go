package economy

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafiawar/internal/content"
)

// PriceCache serves coin prices with two staleness budgets: an in-process
// TTL so hot paths never hit the database more than once per window, and a
// persisted TTL so the stored price advances at most once per window even
// across processes.
type PriceCache struct {
	db      *pgxpool.Pool
	log     *slog.Logger
	content *content.Catalog
	rng     *rng

	ttl        time.Duration
	persistTTL time.Duration

	mu      sync.Mutex
	entries map[string]priceEntry
}

type priceEntry struct {
	price     float64
	fetchedAt time.Time
}

func NewPriceCache(db *pgxpool.Pool, logger *slog.Logger, cat *content.Catalog, ttl, persistTTL time.Duration) *PriceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceCache{
		db:         db,
		log:        logger,
		content:    cat,
		rng:        timeSeededRNG(),
		ttl:        ttl,
		persistTTL: persistTTL,
		entries:    make(map[string]priceEntry),
	}
}

// nextPrice advances one step of the symmetric multiplicative walk. Draws
// u1 to pick direction and u2 for magnitude. Multiplying by (1+v) half the
// time and dividing by (1+v) the other half keeps the geometric-mean drift
// at zero; the naive old×(1+Uniform(−vol,vol)) form decays under repeated
// compounding.
func nextPrice(old, volatility, u1, u2 float64) float64 {
	v := u2 * volatility
	var next float64
	if u1 < 0.5 {
		next = old * (1 + v)
	} else {
		next = old / (1 + v)
	}
	if next < PriceFloor {
		return PriceFloor
	}
	return next
}

// persistDue reports whether the stored price is stale enough to step.
// At most one step per window, no matter how many processes ask.
func persistDue(updatedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(updatedAt) >= ttl
}

// Seed inserts missing coin rows at their base price.
func (p *PriceCache) Seed(ctx context.Context) error {
	for _, coin := range p.content.Coins {
		_, err := p.db.Exec(ctx, `
			INSERT INTO game.coin_prices (coin_id, price, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (coin_id) DO NOTHING
		`, coin.ID, coin.BasePrice)
		if err != nil {
			return err
		}
	}
	return nil
}

// Price returns the current price for a coin, stepping the persisted walk
// when the stored value is older than the persist TTL.
func (p *PriceCache) Price(ctx context.Context, coinID string) (float64, error) {
	coin, ok := p.content.Coin(coinID)
	if !ok {
		return 0, ErrUnsupportedAsset
	}

	p.mu.Lock()
	if e, ok := p.entries[coinID]; ok && time.Since(e.fetchedAt) < p.ttl {
		price := e.price
		p.mu.Unlock()
		return price, nil
	}
	p.mu.Unlock()

	var price float64
	var updatedAt time.Time
	err := p.db.QueryRow(ctx, `
		SELECT price, updated_at
		FROM game.coin_prices
		WHERE coin_id = $1
	`, coinID).Scan(&price, &updatedAt)
	if err == pgx.ErrNoRows {
		price = coin.BasePrice
		updatedAt = time.Now()
		if _, err := p.db.Exec(ctx, `
			INSERT INTO game.coin_prices (coin_id, price, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (coin_id) DO NOTHING
		`, coinID, price); err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	if persistDue(updatedAt, time.Now(), p.persistTTL) {
		next := nextPrice(price, coin.Volatility, p.rng.Float64(), p.rng.Float64())
		// Guarded write: a concurrent caller that already advanced the walk
		// wins, or the stored price would step more than once per window.
		tag, err := p.db.Exec(ctx, `
			UPDATE game.coin_prices
			SET price = $1, updated_at = now()
			WHERE coin_id = $2 AND updated_at <= $3
		`, next, coinID, time.Now().Add(-p.persistTTL))
		if err != nil {
			return 0, err
		}
		if tag.RowsAffected() > 0 {
			price = next
		} else if err := p.db.QueryRow(ctx, `
			SELECT price FROM game.coin_prices WHERE coin_id = $1
		`, coinID).Scan(&price); err != nil {
			return 0, err
		}
	}

	p.mu.Lock()
	p.entries[coinID] = priceEntry{price: price, fetchedAt: time.Now()}
	p.mu.Unlock()
	return price, nil
}

// All returns every configured coin with its current price.
func (p *PriceCache) All(ctx context.Context) ([]CoinPrice, error) {
	out := make([]CoinPrice, 0, len(p.content.Coins))
	for _, coin := range p.content.Coins {
		price, err := p.Price(ctx, coin.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CoinPrice{CoinID: coin.ID, Name: coin.Name, Category: coin.Category, Price: price})
	}
	return out, nil
}

// RefreshAll steps the persisted walk for every coin regardless of TTL.
// The worker calls this on a schedule so idle coins keep moving.
func (p *PriceCache) RefreshAll(ctx context.Context) error {
	for _, coin := range p.content.Coins {
		var price float64
		err := p.db.QueryRow(ctx, `
			SELECT price FROM game.coin_prices WHERE coin_id = $1
		`, coin.ID).Scan(&price)
		if err == pgx.ErrNoRows {
			price = coin.BasePrice
		} else if err != nil {
			return err
		}
		next := nextPrice(price, coin.Volatility, p.rng.Float64(), p.rng.Float64())
		if _, err := p.db.Exec(ctx, `
			INSERT INTO game.coin_prices (coin_id, price, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (coin_id) DO UPDATE SET price = $2, updated_at = now()
		`, coin.ID, next); err != nil {
			return err
		}
		p.mu.Lock()
		p.entries[coin.ID] = priceEntry{price: next, fetchedAt: time.Now()}
		p.mu.Unlock()
	}
	return nil
}

// roundCoins trims float noise on wallet amounts to 8 decimal places.
func roundCoins(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
