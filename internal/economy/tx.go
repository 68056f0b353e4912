package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rng serializes access to one math/rand source shared by a service.
// Tests construct it with a fixed seed.
type rng struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{r: mathrand.New(mathrand.NewSource(seed))}
}

func timeSeededRNG() *rng {
	return newRNG(time.Now().UnixNano())
}

func (g *rng) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Float64()
}

// runSerializable executes fn inside a Serializable transaction, retrying
// serialization failures with backoff. Two concurrent actions must never
// both succeed against a stale balance; that comes from this isolation
// level plus FOR UPDATE re-reads inside fn.
func runSerializable(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// claimIdempotency inserts the key inside the caller's transaction so a
// retried mutation can never double-apply.
func claimIdempotency(ctx context.Context, tx pgx.Tx, userID, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO game.idempotency_keys (user_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

type financesRow struct {
	Cash           int64
	Bank           int64
	WithdrawnToday int64
	WithdrawalDay  time.Time
}

func lockFinances(ctx context.Context, tx pgx.Tx, userID string) (financesRow, error) {
	var row financesRow
	err := tx.QueryRow(ctx, `
		SELECT cash, bank, withdrawn_today, withdrawal_day
		FROM game.finances
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&row.Cash, &row.Bank, &row.WithdrawnToday, &row.WithdrawalDay)
	if err == pgx.ErrNoRows {
		return row, ErrNotFound
	}
	return row, err
}

func saveFinances(ctx context.Context, tx pgx.Tx, userID string, row financesRow) error {
	if row.Cash < 0 || row.Bank < 0 {
		// A negative balance reaching this point is a bug in the caller's
		// validation, not a state to clamp over.
		return fmt.Errorf("invariant violation: negative balance for %s (cash=%d bank=%d)", userID, row.Cash, row.Bank)
	}
	_, err := tx.Exec(ctx, `
		UPDATE game.finances
		SET cash = $1, bank = $2, withdrawn_today = $3, withdrawal_day = $4, updated_at = now()
		WHERE user_id = $5
	`, row.Cash, row.Bank, row.WithdrawnToday, row.WithdrawalDay, userID)
	return err
}

// logTransaction appends one immutable transaction-log row.
func logTransaction(ctx context.Context, tx pgx.Tx, userID, kind string, amount, fee int64, before, after financesRow, meta map[string]any) error {
	var raw []byte
	if meta != nil {
		raw, _ = json.Marshal(meta)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO game.transactions
			(tx_group_id, user_id, kind, amount, fee, cash_before, cash_after, bank_before, bank_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.NewString(), userID, kind, amount, fee, before.Cash, after.Cash, before.Bank, after.Bank, raw)
	return err
}

func lockHolding(ctx context.Context, tx pgx.Tx, userID, coinID string) (float64, error) {
	var amount float64
	err := tx.QueryRow(ctx, `
		SELECT amount
		FROM game.crypto_holdings
		WHERE user_id = $1 AND coin_id = $2
		FOR UPDATE
	`, userID, coinID).Scan(&amount)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return amount, err
}

// saveHolding upserts a wallet entry, pruning it when the amount falls
// under the dust threshold.
func saveHolding(ctx context.Context, tx pgx.Tx, userID, coinID string, amount float64) error {
	if amount < DustThreshold {
		_, err := tx.Exec(ctx, `
			DELETE FROM game.crypto_holdings
			WHERE user_id = $1 AND coin_id = $2
		`, userID, coinID)
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO game.crypto_holdings (user_id, coin_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, coin_id) DO UPDATE SET amount = $3
	`, userID, coinID, amount)
	return err
}

// payPreferCash drains cash first, then bank, for costs that may be paid
// from combined visible wealth (bribes, tier upgrades).
func payPreferCash(row *financesRow, cost int64) (fromCash, fromBank int64) {
	fromCash = cost
	if fromCash > row.Cash {
		fromCash = row.Cash
	}
	fromBank = cost - fromCash
	row.Cash -= fromCash
	row.Bank -= fromBank
	return fromCash, fromBank
}

// payPreferBank drains bank first, then cash: the mixed payment method for
// asset purchases and upgrades.
func payPreferBank(row *financesRow, cost int64) (fromCash, fromBank int64) {
	fromBank = cost
	if fromBank > row.Bank {
		fromBank = row.Bank
	}
	fromCash = cost - fromBank
	row.Cash -= fromCash
	row.Bank -= fromBank
	return fromCash, fromBank
}
