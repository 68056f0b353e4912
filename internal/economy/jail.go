package economy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Action categories that can be blocked while jailed. Banking stays open
// so a jailed player can still shuffle money toward the bribe.
const (
	ActionCrime    = "crime"
	ActionBusiness = "business"
	ActionBanking  = "banking"
	ActionTrading  = "trading"
	ActionGang     = "gang"
)

var jailBlockedActions = map[string]bool{
	ActionCrime:    true,
	ActionBusiness: true,
	ActionTrading:  true,
	ActionGang:     true,
	ActionBanking:  false,
}

// Jail runs the sentence state machine: Free → Jailed → Released, with a
// post-release cooldown window that blocks immediate re-jailing.
type Jail struct {
	db           *pgxpool.Pool
	log          *slog.Logger
	ledger       *Ledger
	rng          *rng
	cooldownFrac float64
}

func NewJail(db *pgxpool.Pool, logger *slog.Logger, ledger *Ledger, cooldownFrac float64) *Jail {
	if logger == nil {
		logger = slog.Default()
	}
	if cooldownFrac <= 0 {
		cooldownFrac = 0.25
	}
	return &Jail{
		db:           db,
		log:          logger,
		ledger:       ledger,
		rng:          timeSeededRNG(),
		cooldownFrac: cooldownFrac,
	}
}

type jailRow struct {
	Until           *time.Time
	Crime           string
	Severity        int
	SentenceMinutes int
	BribeAmount     int64
	CooldownUntil   *time.Time
	TotalMinutes    int64
}

func lockJailRow(ctx context.Context, tx pgx.Tx, userID string) (jailRow, bool, error) {
	var row jailRow
	err := tx.QueryRow(ctx, `
		SELECT until, crime, severity, sentence_minutes, bribe_amount, cooldown_until, total_jail_minutes
		FROM game.jail_records
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&row.Until, &row.Crime, &row.Severity, &row.SentenceMinutes,
		&row.BribeAmount, &row.CooldownUntil, &row.TotalMinutes)
	if err == pgx.ErrNoRows {
		return row, false, nil
	}
	return row, err == nil, err
}

func (r jailRow) active(now time.Time) bool {
	return r.Until != nil && r.Until.After(now)
}

func (r jailRow) inCooldown(now time.Time) bool {
	return r.CooldownUntil != nil && r.CooldownUntil.After(now)
}

// admitSentence decides whether a new sentence may be written. An active
// sentence or a live release cooldown rejects sentencing before anything
// on the existing record is touched.
func admitSentence(row jailRow, exists bool, now time.Time) error {
	if exists && row.active(now) {
		return ErrAlreadyJailed
	}
	if exists && row.inCooldown(now) {
		return ErrCooldown
	}
	return nil
}

// statusView builds the externally visible status from a stored record.
// The bribe amount is whatever was frozen at sentencing; current wealth
// only decides affordability, never the price.
func (r jailRow) statusView(now time.Time, cash, bank int64) JailStatus {
	var out JailStatus
	out.TotalJailMinutes = r.TotalMinutes
	if r.inCooldown(now) {
		out.CooldownUntil = *r.CooldownUntil
	}
	if !r.active(now) {
		return out
	}
	out.InJail = true
	out.Crime = r.Crime
	out.Severity = r.Severity
	out.Until = *r.Until
	out.RemainingSeconds = int64(r.Until.Sub(now).Seconds())
	out.BribeAmount = r.BribeAmount
	out.CanAfford = cash+bank >= r.BribeAmount
	return out
}

// requireNotJailedFor is the in-transaction guard other services use
// before mutating anything on a blocked action category.
func requireNotJailedFor(ctx context.Context, tx pgx.Tx, userID, action string) error {
	if !jailBlockedActions[action] {
		return nil
	}
	var until *time.Time
	err := tx.QueryRow(ctx, `
		SELECT until FROM game.jail_records WHERE user_id = $1
	`, userID).Scan(&until)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if until != nil && until.After(time.Now()) {
		return ErrJailed
	}
	return nil
}

// SendToJail starts a sentence. The bribe price is computed here, once,
// and frozen on the record: status checks must never re-roll it.
func (j *Jail) SendToJail(ctx context.Context, in SentenceInput) (Sentence, error) {
	var out Sentence
	if in.Minutes <= 0 {
		return out, fmt.Errorf("sentence minutes must be > 0")
	}
	err := runSerializable(ctx, j.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "send_to_jail"); err != nil {
			return err
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		sentence, err := sendToJailTx(ctx, tx, j.rng, in.UserID, in.Minutes, in.Crime, in.Severity, row.Cash+row.Bank, j.cooldownFrac)
		if err != nil {
			return err
		}
		out = sentence
		return nil
	})
	return out, err
}

// sendToJailTx is the shared sentencing path, also called by the crime
// resolver inside its own transaction. visibleWealth is cash+bank only:
// crypto is invisible to jail economics.
func sendToJailTx(ctx context.Context, tx pgx.Tx, rng *rng, userID string, minutes int, crime string, severity int, visibleWealth int64, cooldownFrac float64) (Sentence, error) {
	var out Sentence
	now := time.Now()
	row, exists, err := lockJailRow(ctx, tx, userID)
	if err != nil {
		return out, err
	}
	if err := admitSentence(row, exists, now); err != nil {
		return out, err
	}

	severity = ClampSeverity(severity)
	bribe := CalculateBribe(severity, visibleWealth, minutes, rng.Float64())
	until := now.Add(time.Duration(minutes) * time.Minute)
	// Cooldown is pre-computed from the scheduled release; a bribe release
	// re-anchors it to the actual release time.
	cooldownUntil := until.Add(CooldownWindow(minutes, cooldownFrac))

	_, err = tx.Exec(ctx, `
		INSERT INTO game.jail_records
			(user_id, until, crime, severity, sentence_minutes, bribe_amount, cooldown_until, total_jail_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			until = $2, crime = $3, severity = $4, sentence_minutes = $5,
			bribe_amount = $6, cooldown_until = $7,
			total_jail_minutes = game.jail_records.total_jail_minutes + $8
	`, userID, until, crime, severity, minutes, bribe, cooldownUntil, int64(minutes))
	if err != nil {
		return out, err
	}
	out.Until = until
	out.Minutes = minutes
	out.Severity = severity
	out.BribeAmount = bribe
	return out, nil
}

// Status reports the current sentence, reusing the frozen bribe amount.
func (j *Jail) Status(ctx context.Context, userID string) (JailStatus, error) {
	var out JailStatus
	var row jailRow
	err := j.db.QueryRow(ctx, `
		SELECT until, crime, severity, sentence_minutes, bribe_amount, cooldown_until, total_jail_minutes
		FROM game.jail_records
		WHERE user_id = $1
	`, userID).Scan(&row.Until, &row.Crime, &row.Severity, &row.SentenceMinutes,
		&row.BribeAmount, &row.CooldownUntil, &row.TotalMinutes)
	if err == pgx.ErrNoRows {
		return JailStatus{InJail: false}, nil
	}
	if err != nil {
		return out, err
	}

	now := time.Now()
	if !row.active(now) {
		return row.statusView(now, 0, 0), nil
	}
	balances, err := j.ledger.Balances(ctx, userID)
	if err != nil {
		return out, err
	}
	return row.statusView(now, balances.Cash, balances.Bank), nil
}

// Bribe pays the frozen bribe price, cash first then bank, and releases
// the player immediately. Crypto can neither be seen nor spent here.
func (j *Jail) Bribe(ctx context.Context, in BribeInput) (BribeResult, error) {
	var out BribeResult
	err := runSerializable(ctx, j.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "jail_bribe"); err != nil {
			return err
		}
		now := time.Now()
		record, exists, err := lockJailRow(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if !exists || !record.active(now) {
			return ErrNotInJail
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		if row.Cash+row.Bank < record.BribeAmount {
			return ErrCannotAfford
		}
		before := row
		fromCash, fromBank := payPreferCash(&row, record.BribeAmount)

		timeSaved := record.Until.Sub(now)
		cooldownUntil := now.Add(CooldownWindow(record.SentenceMinutes, j.cooldownFrac))
		if _, err := tx.Exec(ctx, `
			UPDATE game.jail_records
			SET until = $1, cooldown_until = $2
			WHERE user_id = $3
		`, now, cooldownUntil, in.UserID); err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "jail_bribe", record.BribeAmount, 0, before, row,
			map[string]any{"crime": record.Crime, "severity": record.Severity, "time_saved_seconds": int64(timeSaved.Seconds())}); err != nil {
			return err
		}

		out.Paid = record.BribeAmount
		out.FromCash = fromCash
		out.FromBank = fromBank
		out.TimeSavedSeconds = int64(timeSaved.Seconds())
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// CheckActionBlocking reports whether an action category is disallowed by
// an active sentence, with enough data for the caller to explain why.
func (j *Jail) CheckActionBlocking(ctx context.Context, userID, action string) (ActionBlock, error) {
	var out ActionBlock
	if !jailBlockedActions[action] {
		return out, nil
	}
	status, err := j.Status(ctx, userID)
	if err != nil {
		return out, err
	}
	if !status.InJail {
		return out, nil
	}
	out.Blocked = true
	out.RemainingSeconds = status.RemainingSeconds
	out.BribeAmount = status.BribeAmount
	out.Reason = fmt.Sprintf("jailed for %s: %dm%ds remaining, bribe costs $%d",
		status.Crime, status.RemainingSeconds/60, status.RemainingSeconds%60, status.BribeAmount)
	return out, nil
}
