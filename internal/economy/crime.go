package economy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafiawar/internal/content"
)

// Crimes resolves crime attempts: requirement gates, the success roll,
// reward splitting across the three pools on success, and sentencing on
// failure. Payouts terminate in the ledger; sentencing terminates in the
// jail record. Everything for one attempt commits atomically.
type Crimes struct {
	db      *pgxpool.Pool
	log     *slog.Logger
	content *content.Catalog
	ledger  *Ledger
	jail    *Jail
	rng     *rng
}

func NewCrimes(db *pgxpool.Pool, logger *slog.Logger, cat *content.Catalog, ledger *Ledger, jail *Jail) *Crimes {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crimes{
		db:      db,
		log:     logger,
		content: cat,
		ledger:  ledger,
		jail:    jail,
		rng:     timeSeededRNG(),
	}
}

// SuccessProbability computes the effective success chance: the crime's
// base rate, a level bonus capped at 20 points, and per-stat bonuses each
// capped at 15 points. A crime is never a sure thing: hard cap 0.95.
func SuccessProbability(def *content.Crime, level int, stats Stats) float64 {
	p := def.BaseSuccessRate
	p += math.Min(LevelBonusCap, float64(level)*LevelBonusPerLevel)
	for _, name := range def.StatBonuses {
		p += math.Min(StatBonusCap, float64(stats.Get(name))*StatBonusPerPoint)
	}
	if p > MaxSuccessRate {
		p = MaxSuccessRate
	}
	if p < 0 {
		p = 0
	}
	return p
}

// MissingRequirements collects every unmet gate rather than stopping at
// the first.
func MissingRequirements(req content.Requirements, level int, reputation int64, stats Stats) []string {
	var missing []string
	if level < req.Level {
		missing = append(missing, fmt.Sprintf("level %d (have %d)", req.Level, level))
	}
	if reputation < req.Reputation {
		missing = append(missing, fmt.Sprintf("reputation %d (have %d)", req.Reputation, reputation))
	}
	for _, name := range []string{content.StatStrength, content.StatStealth, content.StatIntelligence} {
		want, ok := req.Stats[name]
		if !ok {
			continue
		}
		if have := stats.Get(name); have < want {
			missing = append(missing, fmt.Sprintf("%s %d (have %d)", name, want, have))
		}
	}
	return missing
}

// SplitPayout decides how a reward lands across the pools. Mixed pays
// 60/40 cash/bank; crypto converts the full amount. The coin for crypto
// payouts is chosen by the caller.
func SplitPayout(paymentType string, amount int64) PayoutBreakdown {
	switch paymentType {
	case content.PayBank:
		return PayoutBreakdown{Bank: amount}
	case content.PayCrypto:
		return PayoutBreakdown{CryptoAmount: amount}
	case content.PayMixed:
		cash := int64(math.Floor(float64(amount) * 0.6))
		return PayoutBreakdown{Cash: cash, Bank: amount - cash}
	default:
		return PayoutBreakdown{Cash: amount}
	}
}

func (c *Crimes) List() []content.Crime {
	return c.content.Crimes
}

// rollAttempt computes the full outcome of one attempt from the player's
// state and fresh uniform draws. It returns a complete result every call:
// the serializable retry loop may run an attempt more than once, and no
// field rolled on an earlier attempt may survive into the next one.
func rollAttempt(def *content.Crime, level int, xp int64, stats Stats, draw func() float64) CrimeResult {
	out := CrimeResult{CrimeID: def.ID}
	out.SuccessChance = SuccessProbability(def, level, stats)
	out.Success = draw() < out.SuccessChance

	if !out.Success {
		out.JailMinutes = int(uniformInt(int64(def.JailTimeMin), int64(def.JailTimeMax), draw()))
		if def.RiskFactors.InjuryChance > 0 && draw() < def.RiskFactors.InjuryChance {
			out.Injured = true
			out.InjuryDamage = int(uniformInt(5, 15, draw()))
		}
		return out
	}

	out.MoneyEarned = uniformInt(def.RewardMin, def.RewardMax, draw())
	out.XPGained = def.XPReward + int64(math.Floor(0.1*float64(stats.Sum(def.StatBonuses))))
	if draw() < CriticalChance {
		out.CriticalSuccess = true
		out.XPGained *= 2 // crits double XP, never money
	}
	out.ReputationGained = int64(math.Floor(float64(def.Difficulty) * 2))
	out.NewLevel = LevelForXP(xp + out.XPGained)
	out.LeveledUp = out.NewLevel > level
	return out
}

// Resolve runs one crime attempt end to end.
func (c *Crimes) Resolve(ctx context.Context, in CrimeInput) (CrimeResult, error) {
	var out CrimeResult
	def, ok := c.content.Crime(in.CrimeID)
	if !ok {
		return out, ErrNotFound
	}

	err := runSerializable(ctx, c.db, func(tx pgx.Tx) error {
		out = CrimeResult{CrimeID: def.ID}
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "crime:"+def.ID); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionCrime); err != nil {
			return err
		}

		var level int
		var xp, reputation int64
		var stats Stats
		err := tx.QueryRow(ctx, `
			SELECT level, xp, reputation, strength, stealth, intelligence
			FROM game.players
			WHERE user_id = $1
			FOR UPDATE
		`, in.UserID).Scan(&level, &xp, &reputation, &stats.Strength, &stats.Stealth, &stats.Intelligence)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if missing := MissingRequirements(def.Requirements, level, reputation, stats); len(missing) > 0 {
			return &RequirementsError{Missing: missing}
		}

		res := rollAttempt(def, level, xp, stats, c.rng.Float64)
		if !res.Success {
			if err := c.resolveFailure(ctx, tx, in.UserID, def, &res); err != nil {
				return err
			}
			out = res
			return nil
		}

		split := SplitPayout(def.PaymentType, res.MoneyEarned)
		if split.CryptoAmount > 0 {
			split.CryptoCoin = c.pickPayoutCoin()
		}
		split, _, err = c.ledger.payoutTx(ctx, tx, in.UserID, "crime_payout", split, true)
		if err != nil {
			return err
		}
		res.Breakdown = split

		if _, err := tx.Exec(ctx, `
			UPDATE game.players
			SET xp = $1, level = $2, reputation = reputation + $3, updated_at = now()
			WHERE user_id = $4
		`, xp+res.XPGained, res.NewLevel, res.ReputationGained, in.UserID); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return CrimeResult{CrimeID: def.ID}, err
	}

	c.log.Info("crime resolved",
		"user", in.UserID, "crime", def.ID, "success", out.Success,
		"money", out.MoneyEarned, "xp", out.XPGained, "jail_minutes", out.JailMinutes)
	return out, nil
}

// resolveFailure sentences a failed attempt. No money or XP on failure.
// A release-cooldown window means the player walks.
func (c *Crimes) resolveFailure(ctx context.Context, tx pgx.Tx, userID string, def *content.Crime, res *CrimeResult) error {
	row, err := lockFinances(ctx, tx, userID)
	if err != nil {
		return err
	}
	sentence, err := sendToJailTx(ctx, tx, c.rng, userID, res.JailMinutes, def.Name, def.Difficulty, row.Cash+row.Bank, c.jail.cooldownFrac)
	if errors.Is(err, ErrCooldown) {
		res.EscapedJail = true
		res.JailMinutes = 0
		return nil
	}
	if err != nil {
		return err
	}
	res.BribeAmount = sentence.BribeAmount
	return nil
}

// pickPayoutCoin prefers a random stable-category coin; with none
// configured it falls back to the first defined coin.
func (c *Crimes) pickPayoutCoin() string {
	stables := c.content.StableCoins()
	if len(stables) == 0 {
		return c.content.Coins[0].ID
	}
	idx := int(c.rng.Float64() * float64(len(stables)))
	if idx >= len(stables) {
		idx = len(stables) - 1
	}
	return stables[idx].ID
}
