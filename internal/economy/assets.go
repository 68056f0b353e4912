package economy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafiawar/internal/content"
)

// Assets manages income-generating properties: purchase, passive accrual,
// collection and the two upgrade tracks. All money movement is delegated to
// the ledger inside the same transaction.
type Assets struct {
	db      *pgxpool.Pool
	log     *slog.Logger
	content *content.Catalog
	ledger  *Ledger
}

func NewAssets(db *pgxpool.Pool, logger *slog.Logger, cat *content.Catalog, ledger *Ledger) *Assets {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assets{db: db, log: logger, content: cat, ledger: ledger}
}

// AccruedIncome is the pending payout for one asset: income rate times
// hours elapsed since the last collection, capped at a full day. Idle
// assets stop earning at the cap rather than banking unbounded income.
func AccruedIncome(rate int64, last, now time.Time) int64 {
	hours := now.Sub(last).Hours()
	if hours <= 0 {
		return 0
	}
	if hours > MaxAccrualHours {
		hours = MaxAccrualHours
	}
	return int64(math.Floor(float64(rate) * hours))
}

// SplitIncome divides a collected amount across the pools per the
// template's percentage distribution. Shares are floored; the rounding
// remainder goes to the crypto bucket, or to cash when the template has
// no crypto share.
func SplitIncome(amount int64, d content.Distribution) PayoutBreakdown {
	cash := amount * int64(d.Cash) / 100
	bank := amount * int64(d.Bank) / 100
	if d.Crypto > 0 {
		return PayoutBreakdown{Cash: cash, Bank: bank, CryptoAmount: amount - cash - bank}
	}
	return PayoutBreakdown{Cash: amount - bank, Bank: bank}
}

func (a *Assets) Templates() []content.AssetTemplate {
	return a.content.Assets
}

// Purchase buys one instance of a template. Mixed payment drains the bank
// before touching cash.
func (a *Assets) Purchase(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	var out PurchaseResult
	tpl, ok := a.content.Asset(in.TemplateID)
	if !ok {
		return out, ErrUnsupportedAsset
	}
	switch in.PaymentMethod {
	case content.PayCash, content.PayBank, content.PayMixed:
	default:
		return out, fmt.Errorf("unknown payment method %q", in.PaymentMethod)
	}

	err := runSerializable(ctx, a.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "asset_purchase"); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionBusiness); err != nil {
			return err
		}

		var level int
		var reputation int64
		var stats Stats
		err := tx.QueryRow(ctx, `
			SELECT level, reputation, strength, stealth, intelligence
			FROM game.players
			WHERE user_id = $1
			FOR UPDATE
		`, in.UserID).Scan(&level, &reputation, &stats.Strength, &stats.Stealth, &stats.Intelligence)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		missing := MissingRequirements(tpl.Requirements, level, reputation, stats)
		if req := tpl.Requirements.Money; req > 0 && row.Cash+row.Bank < req {
			missing = append(missing, fmt.Sprintf("money %d (have %d)", req, row.Cash+row.Bank))
		}
		if len(missing) > 0 {
			return &RequirementsError{Missing: missing}
		}

		switch in.PaymentMethod {
		case content.PayCash:
			if tpl.BasePrice > row.Cash {
				return ErrInsufficientFunds
			}
			row.Cash -= tpl.BasePrice
			out.FromCash = tpl.BasePrice
		case content.PayBank:
			if tpl.BasePrice > row.Bank {
				return ErrInsufficientFunds
			}
			row.Bank -= tpl.BasePrice
			out.FromBank = tpl.BasePrice
		case content.PayMixed:
			if tpl.BasePrice > row.Cash+row.Bank {
				return ErrInsufficientFunds
			}
			out.FromCash, out.FromBank = payPreferBank(&row, tpl.BasePrice)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO game.assets (user_id, template_id, income_rate, security_level, value)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, in.UserID, tpl.ID, tpl.BaseIncomeRate, tpl.BaseSecurityLevel, tpl.BasePrice).Scan(&out.AssetID)
		if err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "asset_purchase", tpl.BasePrice, 0, before, row,
			map[string]any{"template": tpl.ID, "asset_id": out.AssetID}); err != nil {
			return err
		}
		out.Price = tpl.BasePrice
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	a.log.Info("asset purchased",
		"user", in.UserID, "template", tpl.ID, "asset_id", out.AssetID, "price", out.Price)
	return out, nil
}

type assetRow struct {
	ID            int64
	TemplateID    string
	Level         int
	IncomeRate    int64
	SecurityLevel int
	Value         int64
	LastIncomeAt  time.Time
}

// List returns the player's assets with pending income computed at call
// time, without resetting accrual.
func (a *Assets) List(ctx context.Context, userID string) ([]AssetView, error) {
	rows, err := a.db.Query(ctx, `
		SELECT id, template_id, level, income_rate, security_level, value, last_income_at
		FROM game.assets
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var out []AssetView
	for rows.Next() {
		var r assetRow
		if err := rows.Scan(&r.ID, &r.TemplateID, &r.Level, &r.IncomeRate, &r.SecurityLevel, &r.Value, &r.LastIncomeAt); err != nil {
			return nil, err
		}
		v := AssetView{
			ID:            r.ID,
			TemplateID:    r.TemplateID,
			Name:          r.TemplateID,
			Level:         r.Level,
			MaxLevel:      r.Level,
			IncomeRate:    r.IncomeRate,
			SecurityLevel: r.SecurityLevel,
			Value:         r.Value,
			LastIncomeAt:  r.LastIncomeAt,
			PendingIncome: AccruedIncome(r.IncomeRate, r.LastIncomeAt, now),
		}
		if tpl, ok := a.content.Asset(r.TemplateID); ok {
			v.Name = tpl.Name
			v.MaxLevel = tpl.MaxLevel
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type collectionPlan struct {
	collections  []AssetCollection
	collectIDs   []int64
	skipped      int
	totalIncome  int64
	cash         int64
	bank         int64
	cryptoByCoin map[string]int64
}

// planCollection decides which owned assets collect and which are
// skipped. Only assets with accrued income appear in collectIDs; the
// accrual clock of a skipped asset must stay untouched.
func planCollection(cat *content.Catalog, owned []assetRow, now time.Time) collectionPlan {
	plan := collectionPlan{cryptoByCoin: make(map[string]int64)}
	for _, r := range owned {
		income := AccruedIncome(r.IncomeRate, r.LastIncomeAt, now)
		if income <= 0 {
			plan.skipped++
			continue
		}
		dist := content.Distribution{Cash: 100}
		coin := ""
		if tpl, ok := cat.Asset(r.TemplateID); ok {
			dist = tpl.IncomeDistribution
			coin = tpl.CryptoCoin
		}
		split := SplitIncome(income, dist)
		if split.CryptoAmount > 0 {
			split.CryptoCoin = coin
			plan.cryptoByCoin[coin] += split.CryptoAmount
		}
		plan.cash += split.Cash
		plan.bank += split.Bank
		plan.totalIncome += income
		plan.collections = append(plan.collections, AssetCollection{
			AssetID:    r.ID,
			TemplateID: r.TemplateID,
			Income:     income,
			Breakdown:  split,
		})
		plan.collectIDs = append(plan.collectIDs, r.ID)
	}
	return plan
}

// CollectAll settles pending income for every asset the player owns in one
// transaction. Assets with nothing accrued keep their accrual clock;
// collected ones reset to now.
func (a *Assets) CollectAll(ctx context.Context, in CollectInput) (CollectResult, error) {
	var out CollectResult
	err := runSerializable(ctx, a.db, func(tx pgx.Tx) error {
		out = CollectResult{}
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "asset_collect"); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionBusiness); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT id, template_id, level, income_rate, security_level, value, last_income_at
			FROM game.assets
			WHERE user_id = $1
			ORDER BY id
			FOR UPDATE
		`, in.UserID)
		if err != nil {
			return err
		}
		var owned []assetRow
		for rows.Next() {
			var r assetRow
			if err := rows.Scan(&r.ID, &r.TemplateID, &r.Level, &r.IncomeRate, &r.SecurityLevel, &r.Value, &r.LastIncomeAt); err != nil {
				rows.Close()
				return err
			}
			owned = append(owned, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(owned) == 0 {
			return ErrNoAssets
		}

		now := time.Now().UTC()
		plan := planCollection(a.content, owned, now)
		out.AssetsSkipped = plan.skipped
		out.AssetsCollected = len(plan.collectIDs)
		out.TotalIncome = plan.totalIncome
		out.Collections = plan.collections
		if out.AssetsCollected == 0 {
			return ErrNothingToCollect
		}

		row, coins, err := a.ledger.depositIncomeTx(ctx, tx, in.UserID, "asset_income", plan.cash, plan.bank, plan.cryptoByCoin)
		if err != nil {
			return err
		}
		// Per-asset coin amounts reuse the conversion the ledger just made,
		// pro-rated by each asset's dollar share.
		for i := range out.Collections {
			b := &out.Collections[i].Breakdown
			if b.CryptoAmount > 0 && plan.cryptoByCoin[b.CryptoCoin] > 0 {
				b.CryptoCoins = roundCoins(coins[b.CryptoCoin] * float64(b.CryptoAmount) / float64(plan.cryptoByCoin[b.CryptoCoin]))
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE game.assets
			SET last_income_at = $1
			WHERE id = ANY($2)
		`, now, plan.collectIDs); err != nil {
			return err
		}
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	if err != nil {
		return CollectResult{}, err
	}

	a.log.Info("asset income collected",
		"user", in.UserID, "assets", out.AssetsCollected, "skipped", out.AssetsSkipped, "total", out.TotalIncome)
	return out, nil
}

// Upgrade advances one asset a level on the income or security track. Each
// track's ladder has max_level-1 rungs; the asset's level moves regardless
// of which track was bought.
func (a *Assets) Upgrade(ctx context.Context, in UpgradeInput) (UpgradeResult, error) {
	var out UpgradeResult
	if in.Kind != "income" && in.Kind != "security" {
		return out, fmt.Errorf("unknown upgrade kind %q", in.Kind)
	}
	switch in.PaymentMethod {
	case content.PayCash, content.PayBank, content.PayMixed:
	default:
		return out, fmt.Errorf("unknown payment method %q", in.PaymentMethod)
	}

	err := runSerializable(ctx, a.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, fmt.Sprintf("asset_upgrade:%d", in.AssetID)); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionBusiness); err != nil {
			return err
		}

		var r assetRow
		err := tx.QueryRow(ctx, `
			SELECT id, template_id, level, income_rate, security_level, value, last_income_at
			FROM game.assets
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, in.AssetID, in.UserID).Scan(&r.ID, &r.TemplateID, &r.Level, &r.IncomeRate, &r.SecurityLevel, &r.Value, &r.LastIncomeAt)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		tpl, ok := a.content.Asset(r.TemplateID)
		if !ok {
			return ErrUnsupportedAsset
		}
		if r.Level >= tpl.MaxLevel {
			return ErrMaxLevel
		}

		var cost int64
		newRate := r.IncomeRate
		newSecurity := r.SecurityLevel
		if in.Kind == "income" {
			step := tpl.Upgrades.Income[r.Level-1]
			cost = step.Cost
			newRate = int64(math.Floor(float64(r.IncomeRate) * step.Multiplier))
		} else {
			step := tpl.Upgrades.Security[r.Level-1]
			cost = step.Cost
			newSecurity = r.SecurityLevel + step.Value
		}

		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		switch in.PaymentMethod {
		case content.PayCash:
			if cost > row.Cash {
				return ErrInsufficientFunds
			}
			row.Cash -= cost
		case content.PayBank:
			if cost > row.Bank {
				return ErrInsufficientFunds
			}
			row.Bank -= cost
		case content.PayMixed:
			if cost > row.Cash+row.Bank {
				return ErrInsufficientFunds
			}
			payPreferBank(&row, cost)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE game.assets
			SET level = $1, income_rate = $2, security_level = $3, value = value + $4
			WHERE id = $5
		`, r.Level+1, newRate, newSecurity, cost, r.ID); err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "asset_upgrade", cost, 0, before, row,
			map[string]any{"asset_id": r.ID, "kind": in.Kind, "level": r.Level + 1}); err != nil {
			return err
		}
		out.AssetID = r.ID
		out.Level = r.Level + 1
		out.Cost = cost
		out.IncomeRate = newRate
		out.SecurityLevel = newSecurity
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	if err != nil {
		return UpgradeResult{}, err
	}

	a.log.Info("asset upgraded",
		"user", in.UserID, "asset_id", out.AssetID, "kind", in.Kind, "level", out.Level, "cost", out.Cost)
	return out, nil
}
