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

// Ledger is the sole mutator of player financial state. Every deposit,
// withdrawal, crypto trade and direct credit funnels through it so fee and
// limit rules apply exactly once, inside one serializable transaction.
type Ledger struct {
	db      *pgxpool.Pool
	log     *slog.Logger
	content *content.Catalog
	prices  *PriceCache
	rng     *rng
}

func NewLedger(db *pgxpool.Pool, logger *slog.Logger, cat *content.Catalog, prices *PriceCache) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		db:      db,
		log:     logger,
		content: cat,
		prices:  prices,
		rng:     timeSeededRNG(),
	}
}

// EnsurePlayer creates the player and their financial state with the
// starting cash grant. Safe to call on every command.
func (l *Ledger) EnsurePlayer(ctx context.Context, userID, username string) error {
	if username == "" {
		username = "player_" + userID
	}
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO game.players (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, username)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO game.finances (user_id, cash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, StartingCash)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (l *Ledger) Profile(ctx context.Context, userID string) (PlayerProfile, error) {
	var out PlayerProfile
	err := l.db.QueryRow(ctx, `
		SELECT p.user_id, p.username, p.level, p.xp, p.reputation,
		       p.strength, p.stealth, p.intelligence, p.bank_tier, p.created_at,
		       f.cash, f.bank
		FROM game.players p
		JOIN game.finances f ON f.user_id = p.user_id
		WHERE p.user_id = $1
	`, userID).Scan(&out.UserID, &out.Username, &out.Level, &out.XP, &out.Reputation,
		&out.Stats.Strength, &out.Stats.Stealth, &out.Stats.Intelligence,
		&out.BankTier, &out.CreatedAt, &out.Cash, &out.Bank)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	out.Crypto, err = l.holdings(ctx, userID)
	return out, err
}

func (l *Ledger) Balances(ctx context.Context, userID string) (Balances, error) {
	var out Balances
	err := l.db.QueryRow(ctx, `
		SELECT cash, bank FROM game.finances WHERE user_id = $1
	`, userID).Scan(&out.Cash, &out.Bank)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	out.Crypto, err = l.holdings(ctx, userID)
	return out, err
}

func (l *Ledger) holdings(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := l.db.Query(ctx, `
		SELECT coin_id, amount
		FROM game.crypto_holdings
		WHERE user_id = $1 AND amount >= $2
		ORDER BY coin_id
	`, userID, DustThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var coin string
		var amount float64
		if err := rows.Scan(&coin, &amount); err != nil {
			return nil, err
		}
		out[coin] = amount
	}
	return out, rows.Err()
}

// Transfer moves money between cash and bank. The tier fee comes out of
// the moved amount (depositing $100 at 3% credits $97 and debits $100);
// withdrawals charge the fee on top and count against the tier's daily
// withdrawal limit.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	var out TransferResult
	if in.Amount <= 0 {
		return out, fmt.Errorf("amount must be > 0")
	}
	if err := validPool(in.From); err != nil {
		return out, err
	}
	if err := validPool(in.To); err != nil {
		return out, err
	}
	if in.From == in.To {
		return out, fmt.Errorf("from and to must differ")
	}

	err := runSerializable(ctx, l.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "transfer"); err != nil {
			return err
		}
		tier, err := l.lockTier(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		switch in.From {
		case "cash":
			if in.Amount > row.Cash {
				return ErrInsufficientFunds
			}
			fee := FeeOn(in.Amount, tier.DepositFee)
			row.Cash -= in.Amount
			row.Bank += in.Amount - fee
			out.Fee = fee
		case "bank":
			fee := FeeOn(in.Amount, tier.WithdrawalFee)
			if in.Amount+fee > row.Bank {
				return ErrInsufficientFunds
			}
			today := time.Now().UTC().Truncate(24 * time.Hour)
			if !sameDay(row.WithdrawalDay, today) {
				row.WithdrawnToday = 0
				row.WithdrawalDay = today
			}
			if row.WithdrawnToday+in.Amount > tier.WithdrawalLimit {
				return ErrLimitExceeded
			}
			row.Bank -= in.Amount + fee
			row.Cash += in.Amount
			row.WithdrawnToday += in.Amount
			out.Fee = fee
		}

		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		kind := "deposit"
		if in.From == "bank" {
			kind = "withdrawal"
		}
		if err := logTransaction(ctx, tx, in.UserID, kind, in.Amount, out.Fee, before, row, nil); err != nil {
			return err
		}
		out.Amount = in.Amount
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// BuyCrypto converts dollars from cash or bank into a coin at the current
// price, less the flat purchase fee.
func (l *Ledger) BuyCrypto(ctx context.Context, in CryptoTradeInput) (CryptoTradeResult, error) {
	var out CryptoTradeResult
	if in.Amount <= 0 {
		return out, fmt.Errorf("amount must be > 0")
	}
	if err := validPool(in.Pool); err != nil {
		return out, err
	}
	price, err := l.prices.Price(ctx, in.CoinID)
	if err != nil {
		return out, err
	}

	err = runSerializable(ctx, l.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "crypto_buy"); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionTrading); err != nil {
			return err
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		if in.Pool == "cash" {
			if in.Amount > row.Cash {
				return ErrInsufficientFunds
			}
			row.Cash -= in.Amount
		} else {
			if in.Amount > row.Bank {
				return ErrInsufficientFunds
			}
			row.Bank -= in.Amount
		}

		fee := FeeOn(in.Amount, CryptoBuyFee)
		coins := roundCoins(float64(in.Amount-fee) / price)

		held, err := lockHolding(ctx, tx, in.UserID, in.CoinID)
		if err != nil {
			return err
		}
		if err := saveHolding(ctx, tx, in.UserID, in.CoinID, held+coins); err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "crypto_buy", in.Amount, fee, before, row,
			map[string]any{"coin": in.CoinID, "price": price, "coins": coins}); err != nil {
			return err
		}

		out.CoinID = in.CoinID
		out.Price = price
		out.Fee = fee
		out.CoinAmount = coins
		out.Holding = held + coins
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// SellCrypto liquidates coins into cash or bank at the current price,
// less the flat sell fee. Wallet entries that drop under the dust
// threshold are pruned.
func (l *Ledger) SellCrypto(ctx context.Context, in CryptoTradeInput) (CryptoTradeResult, error) {
	var out CryptoTradeResult
	if in.CoinAmount <= 0 {
		return out, fmt.Errorf("coin amount must be > 0")
	}
	if err := validPool(in.Pool); err != nil {
		return out, err
	}
	price, err := l.prices.Price(ctx, in.CoinID)
	if err != nil {
		return out, err
	}

	err = runSerializable(ctx, l.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "crypto_sell"); err != nil {
			return err
		}
		if err := requireNotJailedFor(ctx, tx, in.UserID, ActionTrading); err != nil {
			return err
		}
		held, err := lockHolding(ctx, tx, in.UserID, in.CoinID)
		if err != nil {
			return err
		}
		if in.CoinAmount > held {
			return ErrInsufficientHoldings
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		gross := in.CoinAmount * price
		proceeds := int64(math.Floor(gross * (1 - CryptoSellFee)))
		fee := int64(math.Floor(gross)) - proceeds
		if in.Pool == "cash" {
			row.Cash += proceeds
		} else {
			row.Bank += proceeds
		}

		if err := saveHolding(ctx, tx, in.UserID, in.CoinID, roundCoins(held-in.CoinAmount)); err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "crypto_sell", proceeds, fee, before, row,
			map[string]any{"coin": in.CoinID, "price": price, "coins": in.CoinAmount}); err != nil {
			return err
		}

		out.CoinID = in.CoinID
		out.Price = price
		out.Fee = fee
		out.CoinAmount = in.CoinAmount
		out.Proceeds = proceeds
		out.Holding = roundCoins(held - in.CoinAmount)
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// CreditDirect unconditionally credits a pool on behalf of another game
// system (quest rewards, admin grants). Fee-free, like all earnings.
func (l *Ledger) CreditDirect(ctx context.Context, in CreditInput) (Balances, error) {
	var out Balances
	if in.Amount <= 0 {
		return out, fmt.Errorf("amount must be > 0")
	}
	if err := validPool(in.Pool); err != nil {
		return out, err
	}
	kind := in.Kind
	if kind == "" {
		kind = "direct_credit"
	}
	err := runSerializable(ctx, l.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "credit:"+kind); err != nil {
			return err
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row
		if in.Pool == "cash" {
			row.Cash += in.Amount
		} else {
			row.Bank += in.Amount
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, kind, in.Amount, 0, before, row, nil); err != nil {
			return err
		}
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// UpgradeBankTier advances the player one tier up the ladder, spending the
// next tier's upgrade cost (cash first, then bank). There is no downgrade.
func (l *Ledger) UpgradeBankTier(ctx context.Context, in TierUpgradeInput) (TierUpgradeResult, error) {
	var out TierUpgradeResult
	err := runSerializable(ctx, l.db, func(tx pgx.Tx) error {
		if err := claimIdempotency(ctx, tx, in.UserID, in.IdempotencyKey, "bank_tier_upgrade"); err != nil {
			return err
		}
		var level, tierLevel int
		err := tx.QueryRow(ctx, `
			SELECT level, bank_tier
			FROM game.players
			WHERE user_id = $1
			FOR UPDATE
		`, in.UserID).Scan(&level, &tierLevel)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		next, ok := l.content.Tier(tierLevel + 1)
		if !ok {
			return ErrMaxTier
		}
		row, err := lockFinances(ctx, tx, in.UserID)
		if err != nil {
			return err
		}
		before := row

		var missing []string
		if level < next.MinLevel {
			missing = append(missing, fmt.Sprintf("level %d (have %d)", next.MinLevel, level))
		}
		if row.Cash+row.Bank < next.MinNetWorth {
			missing = append(missing, fmt.Sprintf("net worth %d (have %d)", next.MinNetWorth, row.Cash+row.Bank))
		}
		if len(missing) > 0 {
			return &RequirementsError{Missing: missing}
		}
		if row.Cash+row.Bank < next.UpgradeCost {
			return ErrInsufficientFunds
		}
		payPreferCash(&row, next.UpgradeCost)

		if _, err := tx.Exec(ctx, `
			UPDATE game.players SET bank_tier = $1, updated_at = now() WHERE user_id = $2
		`, next.Level, in.UserID); err != nil {
			return err
		}
		if err := saveFinances(ctx, tx, in.UserID, row); err != nil {
			return err
		}
		if err := logTransaction(ctx, tx, in.UserID, "bank_tier_upgrade", next.UpgradeCost, 0, before, row,
			map[string]any{"tier": next.Level}); err != nil {
			return err
		}
		out.Tier = next.Level
		out.TierName = next.Name
		out.Cost = next.UpgradeCost
		out.Cash = row.Cash
		out.Bank = row.Bank
		return nil
	})
	return out, err
}

// Transactions returns the most recent rows of the append-only log.
func (l *Ledger) Transactions(ctx context.Context, userID string, limit int) ([]TransactionView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
		SELECT id, kind, amount, fee, cash_before, cash_after, bank_before, bank_after, created_at
		FROM game.transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionView
	for rows.Next() {
		var t TransactionView
		if err := rows.Scan(&t.ID, &t.Kind, &t.Amount, &t.Fee, &t.CashBefore, &t.CashAfter, &t.BankBefore, &t.BankAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ApplyDailyInterest credits every positive bank balance with its tier's
// daily interest rate. Run once per day by the worker.
func (l *Ledger) ApplyDailyInterest(ctx context.Context) (int, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT f.user_id, f.bank, p.bank_tier
		FROM game.finances f
		JOIN game.players p ON p.user_id = f.user_id
		WHERE f.bank > 0
		FOR UPDATE OF f
	`)
	if err != nil {
		return 0, err
	}
	type item struct {
		userID string
		bank   int64
		tier   int
	}
	var items []item
	for rows.Next() {
		var it item
		if err := rows.Scan(&it.userID, &it.bank, &it.tier); err != nil {
			rows.Close()
			return 0, err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	credited := 0
	for _, it := range items {
		tier, ok := l.content.Tier(it.tier)
		if !ok {
			continue
		}
		interest := int64(math.Floor(float64(it.bank) * tier.InterestRate))
		if interest <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.finances
			SET bank = bank + $1, updated_at = now()
			WHERE user_id = $2
		`, interest, it.userID); err != nil {
			return 0, err
		}
		before := financesRow{Bank: it.bank}
		after := financesRow{Bank: it.bank + interest}
		if err := logTransaction(ctx, tx, it.userID, "bank_interest", interest, 0, before, after,
			map[string]any{"rate": tier.InterestRate}); err != nil {
			return 0, err
		}
		credited++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return credited, nil
}

// payoutTx credits an earnings split inside the caller's transaction: the
// terminal step of crime resolution and asset collection. Cash and bank
// are direct credits; the crypto slice converts at the current price,
// with the purchase fee applied only when the caller asks for the
// buy-equivalent conversion.
func (l *Ledger) payoutTx(ctx context.Context, tx pgx.Tx, userID, kind string, split PayoutBreakdown, applyBuyFee bool) (PayoutBreakdown, financesRow, error) {
	row, err := lockFinances(ctx, tx, userID)
	if err != nil {
		return split, row, err
	}
	before := row
	row.Cash += split.Cash
	row.Bank += split.Bank

	if split.CryptoAmount > 0 {
		price, err := l.prices.Price(ctx, split.CryptoCoin)
		if err != nil {
			return split, row, err
		}
		net := split.CryptoAmount
		if applyBuyFee {
			net -= FeeOn(split.CryptoAmount, CryptoBuyFee)
		}
		coins := roundCoins(float64(net) / price)
		held, err := lockHolding(ctx, tx, userID, split.CryptoCoin)
		if err != nil {
			return split, row, err
		}
		if err := saveHolding(ctx, tx, userID, split.CryptoCoin, held+coins); err != nil {
			return split, row, err
		}
		split.CryptoCoins = coins
	}

	if err := saveFinances(ctx, tx, userID, row); err != nil {
		return split, row, err
	}
	total := split.Cash + split.Bank + split.CryptoAmount
	meta := map[string]any{"cash": split.Cash, "bank": split.Bank}
	if split.CryptoAmount > 0 {
		meta["crypto_amount"] = split.CryptoAmount
		meta["crypto_coin"] = split.CryptoCoin
		meta["crypto_coins"] = split.CryptoCoins
	}
	if err := logTransaction(ctx, tx, userID, kind, total, 0, before, row, meta); err != nil {
		return split, row, err
	}
	return split, row, nil
}

// depositIncomeTx commits one aggregate income deposit: direct cash/bank
// credits plus per-coin crypto conversions at current prices, fee-free
// (earnings, not trades). Returns the coins credited per coin id.
func (l *Ledger) depositIncomeTx(ctx context.Context, tx pgx.Tx, userID, kind string, cash, bank int64, crypto map[string]int64) (financesRow, map[string]float64, error) {
	row, err := lockFinances(ctx, tx, userID)
	if err != nil {
		return row, nil, err
	}
	before := row
	row.Cash += cash
	row.Bank += bank

	coinsByID := make(map[string]float64, len(crypto))
	total := cash + bank
	for coinID, dollars := range crypto {
		if dollars <= 0 {
			continue
		}
		total += dollars
		price, err := l.prices.Price(ctx, coinID)
		if err != nil {
			return row, nil, err
		}
		coins := roundCoins(float64(dollars) / price)
		held, err := lockHolding(ctx, tx, userID, coinID)
		if err != nil {
			return row, nil, err
		}
		if err := saveHolding(ctx, tx, userID, coinID, held+coins); err != nil {
			return row, nil, err
		}
		coinsByID[coinID] = coins
	}

	if err := saveFinances(ctx, tx, userID, row); err != nil {
		return row, nil, err
	}
	meta := map[string]any{"cash": cash, "bank": bank}
	if len(coinsByID) > 0 {
		meta["crypto"] = coinsByID
	}
	if err := logTransaction(ctx, tx, userID, kind, total, 0, before, row, meta); err != nil {
		return row, nil, err
	}
	return row, coinsByID, nil
}

type tierView struct {
	DepositFee      float64
	WithdrawalFee   float64
	WithdrawalLimit int64
}

// lockTier reads the player's tier config while holding the player row
// lock, so a concurrent tier upgrade cannot race the fee calculation.
func (l *Ledger) lockTier(ctx context.Context, tx pgx.Tx, userID string) (tierView, error) {
	var out tierView
	var tierLevel int
	err := tx.QueryRow(ctx, `
		SELECT bank_tier FROM game.players WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&tierLevel)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	tier, ok := l.content.Tier(tierLevel)
	if !ok {
		return out, fmt.Errorf("player %s has unknown bank tier %d", userID, tierLevel)
	}
	out.DepositFee = tier.DepositFee
	out.WithdrawalFee = tier.WithdrawalFee
	out.WithdrawalLimit = tier.WithdrawalLimit
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
