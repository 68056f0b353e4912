package economy

import "time"

type PlayerProfile struct {
	UserID     string             `json:"user_id"`
	Username   string             `json:"username"`
	Level      int                `json:"level"`
	XP         int64              `json:"xp"`
	Reputation int64              `json:"reputation"`
	Stats      Stats              `json:"stats"`
	BankTier   int                `json:"bank_tier"`
	Cash       int64              `json:"cash"`
	Bank       int64              `json:"bank"`
	Crypto     map[string]float64 `json:"crypto"`
	CreatedAt  time.Time          `json:"created_at"`
}

type Balances struct {
	Cash   int64              `json:"cash"`
	Bank   int64              `json:"bank"`
	Crypto map[string]float64 `json:"crypto"`
}

type CreditInput struct {
	UserID         string
	Amount         int64
	Pool           string
	Kind           string
	IdempotencyKey string
}

type TransferInput struct {
	UserID         string
	Amount         int64
	From           string
	To             string
	IdempotencyKey string
}

type TransferResult struct {
	Amount int64 `json:"amount"`
	Fee    int64 `json:"fee"`
	Cash   int64 `json:"cash"`
	Bank   int64 `json:"bank"`
}

type CryptoTradeInput struct {
	UserID         string
	CoinID         string
	Amount         int64   // dollars spent (buy)
	CoinAmount     float64 // coins sold (sell)
	Pool           string  // source (buy) / destination (sell)
	IdempotencyKey string
}

type CryptoTradeResult struct {
	CoinID     string  `json:"coin_id"`
	Price      float64 `json:"price"`
	Fee        int64   `json:"fee"`
	CoinAmount float64 `json:"coin_amount"` // coins bought/sold
	Proceeds   int64   `json:"proceeds"`    // dollars credited on sell
	Cash       int64   `json:"cash"`
	Bank       int64   `json:"bank"`
	Holding    float64 `json:"holding"`
}

type TierUpgradeInput struct {
	UserID         string
	IdempotencyKey string
}

type TierUpgradeResult struct {
	Tier     int    `json:"tier"`
	TierName string `json:"tier_name"`
	Cost     int64  `json:"cost"`
	Cash     int64  `json:"cash"`
	Bank     int64  `json:"bank"`
}

type CrimeInput struct {
	UserID         string
	CrimeID        string
	IdempotencyKey string
}

// PayoutBreakdown is how one reward was split across the three pools.
// CryptoAmount is dollars converted; CryptoCoins is what landed in the
// wallet after conversion.
type PayoutBreakdown struct {
	Cash         int64   `json:"cash"`
	Bank         int64   `json:"bank"`
	CryptoAmount int64   `json:"crypto_amount"`
	CryptoCoin   string  `json:"crypto_coin,omitempty"`
	CryptoCoins  float64 `json:"crypto_coins,omitempty"`
}

type CrimeResult struct {
	CrimeID          string          `json:"crime_id"`
	Success          bool            `json:"success"`
	SuccessChance    float64         `json:"success_chance"`
	MoneyEarned      int64           `json:"money_earned"`
	Breakdown        PayoutBreakdown `json:"breakdown"`
	XPGained         int64           `json:"xp_gained"`
	CriticalSuccess  bool            `json:"critical_success"`
	LeveledUp        bool            `json:"leveled_up"`
	NewLevel         int             `json:"new_level"`
	ReputationGained int64           `json:"reputation_gained"`
	JailMinutes      int             `json:"jail_minutes,omitempty"`
	BribeAmount      int64           `json:"bribe_amount,omitempty"`
	EscapedJail      bool            `json:"escaped_jail,omitempty"`
	Injured          bool            `json:"injured,omitempty"`
	InjuryDamage     int             `json:"injury_damage,omitempty"`
}

type JailStatus struct {
	InJail           bool      `json:"in_jail"`
	Crime            string    `json:"crime,omitempty"`
	Severity         int       `json:"severity,omitempty"`
	Until            time.Time `json:"until,omitempty"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	BribeAmount      int64     `json:"bribe_amount,omitempty"`
	CanAfford        bool      `json:"can_afford"`
	CooldownUntil    time.Time `json:"cooldown_until,omitempty"`
	TotalJailMinutes int64     `json:"total_jail_minutes"`
}

type SentenceInput struct {
	UserID         string
	Minutes        int
	Crime          string
	Severity       int
	IdempotencyKey string
}

type Sentence struct {
	Until       time.Time `json:"until"`
	Minutes     int       `json:"minutes"`
	Severity    int       `json:"severity"`
	BribeAmount int64     `json:"bribe_amount"`
}

type BribeInput struct {
	UserID         string
	IdempotencyKey string
}

type BribeResult struct {
	Paid             int64 `json:"paid"`
	FromCash         int64 `json:"from_cash"`
	FromBank         int64 `json:"from_bank"`
	TimeSavedSeconds int64 `json:"time_saved_seconds"`
	Cash             int64 `json:"cash"`
	Bank             int64 `json:"bank"`
}

type ActionBlock struct {
	Blocked          bool   `json:"blocked"`
	Reason           string `json:"reason,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
	BribeAmount      int64  `json:"bribe_amount,omitempty"`
}

type PurchaseInput struct {
	UserID         string
	TemplateID     string
	PaymentMethod  string // cash, bank or mixed
	IdempotencyKey string
}

type PurchaseResult struct {
	AssetID  int64 `json:"asset_id"`
	Price    int64 `json:"price"`
	FromCash int64 `json:"from_cash"`
	FromBank int64 `json:"from_bank"`
	Cash     int64 `json:"cash"`
	Bank     int64 `json:"bank"`
}

type AssetView struct {
	ID            int64     `json:"id"`
	TemplateID    string    `json:"template_id"`
	Name          string    `json:"name"`
	Level         int       `json:"level"`
	MaxLevel      int       `json:"max_level"`
	IncomeRate    int64     `json:"income_rate"`
	SecurityLevel int       `json:"security_level"`
	Value         int64     `json:"value"`
	LastIncomeAt  time.Time `json:"last_income_at"`
	PendingIncome int64     `json:"pending_income"`
}

type CollectInput struct {
	UserID         string
	IdempotencyKey string
}

type AssetCollection struct {
	AssetID    int64           `json:"asset_id"`
	TemplateID string          `json:"template_id"`
	Income     int64           `json:"income"`
	Breakdown  PayoutBreakdown `json:"breakdown"`
}

type CollectResult struct {
	AssetsCollected int               `json:"assets_collected"`
	AssetsSkipped   int               `json:"assets_skipped"`
	TotalIncome     int64             `json:"total_income"`
	Collections     []AssetCollection `json:"collections"`
	Cash            int64             `json:"cash"`
	Bank            int64             `json:"bank"`
}

type UpgradeInput struct {
	UserID         string
	AssetID        int64
	Kind           string // income or security
	PaymentMethod  string
	IdempotencyKey string
}

type UpgradeResult struct {
	AssetID       int64 `json:"asset_id"`
	Level         int   `json:"level"`
	Cost          int64 `json:"cost"`
	IncomeRate    int64 `json:"income_rate"`
	SecurityLevel int   `json:"security_level"`
	Cash          int64 `json:"cash"`
	Bank          int64 `json:"bank"`
}

type TransactionView struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Amount     int64     `json:"amount"`
	Fee        int64     `json:"fee"`
	CashBefore int64     `json:"cash_before"`
	CashAfter  int64     `json:"cash_after"`
	BankBefore int64     `json:"bank_before"`
	BankAfter  int64     `json:"bank_after"`
	CreatedAt  time.Time `json:"created_at"`
}

type CoinPrice struct {
	CoinID   string  `json:"coin_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}
