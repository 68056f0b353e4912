package economy

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// StartingCash is granted once at character creation.
	StartingCash = int64(500)

	CryptoBuyFee  = 0.03
	CryptoSellFee = 0.04 // wider than the buy fee on purpose: asymmetric spread
	PriceFloor    = 0.01
	DustThreshold = 1e-8

	MaxSuccessRate     = 0.95
	LevelBonusPerLevel = 0.01
	LevelBonusCap      = 0.20
	StatBonusPerPoint  = 0.005
	StatBonusCap       = 0.15
	CriticalChance     = 0.05

	BribeFloor      = int64(500)
	MinJailCooldown = time.Minute

	MaxAccrualHours = 24.0
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrUnsupportedAsset     = errors.New("unsupported coin")
	ErrLimitExceeded        = errors.New("daily withdrawal limit exceeded")
	ErrAlreadyJailed        = errors.New("already serving a sentence")
	ErrNotInJail            = errors.New("no active sentence")
	ErrCannotAfford         = errors.New("cannot afford bribe")
	ErrCooldown             = errors.New("blocked by release cooldown")
	ErrJailed               = errors.New("action blocked while jailed")
	ErrMaxLevel             = errors.New("asset already at max level")
	ErrMaxTier              = errors.New("bank tier already at max")
	ErrNoAssets             = errors.New("no assets owned")
	ErrNothingToCollect     = errors.New("no income to collect")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

// RequirementsError reports every unmet gate at once rather than stopping
// at the first, so the caller can render the full list.
type RequirementsError struct {
	Missing []string
}

func (e *RequirementsError) Error() string {
	return "requirements not met: " + strings.Join(e.Missing, ", ")
}

// Stats is the player stat block crimes roll against.
type Stats struct {
	Strength     int `json:"strength"`
	Stealth      int `json:"stealth"`
	Intelligence int `json:"intelligence"`
}

func (s Stats) Get(name string) int {
	switch name {
	case "strength":
		return s.Strength
	case "stealth":
		return s.Stealth
	case "intelligence":
		return s.Intelligence
	}
	return 0
}

func (s Stats) Sum(names []string) int {
	total := 0
	for _, n := range names {
		total += s.Get(n)
	}
	return total
}

// LevelForXP maps cumulative XP to a level: reaching level n takes
// 100·(n−1)² XP. Level is always recomputed from XP, never incremented.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(xp)/100.0))
}

// XPForLevel is the cumulative XP threshold for a level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return 100 * n * n
}

func ClampSeverity(severity int) int {
	if severity < 1 {
		return 1
	}
	if severity > 10 {
		return 10
	}
	return severity
}

// FeeOn rounds a percentage fee on an integer amount.
func FeeOn(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

// DepositCredit is what the bank receives when depositing amount at the
// tier's deposit fee: the fee is destroyed, not rerouted.
func DepositCredit(amount int64, depositFee float64) int64 {
	return amount - FeeOn(amount, depositFee)
}

// WithdrawalDebit is the total taken from the bank to put amount in hand.
func WithdrawalDebit(amount int64, withdrawalFee float64) int64 {
	return amount + FeeOn(amount, withdrawalFee)
}

// CalculateBribe prices one bribe at sentencing time. Visible wealth is
// cash+bank only; crypto never enters this formula. u must be a single
// uniform draw in [0,1); the result is frozen on the jail record and
// never recomputed for the same sentence.
func CalculateBribe(severity int, visibleWealth int64, minutes int, u float64) int64 {
	base := float64(ClampSeverity(severity)) * 1000
	wealthMult := math.Min(3, 1+float64(visibleWealth)/100_000)
	timeMult := math.Min(2, 1+float64(minutes)/1440)
	randomFactor := 0.8 + 0.4*u
	price := int64(math.Round(base * wealthMult * timeMult * randomFactor))
	if price < BribeFloor {
		return BribeFloor
	}
	return price
}

// CooldownWindow derives the post-release cooldown from sentence length.
// The fraction is configurable; the original behavior never persisted a
// distinct window, so this is a deliberate design choice.
func CooldownWindow(sentenceMinutes int, frac float64) time.Duration {
	if frac <= 0 {
		return MinJailCooldown
	}
	d := time.Duration(float64(sentenceMinutes)*frac) * time.Minute
	if d < MinJailCooldown {
		return MinJailCooldown
	}
	return d
}

func uniformInt(lo, hi int64, u float64) int64 {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	v := lo + int64(u*float64(span))
	if v > hi {
		v = hi
	}
	return v
}

func validPool(pool string) error {
	switch pool {
	case "cash", "bank":
		return nil
	}
	return fmt.Errorf("pool must be cash or bank, got %q", pool)
}
