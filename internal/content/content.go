// Package content holds the immutable reference data the economy runs on:
// crime definitions, asset templates, the bank tier ladder and the crypto
// coin table. Built-in defaults can be replaced section-by-section from a
// YAML file.
package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	PayCash   = "cash"
	PayBank   = "bank"
	PayCrypto = "crypto"
	PayMixed  = "mixed"
)

const (
	StatStrength     = "strength"
	StatStealth      = "stealth"
	StatIntelligence = "intelligence"
)

type Requirements struct {
	Level      int            `yaml:"level"`
	Reputation int64          `yaml:"reputation"`
	Money      int64          `yaml:"money"`
	Stats      map[string]int `yaml:"stats"`
}

type RiskFactors struct {
	InjuryChance float64 `yaml:"injury_chance"`
	// HeatGeneration is defined in crime data but consumed by nothing yet.
	HeatGeneration int `yaml:"heat_generation"`
}

type Crime struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	Category        string       `yaml:"category"`
	Difficulty      int          `yaml:"difficulty"`
	CooldownSeconds int          `yaml:"cooldown_seconds"`
	RewardMin       int64        `yaml:"reward_min"`
	RewardMax       int64        `yaml:"reward_max"`
	XPReward        int64        `yaml:"xp_reward"`
	BaseSuccessRate float64      `yaml:"base_success_rate"`
	JailTimeMin     int          `yaml:"jail_time_min"`
	JailTimeMax     int          `yaml:"jail_time_max"`
	PaymentType     string       `yaml:"payment_type"`
	Requirements    Requirements `yaml:"requirements"`
	StatBonuses     []string     `yaml:"stat_bonuses"`
	RiskFactors     RiskFactors  `yaml:"risk_factors"`
}

type BankTier struct {
	Level           int     `yaml:"level"`
	Name            string  `yaml:"name"`
	MinLevel        int     `yaml:"min_level"`
	MinNetWorth     int64   `yaml:"min_net_worth"`
	WithdrawalLimit int64   `yaml:"withdrawal_limit"`
	InterestRate    float64 `yaml:"interest_rate"`
	DepositFee      float64 `yaml:"deposit_fee"`
	WithdrawalFee   float64 `yaml:"withdrawal_fee"`
	ProtectionLevel int     `yaml:"protection_level"`
	UpgradeCost     int64   `yaml:"upgrade_cost"`
}

type Coin struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Category   string  `yaml:"category"` // "stable" or "volatile"
	BasePrice  float64 `yaml:"base_price"`
	Volatility float64 `yaml:"volatility"`
}

type Distribution struct {
	Cash   int `yaml:"cash"`
	Bank   int `yaml:"bank"`
	Crypto int `yaml:"crypto"`
}

type IncomeUpgrade struct {
	Cost       int64   `yaml:"cost"`
	Multiplier float64 `yaml:"multiplier"`
}

type SecurityUpgrade struct {
	Cost  int64 `yaml:"cost"`
	Value int   `yaml:"value"`
}

type Upgrades struct {
	Income   []IncomeUpgrade   `yaml:"income"`
	Security []SecurityUpgrade `yaml:"security"`
}

type AssetTemplate struct {
	ID                 string       `yaml:"id"`
	Name               string       `yaml:"name"`
	Category           string       `yaml:"category"`
	BasePrice          int64        `yaml:"base_price"`
	BaseIncomeRate     int64        `yaml:"base_income_rate"`
	BaseSecurityLevel  int          `yaml:"base_security_level"`
	MaxLevel           int          `yaml:"max_level"`
	Requirements       Requirements `yaml:"requirements"`
	IncomeDistribution Distribution `yaml:"income_distribution"`
	CryptoCoin         string       `yaml:"crypto_coin"`
	Upgrades           Upgrades     `yaml:"upgrades"`
}

type Catalog struct {
	Crimes []Crime         `yaml:"crimes"`
	Tiers  []BankTier      `yaml:"bank_tiers"`
	Coins  []Coin          `yaml:"coins"`
	Assets []AssetTemplate `yaml:"asset_templates"`

	crimeByID map[string]*Crime
	assetByID map[string]*AssetTemplate
	coinByID  map[string]*Coin
	tierByLvl map[int]*BankTier
}

// Load returns the default catalog, with sections replaced from the YAML
// file at path when path is non-empty. A missing file is not an error.
func Load(path string) (*Catalog, error) {
	cat := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read content file: %w", err)
		}
		if len(raw) > 0 {
			var override Catalog
			if err := yaml.Unmarshal(raw, &override); err != nil {
				return nil, fmt.Errorf("parse content file: %w", err)
			}
			if len(override.Crimes) > 0 {
				cat.Crimes = override.Crimes
			}
			if len(override.Tiers) > 0 {
				cat.Tiers = override.Tiers
			}
			if len(override.Coins) > 0 {
				cat.Coins = override.Coins
			}
			if len(override.Assets) > 0 {
				cat.Assets = override.Assets
			}
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	cat.index()
	return cat, nil
}

func (c *Catalog) index() {
	c.crimeByID = make(map[string]*Crime, len(c.Crimes))
	for i := range c.Crimes {
		c.crimeByID[c.Crimes[i].ID] = &c.Crimes[i]
	}
	c.assetByID = make(map[string]*AssetTemplate, len(c.Assets))
	for i := range c.Assets {
		c.assetByID[c.Assets[i].ID] = &c.Assets[i]
	}
	c.coinByID = make(map[string]*Coin, len(c.Coins))
	for i := range c.Coins {
		c.coinByID[c.Coins[i].ID] = &c.Coins[i]
	}
	c.tierByLvl = make(map[int]*BankTier, len(c.Tiers))
	for i := range c.Tiers {
		c.tierByLvl[c.Tiers[i].Level] = &c.Tiers[i]
	}
}

func (c *Catalog) Crime(id string) (*Crime, bool) {
	cr, ok := c.crimeByID[id]
	return cr, ok
}

func (c *Catalog) Asset(id string) (*AssetTemplate, bool) {
	a, ok := c.assetByID[id]
	return a, ok
}

func (c *Catalog) Coin(id string) (*Coin, bool) {
	co, ok := c.coinByID[id]
	return co, ok
}

func (c *Catalog) Tier(level int) (*BankTier, bool) {
	t, ok := c.tierByLvl[level]
	return t, ok
}

func (c *Catalog) MaxTier() int {
	max := 0
	for _, t := range c.Tiers {
		if t.Level > max {
			max = t.Level
		}
	}
	return max
}

// StableCoins returns the stable-category coins in declaration order. When
// none are configured, crime crypto payouts fall back to the first coin.
func (c *Catalog) StableCoins() []Coin {
	var out []Coin
	for _, co := range c.Coins {
		if co.Category == "stable" {
			out = append(out, co)
		}
	}
	return out
}

func (c *Catalog) Validate() error {
	if len(c.Crimes) == 0 {
		return fmt.Errorf("content: no crimes defined")
	}
	if len(c.Coins) == 0 {
		return fmt.Errorf("content: no coins defined")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("content: no bank tiers defined")
	}
	seen := map[string]bool{}
	for _, cr := range c.Crimes {
		if cr.ID == "" || seen["crime:"+cr.ID] {
			return fmt.Errorf("content: missing or duplicate crime id %q", cr.ID)
		}
		seen["crime:"+cr.ID] = true
		if cr.Difficulty < 1 || cr.Difficulty > 10 {
			return fmt.Errorf("content: crime %s: difficulty %d out of range 1..10", cr.ID, cr.Difficulty)
		}
		if cr.RewardMin >= cr.RewardMax {
			return fmt.Errorf("content: crime %s: reward_min must be < reward_max", cr.ID)
		}
		if cr.JailTimeMin >= cr.JailTimeMax {
			return fmt.Errorf("content: crime %s: jail_time_min must be < jail_time_max", cr.ID)
		}
		if cr.BaseSuccessRate < 0 || cr.BaseSuccessRate > 1 {
			return fmt.Errorf("content: crime %s: base_success_rate out of [0,1]", cr.ID)
		}
		switch cr.PaymentType {
		case "", PayCash, PayBank, PayCrypto, PayMixed:
		default:
			return fmt.Errorf("content: crime %s: unknown payment_type %q", cr.ID, cr.PaymentType)
		}
		if cr.RiskFactors.InjuryChance < 0 || cr.RiskFactors.InjuryChance > 1 {
			return fmt.Errorf("content: crime %s: injury_chance out of [0,1]", cr.ID)
		}
	}
	for _, co := range c.Coins {
		if co.ID == "" || seen["coin:"+co.ID] {
			return fmt.Errorf("content: missing or duplicate coin id %q", co.ID)
		}
		seen["coin:"+co.ID] = true
		if co.BasePrice < 0.01 {
			return fmt.Errorf("content: coin %s: base_price below 0.01 floor", co.ID)
		}
		if co.Volatility <= 0 || co.Volatility >= 1 {
			return fmt.Errorf("content: coin %s: volatility out of (0,1)", co.ID)
		}
	}
	levels := make([]int, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		if seen[fmt.Sprintf("tier:%d", t.Level)] {
			return fmt.Errorf("content: duplicate bank tier level %d", t.Level)
		}
		seen[fmt.Sprintf("tier:%d", t.Level)] = true
		levels = append(levels, t.Level)
		if t.DepositFee < 0 || t.DepositFee >= 1 || t.WithdrawalFee < 0 || t.WithdrawalFee >= 1 {
			return fmt.Errorf("content: tier %d: fees out of [0,1)", t.Level)
		}
		if t.WithdrawalLimit <= 0 {
			return fmt.Errorf("content: tier %d: withdrawal_limit must be > 0", t.Level)
		}
	}
	sort.Ints(levels)
	for i, lvl := range levels {
		if lvl != i+1 {
			return fmt.Errorf("content: bank tier levels must be contiguous from 1, got %v", levels)
		}
	}
	for _, a := range c.Assets {
		if a.ID == "" || seen["asset:"+a.ID] {
			return fmt.Errorf("content: missing or duplicate asset id %q", a.ID)
		}
		seen["asset:"+a.ID] = true
		if a.MaxLevel < 1 {
			return fmt.Errorf("content: asset %s: max_level must be >= 1", a.ID)
		}
		if a.BasePrice <= 0 || a.BaseIncomeRate <= 0 {
			return fmt.Errorf("content: asset %s: base_price and base_income_rate must be > 0", a.ID)
		}
		d := a.IncomeDistribution
		if d.Cash < 0 || d.Bank < 0 || d.Crypto < 0 || d.Cash+d.Bank+d.Crypto != 100 {
			return fmt.Errorf("content: asset %s: income_distribution must sum to 100", a.ID)
		}
		if d.Crypto > 0 {
			if _, ok := c.coinLookupRaw(a.CryptoCoin); !ok {
				return fmt.Errorf("content: asset %s: crypto_coin %q not in coin table", a.ID, a.CryptoCoin)
			}
		}
		if len(a.Upgrades.Income) != a.MaxLevel-1 {
			return fmt.Errorf("content: asset %s: income upgrades must have %d entries", a.ID, a.MaxLevel-1)
		}
		if len(a.Upgrades.Security) != a.MaxLevel-1 {
			return fmt.Errorf("content: asset %s: security upgrades must have %d entries", a.ID, a.MaxLevel-1)
		}
		for i, u := range a.Upgrades.Income {
			if u.Cost <= 0 || u.Multiplier <= 1 {
				return fmt.Errorf("content: asset %s: income upgrade %d needs cost > 0 and multiplier > 1", a.ID, i)
			}
		}
		for i, u := range a.Upgrades.Security {
			if u.Cost <= 0 || u.Value <= 0 {
				return fmt.Errorf("content: asset %s: security upgrade %d needs cost > 0 and value > 0", a.ID, i)
			}
		}
	}
	return nil
}

// coinLookupRaw works before index() has run, for Validate.
func (c *Catalog) coinLookupRaw(id string) (*Coin, bool) {
	for i := range c.Coins {
		if c.Coins[i].ID == id {
			return &c.Coins[i], true
		}
	}
	return nil, false
}
