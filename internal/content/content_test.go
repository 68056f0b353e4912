package content

import "testing"

func TestDefaultsValidate(t *testing.T) {
	cat := Defaults()
	if err := cat.Validate(); err != nil {
		t.Fatalf("built-in catalog should validate: %v", err)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("load with no file: %v", err)
	}
	if len(cat.Crimes) == 0 || len(cat.Coins) == 0 || len(cat.Tiers) == 0 || len(cat.Assets) == 0 {
		t.Fatalf("defaults missing sections")
	}
	if _, ok := cat.Crime("pickpocket"); !ok {
		t.Fatalf("default crime lookup failed")
	}
}

func TestValidateRejectsBadDistribution(t *testing.T) {
	cat := Defaults()
	cat.Assets[0].IncomeDistribution = Distribution{Cash: 50, Bank: 30, Crypto: 30}
	if err := cat.Validate(); err == nil {
		t.Fatalf("distribution summing to 110 should fail")
	}
}

func TestValidateRejectsBadDifficulty(t *testing.T) {
	cat := Defaults()
	cat.Crimes[0].Difficulty = 11
	if err := cat.Validate(); err == nil {
		t.Fatalf("difficulty 11 should fail")
	}
}

func TestValidateRejectsShortUpgradeLadder(t *testing.T) {
	cat := Defaults()
	cat.Assets[0].Upgrades.Income = cat.Assets[0].Upgrades.Income[:1]
	if err := cat.Validate(); err == nil {
		t.Fatalf("income ladder shorter than max_level-1 should fail")
	}
}

func TestValidateRejectsMissingCryptoCoin(t *testing.T) {
	cat := Defaults()
	for i := range cat.Assets {
		if cat.Assets[i].IncomeDistribution.Crypto > 0 {
			cat.Assets[i].CryptoCoin = "nope"
			if err := cat.Validate(); err == nil {
				t.Fatalf("unknown crypto_coin should fail")
			}
			return
		}
	}
	t.Fatalf("no default asset has a crypto share")
}

func TestTierLadderContiguous(t *testing.T) {
	cat := Defaults()
	if err := cat.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cat.index()
	for lvl := 1; lvl <= cat.MaxTier(); lvl++ {
		if _, ok := cat.Tier(lvl); !ok {
			t.Fatalf("missing tier %d", lvl)
		}
	}
	if _, ok := cat.Tier(cat.MaxTier() + 1); ok {
		t.Fatalf("tier above max should not exist")
	}
}
