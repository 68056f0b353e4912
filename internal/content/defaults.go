package content

// Defaults is the built-in content set, mirrored by the seed data every
// deployment starts from. Amounts are whole dollars.
func Defaults() *Catalog {
	return &Catalog{
		Crimes: []Crime{
			{
				ID: "pickpocket", Name: "Pickpocketing", Category: "petty",
				Difficulty: 1, CooldownSeconds: 60,
				RewardMin: 20, RewardMax: 120, XPReward: 8,
				BaseSuccessRate: 0.80, JailTimeMin: 2, JailTimeMax: 6,
				PaymentType: PayCash,
				StatBonuses: []string{StatStealth},
			},
			{
				ID: "shoplifting", Name: "Shoplifting", Category: "petty",
				Difficulty: 2, CooldownSeconds: 120,
				RewardMin: 50, RewardMax: 250, XPReward: 14,
				BaseSuccessRate: 0.70, JailTimeMin: 4, JailTimeMax: 10,
				PaymentType: PayCash,
				StatBonuses: []string{StatStealth},
				RiskFactors: RiskFactors{InjuryChance: 0.05, HeatGeneration: 1},
			},
			{
				ID: "mugging", Name: "Mugging", Category: "street",
				Difficulty: 3, CooldownSeconds: 300,
				RewardMin: 150, RewardMax: 600, XPReward: 25,
				BaseSuccessRate: 0.60, JailTimeMin: 8, JailTimeMax: 20,
				PaymentType:  PayCash,
				Requirements: Requirements{Level: 3},
				StatBonuses:  []string{StatStrength, StatStealth},
				RiskFactors:  RiskFactors{InjuryChance: 0.15, HeatGeneration: 2},
			},
			{
				ID: "car_theft", Name: "Car Theft", Category: "street",
				Difficulty: 4, CooldownSeconds: 600,
				RewardMin: 500, RewardMax: 2000, XPReward: 45,
				BaseSuccessRate: 0.50, JailTimeMin: 15, JailTimeMax: 40,
				PaymentType:  PayMixed,
				Requirements: Requirements{Level: 5, Stats: map[string]int{StatStealth: 8}},
				StatBonuses:  []string{StatStealth, StatIntelligence},
				RiskFactors:  RiskFactors{InjuryChance: 0.10, HeatGeneration: 3},
			},
			{
				ID: "burglary", Name: "Burglary", Category: "property",
				Difficulty: 5, CooldownSeconds: 900,
				RewardMin: 800, RewardMax: 3500, XPReward: 60,
				BaseSuccessRate: 0.45, JailTimeMin: 20, JailTimeMax: 60,
				PaymentType:  PayMixed,
				Requirements: Requirements{Level: 8, Reputation: 50},
				StatBonuses:  []string{StatStealth, StatIntelligence},
				RiskFactors:  RiskFactors{InjuryChance: 0.12, HeatGeneration: 4},
			},
			{
				ID: "fraud", Name: "Wire Fraud", Category: "white_collar",
				Difficulty: 6, CooldownSeconds: 1800,
				RewardMin: 2000, RewardMax: 8000, XPReward: 90,
				BaseSuccessRate: 0.40, JailTimeMin: 30, JailTimeMax: 90,
				PaymentType:  PayBank,
				Requirements: Requirements{Level: 12, Stats: map[string]int{StatIntelligence: 15}},
				StatBonuses:  []string{StatIntelligence},
				RiskFactors:  RiskFactors{HeatGeneration: 5},
			},
			{
				ID: "crypto_heist", Name: "Exchange Heist", Category: "cyber",
				Difficulty: 8, CooldownSeconds: 3600,
				RewardMin: 5000, RewardMax: 25000, XPReward: 160,
				BaseSuccessRate: 0.30, JailTimeMin: 60, JailTimeMax: 180,
				PaymentType:  PayCrypto,
				Requirements: Requirements{Level: 18, Reputation: 300, Stats: map[string]int{StatIntelligence: 25}},
				StatBonuses:  []string{StatIntelligence, StatStealth},
				RiskFactors:  RiskFactors{HeatGeneration: 7},
			},
			{
				ID: "bank_job", Name: "Bank Job", Category: "heist",
				Difficulty: 10, CooldownSeconds: 7200,
				RewardMin: 20000, RewardMax: 80000, XPReward: 300,
				BaseSuccessRate: 0.20, JailTimeMin: 120, JailTimeMax: 360,
				PaymentType: PayMixed,
				Requirements: Requirements{
					Level: 25, Reputation: 1000,
					Stats: map[string]int{StatStrength: 20, StatStealth: 20, StatIntelligence: 20},
				},
				StatBonuses: []string{StatStrength, StatStealth, StatIntelligence},
				RiskFactors: RiskFactors{InjuryChance: 0.25, HeatGeneration: 10},
			},
		},
		Tiers: []BankTier{
			{Level: 1, Name: "Street Stash", MinLevel: 1, MinNetWorth: 0, WithdrawalLimit: 5_000, InterestRate: 0.0005, DepositFee: 0.05, WithdrawalFee: 0.05, ProtectionLevel: 1, UpgradeCost: 0},
			{Level: 2, Name: "Credit Union", MinLevel: 5, MinNetWorth: 10_000, WithdrawalLimit: 25_000, InterestRate: 0.0010, DepositFee: 0.04, WithdrawalFee: 0.04, ProtectionLevel: 2, UpgradeCost: 2_500},
			{Level: 3, Name: "Commercial Bank", MinLevel: 10, MinNetWorth: 75_000, WithdrawalLimit: 100_000, InterestRate: 0.0015, DepositFee: 0.03, WithdrawalFee: 0.03, ProtectionLevel: 3, UpgradeCost: 15_000},
			{Level: 4, Name: "Private Bank", MinLevel: 18, MinNetWorth: 400_000, WithdrawalLimit: 500_000, InterestRate: 0.0020, DepositFee: 0.02, WithdrawalFee: 0.02, ProtectionLevel: 4, UpgradeCost: 80_000},
			{Level: 5, Name: "Offshore Trust", MinLevel: 30, MinNetWorth: 2_000_000, WithdrawalLimit: 2_500_000, InterestRate: 0.0030, DepositFee: 0.01, WithdrawalFee: 0.01, ProtectionLevel: 5, UpgradeCost: 500_000},
		},
		Coins: []Coin{
			{ID: "anchor", Name: "AnchorCoin", Category: "stable", BasePrice: 1.00, Volatility: 0.02},
			{ID: "bitgrit", Name: "BitGrit", Category: "volatile", BasePrice: 4_200, Volatility: 0.08},
			{ID: "omerta", Name: "Omerta", Category: "volatile", BasePrice: 135, Volatility: 0.12},
			{ID: "vendetta", Name: "Vendetta", Category: "volatile", BasePrice: 2.75, Volatility: 0.20},
		},
		Assets: []AssetTemplate{
			{
				ID: "laundromat", Name: "Laundromat", Category: "front",
				BasePrice: 5_000, BaseIncomeRate: 60, BaseSecurityLevel: 1, MaxLevel: 5,
				Requirements:       Requirements{Level: 3},
				IncomeDistribution: Distribution{Cash: 100},
				Upgrades: Upgrades{
					Income: []IncomeUpgrade{
						{Cost: 2_000, Multiplier: 1.4},
						{Cost: 5_000, Multiplier: 1.4},
						{Cost: 12_000, Multiplier: 1.5},
						{Cost: 28_000, Multiplier: 1.5},
					},
					Security: []SecurityUpgrade{
						{Cost: 1_500, Value: 1},
						{Cost: 3_500, Value: 1},
						{Cost: 8_000, Value: 2},
						{Cost: 18_000, Value: 2},
					},
				},
			},
			{
				ID: "pawn_shop", Name: "Pawn Shop", Category: "front",
				BasePrice: 15_000, BaseIncomeRate: 150, BaseSecurityLevel: 2, MaxLevel: 5,
				Requirements:       Requirements{Level: 7, Reputation: 40},
				IncomeDistribution: Distribution{Cash: 70, Bank: 30},
				Upgrades: Upgrades{
					Income: []IncomeUpgrade{
						{Cost: 6_000, Multiplier: 1.4},
						{Cost: 14_000, Multiplier: 1.4},
						{Cost: 32_000, Multiplier: 1.5},
						{Cost: 70_000, Multiplier: 1.5},
					},
					Security: []SecurityUpgrade{
						{Cost: 4_000, Value: 1},
						{Cost: 9_000, Value: 1},
						{Cost: 20_000, Value: 2},
						{Cost: 45_000, Value: 2},
					},
				},
			},
			{
				ID: "nightclub", Name: "Nightclub", Category: "entertainment",
				BasePrice: 60_000, BaseIncomeRate: 500, BaseSecurityLevel: 3, MaxLevel: 6,
				Requirements:       Requirements{Level: 12, Reputation: 150},
				IncomeDistribution: Distribution{Cash: 50, Bank: 40, Crypto: 10},
				CryptoCoin:         "anchor",
				Upgrades: Upgrades{
					Income: []IncomeUpgrade{
						{Cost: 20_000, Multiplier: 1.3},
						{Cost: 45_000, Multiplier: 1.3},
						{Cost: 100_000, Multiplier: 1.4},
						{Cost: 220_000, Multiplier: 1.4},
						{Cost: 480_000, Multiplier: 1.5},
					},
					Security: []SecurityUpgrade{
						{Cost: 15_000, Value: 1},
						{Cost: 32_000, Value: 2},
						{Cost: 70_000, Value: 2},
						{Cost: 150_000, Value: 3},
						{Cost: 320_000, Value: 3},
					},
				},
			},
			{
				ID: "casino", Name: "Underground Casino", Category: "entertainment",
				BasePrice: 250_000, BaseIncomeRate: 1_800, BaseSecurityLevel: 5, MaxLevel: 6,
				Requirements:       Requirements{Level: 20, Reputation: 600, Money: 250_000},
				IncomeDistribution: Distribution{Cash: 40, Bank: 40, Crypto: 20},
				CryptoCoin:         "omerta",
				Upgrades: Upgrades{
					Income: []IncomeUpgrade{
						{Cost: 80_000, Multiplier: 1.3},
						{Cost: 180_000, Multiplier: 1.3},
						{Cost: 400_000, Multiplier: 1.4},
						{Cost: 900_000, Multiplier: 1.4},
						{Cost: 2_000_000, Multiplier: 1.5},
					},
					Security: []SecurityUpgrade{
						{Cost: 60_000, Value: 2},
						{Cost: 130_000, Value: 2},
						{Cost: 280_000, Value: 3},
						{Cost: 600_000, Value: 3},
						{Cost: 1_300_000, Value: 4},
					},
				},
			},
			{
				ID: "shipping_co", Name: "Shipping Company", Category: "logistics",
				BasePrice: 1_000_000, BaseIncomeRate: 6_000, BaseSecurityLevel: 8, MaxLevel: 4,
				Requirements:       Requirements{Level: 30, Reputation: 2_000, Money: 1_000_000},
				IncomeDistribution: Distribution{Bank: 70, Crypto: 30},
				CryptoCoin:         "bitgrit",
				Upgrades: Upgrades{
					Income: []IncomeUpgrade{
						{Cost: 350_000, Multiplier: 1.35},
						{Cost: 800_000, Multiplier: 1.35},
						{Cost: 1_800_000, Multiplier: 1.45},
					},
					Security: []SecurityUpgrade{
						{Cost: 250_000, Value: 2},
						{Cost: 550_000, Value: 3},
						{Cost: 1_200_000, Value: 3},
					},
				},
			},
		},
	}
}
