package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mafiawar/internal/content"
	"mafiawar/internal/economy"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

type transactionsPayload struct {
	Transactions []economy.TransactionView `json:"transactions"`
}

type coinsPayload struct {
	Coins []economy.CoinPrice `json:"coins"`
}

type crimesPayload struct {
	Crimes []content.Crime `json:"crimes"`
}

type templatesPayload struct {
	Templates []content.AssetTemplate `json:"templates"`
}

type assetsPayload struct {
	Assets []economy.AssetView `json:"assets"`
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func renderProfile(raw map[string]any) error {
	p, err := decodeInto[economy.PlayerProfile](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s (%s) ==\n", p.Username, p.UserID)
	fmt.Printf("Level:      %d (xp %d)\n", p.Level, p.XP)
	fmt.Printf("Reputation: %d\n", p.Reputation)
	fmt.Printf("Stats:      str=%d stl=%d int=%d\n", p.Stats.Strength, p.Stats.Stealth, p.Stats.Intelligence)
	fmt.Printf("Bank tier:  %d\n", p.BankTier)
	fmt.Printf("Cash:       $%d\n", p.Cash)
	fmt.Printf("Bank:       $%d\n", p.Bank)
	if len(p.Crypto) > 0 {
		fmt.Println("Crypto:")
		for coin, amount := range p.Crypto {
			fmt.Printf("  %-12s %.8f\n", coin, amount)
		}
	}
	return nil
}

func renderTransactions(raw map[string]any) error {
	out, err := decodeInto[transactionsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== TRANSACTIONS ==")
	if len(out.Transactions) == 0 {
		printInfo("No transactions yet.")
		return nil
	}
	fmt.Printf("%-8s %-18s %12s %8s %12s %12s %-16s\n", "ID", "KIND", "AMOUNT", "FEE", "CASH", "BANK", "WHEN")
	for _, t := range out.Transactions {
		fmt.Printf("%-8d %-18s %12d %8d %12d %12d %-16s\n",
			t.ID, t.Kind, t.Amount, t.Fee, t.CashAfter, t.BankAfter, t.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	return nil
}

func renderCredit(raw map[string]any) error {
	out, err := decodeInto[economy.Balances](raw)
	if err != nil {
		return err
	}
	success.Println("Credit applied.")
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderTransfer(raw map[string]any, verb string) error {
	out, err := decodeInto[economy.TransferResult](raw)
	if err != nil {
		return err
	}
	success.Printf("%s $%d (fee $%d)\n", verb, out.Amount, out.Fee)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderTierUpgrade(raw map[string]any) error {
	out, err := decodeInto[economy.TierUpgradeResult](raw)
	if err != nil {
		return err
	}
	success.Printf("Upgraded to tier %d (%s) for $%d\n", out.Tier, out.TierName, out.Cost)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderCoins(raw map[string]any) error {
	out, err := decodeInto[coinsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== COIN PRICES ==")
	fmt.Printf("%-12s %-20s %-10s %14s\n", "COIN", "NAME", "CATEGORY", "PRICE")
	for _, c := range out.Coins {
		fmt.Printf("%-12s %-20s %-10s %14.4f\n", c.CoinID, c.Name, c.Category, c.Price)
	}
	return nil
}

func renderTrade(raw map[string]any, action string) error {
	out, err := decodeInto[economy.CryptoTradeResult](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s %s ==\n", action, strings.ToUpper(out.CoinID))
	fmt.Printf("Price:    %.4f\n", out.Price)
	fmt.Printf("Coins:    %.8f\n", out.CoinAmount)
	fmt.Printf("Fee:      $%d\n", out.Fee)
	if out.Proceeds > 0 {
		fmt.Printf("Proceeds: $%d\n", out.Proceeds)
	}
	fmt.Printf("Holding:  %.8f\n", out.Holding)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderCrimes(raw map[string]any) error {
	out, err := decodeInto[crimesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== CRIMES ==")
	fmt.Printf("%-16s %-20s %5s %10s %10s %6s %-8s\n", "ID", "NAME", "DIFF", "MIN", "MAX", "BASE%", "PAYS")
	for _, c := range out.Crimes {
		fmt.Printf("%-16s %-20s %5d %10d %10d %5.0f%% %-8s\n",
			c.ID, c.Name, c.Difficulty, c.RewardMin, c.RewardMax, c.BaseSuccessRate*100, c.PaymentType)
	}
	return nil
}

func renderCrimeResult(raw map[string]any) error {
	out, err := decodeInto[economy.CrimeResult](raw)
	if err != nil {
		return err
	}
	if out.Success {
		success.Printf("\nSUCCESS (%0.0f%% chance)\n", out.SuccessChance*100)
		if out.CriticalSuccess {
			warn.Println("CRITICAL! Double XP.")
		}
		fmt.Printf("Earned:  $%d (cash $%d, bank $%d", out.MoneyEarned, out.Breakdown.Cash, out.Breakdown.Bank)
		if out.Breakdown.CryptoAmount > 0 {
			fmt.Printf(", %s %.8f", out.Breakdown.CryptoCoin, out.Breakdown.CryptoCoins)
		}
		fmt.Println(")")
		fmt.Printf("XP:      +%d", out.XPGained)
		if out.LeveledUp {
			success.Printf("  LEVEL UP -> %d", out.NewLevel)
		}
		fmt.Println()
		fmt.Printf("Rep:     +%d\n", out.ReputationGained)
		return nil
	}
	danger.Printf("\nFAILED (%0.0f%% chance)\n", out.SuccessChance*100)
	if out.EscapedJail {
		warn.Println("You slipped away before the cops arrived.")
		return nil
	}
	fmt.Printf("Jail:    %d minutes (bribe $%d)\n", out.JailMinutes, out.BribeAmount)
	if out.Injured {
		fmt.Printf("Injured: -%d health\n", out.InjuryDamage)
	}
	return nil
}

func renderJailStatus(raw map[string]any) error {
	out, err := decodeInto[economy.JailStatus](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== JAIL STATUS ==")
	if !out.InJail {
		success.Println("Not in jail.")
		if !out.CooldownUntil.IsZero() && out.CooldownUntil.After(time.Now()) {
			warn.Printf("Heat cooldown until %s\n", out.CooldownUntil.Local().Format("15:04:05"))
		}
		return nil
	}
	danger.Printf("In jail for %q (severity %d)\n", out.Crime, out.Severity)
	fmt.Printf("Release:  %s (%ds left)\n", out.Until.Local().Format("15:04:05"), out.RemainingSeconds)
	fmt.Printf("Bribe:    $%d", out.BribeAmount)
	if out.CanAfford {
		success.Print("  (affordable)")
	} else {
		danger.Print("  (cannot afford)")
	}
	fmt.Println()
	fmt.Printf("Total jail time served: %d minutes\n", out.TotalJailMinutes)
	return nil
}

func renderSentence(raw map[string]any) error {
	out, err := decodeInto[economy.Sentence](raw)
	if err != nil {
		return err
	}
	danger.Printf("Jailed for %d minutes (severity %d)\n", out.Minutes, out.Severity)
	fmt.Printf("Release: %s\n", out.Until.Local().Format("15:04:05"))
	fmt.Printf("Bribe:   $%d\n", out.BribeAmount)
	return nil
}

func renderBribe(raw map[string]any) error {
	out, err := decodeInto[economy.BribeResult](raw)
	if err != nil {
		return err
	}
	success.Printf("Bribe paid: $%d (cash $%d, bank $%d)\n", out.Paid, out.FromCash, out.FromBank)
	fmt.Printf("Time saved: %ds\n", out.TimeSavedSeconds)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderAssetTemplates(raw map[string]any) error {
	out, err := decodeInto[templatesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ASSET TEMPLATES ==")
	fmt.Printf("%-14s %-18s %12s %10s %6s %-20s\n", "ID", "NAME", "PRICE", "INCOME/H", "MAXLV", "SPLIT C/B/X")
	for _, t := range out.Templates {
		d := t.IncomeDistribution
		fmt.Printf("%-14s %-18s %12d %10d %6d %d/%d/%d\n",
			t.ID, t.Name, t.BasePrice, t.BaseIncomeRate, t.MaxLevel, d.Cash, d.Bank, d.Crypto)
	}
	return nil
}

func renderAssetList(raw map[string]any) error {
	out, err := decodeInto[assetsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ASSETS ==")
	if len(out.Assets) == 0 {
		printInfo("No assets owned.")
		return nil
	}
	fmt.Printf("%-6s %-18s %8s %10s %6s %12s %10s\n", "ID", "NAME", "LEVEL", "INCOME/H", "SEC", "VALUE", "PENDING")
	for _, a := range out.Assets {
		fmt.Printf("%-6d %-18s %4d/%-3d %10d %6d %12d %10d\n",
			a.ID, a.Name, a.Level, a.MaxLevel, a.IncomeRate, a.SecurityLevel, a.Value, a.PendingIncome)
	}
	return nil
}

func renderPurchase(raw map[string]any, templateID string) error {
	out, err := decodeInto[economy.PurchaseResult](raw)
	if err != nil {
		return err
	}
	success.Printf("Bought %s (#%d) for $%d (cash $%d, bank $%d)\n",
		templateID, out.AssetID, out.Price, out.FromCash, out.FromBank)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderCollection(raw map[string]any) error {
	out, err := decodeInto[economy.CollectResult](raw)
	if err != nil {
		return err
	}
	success.Printf("Collected $%d from %d assets (%d had nothing)\n",
		out.TotalIncome, out.AssetsCollected, out.AssetsSkipped)
	for _, c := range out.Collections {
		line := fmt.Sprintf("  #%-4d %-14s $%d (cash $%d, bank $%d",
			c.AssetID, c.TemplateID, c.Income, c.Breakdown.Cash, c.Breakdown.Bank)
		if c.Breakdown.CryptoAmount > 0 {
			line += fmt.Sprintf(", %s %.8f", c.Breakdown.CryptoCoin, c.Breakdown.CryptoCoins)
		}
		fmt.Println(line + ")")
	}
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func renderUpgrade(raw map[string]any) error {
	out, err := decodeInto[economy.UpgradeResult](raw)
	if err != nil {
		return err
	}
	success.Printf("Asset #%d upgraded to level %d for $%d\n", out.AssetID, out.Level, out.Cost)
	fmt.Printf("Income/h: %d  Security: %d\n", out.IncomeRate, out.SecurityLevel)
	fmt.Printf("Cash: $%d  Bank: $%d\n", out.Cash, out.Bank)
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
