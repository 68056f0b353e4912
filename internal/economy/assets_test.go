package economy

import (
	"testing"
	"time"

	"mafiawar/internal/content"
)

func TestAccruedIncomeCap(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		rate    int64
		elapsed time.Duration
		want    int64
	}{
		{name: "one hour", rate: 100, elapsed: time.Hour, want: 100},
		{name: "half hour floors", rate: 101, elapsed: 30 * time.Minute, want: 50},
		{name: "capped at a day", rate: 100, elapsed: 30 * time.Hour, want: 2400},
		{name: "exactly a day", rate: 100, elapsed: 24 * time.Hour, want: 2400},
		{name: "future clock", rate: 100, elapsed: -time.Hour, want: 0},
		{name: "zero elapsed", rate: 100, elapsed: 0, want: 0},
	}
	for _, tc := range tests {
		got := AccruedIncome(tc.rate, now.Add(-tc.elapsed), now)
		if got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestSplitIncomeRemainderToCrypto(t *testing.T) {
	d := content.Distribution{Cash: 33, Bank: 33, Crypto: 34}
	got := SplitIncome(100, d)
	if got.Cash != 33 || got.Bank != 33 || got.CryptoAmount != 34 {
		t.Fatalf("got %+v", got)
	}

	// 101 floors both fixed shares; crypto absorbs the extra dollar.
	got = SplitIncome(101, d)
	if got.Cash != 33 || got.Bank != 33 || got.CryptoAmount != 35 {
		t.Fatalf("got %+v", got)
	}
	if got.Cash+got.Bank+got.CryptoAmount != 101 {
		t.Fatalf("split loses money: %+v", got)
	}
}

func TestSplitIncomeNoCryptoShare(t *testing.T) {
	d := content.Distribution{Cash: 60, Bank: 40}
	got := SplitIncome(101, d)
	if got.CryptoAmount != 0 {
		t.Fatalf("no crypto share configured but got %+v", got)
	}
	// Cash absorbs the rounding remainder.
	if got.Cash != 61 || got.Bank != 40 {
		t.Fatalf("got %+v want cash=61 bank=40", got)
	}
}

func TestPlanCollectionSkipsZeroIncome(t *testing.T) {
	cat, err := content.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	now := time.Now().UTC()
	owned := []assetRow{
		{ID: 1, TemplateID: "laundromat", IncomeRate: 60, LastIncomeAt: now.Add(-2 * time.Hour)},
		{ID: 2, TemplateID: "nightclub", IncomeRate: 500, LastIncomeAt: now.Add(-1 * time.Hour)},
		// Freshly collected: nothing accrued, the clock must not reset.
		{ID: 3, TemplateID: "laundromat", IncomeRate: 60, LastIncomeAt: now},
	}

	plan := planCollection(cat, owned, now)
	if plan.skipped != 1 {
		t.Fatalf("skipped got %d want 1", plan.skipped)
	}
	if len(plan.collectIDs) != 2 {
		t.Fatalf("collectIDs got %v want ids 1 and 2", plan.collectIDs)
	}
	for _, id := range plan.collectIDs {
		if id == 3 {
			t.Fatalf("zero-income asset must not have its accrual clock reset")
		}
	}
	if plan.totalIncome != 120+500 {
		t.Fatalf("totalIncome got %d want 620", plan.totalIncome)
	}
	// Nightclub splits 50/40/10 with crypto taking the floor remainder.
	if plan.cryptoByCoin["anchor"] != 50 {
		t.Fatalf("anchor share got %d want 50", plan.cryptoByCoin["anchor"])
	}
	if plan.cash+plan.bank+plan.cryptoByCoin["anchor"] != plan.totalIncome {
		t.Fatalf("plan loses money: %+v", plan)
	}
}

func TestPlanCollectionAllIdle(t *testing.T) {
	cat, err := content.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	now := time.Now().UTC()
	owned := []assetRow{
		{ID: 1, TemplateID: "laundromat", IncomeRate: 60, LastIncomeAt: now},
		{ID: 2, TemplateID: "laundromat", IncomeRate: 60, LastIncomeAt: now},
	}
	plan := planCollection(cat, owned, now)
	if len(plan.collectIDs) != 0 || plan.skipped != 2 {
		t.Fatalf("idle assets should all skip: %+v", plan)
	}
}

func TestSplitIncomeAllBuckets(t *testing.T) {
	for _, amount := range []int64{1, 7, 99, 100, 12345} {
		for _, d := range []content.Distribution{
			{Cash: 100},
			{Bank: 100},
			{Crypto: 100},
			{Cash: 50, Bank: 30, Crypto: 20},
			{Cash: 70, Bank: 30},
		} {
			got := SplitIncome(amount, d)
			if got.Cash+got.Bank+got.CryptoAmount != amount {
				t.Fatalf("amount=%d dist=%+v split loses money: %+v", amount, d, got)
			}
			if got.Cash < 0 || got.Bank < 0 || got.CryptoAmount < 0 {
				t.Fatalf("amount=%d dist=%+v negative bucket: %+v", amount, d, got)
			}
		}
	}
}
