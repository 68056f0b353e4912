package economy

import (
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 399, want: 2},
		{xp: 400, want: 3},
		{xp: 9_999, want: 10},
		{xp: 10_000, want: 11},
	}
	for _, tc := range tests {
		if got := LevelForXP(tc.xp); got != tc.want {
			t.Fatalf("xp=%d got=%d want=%d", tc.xp, got, tc.want)
		}
	}
}

func TestXPForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 50; level++ {
		threshold := XPForLevel(level)
		if got := LevelForXP(threshold); got != level {
			t.Fatalf("level %d: threshold %d maps back to %d", level, threshold, got)
		}
		if level > 1 && LevelForXP(threshold-1) != level-1 {
			t.Fatalf("level %d: xp just under threshold should yield %d", level, level-1)
		}
	}
}

func TestFeeSymmetry(t *testing.T) {
	// Depositing 100 at 5% credits 95; withdrawing 100 at 5% debits 105.
	if got := DepositCredit(100, 0.05); got != 95 {
		t.Fatalf("deposit credit got %d want 95", got)
	}
	if got := WithdrawalDebit(100, 0.05); got != 105 {
		t.Fatalf("withdrawal debit got %d want 105", got)
	}
}

func TestFeeOnRounds(t *testing.T) {
	tests := []struct {
		amount int64
		rate   float64
		want   int64
	}{
		{amount: 100, rate: 0.03, want: 3},
		{amount: 10, rate: 0.03, want: 0}, // 0.3 rounds down
		{amount: 50, rate: 0.03, want: 2}, // 1.5 rounds up
		{amount: 1, rate: 0.04, want: 0},
	}
	for _, tc := range tests {
		if got := FeeOn(tc.amount, tc.rate); got != tc.want {
			t.Fatalf("FeeOn(%d, %v) got %d want %d", tc.amount, tc.rate, got, tc.want)
		}
	}
}

func TestCalculateBribeFloor(t *testing.T) {
	// Severity 1, broke player, short sentence, worst random draw.
	got := CalculateBribe(1, 0, 5, 0)
	if got < BribeFloor {
		t.Fatalf("bribe %d below floor %d", got, BribeFloor)
	}
}

func TestCalculateBribeBounds(t *testing.T) {
	// Wealth multiplier caps at 3, time multiplier at 2, random factor
	// spans [0.8, 1.2). Worst case: 5000*3*2*1.2 = 36000.
	lo := CalculateBribe(5, 10_000_000, 100_000, 0)
	hi := CalculateBribe(5, 10_000_000, 100_000, 0.99)
	if lo != 24_000 {
		t.Fatalf("lower bound got %d want 24000", lo)
	}
	if hi != 35_880 { // 5000 * 3 * 2 * (0.8 + 0.4*0.99)
		t.Fatalf("upper bound got %d want 35880", hi)
	}
	if hi <= lo {
		t.Fatalf("random factor should spread bribes: lo=%d hi=%d", lo, hi)
	}
}

func TestCalculateBribeWealthMultiplier(t *testing.T) {
	// 50k visible wealth is a 1.5x multiplier, not capped.
	got := CalculateBribe(2, 50_000, 0, 0.5)
	want := int64(2000.0 * 1.5 * 1.0 * 1.0) // random factor at u=0.5 is exactly 1.0
	if got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestCalculateBribeSeverityClamped(t *testing.T) {
	if CalculateBribe(99, 0, 0, 0.5) != CalculateBribe(10, 0, 0, 0.5) {
		t.Fatalf("severity above 10 should clamp")
	}
	if CalculateBribe(-3, 0, 0, 0.5) != CalculateBribe(1, 0, 0, 0.5) {
		t.Fatalf("severity below 1 should clamp")
	}
}

func TestCooldownWindow(t *testing.T) {
	tests := []struct {
		minutes int
		frac    float64
		want    time.Duration
	}{
		{minutes: 60, frac: 0.25, want: 15 * time.Minute},
		{minutes: 2, frac: 0.25, want: MinJailCooldown},
		{minutes: 0, frac: 0.25, want: MinJailCooldown},
		{minutes: 60, frac: 0, want: MinJailCooldown},
		{minutes: 1440, frac: 0.5, want: 12 * time.Hour},
	}
	for _, tc := range tests {
		if got := CooldownWindow(tc.minutes, tc.frac); got != tc.want {
			t.Fatalf("minutes=%d frac=%v got=%v want=%v", tc.minutes, tc.frac, got, tc.want)
		}
	}
}

func TestUniformInt(t *testing.T) {
	if got := uniformInt(50, 200, 0); got != 50 {
		t.Fatalf("u=0 should hit the low bound, got %d", got)
	}
	if got := uniformInt(50, 200, 0.9999999); got != 200 {
		t.Fatalf("u~1 should hit the high bound, got %d", got)
	}
	if got := uniformInt(7, 7, 0.5); got != 7 {
		t.Fatalf("degenerate range got %d", got)
	}
	if got := uniformInt(10, 5, 0.5); got != 10 {
		t.Fatalf("inverted range should return lo, got %d", got)
	}
}

func TestStatsSum(t *testing.T) {
	s := Stats{Strength: 10, Stealth: 20, Intelligence: 30}
	if got := s.Sum([]string{"strength", "intelligence"}); got != 40 {
		t.Fatalf("got %d want 40", got)
	}
	if got := s.Sum([]string{"charisma"}); got != 0 {
		t.Fatalf("unknown stat should contribute 0, got %d", got)
	}
}

func TestPayPreferCash(t *testing.T) {
	row := financesRow{Cash: 300, Bank: 1000}
	fromCash, fromBank := payPreferCash(&row, 500)
	if fromCash != 300 || fromBank != 200 {
		t.Fatalf("got cash=%d bank=%d want 300/200", fromCash, fromBank)
	}
	if row.Cash != 0 || row.Bank != 800 {
		t.Fatalf("balances after: cash=%d bank=%d", row.Cash, row.Bank)
	}
}

func TestPayPreferBank(t *testing.T) {
	row := financesRow{Cash: 1000, Bank: 300}
	fromCash, fromBank := payPreferBank(&row, 500)
	if fromCash != 200 || fromBank != 300 {
		t.Fatalf("got cash=%d bank=%d want 200/300", fromCash, fromBank)
	}
	if row.Cash != 800 || row.Bank != 0 {
		t.Fatalf("balances after: cash=%d bank=%d", row.Cash, row.Bank)
	}
}
