package economy

import (
	"testing"
	"time"
)

func TestJailRowActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (jailRow{}).active(now) {
		t.Fatalf("empty row should not be active")
	}
	if (jailRow{Until: &past}).active(now) {
		t.Fatalf("expired sentence should not be active")
	}
	if !(jailRow{Until: &future}).active(now) {
		t.Fatalf("future release time should be active")
	}
}

func TestJailRowCooldown(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (jailRow{}).inCooldown(now) {
		t.Fatalf("empty row should not be cooling down")
	}
	if (jailRow{CooldownUntil: &past}).inCooldown(now) {
		t.Fatalf("elapsed window should not be cooling down")
	}
	if !(jailRow{CooldownUntil: &future}).inCooldown(now) {
		t.Fatalf("open window should be cooling down")
	}
}

func TestAdmitSentence(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		row    jailRow
		exists bool
		want   error
	}{
		{name: "no record", row: jailRow{}, exists: false, want: nil},
		{name: "active sentence", row: jailRow{Until: &future}, exists: true, want: ErrAlreadyJailed},
		{name: "release cooldown", row: jailRow{Until: &past, CooldownUntil: &future}, exists: true, want: ErrCooldown},
		{name: "all elapsed", row: jailRow{Until: &past, CooldownUntil: &past}, exists: true, want: nil},
	}
	for _, tc := range tests {
		if got := admitSentence(tc.row, tc.exists, now); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestStatusViewFrozenBribe(t *testing.T) {
	now := time.Now()
	until := now.Add(30 * time.Minute)
	row := jailRow{
		Until:           &until,
		Crime:           "heist",
		Severity:        5,
		SentenceMinutes: 30,
		BribeAmount:     7_777,
		TotalMinutes:    30,
	}

	// The bribe was priced once at sentencing; later status checks must
	// return the identical amount no matter when they run or how the
	// player's wealth moved.
	first := row.statusView(now, 1_000, 0)
	later := row.statusView(now.Add(10*time.Minute), 1_000_000, 500_000)
	if first.BribeAmount != 7_777 || later.BribeAmount != 7_777 {
		t.Fatalf("bribe must stay frozen: %d then %d", first.BribeAmount, later.BribeAmount)
	}
	if first.CanAfford {
		t.Fatalf("cash+bank below the bribe should not afford it")
	}
	if !later.CanAfford {
		t.Fatalf("wealth above the bribe should afford it")
	}
	if !first.InJail || first.Crime != "heist" || first.Severity != 5 {
		t.Fatalf("unexpected status: %+v", first)
	}

	released := row.statusView(until.Add(time.Minute), 0, 0)
	if released.InJail || released.BribeAmount != 0 {
		t.Fatalf("expired sentence should report free: %+v", released)
	}
}

func TestJailBlockedActions(t *testing.T) {
	// Banking stays open so bribes can be funded from the bank.
	if jailBlockedActions[ActionBanking] {
		t.Fatalf("banking must not be jail-blocked")
	}
	for _, action := range []string{ActionCrime, ActionBusiness, ActionTrading, ActionGang} {
		if !jailBlockedActions[action] {
			t.Fatalf("action %q should be jail-blocked", action)
		}
	}
	if jailBlockedActions["unknown"] {
		t.Fatalf("unknown actions default to allowed")
	}
}
