package economy

import (
	"context"
	"testing"
)

func TestCreditDirectValidation(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)

	if _, err := l.CreditDirect(context.Background(), CreditInput{UserID: "u1", Amount: 0, Pool: "cash"}); err == nil {
		t.Fatal("zero amount must be rejected")
	}
	if _, err := l.CreditDirect(context.Background(), CreditInput{UserID: "u1", Amount: -50, Pool: "bank"}); err == nil {
		t.Fatal("negative amount must be rejected")
	}
	// Only the dollar pools can be credited directly; coins go through
	// the trade path.
	if _, err := l.CreditDirect(context.Background(), CreditInput{UserID: "u1", Amount: 100, Pool: "crypto"}); err == nil {
		t.Fatal("crypto pool must be rejected")
	}
}
