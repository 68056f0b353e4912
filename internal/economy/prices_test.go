package economy

import (
	"math"
	"testing"
	"time"
)

func TestNextPriceFloor(t *testing.T) {
	got := nextPrice(0.011, 0.5, 0.99, 0.99) // strong downward step
	if got < PriceFloor {
		t.Fatalf("price %v fell through the floor", got)
	}
	if nextPrice(PriceFloor, 0.9, 0.99, 0.99) != PriceFloor {
		t.Fatalf("floor price should stay pinned on a down step")
	}
}

func TestNextPriceSymmetry(t *testing.T) {
	// An up step followed by a down step of the same magnitude returns to
	// the original price exactly. That is the point of dividing instead of
	// multiplying by (1 - v).
	old := 123.45
	up := nextPrice(old, 0.08, 0.2, 0.7)  // u1 < 0.5: multiply
	down := nextPrice(up, 0.08, 0.8, 0.7) // u1 >= 0.5: divide
	if math.Abs(down-old) > 1e-9 {
		t.Fatalf("up then down drifted: %v -> %v -> %v", old, up, down)
	}
}

func TestNextPriceZeroDrift(t *testing.T) {
	// Over many alternating steps with a fixed magnitude the walk must not
	// decay. A seeded rng keeps this deterministic.
	g := newRNG(42)
	price := 50.0
	logSum := 0.0
	const steps = 200_000
	for i := 0; i < steps; i++ {
		next := nextPrice(price, 0.05, g.Float64(), g.Float64())
		logSum += math.Log(next / price)
		price = next
	}
	drift := logSum / steps
	if math.Abs(drift) > 1e-4 {
		t.Fatalf("per-step log drift %v too large", drift)
	}
}

func TestPersistDue(t *testing.T) {
	now := time.Now()
	ttl := time.Hour

	if persistDue(now.Add(-time.Minute), now, ttl) {
		t.Fatal("fresh row must not step the walk")
	}
	if !persistDue(now.Add(-ttl), now, ttl) {
		t.Fatal("row exactly one window old must step")
	}
	if !persistDue(now.Add(-2*ttl), now, ttl) {
		t.Fatal("stale row must step")
	}
}

func TestRoundCoins(t *testing.T) {
	if got := roundCoins(0.123456789); got != 0.12345679 {
		t.Fatalf("got %v", got)
	}
	if got := roundCoins(1.0); got != 1.0 {
		t.Fatalf("got %v", got)
	}
}
