package idgen

import (
	"testing"
	"time"
)

func TestNextProducesValidRkeys(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 5; i++ {
		rk := g.Next()
		if !Valid(rk) {
			t.Fatalf("generated rkey %q failed Valid()", rk)
		}
	}
}

func TestNextIsStrictlyIncreasingUnderRapidCalls(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGeneratorWithSource(func() time.Time { return fixed }, 1)

	prev := g.Next()
	for i := 0; i < 50; i++ {
		next := g.Next()
		if !(prev < next) {
			t.Fatalf("expected strictly increasing rkeys under a frozen clock, got %q then %q", prev, next)
		}
		prev = next
	}
}

func TestNextToleratesBackwardClockJump(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	calls := []time.Time{base, base.Add(-time.Hour)}
	i := 0
	g := NewGeneratorWithSource(func() time.Time {
		t := calls[i]
		if i < len(calls)-1 {
			i++
		}
		return t
	}, 7)

	first := g.Next()
	second := g.Next()
	if !(first < second) {
		t.Fatalf("expected second rkey %q to sort after first %q despite backward clock jump", second, first)
	}
}

func TestValidRejectsWrongLengthAndAlphabet(t *testing.T) {
	if Valid("short") {
		t.Fatal("expected short string to be invalid")
	}
	if Valid("123456789012!") {
		t.Fatal("expected out-of-alphabet character to be invalid")
	}
}

func TestAlphabetOrderMatchesByteOrder(t *testing.T) {
	for i := 1; i < len(tidAlphabet); i++ {
		if !(tidAlphabet[i-1] < tidAlphabet[i]) {
			t.Fatalf("tidAlphabet not strictly increasing at index %d", i)
		}
	}
	if mustAlphabetIndex('2') != 0 {
		t.Fatalf("expected '2' to be the first digit")
	}
}
