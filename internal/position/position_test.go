package position

import "testing"

func strp(s string) *string { return &s }

func TestBetweenOpenBothSides(t *testing.T) {
	got, err := Between(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Fatalf("expected non-empty position")
	}
	if err := Validate(got); err != nil {
		t.Fatalf("generated position failed validation: %v", err)
	}
}

func TestBetweenHeadAndTail(t *testing.T) {
	first, err := Between(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	head, err := Between(nil, strp(first))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(head < first) {
		t.Fatalf("expected head %q < first %q", head, first)
	}

	tail, err := Between(strp(first), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(first < tail) {
		t.Fatalf("expected first %q < tail %q", first, tail)
	}
}

func TestBetweenMidpointIsStrictlyBetween(t *testing.T) {
	left := "a1"
	right := "a3"
	mid, err := Between(strp(left), strp(right))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(left < mid && mid < right) {
		t.Fatalf("expected %q < %q < %q", left, mid, right)
	}
}

func TestBetweenAdjacentSingleCharsExtendsLength(t *testing.T) {
	// The last digits '1' and '2' are adjacent: no single extra character
	// fits between them, so the allocator must extend length.
	left := "A1"
	right := "A2"
	mid, err := Between(strp(left), strp(right))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(left < mid && mid < right) {
		t.Fatalf("expected %q < %q < %q", left, mid, right)
	}
	if len(mid) <= len(left) {
		t.Fatalf("expected extended length, got %q (len %d)", mid, len(mid))
	}
}

func TestBetweenRepeatedTailInsertsAreIncreasing(t *testing.T) {
	var prev *string
	var last string
	for i := 0; i < 20; i++ {
		next, err := Between(prev, nil)
		if err != nil {
			t.Fatalf("unexpected error at step %d: %v", i, err)
		}
		if prev != nil && !(*prev < next) {
			t.Fatalf("step %d: expected increasing sequence, got %q then %q", i, *prev, next)
		}
		last = next
		prev = &last
	}
}

func TestBetweenRejectsInvalidOrder(t *testing.T) {
	_, err := Between(strp("b"), strp("a"))
	if err == nil {
		t.Fatal("expected error for left >= right")
	}
}

func TestBetweenRejectsEqualBounds(t *testing.T) {
	_, err := Between(strp("a"), strp("a"))
	if err == nil {
		t.Fatal("expected error for left == right")
	}
}

func TestBetweenRejectsAlphabetViolation(t *testing.T) {
	_, err := Between(strp("a!"), nil)
	if err == nil {
		t.Fatal("expected error for out-of-alphabet character")
	}
}

func TestBetweenDeterministic(t *testing.T) {
	left, right := strp("m"), strp("n")
	a, err := Between(left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Between(left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic output, got %q and %q", a, b)
	}
}

func TestValidateRejectsTrailingZero(t *testing.T) {
	if err := Validate("a" + string(Alphabet[0])); err == nil {
		t.Fatal("expected trailing-zero digit to be rejected")
	}
}
