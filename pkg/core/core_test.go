package core

import (
	"slices"
	"testing"
	"time"
)

func TestByteGridWrap(t *testing.T) {
	g := NewByteGrid(4, 3)
	cases := []struct{ x, y, wx, wy int }{
		{0, 0, 0, 0},
		{-1, 0, 3, 0},
		{4, 0, 0, 0},
		{0, -1, 0, 2},
		{0, 3, 0, 0},
		{-5, -4, 3, 2},
	}
	for _, c := range cases {
		x, y := g.Wrap(c.x, c.y)
		if x != c.wx || y != c.wy {
			t.Fatalf("Wrap(%d,%d)=(%d,%d), expected (%d,%d)", c.x, c.y, x, y, c.wx, c.wy)
		}
	}
}

func TestByteGridRowsAndCopy(t *testing.T) {
	src := NewByteGrid(3, 2)
	src.Row(1)[2] = 1
	if src.At(2, 1) != 1 || src.Cells()[src.Index(2, 1)] != 1 {
		t.Fatal("Row does not alias the backing slice")
	}

	dst := NewByteGrid(3, 2)
	dst.CopyFrom(src)
	if !slices.Equal(src.Cells(), dst.Cells()) {
		t.Fatal("CopyFrom did not copy cells")
	}
	dst.Clear()
	if src.At(2, 1) != 1 {
		t.Fatal("Clear on the copy affected the source")
	}
}

func TestSizeContains(t *testing.T) {
	s := Size{W: 2, H: 3}
	if !s.Contains(1, 2) || s.Contains(2, 0) || s.Contains(0, 3) || s.Contains(-1, 0) {
		t.Fatal("Contains reported wrong bounds")
	}
}

func TestFillBinaryDeterministic(t *testing.T) {
	a := make([]uint8, 64)
	b := make([]uint8, 64)
	FillBinary(NewRNG(5).Source(), a)
	FillBinary(NewRNG(5).Source(), b)
	if !slices.Equal(a, b) {
		t.Fatal("same seed produced different fills")
	}
	for _, v := range a {
		if v > 1 {
			t.Fatalf("non-binary value %d", v)
		}
	}
}

func TestFixedStepPacing(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	if !fs.ShouldStep() {
		t.Fatal("first poll should step")
	}
	clock = clock.Add(50 * time.Millisecond)
	if fs.ShouldStep() {
		t.Fatal("stepped before a full period elapsed")
	}
	clock = clock.Add(50 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("did not step after a full period")
	}

	// A long stall yields at most one extra catch-up tick.
	clock = clock.Add(time.Second)
	steps := 0
	for i := 0; i < 5; i++ {
		if fs.ShouldStep() {
			steps++
		}
	}
	if steps != 2 {
		t.Fatalf("stall produced %d steps, expected 2", steps)
	}
}

func TestFixedStepSetTPS(t *testing.T) {
	fs := NewFixedStep(0)
	if fs.Period() != time.Second/60 {
		t.Fatalf("default period %v", fs.Period())
	}
	fs.SetTPS(4)
	if fs.Period() != 250*time.Millisecond {
		t.Fatalf("period %v, expected 250ms", fs.Period())
	}
}
