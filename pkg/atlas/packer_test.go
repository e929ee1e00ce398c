package atlas

import (
	"math/rand"
	"testing"
)

func TestPackerInsertSplits(t *testing.T) {
	p := NewPacker(8)

	r, ok := p.Insert(Size{4, 2})
	if !ok || r != (Rect{0, 0, 4, 2}) {
		t.Fatalf("first insert: got %v ok=%v", r, ok)
	}

	// Fits in the strip to the right of the first rectangle
	r, ok = p.Insert(Size{4, 2})
	if !ok || r != (Rect{4, 0, 8, 2}) {
		t.Fatalf("second insert: got %v ok=%v", r, ok)
	}

	// Too tall for the right strip, goes below
	r, ok = p.Insert(Size{3, 3})
	if !ok || r != (Rect{0, 2, 3, 5}) {
		t.Fatalf("third insert: got %v ok=%v", r, ok)
	}
}

func TestPackerRightStripKeepsInsertedHeight(t *testing.T) {
	p := NewPacker(8)
	if _, ok := p.Insert(Size{2, 2}); !ok {
		t.Fatal("first insert failed")
	}
	// The strip to the right is only 2 high, so a 6x3 rectangle must go below
	r, ok := p.Insert(Size{6, 3})
	if !ok || r != (Rect{0, 2, 6, 5}) {
		t.Fatalf("got %v ok=%v", r, ok)
	}
}

func TestPackerRejectsOversize(t *testing.T) {
	p := NewPacker(16)
	if _, ok := p.Insert(Size{17, 1}); ok {
		t.Error("expected wider-than-atlas insert to fail")
	}
	if _, ok := p.Insert(Size{16, 16}); !ok {
		t.Error("exact fit should succeed")
	}
	if _, ok := p.Insert(Size{1, 1}); ok {
		t.Error("full atlas should reject further inserts")
	}
	if _, ok := p.Insert(Size{-1, 1}); ok {
		t.Error("negative size should be rejected")
	}
}

func TestPackerFreeRegions(t *testing.T) {
	p := NewPacker(4)
	p.Insert(Size{4, 1})

	free := p.FreeRegions()
	if len(free) != 1 || free[0] != (Rect{0, 1, 4, 4}) {
		t.Errorf("unexpected free regions %v", free)
	}

	total := 0
	for _, r := range free {
		total += r.Area()
	}
	if total != 12 {
		t.Errorf("free area: got %d, want 12", total)
	}
}

func TestPackerNoOverlapAndFit(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const size = 256

	for round := 0; round < 20; round++ {
		p := NewPacker(size)
		var placed []Rect
		for i := 0; i < 60; i++ {
			s := Size{1 + rng.Intn(48), 1 + rng.Intn(48)}
			r, ok := p.Insert(s)
			if !ok {
				continue
			}
			if r.Size() != s {
				t.Fatalf("round %d: placed %v for size %v", round, r, s)
			}
			if !r.Within(size) {
				t.Fatalf("round %d: %v outside %dx%d", round, r, size, size)
			}
			for _, other := range placed {
				if r.Overlaps(other) {
					t.Fatalf("round %d: %v overlaps %v", round, r, other)
				}
			}
			placed = append(placed, r)
		}

		used := 0
		for _, r := range placed {
			used += r.Area()
		}
		free := 0
		for _, r := range p.FreeRegions() {
			free += r.Area()
			for _, pr := range placed {
				if r.Overlaps(pr) {
					t.Fatalf("round %d: free region %v overlaps placed %v", round, r, pr)
				}
			}
		}
		if used+free != size*size {
			t.Fatalf("round %d: used %d + free %d != %d", round, used, free, size*size)
		}
	}
}

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		a, b Rect
		want bool
	}{
		{Rect{0, 0, 2, 2}, Rect{1, 1, 3, 3}, true},
		{Rect{0, 0, 2, 2}, Rect{2, 0, 4, 2}, false}, // shared edge
		{Rect{0, 0, 2, 2}, Rect{0, 2, 2, 4}, false},
		{Rect{0, 0, 4, 4}, Rect{1, 1, 2, 2}, true},
		{Rect{0, 0, 0, 4}, Rect{0, 0, 4, 4}, false}, // empty
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}
