package entropy

import "testing"

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if a.Float() != b.Float() {
			t.Fatalf("draw %d diverged between identically seeded sources", i)
		}
	}
}

func TestRangeStaysInBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Range(0.95, 1.05)
		if v < 0.95 || v >= 1.05 {
			t.Fatalf("Range(0.95, 1.05) = %v, out of bounds", v)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(3)
	for i := 0; i < 100; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !s.Chance(1.0) {
			t.Fatal("Chance(1.0) returned false")
		}
	}
}

func TestZeroSeedAutoSeeds(t *testing.T) {
	s := New(0)
	v := s.Float()
	if v < 0 || v >= 1 {
		t.Fatalf("Float() = %v, want [0,1)", v)
	}
}
