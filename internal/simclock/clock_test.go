package simclock

import "testing"

func TestAdvanceScalesRealTime(t *testing.T) {
	c := New(3600) // 1 real second = 1 game hour
	c.Advance(1.0)
	if c.Now() != 1.0 {
		t.Fatalf("Now() = %v, want 1.0", c.Now())
	}
	c.Advance(0.5)
	if c.Now() != 1.5 {
		t.Fatalf("Now() = %v, want 1.5", c.Now())
	}
}

func TestDefaultScale(t *testing.T) {
	c := New(0)
	if c.Scale() != 60 {
		t.Fatalf("Scale() = %v, want 60", c.Scale())
	}
	c.Advance(60) // one real minute = one game hour at scale 60
	if c.Now() != 1.0 {
		t.Fatalf("Now() = %v, want 1.0", c.Now())
	}
}

func TestStringFormat(t *testing.T) {
	c := New(60)
	c.AdvanceHours(25.5)
	if got := c.String(); got != "Day 2, 01:30" {
		t.Fatalf("String() = %q, want %q", got, "Day 2, 01:30")
	}
}
