package engine

import (
	"math"
	"testing"
	"time"

	"github.com/voidworks/tradewinds/internal/simclock"
)

type recordingSystem struct {
	calls int
	total float64
}

func (r *recordingSystem) Tick(dt float64) {
	r.calls++
	r.total += dt
}

func TestStepAdvancesClockAndSystems(t *testing.T) {
	clock := simclock.New(60) // one real second is one game minute
	e := New(clock)
	e.Interval = time.Second

	sys := &recordingSystem{}
	e.Register(sys)

	for i := 0; i < 120; i++ {
		e.Step()
	}

	if sys.calls != 120 {
		t.Fatalf("system calls = %d, want 120", sys.calls)
	}
	if math.Abs(sys.total-120) > 1e-9 {
		t.Fatalf("accumulated dt = %v, want 120", sys.total)
	}
	// 120 game minutes.
	if math.Abs(clock.Now()-2.0) > 1e-9 {
		t.Fatalf("clock = %v hours, want 2.0", clock.Now())
	}
	if e.Ticks() != 120 {
		t.Fatalf("tick counter = %d, want 120", e.Ticks())
	}
}

func TestSystemsRunInRegistrationOrder(t *testing.T) {
	clock := simclock.New(60)
	e := New(clock)

	var order []string
	e.Register(tickFunc(func(float64) { order = append(order, "market") }))
	e.Register(tickFunc(func(float64) { order = append(order, "factions") }))
	e.Register(tickFunc(func(float64) { order = append(order, "events") }))

	e.Step()

	want := []string{"market", "factions", "events"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("tick order = %v, want %v", order, want)
		}
	}
}

type tickFunc func(dt float64)

func (f tickFunc) Tick(dt float64) { f(dt) }

func TestSpeedAdjustableWhileRunning(t *testing.T) {
	clock := simclock.New(60)
	e := New(clock)
	e.Interval = time.Millisecond

	ticked := make(chan struct{}, 1)
	e.OnTick = func(uint64) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never ticked")
	}
	for i := 0; i < 100; i++ {
		e.SetSpeed(float64(i%10) + 1)
	}
	if got := e.Speed(); got != 10 {
		t.Fatalf("speed = %v, want 10", got)
	}

	e.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestRunStops(t *testing.T) {
	clock := simclock.New(60)
	e := New(clock)
	e.Interval = time.Millisecond

	e.OnTick = func(tick uint64) {
		if tick >= 3 {
			e.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	if e.Ticks() < 3 {
		t.Fatalf("ticks = %d, want at least 3", e.Ticks())
	}
}
