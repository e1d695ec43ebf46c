// Package engine provides the tick-based simulation loop that drives the
// economy forward in game time.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/voidworks/tradewinds/internal/simclock"
)

// System is a subsystem advanced once per tick. dt is elapsed real seconds.
type System interface {
	Tick(dt float64)
}

// Engine drives the simulation forward. Speed and the running flag are
// adjusted from API handlers while the loop runs, so they sit behind the
// engine's lock.
type Engine struct {
	Interval time.Duration // Base tick interval (default 1 second)

	mu      sync.Mutex
	speed   float64 // multiplier: 1.0 = real-time, 0 = paused
	running bool
	ticks   uint64

	clock   *simclock.Clock
	systems []System

	// OnTick fires after every completed step.
	OnTick func(tick uint64)
}

// New creates a simulation engine with default settings.
func New(clock *simclock.Clock) *Engine {
	return &Engine{
		speed:    1.0,
		Interval: time.Second,
		clock:    clock,
	}
}

// Register adds a subsystem to the tick order. Systems run in the order
// they were registered.
func (e *Engine) Register(s System) {
	e.systems = append(e.systems, s)
}

// Ticks returns the monotonic tick counter.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed adjusts the speed multiplier. Zero pauses the loop.
func (e *Engine) SetSpeed(v float64) {
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
}

// Running reports whether the loop is live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "speed", e.Speed(), "time", e.clock.String())

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused, sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "ticks", e.Ticks(), "time", e.clock.String())
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Step advances game time by one tick interval and runs every registered
// subsystem. Speed compresses the wall time between steps, so each step
// always represents one nominal interval of elapsed seconds.
func (e *Engine) Step() {
	e.mu.Lock()
	e.ticks++
	tick := e.ticks
	e.mu.Unlock()

	dt := e.Interval.Seconds()
	e.clock.Advance(dt)

	for _, s := range e.systems {
		s.Tick(dt)
	}

	if e.OnTick != nil {
		e.OnTick(tick)
	}
}
