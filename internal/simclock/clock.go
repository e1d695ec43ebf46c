// Package simclock tracks simulation time in game-hours. Every time-boxed
// record in the economy (events, agreements, sanctions, price history)
// stores hour floats against this clock rather than wall time, so the whole
// simulation can be advanced or fast-forwarded deterministically.
package simclock

import (
	"fmt"
	"sync"
)

// Clock is the simulation's game-time source. One tick of real time
// advances it by Scale game-seconds. The engine advances it while API
// handlers read it, so access is guarded.
type Clock struct {
	mu    sync.RWMutex
	hours float64 // game-hours since simulation start
	scale float64 // game-seconds advanced per real second
}

// New creates a clock. scale is game-seconds per real second; the default
// of 60 means one real second is one game-minute.
func New(scale float64) *Clock {
	if scale <= 0 {
		scale = 60
	}
	return &Clock{scale: scale}
}

// Advance moves the clock forward by dt real seconds.
func (c *Clock) Advance(dt float64) {
	c.mu.Lock()
	c.hours += dt * c.scale / 3600.0
	c.mu.Unlock()
}

// AdvanceHours moves the clock forward by a number of game-hours directly.
// Used by tests and fast-forward admin commands.
func (c *Clock) AdvanceHours(h float64) {
	c.mu.Lock()
	c.hours += h
	c.mu.Unlock()
}

// Now returns the current game time in hours since start.
func (c *Clock) Now() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hours
}

// NowDays returns the current game time in days since start.
func (c *Clock) NowDays() float64 {
	return c.Now() / 24.0
}

// Scale returns game-seconds per real second.
func (c *Clock) Scale() float64 {
	return c.scale
}

// String renders the clock as "Day N, HH:MM".
func (c *Clock) String() string {
	totalMinutes := int(c.Now() * 60)
	minutes := totalMinutes % 60
	totalHours := totalMinutes / 60
	hours := totalHours % 24
	days := totalHours/24 + 1
	return fmt.Sprintf("Day %d, %02d:%02d", days, hours, minutes)
}
