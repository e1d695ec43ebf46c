package events

import (
	"log/slog"

	"github.com/google/uuid"
)

// Chain is a running instance of an ordered or parallel event group.
// Pacing state lives on the instance, so multiple runs of the same
// blueprint never interfere.
type Chain struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Sequential bool       `json:"sequential"`
	DelayHours float64    `json:"delay_hours"` // between sequential triggers
	Events     []Template `json:"-"`

	nextIndex     int
	lastEventHour float64
	started       bool
	activeIDs     map[string]bool
}

// StartEventChain begins a chain instance from a blueprint. Sequential
// chains fire one event per processing pass, parallel chains fire all
// remaining events each pass.
func (m *Manager) StartEventChain(name string, sequential bool, delayHours float64, templates []Template) *Chain {
	if len(templates) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &Chain{
		ID:         uuid.NewString(),
		Name:       name,
		Sequential: sequential,
		DelayHours: delayHours,
		Events:     templates,
		activeIDs:  make(map[string]bool),
	}
	m.chains = append(m.chains, c)
	slog.Info("event chain started",
		"chain", name, "sequential", sequential, "events", len(templates))
	return c
}

// EndEventChain terminates a chain instance, concluding any of its events
// still active.
func (m *Manager) EndEventChain(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.chains {
		if c.ID != id {
			continue
		}
		for evID := range c.activeIDs {
			m.endEvent(evID)
		}
		m.removeChain(i)
		return true
	}
	return false
}

// ActiveChains returns a snapshot of running chains.
func (m *Manager) ActiveChains() []Chain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Chain, 0, len(m.chains))
	for _, c := range m.chains {
		out = append(out, *c)
	}
	return out
}

// processChains advances every chain one pass: trigger what is due, then
// retire chains with nothing left active. Caller holds the lock.
func (m *Manager) processChains(now float64) {
	for i := 0; i < len(m.chains); {
		c := m.chains[i]
		m.advanceChain(c, now)

		if c.nextIndex >= len(c.Events) && !m.anyChainEventActive(c) {
			slog.Info("event chain completed", "chain", c.Name)
			m.removeChain(i)
			continue
		}
		i++
	}
}

// advanceChain triggers due events for one chain.
func (m *Manager) advanceChain(c *Chain, now float64) {
	if c.Sequential {
		if c.nextIndex >= len(c.Events) {
			return
		}
		// The first event fires immediately; later ones wait out the
		// inter-event delay measured from this chain's own last trigger.
		if c.started && now-c.lastEventHour < c.DelayHours {
			return
		}
		m.triggerChainEvent(c, now)
		return
	}

	for c.nextIndex < len(c.Events) {
		if !m.triggerChainEvent(c, now) {
			return // capacity reached; retry next pass
		}
	}
}

// triggerChainEvent fires the chain's next event. Returns false if the
// event was rejected at capacity, leaving the index unchanged.
func (m *Manager) triggerChainEvent(c *Chain, now float64) bool {
	ev := m.triggerFromTemplate(c.Events[c.nextIndex], "")
	if ev.Empty() {
		return false
	}
	c.activeIDs[ev.ID] = true
	c.nextIndex++
	c.lastEventHour = now
	c.started = true
	return true
}

// anyChainEventActive reports whether any of the chain's triggered events
// is still in the active set, pruning concluded ids as it goes. Caller
// holds the lock.
func (m *Manager) anyChainEventActive(c *Chain) bool {
	for id := range c.activeIDs {
		if m.isActive(id) {
			return true
		}
		delete(c.activeIDs, id)
	}
	return false
}

func (m *Manager) removeChain(i int) {
	c := m.chains[i]
	m.chains = append(m.chains[:i], m.chains[i+1:]...)
	if m.OnChainEnded != nil {
		m.OnChainEnded(*c)
	}
}
