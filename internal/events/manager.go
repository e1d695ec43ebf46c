// Package events implements the economic event manager: day-scale events
// and event chains layered on top of the market event engine. Active
// events publish their multipliers through the shared modifier registry.
package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/market"
	"github.com/voidworks/tradewinds/internal/simclock"
)

// Config holds the event manager's tunables.
type Config struct {
	MaxActiveEvents   int
	MaxHistoryEntries int
	RandomRollHours   float64 // interval between spontaneous-event rolls
	RandomEventChance float64
	MaxSeverity       float64
}

// DefaultConfig returns the standard event manager tunables.
func DefaultConfig() Config {
	return Config{
		MaxActiveEvents:   10,
		MaxHistoryEntries: 100,
		RandomRollHours:   24,
		RandomEventChance: 0.25,
		MaxSeverity:       1.0,
	}
}

// Manager owns the day-scale economic event state. The simulation loop
// mutates it while API handlers and the faction economy read it, so state
// sits behind the lock.
type Manager struct {
	clock    *simclock.Clock
	rng      *entropy.Source
	registry *market.ModifierRegistry
	cfg      Config

	mu sync.RWMutex

	active    []*EventData
	history   []HistoryEntry
	templates map[string]Template
	chains    []*Chain

	lastRandomRoll float64

	OnEventStarted func(EventData)
	OnEventEnded   func(EventData)
	OnChainEnded   func(Chain)
}

// NewManager wires an economic event manager.
func NewManager(clock *simclock.Clock, rng *entropy.Source, registry *market.ModifierRegistry, cfg Config) *Manager {
	return &Manager{
		clock:     clock,
		rng:       rng,
		registry:  registry,
		cfg:       cfg,
		templates: make(map[string]Template),
	}
}

// TriggerEvent starts a day-scale event. Returns the zero EventData when
// the active set is at capacity; callers detect rejection by Empty().
func (m *Manager) TriggerEvent(name string, category Category, scope Scope, impact ImpactType,
	severity, durationDays float64, commodities []economy.CommodityID,
	triggeringFaction, targetFaction string) EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggerEvent(name, category, scope, impact, severity, durationDays,
		commodities, triggeringFaction, targetFaction)
}

func (m *Manager) triggerEvent(name string, category Category, scope Scope, impact ImpactType,
	severity, durationDays float64, commodities []economy.CommodityID,
	triggeringFaction, targetFaction string) EventData {

	if len(m.active) >= m.cfg.MaxActiveEvents {
		slog.Debug("event rejected, active set at capacity", "name", name)
		return EventData{}
	}
	if severity < 0 {
		severity = 0
	}
	if severity > m.cfg.MaxSeverity {
		severity = m.cfg.MaxSeverity
	}

	now := m.clock.Now()
	ev := &EventData{
		ID:                uuid.NewString(),
		Name:              name,
		Category:          category,
		Scope:             scope,
		Impact:            impact,
		Severity:          severity,
		DurationDays:      durationDays,
		StartHour:         now,
		EndHour:           now + durationDays*24,
		TriggeringFaction: triggeringFaction,
		TargetFaction:     targetFaction,
	}
	m.setupEffects(ev, commodities)
	m.registerModifiers(ev)
	m.active = append(m.active, ev)

	slog.Info("economic event started",
		"name", name,
		"category", CategoryName(category),
		"scope", ScopeName(scope),
		"severity", severity,
		"duration_days", durationDays,
	)
	if m.OnEventStarted != nil {
		m.OnEventStarted(*ev)
	}
	return *ev
}

// EndEvent concludes an active event by id.
func (m *Manager) EndEvent(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endEvent(id)
}

func (m *Manager) endEvent(id string) bool {
	for i, ev := range m.active {
		if ev.ID == id {
			m.concludeEvent(i)
			return true
		}
	}
	return false
}

// ActiveEvents returns a snapshot of the active set.
func (m *Manager) ActiveEvents() []EventData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EventData, 0, len(m.active))
	for _, ev := range m.active {
		out = append(out, *ev)
	}
	return out
}

// IsActive reports whether an event id is in the active set.
func (m *Manager) IsActive(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isActive(id)
}

func (m *Manager) isActive(id string) bool {
	for _, ev := range m.active {
		if ev.ID == id {
			return true
		}
	}
	return false
}

// History returns the bounded record of concluded events, oldest first.
func (m *Manager) History() []HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// FactionImpactFactor returns the composed impact multiplier of all active
// events against a faction. Neutral factions read 1.0.
func (m *Manager) FactionImpactFactor(factionID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	factor := 1.0
	for _, ev := range m.active {
		if v, ok := ev.FactionImpactMultipliers[factionID]; ok && v > 0 {
			factor *= v
		}
	}
	return factor
}

// Tick advances the event manager: expires events, processes chains, and
// rolls for spontaneous events on the configured interval.
func (m *Manager) Tick(dt float64) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < len(m.active); {
		if now >= m.active[i].EndHour {
			m.concludeEvent(i)
			continue
		}
		i++
	}

	m.processChains(now)

	if now-m.lastRandomRoll >= m.cfg.RandomRollHours {
		m.lastRandomRoll = now
		m.rollRandomEvent()
	}
}

// rollRandomEvent occasionally starts a spontaneous day-scale event from
// the registered templates. Caller holds the lock.
func (m *Manager) rollRandomEvent() {
	if len(m.templates) == 0 || !m.rng.Chance(m.cfg.RandomEventChance) {
		return
	}
	ids := m.templateIDs()
	tpl := m.templates[ids[m.rng.IntN(len(ids))]]
	m.triggerFromTemplate(tpl, "")
}

// TriggerFromTemplate starts an event from a blueprint.
func (m *Manager) TriggerFromTemplate(tpl Template, playerID string) EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggerFromTemplate(tpl, playerID)
}

func (m *Manager) triggerFromTemplate(tpl Template, playerID string) EventData {
	ev := m.triggerEvent(tpl.Name, tpl.Category, tpl.Scope, tpl.Impact,
		tpl.Severity, tpl.DurationDays, tpl.Commodities, "", "")
	if ev.Empty() {
		return ev
	}
	if playerID != "" {
		// Attribution lives on the stored record as well as the copy.
		for _, live := range m.active {
			if live.ID == ev.ID {
				live.TriggeringPlayer = playerID
				break
			}
		}
		ev.TriggeringPlayer = playerID
	}
	return ev
}

// PlayerTriggerEvent lets a player attempt to fire a named template. The
// template must allow player triggering, and the attempt rolls against the
// template's trigger chance.
func (m *Manager) PlayerTriggerEvent(templateID, playerID string) (EventData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tpl, ok := m.templates[templateID]
	if !ok || !tpl.CanBeTriggeredByPlayer {
		return EventData{}, false
	}
	if !m.rng.Chance(tpl.PlayerTriggerChance) {
		slog.Info("player event trigger failed roll", "template", templateID, "player", playerID)
		return EventData{}, false
	}
	ev := m.triggerFromTemplate(tpl, playerID)
	return ev, !ev.Empty()
}

// concludeEvent detaches modifiers, moves the event to history, and fires
// the ended notification. Caller holds the lock.
func (m *Manager) concludeEvent(i int) {
	ev := m.active[i]
	for _, h := range ev.modHandles {
		m.registry.Unregister(h)
	}
	m.active = append(m.active[:i], m.active[i+1:]...)

	m.history = append(m.history, HistoryEntry{Event: *ev, EndedHour: m.clock.Now()})
	if over := len(m.history) - m.cfg.MaxHistoryEntries; over > 0 {
		m.history = m.history[over:]
	}

	slog.Info("economic event ended", "name", ev.Name, "id", ev.ID)
	if m.OnEventEnded != nil {
		m.OnEventEnded(*ev)
	}
}

// registerModifiers publishes an event's commodity multipliers to the
// shared registry for the price engine to query.
func (m *Manager) registerModifiers(ev *EventData) {
	for c, price := range ev.CommodityPriceMultipliers {
		mod := market.Modifier{
			Commodity: c,
			Price:     price,
			Demand:    ev.CommodityDemandMultipliers[c],
			Supply:    ev.CommoditySupplyMultipliers[c],
			Source:    ev.ID,
		}
		ev.modHandles = append(ev.modHandles, m.registry.Register(mod))
	}
}
