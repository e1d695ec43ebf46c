package market

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// MarketEventType names the short-horizon market events.
type MarketEventType uint8

const (
	EventSupplyShortage MarketEventType = iota
	EventSupplyGlut
	EventFestival
	EventCivilUnrest
	EventTechBreakthrough
	EventResourceDiscovery
	EventMiningAccident
	EventEconomicBoom
	EventEconomicBust
	EventTradeWar
	EventBlockade
)

// EventTypeName returns a human-readable event type name.
func EventTypeName(t MarketEventType) string {
	switch t {
	case EventSupplyShortage:
		return "Supply Shortage"
	case EventSupplyGlut:
		return "Supply Glut"
	case EventFestival:
		return "Festival"
	case EventCivilUnrest:
		return "Civil Unrest"
	case EventTechBreakthrough:
		return "Tech Breakthrough"
	case EventResourceDiscovery:
		return "Resource Discovery"
	case EventMiningAccident:
		return "Mining Accident"
	case EventEconomicBoom:
		return "Economic Boom"
	case EventEconomicBust:
		return "Economic Bust"
	case EventTradeWar:
		return "Trade War"
	case EventBlockade:
		return "Blockade"
	default:
		return "Unknown"
	}
}

// ActiveMarketEvent is one live market event and its multipliers.
type ActiveMarketEvent struct {
	ID               string              `json:"id"`
	Type             MarketEventType     `json:"type"`
	Commodity        economy.CommodityID `json:"commodity,omitempty"`
	Station          sector.StationID    `json:"station,omitempty"`
	Severity         float64             `json:"severity"`
	PriceMultiplier  float64             `json:"price_multiplier"`
	DemandMultiplier float64             `json:"demand_multiplier"`
	SupplyMultiplier float64             `json:"supply_multiplier"`
	StartHour        float64             `json:"start_hour"`
	DurationHours    float64             `json:"duration_hours"`
	Description      string              `json:"description"`

	modHandle Handle
}

// effectRow maps severity linearly onto the three multipliers:
// multiplier = 1 + slope x severity. One row per event type; the values are
// game balance and must not drift.
type effectRow struct {
	price, demand, supply float64
}

var eventEffects = map[MarketEventType]effectRow{
	EventSupplyShortage:    {price: 0.5, demand: 0.3, supply: -1.0},
	EventSupplyGlut:        {price: -0.4, demand: -0.1, supply: 0.8},
	EventFestival:          {price: 0.15, demand: 0.5, supply: 0.0},
	EventCivilUnrest:       {price: 0.3, demand: -0.2, supply: -0.5},
	EventTechBreakthrough:  {price: -0.2, demand: 0.2, supply: 0.5},
	EventResourceDiscovery: {price: -0.35, demand: 0.0, supply: 1.0},
	EventMiningAccident:    {price: 0.4, demand: 0.1, supply: -0.7},
	EventEconomicBoom:      {price: 0.2, demand: 0.6, supply: 0.3},
	EventEconomicBust:      {price: -0.3, demand: -0.5, supply: 0.1},
	EventTradeWar:          {price: 0.45, demand: -0.3, supply: -0.4},
	EventBlockade:          {price: 0.6, demand: 0.2, supply: -0.9},
}

// randomEventTable drives weighted selection: cumulative probability per
// type. TradeWar and Blockade only fire through explicit triggers.
var randomEventTable = []struct {
	cumulative float64
	eventType  MarketEventType
}{
	{0.15, EventSupplyShortage},
	{0.25, EventSupplyGlut},
	{0.35, EventFestival},
	{0.45, EventCivilUnrest},
	{0.55, EventTechBreakthrough},
	{0.65, EventResourceDiscovery},
	{0.75, EventMiningAccident},
	{0.85, EventEconomicBoom},
	{1.00, EventEconomicBust},
}

// TriggerMarketEvent starts an event. Severity is clamped to
// [0, MaxEventSeverity]; multipliers come from the fixed per-type table.
// The event's modifiers register immediately and detach on expiry.
func (m *Manager) TriggerMarketEvent(t MarketEventType, commodityID economy.CommodityID, stationID sector.StationID, severity, durationHours float64) ActiveMarketEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggerEvent(t, commodityID, stationID, severity, durationHours)
}

func (m *Manager) triggerEvent(t MarketEventType, commodityID economy.CommodityID, stationID sector.StationID, severity, durationHours float64) ActiveMarketEvent {
	if severity < 0 {
		severity = 0
	}
	if severity > m.cfg.MaxEventSeverity {
		severity = m.cfg.MaxEventSeverity
	}

	row := eventEffects[t]
	ev := &ActiveMarketEvent{
		ID:               uuid.NewString(),
		Type:             t,
		Commodity:        commodityID,
		Station:          stationID,
		Severity:         severity,
		PriceMultiplier:  1 + row.price*severity,
		DemandMultiplier: 1 + row.demand*severity,
		SupplyMultiplier: 1 + row.supply*severity,
		StartHour:        m.clock.Now(),
		DurationHours:    durationHours,
		Description:      eventDescription(t, commodityID, stationID),
	}

	ev.modHandle = m.registry.Register(Modifier{
		Commodity: commodityID,
		Station:   stationID,
		Price:     ev.PriceMultiplier,
		Demand:    ev.DemandMultiplier,
		Supply:    ev.SupplyMultiplier,
		Source:    ev.ID,
	})
	m.events = append(m.events, ev)

	slog.Info("market event started",
		"type", EventTypeName(t),
		"commodity", commodityID,
		"station", stationID,
		"severity", severity,
		"duration_hours", durationHours,
	)
	if m.OnEventStarted != nil {
		m.OnEventStarted(*ev)
	}
	return *ev
}

// EndMarketEvent removes an active event by id, detaching its modifiers.
func (m *Manager) EndMarketEvent(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ev := range m.events {
		if ev.ID == id {
			m.removeEvent(i)
			return true
		}
	}
	return false
}

// ClearAllMarketEvents ends every active event.
func (m *Manager) ClearAllMarketEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.events) > 0 {
		m.removeEvent(len(m.events) - 1)
	}
}

// GetActiveMarketEvents returns a snapshot of the active set.
func (m *Manager) GetActiveMarketEvents() []ActiveMarketEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ActiveMarketEvent, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, *ev)
	}
	return out
}

// GenerateRandomMarketEvent rolls for a spontaneous event at a station.
// Gated by the config toggle, then an independent chance gate, then the
// weighted type table.
func (m *Manager) GenerateRandomMarketEvent(stationID sector.StationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateRandomEvent(stationID)
}

func (m *Manager) generateRandomEvent(stationID sector.StationID) {
	if !m.cfg.EnableRandomEvents {
		return
	}
	if !m.rng.Chance(m.cfg.RandomEventChance) {
		return
	}

	roll := m.rng.Float()
	eventType := randomEventTable[len(randomEventTable)-1].eventType
	for _, row := range randomEventTable {
		if roll < row.cumulative {
			eventType = row.eventType
			break
		}
	}

	severity := m.rng.Range(0.2, m.cfg.MaxEventSeverity)
	duration := m.rng.Range(1, 48)
	m.triggerEvent(eventType, "", stationID, severity, duration)
}

// expireEvents removes every event whose duration has elapsed. Caller
// holds the lock.
func (m *Manager) expireEvents(now float64) {
	for i := 0; i < len(m.events); {
		ev := m.events[i]
		if now-ev.StartHour >= ev.DurationHours {
			m.removeEvent(i)
			continue
		}
		i++
	}
}

// removeEvent detaches modifiers, drops the event, and fires the ended
// notification.
func (m *Manager) removeEvent(i int) {
	ev := m.events[i]
	m.registry.Unregister(ev.modHandle)
	m.events = append(m.events[:i], m.events[i+1:]...)

	slog.Info("market event ended", "type", EventTypeName(ev.Type), "id", ev.ID)
	if m.OnEventEnded != nil {
		m.OnEventEnded(*ev)
	}
}

func eventDescription(t MarketEventType, c economy.CommodityID, st sector.StationID) string {
	switch {
	case c != "" && st != "":
		return fmt.Sprintf("%s affecting %s at %s", EventTypeName(t), c, st)
	case c != "":
		return fmt.Sprintf("%s affecting %s sector-wide", EventTypeName(t), c)
	case st != "":
		return fmt.Sprintf("%s at %s", EventTypeName(t), st)
	default:
		return fmt.Sprintf("%s across the sector", EventTypeName(t))
	}
}
