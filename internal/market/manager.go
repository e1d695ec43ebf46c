// Package market implements the dynamic market manager: the price engine,
// market depth model, bounded price history, and the market event engine.
package market

import (
	"log/slog"
	"sync"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/sector"
	"github.com/voidworks/tradewinds/internal/simclock"
)

// Config holds the market manager's tunables.
type Config struct {
	MaxHistoryEntries   int     // ring-buffer cap per (station, commodity)
	MaxHistoryAgeHours  float64 // age purge threshold
	MaxEventSeverity    float64
	EnableRandomEvents  bool
	EventCheckHours     float64 // interval between random-event rolls
	RandomEventChance   float64 // gate before the type table is consulted
	DepthImpactWindow   int     // retained impacts per (station, commodity)
	DefaultDailyVolume  float64 // assumed volume for untracked markets
	SampleIntervalHours float64 // cadence of the live price sampler
}

// DefaultConfig returns the standard market tunables.
func DefaultConfig() Config {
	return Config{
		MaxHistoryEntries:   168, // one week, hourly
		MaxHistoryAgeHours:  168,
		MaxEventSeverity:    1.0,
		EnableRandomEvents:  true,
		EventCheckHours:     1.0,
		RandomEventChance:   0.30,
		DepthImpactWindow:   10,
		DefaultDailyVolume:  100,
		SampleIntervalHours: 1.0,
	}
}

// Manager owns all market state. All collaborators are injected at
// construction; the manager is advanced by Tick on the simulation loop
// while API handlers read it, so mutable state sits behind the lock.
type Manager struct {
	catalog   CommodityLookup
	territory TerritoryControl
	distance  DistanceProvider
	registry  *ModifierRegistry
	clock     *simclock.Clock
	rng       *entropy.Source
	cfg       Config

	mu sync.RWMutex

	stations []sector.StationID // stations eligible for random events

	history     map[histKey][]PriceHistoryEntry
	dailyVolume map[histKey]float64
	impacts     map[histKey][]DepthImpact
	largeOrders int

	// Player market influence: 1.0 is neutral, deviations recover toward
	// 1.0 each hour.
	influence map[string]float64

	events []*ActiveMarketEvent

	lastEventRoll float64
	lastCleanup   float64
	lastSample    float64

	// Notification hooks, fired synchronously. Hooks must not call back
	// into the manager.
	OnEventStarted func(ActiveMarketEvent)
	OnEventEnded   func(ActiveMarketEvent)
	OnPriceImpact  func(DepthImpact)
	OnPriceSampled func(sector.StationID, economy.CommodityID, PriceHistoryEntry)
}

// NewManager wires a market manager. A nil distance provider falls back to
// the neutral one.
func NewManager(catalog CommodityLookup, territory TerritoryControl, distance DistanceProvider,
	registry *ModifierRegistry, clock *simclock.Clock, rng *entropy.Source, cfg Config) *Manager {
	if distance == nil {
		distance = NeutralDistance{}
	}
	return &Manager{
		catalog:     catalog,
		territory:   territory,
		distance:    distance,
		registry:    registry,
		clock:       clock,
		rng:         rng,
		cfg:         cfg,
		history:     make(map[histKey][]PriceHistoryEntry),
		dailyVolume: make(map[histKey]float64),
		impacts:     make(map[histKey][]DepthImpact),
		influence:   make(map[string]float64),
	}
}

// SetStations declares which stations the random event generator and the
// price sampler cover.
func (m *Manager) SetStations(ids []sector.StationID) {
	m.mu.Lock()
	m.stations = ids
	m.mu.Unlock()
}

// Registry exposes the shared modifier registry.
func (m *Manager) Registry() *ModifierRegistry {
	return m.registry
}

// Tick advances the market by dt real seconds: expires events, rolls for
// new ones on the configured interval, samples live prices into history,
// and prunes stale entries.
func (m *Manager) Tick(dt float64) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireEvents(now)

	if now-m.lastEventRoll >= m.cfg.EventCheckHours {
		m.lastEventRoll = now
		for _, st := range m.stations {
			m.generateRandomEvent(st)
		}
		m.decayInfluence()
	}

	if m.cfg.SampleIntervalHours > 0 && now-m.lastSample >= m.cfg.SampleIntervalHours {
		m.lastSample = now
		m.samplePrices()
	}

	if now-m.lastCleanup >= m.cfg.EventCheckHours {
		m.lastCleanup = now
		m.pruneHistory(now)
	}
}

// GetPlayerMarketInfluence returns a player's market influence multiplier.
// Neutral players read 1.0.
func (m *Manager) GetPlayerMarketInfluence(playerID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerInfluence(playerID)
}

func (m *Manager) playerInfluence(playerID string) float64 {
	if v, ok := m.influence[playerID]; ok {
		return v
	}
	return 1.0
}

// RecordPlayerInfluence shifts a player's influence away from neutral.
// Positive delta marks market-moving buying, negative selling.
func (m *Manager) RecordPlayerInfluence(playerID string, delta float64) {
	m.mu.Lock()
	m.recordInfluence(playerID, delta)
	m.mu.Unlock()
}

func (m *Manager) recordInfluence(playerID string, delta float64) {
	v := m.playerInfluence(playerID) + delta
	if v < 0.5 {
		v = 0.5
	}
	if v > 2.0 {
		v = 2.0
	}
	m.influence[playerID] = v
	slog.Debug("player influence updated", "player", playerID, "influence", v)
}

// decayInfluence walks every influence score back toward neutral, the same
// cool-down shape the depth model uses for price impacts.
func (m *Manager) decayInfluence() {
	const recovery = 0.05
	for id, v := range m.influence {
		switch {
		case v > 1.0:
			v -= recovery
			if v < 1.0 {
				v = 1.0
			}
		case v < 1.0:
			v += recovery
			if v > 1.0 {
				v = 1.0
			}
		}
		if v == 1.0 {
			delete(m.influence, id)
			continue
		}
		m.influence[id] = v
	}
}
