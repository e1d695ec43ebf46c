package events

import (
	"sort"

	"github.com/voidworks/tradewinds/internal/economy"
)

// RegisterTemplate adds a named event blueprint. Later registrations with
// the same id overwrite.
func (m *Manager) RegisterTemplate(tpl Template) {
	if tpl.ID == "" {
		return
	}
	m.mu.Lock()
	m.templates[tpl.ID] = tpl
	m.mu.Unlock()
}

// GetTemplate returns a blueprint by id.
func (m *Manager) GetTemplate(id string) (Template, bool) {
	m.mu.RLock()
	tpl, ok := m.templates[id]
	m.mu.RUnlock()
	return tpl, ok
}

// templateIDs returns template ids in stable sorted order. Caller holds
// the lock.
func (m *Manager) templateIDs() []string {
	out := make([]string, 0, len(m.templates))
	for id := range m.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SeedDefaultTemplates registers the standard day-scale event set.
func (m *Manager) SeedDefaultTemplates() {
	for _, tpl := range []Template{
		{
			ID: "ore-rush", Name: "Ore Rush",
			Category: CategoryMarket, Scope: ScopeRegional, Impact: ImpactPositive,
			Severity: 0.6, DurationDays: 3,
			Commodities: []economy.CommodityID{"iron-ore", "titanium-ore"},
		},
		{
			ID: "fuel-crisis", Name: "Fuel Crisis",
			Category: CategoryMarket, Scope: ScopeGlobal, Impact: ImpactNegative,
			Severity: 0.7, DurationDays: 5,
			Commodities: []economy.CommodityID{"hydrogen-fuel", "antimatter-cells"},
		},
		{
			ID: "harvest-festival", Name: "Harvest Festival",
			Category: CategorySeasonal, Scope: ScopeRegional, Impact: ImpactPositive,
			Severity: 0.4, DurationDays: 7,
			Commodities: []economy.CommodityID{"protein-paste", "fresh-produce", "zero-g-whiskey"},
		},
		{
			ID: "sector-recession", Name: "Sector Recession",
			Category: CategoryGlobal, Scope: ScopeUniversal, Impact: ImpactNegative,
			Severity: 0.8, DurationDays: 14,
		},
		{
			ID: "smuggling-ring-exposed", Name: "Smuggling Ring Exposed",
			Category: CategoryMarket, Scope: ScopeLocal, Impact: ImpactNegative,
			Severity: 0.5, DurationDays: 2,
			Commodities:            []economy.CommodityID{"neural-stims", "mil-grade-arms"},
			CanBeTriggeredByPlayer: true, PlayerTriggerChance: 0.35,
		},
		{
			ID: "trade-expo", Name: "Interstation Trade Expo",
			Category: CategoryMarket, Scope: ScopeRegional, Impact: ImpactPositive,
			Severity: 0.5, DurationDays: 4,
			Commodities:            []economy.CommodityID{"ship-components", "quantum-processors"},
			CanBeTriggeredByPlayer: true, PlayerTriggerChance: 0.6,
		},
	} {
		m.RegisterTemplate(tpl)
	}
}
