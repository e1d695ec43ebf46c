// Package faction implements the faction economy manager: per-faction
// economic simulation, trade policy, player reputation, and the diplomacy
// layer (agreements, sanctions, war and alliance).
package faction

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/simclock"
)

// Config holds the faction manager's tunables.
type Config struct {
	MaxReputationDiscount float64
	ReputationDecayRate   float64 // points per real second, toward zero
	TradeAgreementBonus   float64
	BannedPriceMultiplier float64
	LicenseStanding       float64 // standing threshold for the trade license
	MilitaryTechStanding  float64
}

// DefaultConfig returns the standard faction tunables.
func DefaultConfig() Config {
	return Config{
		MaxReputationDiscount: 0.25,
		ReputationDecayRate:   0.01,
		TradeAgreementBonus:   0.1,
		BannedPriceMultiplier: 10,
		LicenseStanding:       70,
		MilitaryTechStanding:  80,
	}
}

// ImpactProvider answers how active sector events scale a faction's
// income. A nil provider reads neutral.
type ImpactProvider interface {
	FactionImpactFactor(factionID string) float64
}

// Manager owns all faction economic state. The simulation loop mutates it
// while API handlers read it, so state sits behind the lock; concurrent
// readers go through the Snapshot accessors.
type Manager struct {
	clock   *simclock.Clock
	rng     *entropy.Source
	cfg     Config
	impacts ImpactProvider

	mu sync.RWMutex

	factions   map[string]*EconomicData
	order      []string // creation order for deterministic iteration
	reputation map[repKey]*Reputation

	// Symmetric relationship scores, -100..100, keyed by sorted pair.
	relations map[[2]string]float64

	agreements     []*TradeAgreement
	sanctions      []*Sanctions
	pastAgreements []*TradeAgreement
	pastSanctions  []*Sanctions

	decayAccum float64 // real seconds toward the next decay application
	lastEcon   float64 // game hour of the last economic step

	OnPolicyChanged     func(factionID string, policy PolicyType)
	OnReputationChanged func(rep Reputation, reason string)
}

// NewManager wires a faction manager with no factions registered.
func NewManager(clock *simclock.Clock, rng *entropy.Source, cfg Config) *Manager {
	return &Manager{
		clock:      clock,
		rng:        rng,
		cfg:        cfg,
		factions:   make(map[string]*EconomicData),
		reputation: make(map[repKey]*Reputation),
		relations:  make(map[[2]string]float64),
	}
}

// CreateFaction registers a new faction under a policy. The policy row
// sets its price modifier and tariff defaults.
func (m *Manager) CreateFaction(id, name string, policy PolicyType) *EconomicData {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factions[id]; ok {
		return f
	}
	row := policyTable[policy]
	f := &EconomicData{
		ID:                id,
		Name:              name,
		Policy:            policy,
		Restriction:       RestrictionTariffs,
		EconomicStrength:  50,
		TradeInfluence:    50,
		MilitaryStrength:  50,
		Production:        make(map[economy.CommodityID]float64),
		Consumption:       make(map[economy.CommodityID]float64),
		BasePriceModifier: row.modifier,
		TariffRate:        row.tariff,
		TradeBans:         make(map[economy.CommodityID]bool),
		Allied:            make(map[string]bool),
		Hostile:           make(map[string]bool),
		Treasury:          100_000,
		MonthlyIncome:     12_000,
		MonthlyExpenses:   10_000,
	}
	m.factions[id] = f
	m.order = append(m.order, id)
	slog.Info("faction created", "faction", id, "policy", PolicyName(policy))
	return f
}

// SeedDefaultFactions registers the standard faction set.
func (m *Manager) SeedDefaultFactions() {
	m.CreateFaction("concord", "Concord Trade Union", PolicyTradeFocus)
	m.CreateFaction("outer-rim-combine", "Outer Rim Combine", PolicyMercantile)
	m.CreateFaction("helios-syndicate", "Helios Syndicate", PolicyFreeMarket)
	m.CreateFaction("voss-hegemony", "Voss Hegemony", PolicyWarEconomy)
	m.CreateFaction("meridian-collective", "Meridian Collective", PolicyPlannedEconomy)
}

// Get returns the live faction record by id. The pointer is shared with
// the simulation; concurrent readers use Snapshot instead.
func (m *Manager) Get(id string) (*EconomicData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factions[id]
	return f, ok
}

// IDs returns all faction ids in creation order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// All returns every live faction record in creation order. Like Get, the
// pointers are shared with the simulation.
func (m *Manager) All() []*EconomicData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*EconomicData, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.factions[id])
	}
	return out
}

// Snapshot returns a detached copy of one faction, safe to marshal or
// persist while the simulation keeps running.
func (m *Manager) Snapshot(id string) (EconomicData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factions[id]
	if !ok {
		return EconomicData{}, false
	}
	return f.clone(), true
}

// Snapshots returns detached copies of every faction in creation order.
func (m *Manager) Snapshots() []EconomicData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EconomicData, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.factions[id].clone())
	}
	return out
}

// SetImpactProvider attaches the event-impact source consulted during
// economic steps.
func (m *Manager) SetImpactProvider(p ImpactProvider) {
	m.mu.Lock()
	m.impacts = p
	m.mu.Unlock()
}

// SetFactionPolicy assigns a policy. Assignment deterministically resets
// the price modifier and tariff to the policy row; repeating it is
// idempotent.
func (m *Manager) SetFactionPolicy(factionID string, policy PolicyType) bool {
	m.mu.Lock()
	f, ok := m.factions[factionID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	row := policyTable[policy]
	f.Policy = policy
	f.BasePriceModifier = row.modifier
	f.TariffRate = row.tariff
	m.mu.Unlock()

	slog.Info("faction policy set", "faction", factionID, "policy", PolicyName(policy))
	if m.OnPolicyChanged != nil {
		m.OnPolicyChanged(factionID, policy)
	}
	return true
}

// BanCommodity blocks a commodity from normal trade with a faction.
func (m *Manager) BanCommodity(factionID string, commodityID economy.CommodityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factions[factionID]; ok {
		f.TradeBans[commodityID] = true
	}
}

// UnbanCommodity lifts a trade ban.
func (m *Manager) UnbanCommodity(factionID string, commodityID economy.CommodityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factions[factionID]; ok {
		delete(f.TradeBans, commodityID)
	}
}

// IsCommodityBanned reports whether a faction bans a commodity.
func (m *Manager) IsCommodityBanned(factionID string, commodityID economy.CommodityID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factions[factionID]
	return ok && f.TradeBans[commodityID]
}

// CalculateTradePriceModifier composes the full per-trade multiplier, in
// order: policy base, reputation discount (direction-dependent), tariff
// (buying only), first active agreement, first active sanction, ban
// penalty. Unknown factions read neutral.
func (m *Manager) CalculateTradePriceModifier(factionID, playerID string, commodityID economy.CommodityID, isBuying bool) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factions[factionID]
	if !ok {
		return 1.0
	}
	modifier := f.BasePriceModifier

	if rep, ok := m.reputation[repKey{factionID, playerID}]; ok {
		if isBuying {
			modifier *= 1 - rep.TradeDiscount
		} else {
			modifier *= 1 + rep.TradeDiscount
		}
	}

	if isBuying {
		modifier *= 1 + f.TariffRate
	}

	for _, a := range m.agreements {
		if a.Active && a.Involves(factionID) {
			modifier *= 1 - a.Bonus
			break // first match only, not cumulative
		}
	}
	for _, s := range m.sanctions {
		if s.Active && s.Target == factionID {
			modifier *= 1 + s.Penalty
			break
		}
	}

	if f.TradeBans[commodityID] {
		modifier *= m.cfg.BannedPriceMultiplier
	}
	return modifier
}

// Tick advances faction state by dt real seconds: reputation decay on a
// one-second accumulator, economic simulation each game hour, and
// agreement/sanction expiry.
func (m *Manager) Tick(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.decayAccum += dt
	if m.decayAccum >= 1.0 {
		m.applyReputationDecay(m.decayAccum)
		m.decayAccum = 0
	}

	now := m.clock.Now()
	if now-m.lastEcon >= 1.0 {
		elapsed := now - m.lastEcon
		m.lastEcon = now
		m.stepEconomies(elapsed)
	}
	m.expireDiplomacy(now)
}

// stepEconomies runs the per-faction treasury and production simulation
// for elapsed game hours.
func (m *Manager) stepEconomies(hours float64) {
	const hoursPerMonth = 30 * 24
	for _, id := range m.order {
		f := m.factions[id]

		f.MonthlyIncome = f.EconomicStrength*150 + f.TradeInfluence*100 +
			float64(len(f.ControlledStations))*500
		if m.impacts != nil {
			f.MonthlyIncome *= m.impacts.FactionImpactFactor(id)
		}
		f.MonthlyExpenses = f.MilitaryStrength*120 + f.EconomicStrength*60

		f.Treasury += (f.MonthlyIncome - f.MonthlyExpenses) * hours / hoursPerMonth
		if f.Treasury < 0 {
			f.Treasury = 0
			// Insolvency erodes standing in the sector.
			f.EconomicStrength = clampStat(f.EconomicStrength - 0.5)
		}

		// Production and consumption drift a little each step.
		for c := range f.Production {
			f.Production[c] = clampLevel(f.Production[c] * m.rng.Range(0.98, 1.02))
		}
		for c := range f.Consumption {
			f.Consumption[c] = clampLevel(f.Consumption[c] * m.rng.Range(0.98, 1.02))
		}
	}
}

// SetProduction records a faction's production level for a commodity.
func (m *Manager) SetProduction(factionID string, commodityID economy.CommodityID, level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factions[factionID]; ok {
		f.Production[commodityID] = clampLevel(level)
	}
}

// SetConsumption records a faction's consumption level for a commodity.
func (m *Manager) SetConsumption(factionID string, commodityID economy.CommodityID, level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factions[factionID]; ok {
		f.Consumption[commodityID] = clampLevel(level)
	}
}

// sortedPair normalizes a faction pair for the relations map.
func sortedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// RelationshipScore returns the symmetric relationship between two
// factions, -100..100. Unknown pairs read 0.
func (m *Manager) RelationshipScore(a, b string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.relations[sortedPair(a, b)]
}

// setRelation sets a symmetric relationship score, clamped to [-100, 100].
func (m *Manager) setRelation(a, b string, value float64) {
	if value > 100 {
		value = 100
	}
	if value < -100 {
		value = -100
	}
	m.relations[sortedPair(a, b)] = value
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampLevel(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// sortedKeys is a small helper for deterministic report iteration.
func sortedKeys(banned map[economy.CommodityID]bool) []economy.CommodityID {
	out := make([]economy.CommodityID, 0, len(banned))
	for c := range banned {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
