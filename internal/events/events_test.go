package events

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/market"
	"github.com/voidworks/tradewinds/internal/simclock"
)

func newTestManager(seed int64) (*Manager, *simclock.Clock, *market.ModifierRegistry) {
	clock := simclock.New(60)
	registry := market.NewModifierRegistry()
	m := NewManager(clock, entropy.New(seed), registry, DefaultConfig())
	return m, clock, registry
}

func TestTriggerEventEffectSetup(t *testing.T) {
	m, _, _ := newTestManager(1)

	ev := m.TriggerEvent("Ore Rush", CategoryMarket, ScopeRegional, ImpactPositive,
		0.5, 3, []economy.CommodityID{"iron-ore"}, "", "")
	if ev.Empty() {
		t.Fatal("trigger rejected with empty active set")
	}
	if got := ev.CommodityPriceMultipliers["iron-ore"]; math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("price multiplier = %v, want 0.85", got)
	}
	if got := ev.CommodityDemandMultipliers["iron-ore"]; math.Abs(got-1.1) > 1e-9 {
		t.Fatalf("demand multiplier = %v, want 1.1", got)
	}
	if got := ev.CommoditySupplyMultipliers["iron-ore"]; math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("supply multiplier = %v, want 1.2", got)
	}
	if ev.EndHour != ev.StartHour+3*24 {
		t.Fatalf("end hour = %v, want start+72", ev.EndHour)
	}
}

func TestNeutralImpactHasNoEffect(t *testing.T) {
	m, _, reg := newTestManager(2)

	m.TriggerEvent("Census", CategoryMarket, ScopeLocal, ImpactNeutral,
		0.9, 1, []economy.CommodityID{"iron-ore"}, "", "")
	if got := reg.PriceFactor("iron-ore", ""); got != 1.0 {
		t.Fatalf("neutral event moved prices: factor %v", got)
	}
}

func TestEventModifiersReachRegistry(t *testing.T) {
	m, clock, reg := newTestManager(3)

	ev := m.TriggerEvent("Fuel Crisis", CategoryMarket, ScopeGlobal, ImpactNegative,
		1.0, 2, []economy.CommodityID{"hydrogen-fuel"}, "", "")

	want := 1.3 // negative sign: price 1 + 0.3*s
	if got := reg.PriceFactor("hydrogen-fuel", "anywhere"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("registry price factor = %v, want %v", got, want)
	}

	clock.AdvanceHours(49)
	m.Tick(0)
	if got := reg.PriceFactor("hydrogen-fuel", "anywhere"); got != 1.0 {
		t.Fatalf("factor after expiry = %v, want 1.0", got)
	}
	if m.IsActive(ev.ID) {
		t.Fatal("event still active past its end hour")
	}
}

func TestGlobalEventAffectsEverything(t *testing.T) {
	m, _, reg := newTestManager(4)

	m.TriggerEvent("Sector Recession", CategoryGlobal, ScopeUniversal, ImpactNegative,
		1.0, 14, nil, "", "")
	a := reg.PriceFactor("iron-ore", "tycho-deep")
	b := reg.PriceFactor("gem-crystals", "meridian-gate")
	if a != b || math.Abs(a-1.15) > 1e-9 {
		t.Fatalf("global factors = %v, %v, want both 1.15", a, b)
	}
}

func TestFactionImpactFactor(t *testing.T) {
	m, _, _ := newTestManager(5)

	m.TriggerEvent("Trade Embargo Fallout", CategoryFaction, ScopeRegional, ImpactNegative,
		0.5, 3, nil, "voss-hegemony", "concord")

	if got := m.FactionImpactFactor("concord"); math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("target impact = %v, want 0.9", got)
	}
	if got := m.FactionImpactFactor("voss-hegemony"); math.Abs(got-0.975) > 1e-9 {
		t.Fatalf("instigator impact = %v, want 0.975", got)
	}
	if got := m.FactionImpactFactor("helios-syndicate"); got != 1.0 {
		t.Fatalf("bystander impact = %v, want 1.0", got)
	}
}

func TestCapacityRejection(t *testing.T) {
	m, _, _ := newTestManager(6)

	for i := 0; i < m.cfg.MaxActiveEvents; i++ {
		ev := m.TriggerEvent("Filler", CategoryMarket, ScopeLocal, ImpactPositive,
			0.5, 10, []economy.CommodityID{"iron-ore"}, "", "")
		if ev.Empty() {
			t.Fatalf("trigger %d rejected below capacity", i)
		}
	}
	ev := m.TriggerEvent("Overflow", CategoryMarket, ScopeLocal, ImpactPositive,
		0.5, 10, []economy.CommodityID{"iron-ore"}, "", "")
	if !ev.Empty() {
		t.Fatal("trigger at capacity should return the empty event")
	}
}

func TestHistoryBounded(t *testing.T) {
	m, clock, _ := newTestManager(7)
	m.cfg.MaxHistoryEntries = 5

	for i := 0; i < 8; i++ {
		m.TriggerEvent("Short", CategoryMarket, ScopeLocal, ImpactPositive,
			0.5, 0.01, []economy.CommodityID{"iron-ore"}, "", "")
		clock.AdvanceHours(1)
		m.Tick(0)
	}
	if got := len(m.History()); got != 5 {
		t.Fatalf("history size = %d, want 5", got)
	}
}

func TestPlayerTriggerEvent(t *testing.T) {
	m, _, _ := newTestManager(8)
	m.SeedDefaultTemplates()

	if _, ok := m.PlayerTriggerEvent("no-such-template", "ace"); ok {
		t.Fatal("unknown template triggered")
	}
	if _, ok := m.PlayerTriggerEvent("ore-rush", "ace"); ok {
		t.Fatal("non-player-triggerable template triggered")
	}

	// trade-expo has a 60% trigger chance; with enough attempts both
	// outcomes appear.
	succeeded, failed := 0, 0
	for i := 0; i < 50; i++ {
		ev, ok := m.PlayerTriggerEvent("trade-expo", "ace")
		if ok {
			succeeded++
			if ev.TriggeringPlayer != "ace" {
				t.Fatalf("triggering player = %q, want ace", ev.TriggeringPlayer)
			}
			m.EndEvent(ev.ID)
		} else {
			failed++
		}
	}
	if succeeded == 0 || failed == 0 {
		t.Fatalf("trigger outcomes = %d success / %d fail, want both nonzero", succeeded, failed)
	}
}

func TestSequentialChainAutoTerminates(t *testing.T) {
	m, clock, _ := newTestManager(9)

	var endedChains []string
	m.OnChainEnded = func(c Chain) { endedChains = append(endedChains, c.Name) }

	tpl := Template{
		Name: "Skirmish", Category: CategoryMarket, Scope: ScopeLocal,
		Impact: ImpactNegative, Severity: 0.5, DurationDays: 0.25, // 6 hours
		Commodities: []economy.CommodityID{"iron-ore"},
	}
	c := m.StartEventChain("Border War Arc", true, 2, []Template{tpl, tpl, tpl})
	if c == nil {
		t.Fatal("chain not started")
	}

	// First pass fires exactly one event.
	m.Tick(0)
	if got := len(m.ActiveEvents()); got != 1 {
		t.Fatalf("events after first pass = %d, want 1", got)
	}

	// Before the delay elapses, nothing more fires.
	clock.AdvanceHours(1)
	m.Tick(0)
	if got := len(m.ActiveEvents()); got != 1 {
		t.Fatalf("chain fired early: %d events", got)
	}

	// Walk the chain to completion: every 2h a new event, each lasting 6h.
	for i := 0; i < 20; i++ {
		clock.AdvanceHours(2)
		m.Tick(0)
	}
	if got := len(m.ActiveEvents()); got != 0 {
		t.Fatalf("events still active after run-out = %d", got)
	}
	if len(m.ActiveChains()) != 0 {
		t.Fatal("chain still running after all events expired")
	}
	if len(endedChains) != 1 || endedChains[0] != "Border War Arc" {
		t.Fatalf("chain-ended notifications = %v", endedChains)
	}
}

func TestParallelChainFiresAllAtOnce(t *testing.T) {
	m, _, _ := newTestManager(10)

	tpl := Template{
		Name: "Boom", Category: CategoryMarket, Scope: ScopeLocal,
		Impact: ImpactPositive, Severity: 0.5, DurationDays: 1,
		Commodities: []economy.CommodityID{"iron-ore"},
	}
	m.StartEventChain("Gold Rush", false, 0, []Template{tpl, tpl, tpl})
	m.Tick(0)
	if got := len(m.ActiveEvents()); got != 3 {
		t.Fatalf("parallel chain fired %d events, want 3", got)
	}
}

func TestEndEventChainConcludesItsEvents(t *testing.T) {
	m, _, _ := newTestManager(11)

	tpl := Template{
		Name: "Strike", Category: CategoryMarket, Scope: ScopeLocal,
		Impact: ImpactNegative, Severity: 0.5, DurationDays: 10,
		Commodities: []economy.CommodityID{"iron-ore"},
	}
	c := m.StartEventChain("Labor Unrest", false, 0, []Template{tpl, tpl})
	m.Tick(0)
	if got := len(m.ActiveEvents()); got != 2 {
		t.Fatalf("active events = %d, want 2", got)
	}
	if !m.EndEventChain(c.ID) {
		t.Fatal("EndEventChain failed")
	}
	if got := len(m.ActiveEvents()); got != 0 {
		t.Fatalf("events alive after chain end = %d, want 0", got)
	}
	if m.EndEventChain(c.ID) {
		t.Fatal("EndEventChain succeeded twice")
	}
}

func TestReportsRender(t *testing.T) {
	m, clock, _ := newTestManager(12)
	m.TriggerEvent("Ore Rush", CategoryMarket, ScopeRegional, ImpactPositive,
		0.5, 1, []economy.CommodityID{"iron-ore"}, "", "")

	report := m.GenerateEventReport()
	for _, want := range []string{"Ore Rush", "Active events: 1"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}

	clock.AdvanceHours(25)
	m.Tick(0)
	history := m.ExportEventHistory()
	if !strings.Contains(history, "Ore Rush") {
		t.Fatalf("history export missing concluded event:\n%s", history)
	}
}

func TestConcurrentTickAndReads(t *testing.T) {
	m, clock, _ := newTestManager(13)
	m.SeedDefaultTemplates()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			clock.AdvanceHours(1)
			m.Tick(0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.ActiveEvents()
			m.FactionImpactFactor("concord")
			m.GenerateEventReport()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if tpl, ok := m.GetTemplate("ore-rush"); ok {
				m.TriggerFromTemplate(tpl, "")
			}
			m.History()
		}
	}()
	wg.Wait()
}
