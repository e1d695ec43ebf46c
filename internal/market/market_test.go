package market

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/entropy"
	"github.com/voidworks/tradewinds/internal/sector"
	"github.com/voidworks/tradewinds/internal/simclock"
)

// neutralTerritory reads every station as contested (0.5), which composes
// to a 1.0 control factor.
type neutralTerritory struct{}

func (neutralTerritory) ControlLevel(string, sector.StationID) float64 { return 0.5 }

func newTestManager(seed int64) (*Manager, *simclock.Clock) {
	clock := simclock.New(60)
	m := NewManager(
		economy.SeedDefault(),
		neutralTerritory{},
		nil,
		NewModifierRegistry(),
		clock,
		entropy.New(seed),
		DefaultConfig(),
	)
	return m, clock
}

func TestDynamicPriceFloor(t *testing.T) {
	m, _ := newTestManager(1)
	c, _ := economy.SeedDefault().Get("iron-ore")

	// Crushed demand against flooded supply would price below 1 without
	// the floor.
	factors := SupplyDemandFactors{
		BaseDemand: 0.001, BaseSupply: 100,
		DistanceFactor: 1, FactionControlFactor: 1, SeasonalFactor: 1,
		EventFactor: 1, PlayerImpactFactor: 1, RandomFactor: 1,
	}
	for i := 0; i < 100; i++ {
		if price := m.CalculateDynamicPrice(c, factors, 1); price < 1.0 {
			t.Fatalf("price %v below floor", price)
		}
	}
}

func TestDynamicPriceWithinVolatilityBand(t *testing.T) {
	m, _ := newTestManager(2)
	c := economy.Commodity{ID: "x", BaseValue: 100, Volatility: economy.VolatilityStable}
	neutral := SupplyDemandFactors{
		BaseDemand: 1, BaseSupply: 1,
		DistanceFactor: 1, FactionControlFactor: 1, SeasonalFactor: 1,
		EventFactor: 1, PlayerImpactFactor: 1, RandomFactor: 1,
	}
	for i := 0; i < 200; i++ {
		price := m.CalculateDynamicPrice(c, neutral, 1)
		if price < 95 || price >= 105 {
			t.Fatalf("stable commodity priced %v, want [95, 105)", price)
		}
	}
}

func TestSupplyExcludesDistanceAndRandomness(t *testing.T) {
	f := SupplyDemandFactors{
		BaseDemand: 1, BaseSupply: 2,
		DistanceFactor: 3, FactionControlFactor: 1.1, SeasonalFactor: 1.02,
		EventFactor: 1.25, PlayerImpactFactor: 1, RandomFactor: 1.01,
	}
	wantSupply := 2 * 1.1 * 1.25 * 1.0
	if got := f.TotalSupply(); math.Abs(got-wantSupply) > 1e-12 {
		t.Fatalf("TotalSupply() = %v, want %v", got, wantSupply)
	}
	wantDemand := 1 * 3 * 1.1 * 1.02 * 1.25 * 1.0 * 1.01
	if got := f.TotalDemand(); math.Abs(got-wantDemand) > 1e-12 {
		t.Fatalf("TotalDemand() = %v, want %v", got, wantDemand)
	}
}

func TestSupplyDemandFactorsNeutralForUnknowns(t *testing.T) {
	m, _ := newTestManager(3)
	f := m.CalculateSupplyDemandFactors("no-such-commodity", "no-such-station", "nobody", "")

	if f.BaseDemand != 1 || f.BaseSupply != 1 || f.DistanceFactor != 1 ||
		f.FactionControlFactor != 1 || f.EventFactor != 1 || f.PlayerImpactFactor != 1 {
		t.Fatalf("unknown ids should yield neutral factors, got %+v", f)
	}
	if f.SeasonalFactor < 0.95 || f.SeasonalFactor >= 1.05 {
		t.Fatalf("seasonal factor %v out of [0.95, 1.05)", f.SeasonalFactor)
	}
	if f.RandomFactor < 0.98 || f.RandomFactor >= 1.02 {
		t.Fatalf("random factor %v out of [0.98, 1.02)", f.RandomFactor)
	}
}

func TestHistoryBoundAndRecency(t *testing.T) {
	m, clock := newTestManager(4)

	n := m.cfg.MaxHistoryEntries + 50
	for i := 0; i < n; i++ {
		m.RecordPriceHistory("iron-ore", "tycho-deep", float64(i), 1, 1, 10)
		clock.AdvanceHours(0.1)
	}
	got := m.HistorySize("iron-ore", "tycho-deep")
	if got != m.cfg.MaxHistoryEntries {
		t.Fatalf("history size = %d, want %d", got, m.cfg.MaxHistoryEntries)
	}

	// Survivors must be the most recent records.
	entries := m.GetPriceHistory("iron-ore", "tycho-deep", 1e9)
	if entries[0].Price != float64(n-m.cfg.MaxHistoryEntries) {
		t.Fatalf("oldest surviving price = %v, want %v",
			entries[0].Price, float64(n-m.cfg.MaxHistoryEntries))
	}
	if entries[len(entries)-1].Price != float64(n-1) {
		t.Fatalf("newest price = %v, want %v", entries[len(entries)-1].Price, float64(n-1))
	}
}

func TestHistoryAgePurge(t *testing.T) {
	m, clock := newTestManager(5)

	m.RecordPriceHistory("iron-ore", "tycho-deep", 10, 1, 1, 10)
	clock.AdvanceHours(200) // well past the 168h age cap
	m.RecordPriceHistory("iron-ore", "tycho-deep", 12, 1, 1, 10)
	m.pruneHistory(clock.Now())

	if got := m.HistorySize("iron-ore", "tycho-deep"); got != 1 {
		t.Fatalf("history size after purge = %d, want 1", got)
	}
}

func TestPriceTrend(t *testing.T) {
	m, clock := newTestManager(6)

	m.RecordPriceHistory("iron-ore", "tycho-deep", 100, 1, 1, 10)
	clock.AdvanceHours(1)
	m.RecordPriceHistory("iron-ore", "tycho-deep", 110, 1, 1, 10)
	clock.AdvanceHours(1)
	m.RecordPriceHistory("iron-ore", "tycho-deep", 120, 1, 1, 10)

	trend := m.CalculatePriceTrend("iron-ore", "tycho-deep", 24)
	if math.Abs(trend-20) > 1e-9 {
		t.Fatalf("trend = %v, want 20", trend)
	}
	if got := m.CalculatePriceTrend("iron-ore", "nowhere", 24); got != 0 {
		t.Fatalf("trend with no history = %v, want 0", got)
	}
}

func TestPriceVolatility(t *testing.T) {
	m, clock := newTestManager(7)

	if got := m.CalculatePriceVolatility("iron-ore", "tycho-deep"); got != 0 {
		t.Fatalf("volatility with no history = %v, want 0", got)
	}

	// Constant price: zero volatility.
	for i := 0; i < 5; i++ {
		m.RecordPriceHistory("iron-ore", "tycho-deep", 50, 1, 1, 10)
		clock.AdvanceHours(1)
	}
	if got := m.CalculatePriceVolatility("iron-ore", "tycho-deep"); got != 0 {
		t.Fatalf("volatility of constant prices = %v, want 0", got)
	}

	// Two points 90/110: mean 100, population stdev 10, CV 0.1.
	m.RecordPriceHistory("steel-plate", "tycho-deep", 90, 1, 1, 10)
	clock.AdvanceHours(1)
	m.RecordPriceHistory("steel-plate", "tycho-deep", 110, 1, 1, 10)
	if got := m.CalculatePriceVolatility("steel-plate", "tycho-deep"); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("volatility = %v, want 0.1", got)
	}
}

func TestDepthImpactScenario(t *testing.T) {
	m, _ := newTestManager(8)

	// Untracked market uses default volume 100.
	impact := m.CalculateMarketDepthImpact("iron-ore", 100, "tycho-deep")
	if math.Abs(impact.PriceImpact-0.1) > 1e-9 {
		t.Fatalf("default-volume impact = %v, want 0.1", impact.PriceImpact)
	}

	// Tracked volume 1000, order 1000: impact 10%, slippage 3%, ~1h recovery.
	m.RecordPriceHistory("iron-ore", "tycho-deep", 10, 1, 1, 1000)
	impact = m.CalculateMarketDepthImpact("iron-ore", 1000, "tycho-deep")
	if math.Abs(impact.PriceImpact-0.1) > 1e-9 {
		t.Fatalf("price impact = %v, want 0.1", impact.PriceImpact)
	}
	if math.Abs(impact.Slippage-0.03) > 1e-9 {
		t.Fatalf("slippage = %v, want 0.03", impact.Slippage)
	}
	if math.Abs(impact.RecoveryHours-1.0) > 1e-9 {
		t.Fatalf("recovery = %v hours, want 1.0", impact.RecoveryHours)
	}
}

func TestProcessLargeOrderWindow(t *testing.T) {
	m, _ := newTestManager(9)

	var notified int
	m.OnPriceImpact = func(DepthImpact) { notified++ }

	for i := 0; i < 15; i++ {
		m.ProcessLargeOrder("iron-ore", 500, true, "tycho-deep", "")
	}
	if got := len(m.RecentImpacts("iron-ore", "tycho-deep")); got != m.cfg.DepthImpactWindow {
		t.Fatalf("impact window = %d, want %d", got, m.cfg.DepthImpactWindow)
	}
	if m.LargeOrderCount() != 15 {
		t.Fatalf("order count = %d, want 15", m.LargeOrderCount())
	}
	if notified != 15 {
		t.Fatalf("notifications = %d, want 15", notified)
	}
}

func TestMarketLiquidityClamp(t *testing.T) {
	m, _ := newTestManager(10)

	// Default volume 100 -> 0.1.
	if got := m.GetMarketLiquidity("iron-ore", "tycho-deep"); got != 0.1 {
		t.Fatalf("default liquidity = %v, want 0.1", got)
	}
	m.RecordPriceHistory("iron-ore", "tycho-deep", 10, 1, 1, 50000)
	if got := m.GetMarketLiquidity("iron-ore", "tycho-deep"); got != 10 {
		t.Fatalf("high-volume liquidity = %v, want 10", got)
	}
	m.RecordPriceHistory("iron-ore", "tycho-deep", 10, 1, 1, 5000)
	if got := m.GetMarketLiquidity("iron-ore", "tycho-deep"); got != 5 {
		t.Fatalf("liquidity = %v, want 5", got)
	}
}

func TestSupplyShortageScenario(t *testing.T) {
	m, _ := newTestManager(11)

	ev := m.TriggerMarketEvent(EventSupplyShortage, "iron-ore", "", 0.5, 12)
	if math.Abs(ev.PriceMultiplier-1.25) > 1e-9 {
		t.Fatalf("price multiplier = %v, want 1.25", ev.PriceMultiplier)
	}
	if math.Abs(ev.DemandMultiplier-1.15) > 1e-9 {
		t.Fatalf("demand multiplier = %v, want 1.15", ev.DemandMultiplier)
	}
	if math.Abs(ev.SupplyMultiplier-0.5) > 1e-9 {
		t.Fatalf("supply multiplier = %v, want 0.5", ev.SupplyMultiplier)
	}

	if got := m.CalculateEventFactor("iron-ore", "any-station"); math.Abs(got-1.25) > 1e-9 {
		t.Fatalf("event factor while active = %v, want 1.25", got)
	}
	if !m.EndMarketEvent(ev.ID) {
		t.Fatal("EndMarketEvent failed")
	}
	if got := m.CalculateEventFactor("iron-ore", "any-station"); got != 1.0 {
		t.Fatalf("event factor after end = %v, want 1.0", got)
	}
}

func TestEventLifecycleExpiry(t *testing.T) {
	m, clock := newTestManager(12)

	var ended []string
	m.OnEventEnded = func(ev ActiveMarketEvent) { ended = append(ended, ev.ID) }

	ev := m.TriggerMarketEvent(EventBlockade, "", "tycho-deep", 1.0, 6)
	if len(m.GetActiveMarketEvents()) != 1 {
		t.Fatal("event not in active set after trigger")
	}

	clock.AdvanceHours(5.9)
	m.Tick(0)
	if len(m.GetActiveMarketEvents()) != 1 {
		t.Fatal("event expired early")
	}

	clock.AdvanceHours(0.2)
	m.Tick(0)
	if len(m.GetActiveMarketEvents()) != 0 {
		t.Fatal("event not removed after duration elapsed")
	}
	if len(ended) != 1 || ended[0] != ev.ID {
		t.Fatalf("ended notifications = %v, want [%s]", ended, ev.ID)
	}
}

func TestEventSeverityClamp(t *testing.T) {
	m, _ := newTestManager(13)
	ev := m.TriggerMarketEvent(EventSupplyShortage, "iron-ore", "", 3.0, 1)
	if ev.Severity != m.cfg.MaxEventSeverity {
		t.Fatalf("severity = %v, want clamp to %v", ev.Severity, m.cfg.MaxEventSeverity)
	}
	ev = m.TriggerMarketEvent(EventSupplyShortage, "iron-ore", "", -1, 1)
	if ev.Severity != 0 {
		t.Fatalf("severity = %v, want clamp to 0", ev.Severity)
	}
}

func TestMultipleEventsComposeMultiplicatively(t *testing.T) {
	m, _ := newTestManager(14)

	m.TriggerMarketEvent(EventSupplyShortage, "iron-ore", "", 0.5, 12) // x1.25
	m.TriggerMarketEvent(EventEconomicBoom, "iron-ore", "", 0.5, 12)   // x1.10

	want := 1.25 * 1.10
	if got := m.CalculateEventFactor("iron-ore", ""); math.Abs(got-want) > 1e-9 {
		t.Fatalf("composed factor = %v, want %v", got, want)
	}
}

func TestGenerateRandomMarketEventRespectsToggle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableRandomEvents = false
	m := NewManager(economy.SeedDefault(), neutralTerritory{}, nil,
		NewModifierRegistry(), simclock.New(60), entropy.New(1), cfg)

	for i := 0; i < 100; i++ {
		m.GenerateRandomMarketEvent("tycho-deep")
	}
	if len(m.GetActiveMarketEvents()) != 0 {
		t.Fatal("random events generated while disabled")
	}
}

func TestGenerateRandomMarketEventBounds(t *testing.T) {
	m, _ := newTestManager(15)

	for i := 0; i < 500; i++ {
		m.GenerateRandomMarketEvent("tycho-deep")
	}
	events := m.GetActiveMarketEvents()
	if len(events) == 0 {
		t.Fatal("no random events after 500 rolls at 30% gate")
	}
	for _, ev := range events {
		if ev.Severity < 0.2 || ev.Severity > m.cfg.MaxEventSeverity {
			t.Fatalf("severity %v out of [0.2, %v]", ev.Severity, m.cfg.MaxEventSeverity)
		}
		if ev.DurationHours < 1 || ev.DurationHours >= 48 {
			t.Fatalf("duration %v out of [1, 48)", ev.DurationHours)
		}
		if ev.Type == EventTradeWar || ev.Type == EventBlockade {
			t.Fatalf("%s should only fire through explicit triggers", EventTypeName(ev.Type))
		}
	}
}

func TestTickSamplesPricesIntoHistory(t *testing.T) {
	m, clock := newTestManager(18)
	m.SetStations([]sector.StationID{"tycho-deep", "vesta-yards"})

	var sampled int
	m.OnPriceSampled = func(sector.StationID, economy.CommodityID, PriceHistoryEntry) { sampled++ }

	// Before the interval elapses nothing is recorded.
	m.Tick(0)
	if got := m.HistorySize("iron-ore", "tycho-deep"); got != 0 {
		t.Fatalf("history before interval = %d, want 0", got)
	}

	clock.AdvanceHours(1)
	m.Tick(0)

	catalogSize := economy.SeedDefault().Len()
	for _, st := range []sector.StationID{"tycho-deep", "vesta-yards"} {
		if got := m.HistorySize("iron-ore", st); got != 1 {
			t.Fatalf("history at %s = %d, want 1", st, got)
		}
	}
	if want := 2 * catalogSize; sampled != want {
		t.Fatalf("sampled notifications = %d, want %d", sampled, want)
	}

	entries := m.GetPriceHistory("iron-ore", "tycho-deep", 24)
	if len(entries) != 1 || entries[0].Price < 1.0 {
		t.Fatalf("sampled entry = %+v, want one priced at or above the floor", entries)
	}

	// Within the same interval no second sample lands.
	clock.AdvanceHours(0.5)
	m.Tick(0)
	if got := m.HistorySize("iron-ore", "tycho-deep"); got != 1 {
		t.Fatalf("history after half interval = %d, want 1", got)
	}
}

func TestLargeOrderFeedsPlayerInfluence(t *testing.T) {
	m, _ := newTestManager(19)

	// Default volume 100, order 100: impact 0.1.
	m.ProcessLargeOrder("iron-ore", 100, true, "tycho-deep", "ace")
	if got := m.GetPlayerMarketInfluence("ace"); math.Abs(got-1.1) > 1e-9 {
		t.Fatalf("influence after buy = %v, want 1.1", got)
	}

	// Price factors consult the influence for the trading player only.
	f := m.CalculateSupplyDemandFactors("iron-ore", "tycho-deep", "", "ace")
	if math.Abs(f.PlayerImpactFactor-1.1) > 1e-9 {
		t.Fatalf("player impact factor = %v, want 1.1", f.PlayerImpactFactor)
	}
	f = m.CalculateSupplyDemandFactors("iron-ore", "tycho-deep", "", "")
	if f.PlayerImpactFactor != 1.0 {
		t.Fatalf("anonymous impact factor = %v, want 1.0", f.PlayerImpactFactor)
	}

	// An equal sell walks the influence back to neutral.
	m.ProcessLargeOrder("iron-ore", 100, false, "tycho-deep", "ace")
	if got := m.GetPlayerMarketInfluence("ace"); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("influence after offsetting sell = %v, want 1.0", got)
	}

	// Anonymous orders leave influence untouched.
	m.ProcessLargeOrder("iron-ore", 100, true, "tycho-deep", "")
	if got := m.GetPlayerMarketInfluence(""); got != 1.0 {
		t.Fatalf("anonymous influence = %v, want 1.0", got)
	}
}

func TestConcurrentTickAndReads(t *testing.T) {
	m, clock := newTestManager(20)
	m.SetStations([]sector.StationID{"tycho-deep"})

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			clock.AdvanceHours(0.5)
			m.Tick(0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.GetPriceHistory("iron-ore", "tycho-deep", 24)
			m.GetActiveMarketEvents()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.CalculateSupplyDemandFactors("iron-ore", "tycho-deep", "", "ace")
			m.GetMarketLiquidity("iron-ore", "tycho-deep")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.ProcessLargeOrder("iron-ore", 50, i%2 == 0, "tycho-deep", "ace")
		}
	}()
	wg.Wait()

	if m.LargeOrderCount() != 200 {
		t.Fatalf("order count = %d, want 200", m.LargeOrderCount())
	}
}

func TestPlayerInfluenceDecaysTowardNeutral(t *testing.T) {
	m, _ := newTestManager(16)

	if got := m.GetPlayerMarketInfluence("nobody"); got != 1.0 {
		t.Fatalf("unknown player influence = %v, want 1.0", got)
	}

	m.RecordPlayerInfluence("ace", 0.12)
	if got := m.GetPlayerMarketInfluence("ace"); math.Abs(got-1.12) > 1e-9 {
		t.Fatalf("influence = %v, want 1.12", got)
	}
	for i := 0; i < 10; i++ {
		m.decayInfluence()
	}
	if got := m.GetPlayerMarketInfluence("ace"); got != 1.0 {
		t.Fatalf("influence after decay = %v, want 1.0", got)
	}

	m.RecordPlayerInfluence("whale", 5)
	if got := m.GetPlayerMarketInfluence("whale"); got != 2.0 {
		t.Fatalf("influence = %v, want clamp at 2.0", got)
	}
}

func TestMarketAnalysisRecommendations(t *testing.T) {
	tests := []struct {
		trend, vol float64
		want       string
	}{
		{10, 0.1, "STRONG BUY"},
		{-10, 0.1, "STRONG SELL"},
		{0, 0.6, "HIGH RISK"},
		{10, 0.6, "HIGH RISK"},
		{2, 0.1, "HOLD"},
		{10, 0.3, "HOLD"},
	}
	for _, tc := range tests {
		if got := recommendation(tc.trend, tc.vol); got != tc.want {
			t.Fatalf("recommendation(%v, %v) = %q, want %q", tc.trend, tc.vol, got, tc.want)
		}
	}
}

func TestMarketAnalysisReport(t *testing.T) {
	m, clock := newTestManager(17)
	m.RecordPriceHistory("iron-ore", "tycho-deep", 100, 1, 1, 500)
	clock.AdvanceHours(1)
	m.RecordPriceHistory("iron-ore", "tycho-deep", 101, 1, 1, 500)

	report := m.GetMarketAnalysis("iron-ore", "tycho-deep")
	for _, want := range []string{"Iron Ore", "Trend", "Volatility", "Recommendation"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestModifierRegistryMatching(t *testing.T) {
	r := NewModifierRegistry()
	h1 := r.Register(Modifier{Commodity: "iron-ore", Price: 1.5, Demand: 1.2, Supply: 0.5})
	r.Register(Modifier{Station: "tycho-deep", Price: 2.0})
	r.Register(Modifier{Price: 1.1}) // global

	// Commodity match + global.
	want := 1.5 * 1.1
	if got := r.PriceFactor("iron-ore", "elsewhere"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("price factor = %v, want %v", got, want)
	}
	// Commodity + station + global.
	want = 1.5 * 2.0 * 1.1
	if got := r.PriceFactor("iron-ore", "tycho-deep"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("price factor = %v, want %v", got, want)
	}
	// Demand/supply only consider modifiers that set them.
	if got := r.DemandFactor("iron-ore", "elsewhere"); math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("demand factor = %v, want 1.2", got)
	}
	if got := r.SupplyFactor("iron-ore", "elsewhere"); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("supply factor = %v, want 0.5", got)
	}

	r.Unregister(h1)
	want = 2.0 * 1.1
	if got := r.PriceFactor("iron-ore", "tycho-deep"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("price factor after unregister = %v, want %v", got, want)
	}
}
