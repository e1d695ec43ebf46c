package market

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// GetMarketAnalysis renders a text report for one market: trend, volatility,
// liquidity, and a rule-based recommendation.
func (m *Manager) GetMarketAnalysis(commodityID economy.CommodityID, stationID sector.StationID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trend := m.priceTrend(commodityID, stationID, 24)
	volatility := m.priceVolatility(commodityID, stationID)
	liquidity := m.liquidity(commodityID, stationID)

	name := string(commodityID)
	if def, ok := m.catalog.Get(commodityID); ok {
		name = def.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Market Analysis: %s @ %s ===\n", name, stationID)
	fmt.Fprintf(&b, "24h Trend:  %+.2f%%\n", trend)
	fmt.Fprintf(&b, "Volatility: %.2f%%\n", volatility*100)
	fmt.Fprintf(&b, "Liquidity:  %.2f\n", liquidity)

	if events := m.activeEventsFor(commodityID, stationID); len(events) > 0 {
		fmt.Fprintf(&b, "Active events: %d\n", len(events))
		for _, ev := range events {
			fmt.Fprintf(&b, "  - %s (price x%.2f)\n", ev.Description, ev.PriceMultiplier)
		}
	}
	fmt.Fprintf(&b, "History: %s entries\n",
		humanize.Comma(int64(len(m.history[histKey{stationID, commodityID}]))))
	fmt.Fprintf(&b, "Recommendation: %s\n", recommendation(trend, volatility))
	return b.String()
}

// recommendation applies the fixed advisory rules.
func recommendation(trendPct, volatility float64) string {
	switch {
	case volatility > 0.50:
		return "HIGH RISK"
	case trendPct > 5 && volatility < 0.20:
		return "STRONG BUY"
	case trendPct < -5 && volatility < 0.20:
		return "STRONG SELL"
	default:
		return "HOLD"
	}
}

func (m *Manager) activeEventsFor(c economy.CommodityID, st sector.StationID) []ActiveMarketEvent {
	var out []ActiveMarketEvent
	for _, ev := range m.events {
		mod := Modifier{Commodity: ev.Commodity, Station: ev.Station}
		if mod.matches(c, st) {
			out = append(out, *ev)
		}
	}
	return out
}
