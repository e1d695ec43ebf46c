package market

import (
	"log/slog"
	"math"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// CalculateMarketDepthImpact models the price impact of a single order
// relative to trailing daily volume: square-root impact, slippage at 30% of
// impact, recovery time at 10 hours per unit of impact.
func (m *Manager) CalculateMarketDepthImpact(commodityID economy.CommodityID, orderSize float64, stationID sector.StationID) DepthImpact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.depthImpact(commodityID, orderSize, stationID)
}

func (m *Manager) depthImpact(commodityID economy.CommodityID, orderSize float64, stationID sector.StationID) DepthImpact {
	avgVolume := m.dailyVolume[histKey{stationID, commodityID}]
	if avgVolume <= 0 {
		avgVolume = m.cfg.DefaultDailyVolume
	}

	volumeRatio := orderSize / avgVolume
	impact := math.Sqrt(volumeRatio) * 0.1

	return DepthImpact{
		Commodity:     commodityID,
		Station:       stationID,
		OrderSize:     orderSize,
		PriceImpact:   impact,
		Slippage:      impact * 0.3,
		RecoveryHours: impact * 10,
		Hour:          m.clock.Now(),
	}
}

// ProcessLargeOrder computes and records the depth impact of an order, and
// credits the player's market influence when an id is given: buys push
// influence up, sells push it down, both by the impact fraction. The
// impact is retained even if the trade itself later fails elsewhere; trade
// execution belongs to a collaborator.
func (m *Manager) ProcessLargeOrder(commodityID economy.CommodityID, quantity float64, isBuy bool, stationID sector.StationID, playerID string) DepthImpact {
	m.mu.Lock()

	impact := m.depthImpact(commodityID, quantity, stationID)
	impact.IsBuy = isBuy

	key := histKey{stationID, commodityID}
	window := append(m.impacts[key], impact)
	if over := len(window) - m.cfg.DepthImpactWindow; over > 0 {
		window = window[over:]
	}
	m.impacts[key] = window
	m.largeOrders++

	if playerID != "" {
		delta := impact.PriceImpact
		if !isBuy {
			delta = -delta
		}
		m.recordInfluence(playerID, delta)
	}
	m.mu.Unlock()

	slog.Info("large order processed",
		"commodity", commodityID,
		"station", stationID,
		"quantity", quantity,
		"buy", isBuy,
		"player", playerID,
		"price_impact", impact.PriceImpact,
	)
	if m.OnPriceImpact != nil {
		m.OnPriceImpact(impact)
	}
	return impact
}

// GetMarketLiquidity scores a market by trailing volume, clamped to
// [0.1, 10].
func (m *Manager) GetMarketLiquidity(commodityID economy.CommodityID, stationID sector.StationID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.liquidity(commodityID, stationID)
}

func (m *Manager) liquidity(commodityID economy.CommodityID, stationID sector.StationID) float64 {
	avgVolume := m.dailyVolume[histKey{stationID, commodityID}]
	if avgVolume <= 0 {
		avgVolume = m.cfg.DefaultDailyVolume
	}
	score := avgVolume / 1000
	if score < 0.1 {
		score = 0.1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// RecentImpacts returns the retained impact window for a market.
func (m *Manager) RecentImpacts(commodityID economy.CommodityID, stationID sector.StationID) []DepthImpact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	window := m.impacts[histKey{stationID, commodityID}]
	out := make([]DepthImpact, len(window))
	copy(out, window)
	return out
}

// LargeOrderCount returns the total large orders processed this session.
func (m *Manager) LargeOrderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.largeOrders
}
