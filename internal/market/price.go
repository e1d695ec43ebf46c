package market

import (
	"math"
	"sort"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// priceFloor keeps every computed price strictly positive.
const priceFloor = 1.0

// minSupply guards the demand/supply ratio against empty markets.
const minSupply = 0.1

// CalculateDynamicPrice computes a commodity's instantaneous price:
// base value x external multiplier x demand/supply ratio x volatility roll.
// Pure apart from the single volatility draw.
func (m *Manager) CalculateDynamicPrice(c economy.Commodity, f SupplyDemandFactors, basePriceMultiplier float64) float64 {
	supply := f.TotalSupply()
	if supply < minSupply {
		supply = minSupply
	}
	lo, hi := economy.VolatilityBand(c.Volatility)
	roll := m.rng.Range(lo, hi)

	price := c.BaseValue * basePriceMultiplier * (f.TotalDemand() / supply) * roll
	if price < priceFloor {
		price = priceFloor
	}
	return price
}

// CalculateSupplyDemandFactors composes the multi-factor supply/demand
// model for one query. Unknown stations, factions, or players yield
// neutral factors.
func (m *Manager) CalculateSupplyDemandFactors(commodityID economy.CommodityID, stationID sector.StationID, factionID, playerID string) SupplyDemandFactors {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.supplyDemandFactors(commodityID, stationID, factionID, playerID)
}

func (m *Manager) supplyDemandFactors(commodityID economy.CommodityID, stationID sector.StationID, factionID, playerID string) SupplyDemandFactors {
	control := m.territory.ControlLevel(factionID, stationID)

	return SupplyDemandFactors{
		BaseDemand:     1.0,
		BaseSupply:     1.0,
		DistanceFactor: m.distance.DistanceFactor(commodityID, stationID),
		// Control 0.5 is neutral; a firm grip raises effective demand
		// (stable trade lanes), a contested station suppresses it.
		FactionControlFactor: 0.9 + control*0.2,
		SeasonalFactor:       m.rng.Range(0.95, 1.05),
		EventFactor:          m.registry.PriceFactor(commodityID, stationID),
		PlayerImpactFactor:   m.playerInfluence(playerID),
		RandomFactor:         m.rng.Range(0.98, 1.02),
	}
}

// CalculateEventFactor returns the composed price multiplier of all active
// events matching the commodity or station.
func (m *Manager) CalculateEventFactor(commodityID economy.CommodityID, stationID sector.StationID) float64 {
	return m.registry.PriceFactor(commodityID, stationID)
}

// CalculatePriceVolatility returns the coefficient of variation (population
// stdev / mean) of the last 24 recorded prices. Returns 0 with fewer than
// two points or a zero mean.
func (m *Manager) CalculatePriceVolatility(commodityID economy.CommodityID, stationID sector.StationID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.priceVolatility(commodityID, stationID)
}

func (m *Manager) priceVolatility(commodityID economy.CommodityID, stationID sector.StationID) float64 {
	entries := m.history[histKey{stationID, commodityID}]
	if len(entries) > 24 {
		entries = entries[len(entries)-24:]
	}
	if len(entries) < 2 {
		return 0
	}

	mean := 0.0
	for _, e := range entries {
		mean += e.Price
	}
	mean /= float64(len(entries))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, e := range entries {
		d := e.Price - mean
		variance += d * d
	}
	variance /= float64(len(entries))

	return math.Sqrt(variance) / mean
}

// CalculatePriceTrend returns the percent change from the oldest to the
// newest price inside the window. Returns 0 with fewer than two points.
func (m *Manager) CalculatePriceTrend(commodityID economy.CommodityID, stationID sector.StationID, hoursBack float64) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.priceTrend(commodityID, stationID, hoursBack)
}

func (m *Manager) priceTrend(commodityID economy.CommodityID, stationID sector.StationID, hoursBack float64) float64 {
	entries := m.historySince(commodityID, stationID, hoursBack)
	if len(entries) < 2 {
		return 0
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Hour < entries[j].Hour })

	first, last := entries[0].Price, entries[len(entries)-1].Price
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
