package market

import (
	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// RecordPriceHistory appends a price point for a (station, commodity) and
// refreshes the daily-volume tracker with the latest recorded volume. The
// series is capped at MaxHistoryEntries, oldest evicted.
func (m *Manager) RecordPriceHistory(commodityID economy.CommodityID, stationID sector.StationID, price, demand, supply, volume float64) {
	m.mu.Lock()
	m.recordPrice(commodityID, stationID, price, demand, supply, volume)
	m.mu.Unlock()
}

func (m *Manager) recordPrice(commodityID economy.CommodityID, stationID sector.StationID, price, demand, supply, volume float64) {
	key := histKey{stationID, commodityID}
	entries := append(m.history[key], PriceHistoryEntry{
		Hour:        m.clock.Now(),
		Price:       price,
		Demand:      demand,
		Supply:      supply,
		TradeVolume: volume,
	})
	if over := len(entries) - m.cfg.MaxHistoryEntries; over > 0 {
		entries = entries[over:]
	}
	m.history[key] = entries

	// Latest write wins; this is a snapshot, not a running average.
	m.dailyVolume[key] = volume
}

// samplePrices records the current dynamic price of every commodity at
// every station. The recorded series feeds trend, volatility, and the
// archive. Caller holds the lock.
func (m *Manager) samplePrices() {
	for _, st := range m.stations {
		for _, c := range m.catalog.All() {
			factors := m.supplyDemandFactors(c.ID, st, "", "")
			price := m.CalculateDynamicPrice(c, factors, 1.0)
			volume := m.dailyVolume[histKey{st, c.ID}]
			m.recordPrice(c.ID, st, price, factors.TotalDemand(), factors.TotalSupply(), volume)

			if m.OnPriceSampled != nil {
				key := histKey{st, c.ID}
				m.OnPriceSampled(st, c.ID, m.history[key][len(m.history[key])-1])
			}
		}
	}
}

// GetPriceHistory returns entries recorded within the trailing window.
func (m *Manager) GetPriceHistory(commodityID economy.CommodityID, stationID sector.StationID, hoursBack float64) []PriceHistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.historySince(commodityID, stationID, hoursBack)
}

func (m *Manager) historySince(commodityID economy.CommodityID, stationID sector.StationID, hoursBack float64) []PriceHistoryEntry {
	cutoff := m.clock.Now() - hoursBack
	var out []PriceHistoryEntry
	for _, e := range m.history[histKey{stationID, commodityID}] {
		if e.Hour >= cutoff {
			out = append(out, e)
		}
	}
	return out
}

// pruneHistory drops entries older than the age cap, independent of the
// count cap. Runs on the cleanup interval; caller holds the lock.
func (m *Manager) pruneHistory(now float64) {
	cutoff := now - m.cfg.MaxHistoryAgeHours
	for key, entries := range m.history {
		idx := 0
		for idx < len(entries) && entries[idx].Hour < cutoff {
			idx++
		}
		if idx == 0 {
			continue
		}
		if idx == len(entries) {
			delete(m.history, key)
			continue
		}
		m.history[key] = entries[idx:]
	}
}

// HistorySize returns the stored entry count for a series. Used by reports
// and tests.
func (m *Manager) HistorySize(commodityID economy.CommodityID, stationID sector.StationID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history[histKey{stationID, commodityID}])
}
