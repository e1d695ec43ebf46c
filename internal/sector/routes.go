package sector

import (
	"github.com/voidworks/tradewinds/internal/economy"
)

// TradeRoutes tracks where each commodity is produced and converts a
// market's distance from that source into a demand factor. Remote markets
// see elevated demand; commodities with no known source read neutral.
type TradeRoutes struct {
	m       *Map
	span    float64 // normalization distance for the factor curve
	sources map[economy.CommodityID]StationID
}

// NewTradeRoutes builds an empty route table over a sector map. span sets
// the distance at which the demand premium tops out.
func NewTradeRoutes(m *Map, span float64) *TradeRoutes {
	if span <= 0 {
		span = 100
	}
	return &TradeRoutes{
		m:       m,
		span:    span,
		sources: make(map[economy.CommodityID]StationID),
	}
}

// SetSource records the primary production station for a commodity.
func (t *TradeRoutes) SetSource(commodityID economy.CommodityID, stationID StationID) {
	t.sources[commodityID] = stationID
}

// Source returns the recorded production station for a commodity.
func (t *TradeRoutes) Source(commodityID economy.CommodityID) (StationID, bool) {
	st, ok := t.sources[commodityID]
	return st, ok
}

// DistanceFactor returns the demand premium at a station, 1.0 at the
// source rising to 1.5 at span distance or beyond.
func (t *TradeRoutes) DistanceFactor(commodityID economy.CommodityID, stationID StationID) float64 {
	src, ok := t.sources[commodityID]
	if !ok {
		return 1.0
	}
	frac := t.m.Distance(src, stationID) / t.span
	if frac > 1 {
		frac = 1
	}
	return 1.0 + 0.5*frac
}
