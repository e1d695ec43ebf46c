package market

import (
	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// CommodityLookup is the catalog surface the market manager needs. The
// price sampler walks All once per sampling pass.
type CommodityLookup interface {
	Get(id economy.CommodityID) (economy.Commodity, bool)
	All() []economy.Commodity
}

// TerritoryControl reports how firmly a faction holds a station, 0..1.
// Implemented by the sector map; unknown pairs read neutral.
type TerritoryControl interface {
	ControlLevel(factionID string, stationID sector.StationID) float64
}

// DistanceProvider turns production-source distance into a demand factor.
type DistanceProvider interface {
	DistanceFactor(commodityID economy.CommodityID, stationID sector.StationID) float64
}

// NeutralDistance is the default provider: every station reads 1.0.
type NeutralDistance struct{}

func (NeutralDistance) DistanceFactor(economy.CommodityID, sector.StationID) float64 { return 1.0 }

// SupplyDemandFactors decomposes why a commodity's effective demand and
// supply differ from baseline. Computed fresh per query, never stored.
type SupplyDemandFactors struct {
	BaseDemand           float64 `json:"base_demand"`
	BaseSupply           float64 `json:"base_supply"`
	DistanceFactor       float64 `json:"distance_factor"`
	FactionControlFactor float64 `json:"faction_control_factor"`
	SeasonalFactor       float64 `json:"seasonal_factor"`
	EventFactor          float64 `json:"event_factor"`
	PlayerImpactFactor   float64 `json:"player_impact_factor"`
	RandomFactor         float64 `json:"random_factor"`
}

// TotalDemand composes all demand-side factors.
func (f SupplyDemandFactors) TotalDemand() float64 {
	return f.BaseDemand * f.DistanceFactor * f.FactionControlFactor *
		f.SeasonalFactor * f.EventFactor * f.PlayerImpactFactor * f.RandomFactor
}

// TotalSupply composes supply-side factors. Supply deliberately excludes
// distance and the random jitter.
func (f SupplyDemandFactors) TotalSupply() float64 {
	return f.BaseSupply * f.FactionControlFactor * f.EventFactor * f.PlayerImpactFactor
}

// PriceHistoryEntry is one recorded price point for a (station, commodity).
type PriceHistoryEntry struct {
	Hour        float64 `json:"hour"` // game-hour of the record
	Price       float64 `json:"price"`
	Demand      float64 `json:"demand"`
	Supply      float64 `json:"supply"`
	TradeVolume float64 `json:"trade_volume"`
}

// DepthImpact is the ephemeral result of one large order against a market.
type DepthImpact struct {
	Commodity     economy.CommodityID `json:"commodity"`
	Station       sector.StationID    `json:"station"`
	OrderSize     float64             `json:"order_size"`
	PriceImpact   float64             `json:"price_impact"`    // fraction, 0.1 = 10%
	Slippage      float64             `json:"slippage"`        // fraction
	RecoveryHours float64             `json:"recovery_hours"`
	IsBuy         bool                `json:"is_buy"`
	Hour          float64             `json:"hour"`
}

// histKey identifies a (station, commodity) time series.
type histKey struct {
	station   sector.StationID
	commodity economy.CommodityID
}
