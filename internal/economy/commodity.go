// Package economy provides the commodity catalog: static definitions of
// every tradeable good. Definitions are immutable once registered.
package economy

// CommodityID is a stable string key for a tradeable good.
type CommodityID string

// Category groups commodities for policy and report purposes.
type Category uint8

const (
	CategoryRawOre Category = iota
	CategoryRefinedMetal
	CategoryFuel
	CategoryFood
	CategoryMedical
	CategoryTechnology
	CategoryLuxury
	CategoryContraband
)

// CategoryName returns a human-readable category name.
func CategoryName(c Category) string {
	switch c {
	case CategoryRawOre:
		return "Raw Ore"
	case CategoryRefinedMetal:
		return "Refined Metal"
	case CategoryFuel:
		return "Fuel"
	case CategoryFood:
		return "Food"
	case CategoryMedical:
		return "Medical"
	case CategoryTechnology:
		return "Technology"
	case CategoryLuxury:
		return "Luxury"
	case CategoryContraband:
		return "Contraband"
	default:
		return "Unknown"
	}
}

// VolatilityClass bands how wildly a commodity's price can swing.
type VolatilityClass uint8

const (
	VolatilityStable VolatilityClass = iota
	VolatilityModerate
	VolatilityVolatile
	VolatilityExtreme
)

// VolatilityBand returns the uniform multiplier range for a class.
func VolatilityBand(v VolatilityClass) (lo, hi float64) {
	switch v {
	case VolatilityStable:
		return 0.95, 1.05
	case VolatilityModerate:
		return 0.85, 1.15
	case VolatilityVolatile:
		return 0.7, 1.3
	case VolatilityExtreme:
		return 0.5, 1.5
	default:
		return 1.0, 1.0
	}
}

// VolatilityName returns a human-readable volatility class name.
func VolatilityName(v VolatilityClass) string {
	switch v {
	case VolatilityStable:
		return "Stable"
	case VolatilityModerate:
		return "Moderate"
	case VolatilityVolatile:
		return "Volatile"
	case VolatilityExtreme:
		return "Extreme"
	default:
		return "Unknown"
	}
}

// Commodity is the static definition of one tradeable good.
type Commodity struct {
	ID         CommodityID     `json:"id"`
	Name       string          `json:"name"`
	Category   Category        `json:"category"`
	BaseValue  float64         `json:"base_value"` // credits per unit
	Weight     float64         `json:"weight"`     // tons per unit
	Volume     float64         `json:"volume"`     // m3 per unit
	Volatility VolatilityClass `json:"volatility"`
	Illegal    bool            `json:"illegal"`
	Perishable bool            `json:"perishable"`
	DecayRate  float64         `json:"decay_rate"` // fraction lost per day, perishables only
}
