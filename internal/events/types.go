package events

import (
	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/market"
)

// Category classifies an economic event by its origin.
type Category uint8

const (
	CategoryMarket Category = iota
	CategoryFaction
	CategoryGlobal
	CategorySeasonal
	CategoryRandom
	CategoryPlayerTriggered
)

// CategoryName returns a human-readable category name.
func CategoryName(c Category) string {
	switch c {
	case CategoryMarket:
		return "Market"
	case CategoryFaction:
		return "Faction"
	case CategoryGlobal:
		return "Global"
	case CategorySeasonal:
		return "Seasonal"
	case CategoryRandom:
		return "Random"
	case CategoryPlayerTriggered:
		return "Player-Triggered"
	default:
		return "Unknown"
	}
}

// Scope is an event's geographic reach.
type Scope uint8

const (
	ScopeLocal Scope = iota
	ScopeRegional
	ScopeGlobal
	ScopeUniversal
)

// ScopeName returns a human-readable scope name.
func ScopeName(s Scope) string {
	switch s {
	case ScopeLocal:
		return "Local"
	case ScopeRegional:
		return "Regional"
	case ScopeGlobal:
		return "Global"
	case ScopeUniversal:
		return "Universal"
	default:
		return "Unknown"
	}
}

// ImpactType is the direction of an event's economic effect.
type ImpactType uint8

const (
	ImpactPositive ImpactType = iota
	ImpactNegative
	ImpactMixed
	ImpactNeutral
)

// ImpactName returns a human-readable impact type name.
func ImpactName(i ImpactType) string {
	switch i {
	case ImpactPositive:
		return "Positive"
	case ImpactNegative:
		return "Negative"
	case ImpactMixed:
		return "Mixed"
	case ImpactNeutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// EventData is one live or recorded day-scale economic event. Multiplier
// maps are computed once at trigger time and never re-derived.
type EventData struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Category     Category   `json:"category"`
	Scope        Scope      `json:"scope"`
	Impact       ImpactType `json:"impact"`
	Severity     float64    `json:"severity"`
	DurationDays float64    `json:"duration_days"`
	StartHour    float64    `json:"start_hour"`
	EndHour      float64    `json:"end_hour"`

	CommodityPriceMultipliers  map[economy.CommodityID]float64 `json:"commodity_price_multipliers,omitempty"`
	CommodityDemandMultipliers map[economy.CommodityID]float64 `json:"commodity_demand_multipliers,omitempty"`
	CommoditySupplyMultipliers map[economy.CommodityID]float64 `json:"commodity_supply_multipliers,omitempty"`
	FactionImpactMultipliers   map[string]float64              `json:"faction_impact_multipliers,omitempty"`

	TriggeringFaction string `json:"triggering_faction,omitempty"`
	TargetFaction     string `json:"target_faction,omitempty"`
	TriggeringPlayer  string `json:"triggering_player,omitempty"`
	Description       string `json:"description"`

	modHandles []market.Handle
}

// Empty reports whether the event is the zero rejection value returned by
// a trigger that hit the active-set cap.
func (e EventData) Empty() bool {
	return e.ID == ""
}

// HistoryEntry is a concluded event with its end-of-life timestamp.
type HistoryEntry struct {
	Event     EventData `json:"event"`
	EndedHour float64   `json:"ended_hour"`
}

// Template is a named event blueprint, optionally player-triggerable.
type Template struct {
	ID           string
	Name         string
	Category     Category
	Scope        Scope
	Impact       ImpactType
	Severity     float64
	DurationDays float64
	Commodities  []economy.CommodityID

	CanBeTriggeredByPlayer bool
	PlayerTriggerChance    float64
}
