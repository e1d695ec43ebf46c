package events

import (
	"fmt"

	"github.com/voidworks/tradewinds/internal/economy"
)

// setupEffects computes an event's multiplier maps once, at trigger time,
// from its category, impact direction, and severity. The maps are never
// re-derived afterwards.
func (m *Manager) setupEffects(ev *EventData, commodities []economy.CommodityID) {
	sign := impactSign(ev.Impact)
	if sign == 0 {
		ev.Description = fmt.Sprintf("%s event %q with no economic effect", CategoryName(ev.Category), ev.Name)
		return
	}
	s := ev.Severity

	switch ev.Category {
	case CategoryMarket, CategoryPlayerTriggered, CategoryRandom:
		// Direct commodity shock: positive events cheapen and flood the
		// market, negative ones choke it.
		ev.CommodityPriceMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		ev.CommodityDemandMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		ev.CommoditySupplyMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		for _, c := range commodities {
			ev.CommodityPriceMultipliers[c] = 1 - sign*0.3*s
			ev.CommodityDemandMultipliers[c] = 1 + sign*0.2*s
			ev.CommoditySupplyMultipliers[c] = 1 + sign*0.4*s
		}
	case CategoryFaction:
		ev.FactionImpactMultipliers = map[string]float64{}
		if ev.TargetFaction != "" {
			ev.FactionImpactMultipliers[ev.TargetFaction] = 1 + sign*0.2*s
		}
		if ev.TriggeringFaction != "" && ev.TriggeringFaction != ev.TargetFaction {
			// The instigator catches a milder version of the same swing.
			ev.FactionImpactMultipliers[ev.TriggeringFaction] = 1 + sign*0.05*s
		}
	case CategoryGlobal:
		// One unscoped modifier against every market.
		ev.CommodityPriceMultipliers = map[economy.CommodityID]float64{"": 1 - sign*0.15*s}
		ev.CommodityDemandMultipliers = map[economy.CommodityID]float64{"": 1 + sign*0.1*s}
		ev.CommoditySupplyMultipliers = map[economy.CommodityID]float64{"": 1 + sign*0.2*s}
	case CategorySeasonal:
		ev.CommodityPriceMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		ev.CommodityDemandMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		ev.CommoditySupplyMultipliers = make(map[economy.CommodityID]float64, len(commodities))
		for _, c := range commodities {
			ev.CommodityPriceMultipliers[c] = 1 - sign*0.1*s
			ev.CommodityDemandMultipliers[c] = 1 + sign*0.25*s
			ev.CommoditySupplyMultipliers[c] = 1.0
		}
	}

	ev.Description = fmt.Sprintf("%s %s event %q (severity %.2f)",
		ImpactName(ev.Impact), CategoryName(ev.Category), ev.Name, s)
}

// impactSign maps impact type to an effect direction. Mixed events lean
// negative on price but positive on demand, which the +/- composition
// above produces with a negative sign.
func impactSign(i ImpactType) float64 {
	switch i {
	case ImpactPositive:
		return 1
	case ImpactNegative:
		return -1
	case ImpactMixed:
		return -0.5
	default:
		return 0
	}
}
