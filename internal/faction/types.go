package faction

import (
	"strings"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// PolicyType is a faction's economic doctrine.
type PolicyType uint8

const (
	PolicyFreeMarket PolicyType = iota
	PolicyPlannedEconomy
	PolicyMercantile
	PolicyIsolationist
	PolicyExpansionist
	PolicyWarEconomy
	PolicyTradeFocus
	PolicyIndustrial
)

// PolicyName returns a human-readable policy name.
func PolicyName(p PolicyType) string {
	switch p {
	case PolicyFreeMarket:
		return "Free Market"
	case PolicyPlannedEconomy:
		return "Planned Economy"
	case PolicyMercantile:
		return "Mercantile"
	case PolicyIsolationist:
		return "Isolationist"
	case PolicyExpansionist:
		return "Expansionist"
	case PolicyWarEconomy:
		return "War Economy"
	case PolicyTradeFocus:
		return "Trade Focus"
	case PolicyIndustrial:
		return "Industrial"
	default:
		return "Unknown"
	}
}

// ParsePolicy maps a policy name back to its type. Matching is
// case-insensitive and ignores spaces, so "free-market" and "FreeMarket"
// both resolve.
func ParsePolicy(name string) (PolicyType, bool) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name))
	for _, p := range []PolicyType{
		PolicyFreeMarket, PolicyPlannedEconomy, PolicyMercantile, PolicyIsolationist,
		PolicyExpansionist, PolicyWarEconomy, PolicyTradeFocus, PolicyIndustrial,
	} {
		canonical := strings.ToLower(strings.ReplaceAll(PolicyName(p), " ", ""))
		if key == canonical {
			return p, true
		}
	}
	return 0, false
}

// policyRow holds the fixed defaults a policy assignment resets. One row
// per policy; the values are game balance and must not drift.
type policyRow struct {
	modifier float64
	tariff   float64
}

var policyTable = map[PolicyType]policyRow{
	PolicyFreeMarket:     {modifier: 0.95, tariff: 0.05},
	PolicyPlannedEconomy: {modifier: 1.2, tariff: 0.15},
	PolicyMercantile:     {modifier: 1.1, tariff: 0.2},
	PolicyIsolationist:   {modifier: 1.5, tariff: 0.3},
	PolicyExpansionist:   {modifier: 1.0, tariff: 0.08},
	PolicyWarEconomy:     {modifier: 1.3, tariff: 0.25},
	PolicyTradeFocus:     {modifier: 0.85, tariff: 0.03},
	PolicyIndustrial:     {modifier: 0.9, tariff: 0.1},
}

// TradeRestriction is a faction's stance on foreign trade mechanics.
type TradeRestriction uint8

const (
	RestrictionNone TradeRestriction = iota
	RestrictionTariffs
	RestrictionQuotas
	RestrictionEmbargo
	RestrictionMonopoly
	RestrictionLicensed
)

// EconomicData is one faction's full economic state. Created once and
// mutated by the simulation; never destroyed during a session.
type EconomicData struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Policy      PolicyType       `json:"policy"`
	Restriction TradeRestriction `json:"restriction"`

	EconomicStrength float64 `json:"economic_strength"` // 0..100
	TradeInfluence   float64 `json:"trade_influence"`   // 0..100
	MilitaryStrength float64 `json:"military_strength"` // 0..100

	Production  map[economy.CommodityID]float64 `json:"production"`
	Consumption map[economy.CommodityID]float64 `json:"consumption"`

	BasePriceModifier float64 `json:"base_price_modifier"`
	TariffRate        float64 `json:"tariff_rate"`

	TradeBans          map[economy.CommodityID]bool `json:"trade_bans"`
	ControlledStations []sector.StationID           `json:"controlled_stations"`

	Allied  map[string]bool `json:"allied"`
	Hostile map[string]bool `json:"hostile"`

	Treasury        float64 `json:"treasury"`
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
}

// clone returns a detached copy of the record, with all maps and slices
// duplicated so the copy can be read while the original keeps mutating.
func (f *EconomicData) clone() EconomicData {
	out := *f
	out.Production = copyLevels(f.Production)
	out.Consumption = copyLevels(f.Consumption)
	out.TradeBans = copyBans(f.TradeBans)
	out.Allied = copyFlags(f.Allied)
	out.Hostile = copyFlags(f.Hostile)
	out.ControlledStations = append([]sector.StationID(nil), f.ControlledStations...)
	return out
}

func copyLevels(in map[economy.CommodityID]float64) map[economy.CommodityID]float64 {
	out := make(map[economy.CommodityID]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyBans(in map[economy.CommodityID]bool) map[economy.CommodityID]bool {
	out := make(map[economy.CommodityID]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Reputation is one player's relationship with one faction.
type Reputation struct {
	FactionID string  `json:"faction_id"`
	PlayerID  string  `json:"player_id"`
	Score     float64 `json:"score"`    // -100..100
	Standing  float64 `json:"standing"` // 0..100, derived

	TradeDiscount         float64 `json:"trade_discount"`
	MissionsCompleted     int     `json:"missions_completed"`
	TotalTradeValue       float64 `json:"total_trade_value"`
	HasTradingLicense     bool    `json:"has_trading_license"`
	CanAccessMilitaryTech bool    `json:"can_access_military_tech"`
}

// TradeAgreement is a time-boxed mutual trade bonus between two factions.
type TradeAgreement struct {
	ID            string  `json:"id"`
	FactionA      string  `json:"faction_a"`
	FactionB      string  `json:"faction_b"`
	StartHour     float64 `json:"start_hour"`
	DurationHours float64 `json:"duration_hours"`
	Bonus         float64 `json:"bonus"` // price reduction fraction
	Active        bool    `json:"active"`
}

// Involves reports whether a faction is party to the agreement.
func (a *TradeAgreement) Involves(factionID string) bool {
	return a.FactionA == factionID || a.FactionB == factionID
}

// Sanctions is a time-boxed unilateral trade penalty against a faction.
type Sanctions struct {
	ID            string  `json:"id"`
	Sanctioner    string  `json:"sanctioner"`
	Target        string  `json:"target"`
	StartHour     float64 `json:"start_hour"`
	DurationHours float64 `json:"duration_hours"`
	Penalty       float64 `json:"penalty"` // price increase fraction
	Active        bool    `json:"active"`
}

// repKey identifies one (faction, player) reputation record.
type repKey struct {
	faction string
	player  string
}
