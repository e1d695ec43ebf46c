package faction

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// GetFactionEconomicReport renders a text summary of one faction's
// economic state. Unknown factions return an empty string.
func (m *Manager) GetFactionEconomicReport(factionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factions[factionID]
	if !ok {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Faction Economic Report: %s ===\n", f.Name)
	fmt.Fprintf(&b, "Policy:      %s\n", PolicyName(f.Policy))
	fmt.Fprintf(&b, "Treasury:    %s credits\n", humanize.Commaf(f.Treasury))
	fmt.Fprintf(&b, "Income:      %s / month\n", humanize.Commaf(f.MonthlyIncome))
	fmt.Fprintf(&b, "Expenses:    %s / month\n", humanize.Commaf(f.MonthlyExpenses))
	fmt.Fprintf(&b, "Strength:    economic %.0f, trade %.0f, military %.0f\n",
		f.EconomicStrength, f.TradeInfluence, f.MilitaryStrength)
	fmt.Fprintf(&b, "Price mod:   x%.2f, tariff %.0f%%\n", f.BasePriceModifier, f.TariffRate*100)
	fmt.Fprintf(&b, "Stations:    %d controlled\n", len(f.ControlledStations))

	if banned := sortedKeys(f.TradeBans); len(banned) > 0 {
		fmt.Fprintf(&b, "Trade bans:  ")
		for i, c := range banned {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(c))
		}
		b.WriteString("\n")
	}

	agreements, sanctions := 0, 0
	for _, a := range m.agreements {
		if a.Active && a.Involves(factionID) {
			agreements++
		}
	}
	for _, s := range m.sanctions {
		if s.Active && s.Target == factionID {
			sanctions++
		}
	}
	fmt.Fprintf(&b, "Diplomacy:   %d active agreements, %d sanctions against\n", agreements, sanctions)
	return b.String()
}

// GetPlayerReputationReport renders a player's standing with every known
// faction.
func (m *Manager) GetPlayerReputationReport(playerID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "=== Reputation Report: %s ===\n", playerID)
	for _, id := range m.order {
		rep := m.playerReputation(id, playerID)
		flags := ""
		if rep.HasTradingLicense {
			flags += " [licensed]"
		}
		if rep.CanAccessMilitaryTech {
			flags += " [mil-tech]"
		}
		fmt.Fprintf(&b, "%-24s score %+7.1f  standing %5.1f  discount %4.1f%%%s\n",
			m.factions[id].Name, rep.Score, rep.Standing, rep.TradeDiscount*100, flags)
	}
	return b.String()
}
