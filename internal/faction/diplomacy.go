package faction

import (
	"log/slog"

	"github.com/google/uuid"
)

// FormTradeAgreement creates an active agreement between two factions and
// sets their mutual relationship to 50.
func (m *Manager) FormTradeAgreement(factionA, factionB string, durationHours float64) *TradeAgreement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.formAgreement(factionA, factionB, durationHours)
}

func (m *Manager) formAgreement(factionA, factionB string, durationHours float64) *TradeAgreement {
	if factionA == factionB {
		return nil
	}
	if _, ok := m.factions[factionA]; !ok {
		return nil
	}
	if _, ok := m.factions[factionB]; !ok {
		return nil
	}

	a := &TradeAgreement{
		ID:            uuid.NewString(),
		FactionA:      factionA,
		FactionB:      factionB,
		StartHour:     m.clock.Now(),
		DurationHours: durationHours,
		Bonus:         m.cfg.TradeAgreementBonus,
		Active:        true,
	}
	m.agreements = append(m.agreements, a)
	m.setRelation(factionA, factionB, 50)

	slog.Info("trade agreement formed",
		"faction_a", factionA, "faction_b", factionB, "duration_hours", durationHours)
	return a
}

// ImposeSanctions creates active sanctions against a target faction and
// drops the target->sanctioner relationship to -50.
func (m *Manager) ImposeSanctions(sanctioner, target string, durationHours, penalty float64) *Sanctions {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sanctioner == target {
		return nil
	}
	if _, ok := m.factions[sanctioner]; !ok {
		return nil
	}
	if _, ok := m.factions[target]; !ok {
		return nil
	}

	s := &Sanctions{
		ID:            uuid.NewString(),
		Sanctioner:    sanctioner,
		Target:        target,
		StartHour:     m.clock.Now(),
		DurationHours: durationHours,
		Penalty:       penalty,
		Active:        true,
	}
	m.sanctions = append(m.sanctions, s)
	m.setRelation(sanctioner, target, -50)

	slog.Info("sanctions imposed",
		"sanctioner", sanctioner, "target", target, "penalty", penalty)
	return s
}

// LiftSanctions removes sanctions by id entirely.
func (m *Manager) LiftSanctions(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sanctions {
		if s.ID == id {
			m.sanctions = append(m.sanctions[:i], m.sanctions[i+1:]...)
			slog.Info("sanctions lifted", "sanctioner", s.Sanctioner, "target", s.Target)
			return true
		}
	}
	return false
}

// DeclareWar deactivates every agreement between the two factions and sets
// their relationship to -100.
func (m *Manager) DeclareWar(factionA, factionB string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agreements {
		if a.Active && a.Involves(factionA) && a.Involves(factionB) {
			a.Active = false
		}
	}
	m.markHostile(factionA, factionB)
	m.setRelation(factionA, factionB, -100)
	slog.Info("war declared", "faction_a", factionA, "faction_b", factionB)
}

// MakePeace resets the relationship between two factions to neutral.
func (m *Manager) MakePeace(factionA, factionB string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearHostile(factionA, factionB)
	m.setRelation(factionA, factionB, 0)
	slog.Info("peace made", "faction_a", factionA, "faction_b", factionB)
}

// FormAlliance allies two factions at relationship 75. If no trade
// agreement exists between them, a 30-day one is created as a side effect.
func (m *Manager) FormAlliance(factionA, factionB string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if factionA == factionB {
		return
	}
	fa, okA := m.factions[factionA]
	fb, okB := m.factions[factionB]
	if !okA || !okB {
		return
	}

	hasAgreement := false
	for _, a := range m.agreements {
		if a.Active && a.Involves(factionA) && a.Involves(factionB) {
			hasAgreement = true
			break
		}
	}
	if !hasAgreement {
		m.formAgreement(factionA, factionB, 30*24)
	}

	fa.Allied[factionB] = true
	fb.Allied[factionA] = true
	m.clearHostile(factionA, factionB)
	m.setRelation(factionA, factionB, 75)
	slog.Info("alliance formed", "faction_a", factionA, "faction_b", factionB)
}

// BreakAlliance dissolves an alliance: agreements between the two are
// deactivated and the relationship resets to neutral.
func (m *Manager) BreakAlliance(factionA, factionB string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fa, okA := m.factions[factionA]
	fb, okB := m.factions[factionB]
	if !okA || !okB {
		return
	}
	delete(fa.Allied, factionB)
	delete(fb.Allied, factionA)

	for _, a := range m.agreements {
		if a.Active && a.Involves(factionA) && a.Involves(factionB) {
			a.Active = false
		}
	}
	m.setRelation(factionA, factionB, 0)
	slog.Info("alliance broken", "faction_a", factionA, "faction_b", factionB)
}

// ActiveAgreements returns a snapshot of currently active agreements.
func (m *Manager) ActiveAgreements() []TradeAgreement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TradeAgreement
	for _, a := range m.agreements {
		if a.Active {
			out = append(out, *a)
		}
	}
	return out
}

// ActiveSanctions returns a snapshot of currently active sanctions.
func (m *Manager) ActiveSanctions() []Sanctions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Sanctions
	for _, s := range m.sanctions {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out
}

// expireDiplomacy moves expired or deactivated agreements and sanctions to
// the historical lists, keeping the active slices bounded. Caller holds
// the lock.
func (m *Manager) expireDiplomacy(now float64) {
	for i := 0; i < len(m.agreements); {
		a := m.agreements[i]
		if a.Active && now-a.StartHour >= a.DurationHours {
			a.Active = false
			slog.Info("trade agreement expired", "faction_a", a.FactionA, "faction_b", a.FactionB)
		}
		if !a.Active {
			m.pastAgreements = append(m.pastAgreements, a)
			m.agreements = append(m.agreements[:i], m.agreements[i+1:]...)
			continue
		}
		i++
	}
	for i := 0; i < len(m.sanctions); {
		s := m.sanctions[i]
		if s.Active && now-s.StartHour >= s.DurationHours {
			s.Active = false
			slog.Info("sanctions expired", "sanctioner", s.Sanctioner, "target", s.Target)
		}
		if !s.Active {
			m.pastSanctions = append(m.pastSanctions, s)
			m.sanctions = append(m.sanctions[:i], m.sanctions[i+1:]...)
			continue
		}
		i++
	}
}

func (m *Manager) markHostile(a, b string) {
	if fa, ok := m.factions[a]; ok {
		delete(fa.Allied, b)
		fa.Hostile[b] = true
	}
	if fb, ok := m.factions[b]; ok {
		delete(fb.Allied, a)
		fb.Hostile[a] = true
	}
}

func (m *Manager) clearHostile(a, b string) {
	if fa, ok := m.factions[a]; ok {
		delete(fa.Hostile, b)
	}
	if fb, ok := m.factions[b]; ok {
		delete(fb.Hostile, a)
	}
}
