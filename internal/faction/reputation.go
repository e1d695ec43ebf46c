package faction

import "log/slog"

// ModifyPlayerReputation applies a reputation delta, clamped to
// [-100, 100], and recomputes the derived fields. The trading license and
// military tech access are one-way grants; falling back below the
// threshold never revokes them.
func (m *Manager) ModifyPlayerReputation(factionID, playerID string, delta float64, reason string) Reputation {
	m.mu.Lock()
	rep := m.reputationRecord(factionID, playerID)
	rep.Score = clampScore(rep.Score + delta)
	m.recomputeDerived(rep)
	out := *rep
	m.mu.Unlock()

	slog.Info("reputation changed",
		"faction", factionID,
		"player", playerID,
		"delta", delta,
		"score", out.Score,
		"reason", reason,
	)
	if m.OnReputationChanged != nil {
		m.OnReputationChanged(out, reason)
	}
	return out
}

// GetPlayerReputation returns the reputation record, or a neutral one for
// unknown pairs.
func (m *Manager) GetPlayerReputation(factionID, playerID string) Reputation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerReputation(factionID, playerID)
}

func (m *Manager) playerReputation(factionID, playerID string) Reputation {
	if rep, ok := m.reputation[repKey{factionID, playerID}]; ok {
		return *rep
	}
	return Reputation{FactionID: factionID, PlayerID: playerID, Standing: 50}
}

// CanPlayerTrade reports whether a player's standing clears the trade
// threshold.
func (m *Manager) CanPlayerTrade(factionID, playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerReputation(factionID, playerID).Standing > 20
}

// RecordMissionCompleted bumps the mission counter for a pair.
func (m *Manager) RecordMissionCompleted(factionID, playerID string) {
	m.mu.Lock()
	m.reputationRecord(factionID, playerID).MissionsCompleted++
	m.mu.Unlock()
}

// RecordTradeValue accumulates lifetime trade value for a pair.
func (m *Manager) RecordTradeValue(factionID, playerID string, value float64) {
	m.mu.Lock()
	m.reputationRecord(factionID, playerID).TotalTradeValue += value
	m.mu.Unlock()
}

// reputationRecord returns the mutable record, creating a neutral one on
// first touch.
func (m *Manager) reputationRecord(factionID, playerID string) *Reputation {
	key := repKey{factionID, playerID}
	rep, ok := m.reputation[key]
	if !ok {
		rep = &Reputation{FactionID: factionID, PlayerID: playerID}
		m.recomputeDerived(rep)
		m.reputation[key] = rep
	}
	return rep
}

// applyReputationDecay walks every score linearly toward zero.
func (m *Manager) applyReputationDecay(seconds float64) {
	step := m.cfg.ReputationDecayRate * seconds
	for _, rep := range m.reputation {
		switch {
		case rep.Score > 0:
			rep.Score -= step
			if rep.Score < 0 {
				rep.Score = 0
			}
		case rep.Score < 0:
			rep.Score += step
			if rep.Score > 0 {
				rep.Score = 0
			}
		}
		m.recomputeDerived(rep)
	}
}

// recomputeDerived refreshes standing, discount, and the one-way grants.
func (m *Manager) recomputeDerived(rep *Reputation) {
	rep.Standing = (rep.Score + 100) / 2

	discount := rep.Score / 100 * m.cfg.MaxReputationDiscount
	if discount < 0 {
		discount = 0
	}
	if discount > m.cfg.MaxReputationDiscount {
		discount = m.cfg.MaxReputationDiscount
	}
	rep.TradeDiscount = discount

	if rep.Standing >= m.cfg.LicenseStanding {
		rep.HasTradingLicense = true
	}
	if rep.Standing >= m.cfg.MilitaryTechStanding {
		rep.CanAccessMilitaryTech = true
	}
}

func clampScore(v float64) float64 {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}
