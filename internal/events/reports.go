package events

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// GenerateEventReport renders a text summary of the current event state.
func (m *Manager) GenerateEventReport() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var b strings.Builder
	fmt.Fprintf(&b, "=== Economic Event Report (%s) ===\n", m.clock.String())
	fmt.Fprintf(&b, "Active events: %d / %d\n", len(m.active), m.cfg.MaxActiveEvents)
	for _, ev := range m.active {
		remaining := ev.EndHour - m.clock.Now()
		fmt.Fprintf(&b, "  - %s [%s/%s] severity %.2f, %.1f days remaining\n",
			ev.Name, CategoryName(ev.Category), ScopeName(ev.Scope), ev.Severity, remaining/24)
	}
	fmt.Fprintf(&b, "Running chains: %d\n", len(m.chains))
	for _, c := range m.chains {
		mode := "parallel"
		if c.Sequential {
			mode = "sequential"
		}
		fmt.Fprintf(&b, "  - %s (%s, %d/%d fired)\n", c.Name, mode, c.nextIndex, len(c.Events))
	}
	fmt.Fprintf(&b, "Concluded events on record: %s\n", humanize.Comma(int64(len(m.history))))
	return b.String()
}

// ExportEventHistory renders the concluded-event log, oldest first.
func (m *Manager) ExportEventHistory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var b strings.Builder
	b.WriteString("=== Event History ===\n")
	if len(m.history) == 0 {
		b.WriteString("(no concluded events)\n")
		return b.String()
	}
	for _, h := range m.history {
		fmt.Fprintf(&b, "[hour %.1f] %s [%s/%s] severity %.2f, ran %.1f days",
			h.EndedHour, h.Event.Name, CategoryName(h.Event.Category),
			ScopeName(h.Event.Scope), h.Event.Severity,
			(h.EndedHour-h.Event.StartHour)/24)
		if h.Event.TriggeringPlayer != "" {
			fmt.Fprintf(&b, " (triggered by %s)", h.Event.TriggeringPlayer)
		}
		b.WriteString("\n")
	}
	return b.String()
}
