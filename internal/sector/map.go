// Package sector provides the station map the economy runs over: station
// positions generated from layered simplex noise, faction ownership, and
// per-station territorial control levels. The market manager consumes this
// package only through its provider interfaces.
package sector

import (
	"math"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// StationID is a stable string key for a station.
type StationID string

// Station is one tradeable location in the sector.
type Station struct {
	ID            StationID `json:"id"`
	Name          string    `json:"name"`
	X, Y          float64   `json:"-"`
	OwningFaction string    `json:"owning_faction"`
	ControlLevel  float64   `json:"control_level"` // owning faction's grip, 0..1
}

// GenConfig holds sector generation parameters.
type GenConfig struct {
	Seed     int64
	Stations int     // number of stations to place
	Span     float64 // coordinate range, stations land in [0, Span)
}

// DefaultGenConfig returns the standard sector layout parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{Seed: 1, Stations: 12, Span: 100}
}

// Map holds all stations and answers distance and territory queries.
type Map struct {
	stations map[StationID]*Station
	order    []StationID // insertion order for deterministic listings
}

// Generate builds a sector map. Station positions come from two independent
// noise layers sampled along a spiral, which spreads stations without
// clumping the way raw uniform draws do.
func Generate(cfg GenConfig, factions []string) *Map {
	if cfg.Stations <= 0 {
		cfg.Stations = 12
	}
	if cfg.Span <= 0 {
		cfg.Span = 100
	}
	xNoise := opensimplex.NewNormalized(cfg.Seed)
	yNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	ctlNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	m := &Map{stations: make(map[StationID]*Station, cfg.Stations)}
	for i := 0; i < cfg.Stations; i++ {
		t := float64(i) * 0.37
		st := &Station{
			ID:   StationID(stationNames[i%len(stationNames)].id(i)),
			Name: stationNames[i%len(stationNames)].name,
			X:    xNoise.Eval2(t, 0.5) * cfg.Span,
			Y:    yNoise.Eval2(0.5, t) * cfg.Span,
			// Control sits in [0.3, 1.0): even contested stations retain
			// some owner presence.
			ControlLevel: 0.3 + ctlNoise.Eval2(t, t)*0.7,
		}
		if len(factions) > 0 {
			st.OwningFaction = factions[i%len(factions)]
		}
		m.stations[st.ID] = st
		m.order = append(m.order, st.ID)
	}
	return m
}

// Get returns a station by id.
func (m *Map) Get(id StationID) (*Station, bool) {
	st, ok := m.stations[id]
	return st, ok
}

// All returns every station in generation order.
func (m *Map) All() []*Station {
	out := make([]*Station, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.stations[id])
	}
	return out
}

// IDs returns every station id sorted.
func (m *Map) IDs() []StationID {
	out := make([]StationID, 0, len(m.stations))
	for id := range m.stations {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Distance returns the euclidean distance between two stations, or 0 if
// either is unknown.
func (m *Map) Distance(a, b StationID) float64 {
	sa, okA := m.stations[a]
	sb, okB := m.stations[b]
	if !okA || !okB {
		return 0
	}
	dx, dy := sa.X-sb.X, sa.Y-sb.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ControlLevel reports how firmly a faction holds a station, 0..1. Unknown
// stations and non-owning factions read as 0.5 (contested/neutral).
func (m *Map) ControlLevel(factionID string, stationID StationID) float64 {
	st, ok := m.stations[stationID]
	if !ok {
		return 0.5
	}
	if st.OwningFaction == factionID {
		return st.ControlLevel
	}
	return 0.5
}

// SetOwner reassigns a station to a faction at the given control level.
func (m *Map) SetOwner(stationID StationID, factionID string, control float64) {
	st, ok := m.stations[stationID]
	if !ok {
		return
	}
	st.OwningFaction = factionID
	st.ControlLevel = clamp01(control)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type namePair struct{ key, name string }

func (p namePair) id(i int) string {
	if i < len(stationNames) {
		return p.key
	}
	return p.key + "-" + string(rune('a'+i/len(stationNames)))
}

// stationNames seeds the default sector. Extra stations past the list get a
// suffixed key.
var stationNames = []namePair{
	{"meridian-gate", "Meridian Gate"},
	{"kessler-yards", "Kessler Yards"},
	{"port-halvorsen", "Port Halvorsen"},
	{"red-anchorage", "Red Anchorage"},
	{"tycho-deep", "Tycho Deep"},
	{"solace-ring", "Solace Ring"},
	{"ferron-spur", "Ferron Spur"},
	{"outlook-station", "Outlook Station"},
	{"cinder-dock", "Cinder Dock"},
	{"pallas-reach", "Pallas Reach"},
	{"veery-crossing", "Veery Crossing"},
	{"gruber-holdfast", "Gruber Holdfast"},
}
