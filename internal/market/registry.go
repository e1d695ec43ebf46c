package market

import (
	"sync"

	"github.com/google/uuid"

	"github.com/voidworks/tradewinds/internal/economy"
	"github.com/voidworks/tradewinds/internal/sector"
)

// Modifier is one active price/demand/supply adjustment, registered by a
// market or economic event for its lifetime. An empty Commodity or Station
// leaves that axis unconstrained.
type Modifier struct {
	Commodity economy.CommodityID
	Station   sector.StationID
	Price     float64
	Demand    float64
	Supply    float64
	Source    string // event id or other owner, for reports
}

// Handle identifies a registered modifier for later removal.
type Handle string

// ModifierRegistry is the shared surface between event engines and the
// price engine: events register their multipliers here, the price engine
// queries the composed product. Composition is multiplicative across all
// matching modifiers. Event managers write while price queries read, so
// the registry carries its own lock.
type ModifierRegistry struct {
	mu    sync.RWMutex
	mods  map[Handle]Modifier
	order []Handle
}

// NewModifierRegistry creates an empty registry.
func NewModifierRegistry() *ModifierRegistry {
	return &ModifierRegistry{mods: make(map[Handle]Modifier)}
}

// Register adds a modifier and returns its removal handle.
func (r *ModifierRegistry) Register(m Modifier) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := Handle(uuid.NewString())
	r.mods[h] = m
	r.order = append(r.order, h)
	return h
}

// Unregister removes a modifier. Unknown handles are ignored.
func (r *ModifierRegistry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mods[h]; !ok {
		return
	}
	delete(r.mods, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// matches reports whether a modifier applies to a (commodity, station)
// query. A modifier scoped to a commodity matches that commodity anywhere;
// one scoped to a station matches everything there; one scoped to neither
// matches everything.
func (m Modifier) matches(c economy.CommodityID, st sector.StationID) bool {
	if m.Commodity == "" && m.Station == "" {
		return true
	}
	if m.Commodity != "" && m.Commodity == c {
		return true
	}
	if m.Station != "" && m.Station == st {
		return true
	}
	return false
}

// PriceFactor returns the product of all matching price multipliers.
func (r *ModifierRegistry) PriceFactor(c economy.CommodityID, st sector.StationID) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factor := 1.0
	for _, h := range r.order {
		if m := r.mods[h]; m.matches(c, st) && m.Price > 0 {
			factor *= m.Price
		}
	}
	return factor
}

// DemandFactor returns the product of all matching demand multipliers.
func (r *ModifierRegistry) DemandFactor(c economy.CommodityID, st sector.StationID) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factor := 1.0
	for _, h := range r.order {
		if m := r.mods[h]; m.matches(c, st) && m.Demand > 0 {
			factor *= m.Demand
		}
	}
	return factor
}

// SupplyFactor returns the product of all matching supply multipliers.
func (r *ModifierRegistry) SupplyFactor(c economy.CommodityID, st sector.StationID) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factor := 1.0
	for _, h := range r.order {
		if m := r.mods[h]; m.matches(c, st) && m.Supply > 0 {
			factor *= m.Supply
		}
	}
	return factor
}

// Active returns a snapshot of all registered modifiers in insertion order.
func (r *ModifierRegistry) Active() []Modifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Modifier, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, r.mods[h])
	}
	return out
}
