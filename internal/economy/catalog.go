package economy

import "sort"

// Catalog holds every registered commodity definition. Registration happens
// once at startup; afterwards the catalog is read-only.
type Catalog struct {
	commodities map[CommodityID]Commodity
	frozen      bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{commodities: make(map[CommodityID]Commodity)}
}

// Register adds a definition. Returns false if the catalog is frozen or the
// id is already taken.
func (c *Catalog) Register(def Commodity) bool {
	if c.frozen || def.ID == "" {
		return false
	}
	if _, ok := c.commodities[def.ID]; ok {
		return false
	}
	c.commodities[def.ID] = def
	return true
}

// Freeze marks the catalog read-only. Further Register calls fail.
func (c *Catalog) Freeze() {
	c.frozen = true
}

// Get returns a commodity definition by id.
func (c *Catalog) Get(id CommodityID) (Commodity, bool) {
	def, ok := c.commodities[id]
	return def, ok
}

// All returns every definition sorted by id.
func (c *Catalog) All() []Commodity {
	out := make([]Commodity, 0, len(c.commodities))
	for _, def := range c.commodities {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered commodities.
func (c *Catalog) Len() int {
	return len(c.commodities)
}

// SeedDefault registers the standard commodity set and freezes the catalog.
func SeedDefault() *Catalog {
	c := NewCatalog()
	for _, def := range []Commodity{
		{ID: "iron-ore", Name: "Iron Ore", Category: CategoryRawOre, BaseValue: 12, Weight: 2.0, Volume: 0.8, Volatility: VolatilityStable},
		{ID: "titanium-ore", Name: "Titanium Ore", Category: CategoryRawOre, BaseValue: 35, Weight: 1.8, Volume: 0.8, Volatility: VolatilityModerate},
		{ID: "rare-earths", Name: "Rare Earth Elements", Category: CategoryRawOre, BaseValue: 140, Weight: 1.2, Volume: 0.5, Volatility: VolatilityVolatile},
		{ID: "steel-plate", Name: "Steel Plate", Category: CategoryRefinedMetal, BaseValue: 45, Weight: 2.5, Volume: 1.0, Volatility: VolatilityStable},
		{ID: "titanium-alloy", Name: "Titanium Alloy", Category: CategoryRefinedMetal, BaseValue: 120, Weight: 1.5, Volume: 0.9, Volatility: VolatilityModerate},
		{ID: "hydrogen-fuel", Name: "Hydrogen Fuel", Category: CategoryFuel, BaseValue: 8, Weight: 0.1, Volume: 1.2, Volatility: VolatilityModerate},
		{ID: "antimatter-cells", Name: "Antimatter Cells", Category: CategoryFuel, BaseValue: 900, Weight: 0.3, Volume: 0.4, Volatility: VolatilityExtreme},
		{ID: "protein-paste", Name: "Protein Paste", Category: CategoryFood, BaseValue: 6, Weight: 0.5, Volume: 0.6, Volatility: VolatilityStable, Perishable: true, DecayRate: 0.02},
		{ID: "fresh-produce", Name: "Fresh Produce", Category: CategoryFood, BaseValue: 22, Weight: 0.4, Volume: 0.7, Volatility: VolatilityVolatile, Perishable: true, DecayRate: 0.15},
		{ID: "med-supplies", Name: "Medical Supplies", Category: CategoryMedical, BaseValue: 85, Weight: 0.3, Volume: 0.4, Volatility: VolatilityModerate, Perishable: true, DecayRate: 0.01},
		{ID: "nanite-serum", Name: "Nanite Serum", Category: CategoryMedical, BaseValue: 450, Weight: 0.1, Volume: 0.1, Volatility: VolatilityVolatile},
		{ID: "ship-components", Name: "Ship Components", Category: CategoryTechnology, BaseValue: 210, Weight: 1.0, Volume: 1.5, Volatility: VolatilityModerate},
		{ID: "quantum-processors", Name: "Quantum Processors", Category: CategoryTechnology, BaseValue: 780, Weight: 0.2, Volume: 0.2, Volatility: VolatilityVolatile},
		{ID: "zero-g-whiskey", Name: "Zero-G Whiskey", Category: CategoryLuxury, BaseValue: 160, Weight: 0.3, Volume: 0.3, Volatility: VolatilityVolatile},
		{ID: "gem-crystals", Name: "Gem Crystals", Category: CategoryLuxury, BaseValue: 520, Weight: 0.2, Volume: 0.1, Volatility: VolatilityExtreme},
		{ID: "neural-stims", Name: "Neural Stimulants", Category: CategoryContraband, BaseValue: 340, Weight: 0.1, Volume: 0.1, Volatility: VolatilityExtreme, Illegal: true},
		{ID: "mil-grade-arms", Name: "Military-Grade Arms", Category: CategoryContraband, BaseValue: 600, Weight: 1.2, Volume: 0.8, Volatility: VolatilityExtreme, Illegal: true},
	} {
		c.Register(def)
	}
	c.Freeze()
	return c
}
