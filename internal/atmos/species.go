package atmos

import (
	"fmt"
	"sort"
)

// SpeciesID is the stable short key of a gas species (e.g. "o2", "plasma").
// Species are compared and hashed by ID, never by instance.
type SpeciesID string

// GasSpecies describes a type of gas. Values are immutable once placed in a
// Catalog.
type GasSpecies struct {
	ID   SpeciesID `json:"id"`
	Name string    `json:"name"`
	// SpecificHeat is the energy needed to heat one mole by one Kelvin.
	// Higher means harder to heat or cool.
	SpecificHeat float64 `json:"specific_heat"`
	// FusionPower is how much the gas accelerates a fusion reaction.
	FusionPower float64 `json:"fusion_power"`
}

// Catalog is an immutable registry of gas species. It is built once and can
// be shared between any number of goroutines.
type Catalog struct {
	species map[SpeciesID]GasSpecies
	ordered []GasSpecies
}

// NewCatalog builds a catalog from the given species.
// It fails on empty or duplicate IDs, IDs that collide with reserved
// requirement keys, and non-positive specific heats.
func NewCatalog(species ...GasSpecies) (*Catalog, error) {
	c := &Catalog{
		species: make(map[SpeciesID]GasSpecies, len(species)),
		ordered: make([]GasSpecies, 0, len(species)),
	}
	for _, sp := range species {
		if sp.ID == "" {
			return nil, fmt.Errorf("species id is required (name %q)", sp.Name)
		}
		if RequirementKey(sp.ID).Reserved() {
			return nil, fmt.Errorf("species id %q is a reserved requirement key", sp.ID)
		}
		if sp.SpecificHeat <= 0 {
			return nil, fmt.Errorf("species %q: specific heat must be positive, got %v", sp.ID, sp.SpecificHeat)
		}
		if _, exists := c.species[sp.ID]; exists {
			return nil, fmt.Errorf("duplicate species id: %s", sp.ID)
		}
		c.species[sp.ID] = sp
		c.ordered = append(c.ordered, sp)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	return c, nil
}

// Lookup returns the species registered under id.
func (c *Catalog) Lookup(id SpeciesID) (GasSpecies, bool) {
	sp, ok := c.species[id]
	return sp, ok
}

// MustLookup is Lookup for static fixtures; it panics on unknown ids.
func (c *Catalog) MustLookup(id SpeciesID) GasSpecies {
	sp, ok := c.species[id]
	if !ok {
		panic(fmt.Sprintf("atmos: unknown gas species %q", id))
	}
	return sp
}

// Species returns all species sorted by ID.
func (c *Catalog) Species() []GasSpecies {
	out := make([]GasSpecies, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of registered species.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// Standard gas ids.
const (
	Oxygen        SpeciesID = "o2"
	Nitrogen      SpeciesID = "n2"
	CarbonDioxide SpeciesID = "co2"
	Plasma        SpeciesID = "plasma"
	WaterVapor    SpeciesID = "water_vapor"
	HyperNoblium  SpeciesID = "nob"
	NitrousOxide  SpeciesID = "n2o"
	Nitryl        SpeciesID = "no2"
	Tritium       SpeciesID = "tritium"
	BZ            SpeciesID = "bz"
	Stimulum      SpeciesID = "stim"
	Pluoxium      SpeciesID = "pluox"
	Miasma        SpeciesID = "miasma"
)

// StandardSpecies returns the station gas table.
func StandardSpecies() []GasSpecies {
	return []GasSpecies{
		{ID: Oxygen, Name: "Oxygen", SpecificHeat: 20},
		{ID: Nitrogen, Name: "Nitrogen", SpecificHeat: 20},
		{ID: CarbonDioxide, Name: "Carbon Dioxide", SpecificHeat: 30},
		{ID: Plasma, Name: "Plasma", SpecificHeat: 200},
		{ID: WaterVapor, Name: "Water Vapor", SpecificHeat: 40, FusionPower: 8},
		{ID: HyperNoblium, Name: "Hyper-noblium", SpecificHeat: 2000},
		{ID: NitrousOxide, Name: "Nitrous Oxide", SpecificHeat: 40, FusionPower: 10},
		{ID: Nitryl, Name: "Nitryl", SpecificHeat: 20, FusionPower: 16},
		{ID: Tritium, Name: "Tritium", SpecificHeat: 10, FusionPower: 1},
		{ID: BZ, Name: "BZ", SpecificHeat: 20, FusionPower: 8},
		{ID: Stimulum, Name: "Stimulum", SpecificHeat: 5, FusionPower: 7},
		{ID: Pluoxium, Name: "Pluoxium", SpecificHeat: 80, FusionPower: -10},
		{ID: Miasma, Name: "Miasma", SpecificHeat: 20},
	}
}

// StandardCatalog builds a new catalog holding StandardSpecies.
func StandardCatalog() *Catalog {
	c, err := NewCatalog(StandardSpecies()...)
	if err != nil {
		// the table above is static
		panic(err)
	}
	return c
}
