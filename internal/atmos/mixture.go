package atmos

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

type gasEntry struct {
	species GasSpecies
	moles   float64
}

// GasMixture is the gas state of a bounded volume: a sparse mapping from gas
// species to moles, a temperature in Kelvin and a fixed volume in liters.
//
// A GasMixture is owned by a single caller at a time and does no locking.
type GasMixture struct {
	gases map[SpeciesID]gasEntry
	// Temperature in Kelvin.
	Temperature float64
	volume      float64
}

// Sharer is implemented by callers that diffuse gas between adjacent
// mixtures. The core ships no implementation; Remove and Merge are the
// building blocks.
type Sharer interface {
	Share(receiver, sharer *GasMixture, adjacentTurfs int) error
}

// NewEmptyMixture creates a mixture with no gases.
// T20C and TankVolume or CanisterVolume make sensible defaults.
func NewEmptyMixture(temperature, volume float64) *GasMixture {
	return &GasMixture{
		gases:       make(map[SpeciesID]gasEntry),
		Temperature: temperature,
		volume:      volume,
	}
}

// NewMixture creates a mixture from parallel species and mole slices.
// If a species repeats, the last entry wins.
func NewMixture(species []GasSpecies, moles []float64, temperature, volume float64) (*GasMixture, error) {
	if len(species) != len(moles) {
		return nil, &VectorLengthMismatchError{GasLength: len(species), MoleLength: len(moles)}
	}
	m := NewEmptyMixture(temperature, volume)
	for i, sp := range species {
		m.gases[sp.ID] = gasEntry{species: sp, moles: moles[i]}
	}
	return m, nil
}

// Volume returns the fixed volume of the mixture in liters.
func (m *GasMixture) Volume() float64 {
	return m.volume
}

// IsEmpty reports whether no gas has ever been asserted into the mixture.
// A mixture holding only zero-mole entries is not empty.
func (m *GasMixture) IsEmpty() bool {
	return len(m.gases) == 0
}

// GasExists reports whether the gas is present with a positive mole count.
func (m *GasMixture) GasExists(s GasSpecies) bool {
	return m.GasExistsID(s.ID)
}

// GasExistsID is GasExists keyed by species id.
func (m *GasMixture) GasExistsID(id SpeciesID) bool {
	e, ok := m.gases[id]
	return ok && e.moles > 0
}

// AssertGas makes sure the mixture has an entry for the gas, inserting it at
// zero moles if needed. It returns true if the entry was already there.
// A freshly asserted gas does not satisfy GasExists.
func (m *GasMixture) AssertGas(s GasSpecies) bool {
	if _, ok := m.gases[s.ID]; ok {
		return true
	}
	m.gases[s.ID] = gasEntry{species: s}
	return false
}

// Moles returns the mole count of the gas if GasExists, and false otherwise.
// Both "never added" and "added but exhausted" read as absent.
func (m *GasMixture) Moles(s GasSpecies) (float64, bool) {
	return m.MolesID(s.ID)
}

// MolesID is Moles keyed by species id.
func (m *GasMixture) MolesID(id SpeciesID) (float64, bool) {
	if !m.GasExistsID(id) {
		return 0, false
	}
	return m.gases[id].moles, true
}

// ChangeMoles sets the mole count of a gas. Unlike Moles it only requires
// the gas to have been asserted, so zero-mole entries can be refilled.
func (m *GasMixture) ChangeMoles(s GasSpecies, moles float64) error {
	return m.changeMolesID(s.ID, moles)
}

func (m *GasMixture) changeMolesID(id SpeciesID, moles float64) error {
	e, ok := m.gases[id]
	if !ok {
		return &GasNotFoundError{Gas: id}
	}
	e.moles = moles
	m.gases[id] = e
	return nil
}

// Gases returns the ids of every asserted gas, sorted.
func (m *GasMixture) Gases() []SpeciesID {
	return slices.Sorted(maps.Keys(m.gases))
}

// TotalMoles returns the sum of all mole counts.
func (m *GasMixture) TotalMoles() (float64, error) {
	if m.IsEmpty() {
		return 0, ErrGasMixtureEmpty
	}
	sum := 0.0
	for _, id := range m.Gases() {
		sum += m.gases[id].moles
	}
	return sum, nil
}

// Pressure returns the pressure of the mixture in kPa (P = nRT / V).
func (m *GasMixture) Pressure() (float64, error) {
	total, err := m.TotalMoles()
	if err != nil {
		return 0, err
	}
	return (total * RIdealGasEquation * m.Temperature) / m.volume, nil
}

// HeatCapacity returns the sum of specific heat times moles over all gases.
func (m *GasMixture) HeatCapacity() (float64, error) {
	if m.IsEmpty() {
		return 0, ErrGasMixtureEmpty
	}
	sum := 0.0
	for _, id := range m.Gases() {
		e := m.gases[id]
		sum += e.species.SpecificHeat * e.moles
	}
	return sum, nil
}

// ThermalEnergy returns HeatCapacity times Temperature.
func (m *GasMixture) ThermalEnergy() (float64, error) {
	hc, err := m.HeatCapacity()
	if err != nil {
		return 0, err
	}
	return hc * m.Temperature, nil
}

// Merge moves every gas of giver into m and equalizes temperature.
// The giver is drained and should not be used afterwards.
//
// When the temperatures differ by more than MinimumTempDelta the new
// temperature is the heat capacity weighted average of both sides. This only
// conserves energy exactly when both sides have matching specific heats per
// species; the simulation accepts the approximation.
func (m *GasMixture) Merge(giver *GasMixture) error {
	if giver == m {
		return ErrSelfMerge
	}
	if m.IsEmpty() || giver.IsEmpty() {
		return ErrGasMixtureEmpty
	}

	delta := m.Temperature - giver.Temperature
	if delta > MinimumTempDelta || delta < -MinimumTempDelta {
		selfHeatCap, _ := m.HeatCapacity()
		giverHeatCap, _ := giver.HeatCapacity()
		combined := selfHeatCap + giverHeatCap
		if combined > 0 {
			m.Temperature = (giver.Temperature*giverHeatCap + m.Temperature*selfHeatCap) / combined
		}
	}

	for _, id := range giver.Gases() {
		ge := giver.gases[id]
		m.AssertGas(ge.species)
		e := m.gases[id]
		e.moles += ge.moles
		m.gases[id] = e
	}
	clear(giver.gases)
	return nil
}

// Remove takes amount moles out of the mixture and returns them as a new
// mixture at the same temperature and volume. Every gas contributes in
// proportion to its share of the total. Amounts above the total are clamped.
// A negative or NaN amount is rejected.
func (m *GasMixture) Remove(amount float64) (*GasMixture, error) {
	if !(amount >= 0) {
		return nil, &NegativeAmountError{Value: amount}
	}
	total, err := m.TotalMoles()
	if err != nil {
		return nil, err
	}
	if amount > total {
		amount = total
	}

	removed := NewEmptyMixture(m.Temperature, m.volume)
	for _, id := range m.Gases() {
		e := m.gases[id]
		taken := 0.0
		if total > 0 {
			taken = (e.moles / total) * amount
		}
		removed.gases[id] = gasEntry{species: e.species, moles: taken}
		e.moles -= taken
		m.gases[id] = e
	}
	return removed, nil
}

// RemoveRatio takes the given fraction of every gas out of the mixture.
// Ratios above 1 are clamped to 1; zero, negative and NaN ratios are rejected.
func (m *GasMixture) RemoveRatio(ratio float64) (*GasMixture, error) {
	if !(ratio > 0) {
		return nil, &NegativeAmountError{Value: ratio}
	}
	if ratio > 1 {
		ratio = 1
	}

	removed := NewEmptyMixture(m.Temperature, m.volume)
	for _, id := range m.Gases() {
		e := m.gases[id]
		taken := e.moles * ratio
		removed.gases[id] = gasEntry{species: e.species, moles: taken}
		e.moles -= taken
		m.gases[id] = e
	}
	return removed, nil
}

// Copy returns a deep copy of the mixture.
func (m *GasMixture) Copy() *GasMixture {
	return &GasMixture{
		gases:       maps.Clone(m.gases),
		Temperature: m.Temperature,
		volume:      m.volume,
	}
}

// Equal reports whether both mixtures hold the same gases, moles,
// temperature and volume.
func (m *GasMixture) Equal(other *GasMixture) bool {
	if m.Temperature != other.Temperature || m.volume != other.volume || len(m.gases) != len(other.gases) {
		return false
	}
	for id, e := range m.gases {
		oe, ok := other.gases[id]
		if !ok || oe.moles != e.moles || oe.species != e.species {
			return false
		}
	}
	return true
}

func (m *GasMixture) String() string {
	var b strings.Builder
	for _, id := range m.Gases() {
		b.WriteString(string(id))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(m.gases[id].moles, 'g', -1, 64))
		b.WriteByte(',')
	}
	return fmt.Sprintf("t:%v,v:%v,g:%s", m.Temperature, m.volume, b.String())
}
