package atmos

import (
	"maps"
	"slices"
)

// RequirementKey names what a requirement threshold applies to: either a gas
// species id or one of the reserved keys below.
type RequirementKey string

// Reserved requirement keys.
const (
	RequireTemperature   RequirementKey = "TEMP"
	RequireThermalEnergy RequirementKey = "ENER"
)

// Reserved reports whether k is a reserved key rather than a species id.
func (k RequirementKey) Reserved() bool {
	return k == RequireTemperature || k == RequireThermalEnergy
}

// Requirements maps each key to the minimum value (inclusive) a mixture must
// reach for a rule to fire.
type Requirements map[RequirementKey]float64

// Satisfied reports whether every requirement holds for m.
// Gases that are absent count as zero moles. A thermal energy requirement
// fails on an empty mixture.
func (r Requirements) Satisfied(m *GasMixture) bool {
	for _, key := range slices.Sorted(maps.Keys(r)) {
		threshold := r[key]
		switch key {
		case RequireTemperature:
			if m.Temperature < threshold {
				return false
			}
		case RequireThermalEnergy:
			energy, err := m.ThermalEnergy()
			if err != nil || energy < threshold {
				return false
			}
		default:
			moles, _ := m.MolesID(SpeciesID(key))
			if moles < threshold {
				return false
			}
		}
	}
	return true
}

// ReactionRule is a gated chemistry transformation.
type ReactionRule struct {
	ID   string
	Name string
	// Priority orders rules in an engine; lower runs first.
	Priority     int
	Requirements Requirements
	Effect       Effect
}

// Eligible reports whether the rule's requirements hold for m.
func (r ReactionRule) Eligible(m *GasMixture) bool {
	return r.Requirements.Satisfied(m)
}
