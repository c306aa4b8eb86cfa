package atmos

import (
	"encoding/json"
	"fmt"
)

// GasAmount is one entry of a mixture snapshot.
type GasAmount struct {
	Gas   SpeciesID `json:"gas"`
	Moles float64   `json:"moles"`
}

// MixtureSnapshot is a point-in-time, serializable view of a mixture for
// telemetry, rendering and storage. Derived values are only set for
// non-empty mixtures.
type MixtureSnapshot struct {
	Temperature float64     `json:"temperature"`
	Volume      float64     `json:"volume"`
	Gases       []GasAmount `json:"gases"`

	TotalMoles    *float64 `json:"total_moles,omitempty"`
	HeatCapacity  *float64 `json:"heat_capacity,omitempty"`
	ThermalEnergy *float64 `json:"thermal_energy,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
}

// Snapshot captures the mixture. Gases are listed in id order.
func (m *GasMixture) Snapshot() MixtureSnapshot {
	snap := MixtureSnapshot{
		Temperature: m.Temperature,
		Volume:      m.volume,
		Gases:       make([]GasAmount, 0, len(m.gases)),
	}
	for _, id := range m.Gases() {
		snap.Gases = append(snap.Gases, GasAmount{Gas: id, Moles: m.gases[id].moles})
	}
	if m.IsEmpty() {
		return snap
	}
	total, _ := m.TotalMoles()
	hc, _ := m.HeatCapacity()
	thermal, _ := m.ThermalEnergy()
	pressure, _ := m.Pressure()
	snap.TotalMoles = &total
	snap.HeatCapacity = &hc
	snap.ThermalEnergy = &thermal
	snap.Pressure = &pressure
	return snap
}

// ValidateSnapshot checks that a snapshot can be turned back into a mixture:
// the volume is positive, no gas has negative moles or repeats, and, when a
// catalog is given, every gas is known to it.
func ValidateSnapshot(snap MixtureSnapshot, catalog *Catalog) error {
	if snap.Volume <= 0 {
		return fmt.Errorf("snapshot volume must be positive, got %v", snap.Volume)
	}
	if snap.Temperature < 0 {
		return fmt.Errorf("snapshot temperature must not be negative, got %v", snap.Temperature)
	}
	seen := make(map[SpeciesID]struct{}, len(snap.Gases))
	for i, g := range snap.Gases {
		if g.Gas == "" {
			return fmt.Errorf("gas at index %d has empty id", i)
		}
		if _, dup := seen[g.Gas]; dup {
			return fmt.Errorf("duplicate gas in snapshot: %s", g.Gas)
		}
		seen[g.Gas] = struct{}{}
		if g.Moles < 0 {
			return fmt.Errorf("gas %s has negative moles: %v", g.Gas, g.Moles)
		}
		if catalog != nil {
			if _, ok := catalog.Lookup(g.Gas); !ok {
				return fmt.Errorf("gas %s not found in catalog", g.Gas)
			}
		}
	}
	return nil
}

// MixtureFromSnapshot rebuilds a mixture, resolving gases through catalog.
func MixtureFromSnapshot(snap MixtureSnapshot, catalog *Catalog) (*GasMixture, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required to restore a mixture")
	}
	if err := ValidateSnapshot(snap, catalog); err != nil {
		return nil, err
	}
	species := make([]GasSpecies, 0, len(snap.Gases))
	moles := make([]float64, 0, len(snap.Gases))
	for _, g := range snap.Gases {
		species = append(species, catalog.MustLookup(g.Gas))
		moles = append(moles, g.Moles)
	}
	return NewMixture(species, moles, snap.Temperature, snap.Volume)
}

// EncodeSnapshotJSON encodes a mixture snapshot to JSON.
func EncodeSnapshotJSON(snap MixtureSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a mixture snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (MixtureSnapshot, error) {
	var snap MixtureSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return MixtureSnapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
