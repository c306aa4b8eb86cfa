package atmos

import (
	"fmt"
	"math"
	"strings"
)

// EffectKind identifies the variant of an Effect.
type EffectKind string

const (
	EffectMoleConversion EffectKind = "convert"
	EffectEnergyDelta    EffectKind = "energy"
	EffectEmit           EffectKind = "emit"
	EffectComposite      EffectKind = "composite"
)

// Effect is what a rule does to a mixture when it fires. The set of variants
// is closed: MoleConversion, EnergyDelta, Emit and Composite.
type Effect interface {
	Kind() EffectKind
	String() string
	apply(m *GasMixture, st *effectState) error
}

// SignalKind names an out-of-band event a reaction reports to the caller.
type SignalKind string

const (
	SignalRadiation SignalKind = "radiation"
	SignalFire      SignalKind = "fire"
	SignalResearch  SignalKind = "research"
)

// Signal is an out-of-band report produced by an Emit effect. The engine
// hands signals back to the caller instead of encoding them in the mixture.
type Signal struct {
	Kind   SignalKind `json:"kind"`
	RuleID string     `json:"rule_id"`
	Amount float64    `json:"amount"`
}

// effectState carries values between the effects of one rule firing.
type effectState struct {
	ruleID  string
	extent  float64
	energy  float64
	signals []Signal
}

// Stoich is one term of a conversion: a gas and its coefficient.
type Stoich struct {
	Species     GasSpecies
	Coefficient float64
}

// MoleConversion consumes reactants and produces products in fixed
// proportions. One unit of extent moves Coefficient moles of every term.
//
// The extent is Fixed when Fixed > 0, otherwise Fraction times the limiting
// extent (the largest extent the reactants can supply). It never exceeds the
// limiting extent, so no gas goes negative. Total moles are conserved only
// when both sides have equal coefficient sums.
type MoleConversion struct {
	Reactants []Stoich
	Products  []Stoich
	Fixed     float64
	Fraction  float64
}

func (c MoleConversion) Kind() EffectKind { return EffectMoleConversion }

func (c MoleConversion) String() string {
	side := func(terms []Stoich) string {
		parts := make([]string, 0, len(terms))
		for _, t := range terms {
			parts = append(parts, fmt.Sprintf("%v %s", t.Coefficient, t.Species.ID))
		}
		return strings.Join(parts, " + ")
	}
	extent := fmt.Sprintf("fraction %v", c.Fraction)
	if c.Fixed > 0 {
		extent = fmt.Sprintf("fixed %v", c.Fixed)
	}
	return fmt.Sprintf("convert(%s -> %s, %s)", side(c.Reactants), side(c.Products), extent)
}

// consumed sums the reactant coefficients per species, so a gas listed twice
// is limited and drawn down as one term.
func (c MoleConversion) consumed() ([]SpeciesID, map[SpeciesID]float64) {
	var order []SpeciesID
	coefs := make(map[SpeciesID]float64, len(c.Reactants))
	for _, r := range c.Reactants {
		if r.Coefficient <= 0 {
			continue
		}
		if _, seen := coefs[r.Species.ID]; !seen {
			order = append(order, r.Species.ID)
		}
		coefs[r.Species.ID] += r.Coefficient
	}
	return order, coefs
}

// limitingExtent returns how many units of extent the reactants allow.
func (c MoleConversion) limitingExtent(m *GasMixture) float64 {
	order, coefs := c.consumed()
	limit := math.Inf(1)
	for _, id := range order {
		moles, _ := m.MolesID(id)
		limit = math.Min(limit, moles/coefs[id])
	}
	return limit
}

func (c MoleConversion) apply(m *GasMixture, st *effectState) error {
	limit := c.limitingExtent(m)
	extent := c.Fraction * limit
	if c.Fixed > 0 {
		extent = math.Min(c.Fixed, limit)
	}
	if math.IsInf(extent, 0) || math.IsNaN(extent) || extent <= 0 {
		st.extent = 0
		return nil
	}

	order, coefs := c.consumed()
	for _, id := range order {
		e := m.gases[id]
		e.moles = math.Max(0, e.moles-coefs[id]*extent)
		m.gases[id] = e
	}
	for _, p := range c.Products {
		m.AssertGas(p.Species)
		e := m.gases[p.Species.ID]
		e.moles += p.Coefficient * extent
		m.gases[p.Species.ID] = e
	}
	st.extent = extent
	return nil
}

// EnergyDelta releases (positive) or absorbs (negative) energy:
// Joules plus PerExtent times the extent of the preceding conversion.
// The temperature changes by ΔE / HeatCapacity and never drops below TCMB.
type EnergyDelta struct {
	Joules    float64
	PerExtent float64
}

func (d EnergyDelta) Kind() EffectKind { return EffectEnergyDelta }

func (d EnergyDelta) String() string {
	return fmt.Sprintf("energy(%v J + %v J/extent)", d.Joules, d.PerExtent)
}

func (d EnergyDelta) apply(m *GasMixture, st *effectState) error {
	delta := d.Joules + d.PerExtent*st.extent
	if delta == 0 {
		return nil
	}
	hc, err := m.HeatCapacity()
	if err != nil {
		return &ReactionInvariantError{RuleID: st.ruleID, Reason: fmt.Sprintf("energy delta on a mixture without heat capacity: %v", err)}
	}
	if hc <= 0 {
		return &ReactionInvariantError{RuleID: st.ruleID, Reason: "energy delta on a mixture with zero heat capacity"}
	}
	m.Temperature = math.Max(TCMB, m.Temperature+delta/hc)
	st.energy += delta
	return nil
}

// Emit reports a signal of Amount plus PerExtent times the extent of the
// preceding conversion. Nothing is reported when that amount is not positive.
type Emit struct {
	Signal    SignalKind
	Amount    float64
	PerExtent float64
}

func (e Emit) Kind() EffectKind { return EffectEmit }

func (e Emit) String() string {
	return fmt.Sprintf("emit(%s %v + %v/extent)", e.Signal, e.Amount, e.PerExtent)
}

func (e Emit) apply(_ *GasMixture, st *effectState) error {
	amount := e.Amount + e.PerExtent*st.extent
	if amount <= 0 {
		return nil
	}
	st.signals = append(st.signals, Signal{Kind: e.Signal, RuleID: st.ruleID, Amount: amount})
	return nil
}

// Composite applies its effects in order and stops at the first error.
type Composite struct {
	Effects []Effect
}

func (c Composite) Kind() EffectKind { return EffectComposite }

func (c Composite) String() string {
	parts := make([]string, 0, len(c.Effects))
	for _, e := range c.Effects {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

func (c Composite) apply(m *GasMixture, st *effectState) error {
	for _, e := range c.Effects {
		if err := e.apply(m, st); err != nil {
			return err
		}
	}
	return nil
}

// Sequence is shorthand for a Composite of the given effects.
func Sequence(effects ...Effect) Composite {
	return Composite{Effects: effects}
}
