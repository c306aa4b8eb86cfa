package atmos

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestMoleConversion_FractionOfLimitingReactant(t *testing.T) {
	a, b, g := testSpecies()
	m := mustMixture(t, []GasSpecies{a, b}, []float64{10, 40}, 300)

	conv := MoleConversion{
		Reactants: []Stoich{{Species: a, Coefficient: 1}, {Species: b, Coefficient: 2}},
		Products:  []Stoich{{Species: g, Coefficient: 1}},
		Fraction:  0.5,
	}
	st := &effectState{ruleID: "r"}
	if err := conv.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// limit = min(10/1, 40/2) = 10, extent = 5
	if st.extent != 5 {
		t.Errorf("Expected extent 5, got %v", st.extent)
	}
	if got, _ := m.Moles(a); got != 5 {
		t.Errorf("Expected 5 alpha left, got %v", got)
	}
	if got, _ := m.Moles(b); got != 30 {
		t.Errorf("Expected 30 beta left, got %v", got)
	}
	if got, _ := m.Moles(g); got != 5 {
		t.Errorf("Expected 5 gamma produced, got %v", got)
	}
}

func TestMoleConversion_FixedIsCappedByReactants(t *testing.T) {
	a, _, g := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{2}, 300)

	conv := MoleConversion{
		Reactants: []Stoich{{Species: a, Coefficient: 1}},
		Products:  []Stoich{{Species: g, Coefficient: 1}},
		Fixed:     5,
	}
	st := &effectState{}
	if err := conv.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if st.extent != 2 {
		t.Errorf("Expected extent capped at 2, got %v", st.extent)
	}
	if m.GasExists(a) {
		t.Error("Expected alpha to be exhausted")
	}
}

func TestMoleConversion_RepeatedReactantConservesMoles(t *testing.T) {
	a, b, _ := testSpecies()
	tests := []struct {
		name      string
		reactants []Stoich
		fraction  float64
		fixed     float64
		wantExt   float64
	}{
		{"split coefficient, full fraction", []Stoich{{Species: a, Coefficient: 1}, {Species: a, Coefficient: 1}}, 1, 0, 5},
		{"split coefficient, fixed", []Stoich{{Species: a, Coefficient: 1}, {Species: a, Coefficient: 1}}, 0, 8, 5},
		{"uneven split", []Stoich{{Species: a, Coefficient: 0.5}, {Species: a, Coefficient: 1.5}}, 0.5, 0, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)
			conv := MoleConversion{
				Reactants: tt.reactants,
				Products:  []Stoich{{Species: b, Coefficient: 2}},
				Fraction:  tt.fraction,
				Fixed:     tt.fixed,
			}
			st := &effectState{}
			if err := conv.apply(m, st); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if !approxEqual(st.extent, tt.wantExt) {
				t.Errorf("Expected extent %v, got %v", tt.wantExt, st.extent)
			}
			total, _ := m.TotalMoles()
			if !approxEqual(total, 10) {
				t.Errorf("Expected 10 mol in total, got %v (%s)", total, m)
			}
			left, _ := m.Moles(a)
			if !approxEqual(left, 10-2*tt.wantExt) {
				t.Errorf("Expected %v alpha left, got %v", 10-2*tt.wantExt, left)
			}
		})
	}
}

func TestMoleConversion_NoReactantsAvailable(t *testing.T) {
	a, b, g := testSpecies()
	m := mustMixture(t, []GasSpecies{b}, []float64{5}, 300)

	conv := MoleConversion{
		Reactants: []Stoich{{Species: a, Coefficient: 1}},
		Products:  []Stoich{{Species: g, Coefficient: 1}},
		Fraction:  1,
	}
	st := &effectState{extent: 7}
	if err := conv.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if st.extent != 0 {
		t.Errorf("Expected extent 0, got %v", st.extent)
	}
	if m.GasExistsID(g.ID) {
		t.Error("Expected no product without reactants")
	}
}

func TestMoleConversion_UnboundedFractionDoesNothing(t *testing.T) {
	_, _, g := testSpecies()
	m := NewEmptyMixture(300, CellStdVolume)

	conv := MoleConversion{Products: []Stoich{{Species: g, Coefficient: 1}}, Fraction: 1}
	st := &effectState{}
	if err := conv.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !m.IsEmpty() || st.extent != 0 {
		t.Error("Expected a fraction of an unbounded extent to do nothing")
	}

	fixed := MoleConversion{Products: []Stoich{{Species: g, Coefficient: 2}}, Fixed: 3}
	if err := fixed.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got, _ := m.Moles(g); got != 6 {
		t.Errorf("Expected fixed source conversion to produce 6, got %v", got)
	}
}

func TestEnergyDelta(t *testing.T) {
	a, _, _ := testSpecies()

	t.Run("heats by delta over heat capacity", func(t *testing.T) {
		m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)
		st := &effectState{extent: 2}
		d := EnergyDelta{Joules: 1000, PerExtent: 500}
		if err := d.apply(m, st); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		// 2000 J over 200 J/K
		if !approxEqual(m.Temperature, 310) {
			t.Errorf("Expected temperature 310, got %v", m.Temperature)
		}
		if st.energy != 2000 {
			t.Errorf("Expected recorded energy 2000, got %v", st.energy)
		}
	})

	t.Run("never drops below TCMB", func(t *testing.T) {
		m := mustMixture(t, []GasSpecies{a}, []float64{1}, 10)
		if err := (EnergyDelta{Joules: -1e9}).apply(m, &effectState{}); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if m.Temperature != TCMB {
			t.Errorf("Expected temperature floored at %v, got %v", TCMB, m.Temperature)
		}
	})

	t.Run("zero delta is a no-op on any mixture", func(t *testing.T) {
		m := NewEmptyMixture(300, CellStdVolume)
		if err := (EnergyDelta{PerExtent: 100}).apply(m, &effectState{}); err != nil {
			t.Errorf("Expected no error for zero delta, got %v", err)
		}
	})

	t.Run("empty mixture violates invariant", func(t *testing.T) {
		m := NewEmptyMixture(300, CellStdVolume)
		err := (EnergyDelta{Joules: 10}).apply(m, &effectState{ruleID: "heat"})
		var inv *ReactionInvariantError
		if !errors.As(err, &inv) || inv.RuleID != "heat" {
			t.Errorf("Expected ReactionInvariantError for rule heat, got %v", err)
		}
	})

	t.Run("zero heat capacity violates invariant", func(t *testing.T) {
		m := NewEmptyMixture(300, CellStdVolume)
		m.AssertGas(a)
		err := (EnergyDelta{Joules: 10}).apply(m, &effectState{})
		if !errors.Is(err, ErrReactionInvariant) {
			t.Errorf("Expected ErrReactionInvariant, got %v", err)
		}
	})
}

func TestEmit(t *testing.T) {
	st := &effectState{ruleID: "burn", extent: 4}
	if err := (Emit{Signal: SignalFire, Amount: 1, PerExtent: 2}).apply(nil, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(st.signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(st.signals))
	}
	sig := st.signals[0]
	if sig.Kind != SignalFire || sig.RuleID != "burn" || sig.Amount != 9 {
		t.Errorf("Unexpected signal %+v", sig)
	}

	st.extent = 0
	if err := (Emit{Signal: SignalRadiation, PerExtent: 10}).apply(nil, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(st.signals) != 1 {
		t.Error("Expected no signal for a zero amount")
	}
}

func TestComposite_OrderAndStop(t *testing.T) {
	a, _, g := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)

	eff := Sequence(
		MoleConversion{
			Reactants: []Stoich{{Species: a, Coefficient: 1}},
			Products:  []Stoich{{Species: g, Coefficient: 1}},
			Fraction:  0.5,
		},
		EnergyDelta{PerExtent: 100},
		Emit{Signal: SignalResearch, PerExtent: 1},
	)
	st := &effectState{ruleID: "seq"}
	if err := eff.apply(m, st); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if st.extent != 5 || st.energy != 500 {
		t.Errorf("Expected extent 5 and energy 500, got %v and %v", st.extent, st.energy)
	}
	if len(st.signals) != 1 || st.signals[0].Amount != 5 {
		t.Errorf("Expected research signal of 5, got %+v", st.signals)
	}

	empty := NewEmptyMixture(300, CellStdVolume)
	failing := Sequence(EnergyDelta{Joules: 1}, Emit{Signal: SignalFire, Amount: 1})
	st = &effectState{}
	if err := failing.apply(empty, st); err == nil {
		t.Fatal("Expected error from energy delta on empty mixture")
	}
	if len(st.signals) != 0 {
		t.Error("Expected composite to stop at the first error")
	}
}

func TestEffect_KindAndString(t *testing.T) {
	a, _, g := testSpecies()
	tests := []struct {
		effect Effect
		kind   EffectKind
		substr string
	}{
		{MoleConversion{Reactants: []Stoich{{Species: a, Coefficient: 2}}, Products: []Stoich{{Species: g, Coefficient: 1}}, Fraction: 0.5}, EffectMoleConversion, "2 alpha -> 1 gamma"},
		{MoleConversion{Fixed: 3}, EffectMoleConversion, "fixed 3"},
		{EnergyDelta{Joules: 5}, EffectEnergyDelta, "5 J"},
		{Emit{Signal: SignalFire, Amount: 1}, EffectEmit, "fire"},
		{Sequence(EnergyDelta{}, Emit{Signal: SignalFire}), EffectComposite, "; emit("},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.effect.Kind() != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, tt.effect.Kind())
			}
			if !strings.Contains(tt.effect.String(), tt.substr) {
				t.Errorf("Expected %q in %q", tt.substr, tt.effect.String())
			}
		})
	}
}

func TestMoleConversion_NeverNegative(t *testing.T) {
	a, b, g := testSpecies()
	m := mustMixture(t, []GasSpecies{a, b}, []float64{0.3, 1}, 300)
	conv := MoleConversion{
		Reactants: []Stoich{{Species: a, Coefficient: 3}, {Species: b, Coefficient: 1}},
		Products:  []Stoich{{Species: g, Coefficient: 1}},
		Fraction:  1,
	}
	if err := conv.apply(m, &effectState{}); err != nil {
		t.Fatal(err)
	}
	for _, id := range m.Gases() {
		if moles := m.gases[id].moles; moles < 0 || math.IsNaN(moles) {
			t.Errorf("Expected non-negative moles for %s, got %v", id, moles)
		}
	}
}
