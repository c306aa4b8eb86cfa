package atmos

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func testSpecies() (GasSpecies, GasSpecies, GasSpecies) {
	return GasSpecies{ID: "alpha", Name: "Alpha", SpecificHeat: 20},
		GasSpecies{ID: "beta", Name: "Beta", SpecificHeat: 20},
		GasSpecies{ID: "gamma", Name: "Gamma", SpecificHeat: 200}
}

func mustMixture(t *testing.T, species []GasSpecies, moles []float64, temp float64) *GasMixture {
	t.Helper()
	m, err := NewMixture(species, moles, temp, CellStdVolume)
	if err != nil {
		t.Fatalf("NewMixture failed: %v", err)
	}
	return m
}

func TestNewMixture_RoundTrip(t *testing.T) {
	a, b, g := testSpecies()
	species := []GasSpecies{a, b, g}
	moles := []float64{50, 100, 0}
	m := mustMixture(t, species, moles, T20C)

	for i, sp := range species {
		got, ok := m.Moles(sp)
		if moles[i] > 0 {
			if !ok || got != moles[i] {
				t.Errorf("Expected %v moles of %s, got %v (ok=%v)", moles[i], sp.ID, got, ok)
			}
		} else if ok {
			t.Errorf("Expected zero-mole %s to read as absent", sp.ID)
		}
	}
}

func TestNewMixture_LengthMismatch(t *testing.T) {
	a, b, _ := testSpecies()
	_, err := NewMixture([]GasSpecies{a, b}, []float64{1}, T20C, CellStdVolume)
	if !errors.Is(err, ErrVectorLengthMismatch) {
		t.Fatalf("Expected ErrVectorLengthMismatch, got %v", err)
	}
	var mismatch *VectorLengthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatal("Expected *VectorLengthMismatchError")
	}
	if mismatch.GasLength != 2 || mismatch.MoleLength != 1 {
		t.Errorf("Expected lengths 2/1, got %d/%d", mismatch.GasLength, mismatch.MoleLength)
	}
}

func TestMixture_Aggregates(t *testing.T) {
	a, b, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a, b}, []float64{50, 100}, 100)

	hc, err := m.HeatCapacity()
	if err != nil || hc != 3000 {
		t.Errorf("Expected heat capacity 3000, got %v (err=%v)", hc, err)
	}
	thermal, err := m.ThermalEnergy()
	if err != nil || thermal != 300000 {
		t.Errorf("Expected thermal energy 300000, got %v (err=%v)", thermal, err)
	}
	total, err := m.TotalMoles()
	if err != nil || total != 150 {
		t.Errorf("Expected 150 total moles, got %v (err=%v)", total, err)
	}
	pressure, err := m.Pressure()
	want := 150 * RIdealGasEquation * 100 / CellStdVolume
	if err != nil || !approxEqual(pressure, want) {
		t.Errorf("Expected pressure %v, got %v (err=%v)", want, pressure, err)
	}
}

func TestMixture_AggregatesOnEmpty(t *testing.T) {
	m := NewEmptyMixture(T20C, CellStdVolume)

	checks := map[string]func() (float64, error){
		"TotalMoles":    m.TotalMoles,
		"HeatCapacity":  m.HeatCapacity,
		"ThermalEnergy": m.ThermalEnergy,
		"Pressure":      m.Pressure,
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if _, err := fn(); !errors.Is(err, ErrGasMixtureEmpty) {
				t.Errorf("Expected ErrGasMixtureEmpty, got %v", err)
			}
		})
	}
}

func TestMixture_ZeroMoleEntryIsNotEmpty(t *testing.T) {
	a, _, _ := testSpecies()
	m := NewEmptyMixture(T20C, CellStdVolume)
	m.AssertGas(a)

	if m.IsEmpty() {
		t.Error("Expected mixture with an asserted gas to be non-empty")
	}
	total, err := m.TotalMoles()
	if err != nil || total != 0 {
		t.Errorf("Expected 0 total moles without error, got %v (err=%v)", total, err)
	}
}

func TestMixture_AssertGas(t *testing.T) {
	a, _, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, T20C)

	if !m.AssertGas(a) {
		t.Error("Expected AssertGas to report the existing entry")
	}
	if got, _ := m.Moles(a); got != 10 {
		t.Errorf("AssertGas overwrote moles: got %v", got)
	}
}

func TestMixture_ChangeMolesVersusMolesGate(t *testing.T) {
	a, b, _ := testSpecies()
	m := NewEmptyMixture(T20C, CellStdVolume)

	// never asserted: both gates fail
	if err := m.ChangeMoles(a, 5); !errors.Is(err, ErrGasNotFound) {
		t.Errorf("Expected ErrGasNotFound for unasserted gas, got %v", err)
	}
	if _, ok := m.Moles(a); ok {
		t.Error("Expected Moles to report an unasserted gas as absent")
	}

	// asserted at zero: ChangeMoles works, Moles still absent
	m.AssertGas(a)
	if m.GasExists(a) {
		t.Error("Expected zero-mole gas not to exist")
	}
	if _, ok := m.Moles(a); ok {
		t.Error("Expected Moles to report a zero-mole gas as absent")
	}
	if err := m.ChangeMoles(a, 5); err != nil {
		t.Fatalf("ChangeMoles on asserted gas failed: %v", err)
	}
	if got, ok := m.Moles(a); !ok || got != 5 {
		t.Errorf("Expected 5 moles after ChangeMoles, got %v (ok=%v)", got, ok)
	}

	// exhausted back to zero: entry remains, Moles absent, refill allowed
	if err := m.ChangeMoles(a, 0); err != nil {
		t.Fatalf("ChangeMoles to zero failed: %v", err)
	}
	if _, ok := m.Moles(a); ok {
		t.Error("Expected exhausted gas to read as absent")
	}
	if err := m.ChangeMoles(a, 1); err != nil {
		t.Errorf("Expected refill of exhausted gas to succeed, got %v", err)
	}

	var notFound *GasNotFoundError
	err := m.ChangeMoles(b, 1)
	if !errors.As(err, &notFound) || notFound.Gas != b.ID {
		t.Errorf("Expected GasNotFoundError for %s, got %v", b.ID, err)
	}
}

func TestMixture_Merge(t *testing.T) {
	a, b, g := testSpecies()
	left := mustMixture(t, []GasSpecies{a, b}, []float64{10, 20}, 300)
	right := mustMixture(t, []GasSpecies{b, g}, []float64{5, 1}, 300)

	wantA, wantB, wantG := 10.0, 25.0, 1.0
	if err := left.Merge(right); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	for sp, want := range map[GasSpecies]float64{a: wantA, b: wantB, g: wantG} {
		if got, _ := left.Moles(sp); got != want {
			t.Errorf("Expected %v moles of %s after merge, got %v", want, sp.ID, got)
		}
	}
	if !right.IsEmpty() {
		t.Error("Expected giver to be drained")
	}
	if left.Temperature != 300 {
		t.Errorf("Expected temperature unchanged for equal temperatures, got %v", left.Temperature)
	}
}

func TestMixture_MergeTemperature(t *testing.T) {
	a, _, _ := testSpecies()
	cold := mustMixture(t, []GasSpecies{a}, []float64{10}, 100)
	hot := mustMixture(t, []GasSpecies{a}, []float64{30}, 500)

	if err := cold.Merge(hot); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	// (100*200 + 500*600) / 800
	if !approxEqual(cold.Temperature, 400) {
		t.Errorf("Expected weighted temperature 400, got %v", cold.Temperature)
	}
}

func TestMixture_MergeSmallDeltaKeepsTemperature(t *testing.T) {
	a, _, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)
	other := mustMixture(t, []GasSpecies{a}, []float64{10}, 300.4)

	if err := m.Merge(other); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if m.Temperature != 300 {
		t.Errorf("Expected temperature 300 for delta below threshold, got %v", m.Temperature)
	}
}

func TestMixture_MergeErrors(t *testing.T) {
	a, _, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)

	if err := m.Merge(m); !errors.Is(err, ErrSelfMerge) {
		t.Errorf("Expected ErrSelfMerge, got %v", err)
	}
	if err := m.Merge(NewEmptyMixture(300, CellStdVolume)); !errors.Is(err, ErrGasMixtureEmpty) {
		t.Errorf("Expected ErrGasMixtureEmpty for empty giver, got %v", err)
	}
	if err := NewEmptyMixture(300, CellStdVolume).Merge(m); !errors.Is(err, ErrGasMixtureEmpty) {
		t.Errorf("Expected ErrGasMixtureEmpty for empty receiver, got %v", err)
	}
}

func TestMixture_RemoveAll(t *testing.T) {
	a, b, g := testSpecies()
	m := mustMixture(t, []GasSpecies{a, b, g}, []float64{10, 20, 30}, 300)
	original := m.Copy()

	total, _ := m.TotalMoles()
	removed, err := m.Remove(total)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	for _, sp := range []GasSpecies{a, b, g} {
		want, _ := original.Moles(sp)
		got, _ := removed.Moles(sp)
		if !approxEqual(got, want) {
			t.Errorf("Expected removed %s = %v, got %v", sp.ID, want, got)
		}
		left := m.gases[sp.ID].moles
		if math.Abs(left) > epsilon {
			t.Errorf("Expected %s drained, %v left", sp.ID, left)
		}
	}
	if removed.Temperature != m.Temperature || removed.Volume() != m.Volume() {
		t.Error("Expected removed mixture to share temperature and volume")
	}
}

func TestMixture_RemoveClampsAndValidates(t *testing.T) {
	a, _, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)

	removed, err := m.Remove(1000)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got, _ := removed.Moles(a); got != 10 {
		t.Errorf("Expected removal clamped to 10, got %v", got)
	}

	var neg *NegativeAmountError
	if _, err := m.Remove(-1); !errors.As(err, &neg) || neg.Value != -1 {
		t.Errorf("Expected NegativeAmountError(-1), got %v", err)
	}
	if _, err := NewEmptyMixture(300, CellStdVolume).Remove(1); !errors.Is(err, ErrGasMixtureEmpty) {
		t.Errorf("Expected ErrGasMixtureEmpty, got %v", err)
	}
}

func TestMixture_RemoveRejectsNaN(t *testing.T) {
	a, b, _ := testSpecies()
	tests := []struct {
		name   string
		remove func(m *GasMixture) (*GasMixture, error)
	}{
		{"amount", func(m *GasMixture) (*GasMixture, error) { return m.Remove(math.NaN()) }},
		{"ratio", func(m *GasMixture) (*GasMixture, error) { return m.RemoveRatio(math.NaN()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMixture(t, []GasSpecies{a, b}, []float64{10, 30}, 300)
			removed, err := tt.remove(m)
			if !errors.Is(err, ErrNegativeAmount) {
				t.Fatalf("Expected ErrNegativeAmount, got %v", err)
			}
			if removed != nil {
				t.Error("Expected no removed mixture")
			}
			total, _ := m.TotalMoles()
			if total != 40 {
				t.Errorf("Expected the mixture to keep 40 mol, got %v", total)
			}
		})
	}
}

func TestNewMixture_RepeatedSpeciesLastWins(t *testing.T) {
	a, b, _ := testSpecies()
	hotA := GasSpecies{ID: a.ID, Name: "Alpha (hot)", SpecificHeat: 40}
	tests := []struct {
		name      string
		species   []GasSpecies
		moles     []float64
		wantMoles float64
		wantHeat  float64
		wantGases int
	}{
		{"same species twice", []GasSpecies{a, a}, []float64{5, 7}, 7, 7 * 20, 1},
		{"zero after positive", []GasSpecies{a, b, a}, []float64{5, 1, 0}, 0, 20, 2},
		{"redefined species", []GasSpecies{a, hotA}, []float64{5, 3}, 3, 3 * 40, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMixture(t, tt.species, tt.moles, 300)
			got, _ := m.MolesID(a.ID)
			if got != tt.wantMoles {
				t.Errorf("Expected %v moles of %s, got %v", tt.wantMoles, a.ID, got)
			}
			if hc, _ := m.HeatCapacity(); !approxEqual(hc, tt.wantHeat) {
				t.Errorf("Expected heat capacity %v, got %v", tt.wantHeat, hc)
			}
			if n := len(m.Gases()); n != tt.wantGases {
				t.Errorf("Expected %d gases, got %d", tt.wantGases, n)
			}
		})
	}
}

func TestMixture_SpeciesIdentityIsByID(t *testing.T) {
	first, err := NewCatalog(GasSpecies{ID: "x", Name: "X", SpecificHeat: 10})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	second, err := NewCatalog(GasSpecies{ID: "x", Name: "X", SpecificHeat: 10})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	x1, x2 := first.MustLookup("x"), second.MustLookup("x")

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"moles", func(t *testing.T) {
			m := mustMixture(t, []GasSpecies{x1}, []float64{4}, 300)
			if got, ok := m.Moles(x2); !ok || got != 4 {
				t.Errorf("Expected 4 moles through the second catalog, got %v (ok=%v)", got, ok)
			}
			if !m.GasExists(x2) {
				t.Error("Expected GasExists through the second catalog")
			}
		}},
		{"change moles", func(t *testing.T) {
			m := mustMixture(t, []GasSpecies{x1}, []float64{4}, 300)
			if err := m.ChangeMoles(x2, 9); err != nil {
				t.Fatalf("ChangeMoles: %v", err)
			}
			if got, _ := m.Moles(x1); got != 9 {
				t.Errorf("Expected 9 moles, got %v", got)
			}
		}},
		{"merge", func(t *testing.T) {
			m := mustMixture(t, []GasSpecies{x1}, []float64{4}, 300)
			giver := mustMixture(t, []GasSpecies{x2}, []float64{6}, 300)
			if err := m.Merge(giver); err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if n := len(m.Gases()); n != 1 {
				t.Errorf("Expected one gas entry, got %d", n)
			}
			if got, _ := m.Moles(x1); got != 10 {
				t.Errorf("Expected 10 moles, got %v", got)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestMixture_RemoveRatio(t *testing.T) {
	a, b, _ := testSpecies()

	t.Run("preserves proportions", func(t *testing.T) {
		m := mustMixture(t, []GasSpecies{a, b}, []float64{30, 10}, 300)
		removed, err := m.RemoveRatio(0.25)
		if err != nil {
			t.Fatalf("RemoveRatio failed: %v", err)
		}
		ra, _ := removed.Moles(a)
		rb, _ := removed.Moles(b)
		la, _ := m.Moles(a)
		lb, _ := m.Moles(b)
		if !approxEqual(ra, 7.5) || !approxEqual(rb, 2.5) {
			t.Errorf("Expected removed 7.5/2.5, got %v/%v", ra, rb)
		}
		if !approxEqual(ra/rb, 3) || !approxEqual(la/lb, 3) {
			t.Errorf("Expected 3:1 ratio preserved, got %v and %v", ra/rb, la/lb)
		}
	})

	t.Run("full ratio equals removing the total", func(t *testing.T) {
		byRatio := mustMixture(t, []GasSpecies{a, b}, []float64{30, 10}, 300)
		byAmount := byRatio.Copy()

		r1, err := byRatio.RemoveRatio(1.0)
		if err != nil {
			t.Fatalf("RemoveRatio failed: %v", err)
		}
		total, _ := byAmount.TotalMoles()
		r2, err := byAmount.Remove(total)
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		for _, sp := range []GasSpecies{a, b} {
			m1, _ := r1.Moles(sp)
			m2, _ := r2.Moles(sp)
			if !approxEqual(m1, m2) {
				t.Errorf("Expected %s %v == %v", sp.ID, m1, m2)
			}
		}
	})

	t.Run("clamps above one", func(t *testing.T) {
		m := mustMixture(t, []GasSpecies{a}, []float64{8}, 300)
		removed, err := m.RemoveRatio(3)
		if err != nil {
			t.Fatalf("RemoveRatio failed: %v", err)
		}
		if got, _ := removed.Moles(a); got != 8 {
			t.Errorf("Expected 8 removed, got %v", got)
		}
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		m := mustMixture(t, []GasSpecies{a}, []float64{8}, 300)
		for _, ratio := range []float64{0, -0.5} {
			if _, err := m.RemoveRatio(ratio); !errors.Is(err, ErrNegativeAmount) {
				t.Errorf("Expected ErrNegativeAmount for ratio %v, got %v", ratio, err)
			}
		}
	})
}

func TestMixture_CopyIsIndependent(t *testing.T) {
	a, _, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{a}, []float64{10}, 300)
	c := m.Copy()

	if !m.Equal(c) {
		t.Fatal("Expected copy to equal original")
	}
	if err := c.ChangeMoles(a, 99); err != nil {
		t.Fatal(err)
	}
	c.Temperature = 1
	if got, _ := m.Moles(a); got != 10 || m.Temperature != 300 {
		t.Error("Modifying the copy changed the original")
	}
	if m.Equal(c) {
		t.Error("Expected modified copy to differ")
	}
}

func TestMixture_String(t *testing.T) {
	a, b, _ := testSpecies()
	m := mustMixture(t, []GasSpecies{b, a}, []float64{2, 1.5}, 300)
	want := "t:300,v:2500,g:alpha:1.5,beta:2,"
	if got := m.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
