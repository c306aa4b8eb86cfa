package atmos

import (
	"slices"
	"testing"
)

func standardMixture(t *testing.T, catalog *Catalog, temp float64, moles map[SpeciesID]float64) *GasMixture {
	t.Helper()
	m := NewEmptyMixture(temp, CellStdVolume)
	for id, n := range moles {
		m.AssertGas(catalog.MustLookup(id))
		if err := m.ChangeMoles(catalog.MustLookup(id), n); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestStandardRules_Registry(t *testing.T) {
	catalog := StandardCatalog()
	e, err := StandardEngine(catalog, nil)
	if err != nil {
		t.Fatalf("StandardEngine failed: %v", err)
	}

	var ids []string
	for _, r := range e.Rules() {
		ids = append(ids, r.ID)
	}
	want := []string{
		RuleFusion, RuleNobliumFormation, RuleStimulumFormation, RuleBZFormation, RuleNitrylFormation,
		RuleN2ODecomposition, RuleTritiumFire, RulePlasmaFire, RuleMiasmaSterilization,
	}
	if !slices.Equal(ids, want) {
		t.Errorf("Expected order %v, got %v", want, ids)
	}
}

func TestStandardRules_PlasmaFire(t *testing.T) {
	catalog := StandardCatalog()
	e, _ := StandardEngine(catalog, nil)

	m := standardMixture(t, catalog, 500, map[SpeciesID]float64{
		Plasma: 90,
		Oxygen: 140,
	})
	res, err := e.Apply(m)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !slices.Equal(res.FiredIDs(), []string{RulePlasmaFire}) {
		t.Fatalf("Expected only plasma fire, got %v", res.FiredIDs())
	}

	// limit = min(90/1, 140/1.4) = 90, extent = 10
	fired := res.Fired[0]
	if !approxEqual(fired.Extent, 10) {
		t.Errorf("Expected extent 10, got %v", fired.Extent)
	}
	if got, _ := m.MolesID(Plasma); !approxEqual(got, 80) {
		t.Errorf("Expected 80 plasma left, got %v", got)
	}
	if got, _ := m.MolesID(Oxygen); !approxEqual(got, 126) {
		t.Errorf("Expected 126 oxygen left, got %v", got)
	}
	if got, _ := m.MolesID(CarbonDioxide); !approxEqual(got, 10) {
		t.Errorf("Expected 10 co2, got %v", got)
	}
	if m.Temperature <= 500 {
		t.Errorf("Expected the fire to heat the mixture, got %v", m.Temperature)
	}
	if !approxEqual(res.EnergyReleased, 10*FirePlasmaEnergyReleased) {
		t.Errorf("Expected %v J released, got %v", 10*FirePlasmaEnergyReleased, res.EnergyReleased)
	}
	if len(res.Signals) != 1 || res.Signals[0].Kind != SignalFire {
		t.Errorf("Expected one fire signal, got %+v", res.Signals)
	}
}

func TestStandardRules_ColdMixtureIsInert(t *testing.T) {
	catalog := StandardCatalog()
	e, _ := StandardEngine(catalog, nil)

	m := standardMixture(t, catalog, T20C, map[SpeciesID]float64{
		Oxygen:   21,
		Nitrogen: 79,
		Plasma:   5,
	})
	before := m.Copy()
	res, err := e.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fired) != 0 || !m.Equal(before) {
		t.Errorf("Expected no reaction at room temperature, got %v", res.FiredIDs())
	}
}

func TestStandardRules_N2ODecomposition(t *testing.T) {
	catalog := StandardCatalog()
	e, _ := StandardEngine(catalog, nil)

	m := standardMixture(t, catalog, 1500, map[SpeciesID]float64{NitrousOxide: 20})
	res, err := e.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.FiredIDs(), []string{RuleN2ODecomposition}) {
		t.Fatalf("Expected decomposition only, got %v", res.FiredIDs())
	}
	n2o, _ := m.MolesID(NitrousOxide)
	n2, _ := m.MolesID(Nitrogen)
	o2, _ := m.MolesID(Oxygen)
	if !approxEqual(n2o, 10) || !approxEqual(n2, 10) || !approxEqual(o2, 5) {
		t.Errorf("Expected 10/10/5 n2o/n2/o2, got %v/%v/%v", n2o, n2, o2)
	}
}

func TestStandardRules_Fusion(t *testing.T) {
	catalog := StandardCatalog()
	e, _ := StandardEngine(catalog, nil)

	m := standardMixture(t, catalog, 60000, map[SpeciesID]float64{
		Plasma:  300,
		Tritium: 300,
	})
	res, err := e.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if ids := res.FiredIDs(); len(ids) == 0 || ids[0] != RuleFusion {
		t.Fatalf("Expected fusion to fire first, got %v", ids)
	}
	if res.Fired[0].Extent != 1 {
		t.Errorf("Expected fusion extent 1, got %v", res.Fired[0].Extent)
	}
	var radiation float64
	for _, s := range res.Signals {
		if s.Kind == SignalRadiation && s.RuleID == RuleFusion {
			radiation += s.Amount
		}
	}
	if radiation != FusionRadMax {
		t.Errorf("Expected %v radiation from fusion, got %v", FusionRadMax, radiation)
	}
}

func TestStandardRules_Sterilization(t *testing.T) {
	catalog := StandardCatalog()
	e, _ := StandardEngine(catalog, nil)

	m := standardMixture(t, catalog, MiasmaSterilizationTemp, map[SpeciesID]float64{Miasma: 10})
	res, err := e.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.FiredIDs(), []string{RuleMiasmaSterilization}) {
		t.Fatalf("Expected sterilization only, got %v", res.FiredIDs())
	}
	if got, _ := m.MolesID(Oxygen); !approxEqual(got, 5) {
		t.Errorf("Expected 5 oxygen, got %v", got)
	}
	total, _ := m.TotalMoles()
	if !approxEqual(total, 10) {
		t.Errorf("Expected moles conserved at 10, got %v", total)
	}
}
