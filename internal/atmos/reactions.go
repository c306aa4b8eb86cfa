package atmos

// Standard rule ids.
const (
	RuleFusion              = "fusion"
	RuleNobliumFormation    = "nobformation"
	RuleStimulumFormation   = "stimformation"
	RuleBZFormation         = "bzformation"
	RuleNitrylFormation     = "nitrylformation"
	RuleN2ODecomposition    = "n2odecomp"
	RuleTritiumFire         = "tritfire"
	RulePlasmaFire          = "plasmafire"
	RuleMiasmaSterilization = "sterilization"
)

// StandardRules returns the station reaction set resolved against catalog,
// which must hold the StandardSpecies ids.
func StandardRules(catalog *Catalog) []ReactionRule {
	gas := catalog.MustLookup
	term := func(id SpeciesID, coefficient float64) Stoich {
		return Stoich{Species: gas(id), Coefficient: coefficient}
	}
	req := func(id SpeciesID) RequirementKey { return RequirementKey(id) }

	return []ReactionRule{
		{
			// Fusion destroys one mole per unit of extent: its mass turns into heat and radiation.
			ID:       RuleFusion,
			Name:     "Plasmic Fusion",
			Priority: 0,
			Requirements: Requirements{
				RequireTemperature:   FusionTemperatureThreshold,
				RequireThermalEnergy: FusionEnergyThreshold,
				req(Plasma):          FusionMoleThreshold,
				req(Tritium):         FusionMoleThreshold,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Tritium, FusionTritiumMolesUsed), term(Plasma, 1)},
					Products:  []Stoich{term(CarbonDioxide, 1)},
					Fixed:     1,
				},
				EnergyDelta{PerExtent: PlasmaBindingEnergy},
				Emit{Signal: SignalRadiation, PerExtent: FusionRadMax},
			),
		},
		{
			ID:       RuleNobliumFormation,
			Name:     "Hyper-Noblium condensation",
			Priority: 1,
			Requirements: Requirements{
				RequireThermalEnergy: NobliumFormationEnergy,
				req(Nitrogen):        10,
				req(Tritium):         5,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Tritium, 10), term(Nitrogen, 20)},
					Products:  []Stoich{term(HyperNoblium, 1)},
					Fraction:  1,
				},
				EnergyDelta{PerExtent: -NobliumFormationEnergy / 100},
				Emit{Signal: SignalResearch, PerExtent: NobliumResearchAmount},
			),
		},
		{
			ID:       RuleStimulumFormation,
			Name:     "Stimulum formation",
			Priority: 2,
			Requirements: Requirements{
				RequireTemperature: StimulumHeatScale / 2,
				req(Tritium):       30,
				req(Plasma):        10,
				req(BZ):            20,
				req(Nitryl):        30,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Tritium, 1), term(Plasma, 1), term(Nitryl, 1)},
					Products:  []Stoich{term(Stimulum, 1)},
					Fraction:  0.1,
				},
				EnergyDelta{PerExtent: -StimulumHeatScale},
				Emit{Signal: SignalResearch, PerExtent: StimulumResearchAmount},
			),
		},
		{
			ID:       RuleBZFormation,
			Name:     "BZ Gas formation",
			Priority: 3,
			Requirements: Requirements{
				req(NitrousOxide): 10,
				req(Plasma):       10,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(NitrousOxide, 1), term(Plasma, 2)},
					Products:  []Stoich{term(BZ, 1), term(Oxygen, 1)},
					Fraction:  0.1,
				},
				EnergyDelta{PerExtent: FireCarbonEnergyReleased},
				Emit{Signal: SignalResearch, PerExtent: BZResearchScale},
			),
		},
		{
			ID:       RuleNitrylFormation,
			Name:     "Nitryl formation",
			Priority: 4,
			Requirements: Requirements{
				RequireTemperature: FireMinimumTemperatureToExist * 60,
				req(Oxygen):        20,
				req(Nitrogen):      20,
				req(NitrousOxide):  5,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Oxygen, 1), term(Nitrogen, 1)},
					Products:  []Stoich{term(Nitryl, 2)},
					Fraction:  0.05,
				},
				EnergyDelta{PerExtent: -NitrylFormationEnergy},
			),
		},
		{
			// Decomposition gains half a mole per unit of extent.
			ID:       RuleN2ODecomposition,
			Name:     "Nitrous Oxide Decomposition",
			Priority: 5,
			Requirements: Requirements{
				RequireTemperature: N2ODecompositionMinEnergy,
				req(NitrousOxide):  MinimumMoleCount,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(NitrousOxide, 1)},
					Products:  []Stoich{term(Nitrogen, 1), term(Oxygen, 0.5)},
					Fraction:  0.5,
				},
				EnergyDelta{PerExtent: N2ODecompositionEnergy},
			),
		},
		{
			ID:       RuleTritiumFire,
			Name:     "Tritium Combustion",
			Priority: 6,
			Requirements: Requirements{
				RequireTemperature: FireMinimumTemperatureToExist,
				req(Tritium):       MinimumMoleCount,
				req(Oxygen):        MinimumMoleCount,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Tritium, 1), term(Oxygen, 0.5)},
					Products:  []Stoich{term(WaterVapor, 1)},
					Fraction:  1.0 / TritiumBurnTritFactor,
				},
				EnergyDelta{PerExtent: FireHydrogenEnergyReleased},
				Emit{Signal: SignalRadiation, PerExtent: TritiumBurnRadioactivity},
				Emit{Signal: SignalFire, PerExtent: 1},
			),
		},
		{
			ID:       RulePlasmaFire,
			Name:     "Plasma Combustion",
			Priority: 7,
			Requirements: Requirements{
				RequireTemperature: PlasmaMinimumBurnTemperature,
				req(Plasma):        MinimumMoleCount,
				req(Oxygen):        MinimumMoleCount,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Plasma, 1), term(Oxygen, OxygenBurnRateBase)},
					Products:  []Stoich{term(CarbonDioxide, 1), term(WaterVapor, 0.25)},
					Fraction:  1.0 / PlasmaBurnRateDelta,
				},
				EnergyDelta{PerExtent: FirePlasmaEnergyReleased},
				Emit{Signal: SignalFire, PerExtent: 1},
			),
		},
		{
			ID:       RuleMiasmaSterilization,
			Name:     "Dry Heat Sterilization",
			Priority: 8,
			Requirements: Requirements{
				RequireTemperature: MiasmaSterilizationTemp,
				req(Miasma):        MinimumMoleCount,
			},
			Effect: Sequence(
				MoleConversion{
					Reactants: []Stoich{term(Miasma, 1)},
					Products:  []Stoich{term(Oxygen, 1)},
					Fraction:  0.5,
				},
				Emit{Signal: SignalResearch, PerExtent: MiasmaResearchAmount},
			),
		},
	}
}

// StandardEngine builds an engine with StandardRules over catalog.
func StandardEngine(catalog *Catalog, logger Logger) (*Engine, error) {
	return NewEngineWithLogger(logger, StandardRules(catalog)...)
}
