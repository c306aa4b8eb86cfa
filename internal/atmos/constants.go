package atmos

// Generic atmospherics constants.
const (
	// RIdealGasEquation is the ideal gas constant used for pressure, in kPa·L/(mol·K).
	RIdealGasEquation = 8.31
	// OneAtmosphere is standard pressure in kPa.
	OneAtmosphere = 101.325
	// TCMB is the temperature of the cosmic microwave background, the floor
	// any mixture can be cooled to.
	TCMB = 2.7
	// T0C is 0 degrees Celsius in Kelvin.
	T0C = 273.15
	// T20C is room temperature in Kelvin.
	T20C = 293.15

	// MinimumTempDelta is the smallest temperature difference Merge acts on.
	MinimumTempDelta = 0.5
	// MinimumMoleCount is the smallest amount of a gas that counts for reactions.
	MinimumMoleCount = 0.01
)

// Volumes of common containers, in liters.
const (
	TankVolume     = 70.0
	CanisterVolume = 1000.0
	CellStdVolume  = 2500.0
	PipeStdVolume  = 200.0
)

// Reaction constants used by the standard rule set.
const (
	FireMinimumTemperatureToExist = 100 + T0C
	PlasmaMinimumBurnTemperature  = 100 + T0C

	OxygenBurnRateBase         = 1.4
	PlasmaBurnRateDelta        = 9
	FirePlasmaEnergyReleased   = 3_000_000
	FireCarbonEnergyReleased   = 100_000
	FireHydrogenEnergyReleased = 280_000
	TritiumBurnTritFactor      = 10
	TritiumBurnRadioactivity   = 50_000
	TritiumMinimumRadiation    = 0.1
	N2ODecompositionMinEnergy  = 1400
	N2ODecompositionEnergy     = 200_000
	NitrylFormationEnergy      = 100_000
	StimulumHeatScale          = 100_000
	NobliumFormationEnergy     = 2_000_000_000
	NobliumResearchAmount      = 1000
	BZResearchScale            = 4
	MiasmaResearchAmount       = 40
	StimulumResearchAmount     = 50
	MiasmaSterilizationTemp    = 170 + T0C

	FusionEnergyThreshold      = 3_000_000_000
	FusionMoleThreshold        = 250
	FusionTemperatureThreshold = 10_000
	FusionTritiumMolesUsed     = 1
	PlasmaBindingEnergy        = 20_000_000
	FusionRadMax               = 2000
)
