package main

import "github.com/daniacca/atmosdb/internal/atmos"

const scrubberRuleID = "co2_scrubber"

// newScrubberRule splits carbon dioxide back into oxygen once enough of it
// builds up. It runs after every standard reaction and cools the mixture a
// little for each mole it processes.
func newScrubberRule(catalog *atmos.Catalog) atmos.ReactionRule {
	co2 := catalog.MustLookup(atmos.CarbonDioxide)
	o2 := catalog.MustLookup(atmos.Oxygen)
	return atmos.ReactionRule{
		ID:       scrubberRuleID,
		Name:     "CO2 scrubbing",
		Priority: 100,
		Requirements: atmos.Requirements{
			atmos.RequirementKey(atmos.CarbonDioxide): 5,
		},
		Effect: atmos.Sequence(
			atmos.MoleConversion{
				Reactants: []atmos.Stoich{{Species: co2, Coefficient: 1}},
				Products:  []atmos.Stoich{{Species: o2, Coefficient: 1}},
				Fraction:  0.25,
			},
			atmos.EnergyDelta{PerExtent: -200},
		),
	}
}
