package atmos

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid ruleset: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "ruleset validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

var validEffectTypes = map[string]bool{
	string(EffectMoleConversion): true,
	string(EffectEnergyDelta):    true,
	string(EffectEmit):           true,
	string(EffectComposite):      true,
}

// ValidateRulesetConfig performs comprehensive validation of a RulesetConfig
func ValidateRulesetConfig(cfg RulesetConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("ruleset name is required")
	}

	// Known species, including the standard table when requested
	speciesMap := make(map[string]bool)
	if cfg.StandardSpecies {
		for _, sp := range StandardSpecies() {
			speciesMap[string(sp.ID)] = true
		}
	}

	for i, sp := range cfg.Species {
		if sp.ID == "" {
			err.Add(fmt.Sprintf("species at index %d: id is required", i))
			continue
		}
		if RequirementKey(sp.ID).Reserved() {
			err.Add("species id '" + sp.ID + "' is a reserved requirement key")
		}
		if sp.SpecificHeat <= 0 {
			err.Add("species '" + sp.ID + "': specific heat must be positive")
		}
		if speciesMap[sp.ID] {
			err.Add("duplicate species id: " + sp.ID)
		} else {
			speciesMap[sp.ID] = true
		}
	}

	if cfg.StandardRules && !cfg.StandardSpecies {
		err.Add("standard rules require standard species")
	}

	ruleIDs := make(map[string]bool)
	if cfg.StandardRules {
		for _, id := range []string{
			RuleFusion, RuleNobliumFormation, RuleStimulumFormation, RuleBZFormation, RuleNitrylFormation,
			RuleN2ODecomposition, RuleTritiumFire, RulePlasmaFire, RuleMiasmaSterilization,
		} {
			ruleIDs[id] = true
		}
	}

	for i, rc := range cfg.Rules {
		rulePrefix := fmt.Sprintf("rule at index %d", i)
		if rc.ID != "" {
			rulePrefix = "rule '" + rc.ID + "'"
		}

		if rc.ID == "" {
			err.Add(rulePrefix + ": rule ID is required")
		} else if ruleIDs[rc.ID] {
			err.Add("duplicate rule ID: " + rc.ID)
		} else {
			ruleIDs[rc.ID] = true
		}

		for _, key := range slices.Sorted(maps.Keys(rc.Requirements)) {
			threshold := rc.Requirements[key]
			if !RequirementKey(key).Reserved() && !speciesMap[key] {
				err.Add(rulePrefix + ": requirement on unknown gas '" + key + "'")
			}
			if threshold < 0 {
				err.Add(rulePrefix + ": requirement '" + key + "' must not be negative")
			}
		}

		validateEffect(rc.Effect, rulePrefix+" effect", speciesMap, err)

		if rc.Notify != nil && rc.Notify.Enabled && len(rc.Notify.Notifiers) == 0 {
			err.Add(rulePrefix + ": notifications enabled but no notifiers listed")
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

// validateEffect recursively validates an effect
func validateEffect(eff EffectConfig, prefix string, speciesMap map[string]bool, err *ValidationError) {
	if !validEffectTypes[eff.Type] {
		err.Add(prefix + ": invalid type '" + eff.Type + "', must be one of: convert, energy, emit, composite")
		return
	}

	switch EffectKind(eff.Type) {
	case EffectMoleConversion:
		if len(eff.Reactants) == 0 && eff.Fixed <= 0 {
			err.Add(prefix + ": conversion without reactants needs a fixed extent")
		}
		if eff.Fixed < 0 || eff.Fraction < 0 || eff.Fraction > 1 {
			err.Add(prefix + ": fixed must be >= 0 and fraction within [0, 1]")
		}
		if eff.Fixed == 0 && eff.Fraction == 0 {
			err.Add(prefix + ": conversion needs a fixed extent or a fraction")
		}
		validateTerms(eff.Reactants, prefix+" reactant", speciesMap, err)
		validateTerms(eff.Products, prefix+" product", speciesMap, err)
	case EffectEmit:
		if eff.Signal == "" {
			err.Add(prefix + ": emit signal is required")
		}
	case EffectComposite:
		if len(eff.Effects) == 0 {
			err.Add(prefix + ": composite effect is empty")
		}
		for i, child := range eff.Effects {
			validateEffect(child, fmt.Sprintf("%s at index %d", prefix, i), speciesMap, err)
		}
	}
}

func validateTerms(terms []StoichConfig, prefix string, speciesMap map[string]bool, err *ValidationError) {
	seen := make(map[string]bool, len(terms))
	for i, t := range terms {
		termPrefix := fmt.Sprintf("%s at index %d", prefix, i)
		if t.Gas == "" {
			err.Add(termPrefix + ": gas is required")
		} else if !speciesMap[t.Gas] {
			err.Add(termPrefix + ": gas '" + t.Gas + "' does not exist")
		} else if seen[t.Gas] {
			err.Add(termPrefix + ": gas '" + t.Gas + "' is listed more than once")
		}
		seen[t.Gas] = true
		if t.Coefficient <= 0 {
			err.Add(termPrefix + ": coefficient must be positive")
		}
	}
}
