package atmos

import "fmt"

// BuildCatalog converts the species part of a RulesetConfig to a Catalog.
func BuildCatalog(cfg RulesetConfig) (*Catalog, error) {
	var species []GasSpecies
	if cfg.StandardSpecies {
		species = append(species, StandardSpecies()...)
	}
	for _, sp := range cfg.Species {
		name := sp.Name
		if name == "" {
			name = sp.ID
		}
		species = append(species, GasSpecies{
			ID:           SpeciesID(sp.ID),
			Name:         name,
			SpecificHeat: sp.SpecificHeat,
			FusionPower:  sp.FusionPower,
		})
	}
	return NewCatalog(species...)
}

// BuildRuleset validates cfg and converts it to a catalog and an engine.
// The standard rules, when requested, come before the configured ones.
func BuildRuleset(cfg RulesetConfig) (*Catalog, *Engine, error) {
	if err := ValidateRulesetConfig(cfg); err != nil {
		return nil, nil, err
	}

	catalog, err := BuildCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	var rules []ReactionRule
	if cfg.StandardRules {
		rules = append(rules, StandardRules(catalog)...)
	}
	for _, rc := range cfg.Rules {
		rule, err := buildRule(rc, catalog)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: %w", rc.ID, err)
		}
		rules = append(rules, rule)
	}

	engine, err := NewEngine(rules...)
	if err != nil {
		return nil, nil, err
	}
	return catalog, engine, nil
}

func buildRule(rc RuleConfig, catalog *Catalog) (ReactionRule, error) {
	effect, err := buildEffect(rc.Effect, catalog)
	if err != nil {
		return ReactionRule{}, err
	}
	reqs := make(Requirements, len(rc.Requirements))
	for key, threshold := range rc.Requirements {
		reqs[RequirementKey(key)] = threshold
	}
	name := rc.Name
	if name == "" {
		name = rc.ID
	}
	return ReactionRule{
		ID:           rc.ID,
		Name:         name,
		Priority:     rc.Priority,
		Requirements: reqs,
		Effect:       effect,
	}, nil
}

func buildEffect(eff EffectConfig, catalog *Catalog) (Effect, error) {
	switch EffectKind(eff.Type) {
	case EffectMoleConversion:
		reactants, err := buildTerms(eff.Reactants, catalog)
		if err != nil {
			return nil, err
		}
		products, err := buildTerms(eff.Products, catalog)
		if err != nil {
			return nil, err
		}
		return MoleConversion{
			Reactants: reactants,
			Products:  products,
			Fixed:     eff.Fixed,
			Fraction:  eff.Fraction,
		}, nil
	case EffectEnergyDelta:
		return EnergyDelta{Joules: eff.Joules, PerExtent: eff.PerExtent}, nil
	case EffectEmit:
		return Emit{Signal: SignalKind(eff.Signal), Amount: eff.Amount, PerExtent: eff.PerExtent}, nil
	case EffectComposite:
		children := make([]Effect, 0, len(eff.Effects))
		for _, child := range eff.Effects {
			e, err := buildEffect(child, catalog)
			if err != nil {
				return nil, err
			}
			children = append(children, e)
		}
		return Composite{Effects: children}, nil
	default:
		return nil, fmt.Errorf("unknown effect type %q", eff.Type)
	}
}

func buildTerms(terms []StoichConfig, catalog *Catalog) ([]Stoich, error) {
	out := make([]Stoich, 0, len(terms))
	for _, t := range terms {
		sp, ok := catalog.Lookup(SpeciesID(t.Gas))
		if !ok {
			return nil, &GasNotFoundError{Gas: SpeciesID(t.Gas)}
		}
		out = append(out, Stoich{Species: sp, Coefficient: t.Coefficient})
	}
	return out, nil
}

// EffectToConfig converts an effect back to its configuration form.
func EffectToConfig(e Effect) EffectConfig {
	switch eff := e.(type) {
	case MoleConversion:
		return EffectConfig{
			Type:      string(EffectMoleConversion),
			Reactants: termsToConfig(eff.Reactants),
			Products:  termsToConfig(eff.Products),
			Fixed:     eff.Fixed,
			Fraction:  eff.Fraction,
		}
	case EnergyDelta:
		return EffectConfig{Type: string(EffectEnergyDelta), Joules: eff.Joules, PerExtent: eff.PerExtent}
	case Emit:
		return EffectConfig{Type: string(EffectEmit), Signal: string(eff.Signal), Amount: eff.Amount, PerExtent: eff.PerExtent}
	case Composite:
		children := make([]EffectConfig, 0, len(eff.Effects))
		for _, child := range eff.Effects {
			children = append(children, EffectToConfig(child))
		}
		return EffectConfig{Type: string(EffectComposite), Effects: children}
	default:
		return EffectConfig{}
	}
}

func termsToConfig(terms []Stoich) []StoichConfig {
	if len(terms) == 0 {
		return nil
	}
	out := make([]StoichConfig, 0, len(terms))
	for _, t := range terms {
		out = append(out, StoichConfig{Gas: string(t.Species.ID), Coefficient: t.Coefficient})
	}
	return out
}

// RuleToConfig converts a rule back to its configuration form.
func RuleToConfig(r ReactionRule) RuleConfig {
	reqs := make(map[string]float64, len(r.Requirements))
	for key, threshold := range r.Requirements {
		reqs[string(key)] = threshold
	}
	return RuleConfig{
		ID:           r.ID,
		Name:         r.Name,
		Priority:     r.Priority,
		Requirements: reqs,
		Effect:       EffectToConfig(r.Effect),
	}
}
