package atmos

type SpeciesConfig struct {
	ID           string  `json:"id" jsonschema:"title=Species id,pattern=^[a-z0-9_]+$,minLength=1,description=Stable key used in requirements and effects"`
	Name         string  `json:"name,omitempty"`
	SpecificHeat float64 `json:"specific_heat" jsonschema:"minimum=0,exclusiveMinimum=true,description=Joules per mole per Kelvin"`
	FusionPower  float64 `json:"fusion_power,omitempty"`
}

// StoichConfig is one term of a conversion effect.
type StoichConfig struct {
	Gas         string  `json:"gas"`
	Coefficient float64 `json:"coefficient"`
}

// EffectConfig is a tagged union selected by Type:
//   - "convert": Reactants, Products, Fixed, Fraction
//   - "energy": Joules, PerExtent
//   - "emit": Signal, Amount, PerExtent
//   - "composite": Effects
type EffectConfig struct {
	Type string `json:"type" jsonschema:"enum=convert,enum=energy,enum=emit,enum=composite"`

	Reactants []StoichConfig `json:"reactants,omitempty"`
	Products  []StoichConfig `json:"products,omitempty"`
	Fixed     float64        `json:"fixed,omitempty"`
	Fraction  float64        `json:"fraction,omitempty"`

	Joules    float64 `json:"joules,omitempty"`
	PerExtent float64 `json:"per_extent,omitempty"`

	Signal string  `json:"signal,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	Effects []EffectConfig `json:"effects,omitempty"`
}

// NotificationConfig specifies which notifiers should be triggered when a rule fires
type NotificationConfig struct {
	Enabled   bool     `json:"enabled"`
	Notifiers []string `json:"notifiers"`
}

type RuleConfig struct {
	ID       string `json:"id" jsonschema:"minLength=1"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority"`
	// Requirements maps a gas id, "TEMP" or "ENER" to an inclusive minimum.
	Requirements map[string]float64  `json:"requirements"`
	Effect       EffectConfig        `json:"effect"`
	Notify       *NotificationConfig `json:"notify,omitempty"`
}

// RulesetConfig describes a catalog and a rule registry.
// StandardSpecies and StandardRules pull in the built-in tables; explicit
// species and rules are added after them.
type RulesetConfig struct {
	Name            string          `json:"name"`
	StandardSpecies bool            `json:"standard_species,omitempty"`
	Species         []SpeciesConfig `json:"species,omitempty"`
	StandardRules   bool            `json:"standard_rules,omitempty"`
	Rules           []RuleConfig    `json:"rules,omitempty"`
}

// NotificationRoutes returns, for every rule with notifications enabled, the
// notifier ids to trigger.
func (c RulesetConfig) NotificationRoutes() map[string][]string {
	routes := make(map[string][]string)
	for _, r := range c.Rules {
		if r.Notify == nil || !r.Notify.Enabled || len(r.Notify.Notifiers) == 0 {
			continue
		}
		routes[r.ID] = append([]string(nil), r.Notify.Notifiers...)
	}
	return routes
}
