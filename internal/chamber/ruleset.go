package chamber

import (
	"fmt"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// Ruleset bundles a ruleset configuration with the catalog and engine built
// from it, plus the notification routes of its rules.
type Ruleset struct {
	Config  atmos.RulesetConfig
	Catalog *atmos.Catalog
	Engine  *atmos.Engine
	routes  map[string][]string
}

// NewRuleset validates and builds cfg.
func NewRuleset(cfg atmos.RulesetConfig) (*Ruleset, error) {
	catalog, engine, err := atmos.BuildRuleset(cfg)
	if err != nil {
		return nil, err
	}
	return &Ruleset{
		Config:  cfg,
		Catalog: catalog,
		Engine:  engine,
		routes:  cfg.NotificationRoutes(),
	}, nil
}

// StandardRuleset is the station gas table with every standard reaction.
func StandardRuleset() *Ruleset {
	rs, err := NewRuleset(atmos.RulesetConfig{
		Name:            "standard",
		StandardSpecies: true,
		StandardRules:   true,
	})
	if err != nil {
		panic(fmt.Sprintf("standard ruleset: %v", err))
	}
	return rs
}

// Routes returns the notifier ids a rule notifies, or nil.
func (rs *Ruleset) Routes(ruleID string) []string {
	return rs.routes[ruleID]
}

// Rules describes every registered rule in evaluation order, standard ones
// included, with the notification settings of the configuration.
func (rs *Ruleset) Rules() []atmos.RuleConfig {
	notify := make(map[string]*atmos.NotificationConfig, len(rs.Config.Rules))
	for _, rc := range rs.Config.Rules {
		notify[rc.ID] = rc.Notify
	}
	rules := rs.Engine.Rules()
	out := make([]atmos.RuleConfig, 0, len(rules))
	for _, r := range rules {
		rc := atmos.RuleToConfig(r)
		rc.Notify = notify[r.ID]
		out = append(out, rc)
	}
	return out
}

// covers reports whether every gas of the mixture is known to the catalog.
func (rs *Ruleset) covers(m *atmos.GasMixture) error {
	for _, id := range m.Gases() {
		if _, ok := rs.Catalog.Lookup(id); !ok {
			return fmt.Errorf("ruleset %s does not define gas %s held by the chamber", rs.Config.Name, id)
		}
	}
	return nil
}
