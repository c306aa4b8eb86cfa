package atmos

import (
	"fmt"
	"sort"
)

// Firing records one rule that fired during Apply.
type Firing struct {
	RuleID   string  `json:"rule_id"`
	RuleName string  `json:"rule_name"`
	Extent   float64 `json:"extent"`
	// Energy is the net energy released by the rule, negative when absorbed.
	Energy float64 `json:"energy"`
}

// Result is what one Apply pass did to a mixture.
type Result struct {
	Fired          []Firing `json:"fired"`
	Signals        []Signal `json:"signals,omitempty"`
	EnergyReleased float64  `json:"energy_released"`
}

// FiredIDs returns the ids of the rules that fired, in order.
func (r Result) FiredIDs() []string {
	ids := make([]string, 0, len(r.Fired))
	for _, f := range r.Fired {
		ids = append(ids, f.RuleID)
	}
	return ids
}

// Engine holds an ordered, immutable registry of reaction rules and applies
// them to mixtures. Rules run by ascending priority; equal priorities keep
// registration order. An Engine can be shared between goroutines, the
// mixtures it is given cannot.
type Engine struct {
	rules  []ReactionRule
	logger Logger
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules ...ReactionRule) (*Engine, error) {
	return NewEngineWithLogger(nil, rules...)
}

// NewEngineWithLogger creates an engine that logs each firing at debug level.
// A nil logger disables logging.
func NewEngineWithLogger(logger Logger, rules ...ReactionRule) (*Engine, error) {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	seen := make(map[string]struct{}, len(rules))
	registry := make([]ReactionRule, 0, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule at index %d has empty id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id: %s", r.ID)
		}
		if r.Effect == nil {
			return nil, fmt.Errorf("rule %s has no effect", r.ID)
		}
		seen[r.ID] = struct{}{}
		registry = append(registry, r)
	}
	sort.SliceStable(registry, func(i, j int) bool {
		return registry[i].Priority < registry[j].Priority
	})
	return &Engine{rules: registry, logger: logger}, nil
}

// With returns a new engine holding the current rules followed by rules.
func (e *Engine) With(rules ...ReactionRule) (*Engine, error) {
	all := make([]ReactionRule, 0, len(e.rules)+len(rules))
	all = append(all, e.rules...)
	all = append(all, rules...)
	return NewEngineWithLogger(e.logger, all...)
}

// WithLogger returns an engine with the same rules that logs to logger.
func (e *Engine) WithLogger(logger Logger) *Engine {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Engine{rules: e.rules, logger: logger}
}

// Rules returns the registry in evaluation order.
func (e *Engine) Rules() []ReactionRule {
	out := make([]ReactionRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Rule returns the rule registered under id.
func (e *Engine) Rule(id string) (ReactionRule, bool) {
	for _, r := range e.rules {
		if r.ID == id {
			return r, true
		}
	}
	return ReactionRule{}, false
}

// Evaluate returns the rules whose requirements hold for m as it is now,
// in evaluation order. It does not modify m.
func (e *Engine) Evaluate(m *GasMixture) []ReactionRule {
	eligible := make([]ReactionRule, 0)
	for _, r := range e.rules {
		if r.Eligible(m) {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

// Apply runs a single pass over the registry. Each rule is gated against the
// mixture as left by the rules before it, so an earlier reaction can enable or
// starve a later one. No rule fires twice in a pass and the pass does not
// repeat until nothing changes; call Apply again on the next tick for that.
//
// On the first error Apply stops and returns the partial result. Effects of
// rules that already fired stay applied.
func (e *Engine) Apply(m *GasMixture) (Result, error) {
	var res Result
	for _, r := range e.rules {
		if !r.Eligible(m) {
			continue
		}
		st := &effectState{ruleID: r.ID}
		if err := r.Effect.apply(m, st); err != nil {
			e.logger.Errorf("reaction failed: rule=%s error=%v", r.ID, err)
			return res, err
		}
		res.Fired = append(res.Fired, Firing{
			RuleID:   r.ID,
			RuleName: r.Name,
			Extent:   st.extent,
			Energy:   st.energy,
		})
		res.Signals = append(res.Signals, st.signals...)
		res.EnergyReleased += st.energy
		e.logger.Debugf("reaction fired: rule=%s extent=%g energy=%g", r.ID, st.extent, st.energy)
	}
	return res, nil
}

// React is an alias for Apply.
func (e *Engine) React(m *GasMixture) (Result, error) {
	return e.Apply(m)
}
