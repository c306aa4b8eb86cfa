package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// RulesetBuilder provides a fluent API for building rulesets.
// A ruleset names the gas species a chamber knows about and the reaction
// rules that transform its mixture every tick.
type RulesetBuilder struct {
	name            string
	standardSpecies bool
	standardRules   bool
	species         []atmos.SpeciesConfig
	rules           []*RuleBuilder
}

// NewRuleset creates a new ruleset builder with the given name.
func NewRuleset(name string) *RulesetBuilder {
	return &RulesetBuilder{
		name:    name,
		species: make([]atmos.SpeciesConfig, 0),
		rules:   make([]*RuleBuilder, 0),
	}
}

// Standard pulls in the built-in station gases and every standard reaction.
func (rb *RulesetBuilder) Standard() *RulesetBuilder {
	rb.standardSpecies = true
	rb.standardRules = true
	return rb
}

// StandardSpecies pulls in the built-in station gases without their
// reactions, so custom rules can use them.
func (rb *RulesetBuilder) StandardSpecies() *RulesetBuilder {
	rb.standardSpecies = true
	return rb
}

// Species adds a gas with its specific heat in J/(mol·K).
func (rb *RulesetBuilder) Species(id, name string, specificHeat float64) *RulesetBuilder {
	rb.species = append(rb.species, atmos.SpeciesConfig{
		ID:           id,
		Name:         name,
		SpecificHeat: specificHeat,
	})
	return rb
}

// FusionSpecies adds a gas that takes part in fusion with the given power.
func (rb *RulesetBuilder) FusionSpecies(id, name string, specificHeat, fusionPower float64) *RulesetBuilder {
	rb.species = append(rb.species, atmos.SpeciesConfig{
		ID:           id,
		Name:         name,
		SpecificHeat: specificHeat,
		FusionPower:  fusionPower,
	})
	return rb
}

// Rule adds a reaction rule to the ruleset.
func (rb *RulesetBuilder) Rule(r *RuleBuilder) *RulesetBuilder {
	rb.rules = append(rb.rules, r)
	return rb
}

// Build converts the builder to a RulesetConfig that can be sent with
// ApplyRuleset or loaded from a file by the server.
func (rb *RulesetBuilder) Build() atmos.RulesetConfig {
	rules := make([]atmos.RuleConfig, 0, len(rb.rules))
	for _, r := range rb.rules {
		rules = append(rules, r.Build())
	}
	return atmos.RulesetConfig{
		Name:            rb.name,
		StandardSpecies: rb.standardSpecies,
		Species:         rb.species,
		StandardRules:   rb.standardRules,
		Rules:           rules,
	}
}

// RuleBuilder provides a fluent API for building reaction rules.
// A rule fires when every requirement holds and then applies its effects
// in order.
type RuleBuilder struct {
	id           string
	name         string
	priority     int
	requirements map[string]float64
	effects      []atmos.EffectConfig
	notify       *NotificationBuilder
}

// NewRule creates a new rule builder with the given ID.
// The name defaults to the ID.
func NewRule(id string) *RuleBuilder {
	return &RuleBuilder{
		id:           id,
		name:         id,
		requirements: make(map[string]float64),
		effects:      make([]atmos.EffectConfig, 0),
	}
}

// Name sets the human-readable name for the rule.
func (rb *RuleBuilder) Name(name string) *RuleBuilder {
	rb.name = name
	return rb
}

// Priority sets the evaluation order. Lower priorities run first.
func (rb *RuleBuilder) Priority(priority int) *RuleBuilder {
	rb.priority = priority
	return rb
}

// Requires sets the minimum moles of gas the mixture must hold.
func (rb *RuleBuilder) Requires(gas string, minMoles float64) *RuleBuilder {
	rb.requirements[gas] = minMoles
	return rb
}

// RequiresTemperature sets the minimum temperature in Kelvin.
func (rb *RuleBuilder) RequiresTemperature(min float64) *RuleBuilder {
	rb.requirements[string(atmos.RequireTemperature)] = min
	return rb
}

// RequiresThermalEnergy sets the minimum thermal energy in Joules.
func (rb *RuleBuilder) RequiresThermalEnergy(min float64) *RuleBuilder {
	rb.requirements[string(atmos.RequireThermalEnergy)] = min
	return rb
}

// Effect adds one or more effects to the rule.
// Accepts *ConversionBuilder or *EffectBuilder. With more than one effect the
// rule applies them as a sequence.
func (rb *RuleBuilder) Effect(ebs ...any) *RuleBuilder {
	for _, e := range ebs {
		switch v := e.(type) {
		case *ConversionBuilder:
			rb.effects = append(rb.effects, v.Build())
		case *EffectBuilder:
			rb.effects = append(rb.effects, v.Build())
		}
	}
	return rb
}

// Notify configures which notifiers hear about this rule firing.
func (rb *RuleBuilder) Notify(nb *NotificationBuilder) *RuleBuilder {
	rb.notify = nb
	return rb
}

// Build converts the builder to a RuleConfig.
func (rb *RuleBuilder) Build() atmos.RuleConfig {
	requirements := make(map[string]float64, len(rb.requirements))
	for k, v := range rb.requirements {
		requirements[k] = v
	}

	var effect atmos.EffectConfig
	switch len(rb.effects) {
	case 0:
	case 1:
		effect = rb.effects[0]
	default:
		effect = atmos.EffectConfig{
			Type:    string(atmos.EffectComposite),
			Effects: append([]atmos.EffectConfig(nil), rb.effects...),
		}
	}

	rc := atmos.RuleConfig{
		ID:           rb.id,
		Name:         rb.name,
		Priority:     rb.priority,
		Requirements: requirements,
		Effect:       effect,
	}
	if rb.notify != nil {
		rc.Notify = rb.notify.Build()
	}
	return rc
}

// ConversionBuilder builds a mole conversion: reactants turn into products
// in fixed proportions.
type ConversionBuilder struct {
	reactants []atmos.StoichConfig
	products  []atmos.StoichConfig
	fixed     float64
	fraction  float64
}

// Convert starts a conversion that runs at fraction of the limiting extent,
// the largest extent the reactants can supply.
func Convert(fraction float64) *ConversionBuilder {
	return &ConversionBuilder{fraction: fraction}
}

// ConvertFixed starts a conversion with a fixed extent per tick.
func ConvertFixed(extent float64) *ConversionBuilder {
	return &ConversionBuilder{fixed: extent}
}

// Reactant adds a consumed gas with its coefficient.
func (cb *ConversionBuilder) Reactant(gas string, coefficient float64) *ConversionBuilder {
	cb.reactants = append(cb.reactants, atmos.StoichConfig{Gas: gas, Coefficient: coefficient})
	return cb
}

// Product adds a produced gas with its coefficient.
func (cb *ConversionBuilder) Product(gas string, coefficient float64) *ConversionBuilder {
	cb.products = append(cb.products, atmos.StoichConfig{Gas: gas, Coefficient: coefficient})
	return cb
}

// Build converts the builder to an EffectConfig.
func (cb *ConversionBuilder) Build() atmos.EffectConfig {
	return atmos.EffectConfig{
		Type:      string(atmos.EffectMoleConversion),
		Reactants: cb.reactants,
		Products:  cb.products,
		Fixed:     cb.fixed,
		Fraction:  cb.fraction,
	}
}

// EffectBuilder builds energy, emit and composite effects.
type EffectBuilder struct {
	cfg atmos.EffectConfig
}

// Energy releases joules, or absorbs them when negative.
func Energy(joules float64) *EffectBuilder {
	return &EffectBuilder{cfg: atmos.EffectConfig{Type: string(atmos.EffectEnergyDelta), Joules: joules}}
}

// EnergyPerExtent releases joules per unit of the preceding conversion.
func EnergyPerExtent(joules float64) *EffectBuilder {
	return &EffectBuilder{cfg: atmos.EffectConfig{Type: string(atmos.EffectEnergyDelta), PerExtent: joules}}
}

// Emit reports a fixed amount of signal.
func Emit(signal string, amount float64) *EffectBuilder {
	return &EffectBuilder{cfg: atmos.EffectConfig{Type: string(atmos.EffectEmit), Signal: signal, Amount: amount}}
}

// EmitPerExtent reports signal in proportion to the preceding conversion.
func EmitPerExtent(signal string, perExtent float64) *EffectBuilder {
	return &EffectBuilder{cfg: atmos.EffectConfig{Type: string(atmos.EffectEmit), Signal: signal, PerExtent: perExtent}}
}

// Sequence groups effects that run in order. Accepts the same builders as
// RuleBuilder.Effect.
func Sequence(ebs ...any) *EffectBuilder {
	children := make([]atmos.EffectConfig, 0, len(ebs))
	for _, e := range ebs {
		switch v := e.(type) {
		case *ConversionBuilder:
			children = append(children, v.Build())
		case *EffectBuilder:
			children = append(children, v.Build())
		}
	}
	return &EffectBuilder{cfg: atmos.EffectConfig{Type: string(atmos.EffectComposite), Effects: children}}
}

// Build converts the builder to an EffectConfig.
func (eb *EffectBuilder) Build() atmos.EffectConfig {
	return eb.cfg
}

// NotificationBuilder provides a fluent API for building notification
// configurations.
type NotificationBuilder struct {
	enabled   bool
	notifiers []string
}

// NewNotification creates a new notification builder with notifications
// enabled by default.
func NewNotification() *NotificationBuilder {
	return &NotificationBuilder{
		enabled:   true,
		notifiers: make([]string, 0),
	}
}

// Enabled sets whether notifications are enabled for this rule.
func (nb *NotificationBuilder) Enabled(enabled bool) *NotificationBuilder {
	nb.enabled = enabled
	return nb
}

// Notifier adds a notifier ID. Notifiers must be registered with the server
// separately.
func (nb *NotificationBuilder) Notifier(id string) *NotificationBuilder {
	nb.notifiers = append(nb.notifiers, id)
	return nb
}

// Notifiers adds multiple notifier IDs to the list.
func (nb *NotificationBuilder) Notifiers(ids ...string) *NotificationBuilder {
	nb.notifiers = append(nb.notifiers, ids...)
	return nb
}

// Build converts the builder to a NotificationConfig.
func (nb *NotificationBuilder) Build() *atmos.NotificationConfig {
	return &atmos.NotificationConfig{
		Enabled:   nb.enabled,
		Notifiers: nb.notifiers,
	}
}

// MixtureState is a chamber's mixture as reported by the server.
type MixtureState struct {
	ChamberID string                `json:"chamber_id"`
	Tick      int64                 `json:"tick"`
	Running   bool                  `json:"running"`
	Mixture   atmos.MixtureSnapshot `json:"mixture"`
	Eligible  []string              `json:"eligible"`
}

// TickResult is what one or more ticks did to a chamber.
type TickResult struct {
	ChamberID string                `json:"chamber_id"`
	Tick      int64                 `json:"tick"`
	Results   []atmos.Result        `json:"results"`
	Mixture   atmos.MixtureSnapshot `json:"mixture"`
}

// doJSON sends body as JSON and decodes a 200 response into out. Either may
// be nil.
func doJSON(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ApplyRuleset sends the ruleset to an AtmosDB server, creating the chamber
// or replacing its ruleset. The baseURL is the server's base URL
// (e.g., "http://localhost:8080").
func ApplyRuleset(ctx context.Context, baseURL, chamberID string, ruleset *RulesetBuilder) error {
	u, err := url.JoinPath(baseURL, "chamber", chamberID, "ruleset")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	return doJSON(ctx, http.MethodPost, u, ruleset.Build(), nil)
}

// AddGas merges moles of gas into a chamber. A zero temperature uses the
// chamber's own.
func AddGas(ctx context.Context, baseURL, chamberID, gas string, moles, temperature float64) (MixtureState, error) {
	u, err := url.JoinPath(baseURL, "chamber", chamberID, "gas")
	if err != nil {
		return MixtureState{}, fmt.Errorf("failed to build URL: %w", err)
	}
	body := map[string]any{"gas": gas, "moles": moles}
	if temperature != 0 {
		body["temperature"] = temperature
	}
	var state MixtureState
	if err := doJSON(ctx, http.MethodPost, u, body, &state); err != nil {
		return MixtureState{}, err
	}
	return state, nil
}

// GetMixture fetches the current mixture of a chamber.
func GetMixture(ctx context.Context, baseURL, chamberID string) (MixtureState, error) {
	u, err := url.JoinPath(baseURL, "chamber", chamberID, "mixture")
	if err != nil {
		return MixtureState{}, fmt.Errorf("failed to build URL: %w", err)
	}
	var state MixtureState
	if err := doJSON(ctx, http.MethodGet, u, nil, &state); err != nil {
		return MixtureState{}, err
	}
	return state, nil
}

// Tick steps a chamber count times.
func Tick(ctx context.Context, baseURL, chamberID string, count int) (TickResult, error) {
	if count <= 0 {
		return TickResult{}, fmt.Errorf("count must be positive, got %d", count)
	}
	u, err := url.JoinPath(baseURL, "chamber", chamberID, "tick")
	if err != nil {
		return TickResult{}, fmt.Errorf("failed to build URL: %w", err)
	}
	u += "?count=" + strconv.Itoa(count)

	var result TickResult
	if err := doJSON(ctx, http.MethodPost, u, nil, &result); err != nil {
		return TickResult{}, err
	}
	return result, nil
}

// RegisterWebhook registers a webhook notifier that receives reaction events
// as JSON POSTs.
func RegisterWebhook(ctx context.Context, baseURL, notifierID, webhookURL string, headers map[string]string) error {
	u, err := url.JoinPath(baseURL, "notifiers")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	config := map[string]any{"url": webhookURL}
	if len(headers) > 0 {
		config["headers"] = headers
	}
	body := map[string]any{"type": "webhook", "id": notifierID, "config": config}
	return doJSON(ctx, http.MethodPost, u, body, nil)
}
