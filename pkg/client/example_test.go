package client_test

import (
	"fmt"

	"github.com/daniacca/atmosdb/pkg/client"
)

func ExampleRulesetBuilder() {
	ruleset := client.NewRuleset("burner").
		Species("fuel", "Fuel", 50).
		Species("ox", "Oxidizer", 20).
		Species("ash", "Ash", 10).
		Rule(client.NewRule("burn").
			RequiresTemperature(400).
			Requires("fuel", 1).
			Requires("ox", 1).
			Effect(
				client.Convert(0.5).Reactant("fuel", 1).Reactant("ox", 2).Product("ash", 1),
				client.EnergyPerExtent(10000),
			),
		)

	cfg := ruleset.Build()
	fmt.Printf("Ruleset: %s\n", cfg.Name)
	fmt.Printf("Species: %d\n", len(cfg.Species))
	fmt.Printf("Rules: %d\n", len(cfg.Rules))
	fmt.Printf("Effect: %s of %d\n", cfg.Rules[0].Effect.Type, len(cfg.Rules[0].Effect.Effects))

	// Send it to a running server:
	// err := client.ApplyRuleset(ctx, "http://localhost:8080", "lab", ruleset)

	// Output:
	// Ruleset: burner
	// Species: 3
	// Rules: 1
	// Effect: composite of 2
}

func ExampleRuleBuilder_Notify() {
	rule := client.NewRule("plasma_watch").
		Requires("plasma", 5).
		Effect(client.Emit("fire", 1)).
		Notify(client.NewNotification().Notifiers("ops-webhook", "live"))

	cfg := rule.Build()
	fmt.Println(cfg.Notify.Enabled, cfg.Notify.Notifiers)

	// Output:
	// true [ops-webhook live]
}
