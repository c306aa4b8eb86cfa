package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/chamber"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type simConfig struct {
	rulesetFile string
	seedFile    string
	ticks       int
	chamberID   string
	outFile     string
}

func parseFlags(args []string) (simConfig, error) {
	var cfg simConfig
	fs := flag.NewFlagSet("atmosdb-sim", flag.ContinueOnError)
	fs.StringVar(&cfg.rulesetFile, "ruleset-file", "", "path to ruleset JSON file (standard ruleset if empty)")
	fs.StringVar(&cfg.seedFile, "seed", "", "path to a mixture snapshot JSON file to start from (required)")
	fs.IntVar(&cfg.ticks, "ticks", 100, "number of ticks to run")
	fs.StringVar(&cfg.chamberID, "chamber-id", "simulation", "chamber ID")
	fs.StringVar(&cfg.outFile, "out", "", "optional path to write the final mixture snapshot")
	if err := fs.Parse(args); err != nil {
		return simConfig{}, err
	}
	if cfg.seedFile == "" {
		return simConfig{}, fmt.Errorf("--seed is required")
	}
	if cfg.ticks < 0 {
		return simConfig{}, fmt.Errorf("--ticks must not be negative")
	}
	return cfg, nil
}

// summary accumulates what happened over a run.
type summary struct {
	ticks   int
	firings map[string]int
	signals map[atmos.SignalKind]float64
	energy  float64
}

func run(args []string, out io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	rs := chamber.StandardRuleset()
	if cfg.rulesetFile != "" {
		if rs, err = loadRuleset(cfg.rulesetFile); err != nil {
			return err
		}
	}

	seed, err := loadSeed(cfg.seedFile)
	if err != nil {
		return err
	}

	c := chamber.New(chamber.ID(cfg.chamberID), rs)
	if err := c.ReplaceMixture(seed); err != nil {
		return fmt.Errorf("seeding mixture: %w", err)
	}

	sum := summary{firings: make(map[string]int), signals: make(map[atmos.SignalKind]float64)}
	ctx := context.Background()
	for i := 0; i < cfg.ticks; i++ {
		res, err := c.Step(ctx)
		if err != nil {
			return fmt.Errorf("tick %d: %w", c.Tick(), err)
		}
		sum.ticks++
		sum.energy += res.EnergyReleased
		for _, f := range res.Fired {
			sum.firings[f.RuleID]++
		}
		for _, s := range res.Signals {
			sum.signals[s.Kind] += s.Amount
		}
	}

	final := c.Mixture()
	if cfg.outFile != "" {
		data, err := atmos.EncodeSnapshotJSON(final)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.outFile, data, 0o644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	printSummary(out, rs.Config.Name, sum, final)
	return nil
}

func loadRuleset(path string) (*chamber.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file: %w", err)
	}
	var cfg atmos.RulesetConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing ruleset JSON: %w", err)
	}
	rs, err := chamber.NewRuleset(cfg)
	if err != nil {
		return nil, fmt.Errorf("building ruleset: %w", err)
	}
	return rs, nil
}

// loadSeed reads a mixture snapshot. A missing volume or temperature falls
// back to a standard cell at room temperature.
func loadSeed(path string) (atmos.MixtureSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return atmos.MixtureSnapshot{}, fmt.Errorf("reading seed file: %w", err)
	}
	snap, err := atmos.DecodeSnapshotJSON(data)
	if err != nil {
		return atmos.MixtureSnapshot{}, fmt.Errorf("parsing seed JSON: %w", err)
	}
	if snap.Volume == 0 {
		snap.Volume = atmos.CellStdVolume
	}
	if snap.Temperature == 0 {
		snap.Temperature = atmos.T20C
	}
	return snap, nil
}

func printSummary(out io.Writer, rulesetName string, sum summary, final atmos.MixtureSnapshot) {
	fmt.Fprintf(out, "Simulation finished (ruleset=%s, ticks=%d)\n", rulesetName, sum.ticks)
	fmt.Fprintf(out, "Energy released: %.2f J\n", sum.energy)

	fmt.Fprintln(out, "Reactions fired:")
	ruleIDs := make([]string, 0, len(sum.firings))
	for id := range sum.firings {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)
	for _, id := range ruleIDs {
		fmt.Fprintf(out, "  %s: %d\n", id, sum.firings[id])
	}

	if len(sum.signals) > 0 {
		fmt.Fprintln(out, "Signals:")
		kinds := make([]string, 0, len(sum.signals))
		for k := range sum.signals {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "  %s: %.4f\n", k, sum.signals[atmos.SignalKind(k)])
		}
	}

	fmt.Fprintf(out, "Final temperature: %.2f K\n", final.Temperature)
	if final.Pressure != nil {
		fmt.Fprintf(out, "Final pressure: %.2f kPa\n", *final.Pressure)
	}
	fmt.Fprintln(out, "Gases (mol):")
	for _, g := range final.Gases {
		fmt.Fprintf(out, "  %s: %.4f\n", g.Gas, g.Moles)
	}
}
