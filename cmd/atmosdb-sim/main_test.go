package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daniacca/atmosdb/internal/atmos"
)

const burnerRuleset = `{
  "name": "burner",
  "species": [
    {"id": "fuel", "specific_heat": 50},
    {"id": "ox", "specific_heat": 20},
    {"id": "ash", "specific_heat": 10}
  ],
  "rules": [{
    "id": "burn",
    "priority": 1,
    "requirements": {"TEMP": 400, "fuel": 1, "ox": 1},
    "effect": {"type": "composite", "effects": [
      {"type": "convert", "reactants": [{"gas": "fuel", "coefficient": 1}, {"gas": "ox", "coefficient": 2}], "products": [{"gas": "ash", "coefficient": 1}], "fraction": 0.5},
      {"type": "energy", "per_extent": 10000},
      {"type": "emit", "signal": "fire", "per_extent": 1}
    ]}
  }]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_Burner(t *testing.T) {
	rulesetPath := writeFile(t, "ruleset.json", burnerRuleset)
	seedPath := writeFile(t, "seed.json", `{"temperature": 500, "gases": [{"gas": "fuel", "moles": 10}, {"gas": "ox", "moles": 20}]}`)
	outPath := filepath.Join(t.TempDir(), "final.json")

	var out bytes.Buffer
	err := run([]string{"-ruleset-file", rulesetPath, "-seed", seedPath, "-ticks", "1", "-out", outPath}, &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Simulation finished (ruleset=burner, ticks=1)",
		"Energy released: 50000.00 J",
		"  burn: 1",
		"  fire: 5.0000",
		"Final temperature: 600.00 K",
		"  ash: 5.0000",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected final snapshot file, got %v", err)
	}
	snap, err := atmos.DecodeSnapshotJSON(data)
	if err != nil {
		t.Fatalf("DecodeSnapshotJSON: %v", err)
	}
	if snap.Volume != atmos.CellStdVolume || len(snap.Gases) != 3 {
		t.Errorf("Unexpected final snapshot %+v", snap)
	}
}

func TestRun_StandardRulesetIdle(t *testing.T) {
	seedPath := writeFile(t, "seed.json", `{"gases": [{"gas": "o2", "moles": 20}, {"gas": "n2", "moles": 80}]}`)

	var out bytes.Buffer
	if err := run([]string{"-seed", seedPath, "-ticks", "5"}, &out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "ruleset=standard, ticks=5") {
		t.Errorf("Unexpected header:\n%s", got)
	}
	if strings.Contains(got, "Signals:") {
		t.Errorf("Expected no signals at room temperature:\n%s", got)
	}
}

func TestRun_Errors(t *testing.T) {
	seedPath := writeFile(t, "seed.json", `{"gases": [{"gas": "fuel", "moles": 1}]}`)
	tests := []struct {
		name string
		args []string
	}{
		{"missing seed", []string{"-ticks", "1"}},
		{"negative ticks", []string{"-seed", seedPath, "-ticks", "-1"}},
		{"missing seed file", []string{"-seed", filepath.Join(t.TempDir(), "nope.json")}},
		{"gas outside catalog", []string{"-seed", seedPath}},
		{"bad ruleset", []string{"-seed", seedPath, "-ruleset-file", writeFile(t, "bad.json", `{"name": ""}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
