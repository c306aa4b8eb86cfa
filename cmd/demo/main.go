// Command demo burns plasma in a sealed cell with the standard reactions and
// one extra rule written in Go, printing the cell after every tick.
package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// stdLogger sends engine debug output to the standard logger.
type stdLogger struct{}

func (stdLogger) Debugf(format string, v ...any) { log.Printf("[DEBUG] "+format, v...) }
func (stdLogger) Infof(format string, v ...any)  { log.Printf("[INFO] "+format, v...) }
func (stdLogger) Warnf(format string, v ...any)  { log.Printf("[WARN] "+format, v...) }
func (stdLogger) Errorf(format string, v ...any) { log.Printf("[ERROR] "+format, v...) }

func main() {
	catalog := atmos.StandardCatalog()

	engine, err := atmos.StandardEngine(catalog, stdLogger{})
	if err != nil {
		log.Fatalf("standard engine: %v", err)
	}
	engine, err = engine.With(newScrubberRule(catalog))
	if err != nil {
		log.Fatalf("adding scrubber: %v", err)
	}

	mixture, err := atmos.NewMixture(
		[]atmos.GasSpecies{catalog.MustLookup(atmos.Plasma), catalog.MustLookup(atmos.Oxygen)},
		[]float64{20, 60},
		500,
		atmos.CellStdVolume,
	)
	if err != nil {
		log.Fatalf("seed mixture: %v", err)
	}

	for tick := 1; tick <= 10; tick++ {
		res, err := engine.Apply(mixture)
		if err != nil {
			log.Fatalf("tick %d: %v", tick, err)
		}
		fired := res.FiredIDs()
		if len(fired) == 0 {
			fired = []string{"-"}
		}
		fmt.Printf("tick %2d  T=%8.2f K  fired=%s  %s\n", tick, mixture.Temperature, strings.Join(fired, ","), mixture)
		if len(res.Fired) == 0 {
			break
		}
	}
}
