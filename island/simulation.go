package island

import (
	"fmt"

	"github.com/pthm-cable/biosim/components"
)

// SimulateOneYear advances the island by one year. Each phase finishes on
// every cell before the next one starts.
func (isl *Island) SimulateOneYear() error {
	t := isl.timer
	t.StartYear()
	defer t.EndYear()

	t.StartPhase(PhaseReady)
	isl.readyForNewYear()
	t.StartPhase(PhaseFeed)
	isl.feed()
	t.StartPhase(PhaseProcreate)
	isl.procreate()
	t.StartPhase(PhaseMigrate)
	if err := isl.migrate(); err != nil {
		return fmt.Errorf("year %d: %w", isl.year, err)
	}
	t.StartPhase(PhaseAge)
	isl.ageAnimals()
	t.StartPhase(PhaseLoseWeight)
	isl.loseWeight()
	t.StartPhase(PhaseDie)
	isl.die()
	isl.year++
	return nil
}

// Simulate runs the given number of years. after, if not nil, is called at
// the end of every year; an error from it stops the run.
func (isl *Island) Simulate(years int, after func(*Island) error) error {
	if years < 0 {
		return fmt.Errorf("%w: years must be >= 0, got %d", components.ErrValidation, years)
	}
	for range years {
		if err := isl.SimulateOneYear(); err != nil {
			return err
		}
		if after != nil {
			if err := after(isl); err != nil {
				return fmt.Errorf("after year %d: %w", isl.year, err)
			}
		}
	}
	return nil
}

func (isl *Island) readyForNewYear() {
	for _, c := range isl.cells {
		c.Regrow()
		c.ResetPropensity()
		c.ResetMigration()
	}
}

func (isl *Island) feed() {
	kills := 0
	for _, c := range isl.cells {
		kills += c.FeedAll(isl.rng)
	}
	isl.rec.RecordKills(kills)
}

func (isl *Island) procreate() {
	var births [components.NumSpecies]int
	for _, c := range isl.cells {
		b := c.Procreate(isl.rng)
		for s := range births {
			births[s] += b[s]
		}
	}
	for s, n := range births {
		isl.rec.RecordBirths(components.Species(s), n)
	}
}

func (isl *Island) ageAnimals() {
	for _, c := range isl.cells {
		c.AgePop()
	}
}

func (isl *Island) loseWeight() {
	for _, c := range isl.cells {
		c.LoseWeight()
	}
}

func (isl *Island) die() {
	var deaths [components.NumSpecies]int
	for _, c := range isl.cells {
		d := c.Die(isl.rng)
		for s := range deaths {
			deaths[s] += d[s]
		}
	}
	for s, n := range deaths {
		isl.rec.RecordDeaths(components.Species(s), n)
	}
}
