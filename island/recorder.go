package island

import "github.com/pthm-cable/biosim/components"

// Recorder receives per-phase event counts while a year is simulated.
// telemetry.Collector implements it.
type Recorder interface {
	RecordBirths(s components.Species, n int)
	RecordDeaths(s components.Species, n int)
	RecordKills(n int)
	RecordMigrations(s components.Species, n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordBirths(components.Species, int)     {}
func (nopRecorder) RecordDeaths(components.Species, int)     {}
func (nopRecorder) RecordKills(int)                          {}
func (nopRecorder) RecordMigrations(components.Species, int) {}

// Phase names reported to a PhaseTimer, in execution order.
const (
	PhaseReady      = "ready"
	PhaseFeed       = "feed"
	PhaseProcreate  = "procreate"
	PhaseMigrate    = "migrate"
	PhaseAge        = "age"
	PhaseLoseWeight = "lose_weight"
	PhaseDie        = "die"
)

// Phases lists the annual cycle phases in execution order.
var Phases = []string{
	PhaseReady, PhaseFeed, PhaseProcreate, PhaseMigrate, PhaseAge, PhaseLoseWeight, PhaseDie,
}

// PhaseTimer is told when each year and phase starts. telemetry.PerfCollector
// implements it.
type PhaseTimer interface {
	StartYear()
	StartPhase(name string)
	EndYear()
}

type nopTimer struct{}

func (nopTimer) StartYear()        {}
func (nopTimer) StartPhase(string) {}
func (nopTimer) EndYear()          {}
