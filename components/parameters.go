package components

// Parameters is the single parameter record an island hands to its cells and
// animals. Each species and terrain has one entry; every animal or cell of
// that kind points into it.
type Parameters struct {
	species [NumSpecies]SpeciesParams
	terrain [NumTerrains]TerrainParams
}

// DefaultParameters returns the standard parameter record.
func DefaultParameters() *Parameters {
	p := &Parameters{}
	p.species[Herbivore] = DefaultHerbivoreParams()
	p.species[Carnivore] = DefaultCarnivoreParams()
	for t := Terrain(0); t < NumTerrains; t++ {
		p.terrain[t] = DefaultTerrainParams(t)
	}
	return p
}

// Species returns the shared parameter set of a species.
func (p *Parameters) Species(s Species) *SpeciesParams {
	return &p.species[s]
}

// Terrain returns the shared parameter set of a terrain.
func (p *Parameters) Terrain(t Terrain) *TerrainParams {
	return &p.terrain[t]
}

// Clone returns an independent copy, so separate islands can be tuned
// without seeing each other's updates.
func (p *Parameters) Clone() *Parameters {
	c := *p
	return &c
}
