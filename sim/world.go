// Package sim provides a small headless world that exercises the
// evolutionary core: plants as inert energy sources and a herbivore species
// whose brains and physiques evolve between generations.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/Jwely/mlgen2/components"
	"github.com/Jwely/mlgen2/config"
	"github.com/Jwely/mlgen2/critter"
	"github.com/Jwely/mlgen2/evolver"
	"github.com/Jwely/mlgen2/neural"
)

// BrainOutputs is the number of brain outputs: turn and thrust.
const BrainOutputs = 2

// Per-step energy economics. Costs scale with mass so heavy physiques must
// earn their keep.
const (
	baseCostPerStep = 0.0005
	moveCostPerStep = 0.002
)

// World is the bounded 2D world the critters inhabit. It owns the population
// between generations and steps the per-critter simulation; evolution itself
// is delegated to the evolver.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	ecs         *ecs.World
	plantMapper *ecs.Map2[components.Position, components.Plant]
	bodyMapper  *ecs.Map2[components.Position, components.Body]
	plantFilter *ecs.Filter2[components.Position, components.Plant]
	bodyFilter  *ecs.Filter2[components.Position, components.Body]

	species *critter.Species
	sensor  *ProximitySensor
	acts    []neural.Activation
	widths  []int

	pop []*critter.Critter

	// plantCache holds uneaten plant positions, rebuilt each step so
	// sensing does not re-query the ECS per critter.
	plantCache []components.Position

	age  int // generations completed
	step int // steps within the current generation
}

// NewWorld creates a world from config and spawns the initial population.
func NewWorld(cfg *config.Config, rng *rand.Rand) (*World, error) {
	world := ecs.NewWorld()

	w := &World{
		cfg:         cfg,
		rng:         rng,
		ecs:         world,
		plantMapper: ecs.NewMap2[components.Position, components.Plant](world),
		bodyMapper:  ecs.NewMap2[components.Position, components.Body](world),
		plantFilter: ecs.NewFilter2[components.Position, components.Plant](world),
		bodyFilter:  ecs.NewFilter2[components.Position, components.Body](world),
		species: &critter.Species{
			Name:           "herby",
			InitialFitness: 0,
			InitialEnergy:  1,
		},
	}
	w.sensor = &ProximitySensor{world: w}

	// Resolve brain topology: sensor width in, hidden layers, two outputs.
	acts := make([]neural.Activation, len(cfg.Neural.Activations))
	for i, name := range cfg.Neural.Activations {
		a, err := neural.GetActivation(name)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		acts[i] = a
	}
	w.acts = acts
	w.widths = append(append([]int{w.sensor.Width()}, cfg.Neural.HiddenLayers...), BrainOutputs)

	if err := w.spawnInitial(); err != nil {
		return nil, err
	}
	return w, nil
}

// Age returns the number of completed generations.
func (w *World) Age() int { return w.age }

// Critters returns the current population in its canonical order.
func (w *World) Critters() []*critter.Critter { return w.pop }

// Species returns the world's single evolved species.
func (w *World) Species() *critter.Species { return w.species }

// spawnInitial creates the generation-0 population and the first plants.
func (w *World) spawnInitial() error {
	for i := 0; i < w.cfg.Population.Size; i++ {
		ph := critter.RandomPhysique(w.rng, w.cfg.Physique.Min, w.cfg.Physique.Max)
		brain, err := neural.Random(w.rng, w.acts, w.widths)
		if err != nil {
			return fmt.Errorf("sim: spawning generation 0: %w", err)
		}
		c := w.species.Make(ph, w.sensor, brain, w.randomLocation())
		w.addCritter(c)
	}
	w.spawnPlants()
	return nil
}

// addCritter registers a critter in the population and mirrors it as an
// entity for spatial queries.
func (w *World) addCritter(c *critter.Critter) {
	w.pop = append(w.pop, c)
	pos := components.Position{X: c.Location.X, Y: c.Location.Y}
	body := components.Body{Critter: c}
	w.bodyMapper.NewEntity(&pos, &body)
}

// spawnPlants replenishes the plant supply for a new generation.
func (w *World) spawnPlants() {
	for i := 0; i < w.cfg.World.Plants; i++ {
		pos := components.Position{
			X: w.rng.Float64() * w.cfg.World.Width,
			Y: w.rng.Float64() * w.cfg.World.Height,
		}
		plant := components.Plant{Energy: w.cfg.World.PlantEnergy}
		w.plantMapper.NewEntity(&pos, &plant)
	}
}

func (w *World) randomLocation() critter.Location {
	return critter.Location{
		X:       w.rng.Float64() * w.cfg.World.Width,
		Y:       w.rng.Float64() * w.cfg.World.Height,
		Heading: w.rng.Float64() * 2 * math.Pi,
	}
}

// Step advances the world by one tick: every critter senses, thinks, and
// moves, then plants within graze range are eaten and removed.
func (w *World) Step() error {
	w.rebuildPlantCache()

	query := w.bodyFilter.Query()
	for query.Next() {
		pos, body := query.Get()
		c := body.Critter

		inputs := w.sensor.Sense(c)
		out, err := c.Brain.Infer(inputs)
		if err != nil {
			return fmt.Errorf("sim: step %d: %w", w.step, err)
		}
		w.move(c, out)

		pos.X = c.Location.X
		pos.Y = c.Location.Y
	}

	w.grazePass()
	w.removeEatenPlants()
	w.step++
	return nil
}

// move applies brain outputs to a critter's dynamic state, clamped by its
// physique: out[0] is turn in [-1,1], out[1] thrust in [-1,1] where negative
// thrust brakes.
func (w *World) move(c *critter.Critter, out []float64) {
	ph := c.Physique
	loc := &c.Location

	turn := clamp(out[0], -1, 1) * ph.MaxTurnRate
	loc.Heading = math.Mod(loc.Heading+turn, 2*math.Pi)

	thrust := clamp(out[1], -1, 1)
	if thrust >= 0 {
		loc.Speed += thrust * ph.MaxAccel
	} else {
		loc.Speed += thrust * ph.MaxBrake
	}
	loc.Speed = clamp(loc.Speed, 0, ph.MaxSpeed)

	loc.X = wrap(loc.X+math.Cos(loc.Heading)*loc.Speed, w.cfg.World.Width)
	loc.Y = wrap(loc.Y+math.Sin(loc.Heading)*loc.Speed, w.cfg.World.Height)

	c.Energy -= (baseCostPerStep + moveCostPerStep*loc.Speed) * ph.Mass
}

// grazePass feeds each plant to the first critter within graze range. A
// plant feeds at most one critter per tick.
func (w *World) grazePass() {
	query := w.plantFilter.Query()
	for query.Next() {
		pos, plant := query.Get()
		if plant.Eaten {
			continue
		}
		for _, c := range w.pop {
			dx := pos.X - c.Location.X
			dy := pos.Y - c.Location.Y
			if math.Hypot(dx, dy) <= w.cfg.World.GrazeRadius {
				plant.Eaten = true
				c.Energy += plant.Energy
				break
			}
		}
	}
}

// rebuildPlantCache snapshots uneaten plant positions for sensing.
func (w *World) rebuildPlantCache() {
	w.plantCache = w.plantCache[:0]
	query := w.plantFilter.Query()
	for query.Next() {
		pos, plant := query.Get()
		if !plant.Eaten {
			w.plantCache = append(w.plantCache, *pos)
		}
	}
}

// removeEatenPlants deletes plants flagged during the tick. Collection and
// removal are separate passes; removing during query iteration is not safe.
func (w *World) removeEatenPlants() {
	var toRemove []ecs.Entity
	query := w.plantFilter.Query()
	for query.Next() {
		_, plant := query.Get()
		if plant.Eaten {
			toRemove = append(toRemove, query.Entity())
		}
	}
	for _, e := range toRemove {
		w.plantMapper.Remove(e)
	}
}

// nearestPlant returns the offset and distance from (x, y) to the closest
// uneaten plant, or ok=false when no plants remain.
func (w *World) nearestPlant(x, y float64) (dx, dy, dist float64, ok bool) {
	best := math.Inf(1)
	for _, pos := range w.plantCache {
		ddx := pos.X - x
		ddy := pos.Y - y
		d := math.Hypot(ddx, ddy)
		if d < best {
			best = d
			dx, dy, dist, ok = ddx, ddy, d, true
		}
	}
	return dx, dy, dist, ok
}

// RunGeneration steps the world through one full generation and scores each
// critter: fitness is the energy it holds at the end of the epoch.
func (w *World) RunGeneration() error {
	for i := 0; i < w.cfg.Population.StepsPerGeneration; i++ {
		if err := w.Step(); err != nil {
			return err
		}
	}
	for _, c := range w.pop {
		c.Fitness = c.Energy
	}
	return nil
}

// EvolveGeneration hands the scored population to the evolver and respawns
// the returned generation: every survivor and offspring gets a fresh random
// location and newborn energy, and the plant supply is replenished.
func (w *World) EvolveGeneration(ev *evolver.Evolver) error {
	next, err := ev.Evolve(w.pop, true, true)
	if err != nil {
		return err
	}

	w.clearEntities()
	w.pop = w.pop[:0]
	for _, c := range next {
		c.Location = w.randomLocation()
		c.Energy = w.species.InitialEnergy
		c.Fitness = w.species.InitialFitness
		w.addCritter(c)
	}
	w.spawnPlants()

	w.age++
	w.step = 0
	return nil
}

// clearEntities removes all critter and plant entities between generations.
func (w *World) clearEntities() {
	var toRemove []ecs.Entity

	bodies := w.bodyFilter.Query()
	for bodies.Next() {
		toRemove = append(toRemove, bodies.Entity())
	}
	for _, e := range toRemove {
		w.bodyMapper.Remove(e)
	}

	toRemove = toRemove[:0]
	plants := w.plantFilter.Query()
	for plants.Next() {
		toRemove = append(toRemove, plants.Entity())
	}
	for _, e := range toRemove {
		w.plantMapper.Remove(e)
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func wrap(x, limit float64) float64 {
	if x < 0 {
		return x + limit
	}
	if x >= limit {
		return x - limit
	}
	return x
}
