// Package evolver implements the generational genetic algorithm that turns a
// scored population of critters into the next generation: truncation
// selection with elitism, pairwise blend crossover, and bounded single-field
// mutation of physique and brain.
package evolver

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/Jwely/mlgen2/critter"
	"github.com/Jwely/mlgen2/neural"
)

var (
	// ErrConfiguration reports out-of-range hyperparameters at construction.
	ErrConfiguration = errors.New("evolver: invalid configuration")
	// ErrSpeciesMismatch reports an attempt to mate incompatible genomes.
	// A malformed parent pool is a programming error, not a runtime
	// condition to recover from.
	ErrSpeciesMismatch = errors.New("evolver: species mismatch")
	// ErrEmptyPopulation reports selection or evolution invoked on a
	// population too small to yield a pairable parent pool.
	ErrEmptyPopulation = errors.New("evolver: population too small")
)

// Config holds the evolver's hyperparameters, fixed at construction.
type Config struct {
	// SelectionFrac is the fraction of the population retained as parents,
	// exclusive (0, 1).
	SelectionFrac float64 `yaml:"selection_frac"`
	// CrossoverRate is the blend weight toward the secondary parent, [0, 1].
	// 0.5 yields the arithmetic mean of the parents.
	CrossoverRate float64 `yaml:"crossover_rate"`
	// PhysicalMutationRate bounds the relative perturbation of one physique
	// field per mating, >= 0.
	PhysicalMutationRate float64 `yaml:"physical_mutation_rate"`
	// MentalMutationRate bounds the relative perturbation of one brain
	// weight tensor per mating, >= 0.
	MentalMutationRate float64 `yaml:"mental_mutation_rate"`
}

// Evolver breeds successive same-size generations from scored populations.
// It holds no cross-generation state beyond its hyperparameters; randomness
// comes from the injected source so runs are reproducible given a seed.
type Evolver struct {
	cfg Config
	rng *rand.Rand
}

// New validates the hyperparameters and creates an evolver using rng for all
// selection pairing and mutation draws.
func New(cfg Config, rng *rand.Rand) (*Evolver, error) {
	if cfg.SelectionFrac <= 0 || cfg.SelectionFrac >= 1 {
		return nil, fmt.Errorf("%w: selection_frac %v outside (0, 1)", ErrConfiguration, cfg.SelectionFrac)
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("%w: crossover_rate %v outside [0, 1]", ErrConfiguration, cfg.CrossoverRate)
	}
	if cfg.PhysicalMutationRate < 0 {
		return nil, fmt.Errorf("%w: physical_mutation_rate %v is negative", ErrConfiguration, cfg.PhysicalMutationRate)
	}
	if cfg.MentalMutationRate < 0 {
		return nil, fmt.Errorf("%w: mental_mutation_rate %v is negative", ErrConfiguration, cfg.MentalMutationRate)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}
	return &Evolver{cfg: cfg, rng: rng}, nil
}

// Config returns the evolver's hyperparameters.
func (e *Evolver) Config() Config { return e.cfg }

// Select sorts the population by fitness descending (stable, so ties keep
// their original order) and returns the top floor(N*selection_frac)
// individuals. The subset is the parent pool for the next generation and
// survives into it unchanged.
func (e *Evolver) Select(pop []*critter.Critter) ([]*critter.Critter, error) {
	if len(pop) < 2 {
		return nil, fmt.Errorf("%w: got %d individuals, need at least 2", ErrEmptyPopulation, len(pop))
	}

	sorted := append([]*critter.Critter(nil), pop...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})

	n := int(float64(len(sorted)) * e.cfg.SelectionFrac)
	if n < 2 {
		return nil, fmt.Errorf("%w: selection_frac %v of %d individuals leaves %d parents, pairing needs 2",
			ErrEmptyPopulation, e.cfg.SelectionFrac, len(pop), n)
	}
	return sorted[:n], nil
}

// Mate produces one offspring from two parents of the same species. Physique
// and brain come from blend crossover followed by the optional mutations; the
// sensory extractor is inherited by reference from the primary parent, and
// the offspring gets the given location with fitness reset to the species'
// initial value.
func (e *Evolver) Mate(primary, secondary *critter.Critter, loc critter.Location, mutatePhysique, mutateBrain bool) (*critter.Critter, error) {
	if err := compatible(primary, secondary); err != nil {
		return nil, err
	}

	ph := primary.Physique.Blend(secondary.Physique, e.cfg.CrossoverRate)
	br, err := neural.Blend(primary.Brain, secondary.Brain, e.cfg.CrossoverRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpeciesMismatch, err)
	}

	if mutatePhysique {
		ph.MutateField(e.rng, e.cfg.PhysicalMutationRate)
	}
	if mutateBrain {
		br.MutateLayer(e.rng, e.cfg.MentalMutationRate)
	}

	return primary.Species.Make(ph, primary.Sensory, br, loc), nil
}

// Evolve returns the next generation: the selected parents unchanged followed
// by enough offspring to restore the population size exactly. Each offspring
// comes from two distinct parents drawn uniformly from the pool, with
// replacement across draws. Offspring locations are zeroed; the surrounding
// simulation assigns spawn locations when it instantiates critters.
func (e *Evolver) Evolve(pop []*critter.Critter, mutatePhysique, mutateBrain bool) ([]*critter.Critter, error) {
	parents, err := e.Select(pop)
	if err != nil {
		return nil, err
	}

	next := make([]*critter.Critter, 0, len(pop))
	next = append(next, parents...)

	deficit := len(pop) - len(parents)
	for i := 0; i < deficit; i++ {
		a := e.rng.Intn(len(parents))
		b := e.rng.Intn(len(parents) - 1)
		if b >= a {
			b++
		}
		offspring, err := e.Mate(parents[a], parents[b], critter.Location{}, mutatePhysique, mutateBrain)
		if err != nil {
			return nil, err
		}
		next = append(next, offspring)
	}

	return next, nil
}

// compatible checks the mating preconditions: same species, same sensory
// extractor (by identity), and matching brain topology.
func compatible(primary, secondary *critter.Critter) error {
	if primary.Species == nil || secondary.Species == nil || primary.Species != secondary.Species {
		return fmt.Errorf("%w: cannot mate %s with %s",
			ErrSpeciesMismatch, speciesName(primary), speciesName(secondary))
	}
	if primary.Sensory != secondary.Sensory {
		return fmt.Errorf("%w: parents carry different sensory extractors", ErrSpeciesMismatch)
	}
	if primary.Brain == nil || secondary.Brain == nil {
		return fmt.Errorf("%w: parent without a brain", ErrSpeciesMismatch)
	}
	if !primary.Brain.SameTopology(secondary.Brain) {
		return fmt.Errorf("%w: parents have incompatible brain topologies", ErrSpeciesMismatch)
	}
	return nil
}

func speciesName(c *critter.Critter) string {
	if c.Species == nil {
		return "<no species>"
	}
	return c.Species.Name
}
