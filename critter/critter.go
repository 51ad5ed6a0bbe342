// Package critter defines the evolvable unit of the simulation: a physique,
// a brain, and a shared sensory extractor, wrapped in a critter that the
// surrounding simulation scores.
package critter

import (
	"github.com/Jwely/mlgen2/neural"
)

// Location is a critter's dynamic spatial state. It changes over the
// critter's life and is never inherited; offspring get a fresh one.
type Location struct {
	X, Y    float64 // position
	Heading float64 // direction of facing, radians
	Speed   float64 // speed of movement along heading
}

// Sensory extracts feature vectors from the world for feeding into a brain.
// It defines the brain input's shape and meaning and is shared by identity:
// two critters can only mate if they carry the very same extractor, so
// implementations must be comparable (use pointer types).
type Sensory interface {
	// Labels names the features in order.
	Labels() []string
	// Width is the feature vector width, len(Labels()).
	Width() int
}

// Species describes one kind of critter and how to construct an individual
// of it. The evolver never instantiates critters directly; it asks the
// primary parent's species to build the offspring from evolved parts.
// Species are compared by pointer identity, so declare each once.
type Species struct {
	Name           string
	InitialFitness float64 // fitness assigned to newborns
	InitialEnergy  float64 // energy assigned to newborns

	// New constructs an individual. When nil, a plain critter is built.
	New func(ph Physique, sn Sensory, br *neural.Brain, loc Location) *Critter
}

// Make builds an individual of this species with newborn fitness and energy.
func (sp *Species) Make(ph Physique, sn Sensory, br *neural.Brain, loc Location) *Critter {
	if sp.New != nil {
		return sp.New(ph, sn, br, loc)
	}
	return &Critter{
		Species:  sp,
		Physique: ph,
		Sensory:  sn,
		Brain:    br,
		Location: loc,
		Fitness:  sp.InitialFitness,
		Energy:   sp.InitialEnergy,
	}
}

// Critter is one individual. The evolvable genome is the (Physique, Brain)
// pair; Sensory is carried alongside but never copied or mutated. Location,
// Fitness, and Energy are dynamic state owned by the surrounding simulation:
// fitness is assigned externally each generation and only means anything
// within that generation's comparison.
type Critter struct {
	Species  *Species
	Physique Physique
	Sensory  Sensory
	Brain    *neural.Brain

	Location Location
	Fitness  float64
	Energy   float64
}
