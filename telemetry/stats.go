// Package telemetry collects per-generation statistics and writes them to
// structured output files.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Jwely/mlgen2/critter"
)

// GenStats summarizes one generation at scoring time.
type GenStats struct {
	Generation int `csv:"generation"`
	Population int `csv:"population"`

	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	P10Fitness  float64 `csv:"p10_fitness"`
	P50Fitness  float64 `csv:"p50_fitness"`
	P90Fitness  float64 `csv:"p90_fitness"`

	MeanMass     float64 `csv:"mean_mass"`
	MeanMaxSpeed float64 `csv:"mean_max_speed"`
}

// Collect computes generation statistics from a scored population.
func Collect(generation int, pop []*critter.Critter) GenStats {
	s := GenStats{
		Generation: generation,
		Population: len(pop),
	}
	if len(pop) == 0 {
		return s
	}

	fitness := make([]float64, len(pop))
	mass := make([]float64, len(pop))
	maxSpeed := make([]float64, len(pop))
	for i, c := range pop {
		fitness[i] = c.Fitness
		mass[i] = c.Physique.Mass
		maxSpeed[i] = c.Physique.MaxSpeed
	}

	sort.Float64s(fitness)
	s.BestFitness = fitness[len(fitness)-1]
	s.MeanFitness = stat.Mean(fitness, nil)
	s.P10Fitness = stat.Quantile(0.1, stat.Empirical, fitness, nil)
	s.P50Fitness = stat.Quantile(0.5, stat.Empirical, fitness, nil)
	s.P90Fitness = stat.Quantile(0.9, stat.Empirical, fitness, nil)

	s.MeanMass = stat.Mean(mass, nil)
	s.MeanMaxSpeed = stat.Mean(maxSpeed, nil)

	return s
}
