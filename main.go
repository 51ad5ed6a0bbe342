package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/Jwely/mlgen2/config"
	"github.com/Jwely/mlgen2/evolver"
	"github.com/Jwely/mlgen2/sim"
	"github.com/Jwely/mlgen2/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Generations to run (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	gens := cfg.Population.Generations
	if *generations > 0 {
		gens = *generations
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	ev, err := evolver.New(cfg.Evolver, rng)
	if err != nil {
		slog.Error("failed to create evolver", "error", err)
		os.Exit(1)
	}

	world, err := sim.NewWorld(cfg, rng)
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}

	slog.Info("starting run",
		"seed", rngSeed,
		"population", cfg.Population.Size,
		"generations", gens,
		"steps_per_generation", cfg.Population.StepsPerGeneration)

	start := time.Now()
	for gen := 0; gen < gens; gen++ {
		if err := world.RunGeneration(); err != nil {
			slog.Error("generation failed", "gen", gen, "error", err)
			os.Exit(1)
		}

		stats := telemetry.Collect(gen, world.Critters())
		if err := output.WriteGeneration(stats); err != nil {
			slog.Error("failed to write generation stats", "gen", gen, "error", err)
			os.Exit(1)
		}
		if cfg.Telemetry.LogEvery > 0 && gen%cfg.Telemetry.LogEvery == 0 {
			slog.Info("generation scored",
				"gen", gen,
				"best", stats.BestFitness,
				"mean", stats.MeanFitness,
				"p50", stats.P50Fitness)
		}

		// The last generation is scored but not evolved.
		if gen < gens-1 {
			if err := world.EvolveGeneration(ev); err != nil {
				slog.Error("evolution failed", "gen", gen, "error", err)
				os.Exit(1)
			}
		}
	}

	slog.Info("run complete", "generations", gens, "elapsed", time.Since(start).String())
}
