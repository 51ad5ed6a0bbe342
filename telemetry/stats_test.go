package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jwely/mlgen2/critter"
)

func scoredPopulation(fitness []float64) []*critter.Critter {
	pop := make([]*critter.Critter, len(fitness))
	for i, f := range fitness {
		pop[i] = &critter.Critter{
			Fitness:  f,
			Physique: critter.Physique{Mass: 2, MaxSpeed: 3},
		}
	}
	return pop
}

func TestCollect(t *testing.T) {
	pop := scoredPopulation([]float64{10, 1, 5, 2})

	s := Collect(7, pop)
	if s.Generation != 7 {
		t.Errorf("Generation = %d, want 7", s.Generation)
	}
	if s.Population != 4 {
		t.Errorf("Population = %d, want 4", s.Population)
	}
	if s.BestFitness != 10 {
		t.Errorf("BestFitness = %v, want 10", s.BestFitness)
	}
	if math.Abs(s.MeanFitness-4.5) > 1e-9 {
		t.Errorf("MeanFitness = %v, want 4.5", s.MeanFitness)
	}
	if s.MeanMass != 2 || s.MeanMaxSpeed != 3 {
		t.Errorf("physique means = %v/%v, want 2/3", s.MeanMass, s.MeanMaxSpeed)
	}
}

func TestCollectEmpty(t *testing.T) {
	s := Collect(0, nil)
	if s.Population != 0 || s.BestFitness != 0 {
		t.Errorf("empty population stats = %+v, want zeros", s)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager returned error: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// All methods are no-ops on a nil manager.
	if err := om.WriteGeneration(GenStats{}); err != nil {
		t.Errorf("nil WriteGeneration returned error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close returned error: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager returned error: %v", err)
	}

	if err := om.WriteGeneration(Collect(0, scoredPopulation([]float64{1, 2}))); err != nil {
		t.Fatalf("WriteGeneration returned error: %v", err)
	}
	if err := om.WriteGeneration(Collect(1, scoredPopulation([]float64{3, 4}))); err != nil {
		t.Fatalf("WriteGeneration returned error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 records", len(lines))
	}
	if !strings.Contains(lines[0], "generation") {
		t.Errorf("header missing: %q", lines[0])
	}
	// Header must appear exactly once.
	if strings.Contains(lines[2], "generation") {
		t.Error("header repeated in record lines")
	}
}
