package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Population.Size < 2 {
		t.Errorf("default population.size = %d, want >= 2", cfg.Population.Size)
	}
	if cfg.Evolver.SelectionFrac <= 0 || cfg.Evolver.SelectionFrac >= 1 {
		t.Errorf("default selection_frac = %v, want in (0, 1)", cfg.Evolver.SelectionFrac)
	}
	if cfg.Derived.Transforms != len(cfg.Neural.HiddenLayers)+1 {
		t.Errorf("Derived.Transforms = %d, want %d", cfg.Derived.Transforms, len(cfg.Neural.HiddenLayers)+1)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := []byte("population:\n  size: 12\nevolver:\n  crossover_rate: 0.9\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatalf("writing override: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Population.Size != 12 {
		t.Errorf("population.size = %d, want 12", cfg.Population.Size)
	}
	if cfg.Evolver.CrossoverRate != 0.9 {
		t.Errorf("crossover_rate = %v, want 0.9", cfg.Evolver.CrossoverRate)
	}
	// Untouched fields keep their defaults.
	if cfg.World.Width == 0 {
		t.Error("world.width lost its default")
	}
}

func TestLoadRejectsBadActivationCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := []byte("neural:\n  hidden_layers: [8, 4]\n  activations: [tanh]\n")
	if err := os.WriteFile(path, bad, 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for mismatched activation count")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg.Population.Size = 17

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML returned error: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written config returned error: %v", err)
	}
	if back.Population.Size != 17 {
		t.Errorf("round-tripped population.size = %d, want 17", back.Population.Size)
	}
}
