package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got: %v", err)
	}
	if cfg.Session.Model != ModelFrequency {
		t.Errorf("default model = %q, want %q", cfg.Session.Model, ModelFrequency)
	}
	if cfg.Session.Bidding != BiddingSampler {
		t.Errorf("default bidding = %q, want %q", cfg.Session.Bidding, BiddingSampler)
	}
	if cfg.Session.Acceptance != AcceptDynamic {
		t.Errorf("default acceptance = %q, want %q", cfg.Session.Acceptance, AcceptDynamic)
	}
	if cfg.Session.Sampler.Attempts != 500 {
		t.Errorf("default sampler attempts = %d, want 500", cfg.Session.Sampler.Attempts)
	}
	if cfg.Session.Threshold.Initial != 0.95 || cfg.Session.Threshold.Final != 0.70 {
		t.Errorf("default threshold = %v..%v, want 0.95..0.70",
			cfg.Session.Threshold.Initial, cfg.Session.Threshold.Final)
	}
	if cfg.Simulate.Rounds != 1000 {
		t.Errorf("default rounds = %d, want 1000", cfg.Simulate.Rounds)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "haggle.yaml")

	cfg := DefaultConfig()
	cfg.Session.Model = ModelDensity
	cfg.Session.Tradeoff.Margin = 0.07
	cfg.Simulate.Seed = 99

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config changed across save/load (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := "simulate:\n  matches: 3\nsession:\n  model: rankdistance\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Simulate.Matches != 3 {
		t.Errorf("matches = %d, want 3", cfg.Simulate.Matches)
	}
	if cfg.Session.Model != ModelRankDistance {
		t.Errorf("model = %q, want %q", cfg.Session.Model, ModelRankDistance)
	}
	// Untouched fields keep their defaults.
	if cfg.Simulate.Rounds != 1000 {
		t.Errorf("rounds = %d, want default 1000", cfg.Simulate.Rounds)
	}
	if cfg.Session.Bidding != BiddingSampler {
		t.Errorf("bidding = %q, want default %q", cfg.Session.Bidding, BiddingSampler)
	}
}

func TestValidateRejectsUnknownVariants(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"model", func(c *Config) { c.Session.Model = "psychic" }},
		{"bidding", func(c *Config) { c.Session.Bidding = "yolo" }},
		{"acceptance", func(c *Config) { c.Session.Acceptance = "always" }},
		{"empty model", func(c *Config) { c.Session.Model = "" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("session:\n  model: warlock\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown model")
	}
}
