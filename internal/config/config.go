// Package config holds the yaml-backed session and simulation settings.
// Defaults reproduce the tuning the strategies were designed with.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Model variant names.
const (
	ModelFrequency    = "frequency"
	ModelRankDistance = "rankdistance"
	ModelDensity      = "density"
)

// Bidding strategy names.
const (
	BiddingSampler    = "sampler"
	BiddingConcession = "concession"
	BiddingTradeoff   = "tradeoff"
)

// Acceptance policy names.
const (
	AcceptDynamic = "dynamic"
	AcceptCutoff  = "cutoff"
	AcceptNext    = "acnext"
)

// Config is the root configuration.
type Config struct {
	Session  SessionConfig  `yaml:"session"`
	Simulate SimulateConfig `yaml:"simulate"`
}

// SessionConfig selects and tunes one agent's decision stack.
type SessionConfig struct {
	Model      string `yaml:"model"`
	Bidding    string `yaml:"bidding"`
	Acceptance string `yaml:"acceptance"`

	Sampler    SamplerConfig    `yaml:"sampler"`
	Concession ConcessionConfig `yaml:"concession"`
	Tradeoff   TradeoffConfig   `yaml:"tradeoff"`
	Threshold  ThresholdConfig  `yaml:"threshold"`
	// Cutoff is the time fraction beyond which the cutoff policy accepts.
	Cutoff float64 `yaml:"cutoff"`
}

// SamplerConfig tunes the sampling scorer.
type SamplerConfig struct {
	Attempts     int     `yaml:"attempts"`
	InitialAlpha float64 `yaml:"initial_alpha"`
	FinalAlpha   float64 `yaml:"final_alpha"`
	Epsilon      float64 `yaml:"epsilon"`
	Reservation  float64 `yaml:"reservation"`
}

// ConcessionConfig tunes the concession-curve constructor.
type ConcessionConfig struct {
	Kappa            float64 `yaml:"kappa"`
	Beta             float64 `yaml:"beta"`
	NegotiationSpeed float64 `yaml:"negotiation_speed"`
	MinimalUtility   float64 `yaml:"minimal_utility"`
	TauBase          float64 `yaml:"tau_base"`
}

// TradeoffConfig tunes the trade-off target tracker.
type TradeoffConfig struct {
	TargetDecrement float64 `yaml:"target_decrement"`
	Margin          float64 `yaml:"margin"`
	SampleThreshold int64   `yaml:"sample_threshold"`
	Attempts        int     `yaml:"attempts"`
	CandidateCap    int     `yaml:"candidate_cap"`
}

// ThresholdConfig tunes the dynamic acceptance threshold.
type ThresholdConfig struct {
	Initial            float64 `yaml:"initial"`
	Final              float64 `yaml:"final"`
	ConcessionDiscount float64 `yaml:"concession_discount"`
}

// SimulateConfig tunes the self-play runner.
type SimulateConfig struct {
	Matches  int   `yaml:"matches"`
	Rounds   int   `yaml:"rounds"`
	Seed     int64 `yaml:"seed"`
	Parallel int   `yaml:"parallel"`
}

// DefaultConfig returns the canonical tuning.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			Model:      ModelFrequency,
			Bidding:    BiddingSampler,
			Acceptance: AcceptDynamic,
			Sampler: SamplerConfig{
				Attempts:     500,
				InitialAlpha: 1.0,
				FinalAlpha:   0.5,
				Epsilon:      0.1,
				Reservation:  0.65,
			},
			Concession: ConcessionConfig{
				Kappa:            0.1,
				Beta:             0.2,
				NegotiationSpeed: 0.05,
				MinimalUtility:   0.8,
				TauBase:          0.1,
			},
			Tradeoff: TradeoffConfig{
				TargetDecrement: 0.0005,
				Margin:          0.05,
				SampleThreshold: 5000,
				Attempts:        1000,
				CandidateCap:    100,
			},
			Threshold: ThresholdConfig{
				Initial:            0.95,
				Final:              0.70,
				ConcessionDiscount: 0.10,
			},
			Cutoff: 0.95,
		},
		Simulate: SimulateConfig{
			Matches:  10,
			Rounds:   1000,
			Seed:     1,
			Parallel: 4,
		},
	}
}

// Validate checks the variant selectors.
func (c *Config) Validate() error {
	return c.Session.Validate()
}

// Validate checks one session's variant selectors.
func (s *SessionConfig) Validate() error {
	switch s.Model {
	case ModelFrequency, ModelRankDistance, ModelDensity:
	default:
		return fmt.Errorf("config: unknown opponent model %q", s.Model)
	}
	switch s.Bidding {
	case BiddingSampler, BiddingConcession, BiddingTradeoff:
	default:
		return fmt.Errorf("config: unknown bidding strategy %q", s.Bidding)
	}
	switch s.Acceptance {
	case AcceptDynamic, AcceptCutoff, AcceptNext:
	default:
		return fmt.Errorf("config: unknown acceptance policy %q", s.Acceptance)
	}
	return nil
}

// Load reads and validates a yaml config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
