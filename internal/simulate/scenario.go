package simulate

import (
	"fmt"

	"haggle/internal/domain"
	"haggle/internal/profile"
)

// DemoScenario builds a small all-discrete party-planning domain with two
// opposed profiles, usable out of the box by the CLI and tests.
func DemoScenario() (*profile.LinearAdditive, *profile.LinearAdditive, error) {
	d, err := domain.New([]domain.Issue{
		{Name: "venue", Values: domain.NewDiscreteValueSet("ballroom", "garden", "beach_club")},
		{Name: "catering", Values: domain.NewDiscreteValueSet("buffet", "plated", "food_trucks")},
		{Name: "music", Values: domain.NewDiscreteValueSet("dj", "live_band", "playlist")},
		{Name: "budget", Values: domain.NewDiscreteValueSet("tight", "moderate", "generous")},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("demo scenario: %w", err)
	}

	host, err := buildProfile(d,
		map[string]float64{"venue": 0.35, "catering": 0.15, "music": 0.10, "budget": 0.40},
		map[string]map[string]float64{
			"venue":    {"ballroom": 1.0, "garden": 0.6, "beach_club": 0.2},
			"catering": {"buffet": 1.0, "plated": 0.5, "food_trucks": 0.3},
			"music":    {"dj": 0.8, "live_band": 0.4, "playlist": 1.0},
			"budget":   {"tight": 1.0, "moderate": 0.5, "generous": 0.1},
		})
	if err != nil {
		return nil, nil, err
	}

	guest, err := buildProfile(d,
		map[string]float64{"venue": 0.15, "catering": 0.35, "music": 0.30, "budget": 0.20},
		map[string]map[string]float64{
			"venue":    {"ballroom": 0.2, "garden": 0.7, "beach_club": 1.0},
			"catering": {"buffet": 0.3, "plated": 1.0, "food_trucks": 0.7},
			"music":    {"dj": 0.5, "live_band": 1.0, "playlist": 0.2},
			"budget":   {"tight": 0.1, "moderate": 0.6, "generous": 1.0},
		})
	if err != nil {
		return nil, nil, err
	}
	return host, guest, nil
}

func buildProfile(d *domain.Domain, weights map[string]float64, valueUtils map[string]map[string]float64) (*profile.LinearAdditive, error) {
	utils := make(map[string]profile.ValueUtilities, len(valueUtils))
	for _, issue := range d.Issues() {
		vs, _ := d.Values(issue)
		set, ok := vs.(*domain.DiscreteValueSet)
		if !ok {
			return nil, fmt.Errorf("demo scenario: issue %q is not discrete", issue)
		}
		du, err := profile.NewDiscreteUtilities(set, valueUtils[issue])
		if err != nil {
			return nil, fmt.Errorf("demo scenario: %w", err)
		}
		utils[issue] = du
	}
	p, err := profile.NewLinearAdditive(d, weights, utils, nil)
	if err != nil {
		return nil, fmt.Errorf("demo scenario: %w", err)
	}
	return p, nil
}
