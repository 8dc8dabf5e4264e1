// Package opponent estimates a counterpart's hidden preference structure
// from the sequence of offers it makes. Three interchangeable estimators
// implement one contract; which one a session uses is decided at setup from
// the domain shape, never by runtime type inspection.
package opponent

import (
	"errors"
	"fmt"

	"haggle/internal/domain"
)

// ErrUnsupportedIssueType is returned when an estimator that supports
// discrete issues only is constructed over a domain with a continuous issue.
var ErrUnsupportedIssueType = errors.New("unsupported issue type")

// Model is the common estimator contract. Update never fails on a
// well-formed bid; PredictedUtility returns 0 while the model is uninformed
// or when bid is nil, and a finite value clamped to [0,1] otherwise.
type Model interface {
	Update(bid domain.Bid)
	PredictedUtility(bid *domain.Bid) float64
}

// WeightedModel additionally exposes the inferred per-issue importance
// weights, normalized to sum to 1, for trade-off bid construction.
type WeightedModel interface {
	Model
	IssueWeight(issue string) float64
}

// discreteSets collects the value set of every issue, failing on the first
// continuous one.
func discreteSets(d *domain.Domain) (map[string]*domain.DiscreteValueSet, error) {
	sets := make(map[string]*domain.DiscreteValueSet, len(d.Issues()))
	for _, issue := range d.Issues() {
		vs, _ := d.Values(issue)
		dset, ok := vs.(*domain.DiscreteValueSet)
		if !ok {
			return nil, fmt.Errorf("issue %q: %w", issue, ErrUnsupportedIssueType)
		}
		sets[issue] = dset
	}
	return sets, nil
}

func clamp01(u float64) float64 {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
