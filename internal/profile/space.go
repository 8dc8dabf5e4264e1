package profile

import (
	"fmt"
	"math"

	"haggle/internal/domain"
)

// UtilitySpace is the read-only preference contract consumed by the decision
// core. Implementations must keep every returned utility in [0,1].
type UtilitySpace interface {
	// Utility returns the weighted overall utility of a bid. A nil bid is
	// the legitimate "no information yet" state and yields 0.
	Utility(b *domain.Bid) float64
	// Weight returns the non-negative importance of one issue. Weights sum
	// to 1 across issues.
	Weight(issue string) float64
	// ValueUtility returns the utility of a single value within an issue.
	ValueUtility(issue string, v domain.Value) float64
	// ReservationBid returns the walk-away bid, if any.
	ReservationBid() (domain.Bid, bool)
}

const weightSumTolerance = 1e-6

// LinearAdditive is a weighted-sum utility space: per-issue weights times
// per-issue value utilities.
type LinearAdditive struct {
	domain      *domain.Domain
	weights     map[string]float64
	utils       map[string]ValueUtilities
	reservation *domain.Bid
}

// NewLinearAdditive validates weights (non-negative, covering every issue,
// summing to 1) and per-issue utilities, and builds the space. reservation
// may be nil.
func NewLinearAdditive(d *domain.Domain, weights map[string]float64, utils map[string]ValueUtilities, reservation *domain.Bid) (*LinearAdditive, error) {
	sum := 0.0
	for _, issue := range d.Issues() {
		w, ok := weights[issue]
		if !ok {
			return nil, fmt.Errorf("utility space: no weight for issue %q", issue)
		}
		if w < 0 {
			return nil, fmt.Errorf("utility space: negative weight %v for issue %q", w, issue)
		}
		if _, ok := utils[issue]; !ok {
			return nil, fmt.Errorf("utility space: no value utilities for issue %q", issue)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return nil, fmt.Errorf("utility space: issue weights sum to %v, want 1", sum)
	}
	p := &LinearAdditive{domain: d, weights: weights, utils: utils}
	if reservation != nil {
		cp := *reservation
		p.reservation = &cp
	}
	return p, nil
}

// Domain returns the underlying negotiation domain.
func (p *LinearAdditive) Domain() *domain.Domain { return p.domain }

func (p *LinearAdditive) Utility(b *domain.Bid) float64 {
	if b == nil {
		return 0
	}
	total := 0.0
	for _, issue := range p.domain.Issues() {
		v, ok := b.Value(issue)
		if !ok {
			continue
		}
		total += p.weights[issue] * p.utils[issue].Utility(v)
	}
	return clamp01(total)
}

func (p *LinearAdditive) Weight(issue string) float64 { return p.weights[issue] }

func (p *LinearAdditive) ValueUtility(issue string, v domain.Value) float64 {
	vu, ok := p.utils[issue]
	if !ok {
		return 0
	}
	return clamp01(vu.Utility(v))
}

func (p *LinearAdditive) ReservationBid() (domain.Bid, bool) {
	if p.reservation == nil {
		return domain.Bid{}, false
	}
	return *p.reservation, true
}

// ReservationValue is the utility of the reservation bid, or 0 when the
// profile has none.
func (p *LinearAdditive) ReservationValue() float64 {
	if p.reservation == nil {
		return 0
	}
	return p.Utility(p.reservation)
}

// IssueUtilities exposes the per-issue utility function, needed by the
// concession-curve constructor to rank and invert values.
func (p *LinearAdditive) IssueUtilities(issue string) (ValueUtilities, bool) {
	vu, ok := p.utils[issue]
	return vu, ok
}
