// Package profile implements linear-additive utility spaces over negotiation
// domains: per-issue weights, per-value utilities, reservation bids, and the
// utility→value inversions the trade-off strategies rely on.
package profile

import (
	"fmt"
	"math"
	"sort"

	"haggle/internal/domain"
)

// ValueUtilities maps legal values of one issue to utilities in [0,1] and
// supports the inverse lookup used when a bid is constructed from per-issue
// target utilities.
type ValueUtilities interface {
	Utility(v domain.Value) float64
	// ValueForUtility returns the legal value whose utility is nearest to
	// target (linear interpolation for number issues).
	ValueForUtility(target float64) domain.Value
}

// NumberUtilities assigns utilities to a continuous range by linear
// interpolation between the endpoints.
type NumberUtilities struct {
	LowValue    float64
	HighValue   float64
	LowUtility  float64
	HighUtility float64
}

func (n NumberUtilities) Utility(v domain.Value) float64 {
	if v.Kind != domain.KindNumber {
		return 0
	}
	if n.HighValue == n.LowValue {
		return clamp01(n.LowUtility)
	}
	frac := (v.Num - n.LowValue) / (n.HighValue - n.LowValue)
	return clamp01(n.LowUtility + frac*(n.HighUtility-n.LowUtility))
}

// ValueForUtility inverts the interpolation. Targets outside the utility
// range resolve to the nearest endpoint.
func (n NumberUtilities) ValueForUtility(target float64) domain.Value {
	if n.HighValue == n.LowValue || n.HighUtility == n.LowUtility {
		return domain.Number(n.LowValue)
	}
	val := n.LowValue + (n.HighValue-n.LowValue)*(target-n.LowUtility)/(n.HighUtility-n.LowUtility)
	lo, hi := n.LowValue, n.HighValue
	if lo > hi {
		lo, hi = hi, lo
	}
	return domain.Number(math.Min(hi, math.Max(lo, val)))
}

// Increasing reports whether utility grows with the numeric value.
func (n NumberUtilities) Increasing() bool { return n.LowUtility < n.HighUtility }

// DiscreteUtilities assigns a utility to every value of a discrete set.
type DiscreteUtilities struct {
	set    *domain.DiscreteValueSet
	utils  map[domain.Value]float64
	ranked []domain.Value
}

// NewDiscreteUtilities validates that every value of the set has a utility
// in [0,1] and precomputes the utility-descending ranking.
func NewDiscreteUtilities(set *domain.DiscreteValueSet, utils map[string]float64) (*DiscreteUtilities, error) {
	d := &DiscreteUtilities{
		set:   set,
		utils: make(map[domain.Value]float64, set.Size()),
	}
	for _, v := range set.Values() {
		u, ok := utils[v.Text]
		if !ok {
			return nil, fmt.Errorf("discrete utilities: no utility for value %q", v.Text)
		}
		if u < 0 || u > 1 {
			return nil, fmt.Errorf("discrete utilities: utility %v for value %q outside [0,1]", u, v.Text)
		}
		d.utils[v] = u
	}
	d.ranked = append(d.ranked, set.Values()...)
	sort.SliceStable(d.ranked, func(i, j int) bool {
		return d.utils[d.ranked[i]] > d.utils[d.ranked[j]]
	})
	return d, nil
}

func (d *DiscreteUtilities) Utility(v domain.Value) float64 {
	return d.utils[v]
}

// ValueForUtility returns the discrete value whose utility is closest to
// target, first match in set order on ties.
func (d *DiscreteUtilities) ValueForUtility(target float64) domain.Value {
	best := d.set.Get(0)
	bestDist := math.Abs(d.utils[best] - target)
	for _, v := range d.set.Values()[1:] {
		if dist := math.Abs(d.utils[v] - target); dist < bestDist {
			best, bestDist = v, dist
		}
	}
	return best
}

// Ranked returns the values ordered by utility, best first. Read-only.
func (d *DiscreteUtilities) Ranked() []domain.Value { return d.ranked }

func clamp01(u float64) float64 {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
