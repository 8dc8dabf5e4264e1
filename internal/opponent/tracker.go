package opponent

import "haggle/internal/domain"

// ConcessionTracker estimates how much the opponent has conceded: the
// relative drop between the model's predicted utility of the opponent's
// first offer and of its latest offer, clamped to [0,1]. Both readings come
// from the same evolving model, so the first reading is taken immediately
// after the first update, matching how the estimate is consumed.
type ConcessionTracker struct {
	model      Model
	initial    float64
	current    float64
	hasInitial bool
}

// NewConcessionTracker wraps an estimator.
func NewConcessionTracker(model Model) *ConcessionTracker {
	return &ConcessionTracker{model: model}
}

// Observe records the opponent's latest offer. Call after the model itself
// has been updated with the same bid.
func (t *ConcessionTracker) Observe(bid domain.Bid) {
	u := t.model.PredictedUtility(&bid)
	if !t.hasInitial {
		t.initial = u
		t.hasInitial = true
	}
	t.current = u
}

// Concession returns the clamped relative utility drop, 0 while no offer
// has been observed or the initial estimate is 0.
func (t *ConcessionTracker) Concession() float64 {
	if !t.hasInitial || t.initial <= 0 {
		return 0
	}
	return clamp01((t.initial - t.current) / t.initial)
}

// Observed reports whether at least one offer has been seen.
func (t *ConcessionTracker) Observed() bool { return t.hasInitial }
