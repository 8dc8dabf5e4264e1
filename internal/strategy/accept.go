package strategy

import (
	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
)

// DynamicThreshold accepts offers above a time-decaying utility threshold,
// relaxed further as the opponent is observed to concede, never below the
// reservation value.
type DynamicThreshold struct {
	Initial               float64
	Final                 float64
	MaxConcessionDiscount float64
	Reservation           float64

	us      profile.UtilitySpace
	tracker *opponent.ConcessionTracker
}

// NewDynamicThreshold builds the policy with the adaptive-learner defaults
// 0.95 → 0.70 and a concession discount of up to 0.10.
func NewDynamicThreshold(us profile.UtilitySpace, tracker *opponent.ConcessionTracker, reservation float64) *DynamicThreshold {
	return &DynamicThreshold{
		Initial:               0.95,
		Final:                 0.70,
		MaxConcessionDiscount: 0.10,
		Reservation:           reservation,
		us:                    us,
		tracker:               tracker,
	}
}

// Threshold computes the acceptance bar at progress t.
func (p *DynamicThreshold) Threshold(t float64) float64 {
	threshold := p.Initial - (p.Initial-p.Final)*t
	if p.tracker != nil {
		threshold -= p.tracker.Concession() * p.MaxConcessionDiscount
	}
	if threshold < p.Reservation {
		threshold = p.Reservation
	}
	return threshold
}

func (p *DynamicThreshold) ShouldAccept(t float64, received, next *domain.Bid) bool {
	if received == nil {
		return false
	}
	return p.us.Utility(received) >= p.Threshold(t)
}

// TimeCutoff accepts any non-nil offer once the deadline is close enough,
// independent of bid content.
type TimeCutoff struct {
	Cutoff float64
}

// NewTimeCutoff builds the policy with the deadline-pusher cutoff 0.95.
func NewTimeCutoff() *TimeCutoff { return &TimeCutoff{Cutoff: 0.95} }

func (p *TimeCutoff) ShouldAccept(t float64, received, next *domain.Bid) bool {
	return received != nil && t > p.Cutoff
}

// NextOffer is AC-next: accept iff the received offer is at least as good
// for us as both the reservation value and the counter-offer we would make
// this turn.
type NextOffer struct {
	Reservation float64

	us profile.UtilitySpace
}

// NewNextOffer builds the policy.
func NewNextOffer(us profile.UtilitySpace, reservation float64) *NextOffer {
	return &NextOffer{Reservation: reservation, us: us}
}

func (p *NextOffer) ShouldAccept(t float64, received, next *domain.Bid) bool {
	if received == nil {
		return false
	}
	receivedUtility := p.us.Utility(received)
	if receivedUtility < p.Reservation {
		return false
	}
	return receivedUtility >= p.us.Utility(next)
}
