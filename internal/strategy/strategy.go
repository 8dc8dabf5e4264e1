// Package strategy contains the bid-generation strategies and acceptance
// policies that consume the opponent estimators. All strategies operate
// against an externally supplied time-progress fraction t in [0,1] and the
// agent's own utility space; randomness is injected so fixed seeds
// reproduce exact decisions.
package strategy

import "haggle/internal/domain"

// BidStrategy produces the counter-offer the agent would make at progress
// t, given the opponent's last received offer (nil before any offer).
type BidStrategy interface {
	Next(t float64, received *domain.Bid) (domain.Bid, error)
}

// AcceptancePolicy decides between accepting the received offer and making
// the counter-offer the bid strategy produced for this turn. All policies
// reject while no offer has been received.
type AcceptancePolicy interface {
	ShouldAccept(t float64, received, next *domain.Bid) bool
}
