// Package agent is the turn controller: it owns one negotiation session's
// state, feeds received offers to the opponent estimator, and emits exactly
// one action per turn.
package agent

import "haggle/internal/domain"

// Action is the single decision a session emits per turn.
type Action interface {
	isAction()
}

// Accept accepts the opponent's last offer.
type Accept struct {
	Bid domain.Bid
}

// Offer proposes a counter-offer.
type Offer struct {
	Bid domain.Bid
}

func (Accept) isAction() {}
func (Offer) isAction()  {}

// Progress supplies the elapsed time fraction t in [0,1]. It is owned by
// the surrounding protocol clock and must be non-decreasing within a
// session.
type Progress interface {
	Progress() float64
}

// ProgressFunc adapts a plain function to Progress.
type ProgressFunc func() float64

func (f ProgressFunc) Progress() float64 { return f() }
