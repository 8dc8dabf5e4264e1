// Package simulate runs in-process self-play negotiation matches between
// two configured sessions under a shared round clock. It is tooling around
// the decision core, not a communication protocol.
package simulate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haggle/internal/agent"
	"haggle/internal/config"
	"haggle/internal/domain"
	"haggle/internal/profile"
)

// RoundClock derives the progress fraction from an alternating-offers round
// counter. Both sessions of a match share one clock.
type RoundClock struct {
	round int
	max   int
}

// NewRoundClock builds a clock for max rounds.
func NewRoundClock(max int) *RoundClock { return &RoundClock{max: max} }

func (c *RoundClock) Progress() float64 {
	if c.max <= 0 {
		return 1
	}
	t := float64(c.round) / float64(c.max)
	if t > 1 {
		return 1
	}
	return t
}

// Advance moves the clock one round forward.
func (c *RoundClock) Advance() { c.round++ }

// MatchSpec describes one self-play match.
type MatchSpec struct {
	ConfigA  config.SessionConfig
	ConfigB  config.SessionConfig
	ProfileA *profile.LinearAdditive
	ProfileB *profile.LinearAdditive
	Rounds   int
	Seed     int64
}

// Outcome is the result of one match.
type Outcome struct {
	ID        string
	Agreement *domain.Bid
	Rounds    int
	UtilityA  float64
	UtilityB  float64
}

// Agreed reports whether the match ended in an accepted offer.
func (o Outcome) Agreed() bool { return o.Agreement != nil }

// Run plays one match to agreement or deadline.
func Run(spec MatchSpec, log *zap.Logger) (Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	log = log.With(zap.String("match", id))

	clock := NewRoundClock(spec.Rounds)
	sideA, err := agent.New(spec.ConfigA, spec.ProfileA, clock, rand.New(rand.NewSource(spec.Seed)), log.Named("a"))
	if err != nil {
		return Outcome{}, fmt.Errorf("simulate: side A: %w", err)
	}
	sideB, err := agent.New(spec.ConfigB, spec.ProfileB, clock, rand.New(rand.NewSource(spec.Seed+1)), log.Named("b"))
	if err != nil {
		return Outcome{}, fmt.Errorf("simulate: side B: %w", err)
	}
	defer sideA.OnSessionEnd()
	defer sideB.OnSessionEnd()

	outcome := Outcome{ID: id}
	for round := 0; round < spec.Rounds; round++ {
		outcome.Rounds = round + 1

		agreement, err := takeTurn(sideA, sideB)
		if err != nil {
			return Outcome{}, err
		}
		if agreement == nil {
			agreement, err = takeTurn(sideB, sideA)
			if err != nil {
				return Outcome{}, err
			}
		}
		if agreement != nil {
			outcome.Agreement = agreement
			outcome.UtilityA = spec.ProfileA.Utility(agreement)
			outcome.UtilityB = spec.ProfileB.Utility(agreement)
			log.Debug("agreement reached",
				zap.Int("round", round+1),
				zap.Float64("utility_a", outcome.UtilityA),
				zap.Float64("utility_b", outcome.UtilityB))
			return outcome, nil
		}
		clock.Advance()
	}
	log.Debug("deadline reached without agreement", zap.Int("rounds", outcome.Rounds))
	return outcome, nil
}

// takeTurn lets actor decide; an offer is delivered to the counterpart, an
// accept ends the match with the accepted bid.
func takeTurn(actor, counterpart *agent.Session) (*domain.Bid, error) {
	action, err := actor.DecideTurn()
	if err != nil {
		return nil, err
	}
	switch act := action.(type) {
	case agent.Accept:
		bid := act.Bid
		return &bid, nil
	case agent.Offer:
		counterpart.OnOfferReceived(act.Bid)
		return nil, nil
	default:
		return nil, fmt.Errorf("simulate: unexpected action %T", action)
	}
}
