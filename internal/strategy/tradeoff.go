package strategy

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
)

// TradeoffConfig tunes the target-tracking search.
type TradeoffConfig struct {
	// TargetDecrement is subtracted from the target utility each turn.
	TargetDecrement float64
	// Margin bounds |ownUtility − target| for a candidate to qualify.
	Margin float64
	// SampleThreshold is the bid-space size above which the search samples
	// instead of enumerating.
	SampleThreshold int64
	// Attempts is the sample budget when sampling.
	Attempts int
	// CandidateCap stops a sampling search early once enough primary
	// candidates exist.
	CandidateCap int
	// Reservation floors the target utility.
	Reservation float64
}

// DefaultTradeoffConfig matches the strategic-conceder tuning.
func DefaultTradeoffConfig() TradeoffConfig {
	return TradeoffConfig{
		TargetDecrement: 0.0005,
		Margin:          0.05,
		SampleThreshold: 5000,
		Attempts:        1000,
		CandidateCap:    100,
	}
}

// TradeoffTracker holds a per-session target utility that shrinks a little
// every turn, searches for bids near that target, and among them proposes
// the one the opponent is predicted to like most.
type TradeoffTracker struct {
	cfg   TradeoffConfig
	space *domain.BidSpace
	us    profile.UtilitySpace
	model opponent.Model
	rng   *rand.Rand
	log   *zap.Logger

	target      float64
	lastUtility float64
	bestOverall domain.Bid
}

// NewTradeoffTracker wires the strategy. The running best bid is seeded
// from the reservation bid when the profile has one, otherwise from the
// lowest-utility bid in the space.
func NewTradeoffTracker(cfg TradeoffConfig, space *domain.BidSpace, us profile.UtilitySpace, model opponent.Model, rng *rand.Rand, log *zap.Logger) *TradeoffTracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &TradeoffTracker{
		cfg:         cfg,
		space:       space,
		us:          us,
		model:       model,
		rng:         rng,
		log:         log,
		target:      1.0,
		lastUtility: 1.0,
	}
	if res, ok := us.ReservationBid(); ok {
		t.bestOverall = res
	} else {
		t.bestOverall = t.lowestUtilityBid()
	}
	return t
}

// Target returns the current target utility.
func (t *TradeoffTracker) Target() float64 { return t.target }

func (t *TradeoffTracker) Next(progress float64, received *domain.Bid) (domain.Bid, error) {
	t.target = math.Max(t.cfg.Reservation, t.target-t.cfg.TargetDecrement)

	useSampling := t.space.Size() > t.cfg.SampleThreshold
	attempts := int(t.space.Size())
	if useSampling {
		attempts = t.cfg.Attempts
	}

	var primary, secondary []domain.Bid
	highest := t.us.Utility(&t.bestOverall)
	for i := 0; i < attempts; i++ {
		var bid domain.Bid
		if useSampling {
			bid = t.space.Sample(t.rng)
		} else {
			bid = t.space.Get(int64(i))
		}
		own := t.us.Utility(&bid)
		if own > highest {
			highest = own
			t.bestOverall = bid
		}
		if own >= t.target && math.Abs(own-t.target) <= t.cfg.Margin {
			if own >= t.lastUtility {
				primary = append(primary, bid)
			}
			secondary = append(secondary, bid)
		}
		if useSampling && len(primary) > t.cfg.CandidateCap {
			break
		}
	}

	chosen, ok := t.bestForOpponent(primary)
	if !ok {
		chosen, ok = t.bestForOpponent(secondary)
	}
	if !ok {
		chosen = t.fallback()
	}
	t.lastUtility = t.us.Utility(&chosen)
	return chosen, nil
}

// bestForOpponent ranks candidates by predicted opponent utility; ties keep
// the earliest-encountered candidate.
func (t *TradeoffTracker) bestForOpponent(candidates []domain.Bid) (domain.Bid, bool) {
	if len(candidates) == 0 {
		return domain.Bid{}, false
	}
	best := candidates[0]
	bestOpp := t.model.PredictedUtility(&best)
	for _, bid := range candidates[1:] {
		if opp := t.model.PredictedUtility(&bid); opp > bestOpp {
			bestOpp = opp
			best = bid
		}
	}
	return best, true
}

// fallback returns the best bid seen overall, demoting to the reservation
// bid when even that best sits below the reservation value.
func (t *TradeoffTracker) fallback() domain.Bid {
	if t.us.Utility(&t.bestOverall) < t.cfg.Reservation {
		if res, ok := t.us.ReservationBid(); ok {
			t.log.Debug("best-found bid below reservation, proposing reservation bid")
			return res
		}
	}
	return t.bestOverall
}

func (t *TradeoffTracker) lowestUtilityBid() domain.Bid {
	lowest := t.space.Get(0)
	lowestUtil := t.us.Utility(&lowest)
	for i := int64(1); i < t.space.Size(); i++ {
		bid := t.space.Get(i)
		if u := t.us.Utility(&bid); u < lowestUtil {
			lowestUtil = u
			lowest = bid
		}
	}
	return lowest
}
