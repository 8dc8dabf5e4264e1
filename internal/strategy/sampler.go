package strategy

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
)

// SamplingScorerConfig tunes the reservation-filtered random search.
type SamplingScorerConfig struct {
	// Attempts is the number of random candidates drawn per pass.
	Attempts int
	// InitialAlpha and FinalAlpha bound the linear own-utility weight
	// interpolation over time.
	InitialAlpha float64
	FinalAlpha   float64
	// Epsilon shapes the time-pressure decay 1 − t^(1/(ε+tiny)).
	Epsilon float64
	// Reservation is the own-utility floor of the first search pass.
	Reservation float64
}

// DefaultSamplingScorerConfig matches the adaptive-learner tuning.
func DefaultSamplingScorerConfig() SamplingScorerConfig {
	return SamplingScorerConfig{
		Attempts:     500,
		InitialAlpha: 1.0,
		FinalAlpha:   0.5,
		Epsilon:      0.1,
		Reservation:  0.65,
	}
}

// SamplingScorer draws random candidate bids and keeps the best under a
// score that trades own utility against predicted opponent utility, leaning
// further toward the opponent as the deadline nears and as the opponent is
// seen to concede.
type SamplingScorer struct {
	cfg     SamplingScorerConfig
	space   *domain.BidSpace
	us      profile.UtilitySpace
	model   opponent.Model
	tracker *opponent.ConcessionTracker
	rng     *rand.Rand
	log     *zap.Logger
}

// NewSamplingScorer wires the search. tracker may be nil, in which case the
// behavior weight stays at its neutral 0.5.
func NewSamplingScorer(cfg SamplingScorerConfig, space *domain.BidSpace, us profile.UtilitySpace, model opponent.Model, tracker *opponent.ConcessionTracker, rng *rand.Rand, log *zap.Logger) *SamplingScorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SamplingScorer{cfg: cfg, space: space, us: us, model: model, tracker: tracker, rng: rng, log: log}
}

// Next runs the two-pass search: reservation-filtered first, unfiltered if
// the filter starved the candidate set. The first bid reaching the maximum
// score wins.
func (s *SamplingScorer) Next(t float64, received *domain.Bid) (domain.Bid, error) {
	best, found := s.search(t, true)
	if !found {
		s.log.Debug("no candidate above reservation, retrying unfiltered",
			zap.Float64("reservation", s.cfg.Reservation))
		best, _ = s.search(t, false)
	}
	return best, nil
}

func (s *SamplingScorer) search(t float64, filtered bool) (domain.Bid, bool) {
	var best domain.Bid
	bestScore := math.Inf(-1)
	found := false
	for i := 0; i < s.cfg.Attempts; i++ {
		bid := s.space.Sample(s.rng)
		if filtered && s.us.Utility(&bid) < s.cfg.Reservation {
			continue
		}
		if score := s.score(t, &bid); score > bestScore {
			bestScore = score
			best = bid
			found = true
		}
	}
	return best, found
}

// score is α(t)·π(t)·own + (1 − α(t)·π(t))·behaviorWeight·opp.
func (s *SamplingScorer) score(t float64, bid *domain.Bid) float64 {
	own := s.us.Utility(bid)
	alpha := s.cfg.InitialAlpha - (s.cfg.InitialAlpha-s.cfg.FinalAlpha)*t
	pressure := 1 - math.Pow(t, 1/(s.cfg.Epsilon+1e-6))
	score := alpha * pressure * own

	behaviorWeight := 0.5
	if s.tracker != nil {
		behaviorWeight = 0.5 + 0.5*s.tracker.Concession()
	}
	score += (1 - alpha*pressure) * behaviorWeight * s.model.PredictedUtility(bid)
	return score
}
