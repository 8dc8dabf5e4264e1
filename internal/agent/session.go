package agent

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"haggle/internal/config"
	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
	"haggle/internal/strategy"
)

// Session is one negotiation agent instance. All state is per-session;
// nothing is shared or persisted across sessions.
type Session struct {
	clock    Progress
	us       *profile.LinearAdditive
	model    opponent.Model
	tracker  *opponent.ConcessionTracker
	bidder   strategy.BidStrategy
	acceptor strategy.AcceptancePolicy
	log      *zap.Logger

	lastReceived *domain.Bid
	turns        int
	ended        bool
}

// New assembles a session from config. Variant selection happens here, once,
// based on the domain shape: the discrete-only estimators refuse mixed
// domains at construction, so an invalid pairing is a setup error rather
// than a runtime failure.
func New(cfg config.SessionConfig, us *profile.LinearAdditive, clock Progress, rng *rand.Rand, log *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := us.Domain()

	var (
		model    opponent.Model
		weighted opponent.WeightedModel
		err      error
	)
	switch cfg.Model {
	case config.ModelFrequency:
		var m *opponent.FrequencyBayesian
		m, err = opponent.NewFrequencyBayesian(d, log)
		model, weighted = m, m
	case config.ModelRankDistance:
		var m *opponent.RankDistance
		m, err = opponent.NewRankDistance(d)
		model, weighted = m, m
	case config.ModelDensity:
		var m *opponent.DensityEstimation
		m, err = opponent.NewDensityEstimation(d, rng)
		model, weighted = m, m
	}
	if err != nil {
		return nil, fmt.Errorf("agent: opponent model %q: %w", cfg.Model, err)
	}
	tracker := opponent.NewConcessionTracker(model)

	var bidder strategy.BidStrategy
	switch cfg.Bidding {
	case config.BiddingSampler:
		space, err := domain.NewBidSpace(d)
		if err != nil {
			return nil, fmt.Errorf("agent: sampler bidding: %w", err)
		}
		bidder = strategy.NewSamplingScorer(strategy.SamplingScorerConfig{
			Attempts:     cfg.Sampler.Attempts,
			InitialAlpha: cfg.Sampler.InitialAlpha,
			FinalAlpha:   cfg.Sampler.FinalAlpha,
			Epsilon:      cfg.Sampler.Epsilon,
			Reservation:  cfg.Sampler.Reservation,
		}, space, us, model, tracker, rng, log)
	case config.BiddingConcession:
		minimal := cfg.Concession.MinimalUtility
		if _, ok := us.ReservationBid(); ok {
			minimal = us.ReservationValue()
		}
		bidder = strategy.NewConcessionCurve(strategy.ConcessionCurveConfig{
			Kappa:            cfg.Concession.Kappa,
			Beta:             cfg.Concession.Beta,
			NegotiationSpeed: cfg.Concession.NegotiationSpeed,
			MinimalUtility:   minimal,
			TauBase:          cfg.Concession.TauBase,
		}, us, weighted)
	case config.BiddingTradeoff:
		space, err := domain.NewBidSpace(d)
		if err != nil {
			return nil, fmt.Errorf("agent: tradeoff bidding: %w", err)
		}
		bidder = strategy.NewTradeoffTracker(strategy.TradeoffConfig{
			TargetDecrement: cfg.Tradeoff.TargetDecrement,
			Margin:          cfg.Tradeoff.Margin,
			SampleThreshold: cfg.Tradeoff.SampleThreshold,
			Attempts:        cfg.Tradeoff.Attempts,
			CandidateCap:    cfg.Tradeoff.CandidateCap,
			Reservation:     us.ReservationValue(),
		}, space, us, model, rng, log)
	}

	var acceptor strategy.AcceptancePolicy
	switch cfg.Acceptance {
	case config.AcceptDynamic:
		dt := strategy.NewDynamicThreshold(us, tracker, us.ReservationValue())
		dt.Initial = cfg.Threshold.Initial
		dt.Final = cfg.Threshold.Final
		dt.MaxConcessionDiscount = cfg.Threshold.ConcessionDiscount
		acceptor = dt
	case config.AcceptCutoff:
		tc := strategy.NewTimeCutoff()
		tc.Cutoff = cfg.Cutoff
		acceptor = tc
	case config.AcceptNext:
		acceptor = strategy.NewNextOffer(us, us.ReservationValue())
	}

	return &Session{
		clock:    clock,
		us:       us,
		model:    model,
		tracker:  tracker,
		bidder:   bidder,
		acceptor: acceptor,
		log:      log,
	}, nil
}

// OnOfferReceived records the opponent's offer. At most one offer arrives
// per turn, strictly before DecideTurn.
func (s *Session) OnOfferReceived(bid domain.Bid) {
	s.model.Update(bid)
	s.tracker.Observe(bid)
	cp := bid
	s.lastReceived = &cp
	s.log.Debug("offer received",
		zap.Stringer("bid", bid),
		zap.Float64("own_utility", s.us.Utility(&bid)))
}

// DecideTurn computes this turn's single action: the would-be counter-offer
// first, then the acceptance decision against it.
func (s *Session) DecideTurn() (Action, error) {
	t := s.clock.Progress()
	s.turns++
	next, err := s.bidder.Next(t, s.lastReceived)
	if err != nil {
		return nil, fmt.Errorf("agent: turn %d: %w", s.turns, err)
	}
	if s.acceptor.ShouldAccept(t, s.lastReceived, &next) {
		s.log.Debug("accepting", zap.Float64("t", t), zap.Stringer("bid", *s.lastReceived))
		return Accept{Bid: *s.lastReceived}, nil
	}
	s.log.Debug("countering", zap.Float64("t", t), zap.Stringer("bid", next))
	return Offer{Bid: next}, nil
}

// OnSessionEnd marks the session finished. The model stays valid and
// inspectable; no further side effects occur.
func (s *Session) OnSessionEnd() {
	if s.ended {
		return
	}
	s.ended = true
	s.log.Debug("session ended", zap.Int("turns", s.turns))
}

// LastReceived returns the opponent's most recent offer, nil before any.
func (s *Session) LastReceived() *domain.Bid { return s.lastReceived }

// Utility exposes the session's own utility for a bid.
func (s *Session) Utility(b *domain.Bid) float64 { return s.us.Utility(b) }
