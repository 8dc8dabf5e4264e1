package strategy

import (
	"fmt"
	"math"

	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
)

// ConcessionCurveConfig tunes the time-dependent constructor.
type ConcessionCurveConfig struct {
	// Kappa is the concession floor at t=0; Beta shapes the curve, larger
	// meaning slower (boulware) concession.
	Kappa float64
	Beta  float64
	// NegotiationSpeed scales the per-turn trade-off step toward the
	// opponent's last offer.
	NegotiationSpeed float64
	// MinimalUtility is the utility the agent will not plan below.
	MinimalUtility float64
	// TauBase is the baseline per-issue mixing factor toward the opponent's
	// offered value.
	TauBase float64
}

// DefaultConcessionCurveConfig matches the deadline-pusher tuning.
func DefaultConcessionCurveConfig() ConcessionCurveConfig {
	return ConcessionCurveConfig{
		Kappa:            0.1,
		Beta:             0.2,
		NegotiationSpeed: 0.05,
		MinimalUtility:   0.8,
		TauBase:          0.1,
	}
}

// ConcessionCurve builds a per-issue time-dependent bid and, once opponent
// offers exist, refines it issue by issue toward the opponent's apparent
// preferences while holding a target overall utility.
type ConcessionCurve struct {
	cfg     ConcessionCurveConfig
	us      *profile.LinearAdditive
	weights opponent.WeightedModel
}

// NewConcessionCurve wires the constructor. weights may be nil; the
// per-issue mix factor then stays at TauBase.
func NewConcessionCurve(cfg ConcessionCurveConfig, us *profile.LinearAdditive, weights opponent.WeightedModel) *ConcessionCurve {
	return &ConcessionCurve{cfg: cfg, us: us, weights: weights}
}

// Alpha is the concession curve κ + (1−κ)·t^(1/β): Alpha(0)=κ, Alpha(1)=1,
// non-decreasing in t.
func (c *ConcessionCurve) Alpha(t float64) float64 {
	return c.cfg.Kappa + (1-c.cfg.Kappa)*math.Pow(t, 1/c.cfg.Beta)
}

func (c *ConcessionCurve) Next(t float64, received *domain.Bid) (domain.Bid, error) {
	selfBid, err := c.SelfBid(t)
	if err != nil {
		return domain.Bid{}, err
	}
	if received == nil {
		return selfBid, nil
	}
	return c.refine(selfBid, received), nil
}

// SelfBid constructs the self-only time-dependent bid: each issue concedes
// independently along its own utility function as α(t) grows.
func (c *ConcessionCurve) SelfBid(t float64) (domain.Bid, error) {
	alpha := c.Alpha(t)
	values := make(map[string]domain.Value, len(c.us.Domain().Issues()))
	for _, issue := range c.us.Domain().Issues() {
		vu, _ := c.us.IssueUtilities(issue)
		switch u := vu.(type) {
		case profile.NumberUtilities:
			if u.Increasing() {
				values[issue] = domain.Number(u.LowValue + (1-alpha)*(u.HighValue-u.LowValue))
			} else {
				values[issue] = domain.Number(u.LowValue + alpha*(u.HighValue-u.LowValue))
			}
		case *profile.DiscreteUtilities:
			ranked := u.Ranked()
			idx := int(math.Round(alpha * float64(len(ranked)-1)))
			values[issue] = ranked[idx]
		default:
			return domain.Bid{}, fmt.Errorf("concession curve: issue %q has unsupported utilities %T", issue, vu)
		}
	}
	return domain.NewBid(values), nil
}

// refine redistributes the gap between the self bid's utility and a
// concession target across issues, blending each issue toward the
// opponent's last-offered value in proportion to how much more the issue
// seems to matter to them than to us.
func (c *ConcessionCurve) refine(selfBid domain.Bid, received *domain.Bid) domain.Bid {
	utilitySelf := c.us.Utility(&selfBid)
	utilityReceived := c.us.Utility(received)

	step := c.cfg.NegotiationSpeed * (1 - c.cfg.MinimalUtility/(utilitySelf+1e-6)) * (utilityReceived - utilitySelf + 1e-6)
	target := utilitySelf + step

	issues := c.us.Domain().Issues()
	normalization := 1e-6
	gapShare := make(map[string]float64, len(issues))
	for _, issue := range issues {
		vu, _ := c.us.IssueUtilities(issue)
		weightSelf := c.us.Weight(issue)
		evalSelf := c.issueEval(vu, selfBid, issue)
		gapShare[issue] = (1 - weightSelf) * (1 - evalSelf)
		normalization += weightSelf * gapShare[issue]
	}

	values := make(map[string]domain.Value, len(issues))
	for _, issue := range issues {
		vu, _ := c.us.IssueUtilities(issue)
		weightSelf := c.us.Weight(issue)
		weightOpp := weightSelf
		if c.weights != nil {
			weightOpp = c.weights.IssueWeight(issue)
		}
		delta := 0.0
		if weightOpp+weightSelf > 0 {
			delta = (weightOpp - weightSelf) / (weightOpp + weightSelf)
		}
		tau := c.cfg.TauBase * (1 + delta)

		evalSelf := c.issueEval(vu, selfBid, issue)
		evalReceived := c.issueEval(vu, *received, issue)

		basicTarget := evalSelf + (gapShare[issue]/normalization)*(target-utilitySelf)
		blended := (1-tau)*basicTarget + tau*evalReceived
		values[issue] = vu.ValueForUtility(blended)
	}
	return domain.NewBid(values)
}

func (c *ConcessionCurve) issueEval(vu profile.ValueUtilities, bid domain.Bid, issue string) float64 {
	v, ok := bid.Value(issue)
	if !ok {
		return 0
	}
	return vu.Utility(v)
}
