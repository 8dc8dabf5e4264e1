package opponent

import (
	"math"

	"go.uber.org/zap"

	"haggle/internal/domain"
)

// FrequencyBayesian estimates opponent preferences with Dirichlet-smoothed
// value frequencies. Per issue it keeps a count per observed value; the
// smoothed frequency of a value doubles as its utility estimate, and the
// peakedness (1 − normalized entropy) of the smoothed distribution is the
// issue's importance weight.
type FrequencyBayesian struct {
	d        *domain.Domain
	issues   map[string]*bayesEstimator
	order    []string
	observed int
	log      *zap.Logger
}

type bayesEstimator struct {
	set    *domain.DiscreteValueSet
	counts map[domain.Value]int
	total  int
}

// NewFrequencyBayesian builds the estimator. Discrete issues only.
func NewFrequencyBayesian(d *domain.Domain, log *zap.Logger) (*FrequencyBayesian, error) {
	sets, err := discreteSets(d)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &FrequencyBayesian{d: d, issues: make(map[string]*bayesEstimator, len(sets)), log: log}
	for _, issue := range d.Issues() {
		set := sets[issue]
		m.order = append(m.order, issue)
		m.issues[issue] = &bayesEstimator{set: set, counts: make(map[domain.Value]int, set.Size())}
	}
	return m, nil
}

func (m *FrequencyBayesian) Update(bid domain.Bid) {
	m.observed++
	for _, issue := range m.order {
		if v, ok := bid.Value(issue); ok {
			est := m.issues[issue]
			est.counts[v]++
			est.total++
		}
	}
	m.log.Debug("frequency model updated", zap.Int("observed", m.observed))
}

func (m *FrequencyBayesian) PredictedUtility(bid *domain.Bid) float64 {
	if bid == nil || m.observed == 0 {
		return 0
	}
	predicted, totalWeight := 0.0, 0.0
	for _, issue := range m.order {
		est := m.issues[issue]
		w := est.weight()
		totalWeight += w
		if v, ok := bid.Value(issue); ok {
			predicted += w * est.valueUtility(v)
		}
	}
	if totalWeight <= 0 {
		return 0
	}
	return clamp01(predicted / totalWeight)
}

// IssueWeight returns the entropy-derived importance of one issue,
// normalized across issues. Uniform weights while fully uninformed would
// all be 0 here; consumers treat a 0 total as "unknown".
func (m *FrequencyBayesian) IssueWeight(issue string) float64 {
	est, ok := m.issues[issue]
	if !ok {
		return 0
	}
	total := 0.0
	for _, name := range m.order {
		total += m.issues[name].weight()
	}
	if total <= 0 {
		return 0
	}
	return est.weight() / total
}

// valueUtility is the posterior expected probability of v under a symmetric
// Dirichlet(1) prior: (count + 1) / (total + numPossibleValues).
func (e *bayesEstimator) valueUtility(v domain.Value) float64 {
	return float64(e.counts[v]+1) / float64(e.total+e.set.Size())
}

// weight is 1 − normalized Shannon entropy of the smoothed distribution. A
// peaked distribution means the opponent keeps asking for the same value,
// so the issue matters to them.
func (e *bayesEstimator) weight() float64 {
	n := e.set.Size()
	maxEntropy := math.Log(float64(n))
	if maxEntropy <= 0 {
		return 1
	}
	entropy := 0.0
	for _, v := range e.set.Values() {
		p := e.valueUtility(v)
		entropy -= p * math.Log(p)
	}
	return 1 - entropy/maxEntropy
}
