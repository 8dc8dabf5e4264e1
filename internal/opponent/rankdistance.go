package opponent

import (
	"haggle/internal/domain"
)

// distanceWeights maps the index distance between the values offered in the
// two most recent bids to a raw issue weight. A small distance means the
// opponent is not moving on that issue, which reads as importance.
var distanceWeights = map[int]float64{
	0: 6,
	1: 4,
	2: 3,
	3: 1,
	4: 0.5,
}

const maxRankDistance = 4

// RankDistance is a cheap heuristic estimator that tracks only how far the
// opponent's last two offers moved within each issue's ordered value domain.
// It primarily exposes issue weights; PredictedUtility is the weighted
// indicator of "value equals the most recently offered value".
type RankDistance struct {
	d      *domain.Domain
	sets   map[string]*domain.DiscreteValueSet
	order  []string
	offers []domain.Bid
	raw    map[string]float64
}

// NewRankDistance builds the estimator. Discrete issues only.
func NewRankDistance(d *domain.Domain) (*RankDistance, error) {
	sets, err := discreteSets(d)
	if err != nil {
		return nil, err
	}
	return &RankDistance{
		d:     d,
		sets:  sets,
		order: d.Issues(),
		raw:   make(map[string]float64, len(sets)),
	}, nil
}

func (m *RankDistance) Update(bid domain.Bid) {
	m.offers = append(m.offers, bid)
	if len(m.offers) < 2 {
		return
	}
	prev, last := m.offers[len(m.offers)-2], m.offers[len(m.offers)-1]
	for _, issue := range m.order {
		m.raw[issue] = distanceWeights[m.valueDistance(m.sets[issue], issue, prev, last)]
	}
}

// valueDistance is the index distance of the issue's value between two bids,
// capped at maxRankDistance. A missing or unknown value counts as distance 3.
func (m *RankDistance) valueDistance(set *domain.DiscreteValueSet, issue string, a, b domain.Bid) int {
	va, okA := a.Value(issue)
	vb, okB := b.Value(issue)
	if !okA || !okB {
		return 3
	}
	ia, ib := set.IndexOf(va), set.IndexOf(vb)
	if ia < 0 || ib < 0 {
		return 3
	}
	dist := ia - ib
	if dist < 0 {
		dist = -dist
	}
	if dist > maxRankDistance {
		dist = maxRankDistance
	}
	return dist
}

// IssueWeight returns the raw weight normalized across issues, uniform when
// the total is 0 (fewer than two observations).
func (m *RankDistance) IssueWeight(issue string) float64 {
	if _, ok := m.sets[issue]; !ok {
		return 0
	}
	total := 0.0
	for _, name := range m.order {
		total += m.raw[name]
	}
	if total == 0 {
		return 1 / float64(len(m.sets))
	}
	return m.raw[issue] / total
}

// RawWeight returns the unnormalized table weight for one issue.
func (m *RankDistance) RawWeight(issue string) float64 { return m.raw[issue] }

func (m *RankDistance) PredictedUtility(bid *domain.Bid) float64 {
	if bid == nil || len(m.offers) == 0 {
		return 0
	}
	last := m.offers[len(m.offers)-1]
	predicted := 0.0
	for _, issue := range m.order {
		v, ok := bid.Value(issue)
		if !ok {
			continue
		}
		if lv, ok := last.Value(issue); ok && lv == v {
			predicted += m.IssueWeight(issue)
		}
	}
	return clamp01(predicted)
}
