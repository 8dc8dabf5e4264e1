package opponent

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"haggle/internal/domain"
)

const (
	// minSamplesForKDE is the observation count that triggers the first
	// weight/utility recalculation.
	minSamplesForKDE = 5
	kdeEpsilon       = 1e-6
	// jitterSigma is the noise injected when every observation is identical,
	// which would otherwise produce a zero-bandwidth fit.
	jitterSigma = 0.01
)

// DensityEstimation models the opponent with a 1-D kernel density estimate
// per issue over the indices of offered values. Issue weights come from the
// inverse variance of those indices: a low-variance issue is one the
// opponent refuses to move on.
type DensityEstimation struct {
	d      *domain.Domain
	rng    *rand.Rand
	offers []domain.Bid
	info   map[string]*kdeIssue
	order  []string
}

type kdeIssue struct {
	set       *domain.DiscreteValueSet
	history   []float64
	weight    float64
	valueUtil []float64
}

// NewDensityEstimation builds the estimator. Discrete issues only. rng
// drives the degenerate-history jitter and must be fixed for reproducible
// runs.
func NewDensityEstimation(d *domain.Domain, rng *rand.Rand) (*DensityEstimation, error) {
	sets, err := discreteSets(d)
	if err != nil {
		return nil, err
	}
	m := &DensityEstimation{
		d:    d,
		rng:  rng,
		info: make(map[string]*kdeIssue, len(sets)),
	}
	uniform := 1 / float64(len(d.Issues()))
	for _, issue := range d.Issues() {
		set := sets[issue]
		m.order = append(m.order, issue)
		m.info[issue] = &kdeIssue{
			set:       set,
			weight:    uniform,
			valueUtil: make([]float64, set.Size()),
		}
	}
	return m, nil
}

func (m *DensityEstimation) Update(bid domain.Bid) {
	m.offers = append(m.offers, bid)
	for _, issue := range m.order {
		info := m.info[issue]
		if v, ok := bid.Value(issue); ok {
			if idx := info.set.IndexOf(v); idx >= 0 {
				info.history = append(info.history, float64(idx))
			}
		}
	}
	if len(m.offers) >= minSamplesForKDE {
		m.recalculate()
	}
}

// recalculate refits issue weights from inverse index variance, then the
// per-value utilities from a gaussian KDE over the index history.
func (m *DensityEstimation) recalculate() {
	inverseVariance := make(map[string]float64, len(m.order))
	unchangedWeight := 0.0
	for _, issue := range m.order {
		info := m.info[issue]
		if len(info.history) < 2 {
			// Keeps its previous weight; its share is excluded from the
			// redistributable budget.
			unchangedWeight += info.weight
			continue
		}
		inverseVariance[issue] = 1 / (stat.PopVariance(info.history, nil) + kdeEpsilon)
	}

	totalInverse := 0.0
	for _, iv := range inverseVariance {
		totalInverse += iv
	}
	if totalInverse > kdeEpsilon {
		budget := 1 - unchangedWeight
		for issue, iv := range inverseVariance {
			m.info[issue].weight = (iv / totalInverse) * budget
		}
	} else {
		uniform := 1 / float64(len(m.order))
		for _, issue := range m.order {
			m.info[issue].weight = uniform
		}
	}

	for _, issue := range m.order {
		info := m.info[issue]
		if len(info.history) < 2 {
			for i := range info.valueUtil {
				info.valueUtil[i] = 0
			}
			continue
		}
		m.fitValueUtilities(info)
	}
}

func (m *DensityEstimation) fitValueUtilities(info *kdeIssue) {
	data := info.history
	if allEqual(data) {
		jittered := make([]float64, len(data))
		for i, x := range data {
			jittered[i] = x + m.rng.NormFloat64()*jitterSigma
		}
		data = jittered
	}

	// Scott's rule: bandwidth = stddev * n^(-1/5).
	n := float64(len(data))
	bandwidth := stat.PopStdDev(data, nil) * math.Pow(n, -0.2)
	if bandwidth < kdeEpsilon {
		bandwidth = kdeEpsilon
	}

	densities := make([]float64, info.set.Size())
	for i := range densities {
		densities[i] = gaussianKDE(data, float64(i), bandwidth)
	}
	maxDensity := floats.Max(densities)
	if maxDensity <= kdeEpsilon {
		for i := range info.valueUtil {
			info.valueUtil[i] = 0
		}
		return
	}
	for i, density := range densities {
		info.valueUtil[i] = density / maxDensity
	}
}

// gaussianKDE evaluates the kernel density estimate built from samples at x.
func gaussianKDE(samples []float64, x, bandwidth float64) float64 {
	sum := 0.0
	for _, s := range samples {
		z := (x - s) / bandwidth
		sum += math.Exp(-0.5 * z * z)
	}
	norm := float64(len(samples)) * bandwidth * math.Sqrt(2*math.Pi)
	return sum / norm
}

func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func (m *DensityEstimation) PredictedUtility(bid *domain.Bid) float64 {
	if bid == nil || len(m.offers) == 0 {
		return 0
	}
	predicted := 0.0
	for _, issue := range m.order {
		info := m.info[issue]
		v, ok := bid.Value(issue)
		if !ok {
			continue
		}
		if idx := info.set.IndexOf(v); idx >= 0 {
			predicted += info.weight * info.valueUtil[idx]
		}
	}
	return clamp01(predicted)
}

// IssueWeight returns the current inferred weight of one issue.
func (m *DensityEstimation) IssueWeight(issue string) float64 {
	if info, ok := m.info[issue]; ok {
		return info.weight
	}
	return 0
}

// ValueUtility returns the current density-derived utility estimate of one
// value, 1.0 at the modal value once fitted, 0 before.
func (m *DensityEstimation) ValueUtility(issue string, v domain.Value) float64 {
	info, ok := m.info[issue]
	if !ok {
		return 0
	}
	idx := info.set.IndexOf(v)
	if idx < 0 {
		return 0
	}
	return info.valueUtil[idx]
}
