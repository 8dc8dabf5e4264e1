package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haggle/internal/domain"
	"haggle/internal/opponent"
	"haggle/internal/profile"
)

// fixture bundles a small all-discrete domain with a profile whose best bid
// has utility exactly 1.
type fixture struct {
	domain *domain.Domain
	space  *domain.BidSpace
	us     *profile.LinearAdditive
	best   domain.Bid
	worst  domain.Bid
}

func newFixture(t *testing.T, reservation *domain.Bid) *fixture {
	t.Helper()
	d, err := domain.New([]domain.Issue{
		{Name: "color", Values: domain.NewDiscreteValueSet("red", "green", "blue")},
		{Name: "size", Values: domain.NewDiscreteValueSet("s", "m", "l")},
	})
	require.NoError(t, err)
	space, err := domain.NewBidSpace(d)
	require.NoError(t, err)

	colorSet, _ := d.Values("color")
	sizeSet, _ := d.Values("size")
	colorUtils, err := profile.NewDiscreteUtilities(colorSet.(*domain.DiscreteValueSet),
		map[string]float64{"red": 1.0, "green": 0.5, "blue": 0.0})
	require.NoError(t, err)
	sizeUtils, err := profile.NewDiscreteUtilities(sizeSet.(*domain.DiscreteValueSet),
		map[string]float64{"s": 0.0, "m": 0.6, "l": 1.0})
	require.NoError(t, err)

	us, err := profile.NewLinearAdditive(d,
		map[string]float64{"color": 0.6, "size": 0.4},
		map[string]profile.ValueUtilities{"color": colorUtils, "size": sizeUtils},
		reservation)
	require.NoError(t, err)

	return &fixture{
		domain: d,
		space:  space,
		us:     us,
		best: domain.NewBid(map[string]domain.Value{
			"color": domain.Discrete("red"), "size": domain.Discrete("l"),
		}),
		worst: domain.NewBid(map[string]domain.Value{
			"color": domain.Discrete("blue"), "size": domain.Discrete("s"),
		}),
	}
}

func (f *fixture) model(t *testing.T) opponent.Model {
	t.Helper()
	m, err := opponent.NewFrequencyBayesian(f.domain, nil)
	require.NoError(t, err)
	return m
}

func completeBid(t *testing.T, f *fixture, b domain.Bid) {
	t.Helper()
	for _, issue := range f.domain.Issues() {
		_, ok := b.Value(issue)
		assert.True(t, ok, "bid must assign issue %q", issue)
	}
}

func TestSamplingScorer(t *testing.T) {
	t.Run("opens with the best own bid", func(t *testing.T) {
		f := newFixture(t, nil)
		s := NewSamplingScorer(DefaultSamplingScorerConfig(), f.space, f.us, f.model(t), nil,
			rand.New(rand.NewSource(1)), nil)
		got, err := s.Next(0, nil)
		require.NoError(t, err)
		// At t=0 the score is pure own utility and 500 draws over 9 bids
		// cannot miss the maximum.
		assert.InDelta(t, 1.0, f.us.Utility(&got), 1e-9)
		assert.True(t, got.Equal(f.best))
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		f := newFixture(t, nil)
		run := func() []domain.Bid {
			s := NewSamplingScorer(DefaultSamplingScorerConfig(), f.space, f.us, f.model(t), nil,
				rand.New(rand.NewSource(7)), nil)
			var bids []domain.Bid
			for _, progress := range []float64{0, 0.25, 0.5, 0.75, 0.99} {
				b, err := s.Next(progress, nil)
				require.NoError(t, err)
				bids = append(bids, b)
			}
			return bids
		}
		first, second := run(), run()
		require.Len(t, second, len(first))
		for i := range first {
			assert.True(t, first[i].Equal(second[i]), "bid %d diverged", i)
		}
	})

	t.Run("falls back to unfiltered search when the floor starves it", func(t *testing.T) {
		f := newFixture(t, nil)
		cfg := DefaultSamplingScorerConfig()
		cfg.Reservation = 2.0 // unattainable
		s := NewSamplingScorer(cfg, f.space, f.us, f.model(t), nil,
			rand.New(rand.NewSource(1)), nil)
		got, err := s.Next(0, nil)
		require.NoError(t, err)
		completeBid(t, f, got)
		assert.InDelta(t, 1.0, f.us.Utility(&got), 1e-9)
	})
}

func TestConcessionCurveAlpha(t *testing.T) {
	c := NewConcessionCurve(DefaultConcessionCurveConfig(), newFixture(t, nil).us, nil)

	assert.InDelta(t, 0.1, c.Alpha(0), 1e-9)
	assert.InDelta(t, 1.0, c.Alpha(1), 1e-9)
	prev := c.Alpha(0)
	for progress := 0.05; progress <= 1.0; progress += 0.05 {
		cur := c.Alpha(progress)
		assert.GreaterOrEqual(t, cur, prev, "alpha must not decrease")
		prev = cur
	}
}

func TestConcessionCurveSelfBid(t *testing.T) {
	f := newFixture(t, nil)
	c := NewConcessionCurve(DefaultConcessionCurveConfig(), f.us, nil)

	t.Run("opens at the best bid", func(t *testing.T) {
		got, err := c.SelfBid(0)
		require.NoError(t, err)
		assert.True(t, got.Equal(f.best))
	})

	t.Run("ends at the worst bid", func(t *testing.T) {
		got, err := c.SelfBid(1)
		require.NoError(t, err)
		assert.True(t, got.Equal(f.worst))
	})

	t.Run("utility never increases over time", func(t *testing.T) {
		prev := 2.0
		for progress := 0.0; progress <= 1.0; progress += 0.1 {
			b, err := c.SelfBid(progress)
			require.NoError(t, err)
			u := f.us.Utility(&b)
			assert.LessOrEqual(t, u, prev+1e-9, "at progress %.1f", progress)
			prev = u
		}
	})
}

func TestConcessionCurveNumberIssue(t *testing.T) {
	nvs, err := domain.NewNumberValueSet(0, 100)
	require.NoError(t, err)
	d, err := domain.New([]domain.Issue{{Name: "price", Values: nvs}})
	require.NoError(t, err)
	// Lower price is better for us.
	us, err := profile.NewLinearAdditive(d,
		map[string]float64{"price": 1.0},
		map[string]profile.ValueUtilities{
			"price": profile.NumberUtilities{LowValue: 0, HighValue: 100, LowUtility: 1, HighUtility: 0},
		}, nil)
	require.NoError(t, err)

	c := NewConcessionCurve(DefaultConcessionCurveConfig(), us, nil)
	start, err := c.SelfBid(0)
	require.NoError(t, err)
	v, ok := start.Value("price")
	require.True(t, ok)
	// alpha(0)=0.1 concedes a tenth of the range.
	assert.InDelta(t, 10.0, v.Num, 1e-9)

	end, err := c.SelfBid(1)
	require.NoError(t, err)
	v, ok = end.Value("price")
	require.True(t, ok)
	assert.InDelta(t, 100.0, v.Num, 1e-9)
}

func TestConcessionCurveRefinement(t *testing.T) {
	f := newFixture(t, nil)
	c := NewConcessionCurve(DefaultConcessionCurveConfig(), f.us, nil)

	selfBid, err := c.SelfBid(0.3)
	require.NoError(t, err)
	got, err := c.Next(0.3, &f.worst)
	require.NoError(t, err)

	completeBid(t, f, got)
	// Refinement against a worse offer concedes, never demands more.
	assert.LessOrEqual(t, f.us.Utility(&got), f.us.Utility(&selfBid)+1e-9)
}

func TestTradeoffTargetDecay(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("strictly decreasing above the floor", func(t *testing.T) {
		cfg := DefaultTradeoffConfig()
		cfg.Reservation = 0.3
		tr := NewTradeoffTracker(cfg, f.space, f.us, f.model(t), rand.New(rand.NewSource(1)), nil)
		prev := tr.Target()
		for i := 0; i < 100; i++ {
			_, err := tr.Next(float64(i)/100, nil)
			require.NoError(t, err)
			assert.Less(t, tr.Target(), prev)
			assert.GreaterOrEqual(t, tr.Target(), 0.3)
			prev = tr.Target()
		}
	})

	t.Run("floored at the reservation", func(t *testing.T) {
		cfg := DefaultTradeoffConfig()
		cfg.TargetDecrement = 0.5
		cfg.Reservation = 0.3
		tr := NewTradeoffTracker(cfg, f.space, f.us, f.model(t), rand.New(rand.NewSource(1)), nil)
		_, err := tr.Next(0, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, tr.Target(), 1e-9)
		_, err = tr.Next(0.1, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.3, tr.Target(), 1e-9)
		_, err = tr.Next(0.2, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.3, tr.Target(), 1e-9)
	})
}

func TestTradeoffProposals(t *testing.T) {
	t.Run("near-target proposal", func(t *testing.T) {
		f := newFixture(t, nil)
		tr := NewTradeoffTracker(DefaultTradeoffConfig(), f.space, f.us, f.model(t),
			rand.New(rand.NewSource(1)), nil)
		got, err := tr.Next(0, nil)
		require.NoError(t, err)
		// Only the utility-1.0 bid sits within margin of the near-1 target.
		assert.True(t, got.Equal(f.best))
	})

	t.Run("empty candidate set falls back to the best bid seen", func(t *testing.T) {
		f := newFixture(t, nil)
		cfg := DefaultTradeoffConfig()
		cfg.Margin = 0 // no bid can match the target exactly
		tr := NewTradeoffTracker(cfg, f.space, f.us, f.model(t), rand.New(rand.NewSource(1)), nil)
		got, err := tr.Next(0, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, f.us.Utility(&got), 1e-9)
	})

	t.Run("prefers the candidate the opponent likes", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model(t)
		// The opponent keeps demanding green: any green candidate should win
		// among equals.
		opp := domain.NewBid(map[string]domain.Value{
			"color": domain.Discrete("green"), "size": domain.Discrete("s"),
		})
		for i := 0; i < 10; i++ {
			m.Update(opp)
		}
		// Target 0.7 with margin 0.15 admits exactly two bids, (green,l) at
		// 0.70 and (red,m) at 0.84; the model decides between them.
		cfg := DefaultTradeoffConfig()
		cfg.Margin = 0.15
		cfg.TargetDecrement = 0.3
		tr := NewTradeoffTracker(cfg, f.space, f.us, m, rand.New(rand.NewSource(1)), nil)
		got, err := tr.Next(0, nil)
		require.NoError(t, err)
		v, ok := got.Value("color")
		require.True(t, ok)
		assert.Equal(t, domain.Discrete("green"), v)
	})
}

func TestDynamicThreshold(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("decays from initial to final", func(t *testing.T) {
		p := NewDynamicThreshold(f.us, nil, 0)
		assert.InDelta(t, 0.95, p.Threshold(0), 1e-9)
		assert.InDelta(t, 0.70, p.Threshold(1), 1e-9)
	})

	t.Run("never drops below the reservation", func(t *testing.T) {
		p := NewDynamicThreshold(f.us, nil, 0.9)
		assert.InDelta(t, 0.95, p.Threshold(0), 1e-9)
		assert.InDelta(t, 0.9, p.Threshold(1), 1e-9)
	})

	t.Run("observed concession relaxes the bar", func(t *testing.T) {
		d, err := domain.New([]domain.Issue{
			{Name: "A", Values: domain.NewDiscreteValueSet("a", "b")},
		})
		require.NoError(t, err)
		m, err := opponent.NewFrequencyBayesian(d, nil)
		require.NoError(t, err)
		tracker := opponent.NewConcessionTracker(m)
		// Two favorites then a switch: the model reads the first offer at
		// 2/3 and the last at 2/5, a relative drop of 0.4.
		favorite := domain.NewBid(map[string]domain.Value{"A": domain.Discrete("a")})
		other := domain.NewBid(map[string]domain.Value{"A": domain.Discrete("b")})
		for _, o := range []domain.Bid{favorite, favorite, other} {
			m.Update(o)
			tracker.Observe(o)
		}
		require.InDelta(t, 0.4, tracker.Concession(), 1e-9)

		p := NewDynamicThreshold(f.us, tracker, 0)
		assert.InDelta(t, 0.95-tracker.Concession()*0.10, p.Threshold(0), 1e-9)
		assert.InDelta(t, 0.91, p.Threshold(0), 1e-9)
	})

	t.Run("accepts only above the bar", func(t *testing.T) {
		p := NewDynamicThreshold(f.us, nil, 0)
		assert.False(t, p.ShouldAccept(0, nil, nil))
		assert.True(t, p.ShouldAccept(0, &f.best, nil))
		assert.False(t, p.ShouldAccept(0, &f.worst, nil))
		// The bar at the deadline is 0.70; a 0.84 offer clears it there only.
		mid := domain.NewBid(map[string]domain.Value{
			"color": domain.Discrete("red"), "size": domain.Discrete("m"),
		})
		assert.False(t, p.ShouldAccept(0, &mid, nil))
		assert.True(t, p.ShouldAccept(1, &mid, nil))
	})
}

func TestTimeCutoff(t *testing.T) {
	f := newFixture(t, nil)
	p := NewTimeCutoff()

	assert.False(t, p.ShouldAccept(1, nil, nil))
	assert.False(t, p.ShouldAccept(0.95, &f.worst, nil))
	assert.True(t, p.ShouldAccept(0.96, &f.worst, nil))
	assert.True(t, p.ShouldAccept(1, &f.worst, nil))
}

func TestNextOffer(t *testing.T) {
	d, err := domain.New([]domain.Issue{
		{Name: "A", Values: domain.NewDiscreteValueSet("a", "b", "c")},
	})
	require.NoError(t, err)
	set, _ := d.Values("A")
	du, err := profile.NewDiscreteUtilities(set.(*domain.DiscreteValueSet),
		map[string]float64{"a": 0.7, "b": 0.65, "c": 0.4})
	require.NoError(t, err)
	us, err := profile.NewLinearAdditive(d,
		map[string]float64{"A": 1.0},
		map[string]profile.ValueUtilities{"A": du}, nil)
	require.NoError(t, err)

	p := NewNextOffer(us, 0.5)
	bidA := domain.NewBid(map[string]domain.Value{"A": domain.Discrete("a")})
	bidB := domain.NewBid(map[string]domain.Value{"A": domain.Discrete("b")})
	bidC := domain.NewBid(map[string]domain.Value{"A": domain.Discrete("c")})

	assert.True(t, p.ShouldAccept(0.5, &bidA, &bidB), "received beats the planned counter")
	assert.False(t, p.ShouldAccept(0.5, &bidB, &bidA), "planned counter is better")
	assert.False(t, p.ShouldAccept(0.5, &bidC, &bidC), "below the reservation")
	assert.True(t, p.ShouldAccept(0.5, &bidB, &bidB), "equal utility accepts")
	assert.False(t, p.ShouldAccept(0.5, nil, &bidA))
}
