package simulate

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tournament plays n matches of the same spec with per-match derived seeds,
// up to parallel matches at a time. Outcomes come back in match order.
func Tournament(spec MatchSpec, n, parallel int, log *zap.Logger) ([]Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]Outcome, n)

	var g errgroup.Group
	g.SetLimit(parallel)
	for i := 0; i < n; i++ {
		matchSpec := spec
		matchSpec.Seed = spec.Seed + int64(i)*2
		idx := i
		g.Go(func() error {
			outcome, err := Run(matchSpec, log)
			if err != nil {
				return err
			}
			outcomes[idx] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Summary aggregates tournament outcomes.
type Summary struct {
	Matches      int
	Agreements   int
	MeanRounds   float64
	MeanUtilityA float64
	MeanUtilityB float64
}

// Summarize folds outcomes into a summary. Utility means run over agreed
// matches only.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Matches: len(outcomes)}
	totalRounds := 0
	for _, o := range outcomes {
		totalRounds += o.Rounds
		if o.Agreed() {
			s.Agreements++
			s.MeanUtilityA += o.UtilityA
			s.MeanUtilityB += o.UtilityB
		}
	}
	if s.Matches > 0 {
		s.MeanRounds = float64(totalRounds) / float64(s.Matches)
	}
	if s.Agreements > 0 {
		s.MeanUtilityA /= float64(s.Agreements)
		s.MeanUtilityB /= float64(s.Agreements)
	}
	return s
}
