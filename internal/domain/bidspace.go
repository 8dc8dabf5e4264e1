package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrEmptyBidSpace is returned when a domain admits no complete bid. An
// empty bid space is a fatal configuration error, never retried.
var ErrEmptyBidSpace = errors.New("bid space is empty")

// ErrContinuousIssue is returned when an operation that requires a finite
// bid space meets a continuous issue.
var ErrContinuousIssue = errors.New("domain contains a continuous issue")

// BidSpace enumerates every bid of an all-discrete domain in mixed-radix
// order: the first issue varies slowest, the last fastest.
type BidSpace struct {
	domain *Domain
	sets   []*DiscreteValueSet
	total  int64
}

// NewBidSpace builds the enumerable bid space for d.
func NewBidSpace(d *Domain) (*BidSpace, error) {
	s := &BidSpace{domain: d, total: 1}
	for _, issue := range d.issues {
		dset, ok := d.sets[issue].(*DiscreteValueSet)
		if !ok {
			return nil, fmt.Errorf("bid space: issue %q: %w", issue, ErrContinuousIssue)
		}
		s.sets = append(s.sets, dset)
		s.total *= int64(dset.Size())
	}
	if s.total == 0 {
		return nil, ErrEmptyBidSpace
	}
	return s, nil
}

// Size returns the total number of distinct bids.
func (s *BidSpace) Size() int64 { return s.total }

// Get decodes the i-th bid of the enumeration. i must be in [0, Size()).
func (s *BidSpace) Get(i int64) Bid {
	values := make(map[string]Value, len(s.sets))
	for j := len(s.sets) - 1; j >= 0; j-- {
		n := int64(s.sets[j].Size())
		values[s.domain.issues[j]] = s.sets[j].Get(int(i % n))
		i /= n
	}
	return Bid{values: values}
}

// Sample draws one bid uniformly at random.
func (s *BidSpace) Sample(rng *rand.Rand) Bid {
	return s.Get(rng.Int63n(s.total))
}
