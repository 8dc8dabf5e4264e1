// Package domain holds the negotiation data model: issues, their value
// domains, bids, and the enumerable bid space. Everything here is a plain
// value type; the package performs no I/O and owns no mutable session state.
package domain

import (
	"fmt"
	"math/rand"
	"strconv"
)

// ValueKind discriminates the two legal value shapes.
type ValueKind int

const (
	// KindDiscrete is a named value drawn from a finite ordered set.
	KindDiscrete ValueKind = iota
	// KindNumber is a numeric value drawn from a bounded continuous range.
	KindNumber
)

// Value is one legal assignment for a single issue. Values are comparable
// with == and safe to use as map keys.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
}

// Discrete returns a discrete value.
func Discrete(text string) Value {
	return Value{Kind: KindDiscrete, Text: text}
}

// Number returns a continuous value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

func (v Value) String() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Text
}

// ValueSet is the domain of legal values for one issue.
type ValueSet interface {
	// Size reports the number of legal values, or -1 for continuous ranges.
	Size() int
	// Contains reports whether v is legal for this set.
	Contains(v Value) bool
	// Sample draws a uniform random legal value.
	Sample(rng *rand.Rand) Value
}

// DiscreteValueSet is a finite ordered set of discrete values.
type DiscreteValueSet struct {
	values []Value
	index  map[Value]int
}

// NewDiscreteValueSet builds an ordered discrete set from value names.
func NewDiscreteValueSet(names ...string) *DiscreteValueSet {
	s := &DiscreteValueSet{
		values: make([]Value, 0, len(names)),
		index:  make(map[Value]int, len(names)),
	}
	for _, name := range names {
		v := Discrete(name)
		if _, dup := s.index[v]; dup {
			continue
		}
		s.index[v] = len(s.values)
		s.values = append(s.values, v)
	}
	return s
}

func (s *DiscreteValueSet) Size() int { return len(s.values) }

// Values returns the ordered values. Callers must not mutate the slice.
func (s *DiscreteValueSet) Values() []Value { return s.values }

// Get returns the value at position i.
func (s *DiscreteValueSet) Get(i int) Value { return s.values[i] }

// IndexOf returns the position of v, or -1 if v is not in the set.
func (s *DiscreteValueSet) IndexOf(v Value) int {
	if i, ok := s.index[v]; ok {
		return i
	}
	return -1
}

func (s *DiscreteValueSet) Contains(v Value) bool { return s.IndexOf(v) >= 0 }

func (s *DiscreteValueSet) Sample(rng *rand.Rand) Value {
	return s.values[rng.Intn(len(s.values))]
}

// NumberValueSet is a bounded continuous range [Low, High].
type NumberValueSet struct {
	Low  float64
	High float64
}

// NewNumberValueSet builds a continuous range.
func NewNumberValueSet(low, high float64) (*NumberValueSet, error) {
	if high < low {
		return nil, fmt.Errorf("number value set: high %v below low %v", high, low)
	}
	return &NumberValueSet{Low: low, High: high}, nil
}

func (s *NumberValueSet) Size() int { return -1 }

func (s *NumberValueSet) Contains(v Value) bool {
	return v.Kind == KindNumber && v.Num >= s.Low && v.Num <= s.High
}

func (s *NumberValueSet) Sample(rng *rand.Rand) Value {
	return Number(s.Low + rng.Float64()*(s.High-s.Low))
}
