package domain

import (
	"fmt"
	"math/rand"
)

// Issue pairs an issue name with its value domain.
type Issue struct {
	Name   string
	Values ValueSet
}

// Domain is the full negotiation space: an ordered list of issues, each with
// a value domain. Issue order is fixed at construction and drives bid
// enumeration.
type Domain struct {
	issues []string
	sets   map[string]ValueSet
}

// New validates and builds a domain.
func New(issues []Issue) (*Domain, error) {
	if len(issues) == 0 {
		return nil, fmt.Errorf("domain: no issues")
	}
	d := &Domain{
		issues: make([]string, 0, len(issues)),
		sets:   make(map[string]ValueSet, len(issues)),
	}
	for _, is := range issues {
		if is.Name == "" {
			return nil, fmt.Errorf("domain: issue with empty name")
		}
		if _, dup := d.sets[is.Name]; dup {
			return nil, fmt.Errorf("domain: duplicate issue %q", is.Name)
		}
		if is.Values == nil {
			return nil, fmt.Errorf("domain: issue %q has no value set", is.Name)
		}
		if is.Values.Size() == 0 {
			return nil, fmt.Errorf("domain: issue %q has an empty value set", is.Name)
		}
		d.issues = append(d.issues, is.Name)
		d.sets[is.Name] = is.Values
	}
	return d, nil
}

// Issues returns the issue names in construction order. Read-only.
func (d *Domain) Issues() []string { return d.issues }

// Values returns the value set for issue.
func (d *Domain) Values(issue string) (ValueSet, bool) {
	s, ok := d.sets[issue]
	return s, ok
}

// HasContinuous reports whether any issue has a continuous value range.
func (d *Domain) HasContinuous() bool {
	for _, s := range d.sets {
		if s.Size() < 0 {
			return true
		}
	}
	return false
}

// SampleBid draws a uniform random bid, supporting both discrete and
// continuous issues.
func (d *Domain) SampleBid(rng *rand.Rand) Bid {
	values := make(map[string]Value, len(d.issues))
	for _, issue := range d.issues {
		values[issue] = d.sets[issue].Sample(rng)
	}
	return Bid{values: values}
}
