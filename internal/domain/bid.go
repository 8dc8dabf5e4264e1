package domain

import (
	"sort"
	"strings"
)

// Bid is one complete assignment of values to issues. Bids are immutable:
// the constructor copies its input and no mutating accessor exists.
type Bid struct {
	values map[string]Value
}

// NewBid builds a bid from an issue→value mapping.
func NewBid(values map[string]Value) Bid {
	cp := make(map[string]Value, len(values))
	for issue, v := range values {
		cp[issue] = v
	}
	return Bid{values: cp}
}

// Value returns the value assigned to issue.
func (b Bid) Value(issue string) (Value, bool) {
	v, ok := b.values[issue]
	return v, ok
}

// Issues returns the issue names present in the bid, sorted.
func (b Bid) Issues() []string {
	issues := make([]string, 0, len(b.values))
	for issue := range b.values {
		issues = append(issues, issue)
	}
	sort.Strings(issues)
	return issues
}

// Len returns the number of issue assignments.
func (b Bid) Len() int { return len(b.values) }

// Equal reports whether both bids assign identical values to identical issues.
func (b Bid) Equal(o Bid) bool {
	if len(b.values) != len(o.values) {
		return false
	}
	for issue, v := range b.values {
		if ov, ok := o.values[issue]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (b Bid) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, issue := range b.Issues() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(issue)
		sb.WriteByte('=')
		sb.WriteString(b.values[issue].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
