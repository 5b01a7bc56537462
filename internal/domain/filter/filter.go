package filter

import (
	"fmt"
	"sort"
)

// MaxConditions bounds the number of equality clauses in one expression.
const MaxConditions = 16

// Condition is an exact match on one metadata field.
type Condition struct {
	key   string
	value string
}

// NewMatch creates an exact match condition.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, value: value}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the value the field must equal.
func (c Condition) Value() string { return c.value }

// Expression is a conjunction of conditions. The zero value matches everything.
type Expression struct {
	must []Condition
}

// FromMap builds an expression from field→value pairs, sorted by key so the
// rendered query is stable.
func FromMap(m map[string]string) (Expression, error) {
	if len(m) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		c, err := NewMatch(k, m[k])
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}
	return Expression{must: conds}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }
