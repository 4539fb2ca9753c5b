package rules

import (
	"fmt"

	"github.com/alexanderramin/echeance/internal/domain"
)

// Condition is one predicate over a client attribute.
type Condition struct {
	Field    domain.Field
	Operator Operator
	Value    Operand
}

func (c Condition) String() string {
	name := "<nil>"
	if c.Operator != nil {
		name = c.Operator.Name()
	}
	if c.Value.IsZero() {
		return fmt.Sprintf("%s %s", c.Field, name)
	}
	return fmt.Sprintf("%s %s %s", c.Field, name, c.Value)
}

// Matches reports whether every condition holds for the profile. An empty
// list always matches.
func Matches(conds []Condition, profile *domain.ClientFiscalProfile, opts MatchOptions) bool {
	for _, c := range conds {
		if !Evaluate(c, profile, opts) {
			return false
		}
	}
	return true
}

// Evaluate reports whether a single condition holds. Unknown fields, missing
// operators and operator/field-kind mismatches evaluate to false rather than
// failing, so one malformed condition cannot block unrelated obligations.
func Evaluate(c Condition, profile *domain.ClientFiscalProfile, opts MatchOptions) bool {
	if profile == nil || c.Operator == nil {
		return false
	}
	kind := domain.KindOf(c.Field)
	if !Accepts(c.Operator, kind) {
		return false
	}
	attr, present := profile.Attribute(c.Field)
	return c.Operator.eval(attr, present, c.Value, opts)
}
