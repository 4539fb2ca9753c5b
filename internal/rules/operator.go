package rules

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/echeance/internal/domain"
)

// MatchOptions tunes string comparison during condition evaluation.
type MatchOptions struct {
	// CaseInsensitive applies to starts_with and to text equality/membership.
	CaseInsensitive bool
}

// Operator is a closed set of condition predicates. Every operator declares
// which field kinds it accepts and how it evaluates; the unexported methods
// keep the set closed to this package.
type Operator interface {
	Name() string
	accepts(kind domain.FieldKind) bool
	eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool
}

var (
	Equals         Operator = equalsOp{}
	NotEquals      Operator = notEqualsOp{}
	In             Operator = inOp{}
	NotIn          Operator = notInOp{}
	GreaterThan    Operator = compareOp{name: "gt", sign: 1}
	GreaterOrEqual Operator = compareOp{name: "gte", sign: 1, orEqual: true}
	LessThan       Operator = compareOp{name: "lt", sign: -1}
	LessOrEqual    Operator = compareOp{name: "lte", sign: -1, orEqual: true}
	IsTrue         Operator = truthOp{name: "is_true", want: true}
	IsFalse        Operator = truthOp{name: "is_false", want: false}
	IsSet          Operator = presenceOp{name: "is_set", want: true}
	IsNotSet       Operator = presenceOp{name: "is_not_set", want: false}
	StartsWith     Operator = startsWithOp{}
)

// Operators lists every supported operator in display order.
var Operators = []Operator{
	Equals, NotEquals, In, NotIn,
	GreaterThan, GreaterOrEqual, LessThan, LessOrEqual,
	IsTrue, IsFalse, IsSet, IsNotSet, StartsWith,
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, len(Operators))
	for _, op := range Operators {
		m[op.Name()] = op
	}
	return m
}()

// ParseOperator resolves an operator by its rule-document name.
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorsByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", name)
	}
	return op, nil
}

// Accepts reports whether op may be used on a field of the given kind.
func Accepts(op Operator, kind domain.FieldKind) bool {
	if op == nil || kind == domain.KindUnknown {
		return false
	}
	return op.accepts(kind)
}

// NeedsOperand reports whether op compares against a value.
func NeedsOperand(op Operator) bool {
	switch op.(type) {
	case truthOp, presenceOp:
		return false
	}
	return true
}

type equalsOp struct{}

func (equalsOp) Name() string { return "equals" }

func (equalsOp) accepts(kind domain.FieldKind) bool { return isScalarKind(kind) }

func (equalsOp) eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool {
	if !present {
		return false
	}
	eq, ok := equalTo(attr, operand, opts)
	return ok && eq
}

type notEqualsOp struct{}

func (notEqualsOp) Name() string { return "not_equals" }

func (notEqualsOp) accepts(kind domain.FieldKind) bool { return isScalarKind(kind) }

// An absent attribute fails not_equals too: "not declared" is not evidence
// that the attribute differs.
func (notEqualsOp) eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool {
	if !present {
		return false
	}
	eq, ok := equalTo(attr, operand, opts)
	return ok && !eq
}

type inOp struct{}

func (inOp) Name() string { return "in" }

func (inOp) accepts(kind domain.FieldKind) bool { return isScalarKind(kind) }

func (inOp) eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool {
	if !present || operand.Kind() != OperandList {
		return false
	}
	return member(attr, operand, opts)
}

type notInOp struct{}

func (notInOp) Name() string { return "not_in" }

func (notInOp) accepts(kind domain.FieldKind) bool { return isScalarKind(kind) }

func (notInOp) eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool {
	if !present || operand.Kind() != OperandList {
		return false
	}
	return !member(attr, operand, opts)
}

// compareOp holds when the attribute compares to the operand with the given
// sign, or equal when orEqual is set.
type compareOp struct {
	name    string
	sign    int
	orEqual bool
}

func (o compareOp) Name() string { return o.name }

func (compareOp) accepts(kind domain.FieldKind) bool { return kind == domain.KindNumber }

func (o compareOp) eval(attr domain.Attribute, present bool, operand Operand, _ MatchOptions) bool {
	if !present || attr.Kind != domain.KindNumber {
		return false
	}
	want, ok := operand.decimalValue()
	if !ok {
		return false
	}
	cmp := attr.Number.Cmp(want)
	return cmp == o.sign || (o.orEqual && cmp == 0)
}

type truthOp struct {
	name string
	want bool
}

func (o truthOp) Name() string { return o.name }

func (truthOp) accepts(kind domain.FieldKind) bool { return kind == domain.KindBool }

// A missing boolean reads as false.
func (o truthOp) eval(attr domain.Attribute, present bool, _ Operand, _ MatchOptions) bool {
	value := present && attr.Bool
	return value == o.want
}

type presenceOp struct {
	name string
	want bool
}

func (o presenceOp) Name() string { return o.name }

func (presenceOp) accepts(kind domain.FieldKind) bool { return kind != domain.KindUnknown }

func (o presenceOp) eval(_ domain.Attribute, present bool, _ Operand, _ MatchOptions) bool {
	return present == o.want
}

type startsWithOp struct{}

func (startsWithOp) Name() string { return "starts_with" }

func (startsWithOp) accepts(kind domain.FieldKind) bool {
	return kind == domain.KindText || kind == domain.KindSelect
}

func (startsWithOp) eval(attr domain.Attribute, present bool, operand Operand, opts MatchOptions) bool {
	if !present || operand.Kind() != OperandText {
		return false
	}
	value, prefix := attr.Text, operand.TextValue()
	if opts.CaseInsensitive {
		value, prefix = strings.ToLower(value), strings.ToLower(prefix)
	}
	return strings.HasPrefix(value, prefix)
}

func isScalarKind(kind domain.FieldKind) bool {
	switch kind {
	case domain.KindSelect, domain.KindText, domain.KindNumber:
		return true
	}
	return false
}

// equalTo compares an attribute with a scalar operand. ok is false when the
// operand cannot be compared with the attribute's kind.
func equalTo(attr domain.Attribute, operand Operand, opts MatchOptions) (bool, bool) {
	switch attr.Kind {
	case domain.KindSelect, domain.KindText:
		want, ok := operand.textValue()
		if !ok {
			return false, false
		}
		if opts.CaseInsensitive {
			return strings.EqualFold(attr.Text, want), true
		}
		return attr.Text == want, true
	case domain.KindNumber:
		want, ok := operand.decimalValue()
		if !ok {
			return false, false
		}
		return attr.Number.Equal(want), true
	}
	return false, false
}

func member(attr domain.Attribute, list Operand, opts MatchOptions) bool {
	for _, item := range list.Items() {
		if eq, ok := equalTo(attr, item, opts); ok && eq {
			return true
		}
	}
	return false
}
