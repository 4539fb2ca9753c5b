package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// OperandKind is the shape of a condition's comparison value.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandText
	OperandNumber
	OperandBool
	OperandList
)

// Operand is the typed value a condition compares a profile attribute with.
// The zero value is OperandNone, used by presence and boolean operators.
type Operand struct {
	kind   OperandKind
	text   string
	number decimal.Decimal
	flag   bool
	list   []Operand
}

func Text(s string) Operand                    { return Operand{kind: OperandText, text: s} }
func Number(d decimal.Decimal) Operand         { return Operand{kind: OperandNumber, number: d} }
func Int(n int64) Operand                      { return Number(decimal.NewFromInt(n)) }
func Bool(b bool) Operand                      { return Operand{kind: OperandBool, flag: b} }
func List(items ...Operand) Operand            { return Operand{kind: OperandList, list: items} }
func (o Operand) Kind() OperandKind            { return o.kind }
func (o Operand) Items() []Operand             { return o.list }
func (o Operand) IsZero() bool                 { return o.kind == OperandNone }
func (o Operand) TextValue() string            { return o.text }
func (o Operand) BoolValue() bool              { return o.flag }
func (o Operand) NumberValue() decimal.Decimal { return o.number }

// OperandFromAny converts a decoded JSON or YAML value into an Operand.
// Nested lists are rejected.
func OperandFromAny(v any) (Operand, error) {
	return operandFromAny(v, true)
}

func operandFromAny(v any, allowList bool) (Operand, error) {
	switch x := v.(type) {
	case nil:
		return Operand{}, nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return Operand{}, fmt.Errorf("integer %d out of range", x)
		}
		return Int(int64(x)), nil
	case float64:
		return Number(decimal.NewFromFloat(x)), nil
	case decimal.Decimal:
		return Number(x), nil
	case fmt.Stringer:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Operand{}, fmt.Errorf("unsupported value %q", x.String())
		}
		return Number(d), nil
	case []any:
		if !allowList {
			return Operand{}, fmt.Errorf("nested lists are not supported")
		}
		items := make([]Operand, 0, len(x))
		for i, item := range x {
			op, err := operandFromAny(item, false)
			if err != nil {
				return Operand{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, op)
		}
		return List(items...), nil
	case []string:
		items := make([]Operand, 0, len(x))
		for _, s := range x {
			items = append(items, Text(s))
		}
		return List(items...), nil
	}
	return Operand{}, fmt.Errorf("unsupported value type %T", v)
}

// Any returns the operand as a plain value for document encoding. Numbers are
// json.Number so that no digit is lost.
func (o Operand) Any() any {
	switch o.kind {
	case OperandText:
		return o.text
	case OperandBool:
		return o.flag
	case OperandNumber:
		return json.Number(o.number.String())
	case OperandList:
		out := make([]any, 0, len(o.list))
		for _, item := range o.list {
			out = append(out, item.Any())
		}
		return out
	}
	return nil
}

func (o Operand) String() string {
	switch o.kind {
	case OperandText:
		return fmt.Sprintf("%q", o.text)
	case OperandNumber:
		return o.number.String()
	case OperandBool:
		return fmt.Sprintf("%t", o.flag)
	case OperandList:
		parts := make([]string, 0, len(o.list))
		for _, item := range o.list {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// decimalValue reads the operand as a number. Numeric text is accepted since
// authoring forms commonly store thresholds as strings.
func (o Operand) decimalValue() (decimal.Decimal, bool) {
	switch o.kind {
	case OperandNumber:
		return o.number, true
	case OperandText:
		d, err := decimal.NewFromString(strings.TrimSpace(o.text))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// textValue reads the operand as text. Numbers render canonically so a YAML
// value of 75 still compares equal to department "75".
func (o Operand) textValue() (string, bool) {
	switch o.kind {
	case OperandText:
		return o.text, true
	case OperandNumber:
		return o.number.String(), true
	}
	return "", false
}
