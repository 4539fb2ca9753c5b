package ruledoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
)

// ToRules converts every rule of a document. See ToRule.
func ToRules(doc *Document) []rules.FiscalRule {
	out := make([]rules.FiscalRule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		out = append(out, ToRule(r))
	}
	return out
}

// ToRule converts a rule document into the engine model. Decoding is lenient
// so stored rules always load: an unknown operator or unusable value leaves a
// condition that never matches, and an unknown or malformed date formula
// becomes rules.Unsupported, which generation skips with a diagnostic. Use
// ValidateRule to reject such documents before they are stored.
func ToRule(doc RuleDoc) rules.FiscalRule {
	r := rules.FiscalRule{
		ID:             doc.ID,
		Name:           doc.Name,
		IsActive:       doc.Active(),
		RootConditions: toConditions(doc.RootConditions),
		Branches:       make([]rules.Branch, 0, len(doc.Branches)),
	}
	for i, b := range doc.Branches {
		id := b.ID
		if id == "" {
			id = fmt.Sprintf("%s#%d", doc.ID, i)
		}
		branch := rules.Branch{
			ID:         id,
			Name:       b.Name,
			Conditions: toConditions(b.Conditions),
			Templates:  make([]rules.TaskTemplate, 0, len(b.TaskTemplates)),
		}
		for _, t := range b.TaskTemplates {
			branch.Templates = append(branch.Templates, toTemplate(t))
		}
		r.Branches = append(r.Branches, branch)
	}
	return r
}

func toConditions(docs []ConditionDoc) []rules.Condition {
	if len(docs) == 0 {
		return nil
	}
	out := make([]rules.Condition, 0, len(docs))
	for _, c := range docs {
		cond := rules.Condition{Field: domain.Field(c.Field)}
		if op, err := rules.ParseOperator(c.Operator); err == nil {
			cond.Operator = op
		}
		if v, err := rules.OperandFromAny(c.Value); err == nil {
			cond.Value = v
		}
		out = append(out, cond)
	}
	return out
}

func toTemplate(t TaskDoc) rules.TaskTemplate {
	info := rules.TaskInfo{Name: t.Name, Category: t.Category, FormCode: t.FormCode}
	due := lenientFormula(t.DateFormula)
	if t.Repeat == nil {
		return rules.Single{Task: info, Due: due}
	}
	return rules.Recurring{
		Task: info,
		Due:  due,
		Repeat: rules.RepeatSpec{
			Frequency:      rules.Frequency(t.Repeat.Frequency),
			ExcludedMonths: append([]int(nil), t.Repeat.ExcludedMonths...),
		},
	}
}

func lenientFormula(fd FormulaDoc) rules.DateFormula {
	f, err := decodeFormula(fd)
	if err == nil {
		return f
	}
	u := rules.Unsupported{RawKind: fd.Kind, Params: fd.Params}
	if !errors.Is(err, rules.ErrUnsupportedFormula) {
		u.Reason = err
	}
	return u
}

// decodeFormula is the strict decoder: any unknown kind or bad parameter is an
// error. Unknown kinds wrap rules.ErrUnsupportedFormula.
func decodeFormula(fd FormulaDoc) (rules.DateFormula, error) {
	p := params(fd.Params)
	switch fd.Kind {
	case rules.KindFixed:
		day, err := p.int(paramDay, true)
		if err != nil {
			return nil, err
		}
		month, err := p.int(paramMonth, true)
		if err != nil {
			return nil, err
		}
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("day %d out of range 1-31", day)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("month %d out of range 1-12", month)
		}
		yearOffset, err := p.int(paramYearOffset, false)
		if err != nil {
			return nil, err
		}
		return rules.Fixed{Day: day, Month: month, YearOffset: yearOffset}, nil

	case rules.KindRelativeToClosing, rules.KindRelativeToAGO:
		months, err := p.int(paramMonthOffset, false)
		if err != nil {
			return nil, err
		}
		days, err := p.int(paramDayOffset, false)
		if err != nil {
			return nil, err
		}
		if fd.Kind == rules.KindRelativeToAGO {
			return rules.RelativeToAGO{MonthOffset: months, DayOffset: days}, nil
		}
		return rules.RelativeToClosing{MonthOffset: months, DayOffset: days}, nil

	case rules.KindEndOfMonthPlus, rules.KindEndOfQuarterPlus:
		days, err := p.int(paramDayOffset, false)
		if err != nil {
			return nil, err
		}
		if fd.Kind == rules.KindEndOfQuarterPlus {
			return rules.EndOfQuarterPlusOffset{DayOffset: days}, nil
		}
		return rules.EndOfMonthPlusOffset{DayOffset: days}, nil

	case rules.KindClosingConditional:
		yearEnd, err := p.formula(paramIfClosingIsYearEnd)
		if err != nil {
			return nil, err
		}
		otherwise, err := p.formula(paramOtherwise)
		if err != nil {
			return nil, err
		}
		return rules.ClosingConditional{IfClosingIsYearEnd: yearEnd, Otherwise: otherwise}, nil
	}
	return nil, fmt.Errorf("%w: kind %q", rules.ErrUnsupportedFormula, fd.Kind)
}

type params map[string]any

func (p params) int(key string, required bool) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("param %s is required", key)
		}
		return 0, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return 0, fmt.Errorf("param %s is out of range: %d", key, x)
		}
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, fmt.Errorf("param %s is out of range: %d", key, x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("param %s must be an integer, got %v", key, x)
		}
		// float64(math.MaxInt) rounds up to 2^63, which is itself out of range.
		if x < math.MinInt || x >= math.MaxInt {
			return 0, fmt.Errorf("param %s is out of range: %v", key, x)
		}
		return int(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("param %s must be an integer, got %s", key, x)
		}
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("param %s is out of range: %d", key, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("param %s must be an integer, got %T", key, v)
}

func (p params) formula(key string) (rules.DateFormula, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("param %s is required", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %s must be a formula object, got %T", key, v)
	}
	kind, _ := m["kind"].(string)
	nested := FormulaDoc{Kind: kind}
	if raw, ok := m["params"]; ok && raw != nil {
		np, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("param %s.params must be an object, got %T", key, raw)
		}
		nested.Params = np
	}
	f, err := decodeFormula(nested)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
