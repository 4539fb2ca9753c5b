package ruledoc

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
	"github.com/shopspring/decimal"
)

// Validate checks a rule document the way the authoring surface does before
// saving. It returns every problem found, not just the first.
func Validate(doc *Document) []error {
	var errs []error
	if len(doc.Rules) == 0 {
		errs = append(errs, fmt.Errorf("rules: at least one rule is required"))
	}
	seen := make(map[string]bool, len(doc.Rules))
	for i, r := range doc.Rules {
		prefix := fmt.Sprintf("rules[%d]", i)
		if r.ID != "" {
			if seen[r.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate rule id %q", prefix, r.ID))
			}
			seen[r.ID] = true
		}
		errs = append(errs, validateRule(prefix, r)...)
	}
	return errs
}

// ValidateRule checks a single rule document.
func ValidateRule(r RuleDoc) []error {
	return validateRule("rule", r)
}

func validateRule(prefix string, r RuleDoc) []error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, fmt.Errorf("%s.id is required", prefix))
	}
	if r.Name == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", prefix))
	}
	errs = append(errs, validateConditions(prefix+".rootConditions", r.RootConditions)...)
	if len(r.Branches) == 0 {
		errs = append(errs, fmt.Errorf("%s.branches: at least one branch is required", prefix))
	}

	branchIDs := make(map[string]bool, len(r.Branches))
	for i, b := range r.Branches {
		bp := fmt.Sprintf("%s.branches[%d]", prefix, i)
		if b.ID != "" {
			if branchIDs[b.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate branch id %q", bp, b.ID))
			}
			branchIDs[b.ID] = true
		}
		errs = append(errs, validateConditions(bp+".conditions", b.Conditions)...)
		if len(b.TaskTemplates) == 0 {
			errs = append(errs, fmt.Errorf("%s.taskTemplates: at least one task is required", bp))
		}
		for j, t := range b.TaskTemplates {
			errs = append(errs, validateTask(fmt.Sprintf("%s.taskTemplates[%d]", bp, j), t)...)
		}
	}
	return errs
}

func validateConditions(prefix string, conds []ConditionDoc) []error {
	var errs []error
	for i, c := range conds {
		errs = append(errs, validateCondition(fmt.Sprintf("%s[%d]", prefix, i), c)...)
	}
	return errs
}

func validateCondition(prefix string, c ConditionDoc) []error {
	kind := domain.KindOf(domain.Field(c.Field))
	if kind == domain.KindUnknown {
		return []error{fmt.Errorf("%s.field: unknown field %q", prefix, c.Field)}
	}
	op, err := rules.ParseOperator(c.Operator)
	if err != nil {
		return []error{fmt.Errorf("%s.operator: %w", prefix, err)}
	}
	if !rules.Accepts(op, kind) {
		return []error{fmt.Errorf("%s: operator %s does not apply to %s field %s", prefix, op.Name(), kind, c.Field)}
	}

	value, err := rules.OperandFromAny(c.Value)
	if err != nil {
		return []error{fmt.Errorf("%s.value: %w", prefix, err)}
	}
	if !rules.NeedsOperand(op) {
		if !value.IsZero() {
			return []error{fmt.Errorf("%s.value: operator %s takes no value", prefix, op.Name())}
		}
		return nil
	}
	if value.IsZero() {
		return []error{fmt.Errorf("%s.value is required for operator %s", prefix, op.Name())}
	}

	switch op {
	case rules.In, rules.NotIn:
		if value.Kind() != rules.OperandList || len(value.Items()) == 0 {
			return []error{fmt.Errorf("%s.value: operator %s needs a non-empty list", prefix, op.Name())}
		}
		return nil
	}
	if value.Kind() == rules.OperandList {
		return []error{fmt.Errorf("%s.value: operator %s needs a single value", prefix, op.Name())}
	}
	if value.Kind() == rules.OperandBool {
		return []error{fmt.Errorf("%s.value: boolean value is not comparable with %s field", prefix, kind)}
	}
	if kind == domain.KindNumber && value.Kind() == rules.OperandText {
		if _, err := decimal.NewFromString(strings.TrimSpace(value.TextValue())); err != nil {
			return []error{fmt.Errorf("%s.value: %q is not a number", prefix, value.TextValue())}
		}
	}
	return nil
}

func validateTask(prefix string, t TaskDoc) []error {
	var errs []error
	if t.Name == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", prefix))
	}
	if t.DateFormula.Kind == "" {
		errs = append(errs, fmt.Errorf("%s.dateFormula.kind is required", prefix))
	} else if _, err := decodeFormula(t.DateFormula); err != nil {
		errs = append(errs, fmt.Errorf("%s.dateFormula: %w", prefix, err))
	}
	if t.Repeat != nil {
		errs = append(errs, validateRepeat(prefix+".repeat", *t.Repeat)...)
	}
	return errs
}

func validateRepeat(prefix string, r RepeatDoc) []error {
	freq, err := rules.ParseFrequency(r.Frequency)
	if err != nil {
		return []error{fmt.Errorf("%s.frequency: %w", prefix, err)}
	}
	var errs []error
	for _, m := range r.ExcludedMonths {
		switch {
		case m < 1 || m > 12:
			errs = append(errs, fmt.Errorf("%s.excludedMonths: month %d out of range 1-12", prefix, m))
		case freq == rules.Quarterly && m%3 != 0:
			errs = append(errs, fmt.Errorf("%s.excludedMonths: %d is not a quarter end (3, 6, 9, 12)", prefix, m))
		}
	}
	return errs
}
