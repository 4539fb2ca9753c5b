package ruledoc

import (
	"fmt"

	"github.com/alexanderramin/echeance/internal/rules"
)

// FromRules converts rules back into a document.
func FromRules(all []rules.FiscalRule) (*Document, error) {
	doc := &Document{Rules: make([]RuleDoc, 0, len(all))}
	for _, r := range all {
		rd, err := FromRule(r)
		if err != nil {
			return nil, err
		}
		doc.Rules = append(doc.Rules, rd)
	}
	return doc, nil
}

// FromRule converts a rule into its authoring document. Decoding the result
// with ToRule yields a rule that generates the same tasks.
func FromRule(r rules.FiscalRule) (RuleDoc, error) {
	active := r.IsActive
	doc := RuleDoc{
		ID:             r.ID,
		Name:           r.Name,
		IsActive:       &active,
		RootConditions: fromConditions(r.RootConditions),
		Branches:       make([]BranchDoc, 0, len(r.Branches)),
	}
	for _, b := range r.Branches {
		bd := BranchDoc{
			ID:            b.ID,
			Name:          b.Name,
			Conditions:    fromConditions(b.Conditions),
			TaskTemplates: make([]TaskDoc, 0, len(b.Templates)),
		}
		for _, t := range b.Templates {
			enc := &templateEncoder{}
			t.Accept(enc)
			if enc.err != nil {
				return RuleDoc{}, fmt.Errorf("rule %s, branch %s, task %q: %w", r.ID, b.ID, t.Info().Name, enc.err)
			}
			bd.TaskTemplates = append(bd.TaskTemplates, enc.doc)
		}
		doc.Branches = append(doc.Branches, bd)
	}
	return doc, nil
}

func fromConditions(conds []rules.Condition) []ConditionDoc {
	if len(conds) == 0 {
		return nil
	}
	out := make([]ConditionDoc, 0, len(conds))
	for _, c := range conds {
		cd := ConditionDoc{Field: string(c.Field), Value: c.Value.Any()}
		if c.Operator != nil {
			cd.Operator = c.Operator.Name()
		}
		out = append(out, cd)
	}
	return out
}

type templateEncoder struct {
	doc TaskDoc
	err error
}

func (e *templateEncoder) VisitSingle(t rules.Single) {
	e.doc = taskDoc(t.Task)
	e.doc.DateFormula, e.err = encodeFormula(t.Due)
}

func (e *templateEncoder) VisitRecurring(t rules.Recurring) {
	e.doc = taskDoc(t.Task)
	e.doc.DateFormula, e.err = encodeFormula(t.Due)
	e.doc.Repeat = &RepeatDoc{
		Frequency:      string(t.Repeat.Frequency),
		ExcludedMonths: append([]int(nil), t.Repeat.ExcludedMonths...),
	}
}

func taskDoc(info rules.TaskInfo) TaskDoc {
	return TaskDoc{Name: info.Name, Category: info.Category, FormCode: info.FormCode}
}

func encodeFormula(f rules.DateFormula) (FormulaDoc, error) {
	switch v := f.(type) {
	case rules.Fixed:
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{
			paramDay: v.Day, paramMonth: v.Month, paramYearOffset: v.YearOffset,
		}}, nil
	case rules.RelativeToClosing:
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{
			paramMonthOffset: v.MonthOffset, paramDayOffset: v.DayOffset,
		}}, nil
	case rules.RelativeToAGO:
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{
			paramMonthOffset: v.MonthOffset, paramDayOffset: v.DayOffset,
		}}, nil
	case rules.EndOfMonthPlusOffset:
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{paramDayOffset: v.DayOffset}}, nil
	case rules.EndOfQuarterPlusOffset:
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{paramDayOffset: v.DayOffset}}, nil
	case rules.ClosingConditional:
		yearEnd, err := encodeFormula(v.IfClosingIsYearEnd)
		if err != nil {
			return FormulaDoc{}, fmt.Errorf("%s: %w", paramIfClosingIsYearEnd, err)
		}
		otherwise, err := encodeFormula(v.Otherwise)
		if err != nil {
			return FormulaDoc{}, fmt.Errorf("%s: %w", paramOtherwise, err)
		}
		return FormulaDoc{Kind: v.Kind(), Params: map[string]any{
			paramIfClosingIsYearEnd: yearEnd.asMap(),
			paramOtherwise:          otherwise.asMap(),
		}}, nil
	case rules.Unsupported:
		return FormulaDoc{Kind: v.RawKind, Params: v.Params}, nil
	case nil:
		return FormulaDoc{}, fmt.Errorf("%w: missing formula", rules.ErrInvalidFormula)
	}
	return FormulaDoc{}, fmt.Errorf("%w: no encoding for %T", rules.ErrUnsupportedFormula, f)
}

func (f FormulaDoc) asMap() map[string]any {
	m := map[string]any{"kind": f.Kind}
	if len(f.Params) > 0 {
		m["params"] = f.Params
	}
	return m
}
