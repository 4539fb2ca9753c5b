// Package ruledoc reads and writes the documents exchanged with the rule
// authoring surface: fiscal rule documents and client profile documents.
package ruledoc

// Document is the top-level structure of a rule file.
type Document struct {
	Rules []RuleDoc `json:"rules"`
}

// RuleDoc is one fiscal rule as authored.
type RuleDoc struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	IsActive       *bool          `json:"isActive,omitempty"`
	RootConditions []ConditionDoc `json:"rootConditions,omitempty"`
	Branches       []BranchDoc    `json:"branches"`
}

// Active reports the rule's activation flag. Rules are active unless the
// document says otherwise.
func (r RuleDoc) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// BranchDoc is a sub-policy of a rule.
type BranchDoc struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Conditions    []ConditionDoc `json:"conditions,omitempty"`
	TaskTemplates []TaskDoc      `json:"taskTemplates"`
}

// ConditionDoc is one predicate. Value is a scalar or an array of scalars and
// is omitted for operators that take no operand.
type ConditionDoc struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// TaskDoc is a task template. A template with a repeat block is recurring.
type TaskDoc struct {
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	FormCode    string     `json:"formCode,omitempty"`
	DateFormula FormulaDoc `json:"dateFormula"`
	Repeat      *RepeatDoc `json:"repeat,omitempty"`
}

// FormulaDoc is the tagged form of a date formula. Params depend on Kind:
//
//	fixed                       day, month, yearOffset
//	relative_to_closing         monthOffset, dayOffset
//	end_of_month_plus_offset    dayOffset
//	end_of_quarter_plus_offset  dayOffset
//	relative_to_ago             monthOffset, dayOffset
//	closing_conditional         ifClosingIsYearEnd, otherwise (nested formulas)
type FormulaDoc struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// RepeatDoc is the recurrence block of a task template.
type RepeatDoc struct {
	Frequency      string `json:"frequency"`
	ExcludedMonths []int  `json:"excludedMonths,omitempty"`
}

// Param names used by the formula kinds.
const (
	paramDay                = "day"
	paramMonth              = "month"
	paramYearOffset         = "yearOffset"
	paramMonthOffset        = "monthOffset"
	paramDayOffset          = "dayOffset"
	paramIfClosingIsYearEnd = "ifClosingIsYearEnd"
	paramOtherwise          = "otherwise"
)
