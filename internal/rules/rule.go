package rules

// FiscalRule is the root policy unit. A rule applies when it is active and
// its root conditions match; its branches are then evaluated independently.
type FiscalRule struct {
	ID             string
	Name           string
	IsActive       bool
	RootConditions []Condition
	Branches       []Branch
}

// Branch is a sub-policy of a rule. Branches are not mutually exclusive.
type Branch struct {
	ID         string
	Name       string
	Conditions []Condition
	Templates  []TaskTemplate
}

// TaskInfo is the descriptive part of a task template.
type TaskInfo struct {
	Name     string
	Category string
	FormCode string
}

// TemplateVisitor handles every task template variant. Adding a variant adds
// a method here, so every visitor must be updated before the code compiles.
type TemplateVisitor interface {
	VisitSingle(t Single)
	VisitRecurring(t Recurring)
}

// TaskTemplate is a declarative obligation: either one dated task or a
// recurring series.
type TaskTemplate interface {
	Info() TaskInfo
	Formula() DateFormula
	Accept(v TemplateVisitor)
}

// Single produces one task instance per exercice.
type Single struct {
	Task TaskInfo
	Due  DateFormula
}

func (t Single) Info() TaskInfo           { return t.Task }
func (t Single) Formula() DateFormula     { return t.Due }
func (t Single) Accept(v TemplateVisitor) { v.VisitSingle(t) }

// Recurring produces one task instance per qualifying period of the exercice.
type Recurring struct {
	Task   TaskInfo
	Due    DateFormula
	Repeat RepeatSpec
}

func (t Recurring) Info() TaskInfo           { return t.Task }
func (t Recurring) Formula() DateFormula     { return t.Due }
func (t Recurring) Accept(v TemplateVisitor) { v.VisitRecurring(t) }
