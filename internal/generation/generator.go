package generation

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
)

// Diagnostic records a template that was skipped during generation.
type Diagnostic struct {
	RuleID   string
	BranchID string
	Template string
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("rule %s, branch %s, task %q: %v", d.RuleID, d.BranchID, d.Template, d.Err)
}

// Result is the output of one generation pass.
type Result struct {
	Tasks       []domain.TaskInstance
	Diagnostics []Diagnostic
}

// Option configures a Generator.
type Option func(*Generator)

// WithMatchOptions sets the condition evaluation options.
func WithMatchOptions(opts rules.MatchOptions) Option {
	return func(g *Generator) { g.match = opts }
}

// WithLogger sets the logger that receives skipped-template warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator turns a rule set and a client profile into dated task instances.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	match  rules.MatchOptions
	logger *slog.Logger
}

func New(opts ...Option) *Generator {
	g := &Generator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate computes the obligations of clientID for the exercice. Rules are
// visited in ID order; instances sharing a name and due date are collapsed to
// the first one produced; the result is sorted by due date, then name.
// Templates whose formula cannot be resolved are skipped and reported as
// diagnostics instead of failing the whole client.
func (g *Generator) Generate(all []rules.FiscalRule, profile *domain.ClientFiscalProfile, clientID string, exercice int) Result {
	ordered := make([]rules.FiscalRule, len(all))
	copy(ordered, all)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	e := &emitter{
		profile:  profile,
		clientID: clientID,
		exercice: exercice,
		seen:     make(map[dedupKey]struct{}),
	}
	for _, m := range MatchRules(ordered, profile, g.match) {
		for _, b := range m.Branches {
			e.ruleID, e.branchID = m.Rule.ID, b.ID
			for _, t := range b.Templates {
				t.Accept(e)
			}
		}
	}

	for _, d := range e.diagnostics {
		g.logger.Warn("template skipped",
			"client_id", clientID,
			"exercice", exercice,
			"rule_id", d.RuleID,
			"branch_id", d.BranchID,
			"task", d.Template,
			"error", d.Err.Error(),
		)
	}

	sort.SliceStable(e.tasks, func(i, j int) bool {
		a, b := e.tasks[i], e.tasks[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Name < b.Name
	})
	return Result{Tasks: e.tasks, Diagnostics: e.diagnostics}
}

type dedupKey struct {
	name string
	due  int64
}

// emitter visits the templates of one branch at a time.
type emitter struct {
	profile  *domain.ClientFiscalProfile
	clientID string
	exercice int

	ruleID   string
	branchID string

	seen        map[dedupKey]struct{}
	tasks       []domain.TaskInstance
	diagnostics []Diagnostic
}

func (e *emitter) VisitSingle(t rules.Single) {
	due, err := rules.Resolve(t.Due, rules.ResolveContext{Exercice: e.exercice, Profile: e.profile})
	if err != nil {
		e.skip(t.Task, err)
		return
	}
	e.emit(t.Task, due)
}

func (e *emitter) VisitRecurring(t rules.Recurring) {
	occurrences, err := Expand(t, e.exercice, e.profile)
	if err != nil {
		e.skip(t.Task, err)
		return
	}
	for _, o := range occurrences {
		e.emit(t.Task, o.DueDate)
	}
}

func (e *emitter) emit(info rules.TaskInfo, due time.Time) {
	key := dedupKey{name: info.Name, due: due.Unix()}
	if _, dup := e.seen[key]; dup {
		return
	}
	e.seen[key] = struct{}{}
	e.tasks = append(e.tasks, domain.TaskInstance{
		Name:           info.Name,
		Category:       info.Category,
		FormCode:       info.FormCode,
		DueDate:        due,
		ClientID:       e.clientID,
		Exercice:       e.exercice,
		SourceRuleID:   e.ruleID,
		SourceBranchID: e.branchID,
	})
}

func (e *emitter) skip(info rules.TaskInfo, err error) {
	e.diagnostics = append(e.diagnostics, Diagnostic{
		RuleID:   e.ruleID,
		BranchID: e.branchID,
		Template: info.Name,
		Err:      err,
	})
}
