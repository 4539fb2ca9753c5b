package generation

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyVATRule() rules.FiscalRule {
	return rules.FiscalRule{
		ID:       "tva-mensuelle",
		Name:     "TVA mensuelle",
		IsActive: true,
		RootConditions: []rules.Condition{
			{Field: domain.FieldVATFrequency, Operator: rules.Equals, Value: rules.Text("monthly")},
		},
		Branches: []rules.Branch{{
			Name: "default",
			Templates: []rules.TaskTemplate{
				rules.Recurring{
					Task:   rules.TaskInfo{Name: "VAT filing", Category: "TVA", FormCode: "CA3"},
					Due:    rules.EndOfMonthPlusOffset{DayOffset: 24},
					Repeat: rules.RepeatSpec{Frequency: rules.Monthly},
				},
			},
		}},
	}
}

func TestGenerate_RecurringMonthlyVAT(t *testing.T) {
	profile := &domain.ClientFiscalProfile{ClientID: "c1", VATFrequency: "monthly"}

	res := New().Generate([]rules.FiscalRule{monthlyVATRule()}, profile, "c1", 2025)

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Tasks, 12)
	for i, task := range res.Tasks {
		want := rules.EndOfMonth(2025, time.Month(i+1)).AddDate(0, 0, 24)
		assert.Equal(t, want, task.DueDate, "month %d", i+1)
		assert.Equal(t, "VAT filing", task.Name)
		assert.Equal(t, "CA3", task.FormCode)
		assert.Equal(t, "c1", task.ClientID)
		assert.Equal(t, 2025, task.Exercice)
		assert.Equal(t, "tva-mensuelle", task.SourceRuleID)
		assert.Equal(t, "tva-mensuelle#0", task.SourceBranchID)
	}
	assert.Equal(t, day(2025, time.February, 24), res.Tasks[0].DueDate)
	assert.Equal(t, day(2026, time.January, 24), res.Tasks[11].DueDate)
}

func TestGenerate_RootConditionMismatch(t *testing.T) {
	profile := &domain.ClientFiscalProfile{ClientID: "c2", VATFrequency: "quarterly"}

	res := New().Generate([]rules.FiscalRule{monthlyVATRule()}, profile, "c2", 2025)

	assert.Empty(t, res.Tasks)
	assert.Empty(t, res.Diagnostics)
}

func TestGenerate_InactiveRuleIgnored(t *testing.T) {
	r := monthlyVATRule()
	r.IsActive = false
	profile := &domain.ClientFiscalProfile{VATFrequency: "monthly"}

	assert.Empty(t, New().Generate([]rules.FiscalRule{r}, profile, "c1", 2025).Tasks)
}

func TestGenerate_NoRules(t *testing.T) {
	res := New().Generate(nil, &domain.ClientFiscalProfile{}, "c1", 2025)
	assert.Empty(t, res.Tasks)
	assert.Empty(t, res.Diagnostics)
}

func TestGenerate_VATDayOverride(t *testing.T) {
	vatDay := 10
	profile := &domain.ClientFiscalProfile{VATFrequency: "monthly", VATDay: &vatDay}

	res := New().Generate([]rules.FiscalRule{monthlyVATRule()}, profile, "c1", 2025)

	require.Len(t, res.Tasks, 12)
	assert.Equal(t, day(2025, time.February, 10), res.Tasks[0].DueDate)
}

func TestGenerate_Deterministic(t *testing.T) {
	all := []rules.FiscalRule{annualRule(), monthlyVATRule()}
	reversed := []rules.FiscalRule{monthlyVATRule(), annualRule()}
	profile := &domain.ClientFiscalProfile{VATFrequency: "monthly", TaxCategory: "IS", ClosingDate: "30/06"}

	g := New()
	first := g.Generate(all, profile, "c1", 2025)
	second := g.Generate(all, profile, "c1", 2025)
	third := g.Generate(reversed, profile, "c1", 2025)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third, "input rule order does not change output")
}

func TestGenerate_SortedByDueDateThenName(t *testing.T) {
	profile := &domain.ClientFiscalProfile{VATFrequency: "monthly", TaxCategory: "IS", ClosingDate: "30/06"}

	res := New().Generate([]rules.FiscalRule{monthlyVATRule(), annualRule()}, profile, "c1", 2025)

	require.NotEmpty(t, res.Tasks)
	for i := 1; i < len(res.Tasks); i++ {
		prev, cur := res.Tasks[i-1], res.Tasks[i]
		if prev.DueDate.Equal(cur.DueDate) {
			assert.LessOrEqual(t, prev.Name, cur.Name)
			continue
		}
		assert.True(t, prev.DueDate.Before(cur.DueDate), "%s before %s", prev.Name, cur.Name)
	}
}

func annualRule() rules.FiscalRule {
	return rules.FiscalRule{
		ID:       "is-annuel",
		Name:     "Impôt sur les sociétés",
		IsActive: true,
		RootConditions: []rules.Condition{
			{Field: domain.FieldTaxCategory, Operator: rules.Equals, Value: rules.Text("IS")},
		},
		Branches: []rules.Branch{
			{
				ID: "liasse",
				Templates: []rules.TaskTemplate{
					rules.Single{
						Task: rules.TaskInfo{Name: "Liasse fiscale", FormCode: "2065"},
						Due: rules.ClosingConditional{
							IfClosingIsYearEnd: rules.Fixed{Day: 3, Month: 5, YearOffset: 1},
							Otherwise:          rules.RelativeToClosing{MonthOffset: 3, DayOffset: 15},
						},
					},
					// AGO and closing + 6 months land on the same day as the "ago" branch.
					rules.Single{
						Task: rules.TaskInfo{Name: "Approbation des comptes"},
						Due:  rules.RelativeToAGO{},
					},
				},
			},
			{
				ID: "ago",
				Templates: []rules.TaskTemplate{
					rules.Single{
						Task: rules.TaskInfo{Name: "Approbation des comptes"},
						Due:  rules.RelativeToClosing{MonthOffset: 6},
					},
				},
			},
		},
	}
}

func TestGenerate_DedupOnNameAndDueDate(t *testing.T) {
	profile := &domain.ClientFiscalProfile{TaxCategory: "IS", ClosingDate: "30/06"}

	res := New().Generate([]rules.FiscalRule{annualRule()}, profile, "c1", 2025)

	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "Liasse fiscale", res.Tasks[0].Name)
	assert.Equal(t, day(2025, time.October, 15), res.Tasks[0].DueDate)
	assert.Equal(t, "Approbation des comptes", res.Tasks[1].Name)
	assert.Equal(t, day(2025, time.December, 30), res.Tasks[1].DueDate)
	assert.Equal(t, "liasse", res.Tasks[1].SourceBranchID, "first producer wins")
}

func TestGenerate_AllMatchingBranchesContribute(t *testing.T) {
	r := rules.FiscalRule{
		ID:       "cfe",
		IsActive: true,
		Branches: []rules.Branch{
			{
				ID:         "premises",
				Conditions: []rules.Condition{{Field: domain.FieldHasBusinessPremises, Operator: rules.IsTrue}},
				Templates: []rules.TaskTemplate{
					rules.Single{Task: rules.TaskInfo{Name: "CFE acompte"}, Due: rules.Fixed{Day: 15, Month: 6}},
				},
			},
			{
				ID:         "owner",
				Conditions: []rules.Condition{{Field: domain.FieldIsOwner, Operator: rules.IsTrue}},
				Templates: []rules.TaskTemplate{
					rules.Single{Task: rules.TaskInfo{Name: "Taxe foncière"}, Due: rules.Fixed{Day: 15, Month: 10}},
				},
			},
			{
				ID:         "not-matching",
				Conditions: []rules.Condition{{Field: domain.FieldVehicleTax, Operator: rules.IsTrue}},
				Templates: []rules.TaskTemplate{
					rules.Single{Task: rules.TaskInfo{Name: "TVS"}, Due: rules.Fixed{Day: 31, Month: 1, YearOffset: 1}},
				},
			},
		},
	}
	yes := true
	profile := &domain.ClientFiscalProfile{HasBusinessPremises: &yes, IsOwner: &yes}

	res := New().Generate([]rules.FiscalRule{r}, profile, "c1", 2025)

	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "premises", res.Tasks[0].SourceBranchID)
	assert.Equal(t, "owner", res.Tasks[1].SourceBranchID)
}

func TestGenerate_UnsupportedFormulaSkipsTemplateOnly(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r := rules.FiscalRule{
		ID:       "mixed",
		IsActive: true,
		Branches: []rules.Branch{{
			ID: "b",
			Templates: []rules.TaskTemplate{
				rules.Single{Task: rules.TaskInfo{Name: "Stale"}, Due: rules.Unsupported{RawKind: "lunar_cycle"}},
				rules.Single{Task: rules.TaskInfo{Name: "DAS2"}, Due: rules.Fixed{Day: 1, Month: 5, YearOffset: 1}},
			},
		}},
	}

	res := New(WithLogger(logger)).Generate([]rules.FiscalRule{r}, &domain.ClientFiscalProfile{}, "c1", 2025)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "DAS2", res.Tasks[0].Name)
	require.Len(t, res.Diagnostics, 1)
	assert.ErrorIs(t, res.Diagnostics[0].Err, rules.ErrUnsupportedFormula)
	assert.Equal(t, "Stale", res.Diagnostics[0].Template)
	assert.Contains(t, logs.String(), "template skipped")
	assert.Contains(t, logs.String(), "lunar_cycle")
}

func TestGenerate_CaseInsensitiveMatching(t *testing.T) {
	profile := &domain.ClientFiscalProfile{VATFrequency: "Monthly"}

	assert.Empty(t, New().Generate([]rules.FiscalRule{monthlyVATRule()}, profile, "c1", 2025).Tasks)

	g := New(WithMatchOptions(rules.MatchOptions{CaseInsensitive: true}))
	assert.Len(t, g.Generate([]rules.FiscalRule{monthlyVATRule()}, profile, "c1", 2025).Tasks, 12)
}
