package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/ruledoc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testClientCounter atomic.Int64

// Profile options
type ProfileOption func(*domain.ClientFiscalProfile)

func WithVATFrequency(f string) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.VATFrequency = f
	}
}

func WithVATDay(d int) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.VATDay = &d
	}
}

func WithTaxCategory(c string) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.TaxCategory = c
	}
}

func WithLegalForm(f string) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.LegalForm = f
	}
}

func WithClosingDate(d string) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.ClosingDate = d
	}
}

func WithRevenue(amount string) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.PriorYearRevenue = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
}

func WithBusinessPremises(has bool) ProfileOption {
	return func(p *domain.ClientFiscalProfile) {
		p.HasBusinessPremises = &has
	}
}

// NewTestProfile returns a monthly-VAT corporate-tax client. An empty id gets
// a generated one.
func NewTestProfile(id string, opts ...ProfileOption) *domain.ClientFiscalProfile {
	if id == "" {
		id = fmt.Sprintf("client-%02d", testClientCounter.Add(1))
	}
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.ClientFiscalProfile{
		ClientID:     id,
		Name:         "Client " + id,
		VATRegime:    "reel_normal",
		VATFrequency: "monthly",
		TaxCategory:  "IS",
		LegalForm:    "SAS",
		Department:   "75",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewMonthlyVATRuleDoc returns a rule emitting one CA3 return per month,
// due 24 days after month end, for monthly VAT filers.
func NewMonthlyVATRuleDoc(id string) ruledoc.RuleDoc {
	return ruledoc.RuleDoc{
		ID:   id,
		Name: "TVA mensuelle",
		RootConditions: []ruledoc.ConditionDoc{
			{Field: "vat_frequency", Operator: "equals", Value: "monthly"},
		},
		Branches: []ruledoc.BranchDoc{{
			ID:   id + "-ca3",
			Name: "CA3",
			TaskTemplates: []ruledoc.TaskDoc{{
				Name:     "Déclaration CA3",
				Category: "TVA",
				FormCode: "3310-CA3",
				DateFormula: ruledoc.FormulaDoc{
					Kind:   "end_of_month_plus_offset",
					Params: map[string]any{"dayOffset": 24},
				},
				Repeat: &ruledoc.RepeatDoc{Frequency: "monthly"},
			}},
		}},
	}
}

// NewFixedRuleDoc returns a rule with a single unconditional task due on
// day/month of the exercice.
func NewFixedRuleDoc(id, task string, day, month int) ruledoc.RuleDoc {
	return ruledoc.RuleDoc{
		ID:   id,
		Name: task,
		Branches: []ruledoc.BranchDoc{{
			ID:   id + "-main",
			Name: task,
			TaskTemplates: []ruledoc.TaskDoc{{
				Name: task,
				DateFormula: ruledoc.FormulaDoc{
					Kind:   "fixed",
					Params: map[string]any{"day": day, "month": month},
				},
			}},
		}},
	}
}

// NewTestRun returns an unsaved run for clientID and exercice.
func NewTestRun(clientID string, exercice int) *domain.Run {
	return &domain.Run{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Exercice:  exercice,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
