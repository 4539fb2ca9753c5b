package generation

import (
	"testing"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRules(t *testing.T) {
	monthly := monthlyVATRule()
	inactive := annualRule()
	inactive.IsActive = false
	emptyRoot := rules.FiscalRule{
		ID:       "always",
		IsActive: true,
		Branches: []rules.Branch{
			{Conditions: []rules.Condition{{Field: domain.FieldLegalForm, Operator: rules.Equals, Value: rules.Text("SARL")}}},
			{},
		},
	}
	profile := &domain.ClientFiscalProfile{VATFrequency: "monthly", LegalForm: "SAS"}

	got := MatchRules([]rules.FiscalRule{monthly, inactive, emptyRoot}, profile, rules.MatchOptions{})

	require.Len(t, got, 2)
	assert.Equal(t, "tva-mensuelle", got[0].Rule.ID)
	require.Len(t, got[0].Branches, 1)
	assert.Equal(t, "always", got[1].Rule.ID)
	require.Len(t, got[1].Branches, 1)
	assert.Equal(t, "always#1", got[1].Branches[0].ID)
}

func TestMatchRules_RuleWithoutMatchingBranch(t *testing.T) {
	r := rules.FiscalRule{
		ID:       "r",
		IsActive: true,
		Branches: []rules.Branch{
			{Conditions: []rules.Condition{{Field: domain.FieldIsOwner, Operator: rules.IsTrue}}},
		},
	}
	got := MatchRules([]rules.FiscalRule{r}, &domain.ClientFiscalProfile{}, rules.MatchOptions{})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Branches)
}
