package generation

import (
	"fmt"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
)

// Match is an applicable rule together with every branch of it that applies.
type Match struct {
	Rule     rules.FiscalRule
	Branches []rules.Branch
}

// MatchRules selects the active rules whose root conditions match the profile
// and, within each, every branch whose own conditions match. Branches are
// evaluated independently and are not mutually exclusive. A rule that matches
// but has no matching branch is still returned with an empty branch list.
// Branches without an ID get "<ruleID>#<index>".
func MatchRules(all []rules.FiscalRule, profile *domain.ClientFiscalProfile, opts rules.MatchOptions) []Match {
	var matches []Match
	for _, r := range all {
		if !r.IsActive || !rules.Matches(r.RootConditions, profile, opts) {
			continue
		}
		m := Match{Rule: r}
		for i, b := range r.Branches {
			if b.ID == "" {
				b.ID = fmt.Sprintf("%s#%d", r.ID, i)
			}
			if rules.Matches(b.Conditions, profile, opts) {
				m.Branches = append(m.Branches, b)
			}
		}
		matches = append(matches, m)
	}
	return matches
}
