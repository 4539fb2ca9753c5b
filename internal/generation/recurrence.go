package generation

import (
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
)

// Occurrence is one resolved slot of a recurring template.
type Occurrence struct {
	Period  rules.Period
	DueDate time.Time
}

// Expand enumerates the calendar months or quarters of the exercice, skips the
// excluded ones and resolves the template's formula with each remaining period
// as its anchor. Excluding every period is valid and yields no occurrences.
// The first resolution failure aborts the whole expansion so a series is never
// returned with holes.
func Expand(t rules.Recurring, exercice int, profile *domain.ClientFiscalProfile) ([]Occurrence, error) {
	if _, err := rules.ParseFrequency(string(t.Repeat.Frequency)); err != nil {
		return nil, err
	}
	periods := rules.Periods(t.Repeat.Frequency, exercice)
	out := make([]Occurrence, 0, len(periods))
	for _, p := range periods {
		if t.Repeat.Excludes(p) {
			continue
		}
		period := p
		due, err := rules.Resolve(t.Due, rules.ResolveContext{
			Exercice: exercice,
			Profile:  profile,
			Period:   &period,
		})
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", p, err)
		}
		out = append(out, Occurrence{Period: p, DueDate: due})
	}
	return out, nil
}
