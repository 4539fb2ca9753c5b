package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func resolveOK(t *testing.T, f DateFormula, rc ResolveContext) time.Time {
	t.Helper()
	got, err := Resolve(f, rc)
	require.NoError(t, err)
	return got
}

func TestFixed(t *testing.T) {
	rc := ResolveContext{Exercice: 2024, Profile: &domain.ClientFiscalProfile{}}
	assert.Equal(t, day(2025, time.May, 15), resolveOK(t, Fixed{Day: 15, Month: 5, YearOffset: 1}, rc))
}

func TestFixed_ClampsToMonthEnd(t *testing.T) {
	rc := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{}}
	assert.Equal(t, day(2025, time.February, 28), resolveOK(t, Fixed{Day: 29, Month: 2}, rc))
	assert.Equal(t, day(2025, time.April, 30), resolveOK(t, Fixed{Day: 31, Month: 4}, rc))

	rc.Exercice = 2024
	assert.Equal(t, day(2024, time.February, 29), resolveOK(t, Fixed{Day: 31, Month: 2}, rc))
}

func TestFixed_InvalidMonth(t *testing.T) {
	_, err := Resolve(Fixed{Day: 1, Month: 13}, ResolveContext{Exercice: 2025})
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestRelativeToClosing(t *testing.T) {
	p := &domain.ClientFiscalProfile{ClosingDate: "30/06"}
	rc := ResolveContext{Exercice: 2025, Profile: p}
	assert.Equal(t, day(2025, time.September, 30), resolveOK(t, RelativeToClosing{MonthOffset: 3}, rc))
	assert.Equal(t, day(2025, time.October, 15), resolveOK(t, RelativeToClosing{MonthOffset: 3, DayOffset: 15}, rc))
}

func TestRelativeToClosing_DefaultsToYearEnd(t *testing.T) {
	rc := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{}}
	// 31/12/2025 + 5 months = 31/05/2026, + 3 days.
	assert.Equal(t, day(2026, time.June, 3), resolveOK(t, RelativeToClosing{MonthOffset: 5, DayOffset: 3}, rc))
}

func TestEndOfMonthPlusOffset_Period(t *testing.T) {
	p := &domain.ClientFiscalProfile{}
	period := Period{Frequency: Monthly, Year: 2025, Index: 1}
	rc := ResolveContext{Exercice: 2025, Profile: p, Period: &period}
	assert.Equal(t, day(2025, time.February, 24), resolveOK(t, EndOfMonthPlusOffset{DayOffset: 24}, rc))
}

func TestEndOfMonthPlusOffset_VATDayOverrides(t *testing.T) {
	p := &domain.ClientFiscalProfile{VATDay: intPtr(10)}
	period := Period{Frequency: Monthly, Year: 2025, Index: 1}
	rc := ResolveContext{Exercice: 2025, Profile: p, Period: &period}
	assert.Equal(t, day(2025, time.February, 10), resolveOK(t, EndOfMonthPlusOffset{DayOffset: 24}, rc))
}

func TestEndOfMonthPlusOffset_NoPeriodAnchorsOnClosingMonth(t *testing.T) {
	p := &domain.ClientFiscalProfile{ClosingDate: "31/03"}
	rc := ResolveContext{Exercice: 2025, Profile: p}
	assert.Equal(t, day(2025, time.April, 15), resolveOK(t, EndOfMonthPlusOffset{DayOffset: 15}, rc))
}

func TestEndOfQuarterPlusOffset(t *testing.T) {
	p := &domain.ClientFiscalProfile{}
	q2 := Period{Frequency: Quarterly, Year: 2025, Index: 2}
	rc := ResolveContext{Exercice: 2025, Profile: p, Period: &q2}
	assert.Equal(t, day(2025, time.July, 24), resolveOK(t, EndOfQuarterPlusOffset{DayOffset: 24}, rc))

	// A monthly period anchors on its containing quarter.
	may := Period{Frequency: Monthly, Year: 2025, Index: 5}
	rc.Period = &may
	assert.Equal(t, day(2025, time.July, 24), resolveOK(t, EndOfQuarterPlusOffset{DayOffset: 24}, rc))

	rc.Profile = &domain.ClientFiscalProfile{VATDay: intPtr(19)}
	assert.Equal(t, day(2025, time.July, 19), resolveOK(t, EndOfQuarterPlusOffset{DayOffset: 24}, rc))
}

func TestRelativeToAGO(t *testing.T) {
	rc := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{}}
	// AGO = 31/12/2025 + 6 months = 30/06/2026; + 1 month = 30/07/2026.
	assert.Equal(t, day(2026, time.July, 30), resolveOK(t, RelativeToAGO{MonthOffset: 1}, rc))
	assert.Equal(t, day(2026, time.June, 30), resolveOK(t, RelativeToAGO{}, rc))
}

func TestClosingConditional(t *testing.T) {
	f := ClosingConditional{
		IfClosingIsYearEnd: Fixed{Day: 3, Month: 5, YearOffset: 1},
		Otherwise:          RelativeToClosing{MonthOffset: 3, DayOffset: 15},
	}

	yearEnd := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{}}
	assert.Equal(t, day(2026, time.May, 3), resolveOK(t, f, yearEnd))

	offCycle := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{ClosingDate: "30/09"}}
	// 30/09/2025 + 3 months = 30/12/2025, + 15 days.
	assert.Equal(t, day(2026, time.January, 14), resolveOK(t, f, offCycle))
}

func TestClosingConditional_MissingBranch(t *testing.T) {
	f := ClosingConditional{IfClosingIsYearEnd: Fixed{Day: 1, Month: 5}}
	_, err := Resolve(f, ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{ClosingDate: "30/06"}})
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestUnsupportedFormula(t *testing.T) {
	_, err := Resolve(Unsupported{RawKind: "lunar_cycle"}, ResolveContext{Exercice: 2025})
	assert.ErrorIs(t, err, ErrUnsupportedFormula)
	assert.Contains(t, err.Error(), "lunar_cycle")
}

func TestResolve_InvalidClosingDate(t *testing.T) {
	rc := ResolveContext{Exercice: 2025, Profile: &domain.ClientFiscalProfile{ClosingDate: "31/02"}}
	_, err := Resolve(RelativeToClosing{MonthOffset: 3}, rc)
	assert.ErrorIs(t, err, ErrInvalidClosingDate)

	_, err = Resolve(nil, rc)
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestUnsupportedFormula_WithReason(t *testing.T) {
	_, err := Resolve(Unsupported{RawKind: KindFixed, Reason: errors.New("day must be an integer")}, ResolveContext{Exercice: 2025})
	assert.ErrorIs(t, err, ErrInvalidFormula)
	assert.NotErrorIs(t, err, ErrUnsupportedFormula)
	assert.Contains(t, err.Error(), "day must be an integer")
}
