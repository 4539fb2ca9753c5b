package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
)

var (
	// ErrUnsupportedFormula marks a date formula whose kind is not known to
	// this engine, typically stale data that bypassed rule validation.
	ErrUnsupportedFormula = errors.New("unsupported date formula")
	// ErrInvalidFormula marks a known formula with unusable parameters.
	ErrInvalidFormula = errors.New("invalid date formula")
)

// Formula kinds as they appear in rule documents.
const (
	KindFixed              = "fixed"
	KindRelativeToClosing  = "relative_to_closing"
	KindEndOfMonthPlus     = "end_of_month_plus_offset"
	KindEndOfQuarterPlus   = "end_of_quarter_plus_offset"
	KindRelativeToAGO      = "relative_to_ago"
	KindClosingConditional = "closing_conditional"
)

// ResolveContext carries everything a formula may depend on.
type ResolveContext struct {
	Exercice int
	Profile  *domain.ClientFiscalProfile
	// Period is set while expanding a recurring task and anchors the
	// end-of-month and end-of-quarter formulas.
	Period *Period
}

// DateFormula is a closed set of due-date strategies. Each variant carries its
// own resolution, so adding a variant without one does not compile.
type DateFormula interface {
	Kind() string
	resolve(rc ResolveContext) (time.Time, error)
}

// Resolve computes the due date of formula f.
func Resolve(f DateFormula, rc ResolveContext) (time.Time, error) {
	if f == nil {
		return time.Time{}, fmt.Errorf("%w: missing formula", ErrInvalidFormula)
	}
	return f.resolve(rc)
}

// Fixed is a calendar date relative to the exercice year.
type Fixed struct {
	Day        int
	Month      int
	YearOffset int
}

func (Fixed) Kind() string { return KindFixed }

func (f Fixed) resolve(rc ResolveContext) (time.Time, error) {
	if f.Month < 1 || f.Month > 12 || f.Day < 1 || f.Day > 31 {
		return time.Time{}, fmt.Errorf("%w: fixed day %d month %d", ErrInvalidFormula, f.Day, f.Month)
	}
	return Date(rc.Exercice+f.YearOffset, time.Month(f.Month), f.Day), nil
}

// RelativeToClosing offsets the exercice closing date.
type RelativeToClosing struct {
	MonthOffset int
	DayOffset   int
}

func (RelativeToClosing) Kind() string { return KindRelativeToClosing }

func (f RelativeToClosing) resolve(rc ResolveContext) (time.Time, error) {
	closing, err := ClosingDate(rc.Exercice, rc.Profile)
	if err != nil {
		return time.Time{}, err
	}
	return AddDays(AddMonths(closing, f.MonthOffset), f.DayOffset), nil
}

// EndOfMonthPlusOffset is the end of the anchor month plus a day offset. The
// client's declared VAT day replaces DayOffset when set.
type EndOfMonthPlusOffset struct {
	DayOffset int
}

func (EndOfMonthPlusOffset) Kind() string { return KindEndOfMonthPlus }

func (f EndOfMonthPlusOffset) resolve(rc ResolveContext) (time.Time, error) {
	year, month, err := anchorMonth(rc)
	if err != nil {
		return time.Time{}, err
	}
	return AddDays(EndOfMonth(year, month), vatOffset(rc.Profile, f.DayOffset)), nil
}

// EndOfQuarterPlusOffset is the end of the anchor calendar quarter plus a day
// offset, with the same VAT-day override as EndOfMonthPlusOffset.
type EndOfQuarterPlusOffset struct {
	DayOffset int
}

func (EndOfQuarterPlusOffset) Kind() string { return KindEndOfQuarterPlus }

func (f EndOfQuarterPlusOffset) resolve(rc ResolveContext) (time.Time, error) {
	year, month, err := anchorMonth(rc)
	if err != nil {
		return time.Time{}, err
	}
	return AddDays(EndOfQuarter(year, QuarterOf(month)), vatOffset(rc.Profile, f.DayOffset)), nil
}

// RelativeToAGO offsets the shareholder-meeting deadline (closing + 6 months).
type RelativeToAGO struct {
	MonthOffset int
	DayOffset   int
}

func (RelativeToAGO) Kind() string { return KindRelativeToAGO }

func (f RelativeToAGO) resolve(rc ResolveContext) (time.Time, error) {
	ago, err := AGODate(rc.Exercice, rc.Profile)
	if err != nil {
		return time.Time{}, err
	}
	return AddDays(AddMonths(ago, f.MonthOffset), f.DayOffset), nil
}

// ClosingConditional picks one of two formulas depending on whether the client
// closes on 31/12.
type ClosingConditional struct {
	IfClosingIsYearEnd DateFormula
	Otherwise          DateFormula
}

func (ClosingConditional) Kind() string { return KindClosingConditional }

func (f ClosingConditional) resolve(rc ResolveContext) (time.Time, error) {
	yearEnd, err := ClosesAtYearEnd(rc.Profile)
	if err != nil {
		return time.Time{}, err
	}
	branch, label := f.Otherwise, "otherwise"
	if yearEnd {
		branch, label = f.IfClosingIsYearEnd, "if_closing_is_year_end"
	}
	if branch == nil {
		return time.Time{}, fmt.Errorf("%w: closing_conditional has no %s formula", ErrInvalidFormula, label)
	}
	return branch.resolve(rc)
}

// Unsupported stands in for a stored formula this engine cannot use: an
// unknown kind, or a known kind whose parameters failed to decode (Reason is
// then set). It only comes out of lenient decoding and never resolves.
type Unsupported struct {
	RawKind string
	Params  map[string]any
	Reason  error
}

func (u Unsupported) Kind() string { return u.RawKind }

func (u Unsupported) resolve(ResolveContext) (time.Time, error) {
	if u.Reason != nil {
		return time.Time{}, fmt.Errorf("%w: kind %q: %w", ErrInvalidFormula, u.RawKind, u.Reason)
	}
	return time.Time{}, fmt.Errorf("%w: kind %q", ErrUnsupportedFormula, u.RawKind)
}

// anchorMonth is the period's month during recurrence, otherwise the month of
// the exercice closing date.
func anchorMonth(rc ResolveContext) (int, time.Month, error) {
	if rc.Period != nil {
		return rc.Period.Year, rc.Period.Month(), nil
	}
	closing, err := ClosingDate(rc.Exercice, rc.Profile)
	if err != nil {
		return 0, 0, err
	}
	return closing.Year(), closing.Month(), nil
}

func vatOffset(profile *domain.ClientFiscalProfile, fallback int) int {
	if profile == nil {
		return fallback
	}
	return domain.IntFromPtrWithDefault(fallback, profile.VATDay)
}
