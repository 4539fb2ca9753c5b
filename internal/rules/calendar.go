package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
)

// ErrInvalidClosingDate is returned when a profile's closing date is not a
// valid "DD/MM" day of the year.
var ErrInvalidClosingDate = errors.New("invalid closing date")

// Due dates are civil dates: midnight UTC, never shifted by a local zone.

// Date builds a civil date, clamping day to the last valid day of the month.
func Date(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths shifts t by n months, clamping to the end of the target month
// instead of overflowing into the next one (31 Jan + 1 month = 28/29 Feb).
func AddMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)
	return Date(year, month, t.Day())
}

// AddDays shifts a civil date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// EndOfMonth returns the last day of the given month.
func EndOfMonth(year int, month time.Month) time.Time {
	return Date(year, month, DaysIn(year, month))
}

// QuarterOf returns the calendar quarter (1-4) containing month.
func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// EndOfQuarter returns the last day of the given calendar quarter.
func EndOfQuarter(year, quarter int) time.Time {
	return EndOfMonth(year, time.Month(quarter*3))
}

// ParseClosingDate parses a "DD/MM" closing date. An empty value yields the
// default 31/12.
func ParseClosingDate(s string) (day int, month time.Month, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = domain.DefaultClosingDate
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q (expected DD/MM)", ErrInvalidClosingDate, s)
	}
	d, errD := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errD != nil || errM != nil || m < 1 || m > 12 || d < 1 {
		return 0, 0, fmt.Errorf("%w: %q (expected DD/MM)", ErrInvalidClosingDate, s)
	}
	// 2000 is a leap year, so 29/02 is accepted and clamped per exercice.
	if d > DaysIn(2000, time.Month(m)) {
		return 0, 0, fmt.Errorf("%w: %q has no day %d", ErrInvalidClosingDate, s, d)
	}
	return d, time.Month(m), nil
}

// ClosingDate returns the accounting year-end of the given exercice. Exercice
// N is the fiscal year that closes during calendar year N, so a 30/06 closing
// for exercice 2025 is 2025-06-30 and the exercice began 2024-07-01.
func ClosingDate(exercice int, profile *domain.ClientFiscalProfile) (time.Time, error) {
	raw := ""
	if profile != nil {
		raw = profile.ClosingDate
	}
	day, month, err := ParseClosingDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return Date(exercice, month, day), nil
}

// ClosesAtYearEnd reports whether the profile closes on 31/12.
func ClosesAtYearEnd(profile *domain.ClientFiscalProfile) (bool, error) {
	raw := ""
	if profile != nil {
		raw = profile.ClosingDate
	}
	day, month, err := ParseClosingDate(raw)
	if err != nil {
		return false, err
	}
	return day == 31 && month == time.December, nil
}

// AGODate returns the annual shareholder-meeting deadline: closing + 6 months.
func AGODate(exercice int, profile *domain.ClientFiscalProfile) (time.Time, error) {
	closing, err := ClosingDate(exercice, profile)
	if err != nil {
		return time.Time{}, err
	}
	return AddMonths(closing, 6), nil
}

// ExerciceBounds returns the first and last day of the exercice.
func ExerciceBounds(exercice int, profile *domain.ClientFiscalProfile) (start, end time.Time, err error) {
	end, err = ClosingDate(exercice, profile)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	prev, err := ClosingDate(exercice-1, profile)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return AddDays(prev, 1), end, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
