package rules

import (
	"fmt"
	"time"
)

// Frequency is the recurrence cadence of a repeating task.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// ParseFrequency validates a rule-document frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Monthly, Quarterly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown repeat frequency %q", s)
}

// RepeatSpec describes a recurrence. ExcludedMonths holds month numbers
// (1-12); a quarter is identified by its last month (3, 6, 9, 12).
type RepeatSpec struct {
	Frequency      Frequency
	ExcludedMonths []int
}

// Excludes reports whether the period's month number is excluded.
func (r RepeatSpec) Excludes(p Period) bool {
	m := p.MonthNumber()
	for _, ex := range r.ExcludedMonths {
		if ex == m {
			return true
		}
	}
	return false
}

// Period is one recurrence slot of an exercice: a calendar month or quarter.
type Period struct {
	Frequency Frequency
	Year      int
	// Index is the month (1-12) for monthly periods or the quarter (1-4).
	Index int
}

// MonthNumber returns the month that identifies the period: the month itself,
// or the last month of the quarter.
func (p Period) MonthNumber() int {
	if p.Frequency == Quarterly {
		return p.Index * 3
	}
	return p.Index
}

// Month returns MonthNumber as a time.Month.
func (p Period) Month() time.Month {
	return time.Month(p.MonthNumber())
}

// Quarter returns the calendar quarter the period belongs to.
func (p Period) Quarter() int {
	if p.Frequency == Quarterly {
		return p.Index
	}
	return QuarterOf(time.Month(p.Index))
}

func (p Period) String() string {
	if p.Frequency == Quarterly {
		return fmt.Sprintf("%d-Q%d", p.Year, p.Index)
	}
	return fmt.Sprintf("%d-%02d", p.Year, p.Index)
}

// Periods enumerates the calendar periods of the exercice year for the given
// frequency, in chronological order. Unknown frequencies yield none.
func Periods(freq Frequency, exercice int) []Period {
	count := 0
	switch freq {
	case Monthly:
		count = 12
	case Quarterly:
		count = 4
	}
	periods := make([]Period, 0, count)
	for i := 1; i <= count; i++ {
		periods = append(periods, Period{Frequency: freq, Year: exercice, Index: i})
	}
	return periods
}
