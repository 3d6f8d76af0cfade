package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Cadence is the repeat interval of a recurring pledge. The string values
// are public API vocabulary and must not change.
type Cadence string

const (
	Monthly    Cadence = "Monthly"
	Quarterly  Cadence = "Quarterly"
	HalfYearly Cadence = "Half-Yearly"
	Yearly     Cadence = "Yearly"
)

var cadenceMonths = map[Cadence]int{
	Monthly:    1,
	Quarterly:  3,
	HalfYearly: 6,
	Yearly:     12,
}

var ErrNegativeCycles = errors.New("cycles elapsed must not be negative")

func ParseCadence(s string) (Cadence, error) {
	c := Cadence(s)
	if _, ok := cadenceMonths[c]; !ok {
		return "", fmt.Errorf("invalid cadence %q: must be one of Monthly, Quarterly, Half-Yearly, Yearly", s)
	}
	return c, nil
}

// MonthsPerCycle returns how many calendar months one cycle spans.
func (c Cadence) MonthsPerCycle() (int, error) {
	months, ok := cadenceMonths[c]
	if !ok {
		return 0, fmt.Errorf("invalid cadence %q", string(c))
	}
	return months, nil
}

// NextDueDate advances anchor by cyclesElapsed whole cycles, preserving the
// anchor's day-of-month. When the anchor day does not exist in the target
// month the result clamps to that month's last day and never rolls forward.
// The clamp applies per call: later cycles are always computed from the
// original anchor day, so a January 31 anchor yields Feb 29 then Mar 31.
func NextDueDate(anchor Date, cadence Cadence, cyclesElapsed int) (Date, error) {
	if cyclesElapsed < 0 {
		return Date{}, ErrNegativeCycles
	}
	months, err := cadence.MonthsPerCycle()
	if err != nil {
		return Date{}, err
	}
	if cyclesElapsed == 0 {
		return anchor, nil
	}

	total := int(anchor.Month) - 1 + cyclesElapsed*months
	year := anchor.Year + total/12
	month := time.Month(total%12 + 1)

	day := anchor.Day
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return NewDate(year, month, day), nil
}

// NextDueAfter returns the first scheduled due date strictly after the given
// date, advancing cycle by cycle from the original anchor. Recording a
// payment uses this to roll a pledge's schedule forward without losing the
// anchor's day-of-month to an earlier clamped cycle.
func NextDueAfter(anchor Date, cadence Cadence, after Date) (Date, error) {
	if _, err := cadence.MonthsPerCycle(); err != nil {
		return Date{}, err
	}

	for cycles := 1; ; cycles++ {
		due, err := NextDueDate(anchor, cadence, cycles)
		if err != nil {
			return Date{}, err
		}
		if due.After(after) {
			return due, nil
		}
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
