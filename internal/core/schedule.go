package core

import "time"

// OccurrenceDate returns the scheduled date of occurrence n of a recurrence,
// where n = 0 is the start date itself.
//
// Monthly and yearly schedules keep the start day-of-month; when the target
// month is shorter the day is clamped to the last valid day (Jan 31 + 1 month
// is Feb 28, or Feb 29 in a leap year). Clamping is explicit because
// time.AddDate normalizes overflow into the next month instead.
func OccurrenceDate(start Date, freq Frequency, n int) (Date, error) {
	if err := freq.Validate(); err != nil {
		return Date{}, err
	}
	switch freq {
	case Daily:
		return Date{Time: start.AddDate(0, 0, n)}, nil
	case Weekly:
		return Date{Time: start.AddDate(0, 0, 7*n)}, nil
	case Monthly:
		months := (start.Month() - 1) + n
		year := start.Year() + months/12
		month := months%12 + 1
		return NewDate(year, month, clampDay(start.Day(), year, month)), nil
	case Yearly:
		year := start.Year() + n
		return NewDate(year, start.Month(), clampDay(start.Day(), year, start.Month())), nil
	}
	return Date{}, ErrUnknownFrequency
}

// clampDay limits day to the last valid day of the given month.
func clampDay(day, year, month int) int {
	if last := lastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

func lastDayOfMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
