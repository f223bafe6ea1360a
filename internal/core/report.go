package core

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar year-month bucket.
type MonthKey struct {
	Year  int
	Month int // 1-12
}

// Label renders the key as the human month/year pair, e.g. "03/2024".
func (k MonthKey) Label() string {
	return fmt.Sprintf("%02d/%04d", k.Month, k.Year)
}

// MonthTotal is one entry of the trailing series.
type MonthTotal struct {
	Label   string
	Income  Money
	Expense Money
}

// Report is the numeric dashboard payload for one user: lifetime totals plus a
// trailing 12-month series, oldest month first.
type Report struct {
	TotalIncome  Money
	TotalExpense Money
	Series       [12]MonthTotal
}

// TrailingMonthKeys returns the 12 month keys ending at asOf's month, oldest
// first. Each key is derived by stepping back a fixed 30 days at a time from
// the first day of asOf's month, matching the report window users already
// have; near month-length irregularities a boundary month can be skipped or
// repeated. See DESIGN.md before changing this to calendar-month arithmetic.
func TrailingMonthKeys(asOf Date) [12]MonthKey {
	first := time.Date(asOf.Year(), time.Month(asOf.Month()), 1, 0, 0, 0, 0, time.UTC)
	var keys [12]MonthKey
	for i := 0; i < 12; i++ {
		t := first.AddDate(0, 0, -30*(11-i))
		keys[i] = MonthKey{Year: t.Year(), Month: int(t.Month())}
	}
	return keys
}

// AssembleReport builds a Report from pre-aggregated sums. Months missing from
// the grouped maps yield zero amounts, never an omitted series entry.
func AssembleReport(asOf Date, totalIncome, totalExpense Money, incomeByMonth, expenseByMonth map[MonthKey]Money) Report {
	r := Report{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
	}
	for i, key := range TrailingMonthKeys(asOf) {
		r.Series[i] = MonthTotal{
			Label:   key.Label(),
			Income:  incomeByMonth[key],
			Expense: expenseByMonth[key],
		}
	}
	return r
}
