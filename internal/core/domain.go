package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	Kind string

	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64 // Database ID, zero before insert
		UserID      int64
		Kind        Kind
		Description string
		Amount      Money
		Date        Date
		Category    string
	}

	RecurrenceDefinition struct {
		ID                int64
		UserID            int64
		Kind              Kind
		Description       string
		Amount            Money
		Category          string // Optional
		StartDate         Date
		Frequency         Frequency
		TotalOccurrences  int
		MaterializedCount int
		Active            bool
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrUnknownKind        = errors.New("unknown transaction kind")
	ErrUnknownFrequency   = errors.New("unknown frequency")
	ErrInvalidOccurrences = errors.New("total occurrences must be at least 1")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrUnknownKind
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrUnknownFrequency
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// After reports whether d falls after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// String formats the date as YYYY-MM-DD, the storage representation.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return errors.New("missing user id")
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (rd RecurrenceDefinition) Validate() error {
	if rd.UserID <= 0 {
		return errors.New("missing user id")
	}
	if err := rd.Kind.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(rd.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(rd.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := rd.Amount.Validate(); err != nil {
		return err
	}
	if err := rd.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := rd.Frequency.Validate(); err != nil {
		return err
	}
	if rd.TotalOccurrences < 1 {
		return ErrInvalidOccurrences
	}
	if rd.MaterializedCount < 0 || rd.MaterializedCount > rd.TotalOccurrences {
		return errors.New("materialized count out of range")
	}
	return nil
}

// Remaining returns the number of occurrences not yet materialized.
func (rd RecurrenceDefinition) Remaining() int {
	return rd.TotalOccurrences - rd.MaterializedCount
}
