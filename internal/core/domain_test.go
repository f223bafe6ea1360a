package core

import (
	"errors"
	"testing"
	"time"
)

func TestKindValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("income expected ok, got %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expense expected ok, got %v", err)
	}
	if err := Kind("transfer").Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestFrequencyValidate(t *testing.T) {
	for _, f := range []Frequency{Daily, Weekly, Monthly, Yearly} {
		if err := f.Validate(); err != nil {
			t.Fatalf("%s expected ok, got %v", f, err)
		}
	}
	if err := Frequency("hourly").Validate(); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 5 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, s := range []string{"", "2024-13-01", "05/03/2024", "not a date"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      1,
		Kind:        Expense,
		Description: "Mercado",
		Amount:      Money{Cents: 12345},
		Date:        NewDate(2024, 3, 5),
		Category:    "Alimentacao",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"unknown kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrUnknownKind},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{Time: time.Time{}} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	noUser := good
	noUser.UserID = 0
	if err := noUser.Validate(); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestRecurrenceDefinitionValidate(t *testing.T) {
	good := RecurrenceDefinition{
		UserID:           1,
		Kind:             Income,
		Description:      "Salario",
		Amount:           Money{Cents: 500000},
		StartDate:        NewDate(2024, 1, 1),
		Frequency:        Monthly,
		TotalOccurrences: 12,
		Active:           true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Frequency = "fortnightly"
	if err := bad.Validate(); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}

	bad = good
	bad.TotalOccurrences = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidOccurrences) {
		t.Fatalf("expected ErrInvalidOccurrences, got %v", err)
	}

	bad = good
	bad.MaterializedCount = 13
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for count above total")
	}
}

func TestRecurrenceRemaining(t *testing.T) {
	rd := RecurrenceDefinition{TotalOccurrences: 5, MaterializedCount: 2}
	if got := rd.Remaining(); got != 3 {
		t.Fatalf("expected 3 remaining, got %d", got)
	}
}
