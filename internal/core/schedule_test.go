package core

import (
	"errors"
	"testing"
)

func TestOccurrenceDate(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		freq  Frequency
		n     int
		want  Date
	}{
		{"daily n=0 is start", NewDate(2024, 1, 15), Daily, 0, NewDate(2024, 1, 15)},
		{"daily n=3", NewDate(2024, 1, 15), Daily, 3, NewDate(2024, 1, 18)},
		{"daily across month boundary", NewDate(2024, 1, 31), Daily, 1, NewDate(2024, 2, 1)},
		{"weekly n=2", NewDate(2024, 1, 1), Weekly, 2, NewDate(2024, 1, 15)},
		{"weekly across year boundary", NewDate(2023, 12, 25), Weekly, 2, NewDate(2024, 1, 8)},
		{"monthly simple", NewDate(2024, 3, 10), Monthly, 1, NewDate(2024, 4, 10)},
		{"monthly jan 31 clamps to feb 29 in leap year", NewDate(2024, 1, 31), Monthly, 1, NewDate(2024, 2, 29)},
		{"monthly jan 31 clamps to feb 28 otherwise", NewDate(2023, 1, 31), Monthly, 1, NewDate(2023, 2, 28)},
		{"monthly day restored after short month", NewDate(2024, 1, 31), Monthly, 2, NewDate(2024, 3, 31)},
		{"monthly 31st into 30-day month", NewDate(2024, 1, 31), Monthly, 3, NewDate(2024, 4, 30)},
		{"monthly across year boundary", NewDate(2024, 11, 15), Monthly, 3, NewDate(2025, 2, 15)},
		{"yearly simple", NewDate(2022, 6, 10), Yearly, 2, NewDate(2024, 6, 10)},
		{"yearly feb 29 clamps on non-leap year", NewDate(2024, 2, 29), Yearly, 1, NewDate(2025, 2, 28)},
		{"yearly feb 29 kept on leap year", NewDate(2024, 2, 29), Yearly, 4, NewDate(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OccurrenceDate(tt.start, tt.freq, tt.n)
			if err != nil {
				t.Fatalf("OccurrenceDate() error = %v", err)
			}
			if !got.Equal(tt.want.Time) {
				t.Errorf("OccurrenceDate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOccurrenceDateUnknownFrequency(t *testing.T) {
	_, err := OccurrenceDate(NewDate(2024, 1, 1), "hourly", 1)
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 1, 31},
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := lastDayOfMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("lastDayOfMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}
