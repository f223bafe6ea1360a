package worker

import (
	"context"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/ledger/memory"
	"contas/internal/services"
)

func TestSweepAll(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	create := func(userID int64, start core.Date, freq core.Frequency, total int) {
		t.Helper()
		_, err := store.CreateRecurrence(ctx, core.RecurrenceDefinition{
			UserID:           userID,
			Kind:             core.Expense,
			Description:      "Assinatura",
			Amount:           core.Money{Cents: 1990},
			StartDate:        start,
			Frequency:        freq,
			TotalOccurrences: total,
			Active:           true,
		})
		if err != nil {
			t.Fatalf("create recurrence: %v", err)
		}
	}
	// User 1: 3 due weekly occurrences. User 2: 1 due monthly occurrence.
	// User 3: nothing due yet.
	create(1, core.NewDate(2024, 1, 1), core.Weekly, 3)
	create(2, core.NewDate(2024, 1, 10), core.Monthly, 12)
	create(3, core.NewDate(2024, 6, 1), core.Daily, 5)

	sweeper := NewRecurrenceSweeper(store, services.NewMaterializer(store, nil), 2)

	now := time.Date(2024, 1, 22, 3, 0, 0, 0, time.UTC)
	created, err := sweeper.SweepAll(ctx, now)
	if err != nil {
		t.Fatalf("SweepAll() error = %v", err)
	}
	if created != 4 {
		t.Fatalf("expected 4 transactions created, got %d", created)
	}

	// A second sweep at the same instant finds nothing due
	created, err = sweeper.SweepAll(ctx, now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if created != 0 {
		t.Fatalf("second sweep created %d transactions, want 0", created)
	}
}

func TestSweepAllNoUsers(t *testing.T) {
	store := memory.New()
	sweeper := NewRecurrenceSweeper(store, services.NewMaterializer(store, nil), 4)

	created, err := sweeper.SweepAll(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SweepAll() error = %v", err)
	}
	if created != 0 {
		t.Fatalf("expected 0 transactions, got %d", created)
	}
}
