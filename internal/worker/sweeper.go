package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/ledger"
	"contas/internal/services"
)

// RecurrenceSweeper materializes due recurring transactions for every user
// with at least one active definition. Users are swept concurrently; within a
// definition the store's guarded count update keeps occurrence creation
// serialized.
type RecurrenceSweeper struct {
	registry     ledger.RecurrenceRegistry
	materializer *services.Materializer
	concurrency  int
}

func NewRecurrenceSweeper(registry ledger.RecurrenceRegistry, materializer *services.Materializer, concurrency int) *RecurrenceSweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RecurrenceSweeper{
		registry:     registry,
		materializer: materializer,
		concurrency:  concurrency,
	}
}

// SweepAll runs one sweep tick and returns the number of transactions
// created. A failing user is logged and skipped; sweeps for other users are
// independent and proceed.
func (s *RecurrenceSweeper) SweepAll(ctx context.Context, now time.Time) (int, error) {
	users, err := s.registry.ListUsersWithActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with active recurrences: %w", err)
	}

	slog.InfoContext(ctx, "Sweeping recurring transactions",
		"users", len(users),
		"sweep_date", now.Format("2006-01-02"))

	var total atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			count, err := s.materializer.MaterializeUser(gctx, userID, now)
			total.Add(int64(count))
			if err != nil {
				slog.ErrorContext(gctx, "Sweep failed for user",
					"user_id", userID,
					"error", err)
			}
			return nil
		})
	}
	// Per-user errors are logged above, never propagated.
	_ = g.Wait()

	created := int(total.Load())
	slog.InfoContext(ctx, "Recurrence sweep complete",
		"users", len(users),
		"transactions_created", created)

	return created, nil
}
