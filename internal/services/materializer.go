package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/ledger"
)

// EventPublisher publishes entry-created events for downstream consumers.
// A nil publisher disables eventing.
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, entryID, userID int64, source string) error
}

// Event sources for published entries.
const (
	SourceManual    = "manual"
	SourceRecurring = "recurring"
)

// Materializer expands active recurrence definitions into concrete ledger
// transactions, exactly once per scheduled occurrence.
type Materializer struct {
	registry  ledger.RecurrenceRegistry
	publisher EventPublisher
}

func NewMaterializer(registry ledger.RecurrenceRegistry, publisher EventPublisher) *Materializer {
	return &Materializer{
		registry:  registry,
		publisher: publisher,
	}
}

// MaterializeDue creates a transaction for every not-yet-materialized
// occurrence of def whose scheduled date is on or before now, in ascending
// order, and returns the transactions created. Each transaction carries its
// occurrence's scheduled date, not today's, so long-missed occurrences are
// backfilled on the date they were due.
//
// Every occurrence is committed together with the count advance in one store
// transaction, so a failure mid-run leaves the authoritative count at the
// last committed occurrence and a retry resumes exactly there, never
// inserting a duplicate.
//
// An inactive definition is a no-op, not an error.
func (m *Materializer) MaterializeDue(ctx context.Context, def core.RecurrenceDefinition, now time.Time) ([]core.Transaction, error) {
	if !def.Active {
		return nil, nil
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recurrence definition %d: %w", def.ID, err)
	}

	today := core.NewDate(now.Year(), int(now.Month()), now.Day())

	var created []core.Transaction
	for def.MaterializedCount < def.TotalOccurrences {
		due, err := core.OccurrenceDate(def.StartDate, def.Frequency, def.MaterializedCount)
		if err != nil {
			return created, fmt.Errorf("occurrence date for recurrence %d: %w", def.ID, err)
		}
		if due.After(today) {
			break
		}

		txn := core.Transaction{
			UserID:      def.UserID,
			Kind:        def.Kind,
			Description: def.Description,
			Amount:      def.Amount,
			Date:        due,
			Category:    def.Category,
		}

		id, err := m.registry.MaterializeOccurrence(ctx, def, txn)
		if err != nil {
			return created, fmt.Errorf("materialize occurrence %d of recurrence %d: %w",
				def.MaterializedCount, def.ID, err)
		}
		txn.ID = id
		created = append(created, txn)

		def.MaterializedCount++
		if def.MaterializedCount >= def.TotalOccurrences {
			def.Active = false
		}

		m.publish(ctx, id, def.UserID)

		slog.InfoContext(ctx, "Materialized recurring transaction",
			"recurrence_id", def.ID,
			"transaction_id", id,
			"date", due.String(),
			"amount_cents", txn.Amount.Cents,
			"remaining", def.Remaining())
	}

	if len(created) > 0 && !def.Active {
		slog.InfoContext(ctx, "Recurrence completed and deactivated",
			"recurrence_id", def.ID,
			"total_occurrences", def.TotalOccurrences)
	}

	return created, nil
}

// MaterializeDueByID loads a definition and materializes its due occurrences.
// This is the entry point callers use before reading a user's ledger.
func (m *Materializer) MaterializeDueByID(ctx context.Context, id int64, now time.Time) ([]core.Transaction, error) {
	def, err := m.registry.GetRecurrence(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recurrence %d: %w", id, err)
	}
	return m.MaterializeDue(ctx, def, now)
}

// MaterializeUser materializes all of one user's active definitions and
// returns the total number of transactions created. Definitions that fail are
// logged and skipped so one broken definition does not block the rest.
func (m *Materializer) MaterializeUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	defs, err := m.registry.ListActive(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list active recurrences for user %d: %w", userID, err)
	}

	createdCount := 0
	for _, def := range defs {
		created, err := m.MaterializeDue(ctx, def, now)
		createdCount += len(created)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurrence",
				"recurrence_id", def.ID,
				"user_id", userID,
				"error", err)
			continue
		}
	}
	return createdCount, nil
}

func (m *Materializer) publish(ctx context.Context, entryID, userID int64) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishEntryCreated(ctx, entryID, userID, SourceRecurring); err != nil {
		// The transaction is committed; eventing is best effort.
		slog.ErrorContext(ctx, "Failed to publish entry-created event",
			"transaction_id", entryID, "error", err)
	}
}
