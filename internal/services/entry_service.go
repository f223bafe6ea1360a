package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
	"contas/internal/ledger"
)

// EntryService handles user-initiated writes: single ledger entries and the
// scheduling of recurrence definitions. Validation runs before any
// persistence so a rejected entry performs no partial write.
type EntryService struct {
	store     ledger.Store
	publisher EventPublisher
}

func NewEntryService(store ledger.Store, publisher EventPublisher) *EntryService {
	return &EntryService{
		store:     store,
		publisher: publisher,
	}
}

// CreateEntry validates and persists a transaction, then publishes an
// entry-created event.
func (s *EntryService) CreateEntry(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishEntryCreated(ctx, id, t.UserID, SourceManual); err != nil {
			// Don't fail the request - the entry is saved
			slog.ErrorContext(ctx, "Failed to publish entry-created event",
				"transaction_id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Ledger entry created",
		"transaction_id", id,
		"user_id", t.UserID,
		"kind", string(t.Kind),
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return id, nil
}

// ScheduleRecurrence validates and persists a recurrence definition. New
// definitions start active with no materialized occurrences.
func (s *EntryService) ScheduleRecurrence(ctx context.Context, rd core.RecurrenceDefinition) (int64, error) {
	rd.MaterializedCount = 0
	rd.Active = true
	if err := rd.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateRecurrence(ctx, rd)
	if err != nil {
		return 0, fmt.Errorf("create recurrence: %w", err)
	}

	slog.InfoContext(ctx, "Recurrence scheduled",
		"recurrence_id", id,
		"user_id", rd.UserID,
		"frequency", string(rd.Frequency),
		"start_date", rd.StartDate.String(),
		"total_occurrences", rd.TotalOccurrences)

	return id, nil
}
