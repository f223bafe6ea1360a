package ledger

import (
	"context"
	"errors"

	"contas/internal/core"
)

var (
	// ErrNotFound is returned when a transaction or recurrence does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleRecurrence is returned by MaterializeOccurrence when the
	// definition's materialized count no longer matches the expected value,
	// meaning another writer got there first. Nothing is written in that case.
	ErrStaleRecurrence = errors.New("recurrence materialized count is stale")
)

// Ports for the persistence adapters.
type (
	// Store is the full persistence surface: the ledger of dated
	// transactions plus the registry of recurring definitions.
	Store interface {
		LedgerStore
		RecurrenceRegistry
	}

	LedgerStore interface {
		// InsertTransaction persists a transaction and returns its ID.
		InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)

		// SumByKind returns the lifetime sum for one user and kind.
		SumByKind(ctx context.Context, userID int64, k core.Kind) (core.Money, error)

		// SumByKindGroupedByMonth returns per-month sums for one user and
		// kind, keyed by the transaction date's year-month.
		SumByKindGroupedByMonth(ctx context.Context, userID int64, k core.Kind) (map[core.MonthKey]core.Money, error)

		// ListTransactions returns all of a user's transactions, newest first.
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	RecurrenceRegistry interface {
		// CreateRecurrence persists a definition and returns its ID.
		CreateRecurrence(ctx context.Context, rd core.RecurrenceDefinition) (int64, error)

		// GetRecurrence returns one definition by ID.
		GetRecurrence(ctx context.Context, id int64) (core.RecurrenceDefinition, error)

		// ListActive returns a user's active definitions.
		ListActive(ctx context.Context, userID int64) ([]core.RecurrenceDefinition, error)

		// ListUsersWithActive returns the IDs of users that have at least one
		// active definition, for background sweeps.
		ListUsersWithActive(ctx context.Context) ([]int64, error)

		// MaterializeOccurrence inserts the transaction and advances the
		// definition's materialized count (deactivating it when the count
		// reaches the total) in a single store transaction. The update is
		// guarded on def.MaterializedCount: if the stored count differs,
		// ErrStaleRecurrence is returned and nothing is written.
		MaterializeOccurrence(ctx context.Context, def core.RecurrenceDefinition, t core.Transaction) (int64, error)
	}
)
