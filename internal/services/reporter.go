package services

import (
	"context"
	"fmt"

	"contas/internal/core"
	"contas/internal/ledger"
)

// Reporter assembles the dashboard's numeric payload from the ledger store.
type Reporter struct {
	store ledger.LedgerStore
}

func NewReporter(store ledger.LedgerStore) *Reporter {
	return &Reporter{store: store}
}

// BuildReport returns lifetime income/expense totals and the trailing
// 12-month series for one user. Any store read failure aborts the whole
// report; a partial report is never returned.
func (r *Reporter) BuildReport(ctx context.Context, userID int64, asOf core.Date) (core.Report, error) {
	totalIncome, err := r.store.SumByKind(ctx, userID, core.Income)
	if err != nil {
		return core.Report{}, fmt.Errorf("sum income for user %d: %w", userID, err)
	}

	totalExpense, err := r.store.SumByKind(ctx, userID, core.Expense)
	if err != nil {
		return core.Report{}, fmt.Errorf("sum expenses for user %d: %w", userID, err)
	}

	incomeByMonth, err := r.store.SumByKindGroupedByMonth(ctx, userID, core.Income)
	if err != nil {
		return core.Report{}, fmt.Errorf("group income by month for user %d: %w", userID, err)
	}

	expenseByMonth, err := r.store.SumByKindGroupedByMonth(ctx, userID, core.Expense)
	if err != nil {
		return core.Report{}, fmt.Errorf("group expenses by month for user %d: %w", userID, err)
	}

	return core.AssembleReport(asOf, totalIncome, totalExpense, incomeByMonth, expenseByMonth), nil
}
