package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"contas/internal/core"
	"contas/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.Store on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	const query = `
		INSERT INTO transactions (user_id, kind, description, amount_cents, date, category)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		t.UserID, string(t.Kind), t.Description, t.Amount.Cents, t.Date.String(), t.Category)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) SumByKind(ctx context.Context, userID int64, k core.Kind) (core.Money, error) {
	const query = `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND kind = ?`

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, userID, string(k)).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum by kind: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) SumByKindGroupedByMonth(ctx context.Context, userID int64, k core.Kind) (map[core.MonthKey]core.Money, error) {
	const query = `
		SELECT strftime('%Y-%m', date) AS ym, SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND kind = ?
		GROUP BY ym`

	rows, err := r.db.QueryContext(ctx, query, userID, string(k))
	if err != nil {
		return nil, fmt.Errorf("sum grouped by month: %w", err)
	}
	defer rows.Close()

	out := make(map[core.MonthKey]core.Money)
	for rows.Next() {
		var ym string
		var cents int64
		if err := rows.Scan(&ym, &cents); err != nil {
			return nil, fmt.Errorf("scan month sum: %w", err)
		}
		key, err := parseMonthKey(ym)
		if err != nil {
			return nil, err
		}
		out[key] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month sums: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	const query = `
		SELECT id, user_id, kind, description, amount_cents, date, category
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateRecurrence(ctx context.Context, rd core.RecurrenceDefinition) (int64, error) {
	const query = `
		INSERT INTO recurrences (
			user_id, kind, description, amount_cents, category,
			start_date, frequency, total_occurrences, materialized_count, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rd.UserID, string(rd.Kind), rd.Description, rd.Amount.Cents, rd.Category,
		rd.StartDate.String(), string(rd.Frequency), rd.TotalOccurrences,
		rd.MaterializedCount, boolToInt(rd.Active))
	if err != nil {
		return 0, fmt.Errorf("insert recurrence: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recurrence insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetRecurrence(ctx context.Context, id int64) (core.RecurrenceDefinition, error) {
	const query = `
		SELECT id, user_id, kind, description, amount_cents, category,
		       start_date, frequency, total_occurrences, materialized_count, active
		FROM recurrences
		WHERE id = ?`

	rd, err := scanRecurrence(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurrenceDefinition{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.RecurrenceDefinition{}, fmt.Errorf("get recurrence %d: %w", id, err)
	}
	return rd, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context, userID int64) ([]core.RecurrenceDefinition, error) {
	const query = `
		SELECT id, user_id, kind, description, amount_cents, category,
		       start_date, frequency, total_occurrences, materialized_count, active
		FROM recurrences
		WHERE user_id = ? AND active = 1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list active recurrences: %w", err)
	}
	defer rows.Close()

	var out []core.RecurrenceDefinition
	for rows.Next() {
		rd, err := scanRecurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurrence: %w", err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurrences: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListUsersWithActive(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT user_id FROM recurrences WHERE active = 1 ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users with active recurrences: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return out, nil
}

// MaterializeOccurrence inserts the transaction and advances the recurrence
// count inside one database transaction. The count update is guarded on the
// expected value so two concurrent materializers for the same definition
// cannot both insert the same occurrence: the loser gets ErrStaleRecurrence
// and its insert is rolled back.
func (r *SQLiteRepository) MaterializeOccurrence(ctx context.Context, def core.RecurrenceDefinition, t core.Transaction) (int64, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin materialize transaction: %w", err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const advance = `
		UPDATE recurrences
		SET materialized_count = materialized_count + 1,
		    active = CASE WHEN materialized_count + 1 >= total_occurrences THEN 0 ELSE active END
		WHERE id = ? AND materialized_count = ?`

	res, err := dbTx.ExecContext(ctx, advance, def.ID, def.MaterializedCount)
	if err != nil {
		return 0, fmt.Errorf("advance recurrence %d: %w", def.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("advance recurrence %d: %w", def.ID, err)
	}
	if affected == 0 {
		err = ledger.ErrStaleRecurrence
		return 0, err
	}

	const insert = `
		INSERT INTO transactions (user_id, kind, description, amount_cents, date, category)
		VALUES (?, ?, ?, ?, ?, ?)`

	ins, err := dbTx.ExecContext(ctx, insert,
		t.UserID, string(t.Kind), t.Description, t.Amount.Cents, t.Date.String(), t.Category)
	if err != nil {
		return 0, fmt.Errorf("insert materialized transaction: %w", err)
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("materialized transaction id: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit materialize transaction: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t     core.Transaction
		kind  string
		cents int64
		date  string
	)
	if err := row.Scan(&t.ID, &t.UserID, &kind, &t.Description, &cents, &date, &t.Category); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has malformed date %q", t.ID, date)
	}
	t.Kind = core.Kind(kind)
	t.Amount = core.Money{Cents: cents}
	t.Date = d
	return t, nil
}

func scanRecurrence(row rowScanner) (core.RecurrenceDefinition, error) {
	var (
		rd     core.RecurrenceDefinition
		kind   string
		cents  int64
		start  string
		freq   string
		active int
	)
	err := row.Scan(&rd.ID, &rd.UserID, &kind, &rd.Description, &cents, &rd.Category,
		&start, &freq, &rd.TotalOccurrences, &rd.MaterializedCount, &active)
	if err != nil {
		return core.RecurrenceDefinition{}, err
	}
	d, err := core.ParseDate(start)
	if err != nil {
		return core.RecurrenceDefinition{}, fmt.Errorf("recurrence %d has malformed start date %q", rd.ID, start)
	}
	rd.Kind = core.Kind(kind)
	rd.Amount = core.Money{Cents: cents}
	rd.StartDate = d
	rd.Frequency = core.Frequency(freq)
	rd.Active = active != 0
	return rd, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func parseMonthKey(ym string) (core.MonthKey, error) {
	if len(ym) != 7 || ym[4] != '-' {
		return core.MonthKey{}, fmt.Errorf("malformed year-month %q", ym)
	}
	year, err := strconv.Atoi(ym[:4])
	if err != nil {
		return core.MonthKey{}, fmt.Errorf("malformed year-month %q", ym)
	}
	month, err := strconv.Atoi(ym[5:])
	if err != nil || month < 1 || month > 12 {
		return core.MonthKey{}, fmt.Errorf("malformed year-month %q", ym)
	}
	return core.MonthKey{Year: year, Month: month}, nil
}
