// Command contas is the thin shell around the ledger core: it records
// entries, schedules recurrences, and prints the monthly report as JSON.
//
// Usage:
//
//	contas report   -user 1 [-as-of 2024-03-31]
//	contas add      -user 1 -kind expense -desc "Mercado" -amount 123,45 [-date 2024-03-05] [-category Alimentacao]
//	contas schedule -user 1 -kind income -desc "Salario" -amount 5000 -start 2024-01-01 -frequency monthly -repeat 12
//	contas history  -user 1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Keep stdout for command output; logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fatal(err)
	}
	defer repo.Close()

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, continuing without eventing", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	ctx := context.Background()
	entries := services.NewEntryService(repo, publisher)
	materializer := services.NewMaterializer(repo, publisher)
	reporter := services.NewReporter(repo)

	switch os.Args[1] {
	case "report":
		err = runReport(ctx, materializer, reporter, os.Args[2:])
	case "add":
		err = runAdd(ctx, entries, os.Args[2:])
	case "schedule":
		err = runSchedule(ctx, entries, os.Args[2:])
	case "history":
		err = runHistory(ctx, repo, materializer, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func runReport(ctx context.Context, m *services.Materializer, r *services.Reporter, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	asOfStr := fs.String("as-of", "", "report date (YYYY-MM-DD, default today)")
	fs.Parse(args)

	if *userID <= 0 {
		return fmt.Errorf("report: -user is required")
	}

	now := time.Now()
	asOf := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if *asOfStr != "" {
		var err error
		if asOf, err = core.ParseDate(*asOfStr); err != nil {
			return fmt.Errorf("report: invalid -as-of date %q", *asOfStr)
		}
	}

	// Bring recurring entries up to date before reading the ledger
	if _, err := m.MaterializeUser(ctx, *userID, now); err != nil {
		return err
	}

	report, err := r.BuildReport(ctx, *userID, asOf)
	if err != nil {
		return err
	}
	return printJSON(reportOutput(report))
}

func runAdd(ctx context.Context, s *services.EntryService, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	kind := fs.String("kind", "", "income or expense")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 123.45 or 123,45")
	dateStr := fs.String("date", "", "entry date (YYYY-MM-DD, default today)")
	category := fs.String("category", "", "category")
	fs.Parse(args)

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return fmt.Errorf("add: invalid amount %q: %w", *amount, err)
	}

	now := time.Now()
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if *dateStr != "" {
		if date, err = core.ParseDate(*dateStr); err != nil {
			return fmt.Errorf("add: invalid date %q", *dateStr)
		}
	}

	id, err := s.CreateEntry(ctx, core.Transaction{
		UserID:      *userID,
		Kind:        core.Kind(*kind),
		Description: *desc,
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Category:    *category,
	})
	if err != nil {
		return err
	}
	fmt.Printf("entry %d recorded\n", id)
	return nil
}

func runSchedule(ctx context.Context, s *services.EntryService, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	kind := fs.String("kind", "", "income or expense")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount per occurrence")
	startStr := fs.String("start", "", "start date (YYYY-MM-DD)")
	frequency := fs.String("frequency", "", "daily, weekly, monthly or yearly")
	repeat := fs.Int("repeat", 0, "total occurrences")
	category := fs.String("category", "", "category")
	fs.Parse(args)

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return fmt.Errorf("schedule: invalid amount %q: %w", *amount, err)
	}
	start, err := core.ParseDate(*startStr)
	if err != nil {
		return fmt.Errorf("schedule: invalid start date %q", *startStr)
	}

	id, err := s.ScheduleRecurrence(ctx, core.RecurrenceDefinition{
		UserID:           *userID,
		Kind:             core.Kind(*kind),
		Description:      *desc,
		Amount:           core.Money{Cents: cents},
		Category:         *category,
		StartDate:        start,
		Frequency:        core.Frequency(*frequency),
		TotalOccurrences: *repeat,
	})
	if err != nil {
		return err
	}
	fmt.Printf("recurrence %d scheduled\n", id)
	return nil
}

func runHistory(ctx context.Context, repo *storage.SQLiteRepository, m *services.Materializer, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	fs.Parse(args)

	if *userID <= 0 {
		return fmt.Errorf("history: -user is required")
	}

	if _, err := m.MaterializeUser(ctx, *userID, time.Now()); err != nil {
		return err
	}

	txns, err := repo.ListTransactions(ctx, *userID)
	if err != nil {
		return err
	}
	for _, t := range txns {
		fmt.Printf("%s  %-7s  %10s  %-20s  %s\n",
			t.Date.String(), t.Kind, t.Amount.String(), t.Category, t.Description)
	}
	return nil
}

type monthOut struct {
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type reportOut struct {
	TotalIncome  float64    `json:"total_income"`
	TotalExpense float64    `json:"total_expense"`
	Series       []monthOut `json:"series"`
}

func reportOutput(r core.Report) reportOut {
	out := reportOut{
		TotalIncome:  r.TotalIncome.Reais(),
		TotalExpense: r.TotalExpense.Reais(),
		Series:       make([]monthOut, 0, len(r.Series)),
	}
	for _, m := range r.Series {
		out.Series = append(out.Series, monthOut{
			Label:   m.Label,
			Income:  m.Income.Reais(),
			Expense: m.Expense.Reais(),
		})
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: contas <report|add|schedule|history> [flags]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "contas:", err)
	os.Exit(1)
}
