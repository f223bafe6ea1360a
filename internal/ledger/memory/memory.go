package memory

import (
	"context"
	"sync"

	"contas/internal/core"
	"contas/internal/ledger"
)

// Store is an in-memory ledger.Store used as the dev backend and in tests.
type Store struct {
	mu      sync.Mutex
	txns    []core.Transaction
	recs    map[int64]*core.RecurrenceDefinition
	nextTxn int64
	nextRec int64
}

func New() *Store {
	return &Store{recs: make(map[int64]*core.RecurrenceDefinition)}
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(t), nil
}

func (s *Store) insertLocked(t core.Transaction) int64 {
	s.nextTxn++
	t.ID = s.nextTxn
	s.txns = append(s.txns, t)
	return t.ID
}

func (s *Store) SumByKind(_ context.Context, userID int64, k core.Kind) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, t := range s.txns {
		if t.UserID == userID && t.Kind == k {
			total += t.Amount.Cents
		}
	}
	return core.Money{Cents: total}, nil
}

func (s *Store) SumByKindGroupedByMonth(_ context.Context, userID int64, k core.Kind) (map[core.MonthKey]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[core.MonthKey]core.Money)
	for _, t := range s.txns {
		if t.UserID != userID || t.Kind != k {
			continue
		}
		key := core.MonthKey{Year: t.Date.Year(), Month: t.Date.Month()}
		out[key] = core.Money{Cents: out[key].Cents + t.Amount.Cents}
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	// Newest first, stable for equal dates
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) CreateRecurrence(_ context.Context, rd core.RecurrenceDefinition) (int64, error) {
	if err := rd.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRec++
	rd.ID = s.nextRec
	s.recs[rd.ID] = &rd
	return rd.ID, nil
}

func (s *Store) GetRecurrence(_ context.Context, id int64) (core.RecurrenceDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return core.RecurrenceDefinition{}, ledger.ErrNotFound
	}
	return *rec, nil
}

func (s *Store) ListActive(_ context.Context, userID int64) ([]core.RecurrenceDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurrenceDefinition
	for id := int64(1); id <= s.nextRec; id++ {
		if rec, ok := s.recs[id]; ok && rec.UserID == userID && rec.Active {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *Store) ListUsersWithActive(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for id := int64(1); id <= s.nextRec; id++ {
		rec, ok := s.recs[id]
		if !ok || !rec.Active || seen[rec.UserID] {
			continue
		}
		seen[rec.UserID] = true
		out = append(out, rec.UserID)
	}
	return out, nil
}

func (s *Store) MaterializeOccurrence(_ context.Context, def core.RecurrenceDefinition, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[def.ID]
	if !ok {
		return 0, ledger.ErrNotFound
	}
	if rec.MaterializedCount != def.MaterializedCount {
		return 0, ledger.ErrStaleRecurrence
	}
	id := s.insertLocked(t)
	rec.MaterializedCount++
	if rec.MaterializedCount >= rec.TotalOccurrences {
		rec.Active = false
	}
	return id, nil
}
