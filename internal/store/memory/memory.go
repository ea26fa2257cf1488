// Package memory provides an in-memory Store implementation. It backs the
// assistant REPL's local mode and the unit tests; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store"
)

// Store keeps all records in maps keyed by record id. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	budget     map[string]*domain.BudgetTransaction
	investment map[string]*domain.Investment
	crypto     map[string]*domain.CryptoHolding
	goal       map[string]*domain.FinancialGoal
	business   map[string]*domain.BusinessTransaction
	debt       map[string]*domain.Debt
	recurring  map[string]*domain.RecurringTransaction
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		budget:     make(map[string]*domain.BudgetTransaction),
		investment: make(map[string]*domain.Investment),
		crypto:     make(map[string]*domain.CryptoHolding),
		goal:       make(map[string]*domain.FinancialGoal),
		business:   make(map[string]*domain.BusinessTransaction),
		debt:       make(map[string]*domain.Debt),
		recurring:  make(map[string]*domain.RecurringTransaction),
	}
}

func (s *Store) InsertBudgetTransaction(ctx context.Context, tx *domain.BudgetTransaction) error {
	if tx.ID == "" || tx.UserID == "" {
		return fmt.Errorf("insert budget transaction: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.budget[tx.ID] = &cp
	return nil
}

func (s *Store) ListBudgetTransactions(ctx context.Context, userID string, r store.DateRange) ([]*domain.BudgetTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.BudgetTransaction
	for _, tx := range s.budget {
		if tx.UserID != userID || !r.Contains(tx.TransactionDate) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.Before(out[j].TransactionDate) })
	return out, nil
}

func (s *Store) DeleteBudgetTransaction(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.budget[id]
	if !ok || tx.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.budget, id)
	return nil
}

func (s *Store) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	if inv.ID == "" || inv.UserID == "" {
		return fmt.Errorf("insert investment: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inv
	s.investment[inv.ID] = &cp
	return nil
}

func (s *Store) ListInvestments(ctx context.Context, userID string) ([]*domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Investment
	for _, inv := range s.investment {
		if inv.UserID != userID {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.Before(out[j].PurchaseDate) })
	return out, nil
}

func (s *Store) DeleteInvestment(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investment[id]
	if !ok || inv.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.investment, id)
	return nil
}

func (s *Store) InsertCryptoHolding(ctx context.Context, h *domain.CryptoHolding) error {
	if h.ID == "" || h.UserID == "" {
		return fmt.Errorf("insert crypto holding: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.crypto[h.ID] = &cp
	return nil
}

func (s *Store) ListCryptoHoldings(ctx context.Context, userID string) ([]*domain.CryptoHolding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.CryptoHolding
	for _, h := range s.crypto {
		if h.UserID != userID {
			continue
		}
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.Before(out[j].PurchaseDate) })
	return out, nil
}

func (s *Store) DeleteCryptoHolding(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.crypto[id]
	if !ok || h.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.crypto, id)
	return nil
}

func (s *Store) InsertFinancialGoal(ctx context.Context, g *domain.FinancialGoal) error {
	if g.ID == "" || g.UserID == "" {
		return fmt.Errorf("insert financial goal: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.goal[g.ID] = &cp
	return nil
}

func (s *Store) ListFinancialGoals(ctx context.Context, userID string) ([]*domain.FinancialGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.FinancialGoal
	for _, g := range s.goal {
		if g.UserID != userID {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteFinancialGoal(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goal[id]
	if !ok || g.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.goal, id)
	return nil
}

func (s *Store) InsertBusinessTransaction(ctx context.Context, tx *domain.BusinessTransaction) error {
	if tx.ID == "" || tx.UserID == "" {
		return fmt.Errorf("insert business transaction: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.business[tx.ID] = &cp
	return nil
}

func (s *Store) ListBusinessTransactions(ctx context.Context, userID string, r store.DateRange) ([]*domain.BusinessTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.BusinessTransaction
	for _, tx := range s.business {
		if tx.UserID != userID || !r.Contains(tx.TransactionDate) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.Before(out[j].TransactionDate) })
	return out, nil
}

func (s *Store) DeleteBusinessTransaction(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.business[id]
	if !ok || tx.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.business, id)
	return nil
}

func (s *Store) InsertDebt(ctx context.Context, d *domain.Debt) error {
	if d.ID == "" || d.UserID == "" {
		return fmt.Errorf("insert debt: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.debt[d.ID] = &cp
	return nil
}

func (s *Store) ListDebts(ctx context.Context, userID string) ([]*domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Debt
	for _, d := range s.debt {
		if d.UserID != userID {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteDebt(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debt[id]
	if !ok || d.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.debt, id)
	return nil
}

func (s *Store) RecordDebtPayment(ctx context.Context, userID, debtID string, amount float64) (*domain.Debt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("record debt payment: amount must be positive, got %v", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debt[debtID]
	if !ok || d.UserID != userID {
		return nil, store.ErrNotFound
	}
	d.RemainingAmount -= amount
	if d.RemainingAmount < 0 {
		d.RemainingAmount = 0
	}
	cp := *d
	return &cp, nil
}

func (s *Store) InsertRecurringTransaction(ctx context.Context, tx *domain.RecurringTransaction) error {
	if tx.ID == "" || tx.UserID == "" {
		return fmt.Errorf("insert recurring transaction: id and user id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.recurring[tx.ID] = &cp
	return nil
}

func (s *Store) ListRecurringTransactions(ctx context.Context, userID string) ([]*domain.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.RecurringTransaction
	for _, tx := range s.recurring {
		if tx.UserID != userID {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDueDate.Before(out[j].NextDueDate) })
	return out, nil
}

func (s *Store) DeleteRecurringTransaction(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.recurring[id]
	if !ok || tx.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.recurring, id)
	return nil
}

// Ensure Store implements the persistence interface.
var _ store.Store = (*Store)(nil)
