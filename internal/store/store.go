// Package store defines the persistence interfaces for user financial
// records. Implementations must scope every operation to the user id
// passed in explicitly; nothing here reads identity from ambient state.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchitra/duitku/internal/domain"
)

// ErrNotFound is returned when a record does not exist for the given user.
var ErrNotFound = errors.New("record not found")

// DateRange bounds a list query. Zero values mean unbounded on that side.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// Store provides the per-table insert/select/delete operations the
// application needs. It is one interface rather than seven so that the
// assistant dispatcher, the HTTP handlers and the export job can share a
// single dependency, and so tests can swap in one in-memory fake.
type Store interface {
	InsertBudgetTransaction(ctx context.Context, tx *domain.BudgetTransaction) error
	ListBudgetTransactions(ctx context.Context, userID string, r DateRange) ([]*domain.BudgetTransaction, error)
	DeleteBudgetTransaction(ctx context.Context, userID, id string) error

	InsertInvestment(ctx context.Context, inv *domain.Investment) error
	ListInvestments(ctx context.Context, userID string) ([]*domain.Investment, error)
	DeleteInvestment(ctx context.Context, userID, id string) error

	InsertCryptoHolding(ctx context.Context, h *domain.CryptoHolding) error
	ListCryptoHoldings(ctx context.Context, userID string) ([]*domain.CryptoHolding, error)
	DeleteCryptoHolding(ctx context.Context, userID, id string) error

	InsertFinancialGoal(ctx context.Context, g *domain.FinancialGoal) error
	ListFinancialGoals(ctx context.Context, userID string) ([]*domain.FinancialGoal, error)
	DeleteFinancialGoal(ctx context.Context, userID, id string) error

	InsertBusinessTransaction(ctx context.Context, tx *domain.BusinessTransaction) error
	ListBusinessTransactions(ctx context.Context, userID string, r DateRange) ([]*domain.BusinessTransaction, error)
	DeleteBusinessTransaction(ctx context.Context, userID, id string) error

	InsertDebt(ctx context.Context, d *domain.Debt) error
	ListDebts(ctx context.Context, userID string) ([]*domain.Debt, error)
	DeleteDebt(ctx context.Context, userID, id string) error

	// RecordDebtPayment decrements the debt's remaining amount, clamped
	// at zero, and returns the updated record.
	RecordDebtPayment(ctx context.Context, userID, debtID string, amount float64) (*domain.Debt, error)

	InsertRecurringTransaction(ctx context.Context, tx *domain.RecurringTransaction) error
	ListRecurringTransactions(ctx context.Context, userID string) ([]*domain.RecurringTransaction, error)
	DeleteRecurringTransaction(ctx context.Context, userID, id string) error
}
