package memory

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store"
)

func TestUserScoping(t *testing.T) {
	ctx := context.Background()
	s := New()

	insert := func(id, user string, amount float64) {
		t.Helper()
		err := s.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID:              id,
			UserID:          user,
			Type:            domain.TransactionExpense,
			Amount:          amount,
			Category:        "Makanan",
			TransactionDate: time.Now(),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	insert("tx-1", "alice", 50000)
	insert("tx-2", "alice", 25000)
	insert("tx-3", "bob", 100000)

	got, err := s.ListBudgetTransactions(ctx, "alice", store.DateRange{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions for alice, got %d", len(got))
	}

	// Deleting another user's record must fail and leave it in place.
	if err := s.DeleteBudgetTransaction(ctx, "alice", "tx-3"); err != store.ErrNotFound {
		t.Errorf("cross-user delete: got %v, want ErrNotFound", err)
	}
	bob, _ := s.ListBudgetTransactions(ctx, "bob", store.DateRange{})
	if len(bob) != 1 {
		t.Errorf("bob's record should survive, got %d records", len(bob))
	}
}

func TestDateRangeFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	dates := []string{"2026-01-15", "2026-02-15", "2026-03-15"}
	for i, ds := range dates {
		d, _ := time.Parse("2006-01-02", ds)
		s.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID:              ds,
			UserID:          "u",
			Type:            domain.TransactionExpense,
			Amount:          float64(i+1) * 1000,
			Category:        "Lainnya",
			TransactionDate: d,
		})
	}

	start, _ := time.Parse("2006-01-02", "2026-02-01")
	end, _ := time.Parse("2006-01-02", "2026-02-28")
	got, err := s.ListBudgetTransactions(ctx, "u", store.DateRange{Start: start, End: end})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2026-02-15" {
		t.Fatalf("expected only the February transaction, got %v", got)
	}
}

func TestRecordDebtPaymentClampsAtZero(t *testing.T) {
	ctx := context.Background()
	s := New()

	debt := &domain.Debt{
		ID:              "d-1",
		UserID:          "u",
		Name:            "KTA",
		Creditor:        "Bank",
		TotalAmount:     1000000,
		RemainingAmount: 300000,
	}
	if err := s.InsertDebt(ctx, debt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := s.RecordDebtPayment(ctx, "u", "d-1", 200000)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if updated.RemainingAmount != 100000 {
		t.Errorf("remaining = %v, want 100000", updated.RemainingAmount)
	}

	// Overpayment clamps to zero rather than going negative.
	updated, err = s.RecordDebtPayment(ctx, "u", "d-1", 500000)
	if err != nil {
		t.Fatalf("overpayment: %v", err)
	}
	if updated.RemainingAmount != 0 {
		t.Errorf("remaining = %v, want 0", updated.RemainingAmount)
	}

	if _, err := s.RecordDebtPayment(ctx, "u", "d-1", -5); err == nil {
		t.Error("negative payment should be rejected")
	}
	if _, err := s.RecordDebtPayment(ctx, "other", "d-1", 10); err != store.ErrNotFound {
		t.Errorf("cross-user payment: got %v, want ErrNotFound", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.InsertInvestment(ctx, &domain.Investment{
		ID: "i-1", UserID: "u", Name: "Reksadana", Type: domain.InvestmentMutualFunds,
		Amount: 5000000, CurrentValue: 5500000,
	})

	first, _ := s.ListInvestments(ctx, "u")
	first[0].CurrentValue = 0

	second, _ := s.ListInvestments(ctx, "u")
	if second[0].CurrentValue != 5500000 {
		t.Error("mutating a listed record must not affect stored state")
	}
}
