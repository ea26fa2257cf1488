// Package export builds full-account JSON snapshots and uploads them to
// Google Cloud Storage. Snapshots are produced asynchronously by the job
// queue so the HTTP request that triggers one returns immediately.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/finance"
	"github.com/andresuchitra/duitku/internal/store"
)

// Snapshot is the exported document: every record the user owns plus the
// aggregate totals computed at export time.
type Snapshot struct {
	UserID                string                          `json:"user_id"`
	GeneratedAt           time.Time                       `json:"generated_at"`
	Transactions          []*domain.BudgetTransaction     `json:"transactions"`
	Investments           []*domain.Investment            `json:"investments"`
	CryptoHoldings        []*domain.CryptoHolding         `json:"crypto_holdings"`
	Goals                 []*domain.FinancialGoal         `json:"goals"`
	BusinessTransactions  []*domain.BusinessTransaction   `json:"business_transactions"`
	Debts                 []*domain.Debt                  `json:"debts"`
	RecurringTransactions []*domain.RecurringTransaction  `json:"recurring_transactions"`
	Totals                finance.Totals                  `json:"totals"`
	NetWorth              float64                         `json:"net_worth"`
}

// BuildSnapshot reads all of the user's records and assembles a snapshot.
func BuildSnapshot(ctx context.Context, st store.Store, userID string, now time.Time) (*Snapshot, error) {
	txs, err := st.ListBudgetTransactions(ctx, userID, store.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	invs, err := st.ListInvestments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	holdings, err := st.ListCryptoHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list crypto holdings: %w", err)
	}

	goals, err := st.ListFinancialGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	bizTxs, err := st.ListBusinessTransactions(ctx, userID, store.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("list business transactions: %w", err)
	}

	debts, err := st.ListDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	recurring, err := st.ListRecurringTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}

	totals := finance.Aggregate(txs, invs, holdings, debts)

	return &Snapshot{
		UserID:                userID,
		GeneratedAt:           now.UTC(),
		Transactions:          txs,
		Investments:           invs,
		CryptoHoldings:        holdings,
		Goals:                 goals,
		BusinessTransactions:  bizTxs,
		Debts:                 debts,
		RecurringTransactions: recurring,
		Totals:                totals,
		NetWorth:              totals.NetWorth(),
	}, nil
}

// Marshal renders the snapshot as indented JSON for upload.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// ObjectName returns the GCS object path for a snapshot generated at the
// given time, e.g. exports/2025/11/03/<user>/snapshot-1762128000.json.
func ObjectName(userID string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("exports/%04d/%02d/%02d/%s/snapshot-%d.json",
		now.Year(), now.Month(), now.Day(), userID, now.Unix())
}
