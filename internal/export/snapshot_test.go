package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/jobs"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

type fakeUploader struct {
	objectName string
	data       []byte
	err        error
}

func (f *fakeUploader) Upload(ctx context.Context, objectName string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.objectName = objectName
	f.data = data
	return nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New()
	ctx := context.Background()

	records := []error{
		st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID: "tx-1", UserID: "user-a", Type: domain.TransactionIncome,
			Amount: 10_000_000, Category: "Gaji",
			TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		}),
		st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID: "tx-2", UserID: "user-a", Type: domain.TransactionExpense,
			Amount: 3_000_000, Category: "Makanan",
			TransactionDate: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		}),
		st.InsertInvestment(ctx, &domain.Investment{
			ID: "inv-1", UserID: "user-a", Name: "BBCA", Type: domain.InvestmentStocks,
			Amount: 5_000_000, CurrentValue: 6_000_000,
		}),
		st.InsertDebt(ctx, &domain.Debt{
			ID: "debt-1", UserID: "user-a", Name: "KPR",
			TotalAmount: 100_000_000, RemainingAmount: 80_000_000,
		}),
		// Another user's record must not leak into the snapshot.
		st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID: "tx-3", UserID: "user-b", Type: domain.TransactionIncome,
			Amount: 99_000_000, Category: "Gaji",
			TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		}),
	}
	for _, err := range records {
		if err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	return st
}

func TestBuildSnapshot(t *testing.T) {
	st := seedStore(t)
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	snap, err := BuildSnapshot(context.Background(), st, "user-a", now)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if len(snap.Transactions) != 2 {
		t.Errorf("Transactions = %d, want 2", len(snap.Transactions))
	}
	if len(snap.Investments) != 1 {
		t.Errorf("Investments = %d, want 1", len(snap.Investments))
	}
	if len(snap.Debts) != 1 {
		t.Errorf("Debts = %d, want 1", len(snap.Debts))
	}

	// income 10jt - expenses 3jt + investment value 6jt - debt 80jt
	wantNetWorth := 10_000_000.0 - 3_000_000 + 6_000_000 - 80_000_000
	if snap.NetWorth != wantNetWorth {
		t.Errorf("NetWorth = %v, want %v", snap.NetWorth, wantNetWorth)
	}

	for _, tx := range snap.Transactions {
		if tx.UserID != "user-a" {
			t.Errorf("snapshot contains record for user %q", tx.UserID)
		}
	}
}

func TestSnapshotMarshalRoundTrip(t *testing.T) {
	st := seedStore(t)
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	snap, err := BuildSnapshot(context.Background(), st, "user-a", now)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	data, err := snap.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if decoded.UserID != "user-a" {
		t.Errorf("decoded UserID = %q, want %q", decoded.UserID, "user-a")
	}
	if decoded.NetWorth != snap.NetWorth {
		t.Errorf("decoded NetWorth = %v, want %v", decoded.NetWorth, snap.NetWorth)
	}
}

func TestObjectName(t *testing.T) {
	now := time.Date(2025, 11, 3, 7, 30, 0, 0, time.UTC)
	got := ObjectName("user-a", now)

	if !strings.HasPrefix(got, "exports/2025/11/03/user-a/snapshot-") {
		t.Errorf("ObjectName() = %q, want exports/2025/11/03/user-a/ prefix", got)
	}
	if !strings.HasSuffix(got, ".json") {
		t.Errorf("ObjectName() = %q, want .json suffix", got)
	}
}

func TestJobHandlerUploadsSnapshot(t *testing.T) {
	st := seedStore(t)
	up := &fakeUploader{}
	handler := NewJobHandler(st, up, zerolog.Nop())

	job := &jobs.ExportSnapshotJob{
		JobID:      "job-1",
		UserID:     "user-a",
		ObjectName: "exports/2025/11/03/user-a/snapshot-1.json",
		Status:     jobs.JobStatusPending,
	}

	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("handler() error = %v", err)
	}

	if up.objectName != job.ObjectName {
		t.Errorf("uploaded object = %q, want %q", up.objectName, job.ObjectName)
	}

	var snap Snapshot
	if err := json.Unmarshal(up.data, &snap); err != nil {
		t.Fatalf("uploaded data is not a snapshot: %v", err)
	}
	if snap.UserID != "user-a" {
		t.Errorf("uploaded snapshot UserID = %q, want %q", snap.UserID, "user-a")
	}
}

func TestJobHandlerUploadFailure(t *testing.T) {
	st := seedStore(t)
	up := &fakeUploader{err: errors.New("bucket unavailable")}
	handler := NewJobHandler(st, up, zerolog.Nop())

	job := &jobs.ExportSnapshotJob{
		JobID:      "job-1",
		UserID:     "user-a",
		ObjectName: "exports/2025/11/03/user-a/snapshot-1.json",
	}

	if err := handler(context.Background(), job); err == nil {
		t.Fatal("handler() error = nil, want upload failure")
	}
}
