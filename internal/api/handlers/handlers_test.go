package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/assistant"
	"github.com/andresuchitra/duitku/internal/auth"
	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/jobs"
	jobsmem "github.com/andresuchitra/duitku/internal/jobs/inmemory"
	"github.com/andresuchitra/duitku/internal/store"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

func storeRangeAll() store.DateRange { return store.DateRange{} }

type stubDispatcher struct {
	result *assistant.Result
	err    error
	calls  int
}

func (s *stubDispatcher) Dispatch(ctx context.Context, userID, message string, history []assistant.Message) (*assistant.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func authedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestAssistantHandlerSuccess(t *testing.T) {
	dispatcher := &stubDispatcher{
		result: &assistant.Result{Response: "Dicatat!", Executed: true},
	}
	h := NewAssistantHandler(dispatcher, zerolog.Nop())

	req := authedRequest(http.MethodPost, "/api/assistant", `{"message":"catat gaji 10 juta"}`, "user-a")
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result assistant.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Executed || result.Response != "Dicatat!" {
		t.Errorf("result = %+v, want executed with response 'Dicatat!'", result)
	}
}

func TestAssistantHandlerDispatchFailure(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.New("model unavailable")}
	h := NewAssistantHandler(dispatcher, zerolog.Nop())

	req := authedRequest(http.MethodPost, "/api/assistant", `{"message":"catat gaji 10 juta"}`, "user-a")
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["response"] != responseSystemError {
		t.Errorf("response = %q, want canned apology", body["response"])
	}
	if body["error"] == "" {
		t.Error("expected error field in failure envelope")
	}
}

func TestAssistantHandlerEmptyMessage(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewAssistantHandler(dispatcher, zerolog.Nop())

	req := authedRequest(http.MethodPost, "/api/assistant", `{"message":""}`, "user-a")
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if dispatcher.calls != 0 {
		t.Errorf("dispatcher called %d times, want 0", dispatcher.calls)
	}
}

func TestAssistantHandlerUnauthenticated(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewAssistantHandler(dispatcher, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"message":"halo"}`))
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if dispatcher.calls != 0 {
		t.Errorf("dispatcher called %d times, want 0", dispatcher.calls)
	}
}

func TestCreateTransaction(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC) }

	body := `{"type":"expense","amount":50000,"category":"Makanan","description":"Nasi goreng"}`
	req := authedRequest(http.MethodPost, "/api/transactions", body, "user-a")
	rec := httptest.NewRecorder()

	h.CreateTransaction(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created domain.BudgetTransaction
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.UserID != "user-a" {
		t.Errorf("UserID = %q, want user-a", created.UserID)
	}

	stored, err := st.ListBudgetTransactions(context.Background(), "user-a", storeRangeAll())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(stored))
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"negative amount", `{"type":"expense","amount":-5,"category":"Makanan"}`},
		{"bad type", `{"type":"spending","amount":50000,"category":"Makanan"}`},
		{"missing category", `{"type":"expense","amount":50000}`},
		{"malformed json", `{"type":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPost, "/api/transactions", tt.body, "user-a")
			rec := httptest.NewRecorder()

			h.CreateTransaction(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	stored, _ := st.ListBudgetTransactions(context.Background(), "user-a", storeRangeAll())
	if len(stored) != 0 {
		t.Errorf("stored %d transactions, want 0", len(stored))
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())

	req := authedRequest(http.MethodDelete, "/api/transactions/nope", "", "user-a")
	rec := httptest.NewRecorder()

	h.DeleteTransaction(rec, req, "nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteIsUserScoped(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())

	tx := &domain.BudgetTransaction{
		ID: "tx-1", UserID: "user-a", Type: domain.TransactionIncome,
		Amount: 1_000_000, Category: "Gaji",
		TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := st.InsertBudgetTransaction(context.Background(), tx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// user-b cannot delete user-a's record
	req := authedRequest(http.MethodDelete, "/api/transactions/tx-1", "", "user-b")
	rec := httptest.NewRecorder()
	h.DeleteTransaction(rec, req, "tx-1")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete status = %d, want 404", rec.Code)
	}

	stored, _ := st.ListBudgetTransactions(context.Background(), "user-a", storeRangeAll())
	if len(stored) != 1 {
		t.Fatalf("record was deleted across users")
	}
}

func TestRecordDebtPayment(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())

	debt := &domain.Debt{
		ID: "debt-1", UserID: "user-a", Name: "KTA",
		TotalAmount: 10_000_000, RemainingAmount: 10_000_000,
	}
	if err := st.InsertDebt(context.Background(), debt); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/debts/debt-1/payments", `{"amount":2500000}`, "user-a")
	rec := httptest.NewRecorder()

	h.RecordDebtPayment(rec, req, "debt-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var updated domain.Debt
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.RemainingAmount != 7_500_000 {
		t.Errorf("RemainingAmount = %v, want 7500000", updated.RemainingAmount)
	}
}

func TestRecordDebtPaymentRejectsNonPositive(t *testing.T) {
	st := memory.New()
	h := NewRecordsHandler(st, zerolog.Nop())

	req := authedRequest(http.MethodPost, "/api/debts/debt-1/payments", `{"amount":0}`, "user-a")
	rec := httptest.NewRecorder()

	h.RecordDebtPayment(rec, req, "debt-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	seeds := []error{
		st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID: "tx-1", UserID: "user-a", Type: domain.TransactionIncome,
			Amount: 12_000_000, Category: "Gaji",
			TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		}),
		st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
			ID: "tx-2", UserID: "user-a", Type: domain.TransactionExpense,
			Amount: 4_000_000, Category: "Sewa",
			TransactionDate: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		}),
		st.InsertDebt(ctx, &domain.Debt{
			ID: "debt-1", UserID: "user-a", Name: "KPR",
			TotalAmount: 100_000_000, RemainingAmount: 20_000_000,
		}),
	}
	for _, err := range seeds {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h := NewRecordsHandler(st, zerolog.Nop())
	req := authedRequest(http.MethodGet, "/api/summary", "", "user-a")
	rec := httptest.NewRecorder()

	h.GetSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		NetWorth    float64 `json:"net_worth"`
		HealthScore int     `json:"health_score"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// 12jt income - 4jt expenses - 20jt debt
	if body.NetWorth != -12_000_000 {
		t.Errorf("net_worth = %v, want -12000000", body.NetWorth)
	}
}

func TestCreateExportEnqueuesJob(t *testing.T) {
	jobStore := jobsmem.NewStore()
	queue := jobsmem.NewQueue(10, jobStore)
	defer queue.Close()

	h := NewExportsHandler(queue, jobStore, zerolog.Nop())

	req := authedRequest(http.MethodPost, "/api/exports", "", "user-a")
	rec := httptest.NewRecorder()

	h.CreateExport(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["job_id"] == "" {
		t.Fatal("expected job_id in response")
	}

	job, err := jobStore.GetJob(context.Background(), body["job_id"])
	if err != nil {
		t.Fatalf("job not saved: %v", err)
	}
	if job.UserID != "user-a" {
		t.Errorf("job UserID = %q, want user-a", job.UserID)
	}
	if job.ObjectName == "" {
		t.Error("expected object name on job")
	}
}

func TestGetJobScopedToUser(t *testing.T) {
	jobStore := jobsmem.NewStore()
	job := &jobs.ExportSnapshotJob{JobID: "job-1", UserID: "user-a", Status: jobs.JobStatusPending}
	if err := jobStore.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewExportsHandler(nil, jobStore, zerolog.Nop())

	// Owner can read it.
	rec := httptest.NewRecorder()
	h.GetJob(rec, authedRequest(http.MethodGet, "/api/jobs/job-1", "", "user-a"), "job-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200", rec.Code)
	}

	// Another user sees not found.
	rec = httptest.NewRecorder()
	h.GetJob(rec, authedRequest(http.MethodGet, "/api/jobs/job-1", "", "user-b"), "job-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other user status = %d, want 404", rec.Code)
	}
}
