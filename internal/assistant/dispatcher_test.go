package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/logger"
	"github.com/andresuchitra/duitku/internal/store"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

// stubClassifier returns a fixed classification, standing in for the
// Gemini round trip. The colloquial amount expansion ("10 juta" ->
// 10000000) happens inside the model, so these stubs carry the already
// expanded arguments the model would emit.
type stubClassifier struct {
	cls   *Classification
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, message string, history []Message) (*Classification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.cls, nil
}

func call(name string, args map[string]any) *Classification {
	return &Classification{Call: &genai.FunctionCall{Name: name, Args: args}}
}

func newTestDispatcher(t *testing.T, cls *Classification) (*Dispatcher, *memory.Store) {
	t.Helper()
	st := memory.New()
	d := NewDispatcher(&stubClassifier{cls: cls}, st, logger.NewWithWriter(&strings.Builder{}))
	fixed, _ := time.Parse("2006-01-02", "2026-08-31")
	d.now = func() time.Time { return fixed }
	return d, st
}

func TestDispatchBudgetTransactionIncome(t *testing.T) {
	// "Tambah pemasukan gaji 10 juta" => the model emits amount 10000000.
	d, st := newTestDispatcher(t, call("add_budget_transaction", map[string]any{
		"transaction_type": "income",
		"amount":           float64(10000000),
		"category":         "Gaji",
		"description":      "Gaji bulanan",
	}))

	res, err := d.Dispatch(context.Background(), "user-1", "Tambah pemasukan gaji 10 juta", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Executed {
		t.Fatal("expected executed=true")
	}
	if res.Action == nil || res.Action.Action != "add_budget_transaction" || !res.Action.Success {
		t.Fatalf("unexpected action result: %+v", res.Action)
	}
	if !strings.Contains(res.Response, "10.000.000") {
		t.Errorf("confirmation should embed the formatted amount, got %q", res.Response)
	}

	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Type != domain.TransactionIncome || tx.Amount != 10000000 || tx.Category != "Gaji" {
		t.Errorf("persisted record mismatch: %+v", tx)
	}
	if tx.UserID != "user-1" {
		t.Errorf("record not scoped to requesting user: %q", tx.UserID)
	}
}

func TestDispatchBudgetTransactionExpenseRibu(t *testing.T) {
	// "Catat pengeluaran makan 50 ribu" => amount 50000.
	d, st := newTestDispatcher(t, call("add_budget_transaction", map[string]any{
		"transaction_type": "expense",
		"amount":           float64(50000),
		"category":         "Makanan",
		"description":      "Makan siang",
	}))

	res, err := d.Dispatch(context.Background(), "user-1", "Catat pengeluaran makan 50 ribu", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Executed {
		t.Fatal("expected executed=true")
	}

	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 1 || txs[0].Type != domain.TransactionExpense || txs[0].Amount != 50000 {
		t.Fatalf("persisted record mismatch: %+v", txs)
	}
}

func TestDispatchConversationalWritesNothing(t *testing.T) {
	d, st := newTestDispatcher(t, &Classification{
		Text: "Umumnya 20% dari penghasilan adalah target menabung yang sehat.",
	})

	res, err := d.Dispatch(context.Background(), "user-1", "What's a good savings rate?", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Executed {
		t.Error("conversational reply must not be marked executed")
	}
	if res.Action != nil {
		t.Error("conversational reply must carry no action")
	}
	if res.Response == "" || !strings.Contains(res.Response, "menabung") {
		t.Errorf("model text must pass through unmodified, got %q", res.Response)
	}

	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 0 {
		t.Errorf("no record should be written, got %d", len(txs))
	}
}

func TestDispatchUnknownActionFallsThrough(t *testing.T) {
	d, st := newTestDispatcher(t, call("transfer_funds", map[string]any{"amount": float64(100)}))

	res, err := d.Dispatch(context.Background(), "user-1", "Transfer 100 ribu ke Budi", nil)
	if err != nil {
		t.Fatalf("unknown action must not be an error: %v", err)
	}
	if res.Executed {
		t.Error("unknown action must not execute")
	}
	if res.Response != ResponseNotRecognized {
		t.Errorf("expected the static not-recognized response, got %q", res.Response)
	}

	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 0 {
		t.Errorf("no record should be written, got %d", len(txs))
	}
}

func TestDispatchBusinessVocabularyMapping(t *testing.T) {
	d, st := newTestDispatcher(t, call("add_business_transaction", map[string]any{
		"business_name":    "Warung Bu Sari",
		"transaction_type": "income",
		"category":         "Penjualan",
		"amount":           float64(750000),
	}))

	if _, err := d.Dispatch(context.Background(), "user-1", "Catat pemasukan warung 750 ribu", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	txs, _ := st.ListBusinessTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 1 {
		t.Fatalf("expected one business transaction, got %d", len(txs))
	}
	if txs[0].Type != domain.BusinessPemasukan {
		t.Errorf("income must persist as %q, got %q", domain.BusinessPemasukan, txs[0].Type)
	}

	// And the expense direction.
	d2, st2 := newTestDispatcher(t, call("add_business_transaction", map[string]any{
		"business_name":    "Warung Bu Sari",
		"transaction_type": "expense",
		"category":         "Bahan Baku",
		"amount":           float64(200000),
	}))
	if _, err := d2.Dispatch(context.Background(), "user-1", "Belanja bahan baku 200 ribu", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	txs2, _ := st2.ListBusinessTransactions(context.Background(), "user-1", store.DateRange{})
	if txs2[0].Type != domain.BusinessPengeluaran {
		t.Errorf("expense must persist as %q, got %q", domain.BusinessPengeluaran, txs2[0].Type)
	}
}

func TestDispatchCryptoEndToEndShape(t *testing.T) {
	// "Beli 0.1 Bitcoin di harga 800 juta"
	d, st := newTestDispatcher(t, call("add_crypto_holding", map[string]any{
		"coin_id":        "bitcoin",
		"coin_name":      "Bitcoin",
		"symbol":         "btc",
		"amount":         0.1,
		"purchase_price": float64(800000000),
	}))

	res, err := d.Dispatch(context.Background(), "user-1", "Beli 0.1 Bitcoin di harga 800 juta", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Executed {
		t.Fatal("expected executed=true")
	}

	holdings, _ := st.ListCryptoHoldings(context.Background(), "user-1")
	if len(holdings) != 1 {
		t.Fatalf("expected one holding, got %d", len(holdings))
	}
	h := holdings[0]
	if h.Amount != 0.1 || h.PurchasePrice != 800000000 {
		t.Errorf("holding values mismatch: %+v", h)
	}
	if h.Symbol != "BTC" {
		t.Errorf("symbol must be uppercased, got %q", h.Symbol)
	}
	if got := h.PurchaseDate.Format("2006-01-02"); got != "2026-08-31" {
		t.Errorf("purchase date must default to the current date, got %s", got)
	}
}

func TestDispatchIsNotIdempotent(t *testing.T) {
	// Submitting the same instruction twice produces two records. This is
	// the documented behavior, not a bug: there is no duplicate guard.
	d, st := newTestDispatcher(t, call("add_budget_transaction", map[string]any{
		"transaction_type": "expense",
		"amount":           float64(50000),
		"category":         "Makanan",
		"description":      "Makan siang",
	}))

	for i := 0; i < 2; i++ {
		if _, err := d.Dispatch(context.Background(), "user-1", "Catat pengeluaran makan 50 ribu", nil); err != nil {
			t.Fatalf("Dispatch #%d: %v", i+1, err)
		}
	}

	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 2 {
		t.Fatalf("expected two records from two submissions, got %d", len(txs))
	}
	if txs[0].ID == txs[1].ID {
		t.Error("records must have distinct ids")
	}
}

func TestDispatchSummaryFormulaAndNoWrites(t *testing.T) {
	d, st := newTestDispatcher(t, call("get_financial_summary", nil))
	ctx := context.Background()

	seed := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seed(st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
		ID: "b1", UserID: "user-1", Type: domain.TransactionIncome, Amount: 12000000, Category: "Gaji", TransactionDate: time.Now(),
	}))
	seed(st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
		ID: "b2", UserID: "user-1", Type: domain.TransactionExpense, Amount: 4000000, Category: "Makanan", TransactionDate: time.Now(),
	}))
	seed(st.InsertInvestment(ctx, &domain.Investment{
		ID: "i1", UserID: "user-1", Name: "Reksadana", Type: domain.InvestmentMutualFunds, Amount: 5000000, CurrentValue: 6000000,
	}))
	seed(st.InsertCryptoHolding(ctx, &domain.CryptoHolding{
		ID: "c1", UserID: "user-1", CoinID: "bitcoin", CoinName: "Bitcoin", Symbol: "BTC", Amount: 0.1, PurchasePrice: 800000000,
	}))
	seed(st.InsertDebt(ctx, &domain.Debt{
		ID: "d1", UserID: "user-1", Name: "KPR", Creditor: "Bank", TotalAmount: 50000000, RemainingAmount: 20000000,
	}))
	// Another user's records must not leak into the summary.
	seed(st.InsertBudgetTransaction(ctx, &domain.BudgetTransaction{
		ID: "x1", UserID: "user-2", Type: domain.TransactionIncome, Amount: 999999999, Category: "Gaji", TransactionDate: time.Now(),
	}))

	res, err := d.Dispatch(ctx, "user-1", "Bagaimana kondisi keuanganku?", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Executed || res.Action == nil || res.Action.Action != "get_financial_summary" {
		t.Fatalf("unexpected result: %+v", res)
	}

	data, ok := res.Action.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape: %T", res.Action.Data)
	}
	// income - expenses + investments + crypto - debt
	want := 12000000.0 - 4000000 + 6000000 + 80000000 - 20000000
	if got := data["net_worth"].(float64); got != want {
		t.Errorf("net worth = %v, want %v", got, want)
	}

	// Summary must not write anything.
	txs, _ := st.ListBudgetTransactions(ctx, "user-1", store.DateRange{})
	if len(txs) != 2 {
		t.Errorf("summary wrote data: %d budget transactions", len(txs))
	}
}

func TestDispatchRequiresUserID(t *testing.T) {
	st := memory.New()
	stub := &stubClassifier{cls: &Classification{Text: "hi"}}
	d := NewDispatcher(stub, st, logger.NewWithWriter(&strings.Builder{}))

	if _, err := d.Dispatch(context.Background(), "", "halo", nil); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if stub.calls != 0 {
		t.Error("classifier must not be contacted without an authenticated user")
	}
}

func TestDispatchInvalidArgumentsAbort(t *testing.T) {
	// Model hallucinated a negative amount: validation rejects it and
	// nothing is persisted.
	d, st := newTestDispatcher(t, call("add_budget_transaction", map[string]any{
		"transaction_type": "expense",
		"amount":           float64(-100),
		"category":         "Makanan",
	}))

	if _, err := d.Dispatch(context.Background(), "user-1", "catat", nil); err == nil {
		t.Fatal("expected validation error")
	}
	txs, _ := st.ListBudgetTransactions(context.Background(), "user-1", store.DateRange{})
	if len(txs) != 0 {
		t.Errorf("invalid action must not persist, got %d records", len(txs))
	}
}
