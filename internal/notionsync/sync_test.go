package notionsync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

// mockNotionService records calls and serves a canned page list.
type mockNotionService struct {
	pages        []notionapi.Page
	createdProps []notionapi.Properties
	updatedIDs   []string
	archivedIDs  []string
}

func (m *mockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.createdProps = append(m.createdProps, properties)
	return &notionapi.Page{ID: notionapi.ObjectID(fmt.Sprintf("page-%d", len(m.createdProps)))}, nil
}

func (m *mockNotionService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updatedIDs = append(m.updatedIDs, pageID)
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotionService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.pages, HasMore: false}, nil
}

func (m *mockNotionService) DeletePage(ctx context.Context, pageID string) error {
	m.archivedIDs = append(m.archivedIDs, pageID)
	return nil
}

func notionPageWithRecordID(pageID, recordID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Record ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{
					{PlainText: recordID},
				},
			},
		},
	}
}

func TestSyncBudgetTransactionsCreatesMissingPages(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	txs := []*domain.BudgetTransaction{
		{ID: "tx-1", UserID: "user-a", Type: domain.TransactionIncome, Amount: 10_000_000, Category: "Gaji",
			TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tx-2", UserID: "user-a", Type: domain.TransactionExpense, Amount: 50_000, Category: "Makanan",
			TransactionDate: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tx := range txs {
		if err := st.InsertBudgetTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// tx-1 already exists in Notion, tx-2 does not.
	notion := &mockNotionService{
		pages: []notionapi.Page{notionPageWithRecordID("page-existing", "tx-1")},
	}

	err := SyncBudgetTransactions(ctx, st, notion, "db-1", "user-a",
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("SyncBudgetTransactions() error = %v", err)
	}

	if len(notion.createdProps) != 1 {
		t.Fatalf("created %d pages, want 1", len(notion.createdProps))
	}
	if len(notion.archivedIDs) != 0 {
		t.Errorf("archived %d pages, want 0", len(notion.archivedIDs))
	}
}

func TestSyncBudgetTransactionsArchivesStalePages(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	notion := &mockNotionService{
		pages: []notionapi.Page{
			notionPageWithRecordID("page-stale", "tx-gone"),
			{ID: "page-no-id"},
		},
	}

	err := SyncBudgetTransactions(ctx, st, notion, "db-1", "user-a",
		time.Time{}, time.Time{}, false)
	if err != nil {
		t.Fatalf("SyncBudgetTransactions() error = %v", err)
	}

	if len(notion.archivedIDs) != 2 {
		t.Fatalf("archived %d pages, want 2", len(notion.archivedIDs))
	}
}

func TestSyncBudgetTransactionsDryRun(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	tx := &domain.BudgetTransaction{
		ID: "tx-1", UserID: "user-a", Type: domain.TransactionIncome, Amount: 1_000_000, Category: "Gaji",
		TransactionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := st.InsertBudgetTransaction(ctx, tx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	notion := &mockNotionService{
		pages: []notionapi.Page{notionPageWithRecordID("page-stale", "tx-gone")},
	}

	err := SyncBudgetTransactions(ctx, st, notion, "db-1", "user-a",
		time.Time{}, time.Time{}, true)
	if err != nil {
		t.Fatalf("SyncBudgetTransactions() error = %v", err)
	}

	if len(notion.createdProps) != 0 {
		t.Errorf("dry run created %d pages, want 0", len(notion.createdProps))
	}
	if len(notion.archivedIDs) != 0 {
		t.Errorf("dry run archived %d pages, want 0", len(notion.archivedIDs))
	}
}

func TestSyncFinancialGoalsUpdatesExistingPages(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	goals := []*domain.FinancialGoal{
		{ID: "goal-1", UserID: "user-a", Name: "Dana darurat", TargetAmount: 30_000_000,
			CurrentAmount: 12_000_000, Priority: domain.PriorityHigh},
		{ID: "goal-2", UserID: "user-a", Name: "Liburan", TargetAmount: 10_000_000,
			Priority: domain.PriorityLow},
	}
	for _, g := range goals {
		if err := st.InsertFinancialGoal(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	notion := &mockNotionService{
		pages: []notionapi.Page{notionPageWithRecordID("page-goal-1", "goal-1")},
	}

	if err := SyncFinancialGoals(ctx, st, notion, "db-2", "user-a", false); err != nil {
		t.Fatalf("SyncFinancialGoals() error = %v", err)
	}

	if len(notion.updatedIDs) != 1 || notion.updatedIDs[0] != "page-goal-1" {
		t.Errorf("updated pages = %v, want [page-goal-1]", notion.updatedIDs)
	}
	if len(notion.createdProps) != 1 {
		t.Errorf("created %d pages, want 1", len(notion.createdProps))
	}
}

func TestBudgetTransactionToNotionProperties(t *testing.T) {
	tx := &domain.BudgetTransaction{
		ID:              "tx-1",
		Type:            domain.TransactionExpense,
		Amount:          250_000,
		Category:        "Transportasi",
		Description:     "Bensin",
		TransactionDate: time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
	}

	props := BudgetTransactionToNotionProperties(tx)

	title, ok := props["Description"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "Bensin" {
		t.Errorf("Description property = %+v, want title 'Bensin'", props["Description"])
	}

	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok || amount.Number != 250_000 {
		t.Errorf("Amount property = %+v, want 250000", props["Amount"])
	}

	sel, ok := props["Type"].(notionapi.SelectProperty)
	if !ok || sel.Select.Name != "expense" {
		t.Errorf("Type property = %+v, want select 'expense'", props["Type"])
	}
}

func TestExtractRecordID(t *testing.T) {
	tests := []struct {
		name string
		page notionapi.Page
		want string
	}{
		{"with record id", notionPageWithRecordID("p", "tx-1"), "tx-1"},
		{"missing property", notionapi.Page{Properties: notionapi.Properties{}}, ""},
		{"empty rich text", notionapi.Page{Properties: notionapi.Properties{
			"Record ID": &notionapi.RichTextProperty{},
		}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractRecordID(tt.page); got != tt.want {
				t.Errorf("extractRecordID() = %q, want %q", got, tt.want)
			}
		})
	}
}
