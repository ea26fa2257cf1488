package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store"
)

const (
	transactionsTable = "transactions"
	dateFormat        = "2006-01-02"
)

// InsertBudgetTransaction inserts one row into the transactions table.
func (r *Repository) InsertBudgetTransaction(ctx context.Context, tx *domain.BudgetTransaction) error {
	inserter := r.client.Dataset(r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, transactionToRow(tx)); err != nil {
		return fmt.Errorf("InsertBudgetTransaction: inserting row: %w", err)
	}
	return nil
}

// ListBudgetTransactions returns the user's transactions, optionally
// bounded by a date range, ordered by transaction date.
func (r *Repository) ListBudgetTransactions(ctx context.Context, userID string, dr store.DateRange) ([]*domain.BudgetTransaction, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			type,
			amount,
			category,
			description,
			transaction_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
	`, r.table(transactionsTable))

	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}
	if !dr.Start.IsZero() {
		query += " AND transaction_date >= @start_date"
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: dr.Start.Format(dateFormat)})
	}
	if !dr.End.IsZero() {
		query += " AND transaction_date <= @end_date"
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: dr.End.Format(dateFormat)})
	}
	query += " ORDER BY transaction_date, created_ts"

	q := r.client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetTransactions: query read: %w", err)
	}

	var result []*domain.BudgetTransaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBudgetTransactions: iter next: %w", err)
		}
		result = append(result, rowToTransaction(&row))
	}

	return result, nil
}

// DeleteBudgetTransaction deletes one of the user's transactions by id.
func (r *Repository) DeleteBudgetTransaction(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, transactionsTable, userID, id)
}
