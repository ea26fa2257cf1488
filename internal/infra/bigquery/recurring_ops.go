package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
)

const recurringTransactionsTable = "recurring_transactions"

// InsertRecurringTransaction inserts one row into the recurring_transactions table.
func (r *Repository) InsertRecurringTransaction(ctx context.Context, tx *domain.RecurringTransaction) error {
	inserter := r.client.Dataset(r.datasetID).Table(recurringTransactionsTable).Inserter()
	if err := inserter.Put(ctx, recurringTransactionToRow(tx)); err != nil {
		return fmt.Errorf("InsertRecurringTransaction: inserting row: %w", err)
	}
	return nil
}

// ListRecurringTransactions returns the user's recurring schedules ordered
// by next due date.
func (r *Repository) ListRecurringTransactions(ctx context.Context, userID string) ([]*domain.RecurringTransaction, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			name,
			type,
			amount,
			category,
			frequency,
			next_due_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY next_due_date, created_ts
	`, r.table(recurringTransactionsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecurringTransactions: query read: %w", err)
	}

	var result []*domain.RecurringTransaction
	for {
		var row recurringTransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecurringTransactions: iter next: %w", err)
		}
		result = append(result, rowToRecurringTransaction(&row))
	}

	return result, nil
}

// DeleteRecurringTransaction deletes one of the user's recurring schedules by id.
func (r *Repository) DeleteRecurringTransaction(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, recurringTransactionsTable, userID, id)
}
