package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store"
)

const businessTransactionsTable = "business_transactions"

// InsertBusinessTransaction inserts one row into the business_transactions table.
func (r *Repository) InsertBusinessTransaction(ctx context.Context, tx *domain.BusinessTransaction) error {
	inserter := r.client.Dataset(r.datasetID).Table(businessTransactionsTable).Inserter()
	if err := inserter.Put(ctx, businessTransactionToRow(tx)); err != nil {
		return fmt.Errorf("InsertBusinessTransaction: inserting row: %w", err)
	}
	return nil
}

// ListBusinessTransactions returns the user's business transactions,
// optionally bounded by a date range, ordered by transaction date.
func (r *Repository) ListBusinessTransactions(ctx context.Context, userID string, dr store.DateRange) ([]*domain.BusinessTransaction, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			business_name,
			type,
			category,
			amount,
			description,
			transaction_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
	`, r.table(businessTransactionsTable))

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
		return nil, fmt.Errorf("ListBusinessTransactions: query read: %w", err)
	}

	var result []*domain.BusinessTransaction
	for {
		var row businessTransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBusinessTransactions: iter next: %w", err)
		}
		result = append(result, rowToBusinessTransaction(&row))
	}

	return result, nil
}

// DeleteBusinessTransaction deletes one of the user's business transactions by id.
func (r *Repository) DeleteBusinessTransaction(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, businessTransactionsTable, userID, id)
}
