package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
)

const investmentsTable = "investments"

// InsertInvestment inserts one row into the investments table.
func (r *Repository) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	inserter := r.client.Dataset(r.datasetID).Table(investmentsTable).Inserter()
	if err := inserter.Put(ctx, investmentToRow(inv)); err != nil {
		return fmt.Errorf("InsertInvestment: inserting row: %w", err)
	}
	return nil
}

// ListInvestments returns all of the user's investments, newest first.
func (r *Repository) ListInvestments(ctx context.Context, userID string) ([]*domain.Investment, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			name,
			type,
			amount,
			current_value,
			purchase_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, r.table(investmentsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListInvestments: query read: %w", err)
	}

	var result []*domain.Investment
	for {
		var row investmentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListInvestments: iter next: %w", err)
		}
		result = append(result, rowToInvestment(&row))
	}

	return result, nil
}

// DeleteInvestment deletes one of the user's investments by id.
func (r *Repository) DeleteInvestment(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, investmentsTable, userID, id)
}
