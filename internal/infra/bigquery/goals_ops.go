package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
)

const financialGoalsTable = "financial_goals"

// InsertFinancialGoal inserts one row into the financial_goals table.
func (r *Repository) InsertFinancialGoal(ctx context.Context, g *domain.FinancialGoal) error {
	inserter := r.client.Dataset(r.datasetID).Table(financialGoalsTable).Inserter()
	if err := inserter.Put(ctx, financialGoalToRow(g)); err != nil {
		return fmt.Errorf("InsertFinancialGoal: inserting row: %w", err)
	}
	return nil
}

// ListFinancialGoals returns all of the user's goals, newest first.
func (r *Repository) ListFinancialGoals(ctx context.Context, userID string) ([]*domain.FinancialGoal, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			name,
			target_amount,
			current_amount,
			category,
			priority,
			deadline,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, r.table(financialGoalsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListFinancialGoals: query read: %w", err)
	}

	var result []*domain.FinancialGoal
	for {
		var row financialGoalRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListFinancialGoals: iter next: %w", err)
		}
		result = append(result, rowToFinancialGoal(&row))
	}

	return result, nil
}

// DeleteFinancialGoal deletes one of the user's goals by id.
func (r *Repository) DeleteFinancialGoal(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, financialGoalsTable, userID, id)
}
