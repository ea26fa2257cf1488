package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
	"github.com/andresuchitra/duitku/internal/store"
)

const debtsTable = "debts"

const debtColumns = `
	id,
	user_id,
	name,
	creditor,
	total_amount,
	remaining_amount,
	interest_rate,
	minimum_payment,
	due_date,
	created_ts
`

// InsertDebt inserts one row into the debts table.
func (r *Repository) InsertDebt(ctx context.Context, d *domain.Debt) error {
	inserter := r.client.Dataset(r.datasetID).Table(debtsTable).Inserter()
	if err := inserter.Put(ctx, debtToRow(d)); err != nil {
		return fmt.Errorf("InsertDebt: inserting row: %w", err)
	}
	return nil
}

// ListDebts returns all of the user's debts, newest first.
func (r *Repository) ListDebts(ctx context.Context, userID string) ([]*domain.Debt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, debtColumns, r.table(debtsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDebts: query read: %w", err)
	}

	var result []*domain.Debt
	for {
		var row debtRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDebts: iter next: %w", err)
		}
		result = append(result, rowToDebt(&row))
	}

	return result, nil
}

// DeleteDebt deletes one of the user's debts by id.
func (r *Repository) DeleteDebt(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, debtsTable, userID, id)
}

// RecordDebtPayment decrements the debt's remaining amount, clamped at
// zero, and returns the updated record.
func (r *Repository) RecordDebtPayment(ctx context.Context, userID, debtID string, amount float64) (*domain.Debt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("RecordDebtPayment: amount must be positive, got %v", amount)
	}

	update := fmt.Sprintf(`
		UPDATE %s
		SET remaining_amount = GREATEST(remaining_amount - @amount, 0)
		WHERE user_id = @user_id AND id = @id
	`, r.table(debtsTable))

	affected, err := r.runDML(ctx, update, []bigquery.QueryParameter{
		{Name: "amount", Value: ratFromFloat(amount)},
		{Name: "user_id", Value: userID},
		{Name: "id", Value: debtID},
	})
	if err != nil {
		return nil, fmt.Errorf("RecordDebtPayment: update: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return r.getDebt(ctx, userID, debtID)
}

func (r *Repository) getDebt(ctx context.Context, userID, debtID string) (*domain.Debt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = @user_id AND id = @id
		LIMIT 1
	`, debtColumns, r.table(debtsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "id", Value: debtID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("getDebt: query read: %w", err)
	}

	var row debtRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getDebt: iter next: %w", err)
	}

	return rowToDebt(&row), nil
}
