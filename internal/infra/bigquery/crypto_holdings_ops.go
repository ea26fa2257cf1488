package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/andresuchitra/duitku/internal/domain"
)

const cryptoHoldingsTable = "crypto_holdings"

// InsertCryptoHolding inserts one row into the crypto_holdings table.
func (r *Repository) InsertCryptoHolding(ctx context.Context, h *domain.CryptoHolding) error {
	inserter := r.client.Dataset(r.datasetID).Table(cryptoHoldingsTable).Inserter()
	if err := inserter.Put(ctx, cryptoHoldingToRow(h)); err != nil {
		return fmt.Errorf("InsertCryptoHolding: inserting row: %w", err)
	}
	return nil
}

// ListCryptoHoldings returns all of the user's crypto holdings, newest first.
func (r *Repository) ListCryptoHoldings(ctx context.Context, userID string) ([]*domain.CryptoHolding, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			coin_id,
			coin_name,
			symbol,
			amount,
			purchase_price,
			purchase_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, r.table(cryptoHoldingsTable))

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCryptoHoldings: query read: %w", err)
	}

	var result []*domain.CryptoHolding
	for {
		var row cryptoHoldingRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCryptoHoldings: iter next: %w", err)
		}
		result = append(result, rowToCryptoHolding(&row))
	}

	return result, nil
}

// DeleteCryptoHolding deletes one of the user's crypto holdings by id.
func (r *Repository) DeleteCryptoHolding(ctx context.Context, userID, id string) error {
	return r.deleteByID(ctx, cryptoHoldingsTable, userID, id)
}
