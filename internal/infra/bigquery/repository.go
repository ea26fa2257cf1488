// Package bigquery implements the persistence layer on top of Google
// BigQuery. One table per record kind, all queries parameterized and
// filtered by user_id.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/andresuchitra/duitku/internal/store"
)

// Repository is the BigQuery-backed implementation of store.Store.
// It holds a shared client; callers own its lifecycle via Close.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a Repository with its own BigQuery client.
// It assumes Application Default Credentials are configured.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return NewRepositoryWithClient(client, projectID, datasetID), nil
}

// NewRepositoryWithClient wraps an existing BigQuery client.
func NewRepositoryWithClient(client *bigquery.Client, projectID, datasetID string) *Repository {
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}
}

// Close releases the underlying BigQuery client.
func (r *Repository) Close() error {
	return r.client.Close()
}

// table returns the fully qualified, backtick-quoted table name.
func (r *Repository) table(name string) string {
	return "`" + r.projectID + "." + r.datasetID + "." + name + "`"
}

// runDML executes a DML statement and returns the number of affected rows.
func (r *Repository) runDML(ctx context.Context, query string, params []bigquery.QueryParameter) (int64, error) {
	q := r.client.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}

// deleteByID runs a user-scoped DML delete and maps zero affected rows to
// store.ErrNotFound.
func (r *Repository) deleteByID(ctx context.Context, tableName, userID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = @user_id AND id = @id
	`, r.table(tableName))

	affected, err := r.runDML(ctx, query, []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "id", Value: id},
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", tableName, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ensure Repository implements the store interface.
var _ store.Store = (*Repository)(nil)
