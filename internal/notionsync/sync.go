// Package notionsync mirrors stored financial records into Notion
// databases so users can browse them outside the app. The stored record id
// is written into each page's Record ID property and used on later runs to
// skip pages that already exist and archive pages whose record is gone.
package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/andresuchitra/duitku/internal/logger"
	"github.com/andresuchitra/duitku/internal/store"
)

const (
	// BatchSize defines the number of records to process in a single batch
	BatchSize = 100
)

// SyncBudgetTransactions syncs one user's budget transactions in the given
// date range to a Notion database. It archives stale pages first, then
// creates pages for records Notion does not have yet. Existing pages are
// left untouched because stored transactions are immutable.
func SyncBudgetTransactions(ctx context.Context, st store.Store, notionClient NotionService, notionDBID, userID string, startDate, endDate time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("user_id", userID).
		Time("start_date", startDate).
		Time("end_date", endDate).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := st.ListBudgetTransactions(ctx, userID, store.DateRange{Start: startDate, End: endDate})
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}

	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions from store")

	valid := make(map[string]bool)
	for _, tx := range transactions {
		valid[tx.ID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool)
	for _, page := range notionPages {
		if id := extractRecordID(page); id != "" {
			existing[id] = true
		}
	}

	deleted := archiveStalePages(ctx, notionClient, notionPages, valid, dryRun)

	var created, skipped int
	for i := 0; i < len(transactions); i += BatchSize {
		end := i + BatchSize
		if end > len(transactions) {
			end = len(transactions)
		}

		for _, tx := range transactions[i:end] {
			if existing[tx.ID] {
				skipped++
				continue
			}

			if dryRun {
				log.Info().
					Str("record_id", tx.ID).
					Msg("[DRY RUN] Would create Notion page")
				created++
				continue
			}

			props := BudgetTransactionToNotionProperties(tx)

			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("record_id", tx.ID).
					Msg("Failed to create Notion page")
				continue
			}

			log.Info().
				Str("record_id", tx.ID).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			created++
		}
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(transactions)).
		Msg("Transaction sync completed")

	return nil
}

// SyncFinancialGoals syncs one user's financial goals to a Notion database.
// Unlike transactions, goal progress changes over time, so pages that
// already exist are updated in place.
func SyncFinancialGoals(ctx context.Context, st store.Store, notionClient NotionService, notionDBID, userID string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("user_id", userID).
		Bool("dry_run", dryRun).
		Msg("Starting goals sync to Notion")

	goals, err := st.ListFinancialGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to query goals: %w", err)
	}

	log.Info().Int("goal_count", len(goals)).Msg("Retrieved goals from store")

	valid := make(map[string]bool)
	for _, goal := range goals {
		valid[goal.ID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	pageByRecordID := make(map[string]string)
	for _, page := range notionPages {
		if id := extractRecordID(page); id != "" {
			pageByRecordID[id] = string(page.ID)
		}
	}

	deleted := archiveStalePages(ctx, notionClient, notionPages, valid, dryRun)

	var created, updated int
	for _, goal := range goals {
		props := FinancialGoalToNotionProperties(goal)

		if pageID, ok := pageByRecordID[goal.ID]; ok {
			if dryRun {
				log.Info().
					Str("record_id", goal.ID).
					Str("page_id", pageID).
					Msg("[DRY RUN] Would update Notion page")
				updated++
				continue
			}

			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().
					Err(err).
					Str("record_id", goal.ID).
					Str("page_id", pageID).
					Msg("Failed to update Notion page")
				continue
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().
				Str("record_id", goal.ID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("record_id", goal.ID).
				Msg("Failed to create Notion page")
			continue
		}

		log.Info().
			Str("record_id", goal.ID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("updated", updated).
		Int("total", len(goals)).
		Msg("Goals sync completed")

	return nil
}

// archiveStalePages archives every page whose Record ID is missing or not
// in the valid set. Returns the number of pages archived (or that would be
// archived in dry-run mode).
func archiveStalePages(ctx context.Context, notionClient NotionService, pages []notionapi.Page, valid map[string]bool, dryRun bool) int {
	log := logger.FromContext(ctx)

	var deleted int
	for _, page := range pages {
		recordID := extractRecordID(page)
		if recordID != "" && valid[recordID] {
			continue
		}

		if dryRun {
			log.Info().
				Str("record_id", recordID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive straggler Notion page")
			deleted++
			continue
		}

		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("record_id", recordID).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}

		log.Info().
			Str("record_id", recordID).
			Str("page_id", string(page.ID)).
			Msg("Archived stale Notion page")
		deleted++
	}

	return deleted
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
