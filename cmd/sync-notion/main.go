package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/andresuchitra/duitku/internal/infra/bigquery"
	"github.com/andresuchitra/duitku/internal/logger"
	"github.com/andresuchitra/duitku/internal/notionsync"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	userID := flag.String("user", "", "User ID whose records to sync (required)")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	notionToken := flag.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token (or set NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID for budget transactions (required)")
	goalsDBID := flag.String("goals-db-id", "", "Notion database ID for financial goals (optional)")
	projectID := flag.String("project", os.Getenv("GCP_PROJECT_ID"), "GCP project ID (or set GCP_PROJECT_ID)")
	datasetID := flag.String("dataset", envOr("BQ_DATASET", "duitku"), "BigQuery dataset ID (or set BQ_DATASET)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *startDateStr == "" {
		log.Fatal().Msg("Error: --start-date is required")
	}
	if *endDateStr == "" {
		log.Fatal().Msg("Error: --end-date is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}
	if *projectID == "" {
		log.Fatal().Msg("Error: --project is required (or set GCP_PROJECT_ID)")
	}

	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}

	endDate, err := time.Parse("2006-01-02", *endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}

	if endDate.Before(startDate) {
		log.Fatal().
			Time("start_date", startDate).
			Time("end_date", endDate).
			Msg("Error: end-date must be after start-date")
	}

	// Context with timeout so the CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("user_id", *userID).
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := bigquery.NewRepository(ctx, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	if err := notionsync.SyncBudgetTransactions(ctx, repo, notionClient, *notionDBID, *userID, startDate, endDate, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Transaction sync failed")
	}

	if *goalsDBID != "" {
		if err := notionsync.SyncFinancialGoals(ctx, repo, notionClient, *goalsDBID, *userID, *dryRun); err != nil {
			log.Fatal().Err(err).Msg("Goal sync failed")
		}
	}

	fmt.Println("Sync completed successfully.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
