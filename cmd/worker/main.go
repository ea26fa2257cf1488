package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andresuchitra/duitku/internal/export"
	infraBQ "github.com/andresuchitra/duitku/internal/infra/bigquery"
	"github.com/andresuchitra/duitku/internal/jobs/inmemory"
	"github.com/andresuchitra/duitku/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		projectID = flag.String("project", os.Getenv("GCP_PROJECT_ID"), "GCP project ID (or set GCP_PROJECT_ID)")
		datasetID = flag.String("dataset", envOr("BQ_DATASET", "duitku"), "BigQuery dataset ID (or set BQ_DATASET)")
		bucket    = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for snapshot exports (or set GCS_BUCKET)")
	)
	flag.Parse()

	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("-project is required (or set GCP_PROJECT_ID)")
	}
	if *bucket == "" {
		log.Fatal().Msg("-bucket is required (or set GCS_BUCKET)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	uploader, err := export.NewGCSUploader(ctx, *bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS uploader")
	}
	defer uploader.Close()

	// In production the queue would be backed by Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Str("bucket", *bucket).Msg("Starting export worker service")

	handler := export.NewJobHandler(repo, uploader, log)
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Export worker started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down export worker...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Export worker exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
