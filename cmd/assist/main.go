package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/andresuchitra/duitku/internal/assistant"
	infraBQ "github.com/andresuchitra/duitku/internal/infra/bigquery"
	"github.com/andresuchitra/duitku/internal/logger"
	"github.com/andresuchitra/duitku/internal/store"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

const historyLimit = 20

func main() {
	_ = godotenv.Load()

	var (
		userID    = flag.String("user", "local-user", "User ID to act as")
		projectID = flag.String("project", os.Getenv("GCP_PROJECT_ID"), "GCP project ID (or set GCP_PROJECT_ID)")
		datasetID = flag.String("dataset", envOr("BQ_DATASET", "duitku"), "BigQuery dataset ID (or set BQ_DATASET)")
		local     = flag.Bool("local", false, "Use an in-memory store instead of BigQuery")
	)
	flag.Parse()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	var st store.Store
	if *local {
		st = memory.New()
	} else {
		if *projectID == "" {
			log.Fatal().Msg("-project is required (or set GCP_PROJECT_ID)")
		}
		repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		st = repo
	}

	classifier, err := assistant.NewGeminiClassifier(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini classifier")
	}
	dispatcher := assistant.NewDispatcher(classifier, st, log)

	fmt.Printf("Duitku assistant (user %s). Type a message, or 'exit' to quit.\n", *userID)

	var history []assistant.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := dispatcher.Dispatch(ctx, *userID, line, history)
		if err != nil {
			log.Error().Err(err).Msg("Dispatch failed")
			continue
		}

		fmt.Println(result.Response)

		history = append(history,
			assistant.Message{Role: "user", Content: line},
			assistant.Message{Role: "model", Content: result.Response},
		)
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
