package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andresuchitra/duitku/internal/api/handlers"
	"github.com/andresuchitra/duitku/internal/api/middleware"
	"github.com/andresuchitra/duitku/internal/assistant"
	"github.com/andresuchitra/duitku/internal/auth"
	"github.com/andresuchitra/duitku/internal/export"
	infraBQ "github.com/andresuchitra/duitku/internal/infra/bigquery"
	"github.com/andresuchitra/duitku/internal/jobs/inmemory"
	"github.com/andresuchitra/duitku/internal/logger"
	"github.com/andresuchitra/duitku/internal/store"
	"github.com/andresuchitra/duitku/internal/store/memory"
)

func main() {
	// Load .env before reading flag defaults from the environment
	_ = godotenv.Load()

	var (
		port      = flag.String("port", "8080", "HTTP server port")
		projectID = flag.String("project", os.Getenv("GCP_PROJECT_ID"), "GCP project ID (or set GCP_PROJECT_ID)")
		datasetID = flag.String("dataset", envOr("BQ_DATASET", "duitku"), "BigQuery dataset ID (or set BQ_DATASET)")
		bucket    = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for snapshot exports (or set GCS_BUCKET)")
		authURL   = flag.String("auth-url", os.Getenv("SUPABASE_URL"), "Identity provider base URL (or set SUPABASE_URL)")
		authKey   = flag.String("auth-key", os.Getenv("SUPABASE_ANON_KEY"), "Identity provider API key (or set SUPABASE_ANON_KEY)")
		local     = flag.Bool("local", false, "Run with in-memory storage and a static dev token instead of BigQuery")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Storage and auth
	var (
		st       store.Store
		verifier auth.Verifier
	)
	if *local {
		log.Warn().Msg("Running in local mode: in-memory store, token 'dev-token' maps to user 'local-user'")
		st = memory.New()
		verifier = auth.StaticVerifier{"dev-token": "local-user"}
	} else {
		if *projectID == "" {
			log.Fatal().Msg("-project is required (or set GCP_PROJECT_ID)")
		}
		if *authURL == "" {
			log.Fatal().Msg("-auth-url is required (or set SUPABASE_URL)")
		}

		repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()

		st = repo
		verifier = auth.NewHTTPVerifier(*authURL, *authKey)
	}

	// Assistant
	classifier, err := assistant.NewGeminiClassifier(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini classifier")
	}
	dispatcher := assistant.NewDispatcher(classifier, st, log)

	// Job infrastructure for snapshot exports
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if *bucket != "" {
		uploader, err := export.NewGCSUploader(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS uploader")
		}
		defer uploader.Close()

		if err := jobQueue.Start(workerCtx, export.NewJobHandler(st, uploader, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start export worker")
		}
		log.Info().Str("bucket", *bucket).Msg("Export worker started")
	} else {
		log.Warn().Msg("No GCS bucket configured - snapshot exports will fail until one is set")
	}

	// Handlers
	assistantHandler := handlers.NewAssistantHandler(dispatcher, log)
	recordsHandler := handlers.NewRecordsHandler(st, log)
	exportsHandler := handlers.NewExportsHandler(jobQueue, jobStore, log)

	// Router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/assistant", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assistantHandler.HandleMessage(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	registerRecordRoutes(mux, "/api/transactions",
		recordsHandler.ListTransactions, recordsHandler.CreateTransaction, recordsHandler.DeleteTransaction)
	registerRecordRoutes(mux, "/api/investments",
		recordsHandler.ListInvestments, recordsHandler.CreateInvestment, recordsHandler.DeleteInvestment)
	registerRecordRoutes(mux, "/api/crypto",
		recordsHandler.ListCryptoHoldings, recordsHandler.CreateCryptoHolding, recordsHandler.DeleteCryptoHolding)
	registerRecordRoutes(mux, "/api/goals",
		recordsHandler.ListGoals, recordsHandler.CreateGoal, recordsHandler.DeleteGoal)
	registerRecordRoutes(mux, "/api/business-transactions",
		recordsHandler.ListBusinessTransactions, recordsHandler.CreateBusinessTransaction, recordsHandler.DeleteBusinessTransaction)
	registerRecordRoutes(mux, "/api/recurring",
		recordsHandler.ListRecurringTransactions, recordsHandler.CreateRecurringTransaction, recordsHandler.DeleteRecurringTransaction)

	// Debts have the extra payments sub-resource
	mux.HandleFunc("/api/debts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			recordsHandler.ListDebts(w, r)
		case http.MethodPost:
			recordsHandler.CreateDebt(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/debts/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/debts/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Debt ID is required")
			return
		}

		if id, ok := strings.CutSuffix(rest, "/payments"); ok {
			if r.Method == http.MethodPost {
				recordsHandler.RecordDebtPayment(w, r, id)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}

		if r.Method == http.MethodDelete {
			recordsHandler.DeleteDebt(w, r, rest)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			recordsHandler.GetSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/exports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			exportsHandler.CreateExport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			exportsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		exportsHandler.GetJob(w, r, jobID)
	})

	// Authenticated chain for the API; health stays outside it
	api := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(verifier, log)(mux),
				),
			),
		),
	)

	root := http.NewServeMux()
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	root.Handle("/", api)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// registerRecordRoutes wires the list/create/delete triple shared by most
// record kinds.
func registerRecordRoutes(mux *http.ServeMux, path string, list, create http.HandlerFunc, del func(http.ResponseWriter, *http.Request, string)) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc(path+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, path+"/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Record ID is required")
			return
		}
		del(w, r, id)
	})
}
