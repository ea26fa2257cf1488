package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchitra/duitku/internal/api/middleware"
	"github.com/andresuchitra/duitku/internal/export"
	"github.com/andresuchitra/duitku/internal/jobs"
)

// ExportsHandler handles snapshot export and job status endpoints.
type ExportsHandler struct {
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{
		publisher: publisher,
		jobStore:  jobStore,
		log:       log,
	}
}

// CreateExport handles POST /api/exports. It enqueues a snapshot export
// job for the authenticated user and returns immediately.
func (h *ExportsHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	job := &jobs.ExportSnapshotJob{
		UserID:     userID,
		ObjectName: export.ObjectName(userID, time.Now()),
	}

	if err := h.publisher.PublishExportSnapshot(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to enqueue export job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue export job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("user_id", userID).
		Str("object_name", job.ObjectName).
		Msg("Export job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"object_name": job.ObjectName,
		"status":      string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}. Jobs belonging to other users are
// reported as not found.
func (h *ExportsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil || job.UserID != userID {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs, scoped to the authenticated user.
func (h *ExportsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: userID,
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
