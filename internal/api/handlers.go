package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesops/giftware-scraper/internal/database"
	"github.com/salesops/giftware-scraper/internal/models"
	"github.com/salesops/giftware-scraper/internal/scraper"
)

// ProgressSource exposes the live state of the running batch.
type ProgressSource interface {
	Progress() scraper.Progress
}

type Handlers struct {
	progress ProgressSource
	archive  *database.DB
	logger   *slog.Logger
}

// NewHandlers builds the read-only monitoring handlers. archive may be nil
// when no database is configured.
func NewHandlers(progress ProgressSource, archive *database.DB, logger *slog.Logger) *Handlers {
	return &Handlers{
		progress: progress,
		archive:  archive,
		logger:   logger,
	}
}

// StatusResponse summarises the current run without its record payload.
type StatusResponse struct {
	RunID         string `json:"run_id"`
	Total         int    `json:"total"`
	Processed     int    `json:"processed"`
	Found         int    `json:"found"`
	NotFound      int    `json:"not_found"`
	Errors        int    `json:"errors"`
	Authenticated bool   `json:"authenticated"`
}

// GetStatus handles live run status retrieval
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	p := h.progress.Progress()
	h.respondJSON(w, http.StatusOK, StatusResponse{
		RunID:         p.RunID,
		Total:         p.Total,
		Processed:     p.Processed,
		Found:         p.Found,
		NotFound:      p.NotFound,
		Errors:        p.Errors,
		Authenticated: p.Authenticated,
	})
}

// GetRecords handles retrieval of the current run's records so far
func (h *Handlers) GetRecords(w http.ResponseWriter, r *http.Request) {
	p := h.progress.Progress()
	records := p.Records
	if records == nil {
		records = []models.ProductRecord{}
	}
	h.respondJSON(w, http.StatusOK, records)
}

// GetRunRecords handles archived run retrieval
func (h *Handlers) GetRunRecords(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.respondError(w, http.StatusNotFound, "run archive not configured")
		return
	}

	runID := chi.URLParam(r, "runID")
	if runID == "" {
		h.respondError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	records, err := h.archive.RecordsByRun(r.Context(), runID)
	if err != nil {
		h.logger.Error("failed to load archived run", "runId", runID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if len(records) == 0 {
		h.respondError(w, http.StatusNotFound, "run not found")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
