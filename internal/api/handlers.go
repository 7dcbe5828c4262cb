package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"seopipe/internal/metrics"
	"seopipe/internal/model"
	"seopipe/internal/pipeline"
	"seopipe/internal/store"
)

const (
	minOptimizeChars = 10
	minOptimizeWords = 5
	minTargetLength  = 50
	maxTargetLength  = 5000
	defaultLength    = 500
	defaultTone      = "professional"
)

// ---------------------------------------------------------------------------
// POST /api/analyze
// ---------------------------------------------------------------------------

type analyzeRequest struct {
	URL           string `json:"url"`
	Content       string `json:"content"`
	TargetKeyword string `json:"target_keyword"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	req.Content = strings.TrimSpace(req.Content)
	req.TargetKeyword = strings.TrimSpace(req.TargetKeyword)

	if req.TargetKeyword == "" {
		writeError(w, http.StatusBadRequest, "target_keyword is required")
		return
	}
	if req.URL == "" && req.Content == "" {
		writeError(w, http.StatusBadRequest, "either url or content must be provided")
		return
	}
	if req.URL != "" && req.Content != "" {
		writeError(w, http.StatusBadRequest, "provide either url or content, not both")
		return
	}
	if req.URL != "" {
		u, err := url.Parse(req.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			writeError(w, http.StatusBadRequest, "url must be a valid http or https URL")
			return
		}
	}

	rec := model.NewAnalysisRecord(uuid.New().String(), req.URL, req.Content, req.TargetKeyword)
	s.createAndEnqueue(w, r, rec, pipeline.StageAnalyze)
}

// ---------------------------------------------------------------------------
// POST /api/optimize
// ---------------------------------------------------------------------------

type optimizeRequest struct {
	Content       string `json:"content"`
	TargetKeyword string `json:"target_keyword"`
	TargetLength  *int   `json:"target_length"`
	Tone          string `json:"tone"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	req.TargetKeyword = strings.TrimSpace(req.TargetKeyword)
	req.Tone = strings.TrimSpace(req.Tone)

	if req.TargetKeyword == "" {
		writeError(w, http.StatusBadRequest, "target_keyword is required")
		return
	}
	if len(req.Content) < minOptimizeChars {
		writeError(w, http.StatusBadRequest, "content must be at least 10 characters")
		return
	}
	if len(strings.Fields(req.Content)) < minOptimizeWords {
		writeError(w, http.StatusBadRequest, "content must contain at least 5 words")
		return
	}

	targetLength := defaultLength
	if req.TargetLength != nil {
		targetLength = *req.TargetLength
	}
	if targetLength < minTargetLength || targetLength > maxTargetLength {
		writeError(w, http.StatusBadRequest, "target_length must be between 50 and 5000")
		return
	}

	// Tone is matched case-insensitively and stored lowercase.
	tone := strings.ToLower(req.Tone)
	if tone == "" {
		tone = defaultTone
	}
	if !model.IsValidTone(tone) {
		writeError(w, http.StatusBadRequest, "tone must be one of: "+strings.Join(model.ValidTones, ", "))
		return
	}

	rec := model.NewOptimizationRecord(uuid.New().String(), req.Content, req.TargetKeyword, targetLength, tone)
	s.createAndEnqueue(w, r, rec, pipeline.StageOptimize)
}

// createAndEnqueue persists the record, then enqueues its first stage. The
// record is visible in processing state as soon as this returns.
func (s *Server) createAndEnqueue(w http.ResponseWriter, r *http.Request, rec model.Record, stage string) {
	ctx := r.Context()

	if err := s.records.CreateRecord(ctx, rec); err != nil {
		slog.Error("create record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create record")
		return
	}
	if err := s.tasks.Enqueue(ctx, stage, rec.ID); err != nil {
		slog.Error("enqueue failed", "stage", stage, "record_id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}

	metrics.RecordsCreated.WithLabelValues(rec.Kind).Inc()
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     rec.ID,
		"kind":   rec.Kind,
		"status": rec.Status,
	})
}

// ---------------------------------------------------------------------------
// GET /api/records
// ---------------------------------------------------------------------------

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != model.KindAnalysis && kind != model.KindOptimization {
		writeError(w, http.StatusBadRequest, "kind must be analysis or optimization")
		return
	}

	records, err := s.records.ListRecords(r.Context(), kind)
	if err != nil {
		slog.Error("list records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ---------------------------------------------------------------------------
// GET /api/records/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := s.records.GetRecord(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		slog.Error("get record failed", "record_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get record")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ---------------------------------------------------------------------------
// GET /api/health
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
