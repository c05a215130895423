package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/database"
	"github.com/zombar/newscred/internal/engine"
	"github.com/zombar/newscred/internal/explain"
	"github.com/zombar/newscred/internal/models"
	"github.com/zombar/newscred/pkg/metrics"
	"github.com/zombar/newscred/pkg/pagination"
	"github.com/zombar/newscred/pkg/tracing"
)

// requestTimeout bounds one request's pipeline work. Timed-out work is
// discarded, never persisted.
const requestTimeout = 30 * time.Second

const defaultPageLimit = 10

// queueClient is the slice of the asynq client the handler needs. Nil means
// no queue is configured and history writes happen inline.
type queueClient interface {
	EnqueueSaveHistory(ctx context.Context, result *models.AnalysisResult) (string, error)
	EnqueueEnrichReport(ctx context.Context, reportID string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	engine      *engine.Engine
	queueClient queueClient
	metrics     *metrics.BusinessMetrics
	mux         *http.ServeMux
}

// NewHandler creates the API handler with CORS support and metrics.
// queueClient may be nil.
func NewHandler(db *database.DB, eng *engine.Engine, qc queueClient, bm *metrics.BusinessMetrics) http.Handler {
	h := &Handler{
		db:          db,
		engine:      eng,
		queueClient: qc,
		metrics:     bm,
		mux:         http.NewServeMux(),
	}

	h.setupRoutes()

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Wrap with CORS
	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/language", h.handleLanguage)
	h.mux.HandleFunc("/api/explain", h.handleExplain)
	h.mux.HandleFunc("/api/explain/methods", h.handleExplainMethods)
	h.mux.HandleFunc("/api/history", h.handleListHistory)
	h.mux.HandleFunc("/api/history/", h.handleHistoryOperations)
	h.mux.HandleFunc("/api/reports", h.handleListReports)
	h.mux.HandleFunc("/api/reports/", h.handleReportOperations)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// analyzeRequest is the flat wire shape of one analysis request.
type analyzeRequest struct {
	Text              string `json:"text"`
	Detailed          bool   `json:"detailed"`
	SaveReport        bool   `json:"save_report"`
	Explain           bool   `json:"explain"`
	ExplanationMethod string `json:"explanation_method"`
	NumFeatures       int    `json:"num_features"`
	Seed              int64  `json:"seed"`
}

// handleAnalyze runs the full pipeline and persists the result: a report
// row synchronously when requested, a history row always (queued when a
// queue client is configured, inline otherwise).
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.Bool("options.detailed", req.Detailed),
		attribute.Bool("options.explain", req.Explain),
		attribute.Bool("options.save_report", req.SaveReport),
	)

	// Reports always store the detailed fields.
	detailed := req.Detailed || req.SaveReport

	analysisReq := &models.AnalysisRequest{
		Text: req.Text,
		Options: models.RequestOptions{
			Detailed:          detailed,
			SaveReport:        req.SaveReport,
			Explain:           req.Explain,
			ExplanationMethod: req.ExplanationMethod,
			NumFeatures:       req.NumFeatures,
			Seed:              req.Seed,
		},
	}

	ctx := r.Context()
	start := time.Now()

	resultChan := make(chan *models.AnalysisResult, 1)
	errorChan := make(chan error, 1)

	go func() {
		result, err := h.engine.Analyze(ctx, analysisReq)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		h.observeAnalysis(ctx, start, "success")
		if req.Explain {
			h.countExplanation(analysisReq.Options.ExplanationMethod)
		}
		h.persistAndRespond(w, r, result, req.SaveReport)
	case err := <-errorChan:
		h.observeAnalysis(ctx, start, "error")
		respondError(w, err.Error(), statusForError(err))
	case <-time.After(requestTimeout):
		h.observeAnalysis(ctx, start, "timeout")
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// persistAndRespond saves the finished analysis and writes the response.
// Persistence failures degrade: the analysis itself succeeded, so the
// caller still gets the result, without the ids that failed to materialize.
func (h *Handler) persistAndRespond(w http.ResponseWriter, r *http.Request, result *models.AnalysisResult, saveReport bool) {
	ctx := r.Context()

	if saveReport {
		report := *result
		report.ID = ""
		reportID, err := h.db.Save(ctx, models.CollectionReports, &report)
		if err != nil {
			respondError(w, "Failed to save report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		result.ReportID = reportID
		if h.metrics != nil {
			h.metrics.ReportsSavedTotal.Inc()
		}
		tracing.SetSpanAttributes(ctx, attribute.String("report.id", reportID))

		if h.queueClient != nil {
			if _, err := h.queueClient.EnqueueEnrichReport(ctx, reportID); err != nil {
				// Notes are an enrichment; the report itself is saved.
				logPersistenceWarning(r, "failed to enqueue report enrichment", err)
			}
		}
	}

	// History keeps every analysis. The history row is its own entity with
	// its own id, and never carries the per-request explanation.
	history := *result
	history.ID = uuid.NewString()
	history.Explanation = nil

	if h.queueClient != nil {
		if _, err := h.queueClient.EnqueueSaveHistory(ctx, &history); err != nil {
			logPersistenceWarning(r, "failed to enqueue history write", err)
		} else {
			result.ID = history.ID
		}
	} else {
		if _, err := h.db.Save(ctx, models.CollectionHistory, &history); err != nil {
			logPersistenceWarning(r, "failed to save history row", err)
		} else {
			result.ID = history.ID
			if h.metrics != nil {
				h.metrics.HistorySavedTotal.Inc()
			}
		}
	}

	respondJSON(w, result, http.StatusOK)
}

// handleLanguage exposes the language detector on its own.
func (h *Handler) handleLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	info, err := h.engine.DetectLanguage(req.Text)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, info, http.StatusOK)
}

// handleExplain runs the explanation methods without persisting anything.
func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text        string `json:"text"`
		Method      string `json:"method"`
		NumFeatures int    `json:"num_features"`
		Seed        int64  `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.String("explain.method", req.Method),
	)

	ctx := r.Context()

	resultChan := make(chan *models.ExplanationResult, 1)
	errorChan := make(chan error, 1)

	go func() {
		explanation, err := h.engine.Explain(ctx, req.Text, explain.Options{
			Method:      req.Method,
			NumFeatures: req.NumFeatures,
			Seed:        req.Seed,
		})
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- explanation
	}()

	select {
	case explanation := <-resultChan:
		h.countExplanation(explanation.Method)
		respondJSON(w, explanation, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), statusForError(err))
	case <-time.After(requestTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleExplainMethods lists the explanation methods. Static capability
// descriptor, no computation.
func (h *Handler) handleExplainMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, h.engine.Methods(), http.StatusOK)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	h.listCollection(w, r, models.CollectionHistory)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	h.listCollection(w, r, models.CollectionReports)
}

// listCollection serves one page of a collection, newest first, inside the
// {items, total} pagination envelope.
func (h *Handler) listCollection(w http.ResponseWriter, r *http.Request, collection string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultPageLimit
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	ctx := r.Context()

	resultChan := make(chan *pagination.OffsetResult[*models.AnalysisResult], 1)
	errorChan := make(chan error, 1)

	go func() {
		items, total, err := h.db.ListPage(ctx, collection, limit, offset)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- pagination.NewOffsetResult(items, total, limit, offset)
	}()

	select {
	case page := <-resultChan:
		respondJSON(w, page, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(requestTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleHistoryOperations handles GET and DELETE for one history entry.
func (h *Handler) handleHistoryOperations(w http.ResponseWriter, r *http.Request) {
	h.collectionOperations(w, r, models.CollectionHistory, "/api/history/")
}

// handleReportOperations handles GET and DELETE for one report.
func (h *Handler) handleReportOperations(w http.ResponseWriter, r *http.Request) {
	h.collectionOperations(w, r, models.CollectionReports, "/api/reports/")
}

func (h *Handler) collectionOperations(w http.ResponseWriter, r *http.Request, collection, prefix string) {
	id := r.URL.Path[len(prefix):]
	if idx := strings.Index(id, "/"); idx != -1 {
		id = id[:idx]
	}
	if id == "" {
		respondError(w, "ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getResult(w, r, collection, id)
	case http.MethodDelete:
		h.deleteResult(w, r, collection, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getResult retrieves one stored result
func (h *Handler) getResult(w http.ResponseWriter, r *http.Request, collection, id string) {
	resultChan := make(chan *models.AnalysisResult, 1)
	errorChan := make(chan error, 1)

	go func() {
		result, err := h.db.Get(r.Context(), collection, id)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		respondJSON(w, result, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), statusForError(err))
	case <-time.After(requestTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// deleteResult deletes one stored result
func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request, collection, id string) {
	errorChan := make(chan error, 1)
	doneChan := make(chan bool, 1)

	go func() {
		if err := h.db.Delete(r.Context(), collection, id); err != nil {
			errorChan <- err
			return
		}
		doneChan <- true
	}()

	select {
	case <-doneChan:
		w.WriteHeader(http.StatusNoContent)
	case err := <-errorChan:
		respondError(w, err.Error(), statusForError(err))
	case <-time.After(requestTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func (h *Handler) observeAnalysis(ctx context.Context, start time.Time, status string) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveDurationWithExemplar(ctx, h.metrics.AnalysisDuration, time.Since(start).Seconds(), status)
	h.metrics.AnalysesTotal.WithLabelValues(status).Inc()
}

func (h *Handler) countExplanation(method string) {
	if h.metrics == nil {
		return
	}
	if method == "" {
		method = models.MethodLime
	}
	h.metrics.ExplanationsTotal.WithLabelValues(method).Inc()
}

// logPersistenceWarning records a post-analysis persistence failure. The
// analysis itself succeeded, so these degrade instead of failing the request.
func logPersistenceWarning(r *http.Request, msg string, err error) {
	slog.Warn(msg,
		"error", err,
		"path", r.URL.Path,
		"trace_id", tracing.TraceIDFromContext(r.Context()),
	)
}

// statusForError maps the typed application errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case apperr.IsInvalidInput(err):
		return http.StatusBadRequest
	case apperr.IsModelUnavailable(err):
		return http.StatusServiceUnavailable
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
