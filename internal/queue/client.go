package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/newscred/internal/models"
)

// Task type constants
const (
	TypeSaveHistory  = "newscred:save_history"
	TypeEnrichReport = "newscred:enrich_report"
)

// Queue names. Report enrichment outranks history writes so Ollama work is
// not starved by bulk saves.
const (
	QueueReportEnrichment = "report-enrichment"
	QueueHistoryWrites    = "history-writes"
)

// SaveHistoryPayload carries one finished analysis to the history sink. The
// result travels gzip-compressed since source texts dominate payload size.
type SaveHistoryPayload struct {
	ResultID string `json:"result_id"`
	Result   string `json:"result"` // gzip + base64 encoded AnalysisResult JSON
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// EnrichReportPayload asks the worker to attach LLM reviewer notes to a
// stored report.
type EnrichReportPayload struct {
	ReportID string `json:"report_id"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// EnqueueSaveHistory enqueues an asynchronous history write for a finished
// analysis. The result must already carry its id; the task id reuses it so
// duplicate enqueues collapse.
func (c *Client) EnqueueSaveHistory(ctx context.Context, result *models.AnalysisResult) (string, error) {
	encoded, err := compressResult(result)
	if err != nil {
		return "", err
	}

	payload := SaveHistoryPayload{
		ResultID:   result.ID,
		Result:     encoded,
		EnqueuedAt: time.Now().UnixNano(), // Record enqueue time for queue wait metrics
	}

	// Add tracing context if available
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeSaveHistory),
			attribute.String("task.id", result.ID),
			attribute.String("result.id", result.ID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeSaveHistory, payloadBytes, asynq.TaskID(result.ID))

	opts := []asynq.Option{
		asynq.MaxRetry(3),                   // Database writes rarely need more
		asynq.Timeout(2 * time.Minute),      // Plenty for one insert
		asynq.Queue(QueueHistoryWrites),     // History queue (lower priority)
		asynq.Retention(7 * 24 * time.Hour), // Keep completed tasks for 7 days
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue save history task: %w", err)
	}

	return info.ID, nil
}

// EnqueueEnrichReport enqueues a high-priority reviewer-notes task for a
// saved report.
func (c *Client) EnqueueEnrichReport(ctx context.Context, reportID string) (string, error) {
	payload := EnrichReportPayload{
		ReportID:   reportID,
		EnqueuedAt: time.Now().UnixNano(),
	}

	// Add tracing context if available
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeEnrichReport),
			attribute.String("task.id", reportID+"-enrich"),
			attribute.String("report.id", reportID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	taskID := reportID + "-enrich"
	task := asynq.NewTask(TypeEnrichReport, payloadBytes, asynq.TaskID(taskID))

	opts := []asynq.Option{
		asynq.MaxRetry(10),                  // High retry tolerance for Ollama
		asynq.Timeout(10 * time.Minute),     // Generation can be slow on small hosts
		asynq.Queue(QueueReportEnrichment),  // Enrichment queue (highest priority)
		asynq.Retention(7 * 24 * time.Hour), // Keep completed tasks for 7 days
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue enrich report task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}
