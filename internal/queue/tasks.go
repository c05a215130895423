package queue

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/models"
)

// startConsumerSpan recreates the trace context a producer stored in the
// task payload and starts a consumer span under it. Returns the input
// context untouched when the payload carried no trace.
func startConsumerSpan(ctx context.Context, traceIDHex, spanIDHex string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if traceIDHex == "" || spanIDHex == "" {
		if existing := trace.SpanFromContext(ctx); existing.SpanContext().IsValid() {
			existing.SetAttributes(attrs...)
		}
		return ctx, nil
	}

	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx, nil
	}
	spanID, err := trace.SpanIDFromHex(spanIDHex)
	if err != nil {
		return ctx, nil
	}

	remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

	return otel.Tracer("newscred").Start(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)
}

func queueWait(enqueuedAt int64) time.Duration {
	if enqueuedAt <= 0 {
		return 0
	}
	return time.Since(time.Unix(0, enqueuedAt))
}

// handleSaveHistory writes one finished analysis to the history sink.
// Reruns of an already-applied task succeed without a second row.
func (w *Worker) handleSaveHistory(ctx context.Context, t *asynq.Task) error {
	var payload SaveHistoryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	result, err := decompressResult(payload.Result)
	if err != nil {
		w.logger.Error("failed to decode history payload", "result_id", payload.ResultID, "error", err)
		return fmt.Errorf("invalid history payload: %w", err)
	}
	if payload.ResultID == "" || result.ID != payload.ResultID {
		return fmt.Errorf("invalid history payload: result id mismatch")
	}

	wait := queueWait(payload.EnqueuedAt)
	w.logger.Info("saving analysis to history",
		"result_id", payload.ResultID,
		"label", result.Label,
		"queue_wait_seconds", wait.Seconds(),
	)

	ctx, span := startConsumerSpan(ctx, payload.TraceID, payload.SpanID,
		attribute.String("task.type", TypeSaveHistory),
		attribute.String("result.id", payload.ResultID),
		attribute.Float64("queue.wait_time_seconds", wait.Seconds()),
		attribute.Int64("enqueued_at", payload.EnqueuedAt),
	)
	if span != nil {
		defer span.End()
		span.AddEvent("task_processing_started", trace.WithAttributes(
			attribute.Float64("wait_time_seconds", wait.Seconds()),
		))
	}

	// A retried task may have committed before the previous attempt failed.
	if _, err := w.db.Get(ctx, models.CollectionHistory, payload.ResultID); err == nil {
		w.logger.Info("history row already present", "result_id", payload.ResultID)
		return nil
	} else if !apperr.IsNotFound(err) {
		return fmt.Errorf("failed to check existing history row: %w", err)
	}

	if _, err := w.db.Save(ctx, models.CollectionHistory, result); err != nil {
		return fmt.Errorf("failed to save history row: %w", err)
	}

	w.businessMetrics.HistorySavedTotal.Inc()
	w.logger.Info("history row saved", "result_id", payload.ResultID)
	return nil
}

// handleEnrichReport fetches a saved report, asks Ollama for reviewer notes
// and attaches them. Connection-class failures return an error so Asynq
// walks the retry ladder.
func (w *Worker) handleEnrichReport(ctx context.Context, t *asynq.Task) error {
	var payload EnrichReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	wait := queueWait(payload.EnqueuedAt)

	w.logger.Info("enriching report with reviewer notes",
		"report_id", payload.ReportID,
		"retry_count", retryCount,
		"max_retries", maxRetry,
		"queue_wait_seconds", wait.Seconds(),
	)

	ctx, span := startConsumerSpan(ctx, payload.TraceID, payload.SpanID,
		attribute.String("task.type", TypeEnrichReport),
		attribute.String("report.id", payload.ReportID),
		attribute.Int("retry_count", retryCount),
		attribute.Float64("queue.wait_time_seconds", wait.Seconds()),
		attribute.Int64("enqueued_at", payload.EnqueuedAt),
	)
	if span != nil {
		defer span.End()
		span.AddEvent("task_processing_started", trace.WithAttributes(
			attribute.Float64("wait_time_seconds", wait.Seconds()),
		))
	}

	if w.ollama == nil {
		w.logger.Info("no Ollama client configured, skipping report enrichment",
			"report_id", payload.ReportID)
		return nil
	}

	report, err := w.db.Get(ctx, models.CollectionReports, payload.ReportID)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Deleted between save and enrichment; nothing to retry.
			w.logger.Warn("report vanished before enrichment", "report_id", payload.ReportID)
			return nil
		}
		return fmt.Errorf("failed to retrieve report: %w", err)
	}

	timer := time.Now()
	var status string
	defer func() {
		if status != "" {
			duration := time.Since(timer).Seconds()
			w.businessMetrics.ObserveDurationWithExemplar(ctx, w.businessMetrics.EnrichmentDuration, duration, status)
			w.businessMetrics.EnrichmentsTotal.WithLabelValues(status).Inc()
		}
	}()

	notes, err := w.ollama.GenerateReviewerNotes(ctx, report)
	if err != nil {
		status = "error"
		if isRetriableOllamaError(err) {
			w.logger.Warn("retriable Ollama error, will retry",
				"report_id", payload.ReportID,
				"error", err,
				"retry_count", retryCount,
			)
			return err // Let Asynq retry
		}

		w.logger.Error("permanent error generating reviewer notes",
			"report_id", payload.ReportID,
			"error", err,
		)
		return fmt.Errorf("failed to generate reviewer notes: %w", err)
	}

	if err := w.db.UpdateReviewerNotes(ctx, payload.ReportID, notes); err != nil {
		status = "error"
		if apperr.IsNotFound(err) {
			w.logger.Warn("report deleted during enrichment", "report_id", payload.ReportID)
			status = ""
			return nil
		}
		return fmt.Errorf("failed to attach reviewer notes: %w", err)
	}

	status = "success"
	w.businessMetrics.NotesGeneratedTotal.Inc()

	w.logger.Info("report enrichment completed",
		"report_id", payload.ReportID,
		"notes_length", len(notes),
		"retry_count", retryCount,
	)

	return nil
}

// isRetriableOllamaError determines if an error is retriable
// (connection/timeout) vs permanent (invalid input)
func isRetriableOllamaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"context deadline exceeded",
		"context canceled",
		"i/o timeout",
		"no such host",
		"network is unreachable",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// compressResult gzips and base64 encodes a result for transport through
// the queue.
func compressResult(result *models.AnalysisResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)

	if _, err := gzWriter.Write(data); err != nil {
		return "", fmt.Errorf("failed to write to gzip: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decompressResult reverses compressResult.
func decompressResult(encoded string) (*models.AnalysisResult, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty result payload")
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	gzReader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	data, err := io.ReadAll(gzReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed data: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}
