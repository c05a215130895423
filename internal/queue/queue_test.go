package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

// TestSaveHistoryPayload tests the SaveHistoryPayload structure
func TestSaveHistoryPayload(t *testing.T) {
	payload := SaveHistoryPayload{
		ResultID:   "result-123",
		Result:     "H4sIAAAAAAAA",
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded SaveHistoryPayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.ResultID, decoded.ResultID)
	assert.Equal(t, payload.Result, decoded.Result)
	assert.Equal(t, payload.EnqueuedAt, decoded.EnqueuedAt)
}

// TestEnrichReportPayload tests the EnrichReportPayload structure
func TestEnrichReportPayload(t *testing.T) {
	payload := EnrichReportPayload{
		ReportID:   "report-456",
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded EnrichReportPayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.ReportID, decoded.ReportID)
	assert.Equal(t, payload.EnqueuedAt, decoded.EnqueuedAt)
}

// TestIsRetriableOllamaError tests error classification
func TestIsRetriableOllamaError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Connection refused error",
			err:      errors.New("connection refused"),
			expected: true,
		},
		{
			name:     "Timeout error",
			err:      errors.New("request timeout"),
			expected: true,
		},
		{
			name:     "Context deadline exceeded",
			err:      errors.New("context deadline exceeded"),
			expected: true,
		},
		{
			name:     "Service unavailable",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "Bad gateway",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "Network unreachable",
			err:      errors.New("network is unreachable"),
			expected: true,
		},
		{
			name:     "Invalid request error",
			err:      errors.New("invalid request format"),
			expected: false,
		},
		{
			name:     "Generic error",
			err:      errors.New("some other error"),
			expected: false,
		},
		{
			name:     "Empty error",
			err:      errors.New(""),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetriableOllamaError(tt.err)
			assert.Equal(t, tt.expected, result, "Error: %v", tt.err)
		})
	}
}

// TestRetryDelay tests the per-task-type backoff schedule
func TestRetryDelay(t *testing.T) {
	enrichTask := asynq.NewTask(TypeEnrichReport, []byte(`{}`))
	testErr := errors.New("connection refused")

	delays := []time.Duration{
		30 * time.Second,
		1 * time.Minute,
		2 * time.Minute,
		5 * time.Minute,
		10 * time.Minute,
		20 * time.Minute,
		30 * time.Minute,
		1 * time.Hour,
		2 * time.Hour,
		4 * time.Hour,
	}

	for i := 0; i < len(delays); i++ {
		delay := retryDelay(i, testErr, enrichTask)
		assert.Equal(t, delays[i], delay, "Retry %d should have delay %v", i, delays[i])
	}

	// Past the ladder the last delay repeats
	assert.Equal(t, 4*time.Hour, retryDelay(15, testErr, enrichTask))

	historyTask := asynq.NewTask(TypeSaveHistory, []byte(`{}`))

	historyDelays := []time.Duration{
		1 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
	}

	for i := 0; i < len(historyDelays); i++ {
		delay := retryDelay(i, testErr, historyTask)
		assert.Equal(t, historyDelays[i], delay, "History retry %d should have delay %v", i, historyDelays[i])
	}
	assert.Equal(t, 15*time.Minute, retryDelay(9, testErr, historyTask))
}

// TestQueuePriorities tests that queue priorities favor enrichment
func TestQueuePriorities(t *testing.T) {
	expectedPriorities := map[string]int{
		QueueReportEnrichment: 6,
		QueueHistoryWrites:    4,
	}

	assert.Equal(t, 6, expectedPriorities[QueueReportEnrichment], "Report enrichment priority should be 6")
	assert.Equal(t, 4, expectedPriorities[QueueHistoryWrites], "History writes priority should be 4")
	assert.Greater(t, expectedPriorities[QueueReportEnrichment], expectedPriorities[QueueHistoryWrites])
}

// TestTaskTypeConstants tests that task type constants are defined correctly
func TestTaskTypeConstants(t *testing.T) {
	assert.Equal(t, "newscred:save_history", TypeSaveHistory)
	assert.Equal(t, "newscred:enrich_report", TypeEnrichReport)
}
