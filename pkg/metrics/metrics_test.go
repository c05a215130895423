package metrics

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	_ "modernc.org/sqlite"
)

// Each test registers fresh metrics to avoid duplicate-registration panics
// on the default registerer.
func resetRegistry() {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
}

func TestBusinessMetricsCounters(t *testing.T) {
	resetRegistry()
	bm := NewBusinessMetrics("newscred-test")

	bm.AnalysesTotal.WithLabelValues("success").Inc()
	bm.AnalysesTotal.WithLabelValues("success").Inc()
	bm.AnalysesTotal.WithLabelValues("error").Inc()
	bm.HistorySavedTotal.Inc()

	if got := testutil.ToFloat64(bm.AnalysesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("analyses_total{status=success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(bm.AnalysesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("analyses_total{status=error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bm.HistorySavedTotal); got != 1 {
		t.Errorf("history_saved_total = %v, want 1", got)
	}
}

func TestObserveDurationWithoutTrace(t *testing.T) {
	resetRegistry()
	bm := NewBusinessMetrics("newscred-test")

	// No span in context: plain observation, no exemplar, no panic.
	bm.ObserveDurationWithExemplar(context.Background(), bm.EnrichmentDuration, 2.5, "success")

	count := testutil.CollectAndCount(bm.EnrichmentDuration)
	if count != 1 {
		t.Errorf("expected 1 histogram series, got %d", count)
	}
}

func TestUpdateDBStats(t *testing.T) {
	resetRegistry()
	dm := NewDatabaseMetrics("newscred-test")

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	dm.UpdateDBStats(db)

	if got := testutil.ToFloat64(dm.openConnections); got < 0 {
		t.Errorf("db_open_connections = %v, want >= 0", got)
	}
}
