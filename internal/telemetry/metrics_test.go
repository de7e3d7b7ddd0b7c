package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordSearch("quick", "ok", time.Second)
	m.RecordScanned(5)
	m.RecordProviderCall("synthesize", "ok", time.Second)
	m.RecordCache("query", true)
	if m.Registry() == nil {
		t.Fatal("nil metrics must still return a usable registry")
	}
}

func TestRecordSearch(t *testing.T) {
	m := NewMetrics()
	m.RecordSearch("deep", "ok", 250*time.Millisecond)
	m.RecordSearch("deep", "ok", 100*time.Millisecond)
	m.RecordSearch("deep", "fallback", 50*time.Millisecond)

	if got := testutil.ToFloat64(m.searchesTotal.WithLabelValues("deep", "ok")); got != 2 {
		t.Fatalf("searches ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.searchesTotal.WithLabelValues("deep", "fallback")); got != 1 {
		t.Fatalf("searches fallback = %v, want 1", got)
	}
}

func TestRecordScanned(t *testing.T) {
	m := NewMetrics()
	m.RecordScanned(7)
	m.RecordScanned(0)
	m.RecordScanned(-3)
	if got := testutil.ToFloat64(m.documentsScanned); got != 7 {
		t.Fatalf("documents scanned = %v, want 7", got)
	}
}

func TestRecordCacheOutcomes(t *testing.T) {
	m := NewMetrics()
	m.RecordCache("query", true)
	m.RecordCache("query", false)
	m.RecordCache("query", false)

	if got := testutil.ToFloat64(m.cacheRequests.WithLabelValues("query", "hit")); got != 1 {
		t.Fatalf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheRequests.WithLabelValues("query", "miss")); got != 2 {
		t.Fatalf("misses = %v, want 2", got)
	}
}
