package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequestIncrementsCounterAndHistogram(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordRequest("anthropic", "claude-3-5-sonnet-20241022", "success", 150*time.Millisecond)
	m.RecordRequest("anthropic", "claude-3-5-sonnet-20241022", "error", 50*time.Millisecond)

	if count := testutil.CollectAndCount(m.RequestCounter); count != 2 {
		t.Fatalf("RequestCounter label combinations = %d, want 2", count)
	}
	if got := testutil.ToFloat64(m.RequestCounter.WithLabelValues("anthropic", "claude-3-5-sonnet-20241022", "success")); got != 1 {
		t.Fatalf("success count = %v, want 1", got)
	}
}

func TestRecordCacheLookupSplitsHitsAndMisses(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCacheLookup("modelcache", true)
	m.RecordCacheLookup("modelcache", true)
	m.RecordCacheLookup("modelcache", false)

	if got := testutil.ToFloat64(m.CacheHits.WithLabelValues("modelcache")); got != 2 {
		t.Fatalf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses.WithLabelValues("modelcache")); got != 1 {
		t.Fatalf("misses = %v, want 1", got)
	}
}

func TestSetCacheResidentCountSetsGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetCacheResidentCount("diffusioncache", 2)
	if got := testutil.ToFloat64(m.CacheResidentCount.WithLabelValues("diffusioncache")); got != 2 {
		t.Fatalf("gauge = %v, want 2", got)
	}
}

func TestRecordTokenThroughputObserves(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordTokenThroughput("openai", "gpt-4o", 42.0)
	if count := testutil.CollectAndCount(m.TokenThroughput); count != 1 {
		t.Fatalf("TokenThroughput label combinations = %d, want 1", count)
	}
}
