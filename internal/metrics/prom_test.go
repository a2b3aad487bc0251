package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetBuildInfo("1.0.0", "abc", "2024-01-01")
	RecordRequest("chat", true)
	RecordRequest("chat", false)
	RecordFragments("llama3.2", 5)
	ObserveRequestDuration("chat", "llama3.2", 100*time.Millisecond)
	RecordWarmUp(false)

	if v := testutil.ToFloat64(requests.WithLabelValues("chat", "success")); v != 1 {
		t.Fatalf("requests: %v", v)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("chat", "error")); v != 1 {
		t.Fatalf("requests: %v", v)
	}
	if v := testutil.ToFloat64(fragments.WithLabelValues("llama3.2")); v != 5 {
		t.Fatalf("fragments: %v", v)
	}
	if v := testutil.ToFloat64(warmUps.WithLabelValues("error")); v != 1 {
		t.Fatalf("warm-ups: %v", v)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2024-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
}
