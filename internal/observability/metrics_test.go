package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/elections", 200, time.Millisecond)
	m.ObserveProviderAttempt("Google Civic Information API", "success", time.Second)
	m.ObserveMerge(3, 1, nil)
	m.APIInflightInc()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("POST", "/api/ballot-data/collect", 500, 120*time.Millisecond)
	m.ObserveProviderAttempt("Google Civic Information API", "rate_limited", 300*time.Millisecond)
	m.ObserveProviderAttempt("Democracy Works API", "success", 2*time.Second)
	m.ObserveMerge(4, 2, nil)
	m.ObserveMerge(0, 0, errors.New("boom"))

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`vg_api_requests_total{method="POST",route="/api/ballot-data/collect",status="500"} 1`,
		`vg_api_requests_error_total 1`,
		`vg_provider_attempts_total{provider="Google Civic Information API",outcome="rate_limited"} 1`,
		`vg_provider_attempt_duration_seconds_bucket{provider="Democracy Works API",outcome="success",le="2"} 1`,
		`vg_provider_attempt_duration_seconds_bucket{provider="Democracy Works API",outcome="success",le="1"} 0`,
		`vg_ballot_merges_total{status="failed"} 1`,
		`vg_ballots_written_total 4`,
		`vg_sample_ballots_deleted_total 2`,
		`# TYPE vg_db_stats gauge`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestLabelString(t *testing.T) {
	got := labelString([]string{"provider", "outcome"}, []string{`a"b`})
	if got != `{provider="a\"b",outcome="unknown"}` {
		t.Fatalf("unexpected labels %s", got)
	}
	if withLe("", "+Inf") != `{le="+Inf"}` {
		t.Fatalf("unexpected le labels")
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" authorization=Bearer x , broken, =v, k= ,x-team=civic")
	if len(got) != 2 || got["authorization"] != "Bearer x" || got["x-team"] != "civic" {
		t.Fatalf("unexpected headers %v", got)
	}
	if ParseHeaders("  ") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of range")
	}
}
