package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	authclient "github.com/HugoQuintal01/pocketbase-login-use-case"
)

type fakeSource struct {
	snapshot authclient.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authclient.MetricsSnapshot {
	return f.snapshot
}

func (f *fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func TestRenderCounters(t *testing.T) {
	src := &fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters: map[authclient.MetricID]uint64{
				authclient.MetricSignInSuccess: 7,
				authclient.MetricSignInFailure: 2,
			},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	}

	out := NewPrometheusExporterFromSource(src).Render()

	if !strings.Contains(out, "authclient_sign_in_success_total 7") {
		t.Fatalf("missing success counter:\n%s", out)
	}
	if !strings.Contains(out, "authclient_sign_in_failure_total 2") {
		t.Fatalf("missing failure counter:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE authclient_sign_in_success_total counter") {
		t.Fatalf("missing TYPE line:\n%s", out)
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	src := &fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters: map[authclient.MetricID]uint64{authclient.MetricSignInSuccess: 1},
			Histograms: map[authclient.MetricID][]uint64{
				authclient.MetricSubmitLatency: {1, 1, 0, 0, 0, 0, 0, 1},
			},
		},
	}

	out := NewPrometheusExporterFromSource(src).Render()

	if !strings.Contains(out, `authclient_submit_latency_seconds_bucket{le="0.005"} 1`) {
		t.Fatalf("missing first bucket:\n%s", out)
	}
	if !strings.Contains(out, `authclient_submit_latency_seconds_bucket{le="0.01"} 2`) {
		t.Fatalf("buckets must be cumulative:\n%s", out)
	}
	if !strings.Contains(out, `authclient_submit_latency_seconds_bucket{le="+Inf"} 3`) {
		t.Fatalf("missing +Inf bucket:\n%s", out)
	}
	if !strings.Contains(out, "authclient_submit_latency_seconds_count 3") {
		t.Fatalf("missing count:\n%s", out)
	}
}

func TestRenderAuditDropped(t *testing.T) {
	src := &fakeSource{dropped: 5}

	out := NewPrometheusExporterFromSource(src).Render()
	if !strings.Contains(out, "authclient_audit_dropped_total 5") {
		t.Fatalf("missing audit dropped counter:\n%s", out)
	}
}

func TestRenderEmptyWhenNothingRecorded(t *testing.T) {
	out := NewPrometheusExporterFromSource(&fakeSource{}).Render()
	if out != "" {
		t.Fatalf("expected empty exposition, got:\n%s", out)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	src := &fakeSource{
		snapshot: authclient.MetricsSnapshot{
			Counters:   map[authclient.MetricID]uint64{authclient.MetricSignOut: 1},
			Histograms: map[authclient.MetricID][]uint64{},
		},
	}

	rec := httptest.NewRecorder()
	NewPrometheusExporterFromSource(src).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authclient_sign_out_total 1") {
		t.Fatalf("missing counter in response:\n%s", rec.Body.String())
	}
}
