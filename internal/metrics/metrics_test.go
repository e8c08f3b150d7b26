package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCountsTrials(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	rec.ObserveTrial(OutcomeRejected, 2*time.Millisecond)
	rec.ObserveTrial(OutcomeRejected, 3*time.Millisecond)
	rec.ObserveTrial(OutcomeAccepted, time.Millisecond)

	if got := testutil.ToFloat64(rec.Trials.WithLabelValues(OutcomeRejected)); got != 2 {
		t.Fatalf("occult_trials_total{outcome=rejected} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.Trials.WithLabelValues(OutcomeAccepted)); got != 1 {
		t.Fatalf("occult_trials_total{outcome=accepted} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rec.TrialDuration); got != 1 {
		t.Fatalf("duration histogram series = %d, want 1", got)
	}
}

func TestRecorderTracksCandidates(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	rec.ObserveCandidate(0.1, 0.04)
	rec.ObserveCandidate(0.3, 0.62)

	if got := testutil.ToFloat64(rec.Candidates); got != 2 {
		t.Fatalf("occult_candidates_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.AngularSize); got != 0.3 {
		t.Fatalf("occult_candidate_angular_size_mas = %v, want 0.3", got)
	}
	if got := testutil.ToFloat64(rec.RejectionFraction); got != 0.62 {
		t.Fatalf("occult_rejection_fraction = %v, want 0.62", got)
	}
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	second, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("second NewRecorder: %v", err)
	}

	first.ObserveCandidate(1, 1)
	if got := testutil.ToFloat64(second.Candidates); got != 1 {
		t.Fatalf("shared occult_candidates_total = %v, want 1", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.ObserveTrial(OutcomeFailed, time.Millisecond)
	rec.ObserveCandidate(1, 1)
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	rec.ObserveTrial(OutcomeFailed, time.Millisecond)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	var body strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		body.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if !strings.Contains(body.String(), `occult_trials_total{outcome="failed"} 1`) {
		t.Fatalf("metrics output missing failed trial counter:\n%s", body.String())
	}
}
