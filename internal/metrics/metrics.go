package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trial outcomes used as the "outcome" label.
const (
	OutcomeRejected = "rejected"
	OutcomeAccepted = "accepted"
	OutcomeFailed   = "failed"
)

// Recorder bundles the Prometheus metrics of a resolution search.
type Recorder struct {
	gatherer prometheus.Gatherer

	Trials            *prometheus.CounterVec
	TrialDuration     prometheus.Histogram
	Candidates        prometheus.Counter
	RejectionFraction prometheus.Gauge
	AngularSize       prometheus.Gauge
}

// NewRecorder registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	trials, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occult_trials_total",
		Help: "Monte Carlo trials completed, labeled by outcome.",
	}, []string{"outcome"}), "occult_trials_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "occult_trial_duration_seconds",
		Help:    "Time to synthesize, bin and test one Monte Carlo trial.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}), "occult_trial_duration_seconds")
	if err != nil {
		return nil, err
	}

	candidates, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "occult_candidates_total",
		Help: "Candidate angular sizes evaluated.",
	}), "occult_candidates_total")
	if err != nil {
		return nil, err
	}

	fraction, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_rejection_fraction",
		Help: "Fraction of trials rejecting a point source at the last evaluated candidate.",
	}), "occult_rejection_fraction")
	if err != nil {
		return nil, err
	}

	size, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_candidate_angular_size_mas",
		Help: "Angular size of the last evaluated candidate in milliarcseconds.",
	}), "occult_candidate_angular_size_mas")
	if err != nil {
		return nil, err
	}

	return &Recorder{
		gatherer:          gatherer,
		Trials:            trials,
		TrialDuration:     duration,
		Candidates:        candidates,
		RejectionFraction: fraction,
		AngularSize:       size,
	}, nil
}

// ObserveTrial records one finished trial.
func (r *Recorder) ObserveTrial(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.Trials.WithLabelValues(outcome).Inc()
	r.TrialDuration.Observe(d.Seconds())
}

// ObserveCandidate records the rejection fraction reached at one angular size.
func (r *Recorder) ObserveCandidate(angularSizeMas, fraction float64) {
	if r == nil {
		return
	}
	r.Candidates.Inc()
	r.AngularSize.Set(angularSizeMas)
	r.RejectionFraction.Set(fraction)
}

// Handler exposes the metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
