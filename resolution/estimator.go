// Package resolution estimates the smallest stellar angular size a telescope
// can tell apart from a point source during a lunar occultation. For each
// candidate size it simulates noisy observations of a finite star and tests
// them against the noiseless point-source light curve with a chi-square test.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/diffraction"
	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/internal/logging"
	"github.com/bob-anderson-ok/LunarOccultation/lightcurve"
	"github.com/bob-anderson-ok/LunarOccultation/observing"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

const (
	DefaultTrials = 50

	// Threshold is the rejection fraction a candidate must exceed to count
	// as resolved.
	Threshold = 0.95

	// Significance is the p-value below which one trial rejects a point source.
	Significance = 0.05
)

// Observer receives per-trial and per-candidate measurements.
// *metrics.Recorder satisfies it.
type Observer interface {
	ObserveTrial(outcome string, d time.Duration)
	ObserveCandidate(angularSizeMas, fraction float64)
}

// Option configures an Estimator.
type Option func(*settings)

type settings struct {
	trials   int
	elements int
	workers  int
	seed     uint64
	logger   logging.Logger
	observer Observer
	onStep   func(Step)
}

func defaults() settings {
	return settings{
		trials:   DefaultTrials,
		elements: diffraction.DefaultElements,
		workers:  runtime.GOMAXPROCS(0),
		seed:     1,
		logger:   logging.Noop(),
	}
}

// WithTrials sets the number of Monte Carlo trials per candidate.
func WithTrials(n int) Option { return func(s *settings) { s.trials = n } }

// WithElements sets the shadow grid size used by Estimate.
func WithElements(n int) Option { return func(s *settings) { s.elements = n } }

// WithWorkers bounds the trials run concurrently. Zero means GOMAXPROCS.
func WithWorkers(n int) Option { return func(s *settings) { s.workers = n } }

// WithSeed seeds the noise streams. Equal seeds give equal outcomes.
func WithSeed(seed uint64) Option { return func(s *settings) { s.seed = seed } }

// WithLogger sets the logger used for progress and excluded trials.
func WithLogger(l logging.Logger) Option { return func(s *settings) { s.logger = l } }

// WithObserver reports trial and candidate measurements, typically to metrics.
func WithObserver(o Observer) Option { return func(s *settings) { s.observer = o } }

// OnStep is called after every candidate with its rejection statistics.
func OnStep(fn func(Step)) Option { return func(s *settings) { s.onStep = fn } }

// Step summarizes the trials run at one candidate angular size.
type Step struct {
	AngularSize units.Angle
	Trials      int
	Rejected    int
	Failed      int
	Fraction    float64
}

// Trial is one simulated observation compared against the point-source model.
// X holds the bin centres in milliseconds.
type Trial struct {
	X         []float64
	Model     []float64
	Data      []float64
	Sigma     []float64
	ChiSquare float64
	P         float64
}

// Rejected reports whether the trial tells the star apart from a point source.
func (t Trial) Rejected() bool { return t.P < Significance }

// Outcome is the result of a search. An exhausted search is not an error:
// Resolved is false and Resolution is zero.
type Outcome struct {
	Resolved   bool
	Resolution units.Angle
	SNR        float64
	DOF        int
	Steps      []Step

	// Last is the final successful trial of the last candidate evaluated.
	Last Trial
}

// Estimator runs the Monte Carlo search for one observing configuration.
// Its point-source model is computed once, when it is built.
type Estimator struct {
	engine    *diffraction.Engine
	telescope aperture.Aperture
	star      aperture.Aperture
	snr       float64

	edges []float64
	model lightcurve.Binned

	settings
}

// NewEstimator bins the noiseless point-source curve seen through telescope
// onto exposure-long bins. The star's radius is kept and its distance is
// adjusted to each candidate angular size.
func NewEstimator(engine *diffraction.Engine, telescope, star aperture.Aperture, exposure units.Interval, snr float64, opts ...Option) (*Estimator, error) {
	if engine == nil {
		return nil, fmt.Errorf("estimator needs a diffraction engine: %w", occult.ErrInvalidParameter)
	}
	if star.Kind() != aperture.UniformStar {
		return nil, fmt.Errorf("source must be a uniform star, got %v: %w", star.Kind(), occult.ErrInvalidParameter)
	}
	if !(snr > 0) || math.IsInf(snr, 0) {
		return nil, fmt.Errorf("snr %g must be positive: %w", snr, occult.ErrInvalidParameter)
	}

	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	if s.trials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d: %w", s.trials, occult.ErrInvalidParameter)
	}
	if s.workers < 0 {
		return nil, fmt.Errorf("worker count %d is negative: %w", s.workers, occult.ErrInvalidParameter)
	}
	if s.workers == 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.logger == nil {
		s.logger = logging.Noop()
	}

	pointSource, err := engine.Pattern(diffraction.WithTelescope(telescope))
	if err != nil {
		return nil, fmt.Errorf("point-source model: %w", err)
	}
	lo, hi := pointSource.TimeRange()
	edges, err := lightcurve.BinEdges(lo, hi, exposure)
	if err != nil {
		return nil, err
	}
	binned, err := pointSource.Rebin(edges)
	if err != nil {
		return nil, err
	}
	model := binned.Populated()
	if model.Len() == 0 {
		return nil, fmt.Errorf("no exposure bin holds a sample: %w", occult.ErrNumericDegeneracy)
	}

	return &Estimator{
		engine:    engine,
		telescope: telescope,
		star:      star,
		snr:       snr,
		edges:     edges,
		model:     model,
		settings:  s,
	}, nil
}

// DOF returns the degrees of freedom of the chi-square test: the number of
// populated exposure bins.
func (e *Estimator) DOF() int { return e.model.Len() }

// SNR returns the per-exposure signal-to-noise ratio of the simulated data.
func (e *Estimator) SNR() float64 { return e.snr }

// Model returns a copy of the binned point-source curve.
func (e *Estimator) Model() lightcurve.Binned {
	out := lightcurve.Binned{
		X:      make([]float64, len(e.model.X)),
		Y:      make([]float64, len(e.model.Y)),
		Counts: make([]int, len(e.model.Counts)),
	}
	copy(out.X, e.model.X)
	copy(out.Y, e.model.Y)
	copy(out.Counts, e.model.Counts)
	return out
}

// Run evaluates candidates in ascending order until one is rejected as a
// point source in more than Threshold of its trials. Trials that hit a
// numeric degeneracy are logged and count as not rejected; any other failure
// ends the run.
func (e *Estimator) Run(ctx context.Context, candidates []units.Angle) (Outcome, error) {
	if len(candidates) == 0 {
		return Outcome{}, fmt.Errorf("no candidate angular sizes: %w", occult.ErrInvalidParameter)
	}
	for i := 1; i < len(candidates); i++ {
		if !(candidates[i] > candidates[i-1]) {
			return Outcome{}, fmt.Errorf("candidate sizes must increase, %v follows %v: %w", candidates[i], candidates[i-1], occult.ErrInvalidParameter)
		}
	}

	out := Outcome{SNR: e.snr, DOF: e.DOF()}
	e.logger.Info(ctx, "resolution search started",
		logging.Float64("snr", e.snr),
		logging.Int("dof", out.DOF),
		logging.Int("candidates", len(candidates)),
		logging.Int("trials", e.trials),
		logging.Int("workers", e.workers),
	)

	for ci, size := range candidates {
		star, err := e.star.WithAngularSize(size)
		if err != nil {
			return out, err
		}

		results, err := e.runTrials(ctx, ci, star)
		if err != nil {
			return out, err
		}

		step := Step{AngularSize: size, Trials: e.trials}
		for _, r := range results {
			if r.err != nil {
				if !isDegenerate(r.err) {
					return out, fmt.Errorf("trial %d at %v: %w", r.index, size, r.err)
				}
				step.Failed++
				e.logger.Warn(ctx, "trial excluded",
					logging.Float64("angular_size_mas", size.Milliarcseconds()),
					logging.Int("trial", r.index),
					logging.Err(r.err),
				)
				continue
			}
			if r.trial.Rejected() {
				step.Rejected++
			}
			out.Last = r.trial
		}
		step.Fraction = float64(step.Rejected) / float64(step.Trials)
		out.Steps = append(out.Steps, step)

		if e.observer != nil {
			e.observer.ObserveCandidate(size.Milliarcseconds(), step.Fraction)
		}
		e.logger.Debug(ctx, "candidate evaluated",
			logging.Float64("angular_size_mas", size.Milliarcseconds()),
			logging.Int("rejected", step.Rejected),
			logging.Int("failed", step.Failed),
			logging.Float64("fraction", step.Fraction),
		)
		if e.onStep != nil {
			e.onStep(step)
		}

		if step.Fraction > Threshold {
			out.Resolved = true
			out.Resolution = size
			e.logger.Info(ctx, "resolution found", logging.Float64("resolution_mas", size.Milliarcseconds()))
			return out, nil
		}
	}

	e.logger.Info(ctx, "resolution not determined within range")
	return out, nil
}

// trial synthesizes one noisy observation of star and tests it against the
// point-source model. stream selects an independent noise sequence.
func (e *Estimator) trial(star aperture.Aperture, stream uint64) (Trial, error) {
	curve, err := e.engine.Pattern(diffraction.WithSource(star), diffraction.WithTelescope(e.telescope))
	if err != nil {
		return Trial{}, err
	}
	binned, err := curve.Rebin(e.edges)
	if err != nil {
		return Trial{}, err
	}
	binned = binned.Populated()
	if binned.Len() != e.model.Len() {
		return Trial{}, fmt.Errorf("trial filled %d bins, model has %d: %w", binned.Len(), e.model.Len(), occult.ErrNumericDegeneracy)
	}

	noise := newNoise(e.seed, stream)
	t := Trial{
		X:     binned.X,
		Model: append([]float64(nil), e.model.Y...),
		Data:  make([]float64, binned.Len()),
		Sigma: make([]float64, binned.Len()),
	}
	for i, flux := range binned.Y {
		t.Sigma[i] = flux / e.snr
		t.Data[i] = flux + t.Sigma[i]*noise.Rand()
	}

	if t.ChiSquare, err = lightcurve.ChiSquare(t.Data, t.Model, t.Sigma); err != nil {
		return Trial{}, err
	}
	t.P = survival(t.ChiSquare, e.model.Len())
	if math.IsNaN(t.P) {
		return Trial{}, fmt.Errorf("p-value of chi-square %g is undefined: %w", t.ChiSquare, occult.ErrNumericDegeneracy)
	}
	return t, nil
}

// Estimate computes the SNR of the star under the given conditions, builds
// the diffraction engine for the geometry and runs the search.
func Estimate(ctx context.Context, noise observing.NoiseModel, obs Observation, candidates []units.Angle, opts ...Option) (Outcome, error) {
	snr, err := noise.SNR(obs.Magnitude, obs.Filter, obs.Conditions)
	if err != nil {
		return Outcome{}, fmt.Errorf("snr: %w", err)
	}
	est, err := obs.Estimator(snr, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return est.Run(ctx, candidates)
}

// Observation gathers the inputs of Estimate.
type Observation struct {
	Magnitude    float64
	Filter       filters.Filter
	Conditions   observing.Conditions
	MoonDistance units.Length
	Velocity     units.Speed
	Telescope    aperture.Aperture
	Star         aperture.Aperture
}

// Estimator builds the diffraction engine for obs and an Estimator using an
// SNR the caller has already computed.
func (obs Observation) Estimator(snr float64, opts ...Option) (*Estimator, error) {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	engine, err := diffraction.NewEngine(obs.MoonDistance, obs.Velocity, obs.Filter.Band, s.elements)
	if err != nil {
		return nil, err
	}
	return NewEstimator(engine, obs.Telescope, obs.Star, obs.Conditions.Exposure, snr, opts...)
}

func isDegenerate(err error) bool { return errors.Is(err, occult.ErrNumericDegeneracy) }
