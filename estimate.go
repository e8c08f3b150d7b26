package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/internal/config"
	"github.com/bob-anderson-ok/LunarOccultation/internal/logging"
	"github.com/bob-anderson-ok/LunarOccultation/internal/metrics"
	"github.com/bob-anderson-ok/LunarOccultation/observing"
	"github.com/bob-anderson-ok/LunarOccultation/resolution"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// estimateJob is everything the search needs once the configuration has been
// turned into physical quantities.
type estimateJob struct {
	site       observing.Site
	obs        resolution.Observation
	candidates []units.Angle
	snr        float64
}

func prepare(cfg *config.Config) (estimateJob, error) {
	var job estimateJob

	filter, err := cfg.LookupFilter()
	if err != nil {
		return job, err
	}
	conditions, err := cfg.Observation()
	if err != nil {
		return job, err
	}
	tel, err := aperture.NewTelescope(cfg.TelescopeSize())
	if err != nil {
		return job, err
	}
	star, err := aperture.NewUniformStar(cfg.StellarRadius(), cfg.StellarDistance())
	if err != nil {
		return job, err
	}
	job.candidates, err = resolution.Candidates(cfg.SearchStart(), cfg.SearchEnd(), cfg.SearchStep())
	if err != nil {
		return job, err
	}

	job.site = observing.LaPalma()
	if cfg.Moonglare {
		sky, err := observing.LunarBackground(cfg.SunlitFraction, cfg.Airmass, cfg.CuspDistance(), observing.DefaultVExtinction)
		if err != nil {
			return job, fmt.Errorf("moonglare: %w", err)
		}
		job.site = job.site.WithSky(sky)
		if p, err := job.site.Photometry(filter.Name); err == nil {
			fmt.Printf("Moonlit sky brightness in %s is %0.2f mag/arcsec^2\n", filter.Name, p.Sky)
		}
	}

	job.obs = resolution.Observation{
		Magnitude:    cfg.Magnitude,
		Filter:       filter,
		Conditions:   conditions,
		MoonDistance: cfg.LunarDistance(),
		Velocity:     cfg.ShadowVelocity(),
		Telescope:    tel,
		Star:         star,
	}

	job.snr, err = job.site.SNR(job.obs.Magnitude, filter, conditions)
	if err != nil {
		return job, err
	}
	return job, nil
}

// estimator reuses the SNR computed by prepare.
func (job estimateJob) estimator(cfg *config.Config, log logging.Logger, rec *metrics.Recorder) (*resolution.Estimator, error) {
	opts := []resolution.Option{
		resolution.WithTrials(cfg.Trials),
		resolution.WithElements(cfg.Elements),
		resolution.WithWorkers(cfg.Workers),
		resolution.WithSeed(cfg.Seed),
		resolution.WithLogger(log),
		resolution.OnStep(func(s resolution.Step) {
			fmt.Printf("%0.2f mas  ->  %0.2f\n", s.AngularSize.Milliarcseconds(), s.Fraction)
		}),
	}
	if rec != nil {
		opts = append(opts, resolution.WithObserver(rec))
	}
	return job.obs.Estimator(job.snr, opts...)
}

func (job estimateJob) run(ctx context.Context, cfg *config.Config, log logging.Logger, rec *metrics.Recorder) (resolution.Outcome, error) {
	est, err := job.estimator(cfg, log, rec)
	if err != nil {
		return resolution.Outcome{}, err
	}
	return est.Run(ctx, job.candidates)
}

// rejectionPlotName derives the rejection-curve file name from the fit plot,
// e.g. resolution.png -> resolution_rejection.png.
func rejectionPlotName(fitFile string) string {
	ext := filepath.Ext(fitFile)
	return strings.TrimSuffix(fitFile, ext) + "_rejection.png"
}
