package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"github.com/bob-anderson-ok/LunarOccultation/internal/config"
	"github.com/bob-anderson-ok/LunarOccultation/internal/logging"
	"github.com/bob-anderson-ok/LunarOccultation/internal/metrics"
	"github.com/bob-anderson-ok/LunarOccultation/lightcurve"
	"github.com/bob-anderson-ok/LunarOccultation/resolution"
)

const version = "1_0_0"

const appID = "io.github.bob-anderson-ok.lunaroccultation"

// Exit codes.
const (
	exitConfig = 2
	exitSetup  = 3
	exitRun    = 4
)

func main() {

	programStart := time.Now()

	fs := flag.NewFlagSet("estimate-resolution", flag.ExitOnError)
	paramFile := fs.String("params", "", "JSON5 or YAML parameter file (defaults to $OCCULT_CONFIG)")
	defineFlags(fs, config.New())
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx, *paramFile, flagOverrides(fs))
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tConfiguration problem: %w\n", err))
		os.Exit(exitConfig)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx, log = logging.WithRunLogger(ctx, log)

	fmt.Printf("\nVersion %s\n\n", version)

	var recorder *metrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder, err = metrics.NewRecorder(nil)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tMetrics setup failed: %w\n", err))
			os.Exit(exitSetup)
		}
		srv := serveMetrics(ctx, cfg.MetricsAddr, recorder, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	job, err := prepare(cfg)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tSetup failed: %w\n", err))
		os.Exit(exitSetup)
	}
	fmt.Printf("Obtaining SNR of %0.2f in %s\n", job.snr, job.obs.Filter)

	start := time.Now()
	outcome, err := job.run(ctx, cfg, log, recorder)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tResolution search failed: %w\n", err))
		os.Exit(exitRun)
	}
	fmt.Printf("Monte Carlo search took %s\n\n", time.Since(start))

	title := summarize(outcome)
	fmt.Println(title)

	if cfg.Plot != "" {
		fit := lightcurve.Fit{
			Title: title,
			Time:  outcome.Last.X,
			Model: outcome.Last.Model,
			Data:  outcome.Last.Data,
			Sigma: outcome.Last.Sigma,
		}
		if err := lightcurve.SaveFitPlot(cfg.Plot, fit, 1200, 500); err != nil {
			fmt.Println(fmt.Errorf("\n\tWriting of %q failed: %w\n", cfg.Plot, err))
			os.Exit(exitRun)
		}
		rejectionFile := rejectionPlotName(cfg.Plot)
		if err := makeRejectionPlot(outcome.Steps, resolution.Threshold, rejectionFile); err != nil {
			fmt.Println(fmt.Errorf("\n\tWriting of %q failed: %w\n", rejectionFile, err))
			os.Exit(exitRun)
		}
	}

	fmt.Printf("\nTotal program run time is %s\n", time.Since(programStart))

	if cfg.Show && cfg.Plot != "" {
		showPlots(cfg.Plot, rejectionPlotName(cfg.Plot))
	}
}

// summarize prints the search result and returns the line used as plot title.
func summarize(out resolution.Outcome) string {
	if out.Resolved {
		fmt.Printf("Estimated resolution is %.2f mas\n", out.Resolution.Milliarcseconds())
	} else {
		fmt.Println("Resolution not determined within range")
	}
	if len(out.Last.Data) == 0 {
		return "No trial completed"
	}
	return fmt.Sprintf("Chisq = %f with %d DOF (P=%f percent)", out.Last.ChiSquare, out.DOF, 100*out.Last.P)
}

// defineFlags registers one flag per configuration key. Only flags given on
// the command line override the parameter file and environment.
func defineFlags(fs *flag.FlagSet, d *config.Config) {
	fs.Float64("tel-diam", d.TelescopeDiameter, "diameter of telescope in m")
	fs.Float64("exp-time", d.Exposure, "exposure time of observations in ms")
	fs.Float64("vmoon", d.MoonVelocity, "speed of lunar shadow in km/s")
	fs.Float64("moon-dist", d.MoonDistance, "distance to the Moon in km")
	fs.String("filter", d.Filter, "observation filter (u, g, r, i, z, ha)")
	fs.Float64("mag", d.Magnitude, "magnitude of the star")
	fs.Float64("seeing", d.Seeing, "seeing in arcsec")
	fs.Float64("airmass", d.Airmass, "airmass of the observation")
	fs.String("readout", d.Readout, "detector readout speed (slow, fast)")
	fs.Float64("start", d.Start, "first angular size to test in mas")
	fs.Float64("end", d.End, "angular size to stop before in mas")
	fs.Float64("step", d.Step, "angular size step in mas")
	fs.Int("trials", d.Trials, "Monte Carlo trials per angular size")
	fs.Int("elements", d.Elements, "samples across the shadow window")
	fs.Int("workers", d.Workers, "concurrent trials, 0 for one per CPU")
	fs.Uint64("seed", d.Seed, "noise seed")
	fs.Bool("moonglare", d.Moonglare, "replace the site sky with scattered moonlight")
	fs.Float64("sunlit-fraction", d.SunlitFraction, "illuminated fraction of the Moon")
	fs.Float64("cusp-angle", d.CuspAngle, "angle between star and lunar cusp in degrees")
	fs.String("plot", d.Plot, "PNG file for the final trial, empty to skip plotting")
	fs.Bool("show", d.Show, "display the plots in a window")
	fs.String("metrics-addr", d.MetricsAddr, "HTTP address for Prometheus /metrics, empty to disable")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "text or json")
}

func flagOverrides(fs *flag.FlagSet) map[string]any {
	overrides := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "params" {
			return
		}
		if g, ok := f.Value.(flag.Getter); ok {
			overrides[strings.ReplaceAll(f.Name, "-", "_")] = g.Get()
		}
	})
	return overrides
}

func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func showPlots(fitFile, rejectionFile string) {
	myApp := app.NewWithID(appID)

	w := myApp.NewWindow("Final Monte Carlo trial")
	img := canvas.NewImageFromFile(fitFile)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(1200, 500))
	w.SetContent(container.NewCenter(img))
	w.Resize(fyne.NewSize(1250, 550))
	w.CenterOnScreen()

	rejImg := canvas.NewImageFromFile(rejectionFile)
	rejImg.FillMode = canvas.ImageFillContain
	rejImg.SetMinSize(fyne.NewSize(768, 384))

	w2 := myApp.NewWindow("Rejection fraction vs angular size")
	w2.SetContent(container.NewCenter(rejImg))
	w2.Resize(fyne.NewSize(800, 420))
	w2.Show()

	w.ShowAndRun()
}
