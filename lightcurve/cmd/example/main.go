// Example program demonstrating how to use the lightcurve and diffraction packages to:
// 1. Synthesize the knife-edge fringe pattern of a point source in a filter band
// 2. Smooth it with the telescope pupil and stellar disks of increasing size
// 3. Bin one curve onto a detector's exposure grid
// 4. Plot all curves into a single PNG
//
// Usage:
//
//	go run main.go [filter] [output.png]
//
// The filter defaults to g and the plot is written to fringePatterns.png in the
// current directory.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/diffraction"
	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/lightcurve"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

func main() {
	fmt.Println("Fringe Pattern Example")
	fmt.Println("======================")

	filterName := "g"
	if len(os.Args) > 1 {
		filterName = os.Args[1]
	}
	workDir, _ := os.Getwd()
	outFile := filepath.Join(workDir, "fringePatterns.png")
	if len(os.Args) > 2 {
		outFile = os.Args[2]
	}

	filter, err := filters.Lookup(filterName)
	if err != nil {
		log.Fatalf("Unknown filter: %v", err)
	}

	moonDistance := 384400 * units.Kilometer
	shadowSpeed := 0.6 * units.KilometerPerSecond

	engine, err := diffraction.NewEngine(moonDistance, shadowSpeed, filter.Band, diffraction.DefaultElements)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	fmt.Printf("\nFilter %v, moon at %.0f km, shadow speed %.2f km/s\n",
		filter, moonDistance.Kilometers(), shadowSpeed.KilometersPerSecond())

	tel, err := aperture.NewTelescope(4.2 * units.Meter)
	if err != nil {
		log.Fatalf("Failed to build telescope: %v", err)
	}
	star, err := aperture.NewUniformStar(units.SolarRadius, units.Parsec)
	if err != nil {
		log.Fatalf("Failed to build star: %v", err)
	}

	point, err := engine.Pattern()
	if err != nil {
		log.Fatalf("Failed to synthesize point source: %v", err)
	}
	series := []lightcurve.Series{{Label: "point source", Curve: point}}

	for _, mas := range []float64{1, 3, 10} {
		sized, err := star.WithAngularSize(units.Angle(mas) * units.Milliarcsecond)
		if err != nil {
			log.Fatalf("Failed to size star: %v", err)
		}
		curve, err := engine.Pattern(diffraction.WithSource(sized), diffraction.WithTelescope(tel))
		if err != nil {
			log.Fatalf("Failed to synthesize %.0f mas star: %v", mas, err)
		}
		projected, _ := sized.Project(moonDistance)
		fmt.Printf("  %4.0f mas star: projected radius %.2f m, peak flux %.3f\n",
			mas, projected.EffectiveRadius().Meters(), peak(curve.Flux))
		series = append(series, lightcurve.Series{Label: fmt.Sprintf("%.0f mas + %.1f m telescope", mas, 2*tel.Radius().Meters()), Curve: curve})
	}

	// Bin the point source as a 1 ms exposure camera would see it
	lo, hi := point.TimeRange()
	edges, err := lightcurve.BinEdges(lo, hi, units.Millisecond)
	if err != nil {
		log.Fatalf("Failed to compute bin edges: %v", err)
	}
	binned, err := point.Rebin(edges)
	if err != nil {
		log.Fatalf("Failed to rebin: %v", err)
	}
	binned = binned.Populated()
	fmt.Printf("\nPoint source binned to %d exposures of 1 ms; first 5:\n", binned.Len())
	for i := 0; i < 5 && i < binned.Len(); i++ {
		fmt.Printf("  t=%7.2f ms  flux=%.4f\n", binned.X[i], binned.Y[i])
	}

	img, err := lightcurve.PlotCurves(fmt.Sprintf("Lunar occultation fringes in %v", filter), series, 1000, 600)
	if err != nil {
		log.Fatalf("Failed to plot: %v", err)
	}
	if err := lightcurve.SaveImageToFile(outFile, img); err != nil {
		log.Fatalf("Failed to save plot: %v", err)
	}
	fmt.Printf("\nSaved plot to %s\n", outFile)
}

func peak(flux []float64) float64 {
	m := 0.0
	for _, f := range flux {
		m = max(m, f)
	}
	return m
}
